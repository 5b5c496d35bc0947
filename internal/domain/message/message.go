// Package message models one-to-one conversations between users.
package message

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/matchcraft/internal/domain"
)

// MaxTextLen is the longest message accepted, in runes.
const MaxTextLen = 2000

const conversationSep = "__"

// ConversationID returns the id shared by both participants: the two user
// ids sorted and joined.
func ConversationID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + conversationSep + b
}

// Message is a single chat message. ReadAt is zero while unread.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	RecipientID    string `json:"recipientId"`
	Text           string `json:"text"`
	SentAt         int64  `json:"sentAt"`
	ReadAt         int64  `json:"readAt,omitempty"`
}

// New validates and creates an unread message.
func New(id, senderID, recipientID, text string, nowMillis int64) (Message, error) {
	if senderID == "" || recipientID == "" {
		return Message{}, domain.InvalidField(domain.ErrInvalidMessage, "participants", "are required")
	}
	if senderID == recipientID {
		return Message{}, domain.InvalidField(domain.ErrInvalidMessage, "recipientId", "must differ from sender")
	}
	if strings.TrimSpace(text) == "" {
		return Message{}, domain.InvalidField(domain.ErrInvalidMessage, "text", "is required")
	}
	if utf8.RuneCountInString(text) > MaxTextLen {
		return Message{}, domain.InvalidField(domain.ErrInvalidMessage, "text", "is too long")
	}
	return Message{
		ID:             id,
		ConversationID: ConversationID(senderID, recipientID),
		SenderID:       senderID,
		RecipientID:    recipientID,
		Text:           text,
		SentAt:         nowMillis,
	}, nil
}

// IsRead reports whether the recipient has read the message.
func (m Message) IsRead() bool { return m.ReadAt > 0 }

// Less orders messages by send time, then id.
func Less(a, b Message) bool {
	if a.SentAt != b.SentAt {
		return a.SentAt < b.SentAt
	}
	return a.ID < b.ID
}

// Conversation summarizes a conversation from one participant's view.
type Conversation struct {
	ID           string   `json:"id"`
	PeerID       string   `json:"peerId"`
	LastActivity int64    `json:"lastActivity"`
	Unread       int      `json:"unread"`
	Last         *Message `json:"lastMessage,omitempty"`
}

// PeerOf returns the other participant of conversation id, or "" when
// userID is not a participant.
func PeerOf(conversationID, userID string) string {
	a, b, ok := strings.Cut(conversationID, conversationSep)
	if !ok {
		return ""
	}
	switch userID {
	case a:
		return b
	case b:
		return a
	default:
		return ""
	}
}

// Storage field names.
const (
	fieldID          = "id"
	fieldConvID      = "conversationId"
	fieldSenderID    = "senderId"
	fieldRecipientID = "recipientId"
	fieldText        = "text"
	fieldSentAt      = "sentAt"

	// FieldReadAt is the storage field updated by read receipts.
	FieldReadAt = "readAt"
)

// ToStorage flattens m into string fields.
func ToStorage(m Message) map[string]string {
	return map[string]string{
		fieldID:          m.ID,
		fieldConvID:      m.ConversationID,
		fieldSenderID:    m.SenderID,
		fieldRecipientID: m.RecipientID,
		fieldText:        m.Text,
		fieldSentAt:      strconv.FormatInt(m.SentAt, 10),
		FieldReadAt:      strconv.FormatInt(m.ReadAt, 10),
	}
}

// FromStorage rebuilds a message; malformed timestamps read as zero.
func FromStorage(f map[string]string) Message {
	sent, _ := strconv.ParseInt(f[fieldSentAt], 10, 64)
	read, _ := strconv.ParseInt(f[FieldReadAt], 10, 64)
	return Message{
		ID:             f[fieldID],
		ConversationID: f[fieldConvID],
		SenderID:       f[fieldSenderID],
		RecipientID:    f[fieldRecipientID],
		Text:           f[fieldText],
		SentAt:         sent,
		ReadAt:         read,
	}
}
