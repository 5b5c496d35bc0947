package matchcraft

import (
	"context"
	"fmt"
	"time"
)

// MessageService sends and reads direct messages between profiles.
type MessageService struct {
	svc messageUseCase
	obs *observer
}

// Send delivers text from sender to recipient.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID, text string) (_ Message, err error) {
	start := time.Now()
	defer func() { s.obs.observe("message_send", start, err) }()

	m, err := s.svc.Send(ctx, senderID, recipientID, text)
	if err != nil {
		return Message{}, fmt.Errorf("send message: %w", err)
	}
	return messageFromDomain(m), nil
}

// List returns the last limit messages between two users in send order.
// limit <= 0 uses the server default.
func (s *MessageService) List(ctx context.Context, userA, userB string, limit int) (_ []Message, err error) {
	start := time.Now()
	defer func() { s.obs.observe("message_list", start, err) }()

	msgs, err := s.svc.List(ctx, userA, userB, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = messageFromDomain(m)
	}
	return out, nil
}

// MarkRead marks every message from peer to reader as read and returns how
// many changed.
func (s *MessageService) MarkRead(ctx context.Context, readerID, peerID string) (_ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("message_mark_read", start, err) }()

	n, err := s.svc.MarkRead(ctx, readerID, peerID)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	return n, nil
}

// Inbox lists a user's conversations, most recent first.
func (s *MessageService) Inbox(ctx context.Context, userID string, limit int) (_ []Conversation, err error) {
	start := time.Now()
	defer func() { s.obs.observe("message_inbox", start, err) }()

	convs, err := s.svc.Inbox(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("inbox: %w", err)
	}
	out := make([]Conversation, len(convs))
	for i, c := range convs {
		out[i] = conversationFromDomain(c)
	}
	return out, nil
}
