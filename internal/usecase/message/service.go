// Package message implements one-to-one messaging between existing users.
package message

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	dommsg "github.com/kailas-cloud/matchcraft/internal/domain/message"
)

// Page size bounds for List and Inbox.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Service handles message operations.
type Service struct {
	repo   Repository
	users  UserReader
	newID  func() (string, error)
	now    func() time.Time
	logger *zap.Logger
}

// New creates a messaging service.
func New(repo Repository, users UserReader, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		newID:  newUUIDv7,
		now:    time.Now,
		logger: logger,
	}
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate message id: %w", err)
	}
	return id.String(), nil
}

// Send stores a message from senderID to recipientID. Both users must exist.
func (s *Service) Send(ctx context.Context, senderID, recipientID, text string) (dommsg.Message, error) {
	id, err := s.newID()
	if err != nil {
		return dommsg.Message{}, err
	}
	m, err := dommsg.New(id, senderID, recipientID, text, s.now().UnixMilli())
	if err != nil {
		return dommsg.Message{}, err
	}

	for _, uid := range []string{senderID, recipientID} {
		if _, err := s.users.Get(ctx, uid); err != nil {
			return dommsg.Message{}, fmt.Errorf("participant %s: %w", uid, err)
		}
	}

	if err := s.repo.Append(ctx, m); err != nil {
		return dommsg.Message{}, fmt.Errorf("append message: %w", err)
	}

	s.logger.Debug("Message sent",
		zap.String("conversation_id", m.ConversationID),
		zap.String("message_id", m.ID),
	)
	return m, nil
}

// List returns the last limit messages between userA and userB in send order.
func (s *Service) List(ctx context.Context, userA, userB string, limit int) ([]dommsg.Message, error) {
	msgs, err := s.repo.Recent(ctx, dommsg.ConversationID(userA, userB), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if msgs == nil {
		msgs = []dommsg.Message{}
	}
	return msgs, nil
}

// MarkRead stamps every unread message from peerID to readerID and returns
// the number of messages changed. Repeating the call returns 0.
func (s *Service) MarkRead(ctx context.Context, readerID, peerID string) (int, error) {
	n, err := s.repo.MarkRead(ctx, dommsg.ConversationID(readerID, peerID), readerID, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	return n, nil
}

// Inbox lists userID's conversations, most recently active first.
func (s *Service) Inbox(ctx context.Context, userID string, limit int) ([]dommsg.Conversation, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, fmt.Errorf("inbox owner: %w", err)
	}
	convs, err := s.repo.Inbox(ctx, userID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("inbox: %w", err)
	}
	return convs, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
