package message

import (
	"context"

	dommsg "github.com/kailas-cloud/matchcraft/internal/domain/message"
	domprofile "github.com/kailas-cloud/matchcraft/internal/domain/profile"
)

// Repository defines the storage contract for messages.
type Repository interface {
	Append(ctx context.Context, m dommsg.Message) error
	Recent(ctx context.Context, conversationID string, limit int) ([]dommsg.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID string, atMillis int64) (int, error)
	Inbox(ctx context.Context, userID string, limit int) ([]dommsg.Conversation, error)
}

// UserReader resolves conversation participants.
type UserReader interface {
	Get(ctx context.Context, id string) (domprofile.Record, error)
}
