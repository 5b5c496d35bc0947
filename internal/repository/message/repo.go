// Package message persists chat messages as hashes ordered by per-conversation
// timelines, with per-user inboxes and unread counters.
package message

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/matchcraft/internal/db"
	"github.com/kailas-cloud/matchcraft/internal/domain"
	dommsg "github.com/kailas-cloud/matchcraft/internal/domain/message"
)

// store is the consumer interface for messages (ISP).
//
//nolint:interfacebloat // messaging spans hashes, sorted sets and counters
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	ZAdd(ctx context.Context, key string, members ...db.ZMember) error
	ZRange(ctx context.Context, key string, start, stop int64, rev bool) ([]db.ZMember, error)
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
}

// Repo implements usecase/message.Repository.
type Repo struct {
	store store
}

// New creates a message repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Append stores m, appends it to its timeline, bumps both inboxes and the
// recipient's unread counter.
func (r *Repo) Append(ctx context.Context, m dommsg.Message) error {
	key := domain.MessageKey(m.ConversationID, m.ID)
	if err := r.store.HSet(ctx, key, dommsg.ToStorage(m)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}

	score := float64(m.SentAt)
	if err := r.store.ZAdd(ctx, domain.TimelineKey(m.ConversationID), db.ZMember{Member: m.ID, Score: score}); err != nil {
		return fmt.Errorf("timeline %s: %w", m.ConversationID, err)
	}
	for _, uid := range []string{m.SenderID, m.RecipientID} {
		if err := r.store.ZAdd(ctx, domain.InboxKey(uid), db.ZMember{Member: m.ConversationID, Score: score}); err != nil {
			return fmt.Errorf("inbox %s: %w", uid, err)
		}
	}
	if err := r.store.IncrBy(ctx, domain.UnreadKey(m.ConversationID, m.RecipientID), 1); err != nil {
		return fmt.Errorf("unread %s: %w", m.ConversationID, err)
	}
	return nil
}

// Recent returns the last limit messages of a conversation in send order.
// limit <= 0 returns the whole conversation.
func (r *Repo) Recent(ctx context.Context, conversationID string, limit int) ([]dommsg.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	ids, err := r.store.ZRange(ctx, domain.TimelineKey(conversationID), start, -1, false)
	if err != nil {
		return nil, fmt.Errorf("timeline %s: %w", conversationID, err)
	}
	return r.load(ctx, conversationID, ids)
}

// MarkRead stamps readAt on every unread message addressed to readerID and
// returns how many changed.
func (r *Repo) MarkRead(ctx context.Context, conversationID, readerID string, atMillis int64) (int, error) {
	all, err := r.Recent(ctx, conversationID, 0)
	if err != nil {
		return 0, err
	}

	var items []db.HashSetItem
	stamp := strconv.FormatInt(atMillis, 10)
	for _, m := range all {
		if m.RecipientID != readerID || m.IsRead() {
			continue
		}
		items = append(items, db.HashSetItem{
			Key:    domain.MessageKey(conversationID, m.ID),
			Fields: map[string]string{dommsg.FieldReadAt: stamp},
		})
	}
	if len(items) == 0 {
		return 0, nil
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return 0, fmt.Errorf("mark read %s: %w", conversationID, err)
	}
	if err := r.store.IncrBy(ctx, domain.UnreadKey(conversationID, readerID), -int64(len(items))); err != nil {
		return 0, fmt.Errorf("unread %s: %w", conversationID, err)
	}
	return len(items), nil
}

// Inbox lists userID's conversations by last activity, most recent first.
func (r *Repo) Inbox(ctx context.Context, userID string, limit int) ([]dommsg.Conversation, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	convs, err := r.store.ZRange(ctx, domain.InboxKey(userID), 0, stop, true)
	if err != nil {
		return nil, fmt.Errorf("inbox %s: %w", userID, err)
	}

	out := make([]dommsg.Conversation, 0, len(convs))
	for _, c := range convs {
		conv := dommsg.Conversation{
			ID:           c.Member,
			PeerID:       dommsg.PeerOf(c.Member, userID),
			LastActivity: int64(c.Score),
		}
		last, err := r.Recent(ctx, c.Member, 1)
		if err != nil {
			return nil, err
		}
		if len(last) > 0 {
			conv.Last = &last[0]
		}
		if conv.Unread, err = r.unread(ctx, c.Member, userID); err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, nil
}

func (r *Repo) unread(ctx context.Context, conversationID, userID string) (int, error) {
	key := domain.UnreadKey(conversationID, userID)
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get %s: %w", key, err)
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil || n < 0 {
		return 0, nil
	}
	return n, nil
}

func (r *Repo) load(ctx context.Context, conversationID string, ids []db.ZMember) ([]dommsg.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, z := range ids {
		keys[i] = domain.MessageKey(conversationID, z.Member)
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load messages %s: %w", conversationID, err)
	}
	out := make([]dommsg.Message, 0, len(maps))
	for _, m := range maps {
		if m == nil {
			continue
		}
		out = append(out, dommsg.FromStorage(m))
	}
	return out, nil
}
