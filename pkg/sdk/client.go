package matchcraft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchcraft/internal/db"
	"github.com/kailas-cloud/matchcraft/internal/db/memory"
	dbRedis "github.com/kailas-cloud/matchcraft/internal/db/redis"
	dommsg "github.com/kailas-cloud/matchcraft/internal/domain/message"
	domprofile "github.com/kailas-cloud/matchcraft/internal/domain/profile"
	"github.com/kailas-cloud/matchcraft/internal/domain/search/suggestion"
	msgrepo "github.com/kailas-cloud/matchcraft/internal/repository/message"
	profilerepo "github.com/kailas-cloud/matchcraft/internal/repository/profile"
	searchrepo "github.com/kailas-cloud/matchcraft/internal/repository/search"
	healthuc "github.com/kailas-cloud/matchcraft/internal/usecase/health"
	messageuc "github.com/kailas-cloud/matchcraft/internal/usecase/message"
	profileuc "github.com/kailas-cloud/matchcraft/internal/usecase/profile"
	suggestuc "github.com/kailas-cloud/matchcraft/internal/usecase/suggest"
	usageuc "github.com/kailas-cloud/matchcraft/internal/usecase/usage"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped out in tests.
type profileUseCase interface {
	Create(ctx context.Context, in domprofile.Input) (domprofile.Record, error)
	Get(ctx context.Context, id string) (domprofile.Record, error)
	Update(ctx context.Context, id string, in domprofile.Input) (domprofile.Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f domprofile.ListFilter, cursor string, limit int) ([]domprofile.Record, string, error)
	Count(ctx context.Context, f domprofile.ListFilter) (int, error)
	Reindex(ctx context.Context) (int, error)
}

type suggestUseCase interface {
	Suggest(ctx context.Context, raw string) []suggestion.Suggestion
}

type messageUseCase interface {
	Send(ctx context.Context, senderID, recipientID, text string) (dommsg.Message, error)
	List(ctx context.Context, userA, userB string, limit int) ([]dommsg.Message, error)
	MarkRead(ctx context.Context, readerID, peerID string) (int, error)
	Inbox(ctx context.Context, userID string, limit int) ([]dommsg.Conversation, error)
}

// Client is the MatchCraft SDK entry point.
type Client struct {
	store      db.Store
	profileSvc profileUseCase
	suggestSvc suggestUseCase
	messageSvc messageUseCase
	healthSvc  healthUseCase
	usageSvc   usageUseCase
	obs        *observer
}

// New creates a MatchCraft Client and connects to the database.
// The provided context is used for index setup and the readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver != driverMemory && len(cfg.addrs) == 0 {
		return nil, errors.New("matchcraft: database address required (use WithRedis, WithValkey or WithMemory)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("matchcraft: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c, err := wireClient(ctx, store, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case driverRedis, driverValkey:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("matchcraft: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	case driverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("matchcraft: unknown driver %q", cfg.driver)
	}
}

func wireClient(ctx context.Context, store db.Store, obs *observer) (*Client, error) {
	// The SDK reports through slog; the services log through a no-op zap logger.
	logger := zap.NewNop()

	profileRepo := profilerepo.New(store)
	if err := profileRepo.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("matchcraft: ensure profile index: %w", err)
	}

	return &Client{
		store:      store,
		profileSvc: profileuc.New(profileRepo, logger),
		suggestSvc: suggestuc.New(searchrepo.New(store), logger),
		messageSvc: messageuc.New(msgrepo.New(store), profileRepo, logger),
		healthSvc:  healthuc.New(store, logger),
		usageSvc:   usageuc.New(nil), // nil = unlimited mode (no prompt provider in the SDK)
		obs:        obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Profiles returns the profile management service.
func (c *Client) Profiles() *ProfileService {
	return &ProfileService{svc: c.profileSvc, obs: c.obs}
}

// Messages returns the direct messaging service.
func (c *Client) Messages() *MessageService {
	return &MessageService{svc: c.messageSvc, obs: c.obs}
}

// Suggest returns autocomplete suggestions for q. Lookup failures inside
// the store yield an empty list; an error is returned only when ctx is done.
func (c *Client) Suggest(ctx context.Context, q string) (_ []Suggestion, err error) {
	start := time.Now()
	defer func() { c.obs.observe("suggest", start, err) }()

	items := c.suggestSvc.Suggest(ctx, q)
	if err = ctx.Err(); err != nil {
		return []Suggestion{}, fmt.Errorf("suggest: %w", err)
	}
	return suggestionsFromDomain(items), nil
}
