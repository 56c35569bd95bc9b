package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/synthfhir/synthfhir/internal/config"
	"github.com/synthfhir/synthfhir/internal/platform/db"
	"github.com/synthfhir/synthfhir/pkg/contract"
)

// Bridge binds a Store to one session.
type Bridge struct {
	store   Store
	session string
	logger  zerolog.Logger
}

func New(store Store, session string, logger zerolog.Logger) *Bridge {
	return &Bridge{store: store, session: session, logger: logger}
}

func (b *Bridge) Session() string { return b.session }

// Publish replaces the session snapshot with data.
func (b *Bridge) Publish(ctx context.Context, data contract.GeneratedData) error {
	if data == nil {
		data = contract.GeneratedData{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode generated data: %w", err)
	}
	if err := b.store.Put(ctx, b.session, payload); err != nil {
		return fmt.Errorf("publish results: %w", err)
	}
	return nil
}

// Read returns the session snapshot. A missing or unparseable snapshot is
// the empty state, not an error; only store failures are returned.
func (b *Bridge) Read(ctx context.Context) (contract.GeneratedData, error) {
	payload, err := b.store.Get(ctx, b.session)
	if errors.Is(err, ErrNotFound) {
		return contract.GeneratedData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	var data contract.GeneratedData
	if err := json.Unmarshal(payload, &data); err != nil {
		b.logger.Warn().Err(err).Str("session", b.session).Msg("discarding unparseable bridge snapshot")
		return contract.GeneratedData{}, nil
	}
	if data == nil {
		data = contract.GeneratedData{}
	}
	return data, nil
}

// Open builds the store selected by cfg.BridgeDriver. The returned close
// function releases any database pool and is never nil.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Bridge, func(), error) {
	noop := func() {}
	switch cfg.BridgeDriver {
	case config.BridgeFile, "":
		store, err := NewFileStore(cfg.BridgeDir)
		if err != nil {
			return nil, noop, err
		}
		return New(store, cfg.BridgeSession, logger), noop, nil
	case config.BridgeMemory:
		store, err := NewMemoryStore(cfg.BridgeMemorySessions)
		if err != nil {
			return nil, noop, err
		}
		return New(store, cfg.BridgeSession, logger), noop, nil
	case config.BridgePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, noop, err
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return New(NewPostgresStore(pool), cfg.BridgeSession, logger), closePool(pool), nil
	default:
		return nil, noop, fmt.Errorf("unknown bridge driver %q", cfg.BridgeDriver)
	}
}

func closePool(pool *pgxpool.Pool) func() {
	return func() { pool.Close() }
}
