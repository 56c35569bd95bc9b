package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/synthfhir/synthfhir/internal/platform/db"
)

// PostgresStore keeps snapshots in a shared table so several client
// processes can hand off through one database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Put(ctx context.Context, session string, payload []byte) error {
	if err := validateSession(session); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+db.BridgeTable+` (session, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (session) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`,
		session, string(payload))
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, session string) ([]byte, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}
	var payload string
	err := s.pool.QueryRow(ctx,
		`SELECT payload::text FROM `+db.BridgeTable+` WHERE session = $1`, session).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return []byte(payload), nil
}
