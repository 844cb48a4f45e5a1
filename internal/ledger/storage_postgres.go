package ledger

import (
	"errors"
	"fmt"

	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/gymledger/internal/telemetry/tracing"
)

// PostgresStorage is an alternative Storage backend over a simple
// key-value table:
//
//	CREATE TABLE IF NOT EXISTS gymledger_kv (
//	    key        TEXT PRIMARY KEY,
//	    payload    BYTEA NOT NULL,
//	    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
//	);
type PostgresStorage struct {
	db *pgxpool.Pool
}

func NewPostgresStorage(db *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (s *PostgresStorage) Get(ctx context.Context, key string) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.postgres.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("key", key))

	var payload []byte
	err = s.db.
		QueryRow(ctx, `SELECT payload FROM gymledger_kv WHERE key = $1`, key).
		Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query payload: %w", err)
	}
	return payload, nil
}

func (s *PostgresStorage) Set(ctx context.Context, key string, payload []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.postgres.set")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("key", key))
	span.SetAttributes(attribute.Int("payload.size", len(payload)))

	_, err = s.db.Exec(ctx, `
		INSERT INTO gymledger_kv (key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET payload = $2, updated_at = NOW();
	`, key, payload)
	return err
}

func (s *PostgresStorage) Del(ctx context.Context, keys ...string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.postgres.del")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = s.db.Exec(ctx, `DELETE FROM gymledger_kv WHERE key = ANY($1)`, keys)
	return err
}
