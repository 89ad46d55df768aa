package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const notifyChannel = "liehard_documents"

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps each document in one JSONB row. Writes announce the
// changed document ID on a NOTIFY channel so every process serving the
// same database sees them.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	cpus := int32(runtime.NumCPU())
	poolConfig.MaxConns = cpus * 2
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}

	zap.L().Info("Connected to postgres document store")

	return &PostgresStore{pool: pool}, nil
}

func (ps *PostgresStore) Read(ctx context.Context, docID string) (json.RawMessage, error) {
	var data []byte

	err := ps.pool.QueryRow(ctx, `SELECT data FROM documents WHERE id = $1`, docID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, docID)
	}
	if err != nil {
		return nil, err
	}

	return data, nil
}

func (ps *PostgresStore) WriteWhole(ctx context.Context, docID string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", docID, err)
	}

	return pgx.BeginFunc(ctx, ps.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO documents (id, data, updated_at)
			VALUES ($1, $2::jsonb, now())
			ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
		`, docID, string(raw))
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, docID)
		return err
	})
}

// WritePartial locks the row, merges fields with the same rules as
// MemoryStore and writes the result back, so an invalid path rolls the
// whole call back.
func (ps *PostgresStore) WritePartial(ctx context.Context, docID string, fields Fields) error {
	if len(fields) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, ps.pool, func(tx pgx.Tx) error {
		var current []byte

		err := tx.QueryRow(ctx, `SELECT data FROM documents WHERE id = $1 FOR UPDATE`, docID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrDocumentNotFound, docID)
		}
		if err != nil {
			return err
		}

		next, err := applyFields(current, fields)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `UPDATE documents SET data = $2::jsonb, updated_at = now() WHERE id = $1`, docID, string(next))
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, docID)
		return err
	})
}

func (ps *PostgresStore) Subscribe(ctx context.Context, docID string) (*Subscription, error) {
	conn, err := ps.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}

	listen := "LISTEN " + pgx.Identifier{notifyChannel}.Sanitize()
	if _, err := conn.Exec(ctx, listen); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := newSubscription(uuid.NewString(), cancel)

	if snap, ok := ps.snapshot(subCtx, docID); ok {
		sub.push(snap)
	}

	go func() {
		defer close(sub.ch)
		defer func() {
			unlistenCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()

			if _, err := conn.Exec(unlistenCtx, "UNLISTEN *"); err != nil {
				// a connection in an unknown state must not go back to the pool
				conn.Hijack().Close(unlistenCtx)
				return
			}
			conn.Release()
		}()

		for {
			notification, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() == nil {
					zap.L().Error(
						"Document subscription failed",
						zap.String("doc_id", docID),
						zap.Error(err),
					)
				}
				return
			}

			if notification.Payload != docID {
				continue
			}

			if snap, ok := ps.snapshot(subCtx, docID); ok {
				sub.push(snap)
			}
		}
	}()

	return sub, nil
}

// snapshot reports false when the read failed for a reason other than the
// document being absent; subscribers keep their last snapshot then.
func (ps *PostgresStore) snapshot(ctx context.Context, docID string) (Snapshot, bool) {
	data, err := ps.Read(ctx, docID)
	if errors.Is(err, ErrDocumentNotFound) {
		return Snapshot{DocID: docID}, true
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			zap.L().Error("Failed to read document for subscriber", zap.String("doc_id", docID), zap.Error(err))
		}
		return Snapshot{}, false
	}

	return Snapshot{DocID: docID, Data: data, Exists: true}, true
}

func (ps *PostgresStore) Close() error {
	ps.pool.Close()
	return nil
}
