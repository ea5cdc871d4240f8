package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ErrStorageUnavailable marks failures of the durable turn log. Callers can
// errors.Is against it regardless of the underlying driver error.
var ErrStorageUnavailable = errors.New("conversation: storage unavailable")

var storeTracer = otel.Tracer("chatrelay.internal.conversation.store")

// PgxPool is the subset of pgxpool.Pool the store needs, so pgxmock can
// stand in during tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists conversation turns in Postgres. The seq column (BIGSERIAL)
// is the ordering authority for a user's conversation: concurrent appends
// for the same user serialize through sequence assignment, so the store
// carries the whole consistency contract and callers never lock.
type Store struct {
	pool PgxPool
}

// NewStore creates a turn store backed by the given pool.
func NewStore(pool PgxPool) *Store {
	if pool == nil {
		panic("conversation: pool cannot be nil")
	}
	return &Store{pool: pool}
}

// Append inserts a new turn for the user and returns its assigned sequence.
func (s *Store) Append(ctx context.Context, userID, role, content string) (int64, error) {
	ctx, span := storeTracer.Start(ctx, "conversation.store.append")
	defer span.End()
	span.SetAttributes(
		attribute.String("chatrelay.user_id", userID),
		attribute.String("chatrelay.role", role),
	)

	var seq int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO conversation_turns (id, user_id, role, content)
		VALUES ($1, $2, $3, $4)
		RETURNING seq
	`, uuid.New(), userID, role, content).Scan(&seq)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("%w: append turn: %v", ErrStorageUnavailable, err)
	}
	return seq, nil
}

// Recent returns up to limit most-recent turns for the user, oldest-first.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]Turn, error) {
	ctx, span := storeTracer.Start(ctx, "conversation.store.recent")
	defer span.End()
	span.SetAttributes(attribute.String("chatrelay.user_id", userID))

	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, role, content, seq, created_at
		FROM (
			SELECT id, user_id, role, content, seq, created_at
			FROM conversation_turns
			WHERE user_id = $1
			ORDER BY seq DESC
			LIMIT $2
		) latest
		ORDER BY seq ASC
	`, userID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: query recent turns: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var turn Turn
		if err := rows.Scan(&turn.ID, &turn.UserID, &turn.Role, &turn.Content, &turn.Sequence, &turn.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%w: scan turn: %v", ErrStorageUnavailable, err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: read recent turns: %v", ErrStorageUnavailable, err)
	}
	return turns, nil
}

// Reset deletes the user's entire conversation in a single statement and
// returns the number of turns removed. A single DELETE keeps the operation
// atomic: an append racing the reset either survives it or is swept with it.
func (s *Store) Reset(ctx context.Context, userID string) (int64, error) {
	ctx, span := storeTracer.Start(ctx, "conversation.store.reset")
	defer span.End()
	span.SetAttributes(attribute.String("chatrelay.user_id", userID))

	tag, err := s.pool.Exec(ctx, `DELETE FROM conversation_turns WHERE user_id = $1`, userID)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("%w: reset conversation: %v", ErrStorageUnavailable, err)
	}
	return tag.RowsAffected(), nil
}
