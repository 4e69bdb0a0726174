package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-quiz-service/internal/domain"
)

// EventRecorder appends session records to the quiz_events table.
type EventRecorder struct {
	pool *pgxpool.Pool
}

// NewEventRecorder writes records through pool.
func NewEventRecorder(pool *pgxpool.Pool) *EventRecorder {
	return &EventRecorder{pool: pool}
}

func (r *EventRecorder) RecordEvent(ctx context.Context, record domain.SessionRecord) error {
	if record.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if record.SessionID == "" {
		return fmt.Errorf("session id is required")
	}

	payload := record.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO quiz_events (session_id, event_type, data, created_at) VALUES ($1, $2, $3::jsonb, $4)`,
		record.SessionID, record.Type, string(data), createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert quiz event: %w", err)
	}
	return nil
}

// SessionEvents returns the recorded event types of a session in insertion order.
func (r *EventRecorder) SessionEvents(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT event_type FROM quiz_events WHERE session_id=$1 ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query quiz events: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var typ string
		if err := rows.Scan(&typ); err != nil {
			return nil, fmt.Errorf("scan quiz event: %w", err)
		}
		types = append(types, typ)
	}
	return types, rows.Err()
}
