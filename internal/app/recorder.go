package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// EventRecorder persists analytics records about sessions.
type EventRecorder interface {
	RecordEvent(ctx context.Context, record domain.SessionRecord) error
}

// NopRecorder ignores all records.
type NopRecorder struct{}

func (NopRecorder) RecordEvent(context.Context, domain.SessionRecord) error {
	return nil
}

// MemoryRecorder keeps records in memory for tests.
type MemoryRecorder struct {
	mu      sync.Mutex
	records []domain.SessionRecord
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) RecordEvent(_ context.Context, record domain.SessionRecord) error {
	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRecorder) Records() []domain.SessionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.SessionRecord{}, r.records...)
}

// RecordEvents turns session events into analytics records until events is closed
// or ctx is done. Ticks and resets are not recorded.
func RecordEvents(ctx context.Context, sessionID string, events <-chan domain.Event, recorder EventRecorder) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			record, ok := toRecord(sessionID, event)
			if !ok {
				continue
			}
			if err := recorder.RecordEvent(ctx, record); err != nil {
				slog.Warn("record session event failed", "session", sessionID, "type", record.Type, "error", err)
			}
		}
	}
}

func toRecord(sessionID string, event domain.Event) (domain.SessionRecord, bool) {
	record := domain.SessionRecord{SessionID: sessionID, CreatedAt: event.At}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	switch {
	case event.Type == domain.EventQuestion && event.Question != nil && event.Question.Index == 0:
		record.Type = domain.RecordQuizStarted
		record.Data = map[string]any{"total": event.Question.Total}
	case event.Type == domain.EventOutcome && event.Outcome != nil:
		record.Type = domain.RecordAnswer
		record.Data = map[string]any{
			"question":  event.Outcome.QuestionIndex,
			"correct":   event.Outcome.Correct,
			"timed_out": event.Outcome.TimedOut,
		}
	case event.Type == domain.EventSummary && event.Summary != nil:
		record.Type = domain.RecordQuizEnded
		record.Data = map[string]any{"score": event.Summary.Score, "total": event.Summary.Total}
	default:
		return domain.SessionRecord{}, false
	}
	return record, true
}
