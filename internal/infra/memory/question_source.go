package memory

import (
	"context"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// StaticQuestionSource serves a fixed batch of questions (useful for tests/demos).
// Every Fetch returns a fresh copy, so sessions never share choice slices.
type StaticQuestionSource struct {
	questions []domain.Question
	err       error

	mu    sync.Mutex
	calls []domain.Difficulty
}

func NewStaticQuestionSource(questions []domain.Question) *StaticQuestionSource {
	return &StaticQuestionSource{questions: questions}
}

// NewFailingQuestionSource returns a source whose every Fetch fails with err.
func NewFailingQuestionSource(err error) *StaticQuestionSource {
	return &StaticQuestionSource{err: err}
}

func (s *StaticQuestionSource) Fetch(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	s.mu.Lock()
	s.calls = append(s.calls, difficulty)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchTransport, Err: err}
	}
	if s.err != nil {
		return nil, s.err
	}
	if len(s.questions) == 0 {
		return nil, &domain.FetchError{Kind: domain.FetchEmpty}
	}

	out := make([]domain.Question, len(s.questions))
	for i, q := range s.questions {
		q.Choices = append([]string(nil), q.Choices...)
		out[i] = q
	}
	return out, nil
}

// Calls returns the difficulties requested so far.
func (s *StaticQuestionSource) Calls() []domain.Difficulty {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Difficulty(nil), s.calls...)
}
