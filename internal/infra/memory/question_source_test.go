package memory

import (
	"context"
	"errors"
	"testing"

	"trivia-quiz-service/internal/domain"
)

func TestStaticQuestionSourceReturnsCopies(t *testing.T) {
	source := NewStaticQuestionSource([]domain.Question{
		{Text: "2 + 2?", Choices: []string{"3", "4"}, CorrectAnswer: "4"},
	})

	first, err := source.Fetch(context.Background(), domain.Easy)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	first[0].Choices[0] = "changed"

	second, err := source.Fetch(context.Background(), domain.Hard)
	if err != nil {
		t.Fatalf("fetch 2: %v", err)
	}
	if second[0].Choices[0] != "3" {
		t.Fatalf("expected fresh copy, got %q", second[0].Choices[0])
	}
	if calls := source.Calls(); len(calls) != 2 || calls[0] != domain.Easy || calls[1] != domain.Hard {
		t.Fatalf("unexpected calls %v", calls)
	}
}

func TestStaticQuestionSourceEmpty(t *testing.T) {
	_, err := NewStaticQuestionSource(nil).Fetch(context.Background(), domain.Medium)
	if !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected empty fetch error, got %v", err)
	}
}
