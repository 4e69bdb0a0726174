package memory

import (
	"context"
	"testing"

	"trivia-quiz-service/internal/app"
)

func TestSessionRegistryLifecycle(t *testing.T) {
	registry := NewSessionRegistry()

	c := app.NewController("s1", app.DefaultConfig(), NewStaticQuestionSource(nil))
	registry.Add(c)
	got, ok := registry.Get("s1")
	if !ok || got != c {
		t.Fatalf("expected registered controller")
	}
	if n, _ := registry.Active(context.Background()); n != 1 {
		t.Fatalf("expected 1 session, got %d", n)
	}

	registry.Remove("s1")
	if _, ok := registry.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}
