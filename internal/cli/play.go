package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// NewPlayCmd runs a single quiz session in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var difficulty string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if difficulty == "" {
				difficulty = cfg.Quiz.Difficulty
			}
			d, err := domain.ParseDifficulty(difficulty)
			if err != nil {
				return err
			}
			controller := app.NewController(uuid.NewString(), quizConfig(cfg), newQuestionSource(cfg))
			return playQuiz(cmd.Context(), controller, d, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "easy, medium or hard (defaults to quiz.difficulty)")
	return cmd
}

// playQuiz drives c from line-based input until the input ends or the player quits.
// Input lines: a choice number answers, an empty line or "n" moves on, "r" plays
// again after the summary, "s" retries a failed start and "q" quits.
func playQuiz(ctx context.Context, c *app.Controller, difficulty domain.Difficulty, in io.Reader, out io.Writer) error {
	defer c.Close()

	w := &syncWriter{w: out}
	events, cancel := c.Subscribe()
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		printEvents(w, events)
	}()
	defer func() {
		cancel()
		<-printed
	}()

	start := func() {
		if err := c.Start(ctx, difficulty); err != nil && !isFetchError(err) {
			w.printf("Error: %v\n", err)
		}
	}
	start()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		var err error
		switch line {
		case "q":
			return nil
		case "", "n":
			err = c.Advance()
		case "r":
			if err = c.Restart(); err == nil {
				start()
			}
		case "s":
			start()
		default:
			n, convErr := strconv.Atoi(line)
			if convErr != nil {
				err = fmt.Errorf("unknown command %q", line)
				break
			}
			_, err = c.Answer(n - 1)
		}
		if err != nil {
			w.printf("Error: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}

func printEvents(w *syncWriter, events <-chan domain.Event) {
	var current *domain.QuestionView
	for event := range events {
		switch event.Type {
		case domain.EventQuestion:
			current = event.Question
			w.printf("\nQuestion %d of %d\n%s\n", current.Index+1, current.Total, html.UnescapeString(current.Text))
			for i, choice := range current.Choices {
				w.printf("  %d) %s\n", i+1, html.UnescapeString(choice))
			}
		case domain.EventTick:
			if event.Remaining > 0 && (event.Remaining%10 == 0 || event.Remaining <= 5) {
				w.printf("Time left: %ds\n", event.Remaining)
			}
		case domain.EventOutcome:
			printOutcome(w, current, event.Outcome)
		case domain.EventSummary:
			w.printf("\nYou answered %d out of %d questions correctly.\n", event.Summary.Score, event.Summary.Total)
			w.printf("Enter r to play again or q to quit.\n")
		case domain.EventError:
			w.printf("Error: %s\n", event.Message)
			w.printf("Enter s to try again or q to quit.\n")
		}
	}
}

func printOutcome(w *syncWriter, view *domain.QuestionView, outcome *domain.Outcome) {
	switch {
	case outcome.Correct:
		w.printf("Correct!")
	case outcome.TimedOut:
		w.printf("Time's up!")
	default:
		w.printf("Wrong.")
	}
	if !outcome.Correct && view != nil {
		for i, mark := range outcome.Marks {
			if mark == domain.MarkCorrect && i < len(view.Choices) {
				w.printf(" The answer was %s.", html.UnescapeString(view.Choices[i]))
				break
			}
		}
	}
	w.printf(" Score: %d. Press enter for the next question.\n", outcome.Score)
}

func isFetchError(err error) bool {
	var fetchErr *domain.FetchError
	return errors.As(err, &fetchErr)
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}
