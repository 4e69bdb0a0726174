package domain

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty selects the question pool tier for a session.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// DefaultDifficulty is used when the player does not pick one.
const DefaultDifficulty = Medium

// Difficulties lists the accepted values in display order.
func Difficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// ParseDifficulty maps raw input to a Difficulty; empty input yields DefaultDifficulty.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(raw))); d {
	case "":
		return DefaultDifficulty, nil
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, raw)
	}
}

// Question is a multiple-choice question with its choices already shuffled.
// Text fields keep the source encoding.
type Question struct {
	Text          string   `json:"text"`
	Choices       []string `json:"choices"`
	CorrectAnswer string   `json:"-"`
}

// State is a quiz session state.
type State string

const (
	StateIdle           State = "idle"
	StateLoading        State = "loading"
	StateAwaitingAnswer State = "awaiting_answer"
	StateAnswered       State = "answered"
	StateEnded          State = "ended"
)

// Mark flags a presented choice after an answer.
type Mark string

const (
	MarkNone    Mark = ""
	MarkCorrect Mark = "correct"
	MarkWrong   Mark = "wrong"
)

// NoSelection is the selected index reported for a timed-out question.
const NoSelection = -1

// Outcome is the result of answering one question.
type Outcome struct {
	QuestionIndex int    `json:"questionIndex"`
	Selected      int    `json:"selected"`
	Correct       bool   `json:"correct"`
	TimedOut      bool   `json:"timedOut"`
	Marks         []Mark `json:"marks"`
	Score         int    `json:"score"`
}

// QuestionView is what the presentation layer renders for the current question.
type QuestionView struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
}

// Summary is the end-of-quiz result.
type Summary struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	State      State         `json:"state"`
	Difficulty Difficulty    `json:"difficulty,omitempty"`
	Index      int           `json:"index"`
	Total      int           `json:"total"`
	Score      int           `json:"score"`
	Answered   int           `json:"answered"`
	Question   *QuestionView `json:"question,omitempty"`
	Marks      []Mark        `json:"marks,omitempty"`
	Locked     bool          `json:"locked"`
	Remaining  int           `json:"remaining"`
}

// EventType names a session notification.
type EventType string

const (
	EventQuestion EventType = "question"
	EventTick     EventType = "tick"
	EventOutcome  EventType = "outcome"
	EventSummary  EventType = "summary"
	EventError    EventType = "error"
	EventReset    EventType = "reset"
)

// Event is emitted by a session on every state change the presentation layer cares about.
type Event struct {
	Type      EventType     `json:"type"`
	Question  *QuestionView `json:"question,omitempty"`
	Remaining int           `json:"remaining,omitempty"`
	Outcome   *Outcome      `json:"outcome,omitempty"`
	Summary   *Summary      `json:"summary,omitempty"`
	Message   string        `json:"message,omitempty"`
	At        time.Time     `json:"at"`
}

// Analytics event names written by recorders.
const (
	RecordQuizStarted = "quiz_started"
	RecordAnswer      = "answer"
	RecordQuizEnded   = "quiz_ended"
)

// SessionRecord is an append-only analytics record about a session.
type SessionRecord struct {
	SessionID string
	Type      string
	Data      map[string]any
	CreatedAt time.Time
}
