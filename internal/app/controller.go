package app

import (
	"context"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// QuestionSource fetches a batch of questions for one session.
type QuestionSource interface {
	Fetch(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error)
}

// SessionRegistry tracks the live controllers of a process (in-memory, Redis, etc).
type SessionRegistry interface {
	Add(c *Controller)
	Get(id string) (*Controller, bool)
	Remove(id string)
	Touch(id string)
	Active(ctx context.Context) (int, error)
}

// Config holds the per-session quiz parameters.
type Config struct {
	TimeLimit time.Duration
	Tick      time.Duration
}

// DefaultConfig is 30 ticks of one second per question.
func DefaultConfig() Config {
	return Config{TimeLimit: 30 * time.Second, Tick: time.Second}
}

func (c Config) units() int {
	if c.Tick <= 0 {
		return int(DefaultConfig().TimeLimit / DefaultConfig().Tick)
	}
	n := int(c.TimeLimit / c.Tick)
	if n < 1 {
		n = 1
	}
	return n
}

func (c Config) tick() time.Duration {
	if c.Tick <= 0 {
		return DefaultConfig().Tick
	}
	return c.Tick
}

// Option customizes a Controller.
type Option func(*Controller)

// WithScheduler replaces the ticker used for the question countdown.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

// WithClock is test-only for deterministic event timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller runs a single player's quiz session: question progression, countdown,
// scoring and answer locking. All methods are safe for concurrent use.
type Controller struct {
	id        string
	cfg       Config
	source    QuestionSource
	scheduler Scheduler
	now       func() time.Time

	mu          sync.Mutex
	state       domain.State
	difficulty  domain.Difficulty
	questions   []domain.Question
	index       int
	score       int
	marks       []domain.Mark
	remaining   int
	timer       *countdown
	generation  uint64
	closed      bool
	subscribers map[chan domain.Event]struct{}
}

// NewController builds an idle session that fetches its questions from source.
func NewController(id string, cfg Config, source QuestionSource, opts ...Option) *Controller {
	c := &Controller{
		id:          id,
		cfg:         cfg,
		source:      source,
		scheduler:   TickerScheduler{},
		now:         time.Now,
		state:       domain.StateIdle,
		subscribers: make(map[chan domain.Event]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.id
}

// Start fetches a new batch of questions and presents the first one.
// Unknown difficulties are rejected before any fetch; empty means the default.
// On a fetch failure the session goes back to idle and the error is also emitted as an event.
func (c *Controller) Start(ctx context.Context, difficulty domain.Difficulty) error {
	difficulty, err := domain.ParseDifficulty(string(difficulty))
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed || c.state != domain.StateIdle {
		c.mu.Unlock()
		return domain.ErrInvalidState
	}
	c.resetLocked()
	c.difficulty = difficulty
	c.state = domain.StateLoading
	c.mu.Unlock()

	questions, err := c.source.Fetch(ctx, difficulty)
	if err == nil && len(questions) == 0 {
		err = &domain.FetchError{Kind: domain.FetchEmpty}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		if err != nil {
			return err
		}
		return domain.ErrInvalidState
	}
	if err != nil {
		c.resetLocked()
		c.broadcastLocked(domain.Event{Type: domain.EventError, Message: err.Error()})
		return err
	}

	c.questions = questions
	c.loadQuestionLocked()
	return nil
}

// Answer submits the choice at index for the current question.
func (c *Controller) Answer(choice int) (domain.Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed:
		return domain.Outcome{}, domain.ErrInvalidState
	case c.state == domain.StateAnswered:
		return domain.Outcome{}, domain.ErrAnswerLocked
	case c.state != domain.StateAwaitingAnswer:
		return domain.Outcome{}, domain.ErrInvalidState
	}

	question := c.questions[c.index]
	if choice < 0 || choice >= len(question.Choices) {
		return domain.Outcome{}, domain.ErrInvalidChoice
	}

	c.stopTimerLocked()
	return c.resolveLocked(choice, question.Choices[choice], false), nil
}

// Advance moves past an answered question, ending the session after the last one.
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != domain.StateAnswered {
		return domain.ErrInvalidState
	}
	c.index++
	c.loadQuestionLocked()
	return nil
}

// Restart discards an ended session and returns to idle.
func (c *Controller) Restart() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != domain.StateEnded {
		return domain.ErrInvalidState
	}
	c.resetLocked()
	c.broadcastLocked(domain.Event{Type: domain.EventReset})
	return nil
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := domain.Snapshot{
		State:      c.state,
		Difficulty: c.difficulty,
		Index:      c.index,
		Total:      len(c.questions),
		Score:      c.score,
		Answered:   c.answeredLocked(),
		Remaining:  c.remaining,
	}
	if c.state == domain.StateAwaitingAnswer || c.state == domain.StateAnswered {
		snap.Question = c.viewLocked()
		snap.Marks = append([]domain.Mark(nil), c.marks...)
		snap.Locked = c.state == domain.StateAnswered
	}
	return snap
}

// Subscribe returns a channel of session events.
// The caller must invoke the returned cancel function to avoid leaks.
func (c *Controller) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 64)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subscribers[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the countdown and closes every subscription. The controller rejects
// further commands.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.stopTimerLocked()
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}

func (c *Controller) resetLocked() {
	c.stopTimerLocked()
	c.state = domain.StateIdle
	c.difficulty = ""
	c.questions = nil
	c.index = 0
	c.score = 0
	c.marks = nil
	c.remaining = 0
}

func (c *Controller) loadQuestionLocked() {
	c.stopTimerLocked()
	if c.index >= len(c.questions) {
		c.endLocked()
		return
	}

	c.marks = make([]domain.Mark, len(c.questions[c.index].Choices))
	c.state = domain.StateAwaitingAnswer
	c.armTimerLocked()

	c.broadcastLocked(domain.Event{Type: domain.EventQuestion, Question: c.viewLocked()})
	c.broadcastLocked(domain.Event{Type: domain.EventTick, Remaining: c.remaining})
}

func (c *Controller) endLocked() {
	c.stopTimerLocked()
	c.state = domain.StateEnded
	c.broadcastLocked(domain.Event{
		Type:    domain.EventSummary,
		Summary: &domain.Summary{Score: c.score, Total: len(c.questions)},
	})
}

// resolveLocked scores the selection by exact text comparison and locks the question.
// A timed-out question passes NoSelection with empty text, which never flags a wrong choice.
func (c *Controller) resolveLocked(selected int, text string, timedOut bool) domain.Outcome {
	question := c.questions[c.index]
	correct := text == question.CorrectAnswer

	if correct {
		c.score++
		if selected != domain.NoSelection {
			c.marks[selected] = domain.MarkCorrect
		}
	} else {
		if selected != domain.NoSelection {
			c.marks[selected] = domain.MarkWrong
		}
		for i, choice := range question.Choices {
			if choice == question.CorrectAnswer {
				c.marks[i] = domain.MarkCorrect
			}
		}
	}
	c.state = domain.StateAnswered

	outcome := domain.Outcome{
		QuestionIndex: c.index,
		Selected:      selected,
		Correct:       correct,
		TimedOut:      timedOut,
		Marks:         append([]domain.Mark(nil), c.marks...),
		Score:         c.score,
	}
	event := outcome
	c.broadcastLocked(domain.Event{Type: domain.EventOutcome, Outcome: &event})
	return outcome
}

func (c *Controller) armTimerLocked() {
	c.stopTimerLocked()
	c.generation++
	gen := c.generation
	c.remaining = c.cfg.units()
	c.timer = &countdown{generation: gen}
	c.timer.cancel = c.scheduler.Every(c.cfg.tick(), func() { c.onTick(gen) })
}

func (c *Controller) stopTimerLocked() {
	if c.timer == nil {
		return
	}
	c.timer.stop()
	c.timer = nil
}

func (c *Controller) onTick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer == nil || c.timer.generation != gen || c.state != domain.StateAwaitingAnswer {
		return
	}
	c.remaining--
	c.broadcastLocked(domain.Event{Type: domain.EventTick, Remaining: c.remaining})
	if c.remaining <= 0 {
		c.stopTimerLocked()
		c.resolveLocked(domain.NoSelection, "", true)
	}
}

func (c *Controller) answeredLocked() int {
	switch c.state {
	case domain.StateAnswered:
		return c.index + 1
	case domain.StateEnded:
		return len(c.questions)
	default:
		return c.index
	}
}

func (c *Controller) viewLocked() *domain.QuestionView {
	question := c.questions[c.index]
	return &domain.QuestionView{
		Index:   c.index,
		Total:   len(c.questions),
		Text:    question.Text,
		Choices: append([]string(nil), question.Choices...),
	}
}

func (c *Controller) broadcastLocked(event domain.Event) {
	event.At = c.now()
	for ch := range c.subscribers {
		select {
		case ch <- event:
		default:
			// drop the oldest buffered event so a slow reader never blocks the session
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}
