// Package opentdb fetches multiple-choice questions from the Open Trivia DB API.
package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/semaphore"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

const (
	DefaultBaseURL  = "https://opentdb.com/api.php"
	DefaultAmount   = 5
	DefaultCategory = 9 // General Knowledge
	DefaultTimeout  = 10 * time.Second
)

// Open Trivia DB response codes.
const (
	codeSuccess   = 0
	codeNoResults = 1
)

// Client implements app.QuestionSource over HTTP.
type Client struct {
	baseURL  string
	amount   int
	category int
	timeout  time.Duration
	client   *http.Client
	rnd      app.Intn
	slots    *semaphore.Weighted
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.client = client }
}

// WithBatch overrides the question count and category of every request.
func WithBatch(amount, category int) Option {
	return func(c *Client) {
		c.amount = amount
		c.category = category
	}
}

// WithTimeout bounds each request; zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMaxConcurrent caps in-flight requests to the service.
func WithMaxConcurrent(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.slots = semaphore.NewWeighted(n)
		}
	}
}

// WithRand replaces the random source used to shuffle choices.
func WithRand(rnd app.Intn) Option {
	return func(c *Client) { c.rnd = rnd }
}

// NewClient returns a client for baseURL, or DefaultBaseURL when empty.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:  baseURL,
		amount:   DefaultAmount,
		category: DefaultCategory,
		timeout:  DefaultTimeout,
		client:   http.DefaultClient,
		rnd:      app.NewLockedRand(),
		slots:    semaphore.NewWeighted(2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	ResponseCode int       `json:"response_code"`
	Results      []apiItem `json:"results"`
}

type apiItem struct {
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// Fetch issues one request for a batch of questions at the given difficulty.
func (c *Client) Fetch(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	if difficulty == "" {
		difficulty = domain.DefaultDifficulty
	}

	if err := c.slots.Acquire(ctx, 1); err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchTransport, Err: err}
	}
	defer c.slots.Release(1)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(difficulty), nil)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchTransport, Err: fmt.Errorf("send request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &domain.FetchError{Kind: domain.FetchTransport, StatusCode: resp.StatusCode}
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchTransport, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	switch {
	case body.ResponseCode == codeNoResults, body.ResponseCode == codeSuccess && len(body.Results) == 0:
		return nil, &domain.FetchError{Kind: domain.FetchEmpty, StatusCode: resp.StatusCode}
	case body.ResponseCode != codeSuccess:
		return nil, &domain.FetchError{
			Kind:       domain.FetchTransport,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("opentdb response code %d", body.ResponseCode),
		}
	}

	questions := make([]domain.Question, 0, len(body.Results))
	for _, item := range body.Results {
		questions = append(questions, c.toQuestion(item))
	}
	slog.Debug("questions fetched", "difficulty", difficulty, "count", len(questions))
	return questions, nil
}

func (c *Client) requestURL(difficulty domain.Difficulty) string {
	q := url.Values{}
	q.Set("amount", strconv.Itoa(c.amount))
	q.Set("category", strconv.Itoa(c.category))
	q.Set("difficulty", string(difficulty))
	q.Set("type", "multiple")
	return c.baseURL + "?" + q.Encode()
}

// toQuestion appends the correct answer to the incorrect ones and shuffles the result.
func (c *Client) toQuestion(item apiItem) domain.Question {
	choices := make([]string, 0, len(item.IncorrectAnswers)+1)
	choices = append(choices, item.IncorrectAnswers...)
	choices = append(choices, item.CorrectAnswer)
	return domain.Question{
		Text:          item.Question,
		Choices:       app.Shuffle(choices, c.rnd),
		CorrectAnswer: item.CorrectAnswer,
	}
}
