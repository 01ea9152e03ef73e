// Package client talks to the trivia service over JSON/HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/tuivia/internal/errors"
	"github.com/verte-zerg/tuivia/internal/model"
)

const (
	maxResponseBody = 1 << 20
	maxErrorBody    = 4 << 10
)

// Client implements the service contract used by the quiz session and the
// leaderboard browser.
type Client struct {
	base       *url.URL
	http       *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRetry sets how often idempotent requests are retried and the first
// backoff delay.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseDelay = baseDelay
	}
}

// New returns a client for the service rooted at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base:       base,
		http:       &http.Client{Timeout: timeout},
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type categoriesResponse struct {
	Categories map[string]string `json:"categories"`
}

type quizRequest struct {
	PreviousQuestions []int                `json:"previous_questions"`
	QuizCategory      model.CategoryFilter `json:"quiz_category"`
}

type questionPayload struct {
	ID         int    `json:"id"`
	Question   string `json:"question"`
	Text       string `json:"text"`
	Answer     string `json:"answer"`
	Category   int    `json:"category"`
	Difficulty int    `json:"difficulty"`
}

type quizResponse struct {
	Question *questionPayload `json:"question"`
}

type leaderboardResponse struct {
	Results      []model.LeaderboardEntry `json:"results"`
	TotalResults *int                     `json:"totalResults"`
}

type scoreRequest struct {
	Player string `json:"player"`
	Score  int    `json:"score"`
}

type errorResponse struct {
	Error   any    `json:"error"`
	Message string `json:"message"`
}

// Categories returns the service's categories ordered by id.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var payload categoriesResponse
	if err := c.getJSON(ctx, "/categories", nil, &payload); err != nil {
		return nil, err
	}
	out := make([]model.Category, 0, len(payload.Categories))
	for rawID, label := range payload.Categories {
		id, err := strconv.Atoi(rawID)
		if err != nil {
			return nil, errors.New(errors.KindDecode, errors.WithCause(err), errors.WithMessagef("invalid category id %q", rawID))
		}
		out = append(out, model.Category{ID: id, Label: label})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// NextQuestion asks for a question not in previous. A nil question means the
// category is exhausted.
func (c *Client) NextQuestion(ctx context.Context, previous []int, category model.CategoryFilter) (*model.Question, error) {
	if !category.IsSet() {
		return nil, errors.Validation("category not selected")
	}
	if previous == nil {
		previous = []int{}
	}
	var payload quizResponse
	body := quizRequest{PreviousQuestions: previous, QuizCategory: category}
	if err := c.postJSON(ctx, "/quizzes", body, &payload); err != nil {
		return nil, err
	}
	if payload.Question == nil {
		return nil, nil
	}
	q := payload.Question
	text := q.Question
	if text == "" {
		text = q.Text
	}
	return &model.Question{
		ID:         q.ID,
		Text:       text,
		Answer:     q.Answer,
		Category:   q.Category,
		Difficulty: q.Difficulty,
	}, nil
}

// Leaderboard returns one page of results.
func (c *Client) Leaderboard(ctx context.Context, page int) (model.LeaderboardPage, error) {
	if page < 1 {
		return model.LeaderboardPage{}, errors.Validation("page must be >= 1, got %d", page)
	}
	var payload leaderboardResponse
	query := url.Values{"page": []string{strconv.Itoa(page)}}
	if err := c.getJSON(ctx, "/leaderboard", query, &payload); err != nil {
		return model.LeaderboardPage{}, err
	}
	if payload.TotalResults == nil {
		return model.LeaderboardPage{}, errors.New(errors.KindDecode, errors.WithMessagef("leaderboard response is missing totalResults"))
	}
	if *payload.TotalResults < 0 {
		return model.LeaderboardPage{}, errors.New(errors.KindDecode, errors.WithMessagef("negative totalResults %d", *payload.TotalResults))
	}
	return model.LeaderboardPage{Entries: payload.Results, Total: *payload.TotalResults}, nil
}

// SubmitScore posts a final score. It is never retried.
func (c *Client) SubmitScore(ctx context.Context, player string, score int) error {
	return c.postJSON(ctx, "/leaderboard", scoreRequest{Player: player, Score: score}, nil)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.base.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.endpoint(path, query)
	resp, err := c.do(ctx, true, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	return decodeBody(resp, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return errors.New(errors.KindValidation, errors.WithCause(err), errors.WithMessagef("encode request"))
	}
	target := c.endpoint(path, nil)
	resp, err := c.do(ctx, false, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	return decodeBody(resp, out)
}

func decodeBody(resp *http.Response, out any) error {
	defer func() {
		_ = resp.Body.Close()
	}()
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(out); err != nil {
		return errors.New(errors.KindDecode, errors.WithCause(err), errors.WithMessagef("malformed response from %s", resp.Request.URL.Path))
	}
	return nil
}

func serviceError(status int, body []byte) *errors.Error {
	message := strings.TrimSpace(http.StatusText(status))
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		message = payload.Message
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 && !strings.HasPrefix(text, "<") {
		message = text
	}
	if message == "" {
		message = "request failed"
	}
	return errors.New(errors.KindService, errors.WithStatus(status), errors.WithMessagef("%s", message))
}
