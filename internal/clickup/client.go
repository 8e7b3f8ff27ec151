package clickup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

const baseURL = "https://api.clickup.com/api/v2"

// ClickUp allows 100 requests per minute per token on the free plans.
const defaultRequestsPerMinute = 100

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxTries   uint
	newBackOff func() backoff.BackOff
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithRateLimit(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func WithRetry(maxTries uint, newBackOff func() backoff.BackOff) Option {
	return func(c *Client) {
		c.maxTries = maxTries
		c.newBackOff = newBackOff
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/defaultRequestsPerMinute), 10),
		maxTries:   4,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type ClickUpTask struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Status      ClickUpStatus    `json:"status"`
	Priority    *ClickUpPriority `json:"priority"`
	URL         string           `json:"url"`
	DueDate     *string          `json:"due_date"`
	DateCreated string           `json:"date_created"`
	DateClosed  *string          `json:"date_closed"`
	Assignees   []Assignee       `json:"assignees"`
	List        ListRef          `json:"list"`
}

type ClickUpStatus struct {
	Status string `json:"status"`
	Type   string `json:"type"`
}

type ClickUpPriority struct {
	ID       string `json:"id"`
	Priority string `json:"priority"`
}

type Assignee struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type ListRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type List struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Folder ListRef `json:"folder"`
}

type TasksResponse struct {
	Tasks    []ClickUpTask `json:"tasks"`
	LastPage bool          `json:"last_page"`
}

type listsResponse struct {
	Lists []List `json:"lists"`
}

// statusError carries the HTTP status so retries can tell transient
// failures from permanent ones.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.code, e.body)
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// get performs a rate limited GET with retries and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Authorization", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			serr := &statusError{code: resp.StatusCode, body: string(body)}
			if retryable(resp.StatusCode) {
				return struct{}{}, serr
			}
			return struct{}{}, backoff.Permanent(serr)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(c.newBackOff()), backoff.WithMaxTries(c.maxTries))

	return err
}

// FetchTasks pages through every task of a list, closed ones included.
func (c *Client) FetchTasks(ctx context.Context, listID string, assigneeIDs []string) ([]ClickUpTask, error) {
	var all []ClickUpTask

	for page := 0; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("subtasks", "true")
		q.Set("include_closed", "true")
		for _, id := range assigneeIDs {
			q.Add("assignees[]", id)
		}

		var result TasksResponse
		if err := c.get(ctx, "/list/"+url.PathEscape(listID)+"/task", q, &result); err != nil {
			return nil, fmt.Errorf("list %s page %d: %w", listID, page, err)
		}

		all = append(all, result.Tasks...)
		if result.LastPage || len(result.Tasks) == 0 {
			break
		}
	}

	return all, nil
}

func (c *Client) ListsInFolder(ctx context.Context, folderID string) ([]List, error) {
	var result listsResponse
	if err := c.get(ctx, "/folder/"+url.PathEscape(folderID)+"/list", nil, &result); err != nil {
		return nil, fmt.Errorf("folder %s: %w", folderID, err)
	}
	return result.Lists, nil
}

func (c *Client) HealthCheck(ctx context.Context) error {
	var user map[string]any
	if err := c.get(ctx, "/user", nil, &user); err != nil {
		var serr *statusError
		if errors.As(err, &serr) {
			return fmt.Errorf("API health check failed with status %d", serr.code)
		}
		return err
	}
	return nil
}
