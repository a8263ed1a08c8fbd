package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/five82/todoview/internal/todo"
)

// Fetcher defines the data source used by the session and the detail overlay.
// This interface is implemented by *Client and can be used for testing.
type Fetcher interface {
	FetchTodos(ctx context.Context) ([]todo.Todo, error)
	FetchUser(ctx context.Context, id int) (todo.User, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// ErrInvalidPayload marks a response body that does not match the expected shape.
var ErrInvalidPayload = errors.New("invalid payload")

// Client talks to the todos HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
	schemas   *schemaSet
}

// Options tune the client. The zero value is usable.
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64 // zero or negative disables rate limiting
	UserAgent         string
}

const (
	DefaultBaseURL   = "https://jsonplaceholder.typicode.com"
	defaultUserAgent = "todoview/0.1"
	DefaultTimeout   = 5 * time.Second
	maxBodyBytes     = 8 << 20
)

// NewClient builds a Client rooted at baseURL.
func NewClient(baseURL string, opts Options) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		schemas:   schemas,
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// FetchTodos retrieves the complete, unfiltered todo list.
func (c *Client) FetchTodos(ctx context.Context) ([]todo.Todo, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []todo.Todo
	if err := c.get(ctx, "todos", c.schemas.todos, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = []todo.Todo{}
	}
	return payload, nil
}

// FetchUser retrieves the user a todo belongs to.
func (c *Client) FetchUser(ctx context.Context, id int) (todo.User, error) {
	if c == nil {
		return todo.User{}, fmt.Errorf("client is nil")
	}
	if id <= 0 {
		return todo.User{}, fmt.Errorf("user id required")
	}
	var payload todo.User
	if err := c.get(ctx, "users/"+strconv.Itoa(id), c.schemas.user, &payload); err != nil {
		return todo.User{}, err
	}
	return payload, nil
}

func (c *Client) get(ctx context.Context, path string, schema validator, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api /%s returned status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := validate(schema, body); err != nil {
		return fmt.Errorf("api /%s: %w", path, err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func validate(schema validator, body []byte) error {
	if schema == nil {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api base %q: missing host", raw)
	}
	// Keep any path prefix so relative endpoints resolve beneath it.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
