package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

const fallbackMessage = "Failed to enhance content"

// ErrEmptyContent is returned without any network call.
var ErrEmptyContent = errors.New("content is required")

// Error is a failed gateway call. Message is safe to show to the user.
type Error struct {
	Status  int // 0 for transport failures
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Client calls the enhancement gateway and tracks whether a call is in
// flight and how the last one failed. It does not serialise calls; the
// editing surface disables its control while one is pending.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	onPending  func(bool)

	mu      sync.Mutex
	pending bool
	err     error
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends a bearer token with every call.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithPendingHook observes every change of the pending flag.
func WithPendingHook(fn func(pending bool)) Option {
	return func(c *Client) { c.onPending = fn }
}

// NewClient targets the gateway served under baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + "/api/enhance-note",
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pending reports whether a call is in flight.
func (c *Client) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Err returns the error of the last call, or nil if it succeeded.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Enhance returns the gateway's enhanced text exactly as received.
func (c *Client) Enhance(ctx context.Context, content string, d Directive) (string, error) {
	if content == "" {
		c.reject(ErrEmptyContent)
		return "", ErrEmptyContent
	}

	c.start()
	out, err := c.do(ctx, content, d)
	c.finish(err)
	return out, err
}

func (c *Client) do(ctx context.Context, content string, d Directive) (string, error) {
	body, err := json.Marshal(EnhanceRequest{Content: content, EnhanceType: d})
	if err != nil {
		return "", &Error{Message: fallbackMessage, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Message: fallbackMessage, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Message: fallbackMessage, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Status: resp.StatusCode, Message: fallbackMessage, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = fallbackMessage
		}
		return "", &Error{Status: resp.StatusCode, Message: msg, Err: fmt.Errorf("gateway returned %s", resp.Status)}
	}

	var out EnhanceResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &Error{Status: resp.StatusCode, Message: fallbackMessage, Err: err}
	}
	return out.EnhancedContent, nil
}

func (c *Client) start() {
	c.mu.Lock()
	c.pending = true
	c.err = nil
	hook := c.onPending
	c.mu.Unlock()

	if hook != nil {
		hook(true)
	}
}

// reject records err for a call that never started; a call already in
// flight stays pending.
func (c *Client) reject(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

func (c *Client) finish(err error) {
	c.mu.Lock()
	was := c.pending
	c.pending = false
	c.err = err
	hook := c.onPending
	c.mu.Unlock()

	if hook != nil && was {
		hook(false)
	}
}
