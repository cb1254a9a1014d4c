// Package httpclient wraps net/http for calls to external REST services:
// every request has a deadline, transient failures are retried once and
// outbound traffic is paced by a token bucket.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ObserveFunc receives the outcome of every attempt. status is 0 when the
// request failed before a response was read.
type ObserveFunc func(service string, status int, elapsed time.Duration)

// Client is a small retrying HTTP client bound to one upstream service.
type Client struct {
	service    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retryDelay time.Duration
	observe    ObserveFunc
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit paces requests to at most perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithRetryDelay sets the pause before the single retry.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithObserver registers a callback invoked after each attempt.
func WithObserver(fn ObserveFunc) Option {
	return func(c *Client) {
		c.observe = fn
	}
}

// New creates a client for service with an explicit per-attempt timeout.
func New(service string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		service: service,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retryDelay: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the upstream name used in errors and metrics.
func (c *Client) Service() string {
	return c.service
}

// Do sends req, retrying once when the failure is transient. The request body
// must be replayable (requests built from bytes or strings readers are).
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.attempt(req)
	if !isTransient(req.Context(), resp, err) {
		return resp, err
	}
	if resp != nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	retry, rerr := rewind(req)
	if rerr != nil {
		return nil, fmt.Errorf("failed to rewind request for retry: %w", rerr)
	}

	select {
	case <-req.Context().Done():
		return nil, req.Context().Err()
	case <-time.After(c.retryDelay):
	}

	return c.attempt(retry)
}

func (c *Client) attempt(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.observe != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		c.observe(c.service, status, time.Since(start))
	}
	return resp, err
}

// GetJSON issues a GET and decodes a 200 response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.DoJSON(req, out)
}

// DoJSON sends req and decodes a 200 response into out. Any other status is
// returned as an error carrying the response body.
func (c *Client) DoJSON(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Service: c.service, StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.service, err)
	}
	return nil
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s api error: status=%d body=%s", e.Service, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from an upstream.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

func isTransient(ctx context.Context, resp *http.Response, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		return true
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
}

func rewind(req *http.Request) (*http.Request, error) {
	retry := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return retry, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	retry.Body = body
	return retry, nil
}
