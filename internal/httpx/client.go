// Package httpx is the shared outbound HTTP client for the three UNEMI
// upstream systems. It decodes JSON bodies for any status below 500, since
// the upstreams put business signals ("must change password", login
// rejections) in 4xx bodies, and retries transient failures with
// exponential backoff.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"unemigw/internal/student/models"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 2
	retryBaseDelay = 500 * time.Millisecond
)

// Options carries per-request settings.
type Options struct {
	Headers     map[string]string
	Params      map[string]string
	BearerToken string
}

// Client wraps net/http with the retry policy every upstream call shares:
// up to 2 retries, exponential backoff, retrying only network-level errors,
// client-side timeouts, and 5xx responses to idempotent requests. A 5xx to a
// POST is never retried blindly; the upstreams own idempotency there.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// New builds a Client with the given per-call timeout (0 means the 30s
// default).
func New(timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// GetJSON performs a GET and returns the decoded JSON body.
func (c *Client) GetJSON(ctx context.Context, rawURL string, opts Options) (models.Payload, error) {
	return c.do(ctx, http.MethodGet, rawURL, nil, "", opts)
}

// PostJSON marshals body as JSON, performs a POST and returns the decoded
// response body.
func (c *Client) PostJSON(ctx context.Context, rawURL string, body any, opts Options) (models.Payload, error) {
	var buf []byte
	if body != nil {
		var err error
		buf, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}
	return c.do(ctx, http.MethodPost, rawURL, buf, "application/json", opts)
}

// PostForm performs a form-encoded POST and returns the decoded response
// body. Used by the posgrado recover endpoint, which only speaks urlencoded.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values, opts Options) (models.Payload, error) {
	return c.do(ctx, http.MethodPost, rawURL, []byte(form.Encode()), "application/x-www-form-urlencoded; charset=UTF-8", opts)
}

func (c *Client) do(ctx context.Context, method, rawURL string, body []byte, contentType string, opts Options) (models.Payload, error) {
	target := rawURL
	if len(opts.Params) > 0 {
		q := url.Values{}
		for k, v := range opts.Params {
			q.Set(k, v)
		}
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		target = rawURL + sep + q.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-1))
			c.logger.Debug("retrying upstream request",
				"method", method, "url", rawURL, "attempt", attempt+1, "delay", delay.String())
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%s %s: %w", method, rawURL, ctx.Err())
			}
		}

		payload, retryable, err := c.attempt(ctx, method, target, body, contentType, opts)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%s %s failed: %w", method, rawURL, lastErr)
}

func (c *Client) attempt(ctx context.Context, method, target string, body []byte, contentType string, opts Options) (models.Payload, bool, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "es-419,es;q=0.9")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if opts.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+opts.BearerToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, retryableTransport(method, err), fmt.Errorf("transport: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, method == http.MethodGet, fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, false, nil
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return payload, false, nil
}

// retryableTransport reports whether a transport-level failure is safe to
// retry. Timeouts are retried for every method; other connection errors only
// when the request never carried state-changing intent.
func retryableTransport(method string, err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return method == http.MethodGet
}
