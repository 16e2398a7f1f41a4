package databento

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://hist.databento.com"
	apiPathPrefix      = "/v0"
	defaultHTTPTimeout = 15 * time.Second
	defaultMaxAttempts = 3
	defaultBackoffBase = time.Second

	// Databento API keys always carry this prefix; anything else is a
	// configuration mistake caught before the first request.
	apiKeyPrefix = "db-"

	userAgent = "quotedesk/1.0 (+https://databento.com)"
)

// Client issues authenticated requests against the Databento historical API.
// It holds no mutable state beyond the immutable credential; quote caching
// lives in the Provider.
type Client struct {
	baseURL     string
	apiKey      string
	dataset     string
	httpClient  *http.Client
	maxAttempts int
	backoffBase time.Duration
	logger      *log.Logger
	clock       func() time.Time
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the default API endpoint URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithDataset overrides the default dataset identifier.
func WithDataset(dataset string) Option {
	return func(c *Client) {
		if dataset != "" {
			c.dataset = dataset
		}
	}
}

// WithMaxAttempts adjusts the total attempt budget (including the first try).
func WithMaxAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
	}
}

// WithRetryBackoff overrides the base backoff delay between attempts.
// Attempt n sleeps n times this value before the next try.
func WithRetryBackoff(base time.Duration) Option {
	return func(c *Client) {
		if base >= 0 {
			c.backoffBase = base
		}
	}
}

// WithLogger injects a custom logger (defaults to log.Default()).
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the time source (primarily for testing).
func WithClock(clock func() time.Time) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewClient constructs a Databento API client. The API key is validated
// synchronously; a missing or malformed key fails here, before any network
// call.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("databento: API key is required")
	}
	if !strings.HasPrefix(apiKey, apiKeyPrefix) {
		return nil, fmt.Errorf("databento: API key must start with %q", apiKeyPrefix)
	}

	client := &Client{
		baseURL:     defaultBaseURL,
		apiKey:      apiKey,
		dataset:     DefaultDataset,
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
		logger:      log.Default(),
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if client.clock == nil {
		client.clock = time.Now
	}
	return client, nil
}

// do executes one logical request with authentication, per-attempt timeout
// (via the underlying http.Client) and linear backoff between retries.
// Failures are classified first: terminal ones (4xx other than 429) fail
// fast without consuming the backoff budget.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body []byte) ([]byte, error) {
	endpoint := c.baseURL + apiPathPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	lastStatus := 0
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("databento: build request: %w", err)
		}
		req.SetBasicAuth(c.apiKey, "")
		req.Header.Set("User-Agent", userAgent)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr, lastStatus = err, 0
		} else {
			respBody, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr, lastStatus = fmt.Errorf("databento: read response: %w", readErr), resp.StatusCode
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				lastErr = fmt.Errorf("databento: http status %d: %s", resp.StatusCode, truncate(string(respBody), 256))
				lastStatus = resp.StatusCode
				if !retryableStatus(resp.StatusCode) {
					return nil, &TransportError{Attempts: attempt, LastStatus: lastStatus, Err: lastErr}
				}
			default:
				return respBody, nil
			}
		}

		if attempt < c.maxAttempts {
			c.logf("databento: %s %s attempt %d/%d failed: %v", method, path, attempt, c.maxAttempts, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoffBase):
			}
		}
	}
	return nil, &TransportError{Attempts: c.maxAttempts, LastStatus: lastStatus, Err: lastErr}
}

// retryableStatus reports whether an HTTP status is worth another attempt.
// Client errors other than 429 cannot succeed on retry.
func retryableStatus(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500
}

// get issues a GET whose response body is returned verbatim (CSV endpoints).
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, "", nil)
}

// getJSON issues a GET and decodes the JSON response into result.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, result any) error {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	return decodeJSON(body, result)
}

// postJSON issues a POST with a JSON-encoded body and decodes the JSON
// response into result.
func (c *Client) postJSON(ctx context.Context, path string, payload any, result any) error {
	body, err := jsonBody(payload)
	if err != nil {
		return err
	}
	respBody, err := c.do(ctx, http.MethodPost, path, nil, "application/json", body)
	if err != nil {
		return err
	}
	return decodeJSON(respBody, result)
}

// postForm issues a POST with a form-encoded body and decodes the JSON
// response into result. Multi-valued fields must be comma-joined by the
// caller before they reach here.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, result any) error {
	respBody, err := c.do(ctx, http.MethodPost, path, nil, "application/x-www-form-urlencoded", []byte(form.Encode()))
	if err != nil {
		return err
	}
	return decodeJSON(respBody, result)
}

func (c *Client) now() time.Time {
	if c.clock != nil {
		return c.clock()
	}
	return time.Now()
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
