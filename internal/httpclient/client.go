package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"marketplace/internal/errors"
	"marketplace/internal/logging"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Authenticator is the session side of the client. BearerToken is consulted
// on every request; HandleUnauthorized is called on every 401 response.
type Authenticator interface {
	BearerToken() (string, bool)
	HandleUnauthorized(ctx context.Context)
}

// Options configures a Client
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	// RateLimit in requests per second; 0 disables throttling.
	RateLimit  float64
	RateBurst  int
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client sends JSON requests to the marketplace backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger

	mu   sync.RWMutex
	auth Authenticator

	sleep     func(ctx context.Context, d time.Duration) error
	requestID func() string
}

// New creates a client for the given base URL
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.NewInvalidInputError("base_url", opts.BaseURL, "must be an absolute URL")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if opts.Timeout > 0 {
		// Copy so a shared client is not mutated.
		c := *httpClient
		c.Timeout = opts.Timeout
		httpClient = &c
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(base.String(), "/"),
		httpClient: httpClient,
		limiter:    limiter,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.RetryBaseDelay,
		logger:     logging.OrDiscard(opts.Logger).With("component", "http_client"),
		sleep:      sleepContext,
		requestID:  func() string { return uuid.NewString() },
	}, nil
}

// SetAuthenticator wires the session into the client. It is set after
// construction because the session manager itself talks through this client.
func (c *Client) SetAuthenticator(a Authenticator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = a
}

func (c *Client) authenticator() Authenticator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

// BaseURL returns the normalized backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one backend call. Operation names the call in errors and logs.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Body      interface{}
	Operation string
}

// Get issues a GET request and decodes the JSON response into out
func (c *Client) Get(ctx context.Context, operation, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Operation: operation}, out)
}

// Post issues a POST request with a JSON body
func (c *Client) Post(ctx context.Context, operation, path string, body, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Operation: operation}, out)
}

// Put issues a PUT request with a JSON body
func (c *Client) Put(ctx context.Context, operation, path string, body, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body, Operation: operation}, out)
}

// Delete issues a DELETE request
func (c *Client) Delete(ctx context.Context, operation, path string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Operation: operation}, nil)
}

// Do sends the request. GET requests that fail with a retriable error are
// retried with exponential backoff; other methods are sent once.
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	if req.Operation == "" {
		req.Operation = req.Method + " " + req.Path
	}

	attempts := 1
	if req.Method == http.MethodGet && c.maxRetries > 0 {
		attempts += c.maxRetries
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		err = c.doOnce(ctx, req, out)
		if err == nil || !errors.IsRetriable(err) || attempt == attempts-1 {
			return err
		}

		delay := c.baseDelay * time.Duration(1<<attempt)
		c.logger.Warn("request failed, retrying",
			"operation", req.Operation,
			"attempt", attempt+1,
			"next_delay", delay,
			"error", err)
		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			return err
		}
	}
	return err
}

func (c *Client) doOnce(ctx context.Context, req Request, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.NewNetworkError(req.Operation, err)
		}
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return err
	}
	requestID := httpReq.Header.Get(RequestIDHeader)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("request failed without response",
			"operation", req.Operation, "request_id", requestID, "error", err)
		return transportError(req.Operation, c.httpClient.Timeout, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.NewNetworkError(req.Operation, err)
	}

	c.logger.Debug("request completed",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := statusError(req.Operation, req.Path, resp.StatusCode, body)
		if resp.StatusCode == http.StatusUnauthorized {
			if auth := c.authenticator(); auth != nil {
				auth.HandleUnauthorized(ctx)
			}
		}
		if errors.ShouldLogError(statusErr) {
			c.logger.Error("backend returned error status",
				"operation", req.Operation, "status", resp.StatusCode, "request_id", requestID)
		}
		return statusErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.WrapError(err, errors.ErrorTypeAPI, fmt.Sprintf("malformed response from %s", req.Operation)).
			WithStatus(resp.StatusCode)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.NewInvalidInputError("body", req.Operation, err.Error())
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, errors.NewInvalidInputError("request", target, err.Error())
	}

	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(RequestIDHeader, c.requestID())

	if auth := c.authenticator(); auth != nil {
		if token, ok := auth.BearerToken(); ok {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return httpReq, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
