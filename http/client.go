package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultMaxRetries is the default number of attempts.
const DefaultMaxRetries = 3

// DefaultRetryWait is the default initial wait between retries.
const DefaultRetryWait = 1 * time.Second

// Client is a retrying HTTP client for the remote collaborators (face
// encoding service, notification webhooks).
type Client struct {
	client      *http.Client
	baseURL     string
	serviceName string
	maxRetries  int
	retryWait   time.Duration
	logger      *slog.Logger

	// beforeRequest is called before each request (for auth headers, etc.)
	beforeRequest func(req *http.Request)
}

// ClientConfig holds configuration for Client.
type ClientConfig struct {
	Client        *http.Client
	BaseURL       string
	ServiceName   string
	MaxRetries    int
	RetryWait     time.Duration
	Logger        *slog.Logger
	BeforeRequest func(req *http.Request)
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		client:        cfg.Client,
		baseURL:       cfg.BaseURL,
		serviceName:   cfg.ServiceName,
		maxRetries:    cfg.MaxRetries,
		retryWait:     cfg.RetryWait,
		logger:        cfg.Logger,
		beforeRequest: cfg.BeforeRequest,
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: DefaultTimeout}
	}
	if c.maxRetries <= 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.retryWait <= 0 {
		c.retryWait = DefaultRetryWait
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Body is a request payload that can be replayed on retry.
type Body struct {
	ContentType string
	Data        []byte
}

// JSONBody marshals v as a JSON request body.
func JSONBody(v any) (*Body, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return &Body{ContentType: "application/json", Data: data}, nil
}

// RawBody wraps bytes with their content type.
func RawBody(contentType string, data []byte) *Body {
	return &Body{ContentType: contentType, Data: data}
}

// Do executes a request with retries for transient errors. Network errors,
// 429 and 5xx responses are retried with exponential backoff. The caller
// closes the returned response body.
func (c *Client) Do(ctx context.Context, method, path string, body *Body, headers map[string]string) (*http.Response, error) {
	url := c.baseURL + path

	var lastErr error
	for attempt := range c.maxRetries {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body.Data)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		if body != nil && body.ContentType != "" {
			req.Header.Set("Content-Type", body.ContentType)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		if c.beforeRequest != nil {
			c.beforeRequest(req)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%s request failed: %w", c.serviceName, err)
			if attempt < c.maxRetries-1 {
				if werr := c.wait(ctx, c.retryWait*time.Duration(1<<attempt), attempt, err.Error()); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, lastErr
		}

		if shouldRetry(resp) && attempt < c.maxRetries-1 {
			wait := c.getRetryWait(resp, attempt)
			resp.Body.Close()
			if werr := c.wait(ctx, wait, attempt, resp.Status); werr != nil {
				return nil, werr
			}
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

func (c *Client) wait(ctx context.Context, d time.Duration, attempt int, reason string) error {
	c.logger.Debug("retrying request",
		"service", c.serviceName,
		"attempt", attempt+1,
		"wait", d,
		"reason", reason,
	)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Get performs a GET request and decodes the response into result.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, path, result)
}

// Post sends body as JSON and decodes the response into result.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	b, err := JSONBody(body)
	if err != nil {
		return err
	}
	return c.PostBody(ctx, path, b, result)
}

// PostBody sends a prepared body and decodes the response into result.
func (c *Client) PostBody(ctx context.Context, path string, body *Body, result any) error {
	resp, err := c.Do(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, path, result)
}

// handleResponse checks status and decodes the response body.
func (c *Client) handleResponse(resp *http.Response, path string, result any) error {
	if resp.StatusCode >= 400 {
		return c.parseError(resp, path)
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s response: %w", c.serviceName, err)
	}

	return nil
}

// parseError parses an error response into an APIError.
func (c *Client) parseError(resp *http.Response, path string) error {
	body, _ := io.ReadAll(resp.Body)

	apiErr := &APIError{
		Service:    c.serviceName,
		StatusCode: resp.StatusCode,
		Endpoint:   path,
		RequestID:  resp.Header.Get("X-Request-Id"),
	}

	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			apiErr.Message = errResp.Message
		} else if errResp.Error != "" {
			apiErr.Message = errResp.Error
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}

// getRetryWait calculates the wait time for a retry.
func (c *Client) getRetryWait(resp *http.Response, attempt int) time.Duration {
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return c.retryWait * time.Duration(1<<attempt)
}

// shouldRetry reports whether a response status is transient.
func shouldRetry(resp *http.Response) bool {
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
}
