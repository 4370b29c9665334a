// Package client is a Go client for the molprint HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/molprint/pkg/errors"
	"github.com/turtacn/molprint/pkg/types/common"
)

const Version = "0.1.0"

var defaultUserAgent = "molprint-go-client/" + Version

// Logger defines the logging interface used by the Client
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// noopLogger is a no-op implementation of Logger
type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

// Client talks to one molprint API server. It is safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	userAgent    string
	timeout      time.Duration
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	fingerprints     *FingerprintsClient
	fingerprintsOnce sync.Once
}

// APIError represents an error response from the API
type APIError struct {
	StatusCode int                    `json:"status_code"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	RequestID  string                 `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("molprint: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, e.Message, e.RequestID)
}

// ErrorCode lets errors.GetCode and errors.IsCode see the server's code.
func (e *APIError) ErrorCode() errors.ErrorCode {
	return errors.ErrorCode(e.Code)
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsInvalidInput reports a rejected request: bad parameters, unknown
// fingerprint type or an unparseable molecule.
func (e *APIError) IsInvalidInput() bool {
	return e.StatusCode == http.StatusBadRequest
}

// IsComputation reports a fingerprint routine failure.
func (e *APIError) IsComputation() bool {
	return e.StatusCode == http.StatusUnprocessableEntity
}

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.InvalidParam("baseURL is required")
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.InvalidParam("invalid baseURL").WithDetail(baseURL).WithCause(err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, errors.InvalidParam("baseURL scheme must be http or https").WithDetail(baseURL)
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		userAgent:    defaultUserAgent,
		logger:       &noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}

	return c, nil
}

// Fingerprints returns the fingerprints sub-client (lazy initialization, thread-safe)
func (c *Client) Fingerprints() *FingerprintsClient {
	c.fingerprintsOnce.Do(func() {
		c.fingerprints = &FingerprintsClient{client: c}
	})
	return c.fingerprints
}

// Health calls the liveness probe.
func (c *Client) Health(ctx context.Context) (*common.HealthReport, error) {
	var report common.HealthReport
	if err := c.probe(ctx, "/healthz", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Ready calls the readiness probe. When the server is not ready the decoded
// report is returned together with an *APIError.
func (c *Client) Ready(ctx context.Context) (*common.HealthReport, error) {
	var report common.HealthReport
	err := c.probe(ctx, "/readyz", &report)
	if report.Status == "" {
		return nil, err
	}
	return &report, err
}

// probe fetches an unwrapped health body without retries.
func (c *Client) probe(ctx context.Context, path string, result interface{}) error {
	status, body, requestID, err := c.exchange(ctx, http.MethodGet, path, nil, false)
	if err != nil {
		return err
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	if status >= 400 {
		return &APIError{StatusCode: status, Code: errors.ErrCodeServiceUnavailable.String(),
			Message: http.StatusText(status), RequestID: requestID}
	}
	return nil
}

// do sends a request to an enveloped endpoint and decodes data into result.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	_, respBody, _, err := c.exchange(ctx, method, path, body, true)
	if err != nil {
		return err
	}

	env := common.APIResponse[json.RawMessage]{}
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("failed to unmarshal response data: %w", err)
		}
	}
	return nil
}

// exchange performs an HTTP request with retry logic. HTTP errors of
// enveloped endpoints come back as *APIError; probe bodies are returned as is.
func (c *Client) exchange(ctx context.Context, method, path string, body interface{}, retry bool) (int, []byte, string, error) {
	// Ensure path starts with /
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	fullURL := c.baseURL + path

	var bodyBytes []byte
	if body != nil {
		var err error
		if bodyBytes, err = json.Marshal(body); err != nil {
			return 0, nil, "", fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	retryMax := c.retryMax
	if !retry {
		retryMax = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retryMax; attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debugf("Retry attempt %d after %v", attempt, backoff)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return 0, nil, "", ctx.Err()
			}
		}

		var bodyReader io.Reader
		if bodyBytes != nil {
			bodyReader = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return 0, nil, "", fmt.Errorf("failed to create request: %w", err)
		}

		requestID := uuid.New().String()
		if bodyBytes != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("X-Request-ID", requestID)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)

		if err != nil {
			if ctx.Err() != nil {
				return 0, nil, "", ctx.Err()
			}
			c.logger.Errorf("Request failed: %v", err)
			lastErr = err
			if c.shouldRetry(nil, err) {
				continue
			}
			return 0, nil, "", err
		}

		c.logger.Debugf("%s %s %d (%v)", method, path, resp.StatusCode, duration)

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return 0, nil, "", fmt.Errorf("failed to read response body: %w", err)
		}

		if !retry || resp.StatusCode < 400 {
			return resp.StatusCode, respBody, requestID, nil
		}

		apiErr := decodeAPIError(resp.StatusCode, respBody, requestID)
		lastErr = apiErr
		if c.shouldRetry(resp, nil) {
			continue
		}
		return resp.StatusCode, respBody, requestID, apiErr
	}

	return 0, nil, "", lastErr
}

func decodeAPIError(status int, body []byte, requestID string) *APIError {
	apiErr := &APIError{StatusCode: status, RequestID: requestID}
	env := common.APIResponse[json.RawMessage]{}
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Details = env.Error.Details
		if env.RequestID != "" {
			apiErr.RequestID = env.RequestID
		}
	} else {
		apiErr.Message = string(body)
	}
	return apiErr
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) shouldRetry(resp *http.Response, err error) bool {
	// Retry on network errors
	if err != nil {
		return true
	}

	// Retry on 5xx errors
	if resp != nil && resp.StatusCode >= 500 && resp.StatusCode < 600 {
		return true
	}

	return false
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	// Exponential backoff with jitter
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax {
		backoff = c.retryWaitMax
	}

	// Add jitter (0-25% of backoff)
	if quarter := int64(backoff / 4); quarter > 0 {
		backoff += time.Duration(rand.Int63n(quarter))
	}
	return backoff
}
