package client

import (
	"net/http"
	"time"
)

// Option customizes a Client built by NewClient.
type Option func(*Client)

// WithHTTPClient routes requests through hc. A nil hc keeps the default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each HTTP attempt. NewClient sets it on a copy of the
// HTTP client, so one passed through WithHTTPClient is left untouched
// whatever the option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRetryMax caps retries of a failed transform or lookup. Zero or a
// negative n disables retrying.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		if n < 0 {
			n = 0
		}
		c.retryMax = n
	}
}

// WithRetryWait sets the backoff window. A max below min pins the wait at min;
// a non-positive min leaves both untouched.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		if min <= 0 {
			return
		}
		if max < min {
			max = min
		}
		c.retryWaitMin, c.retryWaitMax = min, max
	}
}

// WithUserAgent prefixes the client's own product token with product, for
// example "pipeline/2.0 molprint-go-client/0.1.0".
func WithUserAgent(product string) Option {
	return func(c *Client) {
		if product != "" {
			c.userAgent = product + " " + defaultUserAgent
		}
	}
}
