// Package apiclient is the GET capability the scenario walker drives:
// one shared HTTP client with the configured TLS policy, timeout and
// per-endpoint rate limits.
package apiclient

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"time"

	"github.com/proleague/league-loadtest/internal/config"
	"github.com/proleague/league-loadtest/internal/ratelimit"
)

// maxBodyBytes bounds how much of a response body is kept for identifier
// extraction; the remainder is drained and discarded.
const maxBodyBytes = 8 << 20

// Response is a completed HTTP exchange.
type Response struct {
	Status   int
	Body     []byte
	Duration time.Duration
}

// Client performs tagged GET requests.
type Client struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	userAgent  string
}

// New creates a client for target. limiter may be nil.
func New(target config.TargetConfig, limiter *ratelimit.Limiter) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: target.InsecureSkipTLS, //nolint:gosec // opt-in for staging certificates
	}
	if target.MaxIdleConnsPerHost > 0 {
		transport.MaxIdleConns = target.MaxIdleConnsPerHost
		transport.MaxIdleConnsPerHost = target.MaxIdleConnsPerHost
	}

	return NewWithHTTPClient(&http.Client{
		Timeout:   target.Timeout,
		Transport: transport,
	}, limiter)
}

// NewWithHTTPClient wraps an existing http.Client.
func NewWithHTTPClient(httpClient *http.Client, limiter *ratelimit.Limiter) *Client {
	return &Client{
		httpClient: httpClient,
		limiter:    limiter,
		userAgent:  "league-loadtest/1.0",
	}
}

// Get performs a GET request. Any status code is returned as a Response;
// an error is returned only when no response was obtained, and is always
// a *RequestError. Time spent waiting on the rate limiter is not part of
// Response.Duration.
func (c *Client) Get(ctx context.Context, url, tag string) (*Response, error) {
	if c.limiter != nil {
		if _, err := c.limiter.Wait(ctx, tag); err != nil {
			return nil, classify(url, err)
		}
	} else if err := ctx.Err(); err != nil {
		return nil, classify(url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewRequestError(ErrorTypeBuild, url, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, NewRequestError(ErrorTypeRead, url, err)
	}
	// Drain the rest so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	return &Response{
		Status:   resp.StatusCode,
		Body:     body,
		Duration: time.Since(start),
	}, nil
}
