// Package http implements the authenticated client used for every request to
// the editor pages.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vesla0x1/codegrabber/shared/config"
	"github.com/vesla0x1/codegrabber/shared/observability/types"
	"github.com/vesla0x1/codegrabber/workers/harvester/internal/domain"
)

// Client implements the domain.HTTPClient port
type Client struct {
	client  *http.Client
	config  config.HTTPConfig
	cookie  string
	logger  types.Logger
	metrics types.Metrics
}

// NewClient creates a client that sends creds as a Cookie header on every
// request.
func NewClient(cfg config.HTTPConfig, creds domain.Credentials, logger types.Logger, metrics types.Metrics) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultHTTPConfig().Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = config.DefaultUserAgent
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		config:  cfg,
		cookie:  creds.Header(),
		logger:  logger,
		metrics: metrics,
	}
}

// Fetch implements domain.HTTPClient
func (c *Client) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordDuration("fetch", time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.metrics.RecordError("fetch", "invalid_request")
		return nil, domain.NewDomainError(domain.CodeFetchFailed, "failed to create request", err, false)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			c.logger.Debug(ctx, "retrying request", types.Fields{
				"url":     url,
				"attempt": attempt,
			})
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, domain.NewDomainError(domain.CodeFetchFailed, "request cancelled", ctx.Err(), false)
			}
		}

		resp, lastErr = c.client.Do(req)
		if lastErr == nil && (resp.StatusCode < 500 || attempt == c.config.MaxRetries) {
			break // Success, client error or out of attempts
		}

		if resp != nil {
			resp.Body.Close()
		}
	}

	if lastErr != nil {
		c.metrics.RecordError("fetch", "transport")
		return nil, domain.NewDomainError(
			domain.CodeFetchFailed,
			fmt.Sprintf("request failed after %d attempts", c.config.MaxRetries+1),
			lastErr,
			true,
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		c.metrics.RecordError("fetch", "status")
		return nil, domain.NewDomainError(
			domain.CodeFetchFailed,
			fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			nil,
			resp.StatusCode >= 500,
		)
	}

	c.metrics.RecordSuccess("fetch")
	return resp.Body, nil
}
