// Package upstream enumerates and fetches convention source files from
// the remote repository that hosts them.
package upstream

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/audiolab/sofaconv/pkg/config"
	"github.com/audiolab/sofaconv/pkg/errors"
	"github.com/audiolab/sofaconv/pkg/logger"
)

// Client fetches convention sources over HTTP with timeouts and
// exponential-backoff retries.
type Client struct {
	cfg        config.UpstreamConfig
	http       config.HTTPConfig
	logger     *zap.Logger
	httpClient *http.Client
}

// NewClient creates a client for the configured upstream repository
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:    cfg.Upstream,
		http:   cfg.HTTP,
		logger: logger.Get(),
		httpClient: &http.Client{
			Timeout: cfg.HTTP.RequestTimeout.Std(),
		},
	}
}

// List enumerates the convention file names linked from the upstream
// page, in page order.
func (c *Client) List(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, c.cfg.PageURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to read upstream file list")
	}

	names := scrapeFileNames(body, c.cfg.Extension)
	c.logger.Debug("enumerated upstream conventions",
		zap.Int("count", len(names)),
		zap.String("url", c.cfg.PageURL))
	return names, nil
}

// Fetch downloads the raw bytes of one convention source file
func (c *Client) Fetch(ctx context.Context, name string) ([]byte, error) {
	url := strings.TrimSuffix(c.cfg.RawURL, "/") + "/" + name
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeConnection, "failed to fetch %s", name)
	}
	return body, nil
}

// get performs one GET with retries. Connection errors and 5xx responses
// are retried with exponential backoff, client errors are not.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	delay := c.http.RetryDelay.Std()
	var lastErr error

	for attempt := 0; attempt <= c.http.RetryAttempts; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying upstream request",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))

			select {
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), errors.ErrorTypeTimeout, "request canceled")
			case <-time.After(delay):
			}

			delay = time.Duration(float64(delay) * c.http.RetryMultiplier)
			if delay > c.http.MaxRetryDelay.Std() {
				delay = c.http.MaxRetryDelay.Std()
			}
		}

		body, retryable, err := c.doGet(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, lastErr
}

// doGet performs a single GET request
func (c *Client) doGet(ctx context.Context, url string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.ErrorTypeInternal, "failed to build request for %s", url)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, errors.Wrapf(err, errors.ErrorTypeConnection, "request to %s failed", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := errors.Newf(errors.ErrorTypeConnection, "unexpected status %d from %s", resp.StatusCode, url)
		return nil, resp.StatusCode >= http.StatusInternalServerError, err
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errors.Wrapf(err, errors.ErrorTypeConnection, "failed to read response from %s", url)
	}
	return body, false, nil
}
