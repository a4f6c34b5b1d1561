// Package preflight probes outbound URLs before they leave for the system
// browser, so pages don't bounce users to dead links.
package preflight

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/web2native/bridge/internal/resilience"
)

// DefaultTimeout bounds one probe including retries.
const DefaultTimeout = 3 * time.Second

// Client probes URLs with retrying transport behind a circuit breaker.
type Client struct {
	resty   *resty.Client
	breaker *resilience.Breaker
}

// New creates a preflight client. timeout <= 0 selects DefaultTimeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = 500 * time.Millisecond
	retryClient.Logger = nil

	restyClient := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "bridge-preflight/1.0").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	restyClient.SetTransport(retryClient.HTTPClient.Transport)

	return &Client{
		resty:   restyClient,
		breaker: resilience.New("browser-preflight", 5, 30*time.Second),
	}
}

// BreakerState exposes the breaker state for the debug surface.
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// Check verifies the target answers. Any HTTP response below 500 counts as
// reachable; network errors and server errors fail the probe. A row of failed
// probes opens the breaker and fails subsequent checks fast.
func (c *Client) Check(ctx context.Context, target string) error {
	return c.breaker.Execute(func() error {
		resp, err := c.resty.R().SetContext(ctx).Head(target)
		if err != nil {
			return fmt.Errorf("preflight %s: %w", target, err)
		}

		// Some servers reject HEAD outright; retry those with GET.
		status := resp.StatusCode()
		if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
			resp, err = c.resty.R().SetContext(ctx).Get(target)
			if err != nil {
				return fmt.Errorf("preflight %s: %w", target, err)
			}
			status = resp.StatusCode()
		}

		if status >= http.StatusInternalServerError {
			return fmt.Errorf("preflight %s: target answered %d", target, status)
		}
		return nil
	})
}
