package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/angeloszaimis/action-router/internal/circuitbreaker"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	CapabilityDirectory = "directory"
	CapabilitySearch    = "search"
)

const (
	ewmaAlpha        = 0.2
	maxErrorBodySize = 512
	defaultTimeout   = 10 * time.Second
)

type ClientOptions struct {
	Timeout time.Duration
	// RequestsPerSecond caps outbound calls; zero disables throttling.
	RequestsPerSecond float64
	Breakers          *circuitbreaker.Registry
	Logger            *slog.Logger
	HTTPClient        *http.Client
}

// Client calls the search/directory service over HTTP. It tracks in-flight
// calls, response time, and the health flag maintained by the health checker.
type Client struct {
	url        *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	breakers   *circuitbreaker.Registry
	logger     *slog.Logger

	mutex            sync.Mutex
	isHealthy        bool
	activeCalls      int
	ewmaResponseTime time.Duration
	hasEWMA          bool
}

// NewClient creates a Client for the service rooted at u. The client starts
// in a healthy state.
func NewClient(u *url.URL, opts ClientOptions) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		url:        u,
		httpClient: httpClient,
		limiter:    limiter,
		breakers:   opts.Breakers,
		logger:     logger,
		isHealthy:  true,
	}
}

// LookupDirectory resolves one person by name via POST <url>/directory/lookup.
func (c *Client) LookupDirectory(ctx context.Context, q DirectoryQuery) (DirectoryRecord, error) {
	var record DirectoryRecord
	if err := c.call(ctx, CapabilityDirectory, c.url.JoinPath("directory", "lookup"), q, &record); err != nil {
		return DirectoryRecord{}, err
	}
	return record, nil
}

// Search runs a search via POST <url>/search.
func (c *Client) Search(ctx context.Context, payload SearchPayload) (SearchResult, error) {
	var result SearchResult
	if err := c.call(ctx, CapabilitySearch, c.url.JoinPath("search"), payload, &result); err != nil {
		return SearchResult{}, err
	}
	return result, nil
}

func (c *Client) call(ctx context.Context, capability string, endpoint *url.URL, in, out any) error {
	var breaker *circuitbreaker.CircuitBreaker
	if c.breakers != nil {
		breaker = c.breakers.Get(capability)
		if err := breaker.Allow(); err != nil {
			return fmt.Errorf("%s: %w", capability, err)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.release(breaker)
			return fmt.Errorf("%s: rate limit wait: %w", capability, err)
		}
	}

	body, err := json.Marshal(in)
	if err != nil {
		c.release(breaker)
		return fmt.Errorf("%s: encode request: %w", capability, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		c.release(breaker)
		return fmt.Errorf("%s: build request: %w", capability, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.IncrementCalls()
	defer c.DecrementCalls()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// The caller gave up; the backend's health is unknown.
			c.release(breaker)
			c.logger.Debug("Backend request abandoned",
				slog.String("capability", capability),
				slog.Any("err", ctx.Err()))
			return fmt.Errorf("%s: request abandoned: %w", capability, err)
		}
		c.fail(breaker)
		c.logger.Warn("Backend request failed",
			slog.String("capability", capability),
			slog.String("url", endpoint.String()),
			slog.Any("err", err))
		return fmt.Errorf("%s: request failed: %w", capability, err)
	}
	defer resp.Body.Close()

	c.RecordResponse(time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if resp.StatusCode >= 500 {
			c.fail(breaker)
		} else {
			c.succeed(breaker)
		}
		c.logger.Warn("Backend returned error status",
			slog.String("capability", capability),
			slog.Int("status", resp.StatusCode))
		return fmt.Errorf("%s: backend returned status %d: %s",
			capability, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	c.succeed(breaker)

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", capability, err)
	}

	return nil
}

// release gives the breaker slot back for a call that produced no verdict
// on the backend: it was never sent, or the caller abandoned it.
func (c *Client) release(cb *circuitbreaker.CircuitBreaker) {
	if cb != nil {
		cb.ReleaseProbe()
	}
}

func (c *Client) fail(cb *circuitbreaker.CircuitBreaker) {
	if cb != nil {
		cb.RecordFailure()
	}
}

func (c *Client) succeed(cb *circuitbreaker.CircuitBreaker) {
	if cb != nil {
		cb.RecordSuccess()
	}
}

// URL returns the service base URL.
func (c *Client) URL() *url.URL {
	return c.url
}

// IncrementCalls increments the in-flight call count.
func (c *Client) IncrementCalls() {
	c.mutex.Lock()
	c.activeCalls++
	c.mutex.Unlock()
}

// DecrementCalls decrements the in-flight call count.
func (c *Client) DecrementCalls() {
	c.mutex.Lock()
	if c.activeCalls > 0 {
		c.activeCalls--
	}
	c.mutex.Unlock()
}

// ActiveCalls returns the number of calls currently in flight.
func (c *Client) ActiveCalls() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.activeCalls
}

// IsHealthy returns true if the service is currently considered healthy.
func (c *Client) IsHealthy() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.isHealthy
}

// SetHealthy updates the health flag.
// Returns true if the status changed, false if it was already in that state.
func (c *Client) SetHealthy(healthy bool) (changed bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.isHealthy == healthy {
		return false
	}

	c.isHealthy = healthy
	return true
}

// RecordResponse folds a call duration into the exponentially weighted
// moving average (EWMA) response time.
func (c *Client) RecordResponse(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.hasEWMA {
		c.ewmaResponseTime = duration
		c.hasEWMA = true
		return
	}
	//ewma = (1 - α) * ewma + α * latest
	c.ewmaResponseTime = time.Duration((1-ewmaAlpha)*float64(c.ewmaResponseTime) + ewmaAlpha*float64(duration))
}

// EWMATime returns the moving average response time, or 0 before the first
// recorded call.
func (c *Client) EWMATime() time.Duration {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.hasEWMA {
		return 0
	}

	return c.ewmaResponseTime
}
