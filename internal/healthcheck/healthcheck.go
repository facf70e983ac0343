package healthcheck

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultPath    = "/health"
	defaultTimeout = 5 * time.Second
)

// Target is a service whose health flag is maintained by HealthCheck.
// backend.Client satisfies it.
type Target interface {
	URL() *url.URL
	SetHealthy(healthy bool) (changed bool)
}

type Options struct {
	Interval time.Duration
	// Path is resolved against the target URL. Defaults to DefaultPath.
	Path    string
	Timeout time.Duration
	// OnChange is called after each health transition.
	OnChange func(target string, healthy bool)
}

// HealthCheck periodically checks whether target is healthy by sending
// HTTP GET requests to its health endpoint, until ctx is cancelled.
func HealthCheck(ctx context.Context, target Target, opts Options, logger *slog.Logger) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{
		Timeout: timeout,
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	server := target.URL().String()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Health check stopped",
				slog.String("server", server))
			return

		case <-ticker.C:
			healthy := Probe(ctx, client, target.URL(), opts.Path)
			if !target.SetHealthy(healthy) {
				continue
			}

			if healthy {
				logger.Info("Server is back up",
					slog.String("server", server))
			} else {
				logger.Warn("Server is down",
					slog.String("server", server))
			}

			if opts.OnChange != nil {
				opts.OnChange(server, healthy)
			}
		}
	}
}

// Probe performs one health request against base joined with path and
// reports whether it answered 200.
func Probe(ctx context.Context, client *http.Client, base *url.URL, path string) bool {
	if path == "" {
		path = DefaultPath
	}
	healthURL := base.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL.String(), nil)
	if err != nil {
		return false
	}

	res, err := client.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()

	return res.StatusCode == http.StatusOK
}
