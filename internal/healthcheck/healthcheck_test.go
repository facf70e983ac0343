package healthcheck_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/action-router/internal/backend"
	"github.com/angeloszaimis/action-router/internal/healthcheck"
)

var _ = Describe("Healthcheck", func() {
	var (
		client  *backend.Client
		service *httptest.Server
		up      atomic.Bool
		log     *slog.Logger
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		up.Store(true)

		service = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/status" && up.Load() {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("OK"))
				return
			}
			w.WriteHeader(http.StatusServiceUnavailable)
		}))

		client = backend.NewClient(mustParseURL(service.URL), backend.ClientOptions{})
		client.SetHealthy(false)
	})

	AfterEach(func() {
		service.Close()
	})

	Describe("HealthCheck", func() {
		It("should mark a healthy service as healthy and report the change", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var (
				mutex   sync.Mutex
				changes []bool
			)
			opts := healthcheck.Options{
				Interval: 20 * time.Millisecond,
				Path:     "/status",
				OnChange: func(_ string, healthy bool) {
					mutex.Lock()
					defer mutex.Unlock()
					changes = append(changes, healthy)
				},
			}

			go healthcheck.HealthCheck(ctx, client, opts, log)

			Eventually(client.IsHealthy, time.Second).Should(BeTrue())

			up.Store(false)
			Eventually(client.IsHealthy, time.Second).Should(BeFalse())

			Eventually(func() []bool {
				mutex.Lock()
				defer mutex.Unlock()
				return slices.Clone(changes)
			}, time.Second).Should(Equal([]bool{true, false}))
		})

		It("should stop when context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})

			go func() {
				defer close(done)
				healthcheck.HealthCheck(ctx, client, healthcheck.Options{Interval: 20 * time.Millisecond}, log)
			}()

			cancel()
			Eventually(done, time.Second).Should(BeClosed())
		})
	})

	Describe("Probe", func() {
		It("should report the endpoint's status", func() {
			ctx := context.Background()
			httpClient := &http.Client{Timeout: time.Second}

			Expect(healthcheck.Probe(ctx, httpClient, mustParseURL(service.URL), "/status")).To(BeTrue())
			Expect(healthcheck.Probe(ctx, httpClient, mustParseURL(service.URL), "")).To(BeFalse())
		})

		It("should report an unreachable service as unhealthy", func() {
			service.Close()
			Expect(healthcheck.Probe(context.Background(), http.DefaultClient, mustParseURL(service.URL), "/status")).To(BeFalse())
		})
	})
})

func mustParseURL(rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic(err)
	}
	return u
}
