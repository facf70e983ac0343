package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/action-router/internal/backend"
	"github.com/angeloszaimis/action-router/internal/circuitbreaker"
)

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		handler  http.HandlerFunc
		client   *backend.Client
		breakers *circuitbreaker.Registry
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		breakers = circuitbreaker.NewRegistry(2, time.Minute)
		client = backend.NewClient(mustParseURL(server.URL), backend.ClientOptions{
			Timeout:  time.Second,
			Breakers: breakers,
		})
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("LookupDirectory", func() {
		It("should POST the name and decode the record", func() {
			var gotPath, gotMethod string
			var gotBody map[string]any
			handler = func(w http.ResponseWriter, r *http.Request) {
				gotPath, gotMethod = r.URL.Path, r.Method
				raw, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(raw, &gotBody)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"fname":"Ada","lastname":"Lovelace","crewId":"EMP1","managerCrewId":"EMP0"}`))
			}

			record, err := client.LookupDirectory(ctx, backend.DirectoryQuery{Name: "Ada"})
			Expect(err).NotTo(HaveOccurred())
			Expect(gotMethod).To(Equal(http.MethodPost))
			Expect(gotPath).To(Equal("/directory/lookup"))
			Expect(gotBody).To(Equal(map[string]any{"name": "Ada"}))
			Expect(record.FirstName).To(Equal("Ada"))
			Expect(record.LastName).To(Equal("Lovelace"))
			Expect(record.CrewID).To(Equal("EMP1"))
			Expect(record.ManagerCrewID).To(Equal("EMP0"))
		})
	})

	Describe("Search", func() {
		It("should POST the payload without empty refinements", func() {
			var gotBody map[string]any
			var gotPath string
			handler = func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				raw, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(raw, &gotBody)
				_, _ = w.Write([]byte(`{"items":[{"id":"1","title":"VPN policy","description":"Remote access","policyType":"Security"}]}`))
			}

			result, err := client.Search(ctx, backend.SearchPayload{
				Query:        "vpn",
				SearchType:   backend.SearchPolicy,
				MaxResults:   5,
				ContentTypes: []string{"policy", "guideline", "procedure"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(gotPath).To(Equal("/search"))
			Expect(result.Items).To(HaveLen(1))
			Expect(result.Items[0].PolicyType).To(Equal("Security"))

			Expect(gotBody).To(HaveKeyWithValue("query", "vpn"))
			Expect(gotBody).To(HaveKeyWithValue("searchType", "policy"))
			Expect(gotBody).To(HaveKeyWithValue("maxResults", BeNumerically("==", 5)))
			Expect(gotBody).NotTo(HaveKey("department"))
			Expect(gotBody).NotTo(HaveKey("technology"))
			Expect(gotBody).NotTo(HaveKey("project"))
		})

		It("should pass items through with fields the client does not model", func() {
			item := `{"id":"7","title":"Infra","description":"Platform team","metadata":{},"teamSize":0,"slack":"#infra"}`
			handler = func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"items":[` + item + `]}`))
			}

			result, err := client.Search(ctx, backend.SearchPayload{Query: "infra", SearchType: backend.SearchCrew})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Items).To(HaveLen(1))
			Expect(result.Items[0].Title).To(Equal("Infra"))
			Expect(result.Items[0].Metadata).To(BeEmpty())

			encoded, err := json.Marshal(result.Items[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(encoded).To(MatchJSON(item))
		})

		It("should encode constructed items from their fields", func() {
			encoded, err := json.Marshal(backend.ResultItem{ID: "1", Title: "T", Description: "D", TeamSize: 8})
			Expect(err).NotTo(HaveOccurred())
			Expect(encoded).To(MatchJSON(`{"id":"1","title":"T","description":"D","teamSize":8}`))
		})

		It("should honour a base URL path prefix", func() {
			var gotPath string
			handler = func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				_, _ = w.Write([]byte(`{"items":[]}`))
			}
			prefixed := backend.NewClient(mustParseURL(server.URL+"/api/v1"), backend.ClientOptions{})

			_, err := prefixed.Search(ctx, backend.SearchPayload{Query: "q"})
			Expect(err).NotTo(HaveOccurred())
			Expect(gotPath).To(Equal("/api/v1/search"))
		})
	})

	Describe("failures", func() {
		It("should report the status and body of a server error", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "index offline", http.StatusServiceUnavailable)
			}

			_, err := client.Search(ctx, backend.SearchPayload{Query: "q"})
			Expect(err).To(MatchError(ContainSubstring("backend returned status 503: index offline")))
		})

		It("should report undecodable responses", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			}

			_, err := client.LookupDirectory(ctx, backend.DirectoryQuery{Name: "x"})
			Expect(err).To(MatchError(ContainSubstring("decode response")))
		})

		It("should report transport errors", func() {
			server.Close()

			_, err := client.Search(ctx, backend.SearchPayload{Query: "q"})
			Expect(err).To(MatchError(ContainSubstring("request failed")))
		})

		It("should open the capability's breaker after repeated server errors", func() {
			var hits atomic.Int32
			handler = func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(http.StatusInternalServerError)
			}

			for i := 0; i < 2; i++ {
				_, err := client.Search(ctx, backend.SearchPayload{Query: "q"})
				Expect(err).To(HaveOccurred())
			}

			_, err := client.Search(ctx, backend.SearchPayload{Query: "q"})
			Expect(err).To(MatchError(circuitbreaker.ErrOpen))
			Expect(hits.Load()).To(Equal(int32(2)))
			Expect(breakers.Get(backend.CapabilityDirectory).State()).To(Equal(circuitbreaker.StateClosed))
		})

		It("should not count client errors against the breaker", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			}

			for i := 0; i < 3; i++ {
				_, err := client.Search(ctx, backend.SearchPayload{Query: "q"})
				Expect(err).To(MatchError(ContainSubstring("status 400")))
			}
			Expect(breakers.Get(backend.CapabilitySearch).State()).To(Equal(circuitbreaker.StateClosed))
		})

		Context("when the caller abandons a call", func() {
			BeforeEach(func() {
				handler = func(w http.ResponseWriter, r *http.Request) {
					var payload backend.SearchPayload
					_ = json.NewDecoder(r.Body).Decode(&payload)
					switch payload.Query {
					case "slow":
						select {
						case <-time.After(50 * time.Millisecond):
						case <-r.Context().Done():
						}
					case "broken":
						w.WriteHeader(http.StatusInternalServerError)
						return
					}
					_, _ = w.Write([]byte(`{"items":[]}`))
				}
			})

			It("should keep the breaker closed after repeated cancellations", func() {
				for i := 0; i < 3; i++ {
					shortCtx, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
					_, err := client.Search(shortCtx, backend.SearchPayload{Query: "slow"})
					cancel()
					Expect(err).To(MatchError(ContainSubstring("request abandoned")))
					Expect(err).To(MatchError(context.DeadlineExceeded))
				}

				Expect(breakers.Get(backend.CapabilitySearch).State()).To(Equal(circuitbreaker.StateClosed))

				_, err := client.Search(ctx, backend.SearchPayload{Query: "fast"})
				Expect(err).NotTo(HaveOccurred())
			})

			It("should hand a half-open probe back without re-opening", func() {
				quick := circuitbreaker.NewRegistry(1, 20*time.Millisecond)
				probed := backend.NewClient(mustParseURL(server.URL), backend.ClientOptions{Breakers: quick})

				_, err := probed.Search(ctx, backend.SearchPayload{Query: "broken"})
				Expect(err).To(HaveOccurred())
				Expect(quick.Get(backend.CapabilitySearch).State()).To(Equal(circuitbreaker.StateOpen))

				time.Sleep(30 * time.Millisecond)

				cancelled, cancel := context.WithCancel(ctx)
				cancel()
				_, err = probed.Search(cancelled, backend.SearchPayload{Query: "slow"})
				Expect(err).To(MatchError(context.Canceled))
				Expect(quick.Get(backend.CapabilitySearch).State()).To(Equal(circuitbreaker.StateHalfOpen))

				_, err = probed.Search(ctx, backend.SearchPayload{Query: "fast"})
				Expect(err).NotTo(HaveOccurred())
				Expect(quick.Get(backend.CapabilitySearch).State()).To(Equal(circuitbreaker.StateClosed))
			})
		})

		It("should stop waiting on the rate limiter when the context ends", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"items":[]}`))
			}
			throttled := backend.NewClient(mustParseURL(server.URL), backend.ClientOptions{RequestsPerSecond: 0.01})

			_, err := throttled.Search(ctx, backend.SearchPayload{Query: "q"})
			Expect(err).NotTo(HaveOccurred())

			shortCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			_, err = throttled.Search(shortCtx, backend.SearchPayload{Query: "q"})
			Expect(err).To(MatchError(ContainSubstring("rate limit wait")))
		})
	})

	Describe("NewClient", func() {
		It("should start healthy with no calls in flight", func() {
			Expect(client.IsHealthy()).To(BeTrue())
			Expect(client.ActiveCalls()).To(Equal(0))
			Expect(client.EWMATime()).To(BeZero())
			Expect(client.URL().String()).To(Equal(server.URL))
		})
	})

	Describe("Health Management", func() {
		It("should report whether the flag changed", func() {
			Expect(client.SetHealthy(true)).To(BeFalse())
			Expect(client.SetHealthy(false)).To(BeTrue())
			Expect(client.IsHealthy()).To(BeFalse())
			Expect(client.SetHealthy(true)).To(BeTrue())
		})

		It("should be thread-safe", func() {
			var wg sync.WaitGroup
			for i := 0; i < 100; i++ {
				wg.Add(1)
				go func(healthy bool) {
					defer wg.Done()
					client.SetHealthy(healthy)
					_ = client.IsHealthy()
				}(i%2 == 0)
			}
			wg.Wait()
		})
	})

	Describe("Call Tracking", func() {
		It("should count in-flight calls and never go below zero", func() {
			client.IncrementCalls()
			client.IncrementCalls()
			Expect(client.ActiveCalls()).To(Equal(2))

			client.DecrementCalls()
			client.DecrementCalls()
			client.DecrementCalls()
			Expect(client.ActiveCalls()).To(Equal(0))
		})

		It("should release the in-flight slot after a call", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"items":[]}`))
			}
			_, err := client.Search(ctx, backend.SearchPayload{Query: "q"})
			Expect(err).NotTo(HaveOccurred())
			Expect(client.ActiveCalls()).To(Equal(0))
			Expect(client.EWMATime()).To(BeNumerically(">", 0))
		})
	})

	Describe("Response Time Tracking (EWMA)", func() {
		It("should seed the average with the first sample", func() {
			client.RecordResponse(100 * time.Millisecond)
			Expect(client.EWMATime()).To(Equal(100 * time.Millisecond))
		})

		It("should smooth later samples", func() {
			client.RecordResponse(100 * time.Millisecond)
			client.RecordResponse(200 * time.Millisecond)
			Expect(client.EWMATime()).To(BeNumerically("~", 120*time.Millisecond, time.Microsecond))
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
