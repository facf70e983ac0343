//go:build ignore

// Fakebackend is a local stand-in for the search/directory service, used to
// run the router in http mode. It serves POST /directory/lookup, POST /search
// and GET /health with the router's mock data.
//
// Usage:
//
//	go run scripts/fakebackend.go -port 8081
//	go run scripts/fakebackend.go -port 8081 -latency 50ms -fail-rate 0.3
//
// With -fail-rate, that share of requests answers 503 so the router's circuit
// breaker and health check can be observed.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/angeloszaimis/action-router/internal/backend"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	port := flag.Int("port", 8081, "port to listen on")
	latency := flag.Duration("latency", 0, "artificial latency per request")
	failRate := flag.Float64("fail-rate", 0, "share of requests answered with 503 (0-1)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mock := backend.NewMock(*latency)

	flaky := func(next func(ctx context.Context, body []byte) (any, error)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			log.Info("request",
				slog.String("id", id),
				slog.String("path", r.URL.Path),
				slog.String("body", string(body)))

			if *failRate > 0 && rand.Float64() < *failRate {
				http.Error(w, "simulated outage", http.StatusServiceUnavailable)
				return
			}

			out, err := next(r.Context(), body)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}

			b, _ := json.Marshal(out)
			w.Header().Set("Content-Type", "application/json")
			w.Write(b)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /directory/lookup", flaky(func(ctx context.Context, body []byte) (any, error) {
		var q backend.DirectoryQuery
		if err := json.Unmarshal(body, &q); err != nil {
			return nil, err
		}
		return mock.LookupDirectory(ctx, q)
	}))
	mux.HandleFunc("POST /search", flaky(func(ctx context.Context, body []byte) (any, error) {
		var p backend.SearchPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, err
		}
		return mock.Search(ctx, p)
	}))

	// polled by the router's health checker
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Info("starting fake backend", slog.String("addr", addr), slog.Duration("latency", *latency))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		log.Error("server failed", slog.Any("err", err))
		os.Exit(1)
	}
}
