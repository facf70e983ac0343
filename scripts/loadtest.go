//go:build ignore

// Loadtest is a concurrent load testing tool for the router's POST /invoke
// endpoint. It cycles through the registered API paths and reports
// throughput, latency percentiles and envelope status per path.
//
// Usage:
//
//	go run scripts/loadtest.go -url http://localhost:8080/invoke -concurrency 10 -requests 1000
//	go run scripts/loadtest.go -concurrency 50 -requests 5000 -csv results.csv -out summary.json
//
// The CSV has one row per request: idx, timestamp, api_path, http_status,
// envelope_status, duration_ms.
package main

import (
	"bytes"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/angeloszaimis/action-router/internal/action"
	"github.com/angeloszaimis/action-router/internal/envelope"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var invocations = []action.Invocation{
	{ActionGroup: "loadtest", APIPath: "/Name", HTTPMethod: "GET", Parameters: action.Parameters{"name": "John Smith"}},
	{ActionGroup: "loadtest", APIPath: "/PolicyExpert", HTTPMethod: "GET", Parameters: action.Parameters{"query": "leave", "department": "HR"}},
	{ActionGroup: "loadtest", APIPath: "/Developer", HTTPMethod: "GET", Parameters: action.Parameters{"query": "auth", "technology": "Go"}},
	{ActionGroup: "loadtest", APIPath: "/Crew", HTTPMethod: "GET", Parameters: action.Parameters{"query": "infra team"}},
	{ActionGroup: "loadtest", APIPath: "/Crew", HTTPMethod: "GET", Parameters: action.Parameters{}},
}

type pathStats struct {
	Count     int             `json:"count"`
	Envelopes map[int]int     `json:"envelope_status"`
	Latencies []time.Duration `json:"-"`
}

type result struct {
	idx            int
	path           string
	httpStatus     int
	envelopeStatus int
	duration       time.Duration
	err            error
}

func main() {
	var (
		url         = flag.String("url", "http://localhost:8080/invoke", "Target URL")
		concurrency = flag.Int("concurrency", 10, "Number of concurrent workers")
		requests    = flag.Int("requests", 100, "Total number of requests to send")
		timeout     = flag.Duration("timeout", 10*time.Second, "Per-request timeout")
		outJSON     = flag.String("out", "", "Write JSON summary to this file (optional)")
		outCSV      = flag.String("csv", "", "Write per-request CSV to this file (optional)")
	)
	flag.Parse()

	client := &http.Client{Timeout: *timeout}

	bodies := make([][]byte, len(invocations))
	for i, inv := range invocations {
		b, err := json.Marshal(inv)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode invocation: %v\n", err)
			os.Exit(1)
		}
		bodies[i] = b
	}

	jobs := make(chan int)
	results := make(chan result)
	var wg sync.WaitGroup

	testStart := time.Now()

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				n := idx % len(invocations)
				results <- send(client, *url, idx, invocations[n].APIPath, bodies[n])
			}
		}()
	}

	go func() {
		for i := 0; i < *requests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var csvWriter *csv.Writer
	if *outCSV != "" {
		f, err := os.Create(*outCSV)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create csv file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		csvWriter = csv.NewWriter(f)
		csvWriter.Write([]string{"idx", "timestamp", "api_path", "http_status", "envelope_status", "duration_ms"})
	}

	stats := map[string]*pathStats{}
	var all []time.Duration
	failures := 0

	for res := range results {
		all = append(all, res.duration)
		if res.err != nil {
			failures++
			continue
		}

		ps, ok := stats[res.path]
		if !ok {
			ps = &pathStats{Envelopes: map[int]int{}}
			stats[res.path] = ps
		}
		ps.Count++
		ps.Envelopes[res.envelopeStatus]++
		ps.Latencies = append(ps.Latencies, res.duration)

		if csvWriter != nil {
			csvWriter.Write([]string{
				strconv.Itoa(res.idx),
				time.Now().Format(time.RFC3339Nano),
				res.path,
				strconv.Itoa(res.httpStatus),
				strconv.Itoa(res.envelopeStatus),
				fmt.Sprintf("%.3f", float64(res.duration.Microseconds())/1000.0),
			})
		}
	}
	if csvWriter != nil {
		csvWriter.Flush()
	}

	totalDuration := time.Since(testStart)

	fmt.Println("--- Load Test Summary ---")
	fmt.Printf("Target: %s\n", *url)
	fmt.Printf("Requests: %d  Concurrency: %d  Transport failures: %d\n", *requests, *concurrency, failures)
	fmt.Printf("Duration: %v  Throughput: %.2f req/s\n", totalDuration, float64(len(all))/totalDuration.Seconds())

	fmt.Println("\nPer API path:")
	paths := make([]string, 0, len(stats))
	for p := range stats {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		ps := stats[p]
		fmt.Printf("  %s -> total=%d envelopes=%v\n", p, ps.Count, ps.Envelopes)
		fmt.Printf("    %s\n", describe(ps.Latencies))
	}

	fmt.Printf("\nOverall: %s\n", describe(all))
	fmt.Printf("GOMAXPROCS=%d  NumGoroutine=%d\n", runtime.GOMAXPROCS(0), runtime.NumGoroutine())

	if *outJSON != "" {
		report := map[string]any{
			"target":         *url,
			"requests":       *requests,
			"concurrency":    *concurrency,
			"failures":       failures,
			"duration_ms":    totalDuration.Milliseconds(),
			"throughput_rps": float64(len(all)) / totalDuration.Seconds(),
			"paths":          stats,
		}
		b, err := json.MarshalIndent(report, "", "  ")
		if err == nil {
			err = os.WriteFile(*outJSON, b, 0o644)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to write json summary: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote JSON summary to %s\n", *outJSON)
	}

	if failures > 0 {
		os.Exit(2)
	}
}

func send(client *http.Client, url string, idx int, path string, body []byte) result {
	res := result{idx: idx, path: path}
	start := time.Now()

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	res.duration = time.Since(start)
	if err != nil {
		res.err = err
		return res
	}
	defer resp.Body.Close()

	res.httpStatus = resp.StatusCode
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		res.err = err
		return res
	}

	var env envelope.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		res.err = err
		return res
	}
	res.envelopeStatus = env.HTTPStatusCode
	return res
}

func describe(latencies []time.Duration) string {
	if len(latencies) == 0 {
		return "samples=0"
	}
	tmp := make([]time.Duration, len(latencies))
	copy(tmp, latencies)
	sort.Slice(tmp, func(i, j int) bool { return tmp[i] < tmp[j] })

	var sum time.Duration
	for _, d := range tmp {
		sum += d
	}
	p := func(pct float64) time.Duration { return tmp[int(float64(len(tmp)-1)*pct)] }

	return fmt.Sprintf("samples=%d min=%v avg=%v max=%v p50=%v p90=%v p95=%v p99=%v",
		len(tmp), tmp[0], sum/time.Duration(len(tmp)), tmp[len(tmp)-1], p(0.50), p(0.90), p(0.95), p(0.99))
}
