//go:build ignore

// Check_results validates CSV output from loadtest.go by checking for
// duplicate request indices and summarizing envelope status per API path.
//
// Usage:
//
//	go run scripts/check_results.go -csv results.csv -expected 5000
//
// The tool verifies:
//   - No duplicate request indices
//   - Total row count matches expected count
//   - Every request produced an envelope (transport status 200)
//
// Exit codes:
//
//	0 - Verification passed
//	2 - File errors or malformed CSV
//	3 - Duplicate indices found
//	4 - Requests without an envelope
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
)

func main() {
	csvPath := flag.String("csv", "results.csv", "Path to CSV produced by loadtest")
	expected := flag.Int("expected", 0, "Expected number of rows (optional)")
	flag.Parse()

	f, err := os.Open(*csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open csv: %v\n", err)
		os.Exit(2)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read csv: %v\n", err)
		os.Exit(2)
	}

	if len(rows) == 0 {
		fmt.Fprintf(os.Stderr, "csv empty\n")
		os.Exit(2)
	}

	// header expected: idx,timestamp,api_path,http_status,envelope_status,duration_ms
	if header := rows[0]; len(header) < 6 {
		fmt.Fprintf(os.Stderr, "unexpected csv header: %v\n", header)
		os.Exit(2)
	}

	idxSeen := map[int]bool{}
	pathCounts := map[string]map[string]int{}
	missingEnvelopes := 0

	for i := 1; i < len(rows); i++ {
		r := rows[i]
		if len(r) < 6 {
			fmt.Fprintf(os.Stderr, "malformed row %d: %v\n", i, r)
			os.Exit(2)
		}
		idx, err := strconv.Atoi(r[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid idx at row %d: %v\n", i, err)
			os.Exit(2)
		}
		if idxSeen[idx] {
			fmt.Printf("DUPLICATE idx=%d at csv row %d\n", idx, i)
		}
		idxSeen[idx] = true

		if r[3] != "200" {
			missingEnvelopes++
		}

		path := r[2]
		if pathCounts[path] == nil {
			pathCounts[path] = map[string]int{}
		}
		pathCounts[path][r[4]]++
	}

	totalRows := len(rows) - 1
	unique := len(idxSeen)
	fmt.Printf("Total rows: %d  Unique idx: %d\n", totalRows, unique)

	if *expected > 0 && totalRows != *expected {
		fmt.Printf("Warning: total rows (%d) != expected (%d)\n", totalRows, *expected)
	}

	if totalRows != unique {
		fmt.Printf("ERROR: found %d duplicate indices\n", totalRows-unique)
		os.Exit(3)
	}

	fmt.Println("Envelope status per API path:")
	paths := make([]string, 0, len(pathCounts))
	for p := range pathCounts {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		fmt.Printf("  %s -> %v\n", p, pathCounts[p])
	}

	if missingEnvelopes > 0 {
		fmt.Printf("ERROR: %d requests did not return an envelope\n", missingEnvelopes)
		os.Exit(4)
	}

	fmt.Println("Verification passed: no duplicate indices and every request returned an envelope.")
}
