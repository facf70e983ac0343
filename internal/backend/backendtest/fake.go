// Package backendtest provides a deterministic, call-counting
// backend.Collaborator for tests.
package backendtest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/angeloszaimis/action-router/internal/backend"
)

// Fake returns the configured Record and Items, or Err when set, and counts
// every call it receives.
type Fake struct {
	Record backend.DirectoryRecord
	Items  []backend.ResultItem
	Err    error

	mutex          sync.Mutex
	directoryCalls int
	searchCalls    int
	lastQuery      backend.DirectoryQuery
	lastPayload    backend.SearchPayload
}

func (f *Fake) LookupDirectory(_ context.Context, q backend.DirectoryQuery) (backend.DirectoryRecord, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.directoryCalls++
	f.lastQuery = q
	if f.Err != nil {
		return backend.DirectoryRecord{}, f.Err
	}
	return f.Record, nil
}

func (f *Fake) Search(_ context.Context, payload backend.SearchPayload) (backend.SearchResult, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.searchCalls++
	f.lastPayload = payload
	if f.Err != nil {
		return backend.SearchResult{}, f.Err
	}
	return backend.SearchResult{Items: slices.Clone(f.Items)}, nil
}

func (f *Fake) DirectoryCalls() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.directoryCalls
}

func (f *Fake) SearchCalls() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.searchCalls
}

// Calls returns the total number of calls of either kind.
func (f *Fake) Calls() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.directoryCalls + f.searchCalls
}

func (f *Fake) LastQuery() backend.DirectoryQuery {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.lastQuery
}

func (f *Fake) LastPayload() backend.SearchPayload {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.lastPayload
}

// SampleItems returns n items with titles, descriptions, and crew fields.
// Every other item carries metadata.
func SampleItems(n int) []backend.ResultItem {
	items := make([]backend.ResultItem, 0, n)
	for i := 1; i <= n; i++ {
		item := backend.ResultItem{
			ID:          fmt.Sprintf("item-%d", i),
			Title:       fmt.Sprintf("Team %d", i),
			Description: fmt.Sprintf("Team %d description", i),
			TeamSize:    i * 4,
			Location:    "Remote",
		}
		if i%2 == 0 {
			item.Metadata = map[string]any{"rank": i}
		}
		items = append(items, item)
	}
	return items
}
