package backend

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const mockItemCount = 3

var (
	mockPolicyTypes = []string{"Corporate", "HR", "Security"}
	mockLanguages   = []string{"Python", "JavaScript", "Java"}
	mockPlatforms   = []string{"AWS", "Azure", "GCP"}
	mockLocations   = []string{"Seattle", "New York", "Remote"}
)

// Mock stands in for the real service when running without one. Its data is
// illustrative and deterministic.
type Mock struct {
	latency time.Duration
}

func NewMock(latency time.Duration) *Mock {
	return &Mock{latency: latency}
}

func (m *Mock) LookupDirectory(ctx context.Context, q DirectoryQuery) (DirectoryRecord, error) {
	if err := m.wait(ctx); err != nil {
		return DirectoryRecord{}, err
	}

	return DirectoryRecord{
		FirstName:      "John",
		LastName:       "Smith",
		BusinessTitle:  "Senior Software Engineer",
		DepartmentName: "Engineering",
		LocationName:   "Seattle",
		CrewID:         "EMP12345",
		Email:          "john.smith@company.com",
		ManagerName:    "Jane Doe",
		ManagerCrewID:  "EMP67890",
	}, nil
}

func (m *Mock) Search(ctx context.Context, payload SearchPayload) (SearchResult, error) {
	if err := m.wait(ctx); err != nil {
		return SearchResult{}, err
	}

	count := mockItemCount
	if payload.MaxResults > 0 && payload.MaxResults < count {
		count = payload.MaxResults
	}

	items := make([]ResultItem, 0, count)
	for i := 1; i <= count; i++ {
		item := ResultItem{
			ID:          fmt.Sprintf("result-%d", i),
			Title:       fmt.Sprintf("%s Result %d", strings.ToUpper(string(payload.SearchType)), i),
			Description: fmt.Sprintf("This is a sample %s result for query: %s", payload.SearchType, payload.Query),
		}

		switch payload.SearchType {
		case SearchPolicy:
			item.PolicyType = mockPolicyTypes[i%3]
			item.LastUpdated = "2025-03-01"
		case SearchDeveloper:
			item.Language = mockLanguages[i%3]
			item.Platform = mockPlatforms[i%3]
		case SearchCrew:
			item.TeamSize = i*5 + 3
			item.Location = mockLocations[i%3]
		}

		items = append(items, item)
	}

	return SearchResult{Items: items}, nil
}

func (m *Mock) wait(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(m.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
