package strategy

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/angeloszaimis/action-router/internal/backend"
)

const (
	ButtonMoreDetails = "more_details"
	ButtonNewSearch   = "new_search"
)

// SearchResponse carries the raw items alongside their presentation form.
type SearchResponse struct {
	Results           []backend.ResultItem `json:"results"`
	FormattedResponse FormattedResponse    `json:"formattedResponse"`
}

type FormattedResponse struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Items       []FormattedItem `json:"items"`
	Buttons     []Button        `json:"buttons"`
}

// FormattedItem is a result item reduced for display. Type-specific fields
// are dropped.
type FormattedItem struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

type Button struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// Buttons returns the follow-up actions offered with every search result.
func Buttons() []Button {
	return []Button{
		{Text: "More Details", Value: ButtonMoreDetails},
		{Text: "New Search", Value: ButtonNewSearch},
	}
}

// FormatSearchResults normalizes a backend result for presentation. An empty
// result still yields empty lists and both buttons.
func FormatSearchResults(searchType backend.SearchType, result backend.SearchResult) SearchResponse {
	results := result.Items
	if results == nil {
		results = []backend.ResultItem{}
	}

	items := make([]FormattedItem, 0, len(results))
	for _, item := range results {
		metadata := item.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		items = append(items, FormattedItem{
			Title:       item.Title,
			Description: item.Description,
			Metadata:    metadata,
		})
	}

	return SearchResponse{
		Results: results,
		FormattedResponse: FormattedResponse{
			Title:       fmt.Sprintf("%s Search Results", capitalize(string(searchType))),
			Description: fmt.Sprintf("Found %d results for your query", len(results)),
			Items:       items,
			Buttons:     Buttons(),
		},
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
