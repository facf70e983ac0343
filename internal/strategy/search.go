package strategy

import (
	"context"
	"fmt"
	"slices"

	"github.com/angeloszaimis/action-router/internal/action"
	"github.com/angeloszaimis/action-router/internal/backend"
)

// MaxResults is sent with every search regardless of caller input.
const MaxResults = 5

const msgQueryRequired = "Query parameter is required"

// profile is the per-type part of a search payload: which optional
// parameter is passed through, and the fixed content types.
type profile struct {
	refinement   string
	target       func(p *backend.SearchPayload) *string
	contentTypes []string
}

var profiles = map[backend.SearchType]profile{
	backend.SearchPolicy: {
		refinement:   "department",
		target:       func(p *backend.SearchPayload) *string { return &p.Department },
		contentTypes: []string{"policy", "guideline", "procedure"},
	},
	backend.SearchDeveloper: {
		refinement:   "technology",
		target:       func(p *backend.SearchPayload) *string { return &p.Technology },
		contentTypes: []string{"documentation", "codeExample", "api"},
	},
	backend.SearchCrew: {
		refinement:   "project",
		target:       func(p *backend.SearchPayload) *string { return &p.Project },
		contentTypes: []string{"team", "project", "organization"},
	},
}

// SearchTypes lists the supported search types.
func SearchTypes() []backend.SearchType {
	return []backend.SearchType{backend.SearchPolicy, backend.SearchDeveloper, backend.SearchCrew}
}

// BuildSearchPayload derives the backend payload for searchType from params.
// Only the type's own refinement parameter is consulted, and only when it is
// non-empty.
func BuildSearchPayload(searchType backend.SearchType, params action.Parameters) (backend.SearchPayload, error) {
	prof, ok := profiles[searchType]
	if !ok {
		return backend.SearchPayload{}, fmt.Errorf("unsupported search type %q", searchType)
	}

	payload := backend.SearchPayload{
		Query:        params.Get("query"),
		SearchType:   searchType,
		MaxResults:   MaxResults,
		ContentTypes: slices.Clone(prof.contentTypes),
	}

	if params.Has(prof.refinement) {
		*prof.target(&payload) = params.Get(prof.refinement)
	}

	return payload, nil
}

type searchStrategy struct {
	searchType backend.SearchType
	backend    backend.Collaborator
}

func (s *searchStrategy) Name() string {
	return string(s.searchType) + "-search"
}

func (s *searchStrategy) Validate(params action.Parameters) error {
	return requireParameter(params, "query", msgQueryRequired)
}

func (s *searchStrategy) Execute(ctx context.Context, params action.Parameters) (any, error) {
	payload, err := BuildSearchPayload(s.searchType, params)
	if err != nil {
		return nil, err
	}

	result, err := s.backend.Search(ctx, payload)
	if err != nil {
		return nil, action.NewBackendError(
			fmt.Sprintf("Failed to retrieve %s information", s.searchType), err)
	}

	return FormatSearchResults(s.searchType, result), nil
}

// NewSearchStrategy returns the parameterized search strategy for one of
// SearchTypes.
func NewSearchStrategy(searchType backend.SearchType, c backend.Collaborator) (Strategy, error) {
	if _, ok := profiles[searchType]; !ok {
		return nil, fmt.Errorf("unsupported search type %q", searchType)
	}

	return &searchStrategy{
		searchType: searchType,
		backend:    c,
	}, nil
}
