package backend

import "context"

// Collaborator is the search/directory service. Both calls may block on I/O.
type Collaborator interface {
	LookupDirectory(ctx context.Context, q DirectoryQuery) (DirectoryRecord, error)
	Search(ctx context.Context, payload SearchPayload) (SearchResult, error)
}

type DirectoryQuery struct {
	Name string `json:"name"`
}

// DirectoryRecord is a single person's directory entry.
type DirectoryRecord struct {
	FirstName      string `json:"fname"`
	LastName       string `json:"lastname"`
	BusinessTitle  string `json:"businessTitle"`
	DepartmentName string `json:"departmentName"`
	LocationName   string `json:"locationName"`
	CrewID         string `json:"crewId"`
	Email          string `json:"email"`
	ManagerName    string `json:"managerName"`
	ManagerCrewID  string `json:"managerCrewId"`
}

type SearchType string

const (
	SearchPolicy    SearchType = "policy"
	SearchDeveloper SearchType = "developer"
	SearchCrew      SearchType = "crew"
)

// SearchPayload is the query sent to the search capability. Refinement
// fields are omitted from the wire form when empty.
type SearchPayload struct {
	Query        string     `json:"query"`
	SearchType   SearchType `json:"searchType"`
	MaxResults   int        `json:"maxResults"`
	Department   string     `json:"department,omitempty"`
	Technology   string     `json:"technology,omitempty"`
	Project      string     `json:"project,omitempty"`
	ContentTypes []string   `json:"contentTypes"`
}

// ResultItem is one search hit. The trailing fields are only set for the
// matching search type. An item decoded from the service re-encodes exactly
// as received, including fields this type does not name.
type ResultItem struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`

	PolicyType  string `json:"policyType,omitempty"`
	LastUpdated string `json:"lastUpdated,omitempty"`

	Language string `json:"language,omitempty"`
	Platform string `json:"platform,omitempty"`

	TeamSize int    `json:"teamSize,omitempty"`
	Location string `json:"location,omitempty"`

	raw []byte
}

type resultItemFields ResultItem

func (r *ResultItem) UnmarshalJSON(data []byte) error {
	var fields resultItemFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = ResultItem(fields)
	r.raw = append([]byte(nil), data...)
	return nil
}

func (r ResultItem) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	return json.Marshal(resultItemFields(r))
}

type SearchResult struct {
	Items []ResultItem `json:"items"`
}
