package strategy

import (
	"context"

	"github.com/angeloszaimis/action-router/internal/action"
	"github.com/angeloszaimis/action-router/internal/backend"
)

const (
	ResponseTypeEmployeeInfo = "EMPLOYEE_INFO"

	msgNameRequired    = "Name parameter is required"
	msgDirectoryFailed = "Failed to retrieve employee information"
)

// DirectoryResponse is the directory record with a metadata block tagging
// the response type and source.
type DirectoryResponse struct {
	backend.DirectoryRecord
	Metadata ResponseMetadata `json:"_metadata"`
}

type ResponseMetadata struct {
	ResponseType string `json:"responseType"`
	Source       string `json:"source"`
}

type directoryStrategy struct {
	backend backend.Collaborator
	source  string
}

func (d *directoryStrategy) Name() string {
	return "directory-lookup"
}

func (d *directoryStrategy) Validate(params action.Parameters) error {
	return requireParameter(params, "name", msgNameRequired)
}

func (d *directoryStrategy) Execute(ctx context.Context, params action.Parameters) (any, error) {
	query := backend.DirectoryQuery{Name: params.Get("name")}

	record, err := d.backend.LookupDirectory(ctx, query)
	if err != nil {
		return nil, action.NewBackendError(msgDirectoryFailed, err)
	}

	return DirectoryResponse{
		DirectoryRecord: record,
		Metadata: ResponseMetadata{
			ResponseType: ResponseTypeEmployeeInfo,
			Source:       d.source,
		},
	}, nil
}

// NewDirectoryStrategy returns the name lookup strategy. source names the
// directory in the response metadata.
func NewDirectoryStrategy(c backend.Collaborator, source string) Strategy {
	return &directoryStrategy{
		backend: c,
		source:  source,
	}
}
