package envelope

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/angeloszaimis/action-router/internal/action"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultDetails fills the details field of a failure that carries none.
const DefaultDetails = "An unexpected error occurred"

type Envelope struct {
	ActionGroup    string `json:"actionGroup"`
	APIPath        string `json:"apiPath"`
	HTTPMethod     string `json:"httpMethod"`
	HTTPStatusCode int    `json:"httpStatusCode"`
	ResponseBody   string `json:"responseBody"`
}

// ErrorBody is the response body of a failure envelope.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Success wraps result with status 200.
func Success(inv action.Invocation, result any) Envelope {
	body, err := json.Marshal(result)
	if err != nil {
		return Failure(inv, action.NewUnexpectedError(fmt.Errorf("encode response body: %w", err)))
	}

	return newEnvelope(inv, http.StatusOK, string(body))
}

// Failure wraps err. Errors other than *action.Error are reported as
// unexpected with status 500.
func Failure(inv action.Invocation, err error) Envelope {
	ae := action.AsError(err)
	if ae == nil {
		ae = action.NewUnexpectedError(nil)
	}

	status := ae.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	errBody := ErrorBody{
		Error:   ae.Message,
		Details: ae.Details,
	}
	if errBody.Details == "" {
		errBody.Details = DefaultDetails
	}

	body, mErr := json.Marshal(errBody)
	if mErr != nil {
		body = []byte(`{"error":"Internal error","details":"` + DefaultDetails + `"}`)
	}

	return newEnvelope(inv, status, string(body))
}

func newEnvelope(inv action.Invocation, status int, body string) Envelope {
	return Envelope{
		ActionGroup:    inv.ActionGroup,
		APIPath:        inv.APIPath,
		HTTPMethod:     inv.HTTPMethod,
		HTTPStatusCode: status,
		ResponseBody:   body,
	}
}

// Succeeded reports whether the envelope carries a 2xx status.
func (e Envelope) Succeeded() bool {
	return e.HTTPStatusCode >= 200 && e.HTTPStatusCode < 300
}
