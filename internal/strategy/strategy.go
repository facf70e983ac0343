package strategy

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/angeloszaimis/action-router/internal/action"
)

type Strategy interface {
	Name() string
	// Validate fails with a validation *action.Error on missing input.
	Validate(params action.Parameters) error
	// Execute builds the query, calls the backend, and returns the
	// normalized result. Params must already be valid.
	Execute(ctx context.Context, params action.Parameters) (any, error)
}

// Run validates params and executes s. The backend is never reached when
// validation fails.
func Run(ctx context.Context, s Strategy, params action.Parameters) (any, error) {
	if err := s.Validate(params); err != nil {
		return nil, err
	}
	return s.Execute(ctx, params)
}

func requireParameter(params action.Parameters, key, message string) error {
	if err := validation.Validate(params.Get(key), validation.Required.Error(message)); err != nil {
		return action.NewValidationError(err.Error())
	}
	return nil
}
