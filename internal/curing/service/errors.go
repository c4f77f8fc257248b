package service

import (
	"errors"

	"github.com/naleksandarn/fermented-sausages/internal/curing/repository"
)

// Service-level error taxonomy. Handlers map these onto HTTP statuses;
// raw datastore errors are logged at the boundary and never contracted to
// callers.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("integrity conflict")
	ErrValidation   = errors.New("invalid input")
	ErrUnauthorized = errors.New("invalid credentials")
)

// wrapRepoErr lifts repository errors into the service taxonomy.
func wrapRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	default:
		return err
	}
}
