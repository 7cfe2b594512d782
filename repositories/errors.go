package repository

import (
	"errors"
	"fmt"

	"okrproject/errs"

	"go.mongodb.org/mongo-driver/mongo"
)

// translate maps driver errors onto the domain errors the services match on.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", what, errs.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", what, errs.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
