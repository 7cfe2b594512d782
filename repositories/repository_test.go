package repository

import (
	"errors"
	"testing"

	"okrproject/errs"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "okr"))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments, "okr"), errs.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translate(dup, "okr"), errs.ErrConflict)

	other := errors.New("connection refused")
	err := translate(other, "okr")
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, errs.ErrNotFound)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}
