package db

import (
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned by updates that match no document.
var ErrNotFound = errors.New("document not found")

// ResultsNotFound reports whether err means that a query matched no
// documents.
func ResultsNotFound(err error) bool {
	if err == nil {
		return false
	}
	cause := errors.Cause(err)
	return cause == mongo.ErrNoDocuments || cause == ErrNotFound
}

func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}

	if mongo.IsDuplicateKeyError(errors.Cause(err)) {
		return true
	}

	return strings.Contains(errors.Cause(err).Error(), "duplicate key")
}
