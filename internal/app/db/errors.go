package db

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// IsDuplicateKey reports whether the error is a MongoDB unique index violation (code 11000).
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// IsNotFound reports whether the error means no document matched the query.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
