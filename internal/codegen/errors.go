package codegen

import (
	"errors"
	"fmt"
)

// Batch validation errors. Generate wraps them with the offending key.
var (
	ErrEmptyKey     = errors.New("empty query key")
	ErrDuplicateKey = errors.New("duplicate query key")
	ErrInvalidKey   = errors.New("query key is not a valid TypeScript identifier")
)

// QueryError reports a query that could not be converted. Other queries of
// the batch are unaffected.
type QueryError struct {
	Key    string
	Source string
	Err    error
}

func (e *QueryError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("query %s (%s): %v", e.Key, e.Source, e.Err)
	}
	return fmt.Sprintf("query %s: %v", e.Key, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsQueryError reports whether err is or wraps a *QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}
