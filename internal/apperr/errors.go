// Package apperr defines sentinel errors shared across the application.
package apperr

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrSourceMissing       = errors.New("source note missing")
	ErrDuplicateIdentifier = errors.New("duplicate block identifier")
)
