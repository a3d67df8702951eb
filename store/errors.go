package store

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound means the referenced record does not exist (or is deleted).
	ErrNotFound = errors.New("record not found")

	// ErrInvalidPermutation means the requested ordering is not exactly the
	// current child-id set of the parent.
	ErrInvalidPermutation = errors.New("permutation does not match current children")

	// ErrConflictRetryable means concurrent writers on the same parent kept
	// colliding past the retry budget; the caller may retry the operation.
	ErrConflictRetryable = errors.New("concurrent modification conflict")

	// ErrInconsistentState means live positions were found non-dense on read.
	// This indicates an earlier operation did not complete atomically.
	ErrInconsistentState = errors.New("ordered collection positions are not dense")
)

// FieldErrors carries per-field validation messages, rendered by the HTTP
// layer as a 422 payload.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is a FieldErrors value.
func IsValidation(err error) bool {
	var fe FieldErrors
	return errors.As(err, &fe)
}
