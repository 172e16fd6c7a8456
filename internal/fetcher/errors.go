package fetcher

import (
	"errors"
	"fmt"
)

// ErrCategoryNotFound matches every *CategoryNotFoundError via errors.Is.
var ErrCategoryNotFound = errors.New("category not found")

// RemoteFetchError wraps a transport or GraphQL failure of one request.
type RemoteFetchError struct {
	// Op is the query that failed: "discussions" or "categories".
	Op string
	// Cursor is the `after` cursor of the failed discussions page, empty for the first page.
	Cursor string
	Err    error
}

func (e *RemoteFetchError) Error() string {
	if e.Cursor != "" {
		return fmt.Sprintf("failed to fetch %s (after %q): %v", e.Op, e.Cursor, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.Op, e.Err)
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Err
}

// CategoryNotFoundError reports a category name with no exact match.
type CategoryNotFoundError struct {
	Name string
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("category %q not found", e.Name)
}

func (e *CategoryNotFoundError) Unwrap() error {
	return ErrCategoryNotFound
}
