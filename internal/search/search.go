// Package search defines the contract to the catalog's full-text search
// backend and an HTTP client implementing it. The backend itself (indexing,
// query language) is an external collaborator; this package only re-executes
// stored queries and reports the result ids and modification times.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Filter is a single structured filter clause applied to a query.
type Filter struct {
	// Key is the index field to filter on.
	Key string

	// Value is the value to match.
	Value string

	// Exact quotes the value so it matches as a whole phrase rather than
	// as individual terms.
	Exact bool

	// Require marks the clause as mandatory ("+key:value" syntax).
	Require bool
}

// Query is a re-executable search: free text plus structured clauses.
type Query struct {
	// Text is the free-text portion (the "q" parameter).
	Text string

	// Filters are the structured filter clauses.
	Filters []Filter

	// Extras are extension parameters passed to the backend verbatim.
	Extras map[string]string

	// Rows bounds the result page size.
	Rows int

	// IncludePrivate includes private datasets in the results.
	IncludePrivate bool
}

// Result is one search hit.
type Result struct {
	// ID is the dataset's unique identifier.
	ID string `json:"id"`

	// MetadataModified is when the dataset's metadata last changed.
	MetadataModified time.Time `json:"metadata_modified"`
}

// Results is the response to an executed query.
type Results struct {
	// Count is the total number of matches, which may exceed len(Results).
	Count int `json:"count"`

	// Results is the returned result page.
	Results []Result `json:"results"`
}

// Executor runs queries against the search backend.
type Executor interface {
	Search(ctx context.Context, q Query) (*Results, error)
}

// QueryRejectedError indicates the backend rejected the query itself
// (bad syntax or unknown field), as opposed to failing to execute it.
type QueryRejectedError struct {
	Query   string
	Message string
}

func (e *QueryRejectedError) Error() string {
	return fmt.Sprintf("search query rejected: %s", e.Message)
}

// BackendError indicates an infrastructure failure in the search backend
// or on the way to it.
type BackendError struct {
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("search backend error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("search backend error: %s", e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// IsQueryRejected reports whether err (or any error in its chain) is a
// QueryRejectedError.
func IsQueryRejected(err error) bool {
	var rejectedErr *QueryRejectedError
	return errors.As(err, &rejectedErr)
}

// IsBackendError reports whether err (or any error in its chain) is a
// BackendError.
func IsBackendError(err error) bool {
	var backendErr *BackendError
	return errors.As(err, &backendErr)
}
