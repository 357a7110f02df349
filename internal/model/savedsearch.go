package model

import "time"

// SavedSearch is a stored catalog search owned by a user. The search itself
// is kept as the raw query-string blob the web application captured; this
// service re-parses and re-executes it on every run.
type SavedSearch struct {
	// ID is the unique identifier for this saved search.
	ID string `json:"id"`

	// OwnerID is the user who saved the search.
	OwnerID string `json:"owner_id"`

	// SearchString is the raw &-delimited key=value blob, possibly with a
	// leading "?".
	SearchString string `json:"search_string"`

	// LastRun is when the search was last evaluated successfully.
	// Nil means the search has never been evaluated; the first
	// evaluation records a baseline without emitting a change event.
	LastRun *time.Time `json:"last_run"`

	// LastResults is the baseline: the result-id set from the most recent
	// successful evaluation. Updated atomically together with LastRun.
	LastResults []string `json:"last_results"`
}

// ChangeType tags what kind of change a saved-search evaluation detected.
type ChangeType string

const (
	// ChangeResultsChanged means ids appeared that were not in the baseline.
	ChangeResultsChanged ChangeType = "search_results_changed"

	// ChangeResultsUpdated means the id set is unchanged but at least one
	// result was modified after the search's last run.
	ChangeResultsUpdated ChangeType = "search_results_updated"
)

// SearchChange is the event a saved-search evaluation emits when the
// current result set differs from the baseline.
type SearchChange struct {
	// Type classifies the change.
	Type ChangeType `json:"type"`

	// SearchURL is a browsable URL reconstructed from the saved search,
	// pointing the user at the (possibly changed) results.
	SearchURL string `json:"search_url"`
}
