package model

import "time"

// Activity is an immutable event record from the catalog's activity log,
// e.g. a dataset edit or a new resource on a followed dataset. Produced by
// the web application; consumed read-only here.
type Activity struct {
	// ID is the unique identifier for this activity.
	ID string `json:"id"`

	// UserID is the user who performed the activity.
	UserID string `json:"user_id"`

	// Type is the activity kind (e.g. "changed package", "new package").
	Type string `json:"type"`

	// Timestamp is when the activity occurred.
	Timestamp time.Time `json:"timestamp"`

	// Data holds type-specific payload fields.
	Data map[string]string `json:"data,omitempty"`
}
