package model

import "time"

// User is the catalog account a digest run is computed for. It is read-only
// from this service's point of view; account management lives in the web
// application.
type User struct {
	// ID is the unique identifier for this user.
	ID string `json:"id"`

	// Name is the account's login/short name.
	Name string `json:"name"`

	// DisplayName is the human-readable name used in outgoing email.
	DisplayName string `json:"display_name"`

	// Email is the delivery address. A user with no email on file is
	// silently skipped during a notification run.
	Email string `json:"email"`

	// ActivityStreamsEmailNotifications is the user's opt-in flag for
	// activity digest email.
	ActivityStreamsEmailNotifications bool `json:"activity_streams_email_notifications"`
}

// Dashboard tracks per-user notification bookkeeping. EmailLastSent is
// advanced exactly once per successful run, after the send phase.
type Dashboard struct {
	// UserID identifies the owning user; one dashboard row per user.
	UserID string `json:"user_id"`

	// EmailLastSent is when a digest email was last sent (or attempted)
	// for this user.
	EmailLastSent time.Time `json:"email_last_sent"`

	// ActivityStreamLastViewed is when the user last viewed their
	// activity stream in the web application.
	ActivityStreamLastViewed time.Time `json:"activity_stream_last_viewed"`
}
