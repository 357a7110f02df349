package store

import (
	"context"
	"time"

	"github.com/opencatalog/catalog-notifier/internal/model"
)

// Store defines the persistence interface for users, dashboards, saved
// searches, and the activity log. The web application owns most of this
// data; the notifier reads it and writes back only notification
// bookkeeping (dashboard email_last_sent, saved-search baselines).
type Store interface {
	// === Users ===

	UpsertUser(ctx context.Context, user model.User) error
	GetUsers(ctx context.Context) ([]model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// === Dashboards ===

	GetDashboard(ctx context.Context, userID string) (*model.Dashboard, error)
	SetActivityStreamLastViewed(ctx context.Context, userID string, viewed time.Time) error

	// SetEmailLastSent records when a notification run last sent (or
	// attempted) email for the user.
	SetEmailLastSent(ctx context.Context, userID string, sent time.Time) error

	// === Saved searches ===

	CreateSavedSearch(ctx context.Context, search model.SavedSearch) error
	ListSavedSearches(ctx context.Context, ownerID string) ([]model.SavedSearch, error)
	DeleteSavedSearch(ctx context.Context, id string) error

	// UpdateSavedSearchBaseline records a successful evaluation: the new
	// result-id set and run timestamp, written atomically so a partial
	// baseline is never observable.
	UpdateSavedSearchBaseline(
		ctx context.Context,
		id string,
		resultIDs []string,
		lastRun time.Time,
	) error

	// === Activity log ===

	// CreateActivity appends an activity to a user's dashboard stream.
	// The web application fans an event out to every stream it appears
	// on; streamUserID names the stream, activity.UserID the actor.
	CreateActivity(ctx context.Context, streamUserID string, activity model.Activity) error

	// DashboardActivity returns the activities on the user's dashboard
	// stream, newest first.
	DashboardActivity(ctx context.Context, userID string) ([]model.Activity, error)
}
