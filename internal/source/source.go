// Package source defines the contract for notification sources: independent
// producers of digest email notifications for a user. The scheduler holds an
// explicit ordered list of sources; adding a new kind of notification means
// implementing Source and registering it, without touching the scheduler.
package source

import (
	"context"
	"time"

	"github.com/opencatalog/catalog-notifier/internal/model"
)

// Source defines the contract that every notification source must implement.
type Source interface {
	// Name returns a short identifier used in logs.
	Name() string

	// Notifications returns the digest notifications this source has for
	// the user, considering only events after since. Most sources return
	// zero or one notification per run.
	Notifications(
		ctx context.Context,
		user model.User,
		since time.Time,
	) ([]model.Notification, error)
}
