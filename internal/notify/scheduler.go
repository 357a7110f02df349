// Package notify orchestrates a digest notification run: computing each
// user's cutoff, collecting notifications from every registered source,
// sending them, and persisting the bookkeeping.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/opencatalog/catalog-notifier/internal/mail"
	"github.com/opencatalog/catalog-notifier/internal/model"
	"github.com/opencatalog/catalog-notifier/internal/source"
	"github.com/opencatalog/catalog-notifier/internal/store"
)

// Scheduler runs digest notification cycles over an explicit ordered list
// of notification sources.
type Scheduler struct {
	store   store.Store
	mailer  mail.Mailer
	sources []source.Source
	minAge  time.Duration
	now     func() time.Time
}

// NewScheduler creates a Scheduler. minAge is the configured notification
// window: events older than now minus minAge are never considered,
// regardless of when the user was last notified.
func NewScheduler(
	st store.Store,
	mailer mail.Mailer,
	sources []source.Source,
	minAge time.Duration,
) *Scheduler {
	return &Scheduler{
		store:   st,
		mailer:  mailer,
		sources: sources,
		minAge:  minAge,
		now:     time.Now,
	}
}

// RunForUser computes the user's cutoff, collects and sends any digest
// notifications, and advances email_last_sent. The cutoff advance is
// unconditional after the send phase: a failed delivery is logged but not
// retried, so the next run will not re-send already-attempted digests.
func (s *Scheduler) RunForUser(ctx context.Context, user model.User) error {
	now := s.now()

	dash, err := s.store.GetDashboard(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("loading dashboard for %s: %w", user.ID, err)
	}

	// The cutoff is the latest of three candidates, so the user is never
	// renotified about anything already surfaced by any of the three
	// mechanisms: the global window, the last email, or their own last
	// look at the activity stream.
	since := maxTime(
		now.Add(-s.minAge),
		dash.EmailLastSent,
		dash.ActivityStreamLastViewed,
	)

	var notifications []model.Notification
	for _, src := range s.sources {
		ns, err := src.Notifications(ctx, user, since)
		if err != nil {
			slog.Error("notification source failed",
				"source", src.Name(), "user", user.ID, "error", err)
			continue
		}
		notifications = append(notifications, ns...)
	}

	if user.Email == "" {
		if len(notifications) > 0 {
			slog.Info("user has no email address, skipping delivery",
				"user", user.ID, "notifications", len(notifications))
		}
	} else {
		for _, n := range notifications {
			err := s.mailer.Send(ctx, user.DisplayName, user.Email, n.Subject, n.Body)
			if err != nil {
				// One failed delivery must not block the rest.
				slog.Error("sending notification failed",
					"user", user.ID, "subject", n.Subject, "error", err)
			}
		}
	}

	if err := s.store.SetEmailLastSent(ctx, user.ID, now); err != nil {
		return fmt.Errorf("advancing email_last_sent for %s: %w", user.ID, err)
	}

	return nil
}

// RunForAll processes every user sequentially. A failing user is logged
// and does not abort the batch; the first error is returned once the batch
// completes so the caller can exit non-zero.
func (s *Scheduler) RunForAll(ctx context.Context) error {
	users, err := s.store.GetUsers(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}

	var firstErr error
	for _, user := range users {
		if err := s.RunForUser(ctx, user); err != nil {
			slog.Error("notification run failed for user",
				"user", user.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// maxTime returns the latest of the given timestamps.
func maxTime(first time.Time, rest ...time.Time) time.Time {
	latest := first
	for _, t := range rest {
		if t.After(latest) {
			latest = t
		}
	}
	return latest
}
