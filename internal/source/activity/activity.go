// Package activity produces digest notifications from a user's dashboard
// activity stream.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/opencatalog/catalog-notifier/internal/digest"
	"github.com/opencatalog/catalog-notifier/internal/model"
)

// Feed supplies a user's raw dashboard activity stream. The feed may be
// unordered; Filter preserves whatever order it arrives in.
type Feed interface {
	DashboardActivity(ctx context.Context, userID string) ([]model.Activity, error)
}

// Filter removes activities the user should not be notified about: their
// own activities (no self-notification) and anything at or before since.
// The relative order of the input is preserved.
func Filter(
	activities []model.Activity,
	userID string,
	since time.Time,
) []model.Activity {
	var kept []model.Activity
	for _, a := range activities {
		if a.UserID == userID {
			continue
		}
		if !a.Timestamp.After(since) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// Source implements source.Source over a dashboard activity feed.
type Source struct {
	feed     Feed
	composer *digest.Composer
}

// NewSource creates an activity notification source.
func NewSource(feed Feed, composer *digest.Composer) *Source {
	return &Source{feed: feed, composer: composer}
}

// Name returns the source identifier used in logs.
func (s *Source) Name() string {
	return "dashboard_activity"
}

// Notifications fetches the user's dashboard activity stream, drops
// self-authored and stale events, and composes at most one digest covering
// the rest.
func (s *Source) Notifications(
	ctx context.Context,
	user model.User,
	since time.Time,
) ([]model.Notification, error) {
	activities, err := s.feed.DashboardActivity(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching dashboard activity for %s: %w", user.ID, err)
	}

	activities = Filter(activities, user.ID, since)

	return s.composer.ComposeActivities(user, activities)
}
