package activity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencatalog/catalog-notifier/internal/digest"
	"github.com/opencatalog/catalog-notifier/internal/model"
)

func TestFilter(t *testing.T) {
	since := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	activities := []model.Activity{
		{ID: "a1", UserID: "other1", Timestamp: since.Add(time.Hour)},
		{ID: "a2", UserID: "me", Timestamp: since.Add(2 * time.Hour)},
		{ID: "a3", UserID: "other2", Timestamp: since.Add(-time.Hour)},
		{ID: "a4", UserID: "other1", Timestamp: since.Add(3 * time.Hour)},
		{ID: "a5", UserID: "me", Timestamp: since.Add(4 * time.Hour)},
	}

	got := Filter(activities, "me", since)

	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "a4", got[1].ID)
}

func TestFilterSinceIsExclusive(t *testing.T) {
	since := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	activities := []model.Activity{
		{ID: "at", UserID: "other", Timestamp: since},
		{ID: "after", UserID: "other", Timestamp: since.Add(time.Nanosecond)},
	}

	got := Filter(activities, "me", since)

	require.Len(t, got, 1)
	assert.Equal(t, "after", got[0].ID)
}

func TestFilterEmpty(t *testing.T) {
	assert.Empty(t, Filter(nil, "me", time.Now()))
}

// staticFeed returns a fixed activity list for any user.
type staticFeed struct {
	activities []model.Activity
	err        error
}

func (f *staticFeed) DashboardActivity(
	_ context.Context, _ string,
) ([]model.Activity, error) {
	return f.activities, f.err
}

func TestSourceNotifications(t *testing.T) {
	since := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := model.User{
		ID:                                "me",
		DisplayName:                       "Alice",
		Email:                             "alice@example.com",
		ActivityStreamsEmailNotifications: true,
	}

	feed := &staticFeed{activities: []model.Activity{
		{ID: "a1", UserID: "other", Timestamp: since.Add(time.Hour)},
		{ID: "a2", UserID: "me", Timestamp: since.Add(time.Hour)},
	}}

	src := NewSource(feed, digest.NewComposer("Example Catalog", "https://example.com"))

	got, err := src.Notifications(context.Background(), user, since)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1 new activity from Example Catalog", got[0].Subject)
}

func TestSourceNoQualifyingActivity(t *testing.T) {
	since := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := model.User{ID: "me", ActivityStreamsEmailNotifications: true}

	feed := &staticFeed{activities: []model.Activity{
		{ID: "a1", UserID: "me", Timestamp: since.Add(time.Hour)},
	}}

	src := NewSource(feed, digest.NewComposer("Example Catalog", "https://example.com"))

	got, err := src.Notifications(context.Background(), user, since)
	require.NoError(t, err)
	assert.Empty(t, got)
}
