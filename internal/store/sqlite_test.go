package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencatalog/catalog-notifier/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestUpsertAndGetUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.UpsertUser(ctx, model.User{
		ID:                                "u1",
		Name:                              "alice",
		DisplayName:                       "Alice",
		Email:                             "alice@example.com",
		ActivityStreamsEmailNotifications: true,
	}))
	require.NoError(t, s.UpsertUser(ctx, model.User{
		ID:   "u2",
		Name: "bob",
	}))

	users, err := s.GetUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Name)
	assert.True(t, users[0].ActivityStreamsEmailNotifications)
	assert.False(t, users[1].ActivityStreamsEmailNotifications)

	got, err := s.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = s.GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertUserCreatesDashboard(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.UpsertUser(ctx, model.User{ID: "u1"}))

	dash, err := s.GetDashboard(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", dash.UserID)
	assert.True(t, dash.EmailLastSent.Unix() <= 0)
	assert.True(t, dash.ActivityStreamLastViewed.Unix() <= 0)
}

func TestUpsertUserPreservesRelatedRows(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.UpsertUser(ctx, model.User{
		ID:    "u1",
		Name:  "alice",
		Email: "alice@example.com",
	}))

	sent := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetEmailLastSent(ctx, "u1", sent))
	require.NoError(t, s.CreateSavedSearch(ctx, model.SavedSearch{
		ID:           "s1",
		OwnerID:      "u1",
		SearchString: "q=climate",
	}))
	require.NoError(t, s.CreateActivity(ctx, "u1", model.Activity{
		ID:        "a1",
		UserID:    "u2",
		Timestamp: sent,
	}))

	// A routine profile update must not reset notification bookkeeping.
	require.NoError(t, s.UpsertUser(ctx, model.User{
		ID:    "u1",
		Name:  "alice",
		Email: "alice@new.example.com",
	}))

	user, err := s.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", user.Email)

	dash, err := s.GetDashboard(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, dash.EmailLastSent.Equal(sent))

	searches, err := s.ListSavedSearches(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, searches, 1)
	assert.Equal(t, "s1", searches[0].ID)

	activities, err := s.DashboardActivity(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, activities, 1)
}

func TestDashboardBookkeeping(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.UpsertUser(ctx, model.User{ID: "u1"}))

	sent := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	viewed := sent.Add(-time.Hour)

	require.NoError(t, s.SetEmailLastSent(ctx, "u1", sent))
	require.NoError(t, s.SetActivityStreamLastViewed(ctx, "u1", viewed))

	dash, err := s.GetDashboard(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, dash.EmailLastSent.Equal(sent))
	assert.True(t, dash.ActivityStreamLastViewed.Equal(viewed))
}

func TestSavedSearchRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.UpsertUser(ctx, model.User{ID: "u1"}))

	require.NoError(t, s.CreateSavedSearch(ctx, model.SavedSearch{
		ID:           "s1",
		OwnerID:      "u1",
		SearchString: "q=climate&tags=air",
	}))

	searches, err := s.ListSavedSearches(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, searches, 1)
	assert.Equal(t, "q=climate&tags=air", searches[0].SearchString)
	assert.Nil(t, searches[0].LastRun)
	assert.Empty(t, searches[0].LastResults)
}

func TestUpdateSavedSearchBaseline(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.UpsertUser(ctx, model.User{ID: "u1"}))
	require.NoError(t, s.CreateSavedSearch(ctx, model.SavedSearch{
		ID:      "s1",
		OwnerID: "u1",
	}))

	lastRun := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateSavedSearchBaseline(
		ctx, "s1", []string{"d1", "d2"}, lastRun,
	))

	searches, err := s.ListSavedSearches(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, searches, 1)
	require.NotNil(t, searches[0].LastRun)
	assert.True(t, searches[0].LastRun.Equal(lastRun))
	assert.Equal(t, []string{"d1", "d2"}, searches[0].LastResults)
}

func TestUpdateSavedSearchBaselineMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.UpdateSavedSearchBaseline(ctx, "nope", nil, time.Now())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSavedSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.UpsertUser(ctx, model.User{ID: "u1"}))
	require.NoError(t, s.CreateSavedSearch(ctx, model.SavedSearch{ID: "s1", OwnerID: "u1"}))

	require.NoError(t, s.DeleteSavedSearch(ctx, "s1"))

	searches, err := s.ListSavedSearches(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, searches)
}

func TestDashboardActivityNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.UpsertUser(ctx, model.User{ID: "u1"}))
	require.NoError(t, s.UpsertUser(ctx, model.User{ID: "u2"}))

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateActivity(ctx, "u1", model.Activity{
		ID:        "a-old",
		UserID:    "u2",
		Type:      "new package",
		Timestamp: base,
		Data:      map[string]string{"package": "p1"},
	}))
	require.NoError(t, s.CreateActivity(ctx, "u1", model.Activity{
		ID:        "a-new",
		UserID:    "u2",
		Type:      "changed package",
		Timestamp: base.Add(time.Hour),
	}))
	// Same event fanned out to another stream must not leak into u1's.
	require.NoError(t, s.CreateActivity(ctx, "u2", model.Activity{
		ID:        "a-other",
		UserID:    "u1",
		Timestamp: base,
	}))

	activities, err := s.DashboardActivity(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, "a-new", activities[0].ID)
	assert.Equal(t, "a-old", activities[1].ID)
	assert.Equal(t, map[string]string{"package": "p1"}, activities[1].Data)
}
