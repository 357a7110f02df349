package testutil

import (
	"testing"

	"github.com/opencatalog/catalog-notifier/internal/store"
)

// NewTestStore returns a migrated in-memory SQLiteStore for tests that need
// real persistence (notification bookkeeping, saved-search baselines). The
// store is closed when the test finishes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing in-memory store: %v", err)
		}
	})

	return s
}
