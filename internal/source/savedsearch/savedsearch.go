// Package savedsearch detects changes in a user's saved catalog searches by
// re-executing each stored query and diffing the result-id set against the
// baseline recorded on the previous run.
package savedsearch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/opencatalog/catalog-notifier/internal/digest"
	"github.com/opencatalog/catalog-notifier/internal/model"
	"github.com/opencatalog/catalog-notifier/internal/search"
)

// Store is the persistence surface the differ needs: listing a user's
// saved searches and recording a new baseline after a successful
// evaluation.
type Store interface {
	ListSavedSearches(ctx context.Context, ownerID string) ([]model.SavedSearch, error)

	// UpdateSavedSearchBaseline writes the new result-id set and last-run
	// timestamp in a single atomic write.
	UpdateSavedSearchBaseline(
		ctx context.Context,
		id string,
		resultIDs []string,
		lastRun time.Time,
	) error
}

// Differ re-executes a single saved search and classifies how its results
// moved since the last evaluation.
type Differ struct {
	executor       search.Executor
	store          Store
	siteURL        string
	rows           int
	includePrivate bool
	now            func() time.Time
}

// NewDiffer creates a Differ. rows bounds the result page requested per
// evaluation; includePrivate mirrors the catalog's private-dataset toggle.
func NewDiffer(
	executor search.Executor,
	store Store,
	siteURL string,
	rows int,
	includePrivate bool,
) *Differ {
	if rows <= 0 {
		rows = 1000
	}
	return &Differ{
		executor:       executor,
		store:          store,
		siteURL:        siteURL,
		rows:           rows,
		includePrivate: includePrivate,
		now:            time.Now,
	}
}

// Evaluate re-runs one saved search and returns the detected change, or nil
// when nothing changed. On success the new result set and run time are
// persisted as the next baseline whether or not a change was detected. On
// any error nothing is persisted, so a transient failure cannot suppress
// future change detection.
func (d *Differ) Evaluate(
	ctx context.Context,
	saved model.SavedSearch,
) (*model.SearchChange, error) {
	parsed := parseSearchString(saved.SearchString, d.siteURL)

	query := parsed.query
	query.Rows = d.rows
	query.IncludePrivate = d.includePrivate

	results, err := d.executor.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool, len(results.Results))
	resultIDs := make([]string, 0, len(results.Results))
	for _, r := range results.Results {
		if !ids[r.ID] {
			resultIDs = append(resultIDs, r.ID)
		}
		ids[r.ID] = true
	}

	var change *model.SearchChange

	// A search that has never run has nothing to compare against; the
	// result set is recorded as baseline without emitting an event.
	if saved.LastRun != nil {
		baseline := make(map[string]bool, len(saved.LastResults))
		for _, id := range saved.LastResults {
			baseline[id] = true
		}

		if hasNewIDs(ids, baseline) {
			change = &model.SearchChange{
				Type:      model.ChangeResultsChanged,
				SearchURL: parsed.url,
			}
		} else {
			// Same id set: look for a result modified after the last
			// run. One match suffices.
			for _, r := range results.Results {
				if r.MetadataModified.After(*saved.LastRun) {
					change = &model.SearchChange{
						Type:      model.ChangeResultsUpdated,
						SearchURL: parsed.url,
					}
					break
				}
			}
		}
	}

	err = d.store.UpdateSavedSearchBaseline(ctx, saved.ID, resultIDs, d.now())
	if err != nil {
		// Without a recorded baseline the change would be re-detected
		// and re-sent next run; suppress the event rather than risk a
		// duplicate followed by silence.
		return nil, fmt.Errorf("recording baseline for search %s: %w", saved.ID, err)
	}

	return change, nil
}

// hasNewIDs reports whether current contains any id absent from baseline.
// Vanished ids alone do not count as a change.
func hasNewIDs(current, baseline map[string]bool) bool {
	for id := range current {
		if !baseline[id] {
			return true
		}
	}
	return false
}

// Source implements source.Source over all of a user's saved searches.
type Source struct {
	store    Store
	differ   *Differ
	composer *digest.Composer
}

// NewSource creates a saved-search notification source.
func NewSource(store Store, differ *Differ, composer *digest.Composer) *Source {
	return &Source{store: store, differ: differ, composer: composer}
}

// Name returns the source identifier used in logs.
func (s *Source) Name() string {
	return "saved_searches"
}

// Notifications evaluates every saved search the user owns and composes at
// most one digest covering the detected changes. The since cutoff is
// ignored here: change detection compares against each search's own
// baseline, not against a time window. A search that fails to evaluate is
// logged and skipped; it neither emits an event nor advances its baseline.
func (s *Source) Notifications(
	ctx context.Context,
	user model.User,
	_ time.Time,
) ([]model.Notification, error) {
	searches, err := s.store.ListSavedSearches(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("listing saved searches for %s: %w", user.ID, err)
	}

	var changes []model.SearchChange
	for _, saved := range searches {
		change, err := s.differ.Evaluate(ctx, saved)
		if err != nil {
			switch {
			case search.IsQueryRejected(err):
				slog.Error("saved search query rejected",
					"search", saved.ID, "user", user.ID, "error", err)
			case search.IsBackendError(err):
				slog.Error("saved search backend error",
					"search", saved.ID, "user", user.ID, "error", err)
			default:
				slog.Error("saved search evaluation failed",
					"search", saved.ID, "user", user.ID, "error", err)
			}
			continue
		}
		if change != nil {
			changes = append(changes, *change)
		}
	}

	return s.composer.ComposeSearchChanges(user, changes)
}
