package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/opencatalog/catalog-notifier/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection, primarily for tests.
func (s *SQLiteStore) DB() *sqlx.DB {
	return s.db
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertUser inserts or updates a user in place and ensures a dashboard row
// exists. Updating an existing user leaves their dashboard, saved searches,
// and activity stream untouched.
// If the user has no ID, a new UUID is generated.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user model.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	// INSERT OR REPLACE would delete-and-reinsert on conflict, which
	// cascades into dashboards, saved_searches, and activities.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, name, display_name, email, activity_streams_email_notifications
		) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			display_name = excluded.display_name,
			email = excluded.email,
			activity_streams_email_notifications = excluded.activity_streams_email_notifications`,
		user.ID, user.Name, user.DisplayName, user.Email,
		boolToInt(user.ActivityStreamsEmailNotifications),
	)
	if err != nil {
		return fmt.Errorf("upserting user %s: %w", user.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO dashboards (
			user_id, email_last_sent, activity_stream_last_viewed
		) VALUES (?, ?, ?)`,
		user.ID, time.Time{}.UTC(), time.Time{}.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating dashboard for user %s: %w", user.ID, err)
	}

	return nil
}

// GetUsers retrieves all users ordered by name.
func (s *SQLiteStore) GetUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM users ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// GetUserByID retrieves a single user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM users WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("querying user %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("querying user %s: %w", id, err)
		}
		return nil, fmt.Errorf("getting user %s: %w", id, ErrNotFound)
	}

	user, err := scanUser(rows)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetDashboard retrieves the dashboard state for a user.
func (s *SQLiteStore) GetDashboard(ctx context.Context, userID string) (*model.Dashboard, error) {
	var (
		dash       model.Dashboard
		lastSent   time.Time
		lastViewed time.Time
	)

	row := s.db.QueryRowxContext(ctx,
		"SELECT user_id, email_last_sent, activity_stream_last_viewed FROM dashboards WHERE user_id = ?",
		userID,
	)
	if err := row.Scan(&dash.UserID, &lastSent, &lastViewed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("getting dashboard for %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("getting dashboard for %s: %w", userID, err)
	}

	dash.EmailLastSent = lastSent
	dash.ActivityStreamLastViewed = lastViewed
	return &dash, nil
}

// SetActivityStreamLastViewed records when the user last viewed their
// dashboard activity stream.
func (s *SQLiteStore) SetActivityStreamLastViewed(
	ctx context.Context, userID string, viewed time.Time,
) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE dashboards SET activity_stream_last_viewed = ? WHERE user_id = ?",
		viewed.UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("updating activity_stream_last_viewed for %s: %w", userID, err)
	}
	return nil
}

// SetEmailLastSent records when a notification run last attempted email
// delivery for the user.
func (s *SQLiteStore) SetEmailLastSent(
	ctx context.Context, userID string, sent time.Time,
) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE dashboards SET email_last_sent = ? WHERE user_id = ?",
		sent.UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("updating email_last_sent for %s: %w", userID, err)
	}
	return nil
}

// CreateSavedSearch inserts a saved search. If the search has no ID, a new
// UUID is generated.
func (s *SQLiteStore) CreateSavedSearch(ctx context.Context, search model.SavedSearch) error {
	if search.ID == "" {
		search.ID = uuid.New().String()
	}

	lastResults, err := json.Marshal(search.LastResults)
	if err != nil {
		return fmt.Errorf("marshaling last_results for search %s: %w", search.ID, err)
	}

	var lastRun interface{}
	if search.LastRun != nil {
		lastRun = search.LastRun.UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saved_searches (id, owner_id, search_string, last_run, last_results)
		VALUES (?, ?, ?, ?, ?)`,
		search.ID, search.OwnerID, search.SearchString, lastRun, string(lastResults),
	)
	if err != nil {
		return fmt.Errorf("creating saved search %s: %w", search.ID, err)
	}

	return nil
}

// ListSavedSearches retrieves all saved searches owned by a user.
func (s *SQLiteStore) ListSavedSearches(
	ctx context.Context, ownerID string,
) ([]model.SavedSearch, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM saved_searches WHERE owner_id = ? ORDER BY id", ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying saved searches for %s: %w", ownerID, err)
	}
	defer rows.Close()

	var searches []model.SavedSearch
	for rows.Next() {
		search, err := scanSavedSearch(rows)
		if err != nil {
			return nil, err
		}
		searches = append(searches, search)
	}

	return searches, rows.Err()
}

// DeleteSavedSearch removes a saved search by ID.
func (s *SQLiteStore) DeleteSavedSearch(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM saved_searches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting saved search %s: %w", id, err)
	}
	return nil
}

// UpdateSavedSearchBaseline records a successful evaluation. The id set and
// run timestamp are written in one UPDATE so a partial baseline is never
// observable.
func (s *SQLiteStore) UpdateSavedSearchBaseline(
	ctx context.Context,
	id string,
	resultIDs []string,
	lastRun time.Time,
) error {
	lastResults, err := json.Marshal(resultIDs)
	if err != nil {
		return fmt.Errorf("marshaling last_results for search %s: %w", id, err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE saved_searches SET last_results = ?, last_run = ? WHERE id = ?",
		string(lastResults), lastRun.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating baseline for search %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating baseline for search %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("updating baseline for search %s: %w", id, ErrNotFound)
	}

	return nil
}

// CreateActivity appends an activity to a user's dashboard stream.
func (s *SQLiteStore) CreateActivity(
	ctx context.Context, streamUserID string, activity model.Activity,
) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}

	data, err := json.Marshal(activity.Data)
	if err != nil {
		return fmt.Errorf("marshaling activity data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO activities (id, stream_user_id, user_id, type, timestamp, data)
		VALUES (?, ?, ?, ?, ?, ?)`,
		activity.ID, streamUserID, activity.UserID, activity.Type,
		activity.Timestamp.UTC(), string(data),
	)
	if err != nil {
		return fmt.Errorf("creating activity %s: %w", activity.ID, err)
	}

	return nil
}

// DashboardActivity retrieves the activities on a user's dashboard stream,
// newest first.
func (s *SQLiteStore) DashboardActivity(
	ctx context.Context, userID string,
) ([]model.Activity, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, user_id, type, timestamp, data
		FROM activities WHERE stream_user_id = ?
		ORDER BY timestamp DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying dashboard activity for %s: %w", userID, err)
	}
	defer rows.Close()

	var activities []model.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}

	return activities, rows.Err()
}

// scanUser scans a user row from a sqlx.Rows result set.
func scanUser(rows *sqlx.Rows) (model.User, error) {
	var (
		user    model.User
		optedIn int
	)

	err := rows.Scan(
		&user.ID, &user.Name, &user.DisplayName, &user.Email, &optedIn,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("scanning user row: %w", err)
	}

	user.ActivityStreamsEmailNotifications = optedIn != 0
	return user, nil
}

// scanSavedSearch scans a saved-search row from a sqlx.Rows result set.
func scanSavedSearch(rows *sqlx.Rows) (model.SavedSearch, error) {
	var (
		search      model.SavedSearch
		lastRun     sql.NullTime
		lastResults string
	)

	err := rows.Scan(
		&search.ID, &search.OwnerID, &search.SearchString,
		&lastRun, &lastResults,
	)
	if err != nil {
		return model.SavedSearch{}, fmt.Errorf("scanning saved search row: %w", err)
	}

	if lastRun.Valid {
		t := lastRun.Time
		search.LastRun = &t
	}

	if lastResults != "" {
		if err := json.Unmarshal([]byte(lastResults), &search.LastResults); err != nil {
			return model.SavedSearch{}, fmt.Errorf("unmarshaling last_results: %w", err)
		}
	}

	return search, nil
}

// scanActivity scans an activity row from a sqlx.Rows result set.
func scanActivity(rows *sqlx.Rows) (model.Activity, error) {
	var (
		activity  model.Activity
		timestamp time.Time
		data      string
	)

	err := rows.Scan(
		&activity.ID, &activity.UserID, &activity.Type, &timestamp, &data,
	)
	if err != nil {
		return model.Activity{}, fmt.Errorf("scanning activity row: %w", err)
	}

	activity.Timestamp = timestamp

	if data != "" {
		if err := json.Unmarshal([]byte(data), &activity.Data); err != nil {
			return model.Activity{}, fmt.Errorf("unmarshaling activity data: %w", err)
		}
	}

	return activity, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
