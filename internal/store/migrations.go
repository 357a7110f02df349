package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL DEFAULT '',
	display_name  TEXT NOT NULL DEFAULT '',
	email         TEXT NOT NULL DEFAULT '',
	activity_streams_email_notifications INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS dashboards (
	user_id                     TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	email_last_sent             DATETIME NOT NULL,
	activity_stream_last_viewed DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS saved_searches (
	id            TEXT PRIMARY KEY,
	owner_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	search_string TEXT NOT NULL DEFAULT '',
	last_run      DATETIME,
	last_results  TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS activities (
	id             TEXT NOT NULL,
	stream_user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	user_id        TEXT NOT NULL,
	type           TEXT NOT NULL DEFAULT '',
	timestamp      DATETIME NOT NULL,
	data           TEXT NOT NULL DEFAULT '{}',
	PRIMARY KEY (stream_user_id, id)
);

CREATE INDEX IF NOT EXISTS idx_saved_searches_owner ON saved_searches(owner_id);
CREATE INDEX IF NOT EXISTS idx_activities_stream ON activities(stream_user_id, timestamp);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
