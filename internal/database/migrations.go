package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT UNIQUE NOT NULL,
    title TEXT NOT NULL,
    source TEXT,
    source_url TEXT,
    published_date TEXT,
    content TEXT,
    fingerprint TEXT,
    summary TEXT,
    relevant INTEGER NOT NULL DEFAULT 0,
    relevance_reason TEXT,
    decision_source TEXT,
    scraped_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS feedback_urls (
    url TEXT PRIMARY KEY,
    verdict TEXT NOT NULL CHECK(verdict IN ('include', 'exclude')),
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS feedback_keywords (
    keyword TEXT PRIMARY KEY,
    action TEXT NOT NULL CHECK(action IN ('add', 'remove')),
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS model_artifact (
    id INTEGER PRIMARY KEY CHECK(id = 1),
    payload TEXT NOT NULL,
    sample_size INTEGER DEFAULT 0,
    trained_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_reports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_date TEXT NOT NULL,
    body_markdown TEXT NOT NULL,
    sites_attempted INTEGER DEFAULT 0,
    articles_considered INTEGER DEFAULT 0,
    articles_kept INTEGER DEFAULT 0,
    generated_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_articles_url ON articles(url);
CREATE INDEX IF NOT EXISTS idx_articles_fingerprint ON articles(fingerprint);
CREATE INDEX IF NOT EXISTS idx_articles_relevant ON articles(relevant);
CREATE INDEX IF NOT EXISTS idx_run_reports_date ON run_reports(run_date);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
