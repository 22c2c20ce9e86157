package database

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestFreshDatabaseAtLatestVersion(t *testing.T) {
	db := openTestDB(t)

	var version int
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("reading version: %v", err)
	}
	if version != latestVersion() {
		t.Errorf("expected version %d, got %d", latestVersion(), version)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	db.SaveArticle(testArticle("https://example.com/keep"))
	db.Close()

	// Reopening re-runs migrate; data must survive.
	db, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer db.Close()

	a, err := db.GetArticleByURL("https://example.com/keep")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == nil {
		t.Error("expected article to survive reopen")
	}
}

func TestLegacyDatabaseStamped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	// Simulate a pre-migration database: articles table, user_version 0.
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening raw db: %v", err)
	}
	if _, err := conn.Exec(`CREATE TABLE articles (id INTEGER PRIMARY KEY, url TEXT UNIQUE NOT NULL, title TEXT NOT NULL)`); err != nil {
		t.Fatalf("creating legacy table: %v", err)
	}
	conn.Close()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("opening legacy db: %v", err)
	}
	defer db.Close()

	var version int
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("reading version: %v", err)
	}
	if version < 1 {
		t.Errorf("expected legacy db stamped to at least version 1, got %d", version)
	}
}
