package database

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(s string) *string { return &s }

func testArticle(url string) Article {
	return Article{
		URL:             url,
		Title:           "Company breaks ground on $50 million factory",
		Source:          ptr("Local News"),
		SourceURL:       ptr("https://localnews.example.com"),
		PublishedDate:   ptr("2026-05-01"),
		Content:         ptr("Construction starts this fall and will create hundreds of jobs."),
		Fingerprint:     ptr("construction starts this fall and will create hundreds of jobs."),
		Relevant:        true,
		RelevanceReason: ptr("Relevant by keyword matching"),
		DecisionSource:  ptr("keyword"),
	}
}

func TestSaveArticle(t *testing.T) {
	db := openTestDB(t)
	id, err := db.SaveArticle(testArticle("https://example.com/factory"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero article ID")
	}
}

func TestSaveDuplicateURL(t *testing.T) {
	db := openTestDB(t)
	db.SaveArticle(testArticle("https://example.com/dup"))
	id, err := db.SaveArticle(testArticle("https://example.com/dup"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 0 {
		t.Error("expected 0 for duplicate URL")
	}
}

func TestGetArticleByURL(t *testing.T) {
	db := openTestDB(t)
	db.SaveArticle(testArticle("https://example.com/factory"))

	a, err := db.GetArticleByURL("https://example.com/factory")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == nil {
		t.Fatal("expected article")
	}
	if !a.Relevant {
		t.Error("expected relevant flag to round-trip")
	}
	if a.RelevanceReason == nil || *a.RelevanceReason != "Relevant by keyword matching" {
		t.Error("expected relevance reason to round-trip")
	}

	missing, err := db.GetArticleByURL("https://example.com/missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown URL")
	}
}

func TestLoadExistingIndex(t *testing.T) {
	db := openTestDB(t)
	db.SaveArticle(testArticle("https://a.com/1"))

	noFP := testArticle("https://b.com/2")
	noFP.Fingerprint = nil
	db.SaveArticle(noFP)

	urls, fingerprints, err := db.LoadExistingIndex()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 2 {
		t.Errorf("expected 2 URLs, got %d", len(urls))
	}
	if len(fingerprints) != 1 {
		t.Errorf("expected 1 fingerprint (nil skipped), got %d", len(fingerprints))
	}
}

func TestSampleRecentRelevant(t *testing.T) {
	db := openTestDB(t)
	db.SaveArticle(testArticle("https://a.com/1"))
	db.SaveArticle(testArticle("https://a.com/2"))

	rejected := testArticle("https://a.com/3")
	rejected.Relevant = false
	db.SaveArticle(rejected)

	sample, err := db.SampleRecentRelevant(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sample) != 2 {
		t.Errorf("expected 2 relevant articles in sample, got %d", len(sample))
	}

	capped, _ := db.SampleRecentRelevant(1)
	if len(capped) != 1 {
		t.Errorf("expected sample capped at 1, got %d", len(capped))
	}
}

func TestURLVerdictMutualExclusion(t *testing.T) {
	db := openTestDB(t)
	url := "https://example.com/story"

	if err := db.SetURLVerdict(url, "include"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.SetURLVerdict(url, "exclude"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, err := db.LoadFeedbackRecord()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(record.IncludedURLs) != 0 {
		t.Error("expected URL to leave the included list after exclude")
	}
	if len(record.ExcludedURLs) != 1 || record.ExcludedURLs[0] != url {
		t.Errorf("expected URL in excluded list, got %v", record.ExcludedURLs)
	}
}

func TestKeywordActionMutualExclusion(t *testing.T) {
	db := openTestDB(t)

	db.SetKeywordAction("biotech", "add")
	db.SetKeywordAction("biotech", "remove")

	record, err := db.LoadFeedbackRecord()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(record.AddedKeywords) != 0 {
		t.Error("expected keyword to leave the added list after remove")
	}
	if len(record.RemovedKeywords) != 1 || record.RemovedKeywords[0] != "biotech" {
		t.Errorf("expected keyword in removed list, got %v", record.RemovedKeywords)
	}
}

func TestGetURLVerdict(t *testing.T) {
	db := openTestDB(t)
	db.SetURLVerdict("https://a.com", "include")

	verdict, err := db.GetURLVerdict("https://a.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict != "include" {
		t.Errorf("expected 'include', got %q", verdict)
	}

	verdict, _ = db.GetURLVerdict("https://unknown.com")
	if verdict != "" {
		t.Errorf("expected empty verdict, got %q", verdict)
	}

	db.DeleteURLVerdict("https://a.com")
	verdict, _ = db.GetURLVerdict("https://a.com")
	if verdict != "" {
		t.Error("expected verdict removed after delete")
	}
}

func TestModelArtifactLifecycle(t *testing.T) {
	db := openTestDB(t)

	artifact, err := db.LoadModelArtifact()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact != nil {
		t.Fatal("expected nil artifact before training")
	}

	if err := db.SaveModelArtifact(`{"top_title_tokens":["factory"]}`, 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.SaveModelArtifact(`{"top_title_tokens":["terminal"]}`, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	artifact, err = db.LoadModelArtifact()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact == nil {
		t.Fatal("expected artifact after save")
	}
	if artifact.SampleSize != 50 {
		t.Errorf("expected latest save to win, got sample size %d", artifact.SampleSize)
	}

	db.DeleteModelArtifact()
	artifact, _ = db.LoadModelArtifact()
	if artifact != nil {
		t.Error("expected nil artifact after delete")
	}
}

func TestRunReports(t *testing.T) {
	db := openTestDB(t)

	id, err := db.InsertRunReport("2026-05-01", "# Run Report\n\nAll good.", 3, 12, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := db.GetRunReport(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report == nil || report.ArticlesKept != 5 {
		t.Error("expected stored report with 5 kept articles")
	}

	db.InsertRunReport("2026-05-02", "# Run Report", 3, 8, 2)
	last, err := db.GetLastRunDate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last != "2026-05-02" {
		t.Errorf("expected last run date 2026-05-02, got %q", last)
	}

	all, _ := db.GetAllRunReports()
	if len(all) != 2 {
		t.Errorf("expected 2 reports, got %d", len(all))
	}
	if all[0].RunDate != "2026-05-02" {
		t.Error("expected newest report first")
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	db.SaveArticle(testArticle("https://a.com/1"))

	rejected := testArticle("https://a.com/2")
	rejected.Relevant = false
	db.SaveArticle(rejected)

	db.SetURLVerdict("https://a.com/1", "include")
	db.SetKeywordAction("biotech", "add")
	db.SaveModelArtifact("{}", 25)

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalArticles != 2 {
		t.Errorf("expected 2 articles, got %d", stats.TotalArticles)
	}
	if stats.RelevantArticles != 1 {
		t.Errorf("expected 1 relevant, got %d", stats.RelevantArticles)
	}
	if stats.IncludedURLs != 1 || stats.AddedKeywords != 1 {
		t.Error("expected feedback counts in stats")
	}
	if stats.ModelSampleSize != 25 {
		t.Errorf("expected model sample size 25, got %d", stats.ModelSampleSize)
	}
}
