package database

import (
	"database/sql"
)

const articleColumns = `id, url, title, source, source_url, published_date,
	content, fingerprint, summary, relevant, relevance_reason, decision_source, scraped_at`

// SaveArticle inserts an article with its relevance decision.
// Returns the ID on success, 0 if the URL is already stored.
func (db *DB) SaveArticle(a Article) (int64, error) {
	relevant := 0
	if a.Relevant {
		relevant = 1
	}
	result, err := db.conn.Exec(
		`INSERT INTO articles (url, title, source, source_url, published_date,
		content, fingerprint, summary, relevant, relevance_reason, decision_source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.URL, a.Title, a.Source, a.SourceURL, a.PublishedDate,
		a.Content, a.Fingerprint, a.Summary, relevant, a.RelevanceReason, a.DecisionSource,
	)
	if err != nil {
		// Duplicate URL constraint
		return 0, nil //nolint: nilerr
	}
	return result.LastInsertId()
}

// GetRecentArticles returns the most recently scraped articles.
func (db *DB) GetRecentArticles(limit int) ([]Article, error) {
	rows, err := db.conn.Query(
		`SELECT `+articleColumns+` FROM articles ORDER BY scraped_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// GetArticleByID returns a single article by ID, or nil if not found.
func (db *DB) GetArticleByID(articleID int64) (*Article, error) {
	row := db.conn.QueryRow(
		`SELECT `+articleColumns+` FROM articles WHERE id = ?`, articleID,
	)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetArticleByURL returns a single article by URL, or nil if not found.
func (db *DB) GetArticleByURL(url string) (*Article, error) {
	row := db.conn.QueryRow(
		`SELECT `+articleColumns+` FROM articles WHERE url = ?`, url,
	)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// LoadExistingIndex returns every stored URL and non-empty content
// fingerprint, for the per-run dedup snapshot.
func (db *DB) LoadExistingIndex() (urls, fingerprints []string, err error) {
	rows, err := db.conn.Query(`SELECT url, fingerprint FROM articles`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		var fp *string
		if err := rows.Scan(&url, &fp); err != nil {
			return nil, nil, err
		}
		urls = append(urls, url)
		if fp != nil && *fp != "" {
			fingerprints = append(fingerprints, *fp)
		}
	}
	return urls, fingerprints, rows.Err()
}

// SampleRecentRelevant returns up to n recently stored relevant articles,
// newest first, as the adaptive model's training sample.
func (db *DB) SampleRecentRelevant(n int) ([]Article, error) {
	rows, err := db.conn.Query(
		`SELECT `+articleColumns+` FROM articles
		WHERE relevant = 1 ORDER BY scraped_at DESC, id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// UpdateArticleSummary attaches a generated summary to a stored article.
func (db *DB) UpdateArticleSummary(articleID int64, summary string) error {
	_, err := db.conn.Exec("UPDATE articles SET summary = ? WHERE id = ?", summary, articleID)
	return err
}

func scanArticles(rows *sql.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		var a Article
		var relevant int
		if err := rows.Scan(&a.ID, &a.URL, &a.Title, &a.Source, &a.SourceURL,
			&a.PublishedDate, &a.Content, &a.Fingerprint, &a.Summary,
			&relevant, &a.RelevanceReason, &a.DecisionSource, &a.ScrapedAt); err != nil {
			return nil, err
		}
		a.Relevant = relevant != 0
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func scanArticle(row *sql.Row) (*Article, error) {
	var a Article
	var relevant int
	if err := row.Scan(&a.ID, &a.URL, &a.Title, &a.Source, &a.SourceURL,
		&a.PublishedDate, &a.Content, &a.Fingerprint, &a.Summary,
		&relevant, &a.RelevanceReason, &a.DecisionSource, &a.ScrapedAt); err != nil {
		return nil, err
	}
	a.Relevant = relevant != 0
	return &a, nil
}
