package database

import "database/sql"

// InsertRunReport stores the markdown report for a pipeline run.
func (db *DB) InsertRunReport(runDate, bodyMarkdown string, sitesAttempted, considered, kept int) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO run_reports (run_date, body_markdown, sites_attempted, articles_considered, articles_kept)
		VALUES (?, ?, ?, ?, ?)`,
		runDate, bodyMarkdown, sitesAttempted, considered, kept,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetRunReport returns a single run report by ID, or nil if not found.
func (db *DB) GetRunReport(reportID int64) (*RunReport, error) {
	row := db.conn.QueryRow(
		`SELECT id, run_date, body_markdown, sites_attempted, articles_considered, articles_kept, generated_at
		FROM run_reports WHERE id = ?`, reportID,
	)
	var r RunReport
	if err := row.Scan(&r.ID, &r.RunDate, &r.BodyMarkdown, &r.SitesAttempted,
		&r.ArticlesConsidered, &r.ArticlesKept, &r.GeneratedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// GetAllRunReports returns all run reports, newest first.
func (db *DB) GetAllRunReports() ([]RunReport, error) {
	rows, err := db.conn.Query(
		`SELECT id, run_date, body_markdown, sites_attempted, articles_considered, articles_kept, generated_at
		FROM run_reports ORDER BY id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []RunReport
	for rows.Next() {
		var r RunReport
		if err := rows.Scan(&r.ID, &r.RunDate, &r.BodyMarkdown, &r.SitesAttempted,
			&r.ArticlesConsidered, &r.ArticlesKept, &r.GeneratedAt); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// GetLastRunDate returns the date of the most recent run, or "" if none.
func (db *DB) GetLastRunDate() (string, error) {
	row := db.conn.QueryRow(`SELECT run_date FROM run_reports ORDER BY id DESC LIMIT 1`)
	var date string
	if err := row.Scan(&date); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return date, nil
}

// GetStats returns aggregate database statistics.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM articles", &stats.TotalArticles},
		{"SELECT COUNT(*) FROM articles WHERE relevant = 1", &stats.RelevantArticles},
		{"SELECT COUNT(*) FROM feedback_urls WHERE verdict = 'include'", &stats.IncludedURLs},
		{"SELECT COUNT(*) FROM feedback_urls WHERE verdict = 'exclude'", &stats.ExcludedURLs},
		{"SELECT COUNT(*) FROM feedback_keywords WHERE action = 'add'", &stats.AddedKeywords},
		{"SELECT COUNT(*) FROM feedback_keywords WHERE action = 'remove'", &stats.RemovedKeywords},
		{"SELECT COUNT(*) FROM run_reports", &stats.RunReports},
	}
	for _, c := range counts {
		if err := db.conn.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	artifact, err := db.LoadModelArtifact()
	if err != nil {
		return nil, err
	}
	if artifact != nil {
		stats.ModelSampleSize = artifact.SampleSize
		if artifact.TrainedAt != nil {
			stats.ModelTrainedAt = *artifact.TrainedAt
		}
	}

	return stats, nil
}
