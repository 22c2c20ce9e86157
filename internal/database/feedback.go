package database

// URL feedback verdicts and keyword actions. The PRIMARY KEY on url/keyword
// plus INSERT OR REPLACE gives the mutual-exclusion invariant for free: a URL
// carries exactly one verdict, a keyword exactly one action.

// SetURLVerdict records an explicit include/exclude decision for a URL,
// replacing any previous verdict.
func (db *DB) SetURLVerdict(url, verdict string) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO feedback_urls (url, verdict) VALUES (?, ?)`,
		url, verdict,
	)
	return err
}

// DeleteURLVerdict removes feedback for a URL (toggle off).
func (db *DB) DeleteURLVerdict(url string) error {
	_, err := db.conn.Exec(`DELETE FROM feedback_urls WHERE url = ?`, url)
	return err
}

// GetURLVerdict returns "include", "exclude", or "" for a URL.
func (db *DB) GetURLVerdict(url string) (string, error) {
	rows, err := db.conn.Query(`SELECT verdict FROM feedback_urls WHERE url = ?`, url)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	if rows.Next() {
		var verdict string
		if err := rows.Scan(&verdict); err != nil {
			return "", err
		}
		return verdict, rows.Err()
	}
	return "", rows.Err()
}

// SetKeywordAction records an add/remove adjustment for a keyword,
// replacing any previous action.
func (db *DB) SetKeywordAction(keyword, action string) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO feedback_keywords (keyword, action) VALUES (?, ?)`,
		keyword, action,
	)
	return err
}

// DeleteKeywordAction removes the adjustment for a keyword.
func (db *DB) DeleteKeywordAction(keyword string) error {
	_, err := db.conn.Exec(`DELETE FROM feedback_keywords WHERE keyword = ?`, keyword)
	return err
}

// LoadFeedbackRecord reads all URL verdicts and keyword adjustments.
func (db *DB) LoadFeedbackRecord() (*FeedbackRecord, error) {
	record := &FeedbackRecord{}

	urlRows, err := db.conn.Query(`SELECT url, verdict FROM feedback_urls ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer urlRows.Close()

	for urlRows.Next() {
		var url, verdict string
		if err := urlRows.Scan(&url, &verdict); err != nil {
			return nil, err
		}
		if verdict == "include" {
			record.IncludedURLs = append(record.IncludedURLs, url)
		} else {
			record.ExcludedURLs = append(record.ExcludedURLs, url)
		}
	}
	if err := urlRows.Err(); err != nil {
		return nil, err
	}

	kwRows, err := db.conn.Query(`SELECT keyword, action FROM feedback_keywords ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer kwRows.Close()

	for kwRows.Next() {
		var keyword, action string
		if err := kwRows.Scan(&keyword, &action); err != nil {
			return nil, err
		}
		if action == "add" {
			record.AddedKeywords = append(record.AddedKeywords, keyword)
		} else {
			record.RemovedKeywords = append(record.RemovedKeywords, keyword)
		}
	}
	return record, kwRows.Err()
}
