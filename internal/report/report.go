// Package report builds the markdown summary of a pipeline run: counts,
// per-site outcomes, and every kept and ignored article with the explanation
// behind its verdict. Reports are stored in the database and rendered by the
// review server.
package report

import (
	"fmt"
	"strings"

	"jobradar/internal/database"
)

// SiteResult summarizes one source's outcome within a run.
type SiteResult struct {
	Name  string
	Found int
	Kept  int
	Err   string // empty on success
}

// ArticleEntry is one classified article in the report.
type ArticleEntry struct {
	Title         string
	URL           string
	PublishedDate string
	Explanation   string
	Source        string // which signal decided: feedback, model, keyword, ai
}

// Run is everything a report needs about a finished pipeline run.
type Run struct {
	Date       string // YYYY-MM-DD
	Sites      []SiteResult
	Kept       []ArticleEntry
	Ignored    []ArticleEntry
	Considered int
	Duplicates int
	Failures   int
}

// Build renders the run as markdown.
func Build(run Run) string {
	var sections []string

	sections = append(sections, fmt.Sprintf("# Run Report - %s", run.Date))

	summary := []string{
		fmt.Sprintf("- Sites attempted: %d", len(run.Sites)),
		fmt.Sprintf("- Articles considered: %d", run.Considered),
		fmt.Sprintf("- Kept: %d", len(run.Kept)),
		fmt.Sprintf("- Ignored: %d", len(run.Ignored)),
		fmt.Sprintf("- Duplicates skipped: %d", run.Duplicates),
		fmt.Sprintf("- Fetch failures: %d", run.Failures),
	}
	sections = append(sections, "## Summary\n\n"+strings.Join(summary, "\n"))

	if len(run.Sites) > 0 {
		var lines []string
		for _, s := range run.Sites {
			line := fmt.Sprintf("- %s: %d found, %d kept", s.Name, s.Found, s.Kept)
			if s.Err != "" {
				line = fmt.Sprintf("- %s: FAILED (%s)", s.Name, s.Err)
			}
			lines = append(lines, line)
		}
		sections = append(sections, "## Sites\n\n"+strings.Join(lines, "\n"))
	}

	sections = append(sections, articleSection("Kept Articles", run.Kept,
		"No articles were kept this run."))
	sections = append(sections, articleSection("Ignored Articles", run.Ignored,
		"No articles were ignored this run."))

	sections = append(sections,
		"To correct any of these verdicts, use the review UI or `jobradar feedback`.")

	return strings.Join(sections, "\n\n")
}

func articleSection(heading string, entries []ArticleEntry, emptyNote string) string {
	if len(entries) == 0 {
		return fmt.Sprintf("## %s\n\n%s", heading, emptyNote)
	}

	var lines []string
	for _, e := range entries {
		line := fmt.Sprintf("- [%s](%s)", e.Title, e.URL)
		if e.PublishedDate != "" {
			line += fmt.Sprintf(" (%s)", e.PublishedDate)
		}
		if e.Explanation != "" {
			line += fmt.Sprintf("\n  - %s [%s]", e.Explanation, e.Source)
		}
		lines = append(lines, line)
	}
	return fmt.Sprintf("## %s\n\n%s", heading, strings.Join(lines, "\n"))
}

// Save builds the markdown and stores it, returning the report ID.
func Save(db *database.DB, run Run) (int64, error) {
	body := Build(run)
	return db.InsertRunReport(run.Date, body, len(run.Sites), run.Considered, len(run.Kept))
}
