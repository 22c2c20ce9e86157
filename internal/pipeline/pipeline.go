// Package pipeline runs the end-to-end article flow for one run: URL
// hygiene, date floor, dedup, content fetch, relevance decision, optional AI
// enrichment, persistence, and the run report. Candidates are processed
// strictly in input order on a single goroutine; the dedup seen set and the
// decider are only touched from that loop.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"jobradar/internal/collect"
	"jobradar/internal/database"
	"jobradar/internal/decide"
	"jobradar/internal/dedup"
	"jobradar/internal/fingerprint"
	"jobradar/internal/report"
)

// Fetcher retrieves full article text for a URL. An empty string with nil
// error means no usable text was extracted.
type Fetcher interface {
	Fetch(url string) (string, error)
}

// Enricher is the optional AI post-processing applied to kept articles.
type Enricher interface {
	Summarize(ctx context.Context, content string) (string, error)
	CorrectGrammar(ctx context.Context, title string) (string, error)
}

// Options control one pipeline run.
type Options struct {
	Limit         int    // max fetch attempts per source, 0 = unlimited
	MinDate       string // YYYY-MM-DD floor; older dated candidates are skipped
	DryRun        bool   // decide but persist nothing
	DelayMin      time.Duration
	DelayMax      time.Duration
	EnableSummary bool
	EnableGrammar bool
}

// Result holds the counters of a finished run.
type Result struct {
	Considered    int
	Skipped       int // hygiene, date floor, or per-site limit
	Duplicates    int
	FetchFailures int
	Kept          int
	Ignored       int
	Report        report.Run
}

// Pipeline processes candidates for a single run.
type Pipeline struct {
	db       *database.DB
	fetcher  Fetcher
	decider  *decide.Decider
	enricher Enricher
	opts     Options
}

// New creates a pipeline. The enricher may be nil; enrichment is skipped.
func New(db *database.DB, fetcher Fetcher, decider *decide.Decider, enricher Enricher, opts Options) *Pipeline {
	return &Pipeline{db: db, fetcher: fetcher, decider: decider, enricher: enricher, opts: opts}
}

// Run processes every candidate in order and returns the run counters. The
// dedup index is snapshotted from the database once, at the start; articles
// stored by other means during the run are not seen.
func (p *Pipeline) Run(ctx context.Context, candidates []collect.Candidate) (*Result, error) {
	urls, fingerprints, err := p.db.LoadExistingIndex()
	if err != nil {
		return nil, fmt.Errorf("loading dedup index: %w", err)
	}
	index := dedup.NewIndex(urls, fingerprints)
	seen := dedup.NewSeenSet()

	result := &Result{Considered: len(candidates)}
	result.Report.Date = time.Now().Format("2006-01-02")
	attempts := make(map[string]int)
	siteFound := make(map[string]int)
	siteKept := make(map[string]int)
	var siteOrder []string

	for i, candidate := range candidates {
		if i > 0 {
			p.delay()
		}

		site := candidate.Source
		if _, known := siteFound[site]; !known {
			siteOrder = append(siteOrder, site)
		}
		siteFound[site]++

		cleaned, ok := CleanURL(candidate.URL)
		if !ok {
			result.Skipped++
			continue
		}
		candidate.URL = cleaned

		if p.opts.MinDate != "" && candidate.PublishedDate != "" && candidate.PublishedDate < p.opts.MinDate {
			result.Skipped++
			continue
		}

		if dedup.IsDuplicateURL(candidate.URL, index, seen) {
			result.Duplicates++
			continue
		}

		// The limit caps fetch attempts, so failed fetches still count
		// against a site's budget.
		if p.opts.Limit > 0 && attempts[site] >= p.opts.Limit {
			result.Skipped++
			continue
		}
		attempts[site]++

		content, err := p.fetcher.Fetch(candidate.URL)
		if err != nil {
			result.FetchFailures++
			log.Printf("Skipping %s: %v", candidate.URL, err)
			continue
		}
		if content == "" {
			// Fall back to the feed excerpt rather than judging nothing.
			content = candidate.Content
		}

		if dedup.IsDuplicateContent(content, index, seen) {
			result.Duplicates++
			continue
		}

		// Novel: claim the URL and fingerprint before any relevance work, so
		// an identical candidate later in this run is a duplicate regardless
		// of how this one is decided.
		fp := fingerprint.Fingerprint(content)
		seen.MarkURL(candidate.URL)
		if fp != "" {
			seen.MarkFingerprint(fp)
		}

		decision := p.decider.Decide(ctx, candidate.URL, candidate.Title, content)

		entry := report.ArticleEntry{
			Title:         candidate.Title,
			URL:           candidate.URL,
			PublishedDate: candidate.PublishedDate,
			Explanation:   decision.Explanation,
			Source:        string(decision.Source),
		}
		if decision.Relevant {
			result.Kept++
			siteKept[site]++
			result.Report.Kept = append(result.Report.Kept, entry)
		} else {
			result.Ignored++
			result.Report.Ignored = append(result.Report.Ignored, entry)
		}

		if p.opts.DryRun {
			continue
		}

		if err := p.persist(ctx, candidate, content, fp, decision); err != nil {
			log.Printf("Failed to save %s: %v", candidate.URL, err)
		}
	}

	result.Report.Considered = result.Considered
	result.Report.Duplicates = result.Duplicates
	result.Report.Failures = result.FetchFailures
	for _, site := range siteOrder {
		result.Report.Sites = append(result.Report.Sites, report.SiteResult{
			Name:  site,
			Found: siteFound[site],
			Kept:  siteKept[site],
		})
	}

	log.Printf("Run complete: %d considered, %d kept, %d ignored, %d duplicates, %d failed",
		result.Considered, result.Kept, result.Ignored, result.Duplicates, result.FetchFailures)
	return result, nil
}

func (p *Pipeline) persist(ctx context.Context, candidate collect.Candidate, content, fp string, decision decide.Result) error {
	title := candidate.Title
	var summary *string

	if p.enricher != nil && decision.Relevant {
		if p.opts.EnableGrammar {
			if corrected, err := p.enricher.CorrectGrammar(ctx, title); err == nil && corrected != "" {
				title = corrected
			} else if err != nil {
				log.Printf("Grammar correction failed for %s: %v", candidate.URL, err)
			}
		}
		if p.opts.EnableSummary {
			if s, err := p.enricher.Summarize(ctx, content); err == nil && s != "" {
				summary = &s
			} else if err != nil {
				log.Printf("Summary failed for %s: %v", candidate.URL, err)
			}
		}
	}

	source := string(decision.Source)
	article := database.Article{
		URL:             candidate.URL,
		Title:           title,
		Source:          optional(candidate.Source),
		SourceURL:       optional(candidate.SourceURL),
		PublishedDate:   optional(candidate.PublishedDate),
		Content:         optional(content),
		Fingerprint:     optional(fp),
		Summary:         summary,
		Relevant:        decision.Relevant,
		RelevanceReason: &decision.Explanation,
		DecisionSource:  &source,
	}
	_, err := p.db.SaveArticle(article)
	return err
}

// CleanURL normalizes a candidate URL and reports whether it points at an
// article rather than a listing page. Trailing slashes are trimmed so
// "/story" and "/story/" dedup as one URL.
func CleanURL(rawURL string) (string, bool) {
	trimmed := strings.TrimRight(rawURL, "/")
	if trimmed == "" {
		return "", false
	}
	for _, segment := range []string{"/category/", "/tag/", "/author/"} {
		if strings.Contains(trimmed+"/", segment) {
			return "", false
		}
	}
	return trimmed, true
}

func (p *Pipeline) delay() {
	if p.opts.DelayMax <= 0 {
		return
	}
	d := p.opts.DelayMin
	if p.opts.DelayMax > p.opts.DelayMin {
		d += time.Duration(rand.Int63n(int64(p.opts.DelayMax - p.opts.DelayMin)))
	}
	time.Sleep(d)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
