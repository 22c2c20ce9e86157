// Package feedback manages human corrections: explicit include/exclude
// verdicts by URL and keyword adjustments. Feedback always outranks every
// automated signal, and its absence must never block the pipeline.
package feedback

import (
	"log"
	"strings"

	"jobradar/internal/database"
)

// Feedback is an in-memory view of the stored corrections.
type Feedback struct {
	includedURLs    map[string]struct{}
	excludedURLs    map[string]struct{}
	AddedKeywords   []string
	RemovedKeywords []string
}

// Empty returns a valid feedback record with no corrections.
func Empty() *Feedback {
	return New(nil, nil, nil, nil)
}

// New builds an in-memory feedback record from explicit lists.
func New(includedURLs, excludedURLs, addedKeywords, removedKeywords []string) *Feedback {
	f := &Feedback{
		includedURLs:    make(map[string]struct{}, len(includedURLs)),
		excludedURLs:    make(map[string]struct{}, len(excludedURLs)),
		AddedKeywords:   addedKeywords,
		RemovedKeywords: removedKeywords,
	}
	for _, url := range includedURLs {
		f.includedURLs[url] = struct{}{}
	}
	for _, url := range excludedURLs {
		f.excludedURLs[url] = struct{}{}
	}
	return f
}

// IsIncluded reports whether the URL was explicitly marked relevant.
func (f *Feedback) IsIncluded(url string) bool {
	_, ok := f.includedURLs[url]
	return ok
}

// IsExcluded reports whether the URL was explicitly marked irrelevant.
func (f *Feedback) IsExcluded(url string) bool {
	_, ok := f.excludedURLs[url]
	return ok
}

// IncludedCount returns the number of explicitly included URLs.
func (f *Feedback) IncludedCount() int { return len(f.includedURLs) }

// ExcludedCount returns the number of explicitly excluded URLs.
func (f *Feedback) ExcludedCount() int { return len(f.excludedURLs) }

// Store loads and mutates feedback backed by the database. Load is cached;
// mutations write through and refresh the cache on next load.
type Store struct {
	db     *database.DB
	cached *Feedback
}

// NewStore creates a feedback store over the database.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// Load returns the current feedback. Safe to call repeatedly; the first
// successful load is cached for the rest of the run. A failed load returns
// empty-but-valid feedback so classification can proceed without it.
func (s *Store) Load() *Feedback {
	if s.cached != nil {
		return s.cached
	}

	record, err := s.db.LoadFeedbackRecord()
	if err != nil {
		log.Printf("Error loading feedback, continuing without: %v", err)
		return Empty()
	}

	f := New(record.IncludedURLs, record.ExcludedURLs, record.AddedKeywords, record.RemovedKeywords)
	s.cached = f
	log.Printf("Loaded feedback: %d included, %d excluded URLs, %d/%d keyword adjustments",
		f.IncludedCount(), f.ExcludedCount(), len(f.AddedKeywords), len(f.RemovedKeywords))
	return f
}

// Include marks a URL as explicitly relevant. Any prior exclude verdict for
// the URL is replaced, never kept alongside.
func (s *Store) Include(url string) error {
	s.cached = nil
	return s.db.SetURLVerdict(url, "include")
}

// Exclude marks a URL as explicitly irrelevant, replacing any include verdict.
func (s *Store) Exclude(url string) error {
	s.cached = nil
	return s.db.SetURLVerdict(url, "exclude")
}

// ClearURL removes any verdict for the URL.
func (s *Store) ClearURL(url string) error {
	s.cached = nil
	return s.db.DeleteURLVerdict(url)
}

// AddKeyword adds a keyword to relevance detection, replacing any removal.
func (s *Store) AddKeyword(keyword string) error {
	s.cached = nil
	return s.db.SetKeywordAction(normalize(keyword), "add")
}

// RemoveKeyword removes a keyword from relevance detection, replacing any
// addition.
func (s *Store) RemoveKeyword(keyword string) error {
	s.cached = nil
	return s.db.SetKeywordAction(normalize(keyword), "remove")
}

// ClearKeyword removes any adjustment for the keyword.
func (s *Store) ClearKeyword(keyword string) error {
	s.cached = nil
	return s.db.DeleteKeywordAction(normalize(keyword))
}

func normalize(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}
