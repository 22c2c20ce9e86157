// Package dedup decides whether a candidate article has already been seen,
// either in the persistent store or earlier in the same run.
package dedup

import "jobradar/internal/fingerprint"

// Index is a read-only snapshot of known article URLs and content
// fingerprints, loaded once per run from the store. It is never mutated
// mid-run; in-run duplicates are caught by a SeenSet instead.
type Index struct {
	URLs         map[string]struct{}
	Fingerprints map[string]struct{}
}

// NewIndex builds an Index from URL and fingerprint lists.
func NewIndex(urls, fingerprints []string) *Index {
	idx := &Index{
		URLs:         make(map[string]struct{}, len(urls)),
		Fingerprints: make(map[string]struct{}, len(fingerprints)),
	}
	for _, u := range urls {
		idx.URLs[u] = struct{}{}
	}
	for _, fp := range fingerprints {
		if fp != "" {
			idx.Fingerprints[fp] = struct{}{}
		}
	}
	return idx
}

// SeenSet tracks URLs and fingerprints encountered during the current run,
// so two near-simultaneous duplicates in one batch don't both pass.
type SeenSet struct {
	urls         map[string]struct{}
	fingerprints map[string]struct{}
}

// NewSeenSet creates an empty SeenSet.
func NewSeenSet() *SeenSet {
	return &SeenSet{
		urls:         make(map[string]struct{}),
		fingerprints: make(map[string]struct{}),
	}
}

// MarkURL records a URL as processed this run.
func (s *SeenSet) MarkURL(url string) {
	s.urls[url] = struct{}{}
}

// MarkFingerprint records a content fingerprint as processed this run.
func (s *SeenSet) MarkFingerprint(fp string) {
	if fp != "" {
		s.fingerprints[fp] = struct{}{}
	}
}

// IsDuplicateURL reports whether the URL is already known, either persisted
// or seen earlier this run. URL checks are free and run before content fetch.
func IsDuplicateURL(url string, index *Index, seen *SeenSet) bool {
	if _, ok := index.URLs[url]; ok {
		return true
	}
	_, ok := seen.urls[url]
	return ok
}

// IsDuplicateContent reports whether the content's fingerprint is already
// known. Runs after fetch, before the relevance decision: dedup is cheaper
// than relevance scoring, so it always goes first.
func IsDuplicateContent(content string, index *Index, seen *SeenSet) bool {
	fp := fingerprint.Fingerprint(content)
	if fp == "" {
		return false
	}
	if _, ok := index.Fingerprints[fp]; ok {
		return true
	}
	_, ok := seen.fingerprints[fp]
	return ok
}
