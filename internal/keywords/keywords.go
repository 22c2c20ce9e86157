// Package keywords implements the deterministic lexical relevance heuristic.
// It is the always-available fallback: no model, no API key, no network.
package keywords

import (
	"regexp"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// baseline is the curated set of jobs/economic-development terms, grouped by
// theme. Feedback can extend or shrink the effective set at runtime.
var baseline = []string{
	// Employment and jobs
	"job", "jobs", "employment", "unemployment", "hiring", "layoff", "layoffs",
	"workforce", "worker", "workers", "career", "careers", "labor market",
	"recruit", "recruitment", "employer", "employers", "employee", "employees",
	"wage", "wages", "salary", "salaries", "job market", "jobless", "hire",
	"work force", "remote work", "workplace", "job growth",
	"position", "staff", "talent", "personnel", "human resources",

	// Manufacturing and production
	"production", "manufacturing", "factory", "factories", "plant", "assembly",
	"industrial", "fabrication", "warehouse", "supply chain", "automation",
	"manufacturing jobs", "production line", "processing", "assembly line",

	// Business relocation and facilities
	"relocating", "relocation", "headquarters", "campus", "office space",
	"moving operations", "expanding operations", "facility", "facilities",
	"new plant", "new location", "opening location", "corporate relocation",
	"moving to", "moving from", "expansion to", "expansion into",

	// Distribution and logistics
	"distribution center", "fulfillment center", "logistics", "shipping center",
	"warehouse jobs", "distribution hub", "supply hub", "operations center",
	"regional center", "storage facility", "distribution network",

	// Real estate
	"commercial property", "corporate real estate",
	"business park", "industrial park", "commercial development",
	"business district",

	// Infrastructure and economic development
	"construction", "build", "building", "development", "expansion", "expand",
	"project", "investment", "investing", "infrastructure", "economic development",
	"growth", "billion dollar", "million dollar",

	// Government funding and civic projects
	"subsidy", "subsidies", "incentive", "grant", "funding", "funds",
	"public funds", "tax credit", "tax break", "abatement", "bond", "bonds",
	"municipal", "council approves", "city approves", "city council",
	"redevelopment", "revitalization", "urban renewal", "downtown",
	"mixed-use", "development project", "lofts", "housing development",
	"affordable housing", "residential", "commercial",

	// Airports and transportation
	"terminal", "airport expansion", "runway", "gate", "gates",
	"transit", "transportation", "passenger", "aviation",
	"air travel", "flight", "airline", "american airlines", "southwest",
}

// criticalTitleTerms accept an article on title match alone, before any other
// check. Deliberately a separate tier from baseline: feedback keyword removals
// do not reach it.
var criticalTitleTerms = []string{
	"terminal", "airport", "council approves", "subsidy",
	"million", "billion", "project", "development",
	"construction", "funding", "economic", "american airlines",
	"dfw", "lofts", "city council",
}

// fundingPhrases signal government money or approval anywhere in content.
var fundingPhrases = []string{
	"approves funding", "approved funding",
	"approves subsidy", "approved subsidy",
	"announces investment", "announced investment",
	"approves plan", "approved plan",
	"receives grant", "received grant",
	"awarded contract", "awards contract",
	"city council vote", "council voted",
}

var dollarAmountRe = regexp.MustCompile(`(?i)\$\s*\d+(\.\d+)?\s*(million|billion|m|b|k)?`)

// densityThreshold is how many distinct effective keywords must appear in
// content before the article is accepted on density alone.
const densityThreshold = 3

// Scorer evaluates lexical relevance against an effective keyword set:
// baseline plus feedback additions, minus feedback removals. Content density
// matching runs on an Aho-Corasick automaton built once per Scorer.
type Scorer struct {
	effective []string
	matcher   *ahocorasick.Matcher
}

// NewScorer builds a Scorer from feedback keyword additions and removals.
// Both may be nil.
func NewScorer(added, removed []string) *Scorer {
	removedSet := make(map[string]struct{}, len(removed))
	for _, kw := range removed {
		removedSet[strings.ToLower(kw)] = struct{}{}
	}

	seen := make(map[string]struct{})
	var effective []string
	for _, kw := range append(append([]string{}, baseline...), added...) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, drop := removedSet[kw]; drop {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		effective = append(effective, kw)
	}

	return &Scorer{
		effective: effective,
		matcher:   ahocorasick.NewStringMatcher(effective),
	}
}

// Relevant reports whether the article looks jobs/economic-development
// related. Checks run in strict order and the first hit wins.
func (s *Scorer) Relevant(title, content string) bool {
	titleLower := strings.ToLower(title)
	contentLower := strings.ToLower(content)

	// Tier 1: critical terms in title accept outright.
	for _, term := range criticalTitleTerms {
		if strings.Contains(titleLower, term) {
			return true
		}
	}

	// Tier 2: any effective keyword in title.
	for _, kw := range s.effective {
		if strings.Contains(titleLower, kw) {
			return true
		}
	}

	// Tier 3: dollar amounts in title, then in the first paragraph.
	if dollarAmountRe.MatchString(titleLower) {
		return true
	}
	if dollarAmountRe.MatchString(firstParagraph(contentLower)) {
		return true
	}

	// Tier 4: funding/approval phrases anywhere in content.
	for _, phrase := range fundingPhrases {
		if strings.Contains(contentLower, phrase) {
			return true
		}
	}

	// Tier 5: government approval in title backed by project language in content.
	if containsAny(titleLower, "city", "council", "mayor", "approves") &&
		containsAny(contentLower, "project", "development", "plan", "fund") {
		return true
	}

	// Tier 6: airports create jobs; title mention plus build language in content.
	if containsAny(titleLower, "airport", "airline", "terminal") &&
		containsAny(contentLower, "new", "plan", "develop", "build") {
		return true
	}

	// Tier 7: distinct keyword density in content.
	return len(s.matcher.Match([]byte(contentLower))) >= densityThreshold
}

// EffectiveKeywords returns the effective keyword set, for reporting.
func (s *Scorer) EffectiveKeywords() []string {
	out := make([]string, len(s.effective))
	copy(out, s.effective)
	return out
}

// HasDollarAmount reports whether text contains a dollar-amount pattern like
// "$45 million" or "$2.3B". Shared with the adaptive model's feature checks.
func HasDollarAmount(text string) bool {
	return dollarAmountRe.MatchString(text)
}

func firstParagraph(content string) string {
	if idx := strings.Index(content, "\n\n"); idx >= 0 {
		return content[:idx]
	}
	return content
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
