// Package model implements the adaptive relevance scorer: a small heuristic
// model rebuilt from previously accepted articles, not a deep-learning model.
// It runs in-process; when too little training data exists, Train returns nil
// and the decider falls back to keywords and the AI judge.
package model

import (
	"regexp"
	"sort"
	"strings"

	"jobradar/internal/keywords"
)

const (
	// MinSampleSize is the minimum number of accepted articles required to
	// train. Below it the model would just echo noise.
	MinSampleSize = 10

	topTokenCount = 20
	minTokenLen   = 4

	// contentLeadLen bounds how far into content the dollar feature looks.
	contentLeadLen = 500

	// Band boundaries. The raw threshold is 3, but the decider acts on the
	// confident bands and defers the middle to the keyword check.
	strongThreshold = 4
	rejectThreshold = 1
)

var (
	cityRe           = regexp.MustCompile(`(?i)city|dallas|fort worth|plano|arlington|frisco`)
	infrastructureRe = regexp.MustCompile(`(?i)project|development|construct|build|expansion`)
	approvalRe       = regexp.MustCompile(`(?i)approve|council|vote|plan|subsidy|funding`)
)

// Sample is a training example: a previously accepted article.
type Sample struct {
	Title   string
	Content string
}

// FeatureWeights are prevalence ratios over the training sample, each in [0,1].
type FeatureWeights struct {
	DollarAmounts          float64 `json:"dollar_amounts"`
	CityMentions           float64 `json:"city_mentions"`
	InfrastructureProjects float64 `json:"infrastructure_projects"`
	GovernmentApprovals    float64 `json:"government_approvals"`
}

// Model is the trained artifact. Derived data: rebuilt wholesale by Train,
// never hand-edited.
type Model struct {
	TopTitleTokens []string       `json:"top_title_tokens"`
	Weights        FeatureWeights `json:"feature_weights"`
	SampleSize     int            `json:"sample_size"`
}

// Band is the three-way verdict the decider acts on.
type Band int

const (
	// BandUncertain defers the decision to the keyword check.
	BandUncertain Band = iota
	// BandRelevant is a strong model signal: accept.
	BandRelevant
	// BandIrrelevant is a confident rejection.
	BandIrrelevant
)

// Evaluation is the result of scoring one article.
type Evaluation struct {
	Score float64
	Band  Band
}

// Train builds a Model from a sample of accepted articles. Returns nil when
// the sample is too small to be meaningful; callers treat nil as "no model".
func Train(sample []Sample) *Model {
	if len(sample) < MinSampleSize {
		return nil
	}

	tokenCounts := make(map[string]int)
	var dollar, city, infra, approval int

	for _, s := range sample {
		title := strings.ToLower(s.Title)
		content := strings.ToLower(s.Content)

		for _, token := range strings.Fields(title) {
			token = strings.Trim(token, `.,:;!?"'()[]`)
			if len(token) >= minTokenLen {
				tokenCounts[token]++
			}
		}

		if keywords.HasDollarAmount(title) || keywords.HasDollarAmount(contentLead(content)) {
			dollar++
		}
		if cityRe.MatchString(title) {
			city++
		}
		if infrastructureRe.MatchString(title) {
			infra++
		}
		if approvalRe.MatchString(title) {
			approval++
		}
	}

	n := float64(len(sample))
	return &Model{
		TopTitleTokens: topTokens(tokenCounts, topTokenCount),
		Weights: FeatureWeights{
			DollarAmounts:          float64(dollar) / n,
			CityMentions:           float64(city) / n,
			InfrastructureProjects: float64(infra) / n,
			GovernmentApprovals:    float64(approval) / n,
		},
		SampleSize: len(sample),
	}
}

// Score evaluates an article against the model and places the score in a band.
func (m *Model) Score(title, content string) Evaluation {
	titleLower := strings.ToLower(title)
	contentLower := strings.ToLower(content)

	var score float64
	for _, token := range m.TopTitleTokens {
		if strings.Contains(titleLower, token) {
			score++
		}
	}

	if keywords.HasDollarAmount(titleLower) || keywords.HasDollarAmount(contentLead(contentLower)) {
		score += 3 * m.Weights.DollarAmounts
	}
	if cityRe.MatchString(titleLower) {
		score += 2 * m.Weights.CityMentions
	}
	if infrastructureRe.MatchString(titleLower) {
		score += 2 * m.Weights.InfrastructureProjects
	}
	if approvalRe.MatchString(titleLower) {
		score += 3 * m.Weights.GovernmentApprovals
	}

	return Evaluation{Score: score, Band: band(score)}
}

func band(score float64) Band {
	switch {
	case score >= strongThreshold:
		return BandRelevant
	case score <= rejectThreshold:
		return BandIrrelevant
	default:
		return BandUncertain
	}
}

func contentLead(content string) string {
	if len(content) > contentLeadLen {
		return content[:contentLeadLen]
	}
	return content
}

// topTokens returns the count most frequent tokens, ties broken
// alphabetically so training is deterministic.
func topTokens(counts map[string]int, count int) []string {
	tokens := make([]string, 0, len(counts))
	for token := range counts {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if counts[tokens[i]] != counts[tokens[j]] {
			return counts[tokens[i]] > counts[tokens[j]]
		}
		return tokens[i] < tokens[j]
	})
	if len(tokens) > count {
		tokens = tokens[:count]
	}
	return tokens
}
