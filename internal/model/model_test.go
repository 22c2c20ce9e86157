package model

import (
	"strings"
	"testing"
)

func relevantSample(n int) []Sample {
	sample := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		sample = append(sample, Sample{
			Title:   "Council approves warehouse development project downtown",
			Content: "The city will invest $45 million in the project.\n\nMore details followed.",
		})
	}
	return sample
}

func TestTrainRequiresMinimumSample(t *testing.T) {
	if Train(relevantSample(MinSampleSize-1)) != nil {
		t.Error("expected nil model below the minimum sample size")
	}
	if Train(relevantSample(MinSampleSize)) == nil {
		t.Error("expected a model at the minimum sample size")
	}
	if Train(nil) != nil {
		t.Error("expected nil model for empty sample")
	}
}

func TestTrainExtractsTitleTokens(t *testing.T) {
	m := Train(relevantSample(12))
	if m == nil {
		t.Fatal("expected a trained model")
	}

	found := false
	for _, token := range m.TopTitleTokens {
		if token == "warehouse" {
			found = true
		}
		if len(token) < 4 {
			t.Errorf("expected only tokens of 4+ chars, got %q", token)
		}
	}
	if !found {
		t.Error("expected 'warehouse' among top title tokens")
	}
	if len(m.TopTitleTokens) > 20 {
		t.Errorf("expected at most 20 tokens, got %d", len(m.TopTitleTokens))
	}
}

func TestTrainComputesFeatureRatios(t *testing.T) {
	// Half the sample has a dollar amount in the content lead.
	sample := make([]Sample, 0, 20)
	for i := 0; i < 10; i++ {
		sample = append(sample, Sample{Title: "Council approves project", Content: "A $45 million deal."})
	}
	for i := 0; i < 10; i++ {
		sample = append(sample, Sample{Title: "Council approves project", Content: "No figures disclosed."})
	}

	m := Train(sample)
	if m == nil {
		t.Fatal("expected a trained model")
	}
	if m.Weights.DollarAmounts != 0.5 {
		t.Errorf("expected dollar ratio 0.5, got %v", m.Weights.DollarAmounts)
	}
	// Every title matches the approval and infrastructure patterns.
	if m.Weights.GovernmentApprovals != 1.0 {
		t.Errorf("expected approval ratio 1.0, got %v", m.Weights.GovernmentApprovals)
	}
	if m.Weights.InfrastructureProjects != 1.0 {
		t.Errorf("expected infrastructure ratio 1.0, got %v", m.Weights.InfrastructureProjects)
	}
}

func TestTrainIgnoresDollarAmountsPastContentLead(t *testing.T) {
	filler := strings.Repeat("padding text ", 50) // >500 chars
	sample := make([]Sample, 0, MinSampleSize)
	for i := 0; i < MinSampleSize; i++ {
		sample = append(sample, Sample{Title: "Quiet news day report", Content: filler + "$9 million"})
	}

	m := Train(sample)
	if m == nil {
		t.Fatal("expected a trained model")
	}
	if m.Weights.DollarAmounts != 0 {
		t.Errorf("expected dollar ratio 0 for buried amounts, got %v", m.Weights.DollarAmounts)
	}
}

func TestScoreBandBoundaries(t *testing.T) {
	// Hand-built model so scores land exactly on the band edges.
	m := &Model{
		TopTitleTokens: []string{"alpha", "bravo", "charlie", "delta"},
		Weights:        FeatureWeights{DollarAmounts: 0.5},
	}

	// Four token hits, no features: score exactly 4.0.
	ev := m.Score("alpha bravo charlie delta", "")
	if ev.Score != 4.0 || ev.Band != BandRelevant {
		t.Errorf("expected score 4.0 in relevant band, got %v band %v", ev.Score, ev.Band)
	}

	// One token hit: score exactly 1.0.
	ev = m.Score("alpha only here", "")
	if ev.Score != 1.0 || ev.Band != BandIrrelevant {
		t.Errorf("expected score 1.0 in irrelevant band, got %v band %v", ev.Score, ev.Band)
	}

	// One token plus 3*0.5 dollar weight: score 2.5, middle band.
	ev = m.Score("alpha costs $9 million", "")
	if ev.Score != 2.5 || ev.Band != BandUncertain {
		t.Errorf("expected score 2.5 in uncertain band, got %v band %v", ev.Score, ev.Band)
	}

	// No hits at all.
	ev = m.Score("nothing matches", "")
	if ev.Score != 0 || ev.Band != BandIrrelevant {
		t.Errorf("expected score 0 in irrelevant band, got %v band %v", ev.Score, ev.Band)
	}
}

func TestScoreDeterministic(t *testing.T) {
	m := Train(relevantSample(15))
	if m == nil {
		t.Fatal("expected a trained model")
	}
	first := m.Score("Council approves warehouse project", "A $45 million deal.")
	second := m.Score("Council approves warehouse project", "A $45 million deal.")
	if first != second {
		t.Error("expected identical evaluations for identical input")
	}
}
