package decide

import (
	"context"
	"errors"
	"strings"
	"testing"

	"jobradar/internal/ai"
	"jobradar/internal/feedback"
	"jobradar/internal/model"
)

// Matches tier 2 of the keyword check: "factory" and "hiring" in the title.
const (
	keywordTitle   = "Factory hiring surge announced"
	keywordContent = "A local company said it will add staff over the coming year."

	// No keyword, dollar, phrase, or density signal anywhere.
	neutralTitle   = "Quiet weekend ahead"
	neutralContent = "Local poets gathered to read their favorite verses."
)

type stubJudge struct {
	judgment    *ai.Judgment
	err         error
	calls       int
	lastTitle   string
	lastContent string
}

func (s *stubJudge) Judge(_ context.Context, title, content string) (*ai.Judgment, error) {
	s.calls++
	s.lastTitle = title
	s.lastContent = content
	if s.err != nil {
		return nil, s.err
	}
	return s.judgment, nil
}

func TestFeedbackIncludeOverridesEverything(t *testing.T) {
	fb := feedback.New([]string{"https://example.com/a"}, nil, nil, nil)
	// A model that would confidently reject.
	m := &model.Model{SampleSize: 12}
	judge := &stubJudge{judgment: &ai.Judgment{Relevant: false, Explanation: "nope"}}
	d := New(fb, m, judge)

	result := d.Decide(context.Background(), "https://example.com/a", neutralTitle, neutralContent)
	if !result.Relevant {
		t.Error("expected included URL to be relevant")
	}
	if result.Explanation != "Explicitly included via feedback" {
		t.Errorf("unexpected explanation: %q", result.Explanation)
	}
	if result.Source != SourceFeedback {
		t.Errorf("expected source feedback, got %s", result.Source)
	}
	if judge.calls != 0 {
		t.Error("AI judge should not be consulted when feedback decides")
	}
}

func TestFeedbackExcludeOverridesKeywordMatch(t *testing.T) {
	fb := feedback.New(nil, []string{"https://example.com/b"}, nil, nil)
	d := New(fb, nil, nil)

	result := d.Decide(context.Background(), "https://example.com/b", keywordTitle, keywordContent)
	if result.Relevant {
		t.Error("expected excluded URL to be irrelevant despite keyword match")
	}
	if result.Explanation != "Explicitly excluded via feedback" {
		t.Errorf("unexpected explanation: %q", result.Explanation)
	}
	if result.Source != SourceFeedback {
		t.Errorf("expected source feedback, got %s", result.Source)
	}
}

func TestModelStrongBandAccepts(t *testing.T) {
	m := &model.Model{
		TopTitleTokens: []string{"steel", "tariff", "import", "review"},
		SampleSize:     12,
	}
	d := New(feedback.Empty(), m, nil)

	result := d.Decide(context.Background(), "https://example.com/c", "Steel tariff import review underway", neutralContent)
	if !result.Relevant {
		t.Error("expected strong model band to accept")
	}
	if result.Source != SourceModel {
		t.Errorf("expected source model, got %s", result.Source)
	}
	if result.Explanation != "Strong relevance detected by model (score: 4.00)" {
		t.Errorf("unexpected explanation: %q", result.Explanation)
	}
}

func TestModelRejectBandSuppressesKeywordMatch(t *testing.T) {
	// No title tokens and zero weights: every article scores 0.
	m := &model.Model{SampleSize: 12}
	d := New(feedback.Empty(), m, nil)

	result := d.Decide(context.Background(), "https://example.com/d", keywordTitle, keywordContent)
	if result.Relevant {
		t.Error("expected confident model rejection to beat keyword match")
	}
	if result.Source != SourceModel {
		t.Errorf("expected source model, got %s", result.Source)
	}
	if result.Explanation != "Article deemed not relevant by model (score: 0.00)" {
		t.Errorf("unexpected explanation: %q", result.Explanation)
	}
}

func TestModelUncertainBandDefersToKeywords(t *testing.T) {
	// Two matching title tokens put the score at 2, inside the uncertain band.
	m := &model.Model{
		TopTitleTokens: []string{"factory", "hiring"},
		SampleSize:     12,
	}
	d := New(feedback.Empty(), m, nil)

	result := d.Decide(context.Background(), "https://example.com/e", keywordTitle, keywordContent)
	if !result.Relevant {
		t.Error("expected keyword match to decide the uncertain band")
	}
	if result.Source != SourceKeyword {
		t.Errorf("expected source keyword, got %s", result.Source)
	}
	if result.Explanation != "Relevant by keyword matching (model score: 2.00)" {
		t.Errorf("unexpected explanation: %q", result.Explanation)
	}
}

func TestKeywordMatchWithoutModel(t *testing.T) {
	d := New(feedback.Empty(), nil, nil)

	result := d.Decide(context.Background(), "https://example.com/f", keywordTitle, keywordContent)
	if !result.Relevant {
		t.Error("expected keyword match")
	}
	if result.Explanation != "Relevant by keyword matching" {
		t.Errorf("unexpected explanation: %q", result.Explanation)
	}
	if result.Source != SourceKeyword {
		t.Errorf("expected source keyword, got %s", result.Source)
	}
}

func TestAIJudgeDecidesWhenKeywordsMiss(t *testing.T) {
	judge := &stubJudge{judgment: &ai.Judgment{Relevant: true, Explanation: "Describes a major facility announcement."}}
	d := New(feedback.Empty(), nil, judge)

	result := d.Decide(context.Background(), "https://example.com/g", neutralTitle, neutralContent)
	if !result.Relevant {
		t.Error("expected AI verdict to decide")
	}
	if result.Source != SourceAI {
		t.Errorf("expected source ai, got %s", result.Source)
	}
	if result.Explanation != "Describes a major facility announcement." {
		t.Errorf("unexpected explanation: %q", result.Explanation)
	}
	if judge.calls != 1 {
		t.Errorf("expected one judge call, got %d", judge.calls)
	}
	if judge.lastTitle != neutralTitle {
		t.Errorf("judge saw wrong title: %q", judge.lastTitle)
	}
}

func TestAIJudgeSkippedWhenKeywordsMatch(t *testing.T) {
	judge := &stubJudge{judgment: &ai.Judgment{Relevant: false}}
	d := New(feedback.Empty(), nil, judge)

	result := d.Decide(context.Background(), "https://example.com/h", keywordTitle, keywordContent)
	if !result.Relevant {
		t.Error("expected keyword match")
	}
	if judge.calls != 0 {
		t.Error("AI judge should not run when keywords already accepted")
	}
}

func TestAIFailureFallsBackToKeywordResult(t *testing.T) {
	judge := &stubJudge{err: errors.New("connection refused")}
	d := New(feedback.Empty(), nil, judge)

	result := d.Decide(context.Background(), "https://example.com/i", neutralTitle, neutralContent)
	if result.Relevant {
		t.Error("expected fallback to the keyword verdict")
	}
	if result.Explanation != "AI failed, determined by keyword matching" {
		t.Errorf("unexpected explanation: %q", result.Explanation)
	}
	if result.Source != SourceKeyword {
		t.Errorf("expected source keyword, got %s", result.Source)
	}
}

func TestNoSignalMatchedWithoutJudge(t *testing.T) {
	d := New(feedback.Empty(), nil, nil)

	result := d.Decide(context.Background(), "https://example.com/j", neutralTitle, neutralContent)
	if result.Relevant {
		t.Error("expected irrelevant with no signals")
	}
	if !strings.Contains(result.Explanation, "No relevance signal") {
		t.Errorf("unexpected explanation: %q", result.Explanation)
	}
}

func TestFeedbackKeywordAdditionReachesScorer(t *testing.T) {
	fb := feedback.New(nil, nil, []string{"poets"}, nil)
	d := New(fb, nil, nil)

	result := d.Decide(context.Background(), "https://example.com/k", "Poets society reconvenes", neutralContent)
	if !result.Relevant {
		t.Error("expected added keyword to make the title relevant")
	}
	if result.Source != SourceKeyword {
		t.Errorf("expected source keyword, got %s", result.Source)
	}
}

func TestGroundbreakingStoryKeptWithoutModelOrAI(t *testing.T) {
	d := New(feedback.Empty(), nil, nil)

	url := "https://x/2024/05/01/new-factory"
	title := "Company breaks ground on $50 million factory"
	content := "Construction starts next month and the company expects hundreds of jobs."

	result := d.Decide(context.Background(), url, title, content)
	if !result.Relevant {
		t.Error("expected relevant with keyword-only signals")
	}
	if result.Source != SourceKeyword {
		t.Errorf("expected source keyword, got %s", result.Source)
	}
	if again := d.Decide(context.Background(), url, title, content); again != result {
		t.Errorf("decision not idempotent: %+v vs %+v", result, again)
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	m := &model.Model{
		TopTitleTokens: []string{"factory"},
		SampleSize:     12,
	}
	d := New(feedback.Empty(), m, nil)

	first := d.Decide(context.Background(), "https://example.com/l", keywordTitle, keywordContent)
	for i := 0; i < 5; i++ {
		again := d.Decide(context.Background(), "https://example.com/l", keywordTitle, keywordContent)
		if again != first {
			t.Fatalf("decision changed between runs: %+v vs %+v", first, again)
		}
	}
}
