// Package decide implements the relevance decision chain. Signals are
// consulted in strict precedence order, most authoritative and cheapest
// first: explicit human feedback, then the adaptive model's confident bands,
// then keyword heuristics, then the AI judge. The first applicable rule wins,
// and an AI failure degrades to the keyword result instead of aborting.
package decide

import (
	"context"
	"fmt"
	"log"

	"jobradar/internal/ai"
	"jobradar/internal/feedback"
	"jobradar/internal/keywords"
	"jobradar/internal/model"
)

// Source identifies which signal produced a decision.
type Source string

const (
	SourceFeedback Source = "feedback"
	SourceModel    Source = "model"
	SourceKeyword  Source = "keyword"
	SourceAI       Source = "ai"
)

// Result is a relevance decision with its audit trail.
type Result struct {
	Relevant    bool
	Explanation string
	Source      Source
}

// AIJudge is the optional external judgment capability.
type AIJudge interface {
	Judge(ctx context.Context, title, content string) (*ai.Judgment, error)
}

// Decider evaluates candidate articles. Construct one per run: it snapshots
// feedback into the keyword scorer and holds the (possibly nil) model and
// judge for the whole batch.
type Decider struct {
	feedback *feedback.Feedback
	scorer   *keywords.Scorer
	model    *model.Model
	judge    AIJudge
}

// New creates a Decider. The model and judge may be nil; keyword-only
// operation is a fully supported mode, not an error.
func New(fb *feedback.Feedback, m *model.Model, judge AIJudge) *Decider {
	if fb == nil {
		fb = feedback.Empty()
	}
	return &Decider{
		feedback: fb,
		scorer:   keywords.NewScorer(fb.AddedKeywords, fb.RemovedKeywords),
		model:    m,
		judge:    judge,
	}
}

// Decide classifies one article. Pure for all non-AI paths: identical input
// yields identical output.
func (d *Decider) Decide(ctx context.Context, url, title, content string) Result {
	// Explicit human verdicts outrank every automated signal.
	if d.feedback.IsIncluded(url) {
		return Result{Relevant: true, Explanation: "Explicitly included via feedback", Source: SourceFeedback}
	}
	if d.feedback.IsExcluded(url) {
		return Result{Relevant: false, Explanation: "Explicitly excluded via feedback", Source: SourceFeedback}
	}

	// The model's confident bands decide outright; the middle band only
	// annotates the keyword explanation.
	modelNote := ""
	if d.model != nil {
		ev := d.model.Score(title, content)
		switch ev.Band {
		case model.BandRelevant:
			return Result{
				Relevant:    true,
				Explanation: fmt.Sprintf("Strong relevance detected by model (score: %.2f)", ev.Score),
				Source:      SourceModel,
			}
		case model.BandIrrelevant:
			return Result{
				Relevant:    false,
				Explanation: fmt.Sprintf("Article deemed not relevant by model (score: %.2f)", ev.Score),
				Source:      SourceModel,
			}
		}
		modelNote = fmt.Sprintf(" (model score: %.2f)", ev.Score)
	}

	if d.scorer.Relevant(title, content) {
		return Result{
			Relevant:    true,
			Explanation: "Relevant by keyword matching" + modelNote,
			Source:      SourceKeyword,
		}
	}

	// Keywords said no; the AI judge gets the last word when available.
	if d.judge != nil {
		judgment, err := d.judge.Judge(ctx, title, content)
		if err != nil {
			log.Printf("AI judgment failed for %s, falling back to keywords: %v", url, err)
			return Result{
				Relevant:    false,
				Explanation: "AI failed, determined by keyword matching",
				Source:      SourceKeyword,
			}
		}
		explanation := judgment.Explanation
		if explanation == "" {
			explanation = "AI judgment"
		}
		return Result{Relevant: judgment.Relevant, Explanation: explanation, Source: SourceAI}
	}

	return Result{Relevant: false, Explanation: "No relevance signal matched", Source: SourceKeyword}
}
