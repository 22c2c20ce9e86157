package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const judgePrompt = `Article Title: %q
Article Content:
%s
Question: Is this article relevant to jobs, employment, economic development, or business expansion?
Consider the following criteria:
1. Does it discuss job creation, job losses, hiring, or employment trends?
2. Does it mention new businesses, facilities, or expansions that would create jobs?
3. Does it involve significant infrastructure projects (like airports, buildings, factories, terminals) that would impact employment?
4. Does it discuss economic development initiatives, business relocations, or company investments?
5. Does it mention manufacturing, production, distribution centers, logistics, or industrial facilities?
6. Does it discuss city/municipal funding, subsidies, or approval for development projects?
7. Does it mention dollar amounts for investments, developments, or economic initiatives?
8. Does it involve transportation infrastructure improvements that could create jobs?
Answer with ONLY "Yes" or "No" first, then explain your reasoning in one sentence.`

const summaryPrompt = `Summarize the following news article in 2-3 sentences, focusing on jobs and economic development impact:

%s`

const grammarPrompt = `Correct any grammar or capitalization problems in this news headline. Reply with only the corrected headline, nothing else:

%s`

const (
	// excerptLen is how much article content the judge sees.
	excerptLen = 1000

	judgeMaxTokens   = 150
	summaryMaxTokens = 200
	grammarMaxTokens = 80

	requestTimeout = 20 * time.Second
)

var verdictPrefixRe = regexp.MustCompile(`(?i)^(yes|no)[.,: ]*`)

// Judgment is the AI judge's relevance verdict.
type Judgment struct {
	Relevant    bool
	Explanation string
}

// Judge asks the LLM whether an article is jobs/economic-development
// relevant. The response must lead with Yes or No; the remainder is the
// explanation. Any transport or parse failure returns an error so the
// decider can degrade to keywords.
type Judge struct {
	provider Provider
}

// NewJudge creates a Judge over a provider. A nil provider yields a nil
// Judge, which the decider treats as "AI unavailable".
func NewJudge(provider Provider) *Judge {
	if provider == nil {
		return nil
	}
	return &Judge{provider: provider}
}

// Judge evaluates one article.
func (j *Judge) Judge(ctx context.Context, title, content string) (*Judgment, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	excerpt := content
	truncated := ""
	if len(excerpt) > excerptLen {
		excerpt = excerpt[:excerptLen]
		truncated = "..."
	}

	response, err := j.provider.Generate(ctx, fmt.Sprintf(judgePrompt, title, excerpt+truncated), judgeMaxTokens)
	if err != nil {
		return nil, err
	}

	response = strings.TrimSpace(response)
	lower := strings.ToLower(response)
	if !strings.HasPrefix(lower, "yes") && !strings.HasPrefix(lower, "no") {
		return nil, fmt.Errorf("judge response missing leading yes/no: %q", firstLine(response))
	}

	return &Judgment{
		Relevant:    strings.HasPrefix(lower, "yes"),
		Explanation: strings.TrimSpace(verdictPrefixRe.ReplaceAllString(response, "")),
	}, nil
}

// Summarize produces a short jobs-focused summary of article content.
func (j *Judge) Summarize(ctx context.Context, content string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if len(content) > 4000 {
		content = content[:4000]
	}
	summary, err := j.provider.Generate(ctx, fmt.Sprintf(summaryPrompt, content), summaryMaxTokens)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

// CorrectGrammar cleans up a scraped headline. On failure the caller keeps
// the original title.
func (j *Judge) CorrectGrammar(ctx context.Context, title string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	corrected, err := j.provider.Generate(ctx, fmt.Sprintf(grammarPrompt, title), grammarMaxTokens)
	if err != nil {
		return "", err
	}
	corrected = strings.TrimSpace(strings.Trim(strings.TrimSpace(corrected), `"`))
	if corrected == "" {
		return "", fmt.Errorf("empty grammar correction")
	}
	return corrected, nil
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
