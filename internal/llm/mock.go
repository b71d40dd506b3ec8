package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Mock is the offline provider (LLM_PROVIDER=mock). Replies are a pure
// function of the user message so demo batches are reproducible.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

var (
	mockPositive = []string{"great", "love", "excellent", "good", "amazing", "thanks", "fast"}
	mockNegative = []string{"terrible", "bad", "worst", "slow", "broken", "crash", "hate", "wait", "confusing", "expensive"}
	mockThemes   = []struct{ word, theme string }{
		{"price", "Pricing"},
		{"expensive", "Pricing"},
		{"deliver", "Delivery"},
		{"support", "Customer Support"},
		{"login", "Authentication"},
		{"password", "Authentication"},
		{"crash", "Stability"},
		{"slow", "Performance"},
	}
)

func (m *Mock) Send(ctx context.Context, p Prompt) (Completion, error) {
	if err := ctx.Err(); err != nil {
		return Completion{}, err
	}
	lower := strings.ToLower(p.User)
	score := 0
	for _, w := range mockPositive {
		if strings.Contains(lower, w) {
			score++
		}
	}
	var complaints []string
	for _, w := range mockNegative {
		if strings.Contains(lower, w) {
			score--
			complaints = append(complaints, "Customer mentions "+w)
		}
	}
	sentiment := "Neutral"
	switch {
	case score > 0:
		sentiment = "Positive"
	case score < 0:
		sentiment = "Negative"
	}
	themes := []string{}
	seen := map[string]bool{}
	for _, t := range mockThemes {
		if strings.Contains(lower, t.word) && !seen[t.theme] {
			seen[t.theme] = true
			themes = append(themes, t.theme)
		}
	}
	recs := []string{}
	if sentiment == "Negative" {
		recs = append(recs, "Follow up with the customer within 24h")
	}
	reply, _ := json.Marshal(map[string]any{
		"sentiment":       sentiment,
		"summary":         "Mock analysis of customer feedback",
		"themes":          themes,
		"complaints":      complaints,
		"recommendations": recs,
		"confidence":      0.8,
	})
	text := string(reply)
	return Completion{
		Text:  text,
		Model: "mock",
		Usage: &Usage{
			PromptTokens:     int64(len(strings.Fields(p.Text()))),
			CompletionTokens: int64(len(strings.Fields(text))),
		},
	}, nil
}
