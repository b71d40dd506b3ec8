package extractor

import (
	"strings"

	"feedback-insights-go/internal/llm"
)

// systemPrompt fixes the reply shape; the feedback itself travels as the
// user message so it can never rewrite the instructions.
const systemPrompt = `You are an expert Marketing Insights Consultant.

Analyze the given customer feedback and extract structured insights.
Respond ONLY in valid JSON. No explanations, no markdown.

JSON schema:
{
  "sentiment": "Positive | Neutral | Negative | Mixed",
  "confidence": 0.0,
  "summary": "Short professional summary",
  "themes": ["Detected themes"],
  "complaints": ["Customer pain points"],
  "recommendations": ["Actionable business improvements"]
}

"confidence" is your certainty in the sentiment label, between 0 and 1.
If the text is unclear or meaningless, return Neutral sentiment and empty lists.`

// BuildPrompt returns the fixed-structure prompt for one feedback item.
func BuildPrompt(text string) llm.Prompt {
	return llm.Prompt{
		System: systemPrompt,
		User:   strings.TrimSpace(text),
	}
}
