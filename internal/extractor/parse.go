package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"feedback-insights-go/internal/types"
)

// defaultConfidence is used when the model omits "confidence".
const defaultConfidence = 0.5

type reply struct {
	Sentiment       string          `json:"sentiment"`
	Confidence      *float64        `json:"confidence"`
	Summary         string          `json:"summary"`
	Themes          json.RawMessage `json:"themes"`
	Complaints      json.RawMessage `json:"complaints"`
	Recommendations json.RawMessage `json:"recommendations"`
}

var errNoJSON = errors.New("no JSON object in model reply")

// parseReply turns the model's text into an AI AnalysisResult. Every error it
// returns means the reply was malformed.
func parseReply(raw string) (types.AnalysisResult, error) {
	obj := extractJSON(raw)
	if obj == "" {
		return types.AnalysisResult{}, errNoJSON
	}
	var r reply
	if err := json.Unmarshal([]byte(obj), &r); err != nil {
		return types.AnalysisResult{}, fmt.Errorf("decode reply: %w", err)
	}
	if strings.TrimSpace(r.Sentiment) == "" {
		return types.AnalysisResult{}, errors.New("reply is missing sentiment")
	}
	sentiment, ok := normalizeSentiment(r.Sentiment)
	if !ok {
		return types.AnalysisResult{}, fmt.Errorf("unrecognised sentiment %q", r.Sentiment)
	}

	var response map[string]any
	_ = json.Unmarshal([]byte(obj), &response)
	payload := map[string]any{
		"method":   "ai",
		"response": response,
	}
	if !strings.EqualFold(strings.TrimSpace(r.Sentiment), string(sentiment)) {
		payload["model_sentiment"] = r.Sentiment
	}

	confidence := defaultConfidence
	if r.Confidence != nil {
		confidence = clamp01(*r.Confidence)
	} else {
		payload["confidence_reported"] = false
	}

	themes := stringList(r.Themes)
	if themes == nil {
		themes = []string{}
	}
	return types.AnalysisResult{
		Variant:         types.VariantAI,
		Sentiment:       sentiment,
		Confidence:      confidence,
		Themes:          themes,
		Summary:         strings.TrimSpace(r.Summary),
		Complaints:      stringList(r.Complaints),
		Recommendations: stringList(r.Recommendations),
		Payload:         payload,
	}, nil
}

// normalizeSentiment folds model labels onto the three-way scale. "Mixed"
// counts as neutral.
func normalizeSentiment(label string) (types.Sentiment, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "positive":
		return types.SentimentPositive, true
	case "negative":
		return types.SentimentNegative, true
	case "neutral", "mixed":
		return types.SentimentNeutral, true
	}
	return "", false
}

// stringList accepts ["a","b"], "a" or mixed arrays; anything else is empty.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		if one = strings.TrimSpace(one); one != "" {
			return []string{one}
		}
		return nil
	}
	var many []any
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil
	}
	var out []string
	for _, v := range many {
		switch x := v.(type) {
		case string:
			if x = strings.TrimSpace(x); x != "" {
				out = append(out, x)
			}
		case float64:
			out = append(out, fmt.Sprintf("%g", x))
		}
	}
	return out
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// extractJSON finds the first balanced JSON object in a string and returns it.
// A surrounding markdown fence is dropped first; backticks inside the object
// are left alone.
func extractJSON(s string) string {
	if s == "" {
		return ""
	}

	s = stripFence(strings.ReplaceAll(s, "\r\n", "\n"))

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}

	// no balanced found
	return ""
}

// stripFence removes an opening ``` line (with any info string such as json)
// and a closing ``` from the ends of s.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimLeft(s, "`")
		}
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}
