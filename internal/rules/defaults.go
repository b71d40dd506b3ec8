package rules

// DefaultLexicon is used when no LEXICON_PATH is configured. Operators are
// expected to tune it for their product vocabulary.
func DefaultLexicon() Lexicon {
	return Lexicon{
		NeutralThreshold: 0,
		Positive: []string{
			"good", "great", "excellent", "love", "amazing", "helpful",
			"easy", "fast", "friendly", "recommend", "happy", "smooth",
		},
		Negative: []string{
			"confusing", "crash", "slow", "error", "expensive", "terrible",
			"bad", "broken", "rude", "disappointed", "frustrating", "worst",
		},
		Themes: []Theme{
			{Name: "Pricing", Keywords: []string{"price", "pricing", "expensive", "cost", "fee", "refund"}},
			{Name: "Authentication", Keywords: []string{"login", "log in", "password", "sign in"}},
			{Name: "Stability", Keywords: []string{"crash", "error", "bug", "freeze"}},
			{Name: "Performance", Keywords: []string{"slow", "fast", "speed", "lag", "loading"}},
			{Name: "Support", Keywords: []string{"support", "agent", "service", "help desk"}},
			{Name: "Delivery", Keywords: []string{"delivery", "shipping", "package", "courier"}},
			{Name: "Usability", Keywords: []string{"confusing", "easy", "interface", "navigation"}},
		},
	}
}
