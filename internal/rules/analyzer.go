package rules

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"feedback-insights-go/internal/types"
)

const (
	baseConfidence  = 0.5
	ruleSummary     = "Derived using rule-based logic"
	manualReviewRec = "Manual review suggested"
)

type termMatcher struct {
	term string
	m    wordMatcher
}

type themeMatcher struct {
	name     string
	keywords []wordMatcher
}

// Analyzer is the deterministic baseline. It is safe for concurrent use;
// compiled patterns are read-only after New.
type Analyzer struct {
	threshold int
	positive  []termMatcher
	negative  []termMatcher
	themes    []themeMatcher
}

// New validates and compiles the lexicon.
func New(lx Lexicon) (*Analyzer, error) {
	if err := lx.Validate(); err != nil {
		return nil, err
	}
	a := &Analyzer{
		threshold: lx.NeutralThreshold,
		positive:  compileTerms(lx.Positive),
		negative:  compileTerms(lx.Negative),
	}
	for _, th := range lx.Themes {
		tm := themeMatcher{name: th.Name}
		for _, kw := range th.Keywords {
			tm.keywords = append(tm.keywords, newWordMatcher(kw))
		}
		a.themes = append(a.themes, tm)
	}
	return a, nil
}

func (a *Analyzer) Variant() types.Variant { return types.VariantRuleBased }

// Analyze never blocks and has no failure mode.
func (a *Analyzer) Analyze(text string) types.AnalysisResult {
	matched := map[string]int{}
	pos := countHits(a.positive, text, matched)
	neg := countHits(a.negative, text, matched)

	score := pos - neg
	sentiment := types.SentimentNeutral
	if abs(score) > a.threshold {
		if score > 0 {
			sentiment = types.SentimentPositive
		} else {
			sentiment = types.SentimentNegative
		}
	}

	confidence := baseConfidence
	if total := pos + neg; total > 0 {
		confidence = baseConfidence + baseConfidence*float64(abs(score))/float64(total)
		if confidence > 1 {
			confidence = 1
		}
	}

	res := types.AnalysisResult{
		Variant:    types.VariantRuleBased,
		Sentiment:  sentiment,
		Confidence: confidence,
		Themes:     a.themesOf(text),
		Summary:    ruleSummary,
		Payload: map[string]any{
			"method":        "rule-based",
			"positive_hits": pos,
			"negative_hits": neg,
			"score":         score,
			"matched_terms": matched,
		},
	}
	if sentiment == types.SentimentNegative {
		res.Recommendations = []string{manualReviewRec}
	}
	return res
}

// themesOf orders themes by their first keyword hit in text. Ties keep table
// order.
func (a *Analyzer) themesOf(text string) []string {
	type hit struct {
		name string
		pos  int
	}
	var hits []hit
	for _, th := range a.themes {
		first := -1
		for _, kw := range th.keywords {
			if at := kw.first(text); at >= 0 && (first == -1 || at < first) {
				first = at
			}
		}
		if first >= 0 {
			hits = append(hits, hit{th.name, first})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	themes := make([]string, 0, len(hits))
	for _, h := range hits {
		themes = append(themes, h.name)
	}
	return themes
}

func countHits(ms []termMatcher, text string, matched map[string]int) int {
	n := 0
	for _, m := range ms {
		if c := m.m.count(text); c > 0 {
			matched[m.term] = c
			n += c
		}
	}
	return n
}

func compileTerms(terms []string) []termMatcher {
	seen := map[string]bool{}
	var out []termMatcher
	for _, t := range terms {
		key := normalizeTerm(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, termMatcher{term: key, m: newWordMatcher(key)})
	}
	return out
}

// wordMatcher finds a term case-insensitively where it stands as a whole
// word. Inner whitespace matches any run of whitespace. Boundaries are
// checked on runes, so non-ASCII letters count as word characters.
type wordMatcher struct {
	re *regexp.Regexp
}

func newWordMatcher(term string) wordMatcher {
	parts := strings.Fields(strings.ToLower(term))
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return wordMatcher{re: regexp.MustCompile(`(?i)` + strings.Join(parts, `\s+`))}
}

// each calls fn with the byte offset of every whole-word occurrence, left to
// right, until fn returns false.
func (w wordMatcher) each(text string, fn func(start int) bool) {
	for off := 0; off < len(text); {
		loc := w.re.FindStringIndex(text[off:])
		if loc == nil {
			return
		}
		start, end := off+loc[0], off+loc[1]
		if isBoundary(text, start, end) {
			if !fn(start) {
				return
			}
			off = end
			continue
		}
		// Retry one rune further on; a rejected candidate may overlap a real one.
		_, size := utf8.DecodeRuneInString(text[start:])
		off = start + max(size, 1)
	}
}

func (w wordMatcher) count(text string) int {
	n := 0
	w.each(text, func(int) bool { n++; return true })
	return n
}

// first is the offset of the first occurrence, or -1.
func (w wordMatcher) first(text string) int {
	at := -1
	w.each(text, func(start int) bool { at = start; return false })
	return at
}

func isBoundary(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
