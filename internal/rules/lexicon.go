package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"feedback-insights-go/internal/types"
)

// Lexicon is the operator-tunable table behind the rule-based analyzer.
type Lexicon struct {
	// NeutralThreshold: |pos-neg| <= NeutralThreshold is neutral.
	NeutralThreshold int      `yaml:"neutral_threshold"`
	Positive         []string `yaml:"positive"`
	Negative         []string `yaml:"negative"`
	Themes           []Theme  `yaml:"themes"`
}

type Theme struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// LoadLexicon reads a YAML lexicon. An empty path returns DefaultLexicon.
func LoadLexicon(path string) (Lexicon, error) {
	if path == "" {
		return DefaultLexicon(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, types.NewConfigError("lexicon", "read %s: %v", path, err)
	}
	var lx Lexicon
	if err := yaml.Unmarshal(data, &lx); err != nil {
		return Lexicon{}, types.NewConfigError("lexicon", "parse %s: %v", path, err)
	}
	if err := lx.Validate(); err != nil {
		return Lexicon{}, err
	}
	return lx, nil
}

// Validate returns a *types.ConfigurationError describing the first problem.
func (lx Lexicon) Validate() error {
	if lx.NeutralThreshold < 0 {
		return types.NewConfigError("lexicon.neutral_threshold", "must be >= 0, got %d", lx.NeutralThreshold)
	}
	if len(lx.Positive) == 0 && len(lx.Negative) == 0 {
		return types.NewConfigError("lexicon", "no sentiment terms")
	}
	seen := map[string]string{}
	check := func(list []string, field string) error {
		for i, term := range list {
			key := normalizeTerm(term)
			if key == "" {
				return types.NewConfigError(fmt.Sprintf("lexicon.%s[%d]", field, i), "empty term")
			}
			if prev, ok := seen[key]; ok && prev != field {
				return types.NewConfigError("lexicon."+field, "term %q is also listed as %s", term, prev)
			}
			seen[key] = field
		}
		return nil
	}
	if err := check(lx.Positive, "positive"); err != nil {
		return err
	}
	if err := check(lx.Negative, "negative"); err != nil {
		return err
	}
	names := map[string]bool{}
	for i, th := range lx.Themes {
		field := fmt.Sprintf("lexicon.themes[%d]", i)
		if strings.TrimSpace(th.Name) == "" {
			return types.NewConfigError(field, "theme without a name")
		}
		if names[th.Name] {
			return types.NewConfigError(field, "duplicate theme %q", th.Name)
		}
		names[th.Name] = true
		if len(th.Keywords) == 0 {
			return types.NewConfigError(field, "theme %q has no keywords", th.Name)
		}
		for _, kw := range th.Keywords {
			if normalizeTerm(kw) == "" {
				return types.NewConfigError(field, "theme %q has an empty keyword", th.Name)
			}
		}
	}
	return nil
}

func normalizeTerm(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
