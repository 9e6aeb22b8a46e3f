package recipe

import (
	"fmt"
	"regexp"
	"time"
)

var variableRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Substitutor resolves {variable} references in recipe strings such as
// file paths and stage names. Resolution order: built-in date variables,
// then recipe-defined variables, then caller overrides.
type Substitutor struct {
	values map[string]string
}

// NewSubstitutor builds a substitutor from recipe variables and caller
// overrides, with built-in date variables computed from now.
func NewSubstitutor(now time.Time, recipeVars, overrides map[string]string) *Substitutor {
	values := map[string]string{
		"date":      now.Format("20060102"),
		"timestamp": now.Format("20060102_150405"),
		"year":      now.Format("2006"),
		"month":     now.Format("01"),
		"day":       now.Format("02"),
		"MMDD":      now.Format("0102"),
	}
	for k, v := range recipeVars {
		values[k] = v
	}
	for k, v := range overrides {
		values[k] = v
	}
	return &Substitutor{values: values}
}

// Substitute replaces every {variable} reference in s. An unresolvable
// variable is an error naming the variable.
func (s *Substitutor) Substitute(input string) (string, error) {
	var missing string
	out := variableRe.ReplaceAllStringFunc(input, func(match string) string {
		name := match[1 : len(match)-1]
		if v, ok := s.values[name]; ok {
			return v
		}
		if missing == "" {
			missing = name
		}
		return match
	})
	if missing != "" {
		return "", fmt.Errorf("unknown variable {%s} in %q", missing, input)
	}
	return out, nil
}

// Lookup returns the value of a single variable.
func (s *Substitutor) Lookup(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}
