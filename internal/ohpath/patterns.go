package ohpath

import (
	"errors"
	"fmt"

	"github.com/gobwas/glob"
)

// Glob-style key matching for include/exclude selection. The supported
// subset is the '*' wildcard, case-sensitive: "EMG_*" is a prefix match,
// "*_metrics" a suffix match, "*daily*" a containment match, anything
// without '*' an exact match.

// ErrInvalidPattern indicates a glob pattern could not be compiled.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// PatternSet is a compiled set of glob patterns. The zero value matches
// nothing.
type PatternSet struct {
	patterns []string
	matchers []glob.Glob
}

// CompilePatterns compiles glob patterns up front so per-key matching is
// cheap and bad patterns fail at configuration time, not mid-extraction.
func CompilePatterns(patterns []string) (PatternSet, error) {
	ps := PatternSet{patterns: append([]string(nil), patterns...)}
	for _, p := range patterns {
		m, err := glob.Compile(p)
		if err != nil {
			return PatternSet{}, fmt.Errorf("%w %q: %v", ErrInvalidPattern, p, err)
		}
		ps.matchers = append(ps.matchers, m)
	}
	return ps, nil
}

// Empty reports whether the set holds no patterns.
func (ps PatternSet) Empty() bool {
	return len(ps.matchers) == 0
}

// Patterns returns the source pattern strings (a copy).
func (ps PatternSet) Patterns() []string {
	return append([]string(nil), ps.patterns...)
}

// Matches reports whether key matches at least one pattern.
func (ps PatternSet) Matches(key string) bool {
	for _, m := range ps.matchers {
		if m.Match(key) {
			return true
		}
	}
	return false
}

// ExcludeKeys filters out keys matching the set, preserving order.
func ExcludeKeys(keys []string, exclude PatternSet) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !exclude.Matches(k) {
			out = append(out, k)
		}
	}
	return out
}

// IncludeKeys keeps only keys matching the set, preserving order.
func IncludeKeys(keys []string, include PatternSet) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if include.Matches(k) {
			out = append(out, k)
		}
	}
	return out
}

// SelectKeys applies include then exclude. Exclusion always wins: a key
// matched by any exclude pattern is dropped even if an include pattern
// matches it. An empty include set keeps everything not excluded.
func SelectKeys(keys []string, include, exclude PatternSet) []string {
	selected := keys
	if !include.Empty() {
		selected = IncludeKeys(selected, include)
	}
	return ExcludeKeys(selected, exclude)
}
