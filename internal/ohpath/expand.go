package ohpath

import (
	"errors"
	"fmt"
	"strings"
)

// Wildcard expansion: walking every branch of a path whose segments may be
// the '*' wildcard, accumulating which concrete key each wildcard chose.

// Wildcard matches every key present at one level.
const Wildcard = "*"

// ErrDeepWildcard rejects the unsupported recursive wildcard segment.
var ErrDeepWildcard = errors.New("deep wildcard '**' segments are not supported")

// Match is one fully resolved branch: the level-name to key context built
// while descending, plus the value found at the end of the path.
type Match struct {
	Context map[string]string
	Value   interface{}
}

// Level returns the key matched for a level name, or "" when the branch
// never traversed that level.
func (m Match) Level(name string) string {
	return m.Context[name]
}

// Expand walks data along path, branching at every wildcard segment, and
// returns one Match per branch that resolves all the way. Level names are
// assigned to wildcards positionally; once the list runs out, names are
// synthesized as level_0, level_1, ... by wildcard index.
//
// Branches hitting a missing key or a non-mapping node before the path is
// exhausted yield nothing. Keys at a wildcard level are visited in
// ascending order, filtered through exclude first, and each branch gets
// its own context copy so siblings never share state.
func Expand(data map[string]interface{}, path string, levelNames []string, exclude PatternSet) ([]Match, error) {
	var segs []string
	if path != "" {
		segs = strings.Split(path, ".")
	}
	for _, s := range segs {
		if s == "**" {
			return nil, fmt.Errorf("%w: %q", ErrDeepWildcard, path)
		}
	}

	var out []Match
	var walk func(cur interface{}, segs []string, ctx map[string]string, wildcardIdx int)
	walk = func(cur interface{}, segs []string, ctx map[string]string, wildcardIdx int) {
		if len(segs) == 0 {
			out = append(out, Match{Context: copyContext(ctx), Value: cur})
			return
		}
		m, ok := cur.(map[string]interface{})
		if !ok {
			return
		}
		seg, rest := segs[0], segs[1:]
		if seg == Wildcard {
			name := levelName(levelNames, wildcardIdx)
			for _, key := range sortedKeys(m) {
				if exclude.Matches(key) {
					continue
				}
				next := copyContext(ctx)
				next[name] = key
				walk(m[key], rest, next, wildcardIdx+1)
			}
			return
		}
		v, ok := m[seg]
		if !ok {
			return
		}
		walk(v, rest, ctx, wildcardIdx)
	}
	walk(data, segs, map[string]string{}, 0)
	return out, nil
}

// CountWildcards reports how many wildcard segments path contains.
func CountWildcards(path string) int {
	n := 0
	for _, s := range strings.Split(path, ".") {
		if s == Wildcard {
			n++
		}
	}
	return n
}

func levelName(names []string, idx int) string {
	if idx < len(names) {
		return names[idx]
	}
	return fmt.Sprintf("level_%d", idx)
}

func copyContext(ctx map[string]string) map[string]string {
	out := make(map[string]string, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
