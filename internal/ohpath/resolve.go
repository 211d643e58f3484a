package ohpath

import (
	"sort"
	"strings"
	"time"
)

// Navigation over nested profile data using dot-notation paths.
// A path like "sensor_metrics.emg.EMG_weekly_metrics" addresses one node;
// missing keys and non-mapping nodes mid-path are "no value", never errors.

// sentinel distinguishes "path absent" from "path stores nil".
var sentinel = &struct{}{}

// Resolve walks data along path and returns the value found, or def the
// moment a segment is missing or the current node is not a mapping.
// The empty path returns data itself.
func Resolve(data map[string]interface{}, path string, def interface{}) interface{} {
	if path == "" {
		return data
	}
	cur := interface{}(data)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return def
		}
		v, ok := m[seg]
		if !ok {
			return def
		}
		cur = v
	}
	return cur
}

// Exists reports whether path resolves in data, including to an explicit
// null value.
func Exists(data map[string]interface{}, path string) bool {
	return Resolve(data, path, sentinel) != interface{}(sentinel)
}

// KeysAt returns the keys of the mapping at path in ascending order, or an
// empty list if path does not resolve to a mapping.
func KeysAt(data map[string]interface{}, path string) []string {
	m, ok := Resolve(data, path, nil).(map[string]interface{})
	if !ok {
		return []string{}
	}
	return sortedKeys(m)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- structure introspection ---

// DefaultSummaryDepth bounds StructureSummary recursion.
const DefaultSummaryDepth = 4

// StructureSummary describes key names and value kinds under path, without
// values, to at most maxDepth levels. Handy for discovering what a profile
// actually contains before writing extraction paths.
func StructureSummary(data map[string]interface{}, path string, maxDepth int) map[string]interface{} {
	if maxDepth <= 0 {
		maxDepth = DefaultSummaryDepth
	}
	target := Resolve(data, path, nil)
	return summarize(target, maxDepth, 0)
}

func summarize(v interface{}, maxDepth, depth int) map[string]interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return map[string]interface{}{"_kind": kindName(v)}
	}
	if depth >= maxDepth {
		keys := sortedKeys(m)
		if len(keys) > 5 {
			keys = keys[:5]
		}
		return map[string]interface{}{"_kind": "mapping", "_keys": keys, "_truncated": true}
	}
	out := make(map[string]interface{}, len(m))
	for _, k := range sortedKeys(m) {
		child := m[k]
		if cm, ok := child.(map[string]interface{}); ok {
			out[k] = summarize(cm, maxDepth, depth+1)
		} else {
			out[k] = map[string]interface{}{"_kind": kindName(child)}
		}
	}
	return out
}

func kindName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]interface{}:
		return "mapping"
	case []interface{}:
		return "list"
	case string:
		return "string"
	case float64, int:
		return "number"
	case bool:
		return "bool"
	default:
		return "unknown"
	}
}

// --- path discovery ---

// DefaultSearchDepth bounds FindPathsMatching recursion.
const DefaultSearchDepth = 10

// FindPathsMatching lists every dotted path in data (to maxDepth levels)
// matching a glob pattern. An invalid pattern is a configuration error.
func FindPathsMatching(data map[string]interface{}, pattern string, maxDepth int) ([]string, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultSearchDepth
	}
	ps, err := CompilePatterns([]string{pattern})
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range NestedPaths(data, maxDepth) {
		if ps.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// NestedPaths enumerates every dotted path in data down to maxDepth levels,
// one entry per node (mappings included), in sorted traversal order.
func NestedPaths(data map[string]interface{}, maxDepth int) []string {
	var out []string
	var walk func(m map[string]interface{}, prefix string, depth int)
	walk = func(m map[string]interface{}, prefix string, depth int) {
		if depth >= maxDepth {
			return
		}
		for _, k := range sortedKeys(m) {
			p := k
			if prefix != "" {
				p = prefix + "." + k
			}
			out = append(out, p)
			if cm, ok := m[k].(map[string]interface{}); ok {
				walk(cm, p, depth+1)
			}
		}
	}
	walk(data, "", 0)
	return out
}

// --- level key classification ---

// LevelKind classifies what a set of sibling keys represents.
type LevelKind string

const (
	LevelEmpty   LevelKind = "empty"
	LevelDate    LevelKind = "date"
	LevelTime    LevelKind = "time"
	LevelSide    LevelKind = "side"
	LevelGeneric LevelKind = "generic"
)

var sideLabels = map[string]struct{}{
	"left": {}, "right": {}, "Left": {}, "Right": {},
	"LEFT": {}, "RIGHT": {}, "L": {}, "R": {},
}

// InferLevelKind guesses the semantic kind of keys found at one level.
func InferLevelKind(keys []string) LevelKind {
	if len(keys) == 0 {
		return LevelEmpty
	}
	allDates, allTimes, allSides := true, true, true
	for _, k := range keys {
		if !IsDateKey(k) {
			allDates = false
		}
		if !IsTimeKey(k) {
			allTimes = false
		}
		if _, ok := sideLabels[k]; !ok {
			allSides = false
		}
	}
	switch {
	case allDates:
		return LevelDate
	case allTimes:
		return LevelTime
	case allSides:
		return LevelSide
	default:
		return LevelGeneric
	}
}

// dateKeyLayouts covers the date spellings profiles use as mapping keys:
// DD-MM-YYYY (sensor sessions) and YYYY-MM-DD (questionnaires, ISO).
var dateKeyLayouts = []string{"02-01-2006", "2006-01-02", "02/01/2006", "2006/01/02"}

// IsDateKey reports whether key parses as a calendar date.
func IsDateKey(key string) bool {
	_, ok := ParseDateKey(key)
	return ok
}

// ParseDateKey parses a date-shaped mapping key, trying each known layout.
func ParseDateKey(key string) (time.Time, bool) {
	for _, layout := range dateKeyLayouts {
		if t, err := time.Parse(layout, key); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// timeKeyLayouts covers session labels: HH-MM-SS and HH:MM:SS.
var timeKeyLayouts = []string{"15-04-05", "15:04:05"}

// IsTimeKey reports whether key parses as a time of day.
func IsTimeKey(key string) bool {
	for _, layout := range timeKeyLayouts {
		if _, err := time.Parse(layout, key); err == nil {
			return true
		}
	}
	return false
}
