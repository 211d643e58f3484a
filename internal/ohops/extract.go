package ohops

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quantifiedwork/ohtidy/internal/ohpath"
	"github.com/quantifiedwork/ohtidy/internal/types"
)

// Tidy extraction: turning nested per-subject profiles into row/column
// tables with a stable schema.

// SubjectColumn is the id column present on every extracted row.
const SubjectColumn = "subject_id"

// WorkTypePath is the fixed profile path for the default metadata column.
const WorkTypePath = "meta_data.work_type"

var (
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrEmptyColumnName = errors.New("empty column name")
	ErrBadValuePath    = errors.New("value path may only carry a trailing wildcard")
)

// NamedPath pairs an output column name with a literal dot-path.
type NamedPath struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// --- wide extraction ---

// Extract builds one row per subject with one column per named path.
// Paths are literal (no wildcards); a path that does not resolve, or that
// resolves to a list, leaves a missing cell.
func Extract(profiles *types.ProfileSet, paths []NamedPath) (types.TidyTable, error) {
	var table types.TidyTable
	table.EnsureColumn(SubjectColumn)
	seen := map[string]struct{}{SubjectColumn: {}}
	for _, np := range paths {
		if strings.TrimSpace(np.Name) == "" {
			return types.TidyTable{}, fmt.Errorf("%w for path %q", ErrEmptyColumnName, np.Path)
		}
		if _, dup := seen[np.Name]; dup {
			return types.TidyTable{}, fmt.Errorf("%w: %q", ErrDuplicateColumn, np.Name)
		}
		seen[np.Name] = struct{}{}
		table.EnsureColumn(np.Name)
	}

	for _, id := range profiles.IDs() {
		profile, _ := profiles.Get(id)
		row := types.Row{SubjectColumn: types.StringCell(id)}
		for _, np := range paths {
			v := ohpath.Resolve(profile, np.Path, nil)
			if m, ok := v.(map[string]interface{}); ok {
				flattenInto(row, &table, np.Name, m, ohpath.PatternSet{})
				continue
			}
			row[np.Name] = types.CellFromValue(v)
		}
		table.AddRow(row)
	}
	return table, nil
}

// --- nested extraction ---

// NestedSpec configures ExtractNested.
type NestedSpec struct {
	// BasePath is the literal path under which wildcard levels begin.
	BasePath string `json:"base_path" yaml:"base_path"`

	// LevelNames label the wildcard levels positionally; one wildcard is
	// appended per name. Extra wildcards get synthetic level_N names.
	LevelNames []string `json:"level_names" yaml:"level_names"`

	// ValuePaths select the leaves extracted at each branch, relative to
	// the branch node. A trailing ".*" (or a bare "*") turns every
	// immediate child into its own column. Empty means ["*"].
	ValuePaths []string `json:"value_paths" yaml:"value_paths"`

	// ExcludePatterns drop candidate keys both at wildcard levels during
	// descent and among value-path children.
	ExcludePatterns []string `json:"exclude_patterns" yaml:"exclude_patterns"`

	// MetaPaths are fixed profile paths added as columns on every row.
	// Nil defaults to work_type from meta_data.work_type.
	MetaPaths []NamedPath `json:"meta_paths" yaml:"meta_paths"`

	// DateRange restricts date-shaped level keys to an inclusive range.
	// Branches whose date key falls outside are dropped and counted in the
	// summary; non-date level keys are unaffected.
	DateRange *DateRange `json:"date_range" yaml:"date_range"`
}

func (s NestedSpec) metaPaths() []NamedPath {
	if s.MetaPaths != nil {
		return s.MetaPaths
	}
	return []NamedPath{{Name: "work_type", Path: WorkTypePath}}
}

func (s NestedSpec) valuePaths() []string {
	if len(s.ValuePaths) == 0 {
		return []string{"*"}
	}
	return s.ValuePaths
}

// ExtractNested walks BasePath plus one wildcard per level name in every
// profile and emits one row per resolved branch: subject id, metadata
// columns, the level-name columns, then one column per selected leaf
// (nested mappings flatten into dotted column names). The schema is the
// union of every column observed; cells a row never produced stay missing.
func ExtractNested(profiles *types.ProfileSet, spec NestedSpec) (types.TidyTable, types.ResultSummary, error) {
	start := time.Now()

	exclude, err := ohpath.CompilePatterns(spec.ExcludePatterns)
	if err != nil {
		return types.TidyTable{}, types.ResultSummary{}, err
	}
	if err := validateValuePaths(spec.valuePaths()); err != nil {
		return types.TidyTable{}, types.ResultSummary{}, err
	}

	var table types.TidyTable
	table.EnsureColumn(SubjectColumn)
	for _, mp := range spec.metaPaths() {
		table.EnsureColumn(mp.Name)
	}
	for _, name := range spec.LevelNames {
		table.EnsureColumn(name)
	}
	for _, vp := range spec.valuePaths() {
		// scalar specs have a static column name; keep it in the schema
		// even when no branch ever resolves it
		if prefix, wildcarded := splitValuePath(vp); !wildcarded {
			table.EnsureColumn(prefix)
		}
	}

	path := expandPath(spec.BasePath, len(spec.LevelNames))
	subjects := 0
	dropped := 0
	for _, id := range profiles.IDs() {
		profile, _ := profiles.Get(id)
		matches, err := ohpath.Expand(profile, path, spec.LevelNames, exclude)
		if err != nil {
			return types.TidyTable{}, types.ResultSummary{}, err
		}
		if len(matches) > 0 {
			subjects++
		}
		for _, m := range matches {
			if !contextInDateRange(m.Context, spec.DateRange) {
				dropped++
				continue
			}
			row := types.Row{SubjectColumn: types.StringCell(id)}
			for _, mp := range spec.metaPaths() {
				row[mp.Name] = types.CellFromValue(ohpath.Resolve(profile, mp.Path, nil))
			}
			for name, key := range m.Context {
				row[name] = types.StringCell(key)
			}
			addValueColumns(row, &table, m.Value, spec.valuePaths(), exclude)
			table.AddRow(row)
		}
	}

	summary := types.ResultSummary{
		Subjects:   subjects,
		Rows:       len(table.Rows),
		Columns:    len(table.Columns),
		Dropped:    dropped,
		DurationMS: time.Since(start).Milliseconds(),
	}
	return table, summary, nil
}

// contextInDateRange reports whether every date-shaped level key of a
// branch falls inside the range.
func contextInDateRange(ctx map[string]string, dr *DateRange) bool {
	if dr == nil {
		return true
	}
	for _, key := range ctx {
		if !InDateRange(key, dr) {
			return false
		}
	}
	return true
}

// ExtractFlat flattens the entire sub-structure under basePath into dotted
// columns, one row per subject. Subjects lacking basePath (or holding a
// non-mapping there) contribute zero rows.
func ExtractFlat(profiles *types.ProfileSet, basePath string, excludePatterns []string) (types.TidyTable, error) {
	exclude, err := ohpath.CompilePatterns(excludePatterns)
	if err != nil {
		return types.TidyTable{}, err
	}
	var table types.TidyTable
	table.EnsureColumn(SubjectColumn)
	for _, id := range profiles.IDs() {
		profile, _ := profiles.Get(id)
		node, ok := ohpath.Resolve(profile, basePath, nil).(map[string]interface{})
		if !ok {
			continue
		}
		row := types.Row{SubjectColumn: types.StringCell(id)}
		flattenInto(row, &table, "", node, exclude)
		table.AddRow(row)
	}
	return table, nil
}

// --- helpers ---

// expandPath appends one wildcard segment per level name to the base path.
func expandPath(basePath string, levels int) string {
	path := basePath
	for i := 0; i < levels; i++ {
		if path == "" {
			path = ohpath.Wildcard
		} else {
			path += "." + ohpath.Wildcard
		}
	}
	return path
}

func validateValuePaths(valuePaths []string) error {
	for _, vp := range valuePaths {
		segs := strings.Split(vp, ".")
		for i, s := range segs {
			if s == "**" {
				return fmt.Errorf("%w: %q", ohpath.ErrDeepWildcard, vp)
			}
			if s == ohpath.Wildcard && i != len(segs)-1 {
				return fmt.Errorf("%w: %q", ErrBadValuePath, vp)
			}
		}
	}
	return nil
}

// addValueColumns resolves every value-path spec against one branch node
// and merges the resulting columns into row. Specs that resolve to nothing
// leave their columns missing for this row, not absent from the schema.
func addValueColumns(row types.Row, table *types.TidyTable, node interface{}, valuePaths []string, exclude ohpath.PatternSet) {
	nodeMap, _ := node.(map[string]interface{})
	for _, vp := range valuePaths {
		prefix, wildcarded := splitValuePath(vp)
		if nodeMap == nil {
			continue
		}
		target := ohpath.Resolve(nodeMap, prefix, nil)
		if !wildcarded {
			if m, ok := target.(map[string]interface{}); ok {
				flattenInto(row, table, prefix, m, exclude)
				continue
			}
			if _, isList := target.([]interface{}); isList {
				continue
			}
			if !ohpath.Exists(nodeMap, prefix) {
				continue
			}
			row[prefix] = types.CellFromValue(target)
			table.EnsureColumn(prefix)
			continue
		}
		m, ok := target.(map[string]interface{})
		if !ok {
			continue
		}
		flattenInto(row, table, prefix, m, exclude)
	}
}

// splitValuePath strips a trailing wildcard segment, returning the literal
// prefix and whether the spec was wildcard-terminated. "*" alone means
// "every immediate child of the branch node" with an empty prefix.
func splitValuePath(vp string) (prefix string, wildcarded bool) {
	if vp == ohpath.Wildcard {
		return "", true
	}
	if strings.HasSuffix(vp, "."+ohpath.Wildcard) {
		return strings.TrimSuffix(vp, "."+ohpath.Wildcard), true
	}
	return vp, false
}

// flattenInto flattens a mapping into dotted column names under prefix.
// Scalars and nulls become cells; lists carry no column; keys matching
// exclude are dropped at every level.
func flattenInto(row types.Row, table *types.TidyTable, prefix string, m map[string]interface{}, exclude ohpath.PatternSet) {
	for _, key := range ohpath.SelectKeys(ohpath.KeysAt(m, ""), ohpath.PatternSet{}, exclude) {
		col := key
		if prefix != "" {
			col = prefix + "." + key
		}
		switch child := m[key].(type) {
		case map[string]interface{}:
			flattenInto(row, table, col, child, exclude)
		case []interface{}:
			continue
		default:
			row[col] = types.CellFromValue(child)
			table.EnsureColumn(col)
		}
	}
}
