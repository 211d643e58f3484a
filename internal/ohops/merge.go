package ohops

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quantifiedwork/ohtidy/internal/types"
)

// Keyed outer merge of two tidy tables.

// ErrMergeKeyMissing indicates a merge key column absent from a non-empty
// input table.
var ErrMergeKeyMissing = errors.New("merge key column not found")

// DefaultMergeKeys returns the key columns sensor tables share.
func DefaultMergeKeys() []string {
	return []string{"subject_id", "work_type", "date", "session"}
}

// OuterMerge joins left and right on the key columns: the output holds one
// row for every key combination present in either side, with columns unique
// to one side missing on rows contributed only by the other. When several
// rows share a key tuple on both sides the match is pairwise-cartesian,
// like a relational outer join. An empty side returns the other unchanged;
// two empty sides return an empty table.
func OuterMerge(left, right types.TidyTable, on []string) (types.TidyTable, error) {
	if len(on) == 0 {
		on = DefaultMergeKeys()
	}
	if left.IsEmpty() && right.IsEmpty() {
		return types.TidyTable{}, nil
	}
	if left.IsEmpty() {
		return right.Clone(), nil
	}
	if right.IsEmpty() {
		return left.Clone(), nil
	}
	for _, k := range on {
		if !left.HasColumn(k) || !right.HasColumn(k) {
			return types.TidyTable{}, fmt.Errorf("%w: %q", ErrMergeKeyMissing, k)
		}
	}

	var out types.TidyTable
	for _, c := range left.Columns {
		out.EnsureColumn(c)
	}
	for _, c := range right.Columns {
		out.EnsureColumn(c)
	}

	// index right rows by key tuple
	rightIdx := make(map[string][]int, len(right.Rows))
	for i := range right.Rows {
		k := rowKey(&right, i, on)
		rightIdx[k] = append(rightIdx[k], i)
	}
	used := make(map[int]struct{}, len(right.Rows))

	for i := range left.Rows {
		k := rowKey(&left, i, on)
		matches := rightIdx[k]
		if len(matches) == 0 {
			out.AddRow(copyRow(left.Rows[i]))
			continue
		}
		for _, j := range matches {
			used[j] = struct{}{}
			merged := copyRow(left.Rows[i])
			for col, cell := range right.Rows[j] {
				if _, taken := merged[col]; !taken {
					merged[col] = cell
				}
			}
			out.AddRow(merged)
		}
	}
	for j := range right.Rows {
		if _, ok := used[j]; !ok {
			out.AddRow(copyRow(right.Rows[j]))
		}
	}
	return out, nil
}

// rowKey renders a row's key tuple. Cells render through Text so a missing
// key cell joins with other missing key cells, matching outer-join NaN
// grouping closely enough for keyed sensor tables.
func rowKey(t *types.TidyTable, i int, on []string) string {
	parts := make([]string, 0, len(on))
	for _, k := range on {
		parts = append(parts, t.Cell(i, k).Text())
	}
	return strings.Join(parts, "\x1f")
}

func copyRow(r types.Row) types.Row {
	out := make(types.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
