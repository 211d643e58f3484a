package ohops

import (
	"strings"

	"github.com/quantifiedwork/ohtidy/internal/types"
)

// Group-aware missing-value fill. Distribution metric columns share a
// dotted prefix ("Noise_distributions.low", "Noise_distributions.high");
// within an observed window a bin that reported nothing is a true zero,
// while a window with no observation at all stays missing.

// AutofillOptions configures AutofillGroups.
type AutofillOptions struct {
	// MinGroupSize is the minimum number of member columns a prefix group
	// needs before it is filled. Zero means the default of 2.
	MinGroupSize int `json:"min_group_size" yaml:"min_group_size"`

	// GroupMarker restricts filling to columns whose name contains this
	// substring. Empty means the default "distributions".
	GroupMarker string `json:"group_marker" yaml:"group_marker"`
}

const (
	defaultMinGroupSize = 2
	defaultGroupMarker  = "distributions"
)

func (o AutofillOptions) minGroupSize() int {
	if o.MinGroupSize <= 0 {
		return defaultMinGroupSize
	}
	return o.MinGroupSize
}

func (o AutofillOptions) groupMarker() string {
	if o.GroupMarker == "" {
		return defaultGroupMarker
	}
	return o.GroupMarker
}

// AutofillGroups zero-fills missing cells inside same-prefix column groups,
// row by row: if every member of a group is missing on a row the row stays
// missing, but if any member is observed the remaining missing members
// become zero. Only columns whose name carries the group marker and a
// dotted prefix participate, and only groups of at least MinGroupSize.
// Returns a modified copy; applying it twice equals applying it once.
func AutofillGroups(t types.TidyTable, opts AutofillOptions) types.TidyTable {
	out := t.Clone()

	// group candidate columns by the prefix before the final '.'
	groups := make(map[string][]string)
	var order []string
	for _, c := range out.Columns {
		if !strings.Contains(c, ".") || !strings.Contains(c, opts.groupMarker()) {
			continue
		}
		prefix := c[:strings.LastIndex(c, ".")]
		if _, seen := groups[prefix]; !seen {
			order = append(order, prefix)
		}
		groups[prefix] = append(groups[prefix], c)
	}

	for _, prefix := range order {
		cols := groups[prefix]
		if len(cols) < opts.minGroupSize() {
			continue
		}
		for i := range out.Rows {
			anyObserved := false
			for _, c := range cols {
				if !out.Cell(i, c).IsMissing() {
					anyObserved = true
					break
				}
			}
			if !anyObserved {
				continue
			}
			for _, c := range cols {
				if out.Cell(i, c).IsMissing() {
					out.Rows[i][c] = types.NumberCell(0)
				}
			}
		}
	}
	return out
}
