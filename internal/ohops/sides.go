package ohops

import (
	"errors"
	"fmt"

	"github.com/quantifiedwork/ohtidy/internal/types"
)

// Side handling for bilateral sensor tables carrying a "side" column.

// SideMode controls how left/right rows are treated.
type SideMode string

const (
	SideLeft    SideMode = "left"    // keep only left rows, drop the side column
	SideRight   SideMode = "right"   // keep only right rows, drop the side column
	SideBoth    SideMode = "both"    // keep both sides as separate rows
	SideAverage SideMode = "average" // average numeric cells where both sides exist
)

// SideColumn is the grouping column bilateral extractions carry.
const SideColumn = "side"

// ErrUnknownSideMode flags an unrecognized mode; this is a caller mistake
// and surfaces immediately rather than being swallowed.
var ErrUnknownSideMode = errors.New("unknown side mode")

// SideResult reports what HandleSides did.
type SideResult struct {
	Table        types.TidyTable
	GroupingVars []string // ["side"] when sides remain separate rows
	Dropped      int      // rows removed (filtered side, or single-sided in average mode)
}

// HandleSides applies a side mode to a table keyed by subject and date.
// Tables without a side column pass through untouched. In average mode only
// subject×date combinations observed on both sides survive, with numeric
// cells averaged over non-missing values; when no combination has both
// sides the table passes through whole with sides kept as a grouping
// variable rather than collapsing to nothing.
func HandleSides(t types.TidyTable, mode SideMode, dateCol string) (SideResult, error) {
	if mode == "" {
		mode = SideBoth
	}
	if !t.HasColumn(SideColumn) {
		return SideResult{Table: t.Clone()}, nil
	}
	switch mode {
	case SideBoth:
		return SideResult{Table: t.Clone(), GroupingVars: []string{SideColumn}}, nil
	case SideLeft, SideRight:
		return filterSide(t, string(mode)), nil
	case SideAverage:
		return averageSides(t, dateCol), nil
	default:
		return SideResult{}, fmt.Errorf("%w: %q", ErrUnknownSideMode, mode)
	}
}

func filterSide(t types.TidyTable, side string) SideResult {
	var out types.TidyTable
	for _, c := range t.Columns {
		if c != SideColumn {
			out.EnsureColumn(c)
		}
	}
	dropped := 0
	for i := range t.Rows {
		if t.Cell(i, SideColumn).Text() != side {
			dropped++
			continue
		}
		row := copyRow(t.Rows[i])
		delete(row, SideColumn)
		out.AddRow(row)
	}
	return SideResult{Table: out, Dropped: dropped}
}

func averageSides(t types.TidyTable, dateCol string) SideResult {
	// numeric columns: anything that carries a number on some row, keys aside
	meta := map[string]struct{}{SubjectColumn: {}, dateCol: {}, SideColumn: {}}
	var numericCols []string
	for _, c := range t.Columns {
		if _, isMeta := meta[c]; isMeta {
			continue
		}
		for i := range t.Rows {
			if _, ok := t.Cell(i, c).Float(); ok {
				numericCols = append(numericCols, c)
				break
			}
		}
	}

	type group struct {
		rows  []int
		sides map[string]struct{}
	}
	groups := make(map[string]*group)
	var order []string
	anyBoth := false
	for i := range t.Rows {
		key := t.Cell(i, SubjectColumn).Text() + "\x1f" + t.Cell(i, dateCol).Text()
		g, ok := groups[key]
		if !ok {
			g = &group{sides: map[string]struct{}{}}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, i)
		g.sides[t.Cell(i, SideColumn).Text()] = struct{}{}
		if len(g.sides) >= 2 {
			anyBoth = true
		}
	}

	// no combination has both sides: averaging would empty the table, so
	// fall back to returning everything with sides kept separate
	if !anyBoth {
		return SideResult{Table: t.Clone(), GroupingVars: []string{SideColumn}}
	}

	var out types.TidyTable
	out.EnsureColumn(SubjectColumn)
	out.EnsureColumn(dateCol)
	for _, c := range numericCols {
		out.EnsureColumn(c)
	}

	dropped := 0
	for _, key := range order {
		g := groups[key]
		if len(g.sides) < 2 {
			dropped += len(g.rows)
			continue
		}
		first := g.rows[0]
		row := types.Row{
			SubjectColumn: t.Cell(first, SubjectColumn),
			dateCol:       t.Cell(first, dateCol),
		}
		for _, c := range numericCols {
			sum, n := 0.0, 0
			for _, i := range g.rows {
				if v, ok := t.Cell(i, c).Float(); ok {
					sum += v
					n++
				}
			}
			if n == 0 {
				row[c] = types.MissingCell()
			} else {
				row[c] = types.NumberCell(sum / float64(n))
			}
		}
		out.AddRow(row)
	}
	return SideResult{Table: out, Dropped: dropped}
}
