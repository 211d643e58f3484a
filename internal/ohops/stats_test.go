package ohops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantifiedwork/ohtidy/internal/types"
)

func outcomeTable() types.TidyTable {
	var table types.TidyTable
	add := func(subject string, emg types.Cell, noise types.Cell) {
		table.AddRow(types.Row{
			"subject_id": types.StringCell(subject),
			"emg":        emg,
			"noise":      noise,
			"group":      types.StringCell("office"),
		})
	}
	add("s1", types.NumberCell(1), types.NumberCell(5))
	add("s2", types.NumberCell(2), types.NumberCell(5))
	add("s3", types.NumberCell(3), types.MissingCell())
	add("s4", types.NumberCell(4), types.NumberCell(5))
	return table
}

func TestNumericColumns(t *testing.T) {
	got := NumericColumns(outcomeTable())

	// subject_id and the all-string column are not outcomes
	assert.Equal(t, []string{"emg", "noise"}, got)
}

func TestSummarizeOutcomes(t *testing.T) {
	summaries := SummarizeOutcomes(outcomeTable(), []string{"emg", "noise"})
	require.Len(t, summaries, 2)

	emg := summaries[0]
	assert.Equal(t, "emg", emg.Outcome)
	assert.Equal(t, 4, emg.N)
	assert.Zero(t, emg.Missing)
	assert.Equal(t, 2.5, emg.Mean)
	assert.Equal(t, 1.0, emg.Min)
	assert.Equal(t, 4.0, emg.Max)
	assert.InDelta(t, 1.29, emg.Std, 0.01)

	noise := summaries[1]
	assert.Equal(t, 3, noise.N)
	assert.Equal(t, 1, noise.Missing)
	assert.Equal(t, 5.0, noise.Mean)
}

func TestSummarizeOutcomesEmptyColumn(t *testing.T) {
	var table types.TidyTable
	table.EnsureColumn("ghost")
	table.AddRow(types.Row{"subject_id": types.StringCell("s1")})

	summaries := SummarizeOutcomes(table, []string{"ghost"})
	require.Len(t, summaries, 1)
	assert.Zero(t, summaries[0].N)
	assert.Equal(t, 1, summaries[0].Missing)
	assert.True(t, math.IsNaN(summaries[0].Mean))
	assert.True(t, math.IsNaN(summaries[0].Median))
}

func TestCheckVariance(t *testing.T) {
	checks := CheckVariance(outcomeTable(), []string{"emg", "noise"})
	require.Len(t, checks, 2)

	assert.False(t, checks[0].IsDegenerate)
	assert.Equal(t, 4, checks[0].NUnique)

	// noise holds a single repeated value
	assert.True(t, checks[1].IsDegenerate)
	assert.Equal(t, "constant value", checks[1].Reason)
}

func TestCheckVarianceNoObservations(t *testing.T) {
	var table types.TidyTable
	table.EnsureColumn("ghost")
	table.AddRow(types.Row{"subject_id": types.StringCell("s1")})

	checks := CheckVariance(table, []string{"ghost"})
	require.Len(t, checks, 1)
	assert.True(t, checks[0].IsDegenerate)
	assert.Equal(t, "no observations", checks[0].Reason)
}

func TestCheckVarianceDominantMode(t *testing.T) {
	var table types.TidyTable
	for i := 0; i < 99; i++ {
		table.AddRow(types.Row{"x": types.NumberCell(7)})
	}
	table.AddRow(types.Row{"x": types.NumberCell(8)})

	checks := CheckVariance(table, []string{"x"})
	require.Len(t, checks, 1)
	assert.True(t, checks[0].IsDegenerate)
	assert.Equal(t, "dominant mode", checks[0].Reason)
}

func TestMissingness(t *testing.T) {
	rep := Missingness(outcomeTable(), []string{"emg", "noise"})

	require.Len(t, rep.PerOutcome, 2)
	assert.Zero(t, rep.PerOutcome[0].Missing)
	assert.Equal(t, 1, rep.PerOutcome[1].Missing)
	assert.Equal(t, 25.0, rep.PerOutcome[1].Pct)
	assert.Equal(t, 1, rep.TotalMissing)
	assert.Equal(t, 8, rep.TotalCells)
	assert.Equal(t, 12.5, rep.PctMissing)
}
