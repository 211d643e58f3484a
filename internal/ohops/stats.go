package ohops

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/quantifiedwork/ohtidy/internal/types"
)

// Descriptive statistics over a tidy table's numeric columns. This is
// interface-level QA for the downstream modeling pipeline, not inference.

// OutcomeSummary describes one numeric column.
type OutcomeSummary struct {
	Outcome  string  `json:"outcome"`
	N        int     `json:"n"`
	Missing  int     `json:"missing"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	P25      float64 `json:"p25"`
	Median   float64 `json:"median"`
	P75      float64 `json:"p75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
}

// SummarizeOutcomes computes per-column summaries. A nil outcome list means
// every column that holds at least one numeric cell, subject_id aside.
// Columns with no observations report NaN statistics and a full missing
// count.
func SummarizeOutcomes(t types.TidyTable, outcomes []string) []OutcomeSummary {
	if outcomes == nil {
		outcomes = NumericColumns(t)
	}
	out := make([]OutcomeSummary, 0, len(outcomes))
	for _, col := range outcomes {
		values, missing := columnValues(t, col)
		s := OutcomeSummary{Outcome: col, N: len(values), Missing: missing}
		if len(values) == 0 {
			nan := math.NaN()
			s.Mean, s.Std, s.Min, s.P25, s.Median, s.P75, s.Max, s.Skewness =
				nan, nan, nan, nan, nan, nan, nan, nan
			out = append(out, s)
			continue
		}
		sort.Float64s(values)
		s.Mean = stat.Mean(values, nil)
		s.Std = stat.StdDev(values, nil)
		s.Min = values[0]
		s.Max = values[len(values)-1]
		s.P25 = stat.Quantile(0.25, stat.Empirical, values, nil)
		s.Median = stat.Quantile(0.5, stat.Empirical, values, nil)
		s.P75 = stat.Quantile(0.75, stat.Empirical, values, nil)
		s.Skewness = stat.Skew(values, nil)
		out = append(out, s)
	}
	return out
}

// VarianceCheck flags degenerate outcomes that would break model fitting.
type VarianceCheck struct {
	Outcome      string  `json:"outcome"`
	N            int     `json:"n"`
	NUnique      int     `json:"n_unique"`
	PctMode      float64 `json:"pct_mode"` // share of the most common value
	IsDegenerate bool    `json:"is_degenerate"`
	Reason       string  `json:"reason"`
}

// maxModeShare is the modal-share threshold above which an outcome counts
// as degenerate.
const maxModeShare = 0.95

// CheckVariance inspects each outcome for degeneracy: no observations, a
// single unique value, or one value dominating the distribution.
func CheckVariance(t types.TidyTable, outcomes []string) []VarianceCheck {
	if outcomes == nil {
		outcomes = NumericColumns(t)
	}
	out := make([]VarianceCheck, 0, len(outcomes))
	for _, col := range outcomes {
		values, _ := columnValues(t, col)
		vc := VarianceCheck{Outcome: col, N: len(values)}
		counts := make(map[float64]int, len(values))
		modeCount := 0
		for _, v := range values {
			counts[v]++
			if counts[v] > modeCount {
				modeCount = counts[v]
			}
		}
		vc.NUnique = len(counts)
		if len(values) > 0 {
			vc.PctMode = float64(modeCount) / float64(len(values))
		}
		switch {
		case vc.N == 0:
			vc.IsDegenerate = true
			vc.Reason = "no observations"
		case vc.NUnique == 1:
			vc.IsDegenerate = true
			vc.Reason = "constant value"
		case vc.PctMode >= maxModeShare:
			vc.IsDegenerate = true
			vc.Reason = "dominant mode"
		}
		out = append(out, vc)
	}
	return out
}

// MissingnessReport summarizes missing cells per outcome and overall.
type MissingnessReport struct {
	PerOutcome   []OutcomeMissing `json:"per_outcome"`
	TotalMissing int              `json:"total_missing"`
	TotalCells   int              `json:"total_cells"`
	PctMissing   float64          `json:"pct_missing"`
}

// OutcomeMissing is per-column missingness.
type OutcomeMissing struct {
	Outcome string  `json:"outcome"`
	Missing int     `json:"missing"`
	Total   int     `json:"total"`
	Pct     float64 `json:"pct"`
}

// Missingness reports missing-cell counts for the outcomes.
func Missingness(t types.TidyTable, outcomes []string) MissingnessReport {
	if outcomes == nil {
		outcomes = NumericColumns(t)
	}
	rep := MissingnessReport{}
	for _, col := range outcomes {
		_, missing := columnValues(t, col)
		total := len(t.Rows)
		om := OutcomeMissing{Outcome: col, Missing: missing, Total: total}
		if total > 0 {
			om.Pct = 100 * float64(missing) / float64(total)
		}
		rep.PerOutcome = append(rep.PerOutcome, om)
		rep.TotalMissing += missing
		rep.TotalCells += total
	}
	if rep.TotalCells > 0 {
		rep.PctMissing = 100 * float64(rep.TotalMissing) / float64(rep.TotalCells)
	}
	return rep
}

// NumericColumns lists columns holding at least one numeric cell,
// subject_id excluded, in schema order.
func NumericColumns(t types.TidyTable) []string {
	var out []string
	for _, col := range t.Columns {
		if col == SubjectColumn {
			continue
		}
		for i := range t.Rows {
			if _, ok := t.Cell(i, col).Float(); ok {
				out = append(out, col)
				break
			}
		}
	}
	return out
}

func columnValues(t types.TidyTable, col string) (values []float64, missing int) {
	for i := range t.Rows {
		c := t.Cell(i, col)
		if v, ok := c.Float(); ok {
			values = append(values, v)
			continue
		}
		missing++
	}
	return values, missing
}
