package ohops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantifiedwork/ohtidy/internal/types"
)

// End-to-end composition over two sensor families, the way a job config
// drives it: extract both, outer-merge on the shared keys, then derive.

func pipelineProfiles() *types.ProfileSet {
	session := func(level float64, low, high interface{}) map[string]interface{} {
		dist := map[string]interface{}{}
		if low != nil {
			dist["low"] = low
		}
		if high != nil {
			dist["high"] = high
		}
		return map[string]interface{}{"level": level, "Noise_distributions": dist}
	}
	s := types.NewProfileSet()
	s.Add("s1", types.Profile{
		"meta_data": map[string]interface{}{"work_type": "desk"},
		"noise": map[string]interface{}{
			"06-01-2025": map[string]interface{}{
				"09-00-00": session(42, 0.6, 0.4),
				"14-00-00": session(55, 0.2, nil),
			},
		},
		"human_activities": map[string]interface{}{
			"06-01-2025": map[string]interface{}{
				"09-00-00": map[string]interface{}{"steps": 3000.0},
			},
		},
	})
	s.Add("s2", types.Profile{
		"meta_data": map[string]interface{}{"work_type": "field"},
		"human_activities": map[string]interface{}{
			"07-01-2025": map[string]interface{}{
				"10-00-00": map[string]interface{}{"steps": 9000.0},
			},
		},
	})
	return s
}

func TestPipeline(t *testing.T) {
	profiles := pipelineProfiles()
	spec := func(base string) NestedSpec {
		return NestedSpec{BasePath: base, LevelNames: []string{"date", "session"}}
	}

	noise, _, err := ExtractNested(profiles, spec("noise"))
	require.NoError(t, err)
	activities, _, err := ExtractNested(profiles, spec("human_activities"))
	require.NoError(t, err)

	merged, err := OuterMerge(noise, activities, DefaultMergeKeys())
	require.NoError(t, err)

	// s1 morning matches on both sides, s1 afternoon is noise-only,
	// s2 is activities-only
	require.Len(t, merged.Rows, 3)

	steps, ok := merged.Cell(0, "steps").Float()
	require.True(t, ok)
	assert.Equal(t, 3000.0, steps)
	level, ok := merged.Cell(0, "level").Float()
	require.True(t, ok)
	assert.Equal(t, 42.0, level)

	assert.True(t, merged.Cell(1, "steps").IsMissing())
	assert.True(t, merged.Cell(2, "level").IsMissing())

	composed := AddWeekday(merged, "date")
	composed = AddSessionNumber(composed, "date", "session")
	composed = AddDayIndex(composed, "date")
	composed = AutofillGroups(composed, AutofillOptions{})

	// 06-01-2025 is a Monday, 07-01-2025 a Tuesday
	wd, _ := composed.Cell(0, WeekdayColumn).Float()
	assert.Equal(t, 0.0, wd)
	wd, _ = composed.Cell(2, WeekdayColumn).Float()
	assert.Equal(t, 1.0, wd)

	n, _ := composed.Cell(0, SessionColumn).Float()
	assert.Equal(t, 1.0, n)
	n, _ = composed.Cell(1, SessionColumn).Float()
	assert.Equal(t, 2.0, n)

	// the afternoon window observed the low bin, so high fills to zero
	high, ok := composed.Cell(1, "Noise_distributions.high").Float()
	require.True(t, ok)
	assert.Equal(t, 0.0, high)

	// the activities-only row never observed the group; nothing fabricated
	assert.True(t, composed.Cell(2, "Noise_distributions.low").IsMissing())
}
