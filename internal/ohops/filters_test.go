package ohops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantifiedwork/ohtidy/internal/types"
)

func filterProfiles() *types.ProfileSet {
	s := types.NewProfileSet()
	s.Add("s1", types.Profile{
		"meta_data": map[string]interface{}{"group": "office"},
		"noise":     map[string]interface{}{},
	})
	s.Add("s2", types.Profile{
		"meta_data": map[string]interface{}{"group": "outdoor"},
	})
	s.Add("s3", types.Profile{
		"meta_data": map[string]interface{}{"group": "office"},
	})
	return s
}

func TestApplyFiltersNilSpecPassthrough(t *testing.T) {
	in := filterProfiles()
	out := ApplyFilters(in, nil)
	assert.Equal(t, in.IDs(), out.IDs())
}

func TestApplyFilters(t *testing.T) {
	t.Run("allow list", func(t *testing.T) {
		out := ApplyFilters(filterProfiles(), &FilterSpec{SubjectIDs: []string{"s2", "s3"}})
		assert.Equal(t, []string{"s2", "s3"}, out.IDs())
	})

	t.Run("deny list", func(t *testing.T) {
		out := ApplyFilters(filterProfiles(), &FilterSpec{ExcludeSubjects: []string{"s2"}})
		assert.Equal(t, []string{"s1", "s3"}, out.IDs())
	})

	t.Run("group", func(t *testing.T) {
		out := ApplyFilters(filterProfiles(), &FilterSpec{Groups: []string{"office"}})
		assert.Equal(t, []string{"s1", "s3"}, out.IDs())
	})

	t.Run("required keys", func(t *testing.T) {
		out := ApplyFilters(filterProfiles(), &FilterSpec{RequireKeys: []string{"noise"}})
		assert.Equal(t, []string{"s1"}, out.IDs())
	})

	t.Run("custom predicate", func(t *testing.T) {
		out := ApplyFilters(filterProfiles(), &FilterSpec{
			Custom: func(id string, _ types.Profile) bool { return id != "s3" },
		})
		assert.Equal(t, []string{"s1", "s2"}, out.IDs())
	})

	t.Run("criteria combine", func(t *testing.T) {
		out := ApplyFilters(filterProfiles(), &FilterSpec{
			Groups:          []string{"office"},
			ExcludeSubjects: []string{"s1"},
		})
		assert.Equal(t, []string{"s3"}, out.IDs())
	})

	t.Run("empty allow list excludes everyone", func(t *testing.T) {
		out := ApplyFilters(filterProfiles(), &FilterSpec{SubjectIDs: []string{}})
		assert.Zero(t, out.Len())
	})
}

func TestFilterDateKeys(t *testing.T) {
	keys := []string{"2025-01-06", "2025-01-10", "2025-02-01", "EMG_weekly_metrics"}
	dr := &DateRange{Start: "2025-01-01", End: "2025-01-31"}

	got := FilterDateKeys(keys, dr)
	require.Equal(t, []string{"2025-01-06", "2025-01-10", "EMG_weekly_metrics"}, got)

	t.Run("nil range keeps all", func(t *testing.T) {
		assert.Equal(t, keys, FilterDateKeys(keys, nil))
	})

	t.Run("unparseable range keeps all", func(t *testing.T) {
		assert.Equal(t, keys, FilterDateKeys(keys, &DateRange{Start: "soon", End: "later"}))
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		got := FilterDateKeys([]string{"2025-01-01", "2025-01-31"}, dr)
		assert.Len(t, got, 2)
	})

	t.Run("day-first keys are restricted too", func(t *testing.T) {
		got := FilterDateKeys([]string{"06-01-2025", "10-02-2025"}, dr)
		assert.Equal(t, []string{"06-01-2025"}, got)
	})
}

func TestInDateRange(t *testing.T) {
	dr := &DateRange{Start: "2025-01-01", End: "2025-01-31"}

	assert.True(t, InDateRange("2025-01-15", dr))
	assert.True(t, InDateRange("06-01-2025", dr))
	assert.False(t, InDateRange("2025-02-01", dr))
	assert.True(t, InDateRange("EMG_weekly_metrics", dr))
	assert.True(t, InDateRange("09-00-00", dr))
	assert.True(t, InDateRange("2025-02-01", nil))
}
