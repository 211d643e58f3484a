package ohops

import (
	"time"

	"github.com/quantifiedwork/ohtidy/internal/ohpath"
	"github.com/quantifiedwork/ohtidy/internal/types"
)

// Subject-level pre-filtering, applied before any extraction runs.

// GroupPath is the fixed profile path holding a subject's group label.
const GroupPath = "meta_data.group"

// CustomFilter is caller-supplied logic over one subject.
type CustomFilter func(subjectID string, profile types.Profile) bool

// DateRange is an inclusive range of YYYY-MM-DD date strings.
type DateRange struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// bounds parses the range endpoints. ok is false for a nil or unparseable
// range, which callers treat as "no restriction".
func (dr *DateRange) bounds() (start, end time.Time, ok bool) {
	if dr == nil {
		return time.Time{}, time.Time{}, false
	}
	const layout = "2006-01-02"
	start, err1 := time.Parse(layout, dr.Start)
	end, err2 := time.Parse(layout, dr.End)
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// InDateRange reports whether a mapping key is admitted by the range.
// Non-date keys always pass (metric names living next to date keys), as
// does everything under a nil or unparseable range.
func InDateRange(key string, dr *DateRange) bool {
	start, end, ok := dr.bounds()
	if !ok {
		return true
	}
	d, ok := ohpath.ParseDateKey(key)
	if !ok {
		return true
	}
	return !d.Before(start) && !d.After(end)
}

// FilterSpec configures subject filtering. Nil slices and fields mean
// "criterion not set"; a nil *FilterSpec passes everything through.
type FilterSpec struct {
	SubjectIDs      []string     `json:"subject_ids,omitempty"`      // allow-list
	ExcludeSubjects []string     `json:"exclude_subjects,omitempty"` // deny-list
	Groups          []string     `json:"groups,omitempty"`           // required meta_data.group membership
	DateRange       *DateRange   `json:"date_range,omitempty"`       // consumed by FilterDateKeys
	RequireKeys     []string     `json:"require_keys,omitempty"`     // all paths must exist
	Custom          CustomFilter `json:"-"`
}

// ApplyFilters returns the subjects passing every configured criterion, in
// their original order. Criteria are tested in a fixed order and
// short-circuit on the first failure: allow-list, deny-list, group,
// required paths, custom predicate.
func ApplyFilters(profiles *types.ProfileSet, spec *FilterSpec) *types.ProfileSet {
	if spec == nil {
		return profiles
	}
	out := types.NewProfileSet()
	for _, id := range profiles.IDs() {
		profile, _ := profiles.Get(id)
		if !passesFilters(id, profile, spec) {
			continue
		}
		out.Add(id, profile)
	}
	return out
}

func passesFilters(subjectID string, profile types.Profile, spec *FilterSpec) bool {
	if spec.SubjectIDs != nil && !containsString(spec.SubjectIDs, subjectID) {
		return false
	}
	if spec.ExcludeSubjects != nil && containsString(spec.ExcludeSubjects, subjectID) {
		return false
	}
	if spec.Groups != nil {
		group, _ := ohpath.Resolve(profile, GroupPath, nil).(string)
		if !containsString(spec.Groups, group) {
			return false
		}
	}
	if spec.RequireKeys != nil {
		for _, path := range spec.RequireKeys {
			if !ohpath.Exists(profile, path) {
				return false
			}
		}
	}
	if spec.Custom != nil && !spec.Custom(subjectID, profile) {
		return false
	}
	return true
}

// FilterDateKeys restricts date-shaped keys to the inclusive range and
// passes everything else through: keys that are not dates (metric names
// living next to date keys) are kept. A nil or unparseable range keeps
// all keys.
func FilterDateKeys(keys []string, dr *DateRange) []string {
	if _, _, ok := dr.bounds(); !ok {
		return keys
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if InDateRange(k, dr) {
			out = append(out, k)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
