package ohops

import (
	"sort"
	"time"

	"github.com/quantifiedwork/ohtidy/internal/types"
)

// Derived columns computed after extraction/merging: weekday index,
// within-day session ordinal, within-subject day index.

const (
	WeekdayColumn  = "weekday_num"
	SessionColumn  = "n_session"
	DayIndexColumn = "day_index"
)

// dateLayouts covers the date spellings seen in profile keys, day-first
// first: sensor dates are DD-MM-YYYY, questionnaire dates ISO.
var dateLayouts = []string{"02-01-2006", "2006-01-02", "02/01/2006", "2006/01/02"}

// parseDateGuess tries each known layout in order.
func parseDateGuess(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sessionLayouts covers time-of-day session labels.
var sessionLayouts = []string{"15-04-05", "15:04:05", "15-04", "15:04"}

func parseSessionGuess(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range sessionLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AddWeekday derives an integer weekday column (Monday=0 .. Sunday=6) from
// a textual date column. Unparseable or missing dates get a missing
// weekday, never an error. Returns a modified copy.
func AddWeekday(t types.TidyTable, dateCol string) types.TidyTable {
	out := t.Clone()
	out.EnsureColumn(WeekdayColumn)
	for i := range out.Rows {
		d, ok := parseDateGuess(out.Cell(i, dateCol).Text())
		if !ok {
			out.Rows[i][WeekdayColumn] = types.MissingCell()
			continue
		}
		// time.Weekday has Sunday=0; shift to Monday=0
		out.Rows[i][WeekdayColumn] = types.NumberCell(float64((int(d.Weekday()) + 6) % 7))
	}
	return out
}

// AddSessionNumber derives a 1-based session ordinal within each
// (subject, date) group, ordered by session time of day ascending. Rows
// whose date or session fails to parse keep a missing ordinal but stay in
// the table. Returns a modified copy.
func AddSessionNumber(t types.TidyTable, dateCol, sessionCol string) types.TidyTable {
	out := t.Clone()
	out.EnsureColumn(SessionColumn)

	type member struct {
		row int
		at  time.Time
	}
	groups := make(map[string][]member)
	var order []string

	for i := range out.Rows {
		out.Rows[i][SessionColumn] = types.MissingCell()
		d, okDate := parseDateGuess(out.Cell(i, dateCol).Text())
		s, okSess := parseSessionGuess(out.Cell(i, sessionCol).Text())
		if !okDate || !okSess {
			continue
		}
		key := out.Cell(i, SubjectColumn).Text() + "\x1f" + d.Format("2006-01-02")
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], member{row: i, at: s})
	}

	for _, key := range order {
		members := groups[key]
		sort.SliceStable(members, func(a, b int) bool {
			return members[a].at.Before(members[b].at)
		})
		for n, m := range members {
			out.Rows[m.row][SessionColumn] = types.NumberCell(float64(n + 1))
		}
	}
	return out
}

// AddDayIndex derives a 1-based chronological ordinal of distinct dates
// within each subject. Rows with unparseable dates keep a missing index.
// Returns a modified copy.
func AddDayIndex(t types.TidyTable, dateCol string) types.TidyTable {
	out := t.Clone()
	out.EnsureColumn(DayIndexColumn)

	type dated struct {
		row int
		day time.Time
	}
	bySubject := make(map[string][]dated)
	var order []string

	for i := range out.Rows {
		out.Rows[i][DayIndexColumn] = types.MissingCell()
		d, ok := parseDateGuess(out.Cell(i, dateCol).Text())
		if !ok {
			continue
		}
		id := out.Cell(i, SubjectColumn).Text()
		if _, seen := bySubject[id]; !seen {
			order = append(order, id)
		}
		bySubject[id] = append(bySubject[id], dated{row: i, day: d})
	}

	for _, id := range order {
		rows := bySubject[id]
		distinct := make(map[time.Time]struct{}, len(rows))
		for _, r := range rows {
			distinct[r.day] = struct{}{}
		}
		days := make([]time.Time, 0, len(distinct))
		for d := range distinct {
			days = append(days, d)
		}
		sort.Slice(days, func(a, b int) bool { return days[a].Before(days[b]) })
		ordinal := make(map[time.Time]int, len(days))
		for n, d := range days {
			ordinal[d] = n + 1
		}
		for _, r := range rows {
			out.Rows[r.row][DayIndexColumn] = types.NumberCell(float64(ordinal[r.day]))
		}
	}
	return out
}
