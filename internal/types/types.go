package types

import (
	"strconv"
)

// Shared types used across ohpath, ohops, loader, etc.

// Profile is one subject's full nested metrics record, parsed from JSON.
// Profiles are owned by the caller and are never mutated here.
type Profile map[string]interface{}

// ProfileSet holds profiles keyed by subject id, preserving insertion order
// so extraction output is reproducible run to run.
type ProfileSet struct {
	ids  []string
	byID map[string]Profile
}

func NewProfileSet() *ProfileSet {
	return &ProfileSet{byID: make(map[string]Profile)}
}

// Add registers a profile under a subject id. Re-adding an id replaces the
// profile in place and keeps the original position.
func (s *ProfileSet) Add(subjectID string, p Profile) {
	if _, ok := s.byID[subjectID]; !ok {
		s.ids = append(s.ids, subjectID)
	}
	s.byID[subjectID] = p
}

func (s *ProfileSet) Get(subjectID string) (Profile, bool) {
	p, ok := s.byID[subjectID]
	return p, ok
}

// IDs returns the subject ids in insertion order (a copy).
func (s *ProfileSet) IDs() []string {
	return append([]string(nil), s.ids...)
}

func (s *ProfileSet) Len() int {
	return len(s.ids)
}

// --- cell types ---

// CellKind tags what a Cell holds.
type CellKind string

const (
	KindMissing CellKind = "missing"
	KindNumber  CellKind = "number"
	KindString  CellKind = "string"
	KindBool    CellKind = "bool"
)

// Cell is a single table value. Numeric cells are float64; the missing
// marker is its own kind so "explicitly null" and "never observed" both
// land on KindMissing and never masquerade as zero.
type Cell struct {
	Kind CellKind `json:"kind"`
	Num  float64  `json:"num,omitempty"`
	Str  string   `json:"str,omitempty"`
	Bool bool     `json:"bool,omitempty"`
}

func MissingCell() Cell         { return Cell{Kind: KindMissing} }
func NumberCell(f float64) Cell { return Cell{Kind: KindNumber, Num: f} }
func StringCell(s string) Cell  { return Cell{Kind: KindString, Str: s} }
func BoolCell(b bool) Cell      { return Cell{Kind: KindBool, Bool: b} }

func (c Cell) IsMissing() bool {
	return c.Kind == KindMissing || c.Kind == ""
}

// Float returns the numeric value and whether the cell is numeric.
func (c Cell) Float() (float64, bool) {
	if c.Kind == KindNumber {
		return c.Num, true
	}
	return 0, false
}

// Text renders the cell for keys and CSV output. Missing cells render empty.
func (c Cell) Text() string {
	switch c.Kind {
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'g', -1, 64)
	case KindString:
		return c.Str
	case KindBool:
		return strconv.FormatBool(c.Bool)
	default:
		return ""
	}
}

// CellFromValue coerces a decoded JSON scalar into a Cell. Mappings, lists
// and nulls coerce to missing; they are not scalar column material.
func CellFromValue(v interface{}) Cell {
	switch x := v.(type) {
	case nil:
		return MissingCell()
	case float64:
		return NumberCell(x)
	case int:
		return NumberCell(float64(x))
	case string:
		return StringCell(x)
	case bool:
		return BoolCell(x)
	default:
		return MissingCell()
	}
}

// --- result summary ---

// ResultSummary reports what an operation touched.
type ResultSummary struct {
	Subjects   int   `json:"subjects"`
	Rows       int   `json:"rows"`
	Columns    int   `json:"columns"`
	Dropped    int   `json:"dropped"`
	DurationMS int64 `json:"durationMs"`
}
