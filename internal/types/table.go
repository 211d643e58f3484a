package types

import "sort"

// Row maps column name to cell. Columns absent from a row are missing cells;
// the table-level schema is what keeps them visible.
type Row map[string]Cell

// TidyTable is the uniform-schema tabular output of extraction. Columns is
// the stable schema: the union of every column ever observed, in first-seen
// order. Rows may omit columns, which reads back as a missing cell.
type TidyTable struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

func (t *TidyTable) IsEmpty() bool {
	return len(t.Rows) == 0
}

func (t *TidyTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EnsureColumn appends name to the schema if unseen. Schema order is
// first-seen order; nothing is ever removed.
func (t *TidyTable) EnsureColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// AddRow appends a row and folds its columns into the schema.
func (t *TidyTable) AddRow(r Row) {
	for _, name := range rowColumnsOrdered(r, t.Columns) {
		t.EnsureColumn(name)
	}
	t.Rows = append(t.Rows, r)
}

// rowColumnsOrdered lists the row's columns with already-known schema
// columns first (in schema order), then the rest sorted for determinism.
func rowColumnsOrdered(r Row, schema []string) []string {
	out := make([]string, 0, len(r))
	seen := make(map[string]struct{}, len(r))
	for _, c := range schema {
		if _, ok := r[c]; ok {
			out = append(out, c)
			seen[c] = struct{}{}
		}
	}
	rest := make([]string, 0, len(r))
	for c := range r {
		if _, ok := seen[c]; !ok {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Cell returns the cell at row i, or a missing cell when the row does not
// carry the column.
func (t *TidyTable) Cell(i int, col string) Cell {
	if i < 0 || i >= len(t.Rows) {
		return MissingCell()
	}
	if c, ok := t.Rows[i][col]; ok {
		return c
	}
	return MissingCell()
}

func (t *TidyTable) SetCell(i int, col string, c Cell) {
	if i < 0 || i >= len(t.Rows) {
		return
	}
	if t.Rows[i] == nil {
		t.Rows[i] = Row{}
	}
	t.Rows[i][col] = c
	t.EnsureColumn(col)
}

// Clone deep-copies schema and rows so callers can mutate freely.
func (t *TidyTable) Clone() TidyTable {
	out := TidyTable{Columns: append([]string(nil), t.Columns...)}
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		rc := make(Row, len(r))
		for k, v := range r {
			rc[k] = v
		}
		out.Rows = append(out.Rows, rc)
	}
	return out
}
