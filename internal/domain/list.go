package domain

// Row is one rendered list item: the entry plus its formatted cells.
type Row struct {
	Entry Entry
	Cells []string // aligned with ListView.Columns
}

// ListView is the formatted projection handed to a renderer.
type ListView struct {
	Columns []Column
	Rows    []Row
}

// Len returns the number of rows.
func (v ListView) Len() int {
	return len(v.Rows)
}

// Cell returns the formatted value of column c in row i, or "" if absent.
func (v ListView) Cell(i int, c Column) string {
	if i < 0 || i >= len(v.Rows) {
		return ""
	}
	for j, col := range v.Columns {
		if col == c && j < len(v.Rows[i].Cells) {
			return v.Rows[i].Cells[j]
		}
	}
	return ""
}
