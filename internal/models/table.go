package models

// Table is an immutable set of normalized orders. Narrowing a table always
// produces a new Table; the rows of an existing one are never modified.
type Table struct {
	rows []Order
}

// NewTable copies rows into a new Table.
func NewTable(rows []Order) Table {
	cp := make([]Order, len(rows))
	copy(cp, rows)
	return Table{rows: cp}
}

func (t Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the table rows in their original order.
func (t Table) Rows() []Order {
	cp := make([]Order, len(t.rows))
	copy(cp, t.rows)
	return cp
}

// At returns the i-th row.
func (t Table) At(i int) Order {
	return t.rows[i]
}

// Where returns a new table holding the rows for which keep returns true.
func (t Table) Where(keep func(Order) bool) Table {
	out := make([]Order, 0, len(t.rows))
	for _, o := range t.rows {
		if keep(o) {
			out = append(out, o)
		}
	}
	return Table{rows: out}
}
