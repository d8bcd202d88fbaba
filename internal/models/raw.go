package models

// RawTable is the dataset exactly as read from disk: a header and rows of
// untyped, possibly padded text fields.
type RawTable struct {
	Header []string
	Rows   [][]string
}

func (r RawTable) Len() int {
	return len(r.Rows)
}
