package models

import (
	"math"
	"strconv"
)

// NullFloat is a float64 that encodes NaN and infinities as JSON null.
// Standard deviations of single-row groups are NaN and must survive encoding.
type NullFloat float64

func (f NullFloat) IsNaN() bool {
	return math.IsNaN(float64(f))
}

func (f NullFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
}

func (f *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NullFloat(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = NullFloat(v)
	return nil
}
