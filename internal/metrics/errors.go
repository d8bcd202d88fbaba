package metrics

import (
	"errors"
	"fmt"
)

// ErrNoData matches every *NoDataError.
var ErrNoData = errors.New("no data")

// NoDataError is returned when a metric's parameters select zero rows, so
// callers can tell "nothing to measure" apart from a measured zero.
type NoDataError struct {
	Metric string
	Reason string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("%s: no data: %s", e.Metric, e.Reason)
}

func (e *NoDataError) Is(target error) bool {
	return target == ErrNoData
}
