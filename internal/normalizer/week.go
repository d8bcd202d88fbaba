package normalizer

import "time"

// SundayWeek returns the week number of t where weeks start on Sunday and
// days before the first Sunday of the year fall in week 0 (strftime %U).
func SundayWeek(t time.Time) int {
	return (t.YearDay() - 1 + 7 - int(t.Weekday())) / 7
}
