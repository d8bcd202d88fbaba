// Package metrics computes the dashboard aggregations over a normalized
// order table. Every function is pure: it reads the table and never
// modifies it.
package metrics

import (
	"time"

	"github.com/samber/lo"
	"github.com/samuel262816/curry-company/internal/models"
)

// Filter narrows a table the way the dashboard sidebar does.
type Filter struct {
	// Before keeps orders strictly before this date. Zero disables the bound.
	Before time.Time `json:"before"`
	// Traffic keeps orders in these traffic categories. Empty keeps all.
	Traffic []string `json:"traffic"`
}

// Apply returns a new table; t is left untouched.
func (f Filter) Apply(t models.Table) models.Table {
	return t.Where(func(o models.Order) bool {
		if !f.Before.IsZero() && !o.OrderDate.Before(f.Before) {
			return false
		}
		if len(f.Traffic) > 0 && !lo.Contains(f.Traffic, o.TrafficDensity) {
			return false
		}
		return true
	})
}

// FilterTable is shorthand for Filter{Before: before, Traffic: traffic}.Apply(t).
func FilterTable(t models.Table, before time.Time, traffic []string) models.Table {
	return Filter{Before: before, Traffic: traffic}.Apply(t)
}
