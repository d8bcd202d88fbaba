package metrics

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/samuel262816/curry-company/internal/models"
	"gonum.org/v1/gonum/stat"
)

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// stdDev is the sample standard deviation; it is NaN for fewer than two values.
func stdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.StdDev(xs, nil)
}

// median averages the two middle values of an even-sized sample.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func timesTaken(orders []models.Order) []float64 {
	return lo.Map(orders, func(o models.Order, _ int) float64 {
		return float64(o.TimeTakenMinutes)
	})
}

func ratings(orders []models.Order) []float64 {
	return lo.Map(orders, func(o models.Order, _ int) float64 {
		return o.DeliveryPersonRating
	})
}

func distances(orders []models.Order) []float64 {
	return lo.Map(orders, func(o models.Order, _ int) float64 {
		return o.DistanceKm()
	})
}

// pair is a two-column grouping key ordered by first, then second.
type pair struct {
	first, second string
}

func comparePairs(a, b pair) int {
	if c := cmp.Compare(a.first, b.first); c != 0 {
		return c
	}
	return cmp.Compare(a.second, b.second)
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}

func sortedPairs[V any](m map[pair]V) []pair {
	keys := lo.Keys(m)
	slices.SortFunc(keys, comparePairs)
	return keys
}

func groupByPair(t models.Table, key func(models.Order) pair) map[pair][]models.Order {
	return lo.GroupBy(t.Rows(), key)
}

func cityTraffic(o models.Order) pair {
	return pair{o.City, o.TrafficDensity}
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
