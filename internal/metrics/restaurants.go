package metrics

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/samuel262816/curry-company/internal/models"
)

// MeanDeliveryDistance is the mean restaurant-to-customer haversine distance
// in kilometers, rounded to two decimals.
func MeanDeliveryDistance(t models.Table) (float64, error) {
	if t.Len() == 0 {
		return 0, &NoDataError{Metric: "mean_delivery_distance", Reason: "table is empty"}
	}
	return round2(mean(distances(t.Rows()))), nil
}

type CityDistance struct {
	City           string  `json:"city"`
	MeanDistanceKm float64 `json:"mean_distance_km"`
	Share          float64 `json:"share"`
}

// MeanDistanceByCity averages the delivery distance per city and expresses
// each mean as a share of the sum of means, for pie charts.
func MeanDistanceByCity(t models.Table) []CityDistance {
	groups := lo.GroupBy(t.Rows(), ByCity.Value)

	out := make([]CityDistance, 0, len(groups))
	var total float64
	for _, city := range sortedKeys(groups) {
		m := mean(distances(groups[city]))
		total += m
		out = append(out, CityDistance{City: city, MeanDistanceKm: m})
	}
	for i := range out {
		if total > 0 {
			out[i].Share = out[i].MeanDistanceKm / total
		}
	}
	return out
}

// Operation selects the statistic FestivalTimeStat returns.
type Operation string

const (
	MeanTime Operation = "mean_time"
	StdTime  Operation = "std_time"
)

// FestivalTimeStat returns the mean or sample standard deviation of the
// delivery time of orders whose festival flag equals festival.
func FestivalTimeStat(t models.Table, festival string, op Operation) (float64, error) {
	matching := t.Where(func(o models.Order) bool {
		return o.Festival == festival
	})
	if matching.Len() == 0 {
		return 0, &NoDataError{
			Metric: "festival_time_stat",
			Reason: fmt.Sprintf("no orders with festival=%q", festival),
		}
	}

	values := timesTaken(matching.Rows())
	switch op {
	case MeanTime:
		return mean(values), nil
	case StdTime:
		return stdDev(values), nil
	default:
		return 0, fmt.Errorf("festival_time_stat: unknown operation %q", op)
	}
}

type TimeStat struct {
	City           string           `json:"city"`
	TrafficDensity string           `json:"traffic_density,omitempty"`
	OrderType      string           `json:"order_type,omitempty"`
	MeanTime       float64          `json:"mean_time"`
	StdTime        models.NullFloat `json:"std_time"`
}

func timeStat(orders []models.Order) (float64, models.NullFloat) {
	values := timesTaken(orders)
	return mean(values), models.NullFloat(stdDev(values))
}

// MeanTimeByCity reports delivery time mean and deviation per city.
func MeanTimeByCity(t models.Table) []TimeStat {
	groups := lo.GroupBy(t.Rows(), ByCity.Value)

	out := make([]TimeStat, 0, len(groups))
	for _, city := range sortedKeys(groups) {
		m, s := timeStat(groups[city])
		out = append(out, TimeStat{City: city, MeanTime: m, StdTime: s})
	}
	return out
}

// MeanTimeByCityAndTraffic feeds the city/traffic sunburst.
func MeanTimeByCityAndTraffic(t models.Table) []TimeStat {
	groups := groupByPair(t, cityTraffic)

	out := make([]TimeStat, 0, len(groups))
	for _, k := range sortedPairs(groups) {
		m, s := timeStat(groups[k])
		out = append(out, TimeStat{City: k.first, TrafficDensity: k.second, MeanTime: m, StdTime: s})
	}
	return out
}

func MeanTimeByCityAndOrderType(t models.Table) []TimeStat {
	groups := groupByPair(t, func(o models.Order) pair {
		return pair{o.City, o.OrderType}
	})

	out := make([]TimeStat, 0, len(groups))
	for _, k := range sortedPairs(groups) {
		m, s := timeStat(groups[k])
		out = append(out, TimeStat{City: k.first, OrderType: k.second, MeanTime: m, StdTime: s})
	}
	return out
}
