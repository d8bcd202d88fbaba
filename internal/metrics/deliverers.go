package metrics

import (
	"slices"
	"sort"

	"github.com/samber/lo"
	"github.com/samuel262816/curry-company/internal/models"
)

// TopDeliverersPerCity bounds each city's block in TopDeliverersByTime.
const TopDeliverersPerCity = 10

type DelivererOverview struct {
	OldestAge             int `json:"oldest_age"`
	YoungestAge           int `json:"youngest_age"`
	BestVehicleCondition  int `json:"best_vehicle_condition"`
	WorstVehicleCondition int `json:"worst_vehicle_condition"`
}

// Overview reports the age range of the delivery persons and the range of
// vehicle conditions, each from its own column.
func Overview(t models.Table) (DelivererOverview, error) {
	if t.Len() == 0 {
		return DelivererOverview{}, &NoDataError{Metric: "deliverer_overview", Reason: "table is empty"}
	}

	rows := t.Rows()
	ages := lo.Map(rows, func(o models.Order, _ int) int { return o.DeliveryPersonAge })
	conditions := lo.Map(rows, func(o models.Order, _ int) int { return o.VehicleCondition })

	return DelivererOverview{
		OldestAge:             lo.Max(ages),
		YoungestAge:           lo.Min(ages),
		BestVehicleCondition:  lo.Max(conditions),
		WorstVehicleCondition: lo.Min(conditions),
	}, nil
}

// UniqueDeliverers counts distinct delivery persons.
func UniqueDeliverers(t models.Table) int {
	return len(lo.UniqBy(t.Rows(), func(o models.Order) string {
		return o.DeliveryPersonID
	}))
}

type DelivererRating struct {
	DeliveryPersonID string  `json:"delivery_person_id"`
	MeanRating       float64 `json:"mean_rating"`
}

// MeanRatingByDeliverer averages each delivery person's rating. Rows are
// sorted by delivery person id, descending.
func MeanRatingByDeliverer(t models.Table) []DelivererRating {
	groups := lo.GroupBy(t.Rows(), func(o models.Order) string {
		return o.DeliveryPersonID
	})

	ids := sortedKeys(groups)
	slices.Reverse(ids)

	out := make([]DelivererRating, 0, len(ids))
	for _, id := range ids {
		out = append(out, DelivererRating{
			DeliveryPersonID: id,
			MeanRating:       mean(ratings(groups[id])),
		})
	}
	return out
}

// Dimension is a categorical column metrics can group by.
type Dimension struct {
	Name  string
	Value func(models.Order) string
}

var (
	ByTrafficDensity   = Dimension{"traffic_density", func(o models.Order) string { return o.TrafficDensity }}
	ByWeatherCondition = Dimension{"weather_condition", func(o models.Order) string { return o.WeatherCondition }}
	ByCity             = Dimension{"city", func(o models.Order) string { return o.City }}
	ByOrderType        = Dimension{"order_type", func(o models.Order) string { return o.OrderType }}
	ByVehicleType      = Dimension{"vehicle_type", func(o models.Order) string { return o.VehicleType }}
	ByFestival         = Dimension{"festival", func(o models.Order) string { return o.Festival }}
)

type GroupRating struct {
	Group      string           `json:"group"`
	MeanRating float64          `json:"mean_rating"`
	StdRating  models.NullFloat `json:"std_rating"`
}

// RatingStatsBy computes the mean and sample standard deviation of the
// delivery person rating per category of dim. The deviation of a one-row
// group is NaN.
func RatingStatsBy(t models.Table, dim Dimension) []GroupRating {
	groups := lo.GroupBy(t.Rows(), dim.Value)

	out := make([]GroupRating, 0, len(groups))
	for _, g := range sortedKeys(groups) {
		values := ratings(groups[g])
		out = append(out, GroupRating{
			Group:      g,
			MeanRating: mean(values),
			StdRating:  models.NullFloat(stdDev(values)),
		})
	}
	return out
}

// Direction selects which end of the delivery-time ranking to report.
type Direction int

const (
	Fastest Direction = iota
	Slowest
)

func (d Direction) String() string {
	if d == Slowest {
		return "slowest"
	}
	return "fastest"
}

type DelivererTime struct {
	City             string  `json:"city"`
	DeliveryPersonID string  `json:"delivery_person_id"`
	MeanTime         float64 `json:"mean_time"`
}

// TopDeliverersByTime ranks delivery persons by mean delivery time within
// each city and keeps the first TopDeliverersPerCity of each. Cities follow
// models.Cities, not alphabetical order. Equal means keep delivery person id
// order.
func TopDeliverersByTime(t models.Table, dir Direction) []DelivererTime {
	groups := groupByPair(t, func(o models.Order) pair {
		return pair{o.City, o.DeliveryPersonID}
	})

	byCity := make(map[string][]DelivererTime)
	for _, k := range sortedPairs(groups) {
		byCity[k.first] = append(byCity[k.first], DelivererTime{
			City:             k.first,
			DeliveryPersonID: k.second,
			MeanTime:         mean(timesTaken(groups[k])),
		})
	}

	out := make([]DelivererTime, 0, len(models.Cities)*TopDeliverersPerCity)
	for _, city := range models.Cities {
		ranked := byCity[city]
		sort.SliceStable(ranked, func(i, j int) bool {
			if dir == Slowest {
				return ranked[i].MeanTime > ranked[j].MeanTime
			}
			return ranked[i].MeanTime < ranked[j].MeanTime
		})
		if len(ranked) > TopDeliverersPerCity {
			ranked = ranked[:TopDeliverersPerCity]
		}
		out = append(out, ranked...)
	}
	return out
}
