package metrics

import (
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/samuel262816/curry-company/internal/models"
)

type DailyOrders struct {
	Date   time.Time `json:"order_date"`
	Orders int       `json:"orders"`
}

// OrdersPerDay counts orders per calendar date, oldest first.
func OrdersPerDay(t models.Table) []DailyOrders {
	groups := lo.GroupBy(t.Rows(), func(o models.Order) time.Time {
		return day(o.OrderDate)
	})

	dates := lo.Keys(groups)
	slices.SortFunc(dates, func(a, b time.Time) int {
		return a.Compare(b)
	})

	out := make([]DailyOrders, 0, len(dates))
	for _, d := range dates {
		out = append(out, DailyOrders{Date: d, Orders: len(groups[d])})
	}
	return out
}

type TrafficShare struct {
	TrafficDensity string  `json:"traffic_density"`
	Orders         int     `json:"orders"`
	Share          float64 `json:"share"`
}

// OrdersPerTrafficShare returns the distribution of orders over traffic
// densities. Shares sum to 1 for a non-empty table.
func OrdersPerTrafficShare(t models.Table) []TrafficShare {
	counts := lo.CountValuesBy(t.Rows(), func(o models.Order) string {
		return o.TrafficDensity
	})

	total := t.Len()
	out := make([]TrafficShare, 0, len(counts))
	for _, traffic := range sortedKeys(counts) {
		out = append(out, TrafficShare{
			TrafficDensity: traffic,
			Orders:         counts[traffic],
			Share:          float64(counts[traffic]) / float64(total),
		})
	}
	return out
}

type CityTrafficOrders struct {
	City           string `json:"city"`
	TrafficDensity string `json:"traffic_density"`
	Orders         int    `json:"orders"`
}

// OrdersPerCityTraffic cross-tabulates orders by city and traffic density.
// Only combinations present in the table are reported.
func OrdersPerCityTraffic(t models.Table) []CityTrafficOrders {
	groups := groupByPair(t, cityTraffic)

	out := make([]CityTrafficOrders, 0, len(groups))
	for _, k := range sortedPairs(groups) {
		out = append(out, CityTrafficOrders{
			City:           k.first,
			TrafficDensity: k.second,
			Orders:         len(groups[k]),
		})
	}
	return out
}

type WeeklyOrders struct {
	Week   int `json:"week_of_year"`
	Orders int `json:"orders"`
}

func OrdersPerWeek(t models.Table) []WeeklyOrders {
	counts := lo.CountValuesBy(t.Rows(), func(o models.Order) int {
		return o.WeekOfYear
	})

	out := make([]WeeklyOrders, 0, len(counts))
	for _, week := range sortedKeys(counts) {
		out = append(out, WeeklyOrders{Week: week, Orders: counts[week]})
	}
	return out
}

type WeeklyDelivererLoad struct {
	Week                    int     `json:"week_of_year"`
	Orders                  int     `json:"orders"`
	DeliveryPersons         int     `json:"delivery_persons"`
	OrdersPerDeliveryPerson float64 `json:"orders_per_delivery_person"`
}

// OrdersPerDeliveryPerWeek divides each week's orders by the number of
// distinct delivery persons active that week. Weeks only appear when they
// hold at least one order, so the divisor is never zero.
func OrdersPerDeliveryPerWeek(t models.Table) []WeeklyDelivererLoad {
	groups := lo.GroupBy(t.Rows(), func(o models.Order) int {
		return o.WeekOfYear
	})

	out := make([]WeeklyDelivererLoad, 0, len(groups))
	for _, week := range sortedKeys(groups) {
		orders := groups[week]
		persons := len(lo.UniqBy(orders, func(o models.Order) string {
			return o.DeliveryPersonID
		}))
		out = append(out, WeeklyDelivererLoad{
			Week:                    week,
			Orders:                  len(orders),
			DeliveryPersons:         persons,
			OrdersPerDeliveryPerson: float64(len(orders)) / float64(persons),
		})
	}
	return out
}

type GroupLocation struct {
	City           string  `json:"city"`
	TrafficDensity string  `json:"traffic_density"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

// DeliveryLocations returns the median delivery coordinate of each
// (city, traffic density) group, one map marker per group.
func DeliveryLocations(t models.Table) []GroupLocation {
	groups := groupByPair(t, cityTraffic)

	out := make([]GroupLocation, 0, len(groups))
	for _, k := range sortedPairs(groups) {
		orders := groups[k]
		out = append(out, GroupLocation{
			City:           k.first,
			TrafficDensity: k.second,
			Latitude: median(lo.Map(orders, func(o models.Order, _ int) float64 {
				return o.DeliveryLatitude
			})),
			Longitude: median(lo.Map(orders, func(o models.Order, _ int) float64 {
				return o.DeliveryLongitude
			})),
		})
	}
	return out
}
