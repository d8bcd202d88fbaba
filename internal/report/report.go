// Package report assembles the company, deliverer and restaurant views of
// the dashboard from a normalized order table.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lucsky/cuid"
	"github.com/samuel262816/curry-company/internal/metrics"
	"github.com/samuel262816/curry-company/internal/models"
	"github.com/samuel262816/curry-company/internal/normalizer"
)

type Report struct {
	ID            string            `json:"id"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Filter        metrics.Filter    `json:"filter"`
	Orders        int               `json:"orders"`
	Normalization *normalizer.Stats `json:"normalization,omitempty"`
	Company       CompanyView       `json:"company"`
	Deliverers    DeliverersView    `json:"deliverers"`
	Restaurants   RestaurantsView   `json:"restaurants"`
	// Unavailable lists the metrics that had no rows to work with.
	Unavailable []string `json:"unavailable,omitempty"`

	err error
}

type CompanyView struct {
	OrdersPerDay             []metrics.DailyOrders         `json:"orders_per_day"`
	TrafficShare             []metrics.TrafficShare        `json:"traffic_share"`
	CityTraffic              []metrics.CityTrafficOrders   `json:"city_traffic"`
	OrdersPerWeek            []metrics.WeeklyOrders        `json:"orders_per_week"`
	OrdersPerDeliveryPerWeek []metrics.WeeklyDelivererLoad `json:"orders_per_delivery_per_week"`
	DeliveryLocations        []metrics.GroupLocation       `json:"delivery_locations"`
}

type DeliverersView struct {
	Overview          *metrics.DelivererOverview `json:"overview"`
	RatingByDeliverer []metrics.DelivererRating  `json:"rating_by_deliverer"`
	RatingByTraffic   []metrics.GroupRating      `json:"rating_by_traffic"`
	RatingByWeather   []metrics.GroupRating      `json:"rating_by_weather"`
	Fastest           []metrics.DelivererTime    `json:"fastest"`
	Slowest           []metrics.DelivererTime    `json:"slowest"`
}

// FestivalStats holds delivery time figures rounded to two decimals. A nil
// value means the festival flag matched no orders.
type FestivalStats struct {
	MeanWithFestival    *models.NullFloat `json:"mean_with_festival"`
	StdWithFestival     *models.NullFloat `json:"std_with_festival"`
	MeanWithoutFestival *models.NullFloat `json:"mean_without_festival"`
	StdWithoutFestival  *models.NullFloat `json:"std_without_festival"`
}

type RestaurantsView struct {
	UniqueDeliverers       int                    `json:"unique_deliverers"`
	MeanDistanceKm         *float64               `json:"mean_distance_km"`
	Festival               FestivalStats          `json:"festival"`
	TimeByCity             []metrics.TimeStat     `json:"time_by_city"`
	TimeByCityAndOrderType []metrics.TimeStat     `json:"time_by_city_and_order_type"`
	DistanceByCity         []metrics.CityDistance `json:"distance_by_city"`
	TimeByCityAndTraffic   []metrics.TimeStat     `json:"time_by_city_and_traffic"`
}

// Build narrows source with f and computes every view. A metric without data
// is left empty and listed in Unavailable; the other metrics are unaffected.
// Any other metric failure aborts the build.
func Build(source models.Table, f metrics.Filter) (*Report, error) {
	t := f.Apply(source)
	r := &Report{
		ID:          cuid.New(),
		GeneratedAt: time.Now().UTC(),
		Filter:      f,
		Orders:      t.Len(),
	}

	r.Company = CompanyView{
		OrdersPerDay:             metrics.OrdersPerDay(t),
		TrafficShare:             metrics.OrdersPerTrafficShare(t),
		CityTraffic:              metrics.OrdersPerCityTraffic(t),
		OrdersPerWeek:            metrics.OrdersPerWeek(t),
		OrdersPerDeliveryPerWeek: metrics.OrdersPerDeliveryPerWeek(t),
		DeliveryLocations:        metrics.DeliveryLocations(t),
	}

	r.Deliverers = DeliverersView{
		RatingByDeliverer: metrics.MeanRatingByDeliverer(t),
		RatingByTraffic:   metrics.RatingStatsBy(t, metrics.ByTrafficDensity),
		RatingByWeather:   metrics.RatingStatsBy(t, metrics.ByWeatherCondition),
		Fastest:           metrics.TopDeliverersByTime(t, metrics.Fastest),
		Slowest:           metrics.TopDeliverersByTime(t, metrics.Slowest),
	}
	if overview, err := metrics.Overview(t); r.check("deliverer_overview", err) {
		r.Deliverers.Overview = &overview
	}

	r.Restaurants = RestaurantsView{
		UniqueDeliverers:       metrics.UniqueDeliverers(t),
		TimeByCity:             metrics.MeanTimeByCity(t),
		TimeByCityAndOrderType: metrics.MeanTimeByCityAndOrderType(t),
		DistanceByCity:         metrics.MeanDistanceByCity(t),
		TimeByCityAndTraffic:   metrics.MeanTimeByCityAndTraffic(t),
	}
	if distance, err := metrics.MeanDeliveryDistance(t); r.check("mean_delivery_distance", err) {
		r.Restaurants.MeanDistanceKm = &distance
	}
	r.Restaurants.Festival = FestivalStats{
		MeanWithFestival:    r.festival(t, models.FestivalYes, metrics.MeanTime),
		StdWithFestival:     r.festival(t, models.FestivalYes, metrics.StdTime),
		MeanWithoutFestival: r.festival(t, models.FestivalNo, metrics.MeanTime),
		StdWithoutFestival:  r.festival(t, models.FestivalNo, metrics.StdTime),
	}

	if r.err != nil {
		return nil, r.err
	}
	return r, nil
}

// check records a no-data metric and reports whether the value is usable.
// Other errors are kept for Build to return; only the first one is kept.
func (r *Report) check(metric string, err error) bool {
	if err == nil {
		return true
	}
	if !errors.Is(err, metrics.ErrNoData) {
		if r.err == nil {
			r.err = fmt.Errorf("metric %s: %w", metric, err)
		}
		return false
	}
	r.Unavailable = append(r.Unavailable, metric)
	return false
}

func (r *Report) festival(t models.Table, festival string, op metrics.Operation) *models.NullFloat {
	v, err := metrics.FestivalTimeStat(t, festival, op)
	name := string(op) + "_festival_" + festival
	if !r.check(name, err) {
		return nil
	}
	rounded := models.NullFloat(math.Round(v*100) / 100)
	return &rounded
}

func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
