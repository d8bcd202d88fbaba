// Package factories generates synthetic raw delivery logs in the source
// layout, including the padding and missing sentinels of the real export.
package factories

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"
	"github.com/samuel262816/curry-company/internal/models"
	"github.com/samuel262816/curry-company/internal/normalizer"
)

var (
	weatherConditions = []string{"Sunny", "Stormy", "Sandstorms", "Cloudy", "Fog", "Windy"}
	orderTypes        = []string{"Snack", "Meal", "Drinks", "Buffet"}
	vehicleTypes      = []string{"motorcycle", "scooter", "electric_scooter", "bicycle"}
	rawCities         = []string{"Metropolitian", models.CityUrban, models.CitySemiUrban}
)

// hub is a city the deliverers of one code operate in.
type hub struct {
	code     string
	lat, lon float64
}

var hubs = []hub{
	{"INDO", 22.745049, 75.892471},
	{"BANG", 12.913041, 77.683237},
	{"COIMB", 11.003669, 76.976494},
	{"CHEN", 13.022394, 80.242439},
	{"HYD", 17.431668, 78.408321},
	{"MYS", 12.311072, 76.654878},
	{"PUNE", 18.536718, 73.830327},
	{"SUR", 21.173493, 72.792731},
}

var (
	colAge      = normalizer.ColumnIndex("delivery_person_age")
	colRating   = normalizer.ColumnIndex("delivery_person_rating")
	colWeather  = normalizer.ColumnIndex("weather_condition")
	colTraffic  = normalizer.ColumnIndex("traffic_density")
	colMultiple = normalizer.ColumnIndex("multiple_deliveries")
	colFestival = normalizer.ColumnIndex("festival")
	colCity     = normalizer.ColumnIndex("city")

	// paddedColumns are the text cells the export leaves a trailing blank on.
	paddedColumns = []int{
		normalizer.ColumnIndex("order_id"),
		normalizer.ColumnIndex("delivery_person_id"),
		colWeather,
		colTraffic,
		normalizer.ColumnIndex("order_type"),
		normalizer.ColumnIndex("vehicle_type"),
		colFestival,
		colCity,
	}
)

type deliverer struct {
	id     string
	age    int
	rating float64
	hub    hub
}

// RawRecordFactory builds raw rows from a seeded faker, so equal configs
// produce equal datasets.
type RawRecordFactory struct {
	fake       faker.Faker
	rng        *rand.Rand
	cfg        models.GenerateConfig
	deliverers []deliverer
	// nextID numbers orders within the factory so IDs never repeat.
	nextID int
}

func NewRawRecordFactory(cfg models.GenerateConfig) *RawRecordFactory {
	if cfg.Deliverers <= 0 {
		cfg.Deliverers = 1
	}
	if cfg.EndDate.Before(cfg.StartDate) {
		cfg.StartDate, cfg.EndDate = cfg.EndDate, cfg.StartDate
	}

	f := &RawRecordFactory{
		fake: faker.NewWithSeed(rand.NewSource(cfg.Seed)),
		rng:  rand.New(rand.NewSource(cfg.Seed + 1)),
		cfg:  cfg,
	}
	for i := 0; i < cfg.Deliverers; i++ {
		h := hubs[i%len(hubs)]
		f.deliverers = append(f.deliverers, deliverer{
			id:     fmt.Sprintf("%sRES%02dDEL%02d", h.code, f.fake.IntBetween(1, 20), f.fake.IntBetween(1, 3)),
			age:    f.fake.IntBetween(20, 39),
			rating: float64(f.fake.IntBetween(35, 50)) / 10,
			hub:    h,
		})
	}
	return f
}

func (f *RawRecordFactory) missing() bool {
	return f.rng.Float64() < f.cfg.MissingRate
}

func pad(s string) string {
	return s + " "
}

// CreateRawRecord returns one row in the raw column order.
func (f *RawRecordFactory) CreateRawRecord() []string {
	d := f.deliverers[f.rng.Intn(len(f.deliverers))]
	f.nextID++

	o := models.Order{
		ID:                   fmt.Sprintf("0x%04x", f.nextID),
		DeliveryPersonID:     d.id,
		DeliveryPersonAge:    d.age,
		DeliveryPersonRating: d.rating,
		RestaurantLatitude:   round6(d.hub.lat + f.fake.Float64(6, -5, 5)/100),
		RestaurantLongitude:  round6(d.hub.lon + f.fake.Float64(6, -5, 5)/100),
		WeatherCondition:     "conditions " + f.fake.RandomStringElement(weatherConditions),
		TrafficDensity:       f.fake.RandomStringElement(models.TrafficDensities),
		VehicleCondition:     f.fake.IntBetween(0, 3),
		OrderType:            f.fake.RandomStringElement(orderTypes),
		VehicleType:          f.fake.RandomStringElement(vehicleTypes),
		MultipleDeliveries:   f.fake.IntBetween(0, 3),
		Festival:             models.FestivalNo,
		City:                 f.fake.RandomStringElement(rawCities),
	}
	o.DeliveryLatitude = round6(o.RestaurantLatitude + f.fake.Float64(6, 1, 15)/100)
	o.DeliveryLongitude = round6(o.RestaurantLongitude + f.fake.Float64(6, 1, 15)/100)
	if f.fake.IntBetween(1, 50) == 1 {
		o.Festival = models.FestivalYes
	}

	days := int(f.cfg.EndDate.Sub(f.cfg.StartDate).Hours() / 24)
	o.OrderDate = f.cfg.StartDate.AddDate(0, 0, f.fake.IntBetween(0, days))
	ordered := time.Duration(f.fake.IntBetween(8*60, 23*60+30)) * time.Minute
	picked := ordered + time.Duration(5*f.fake.IntBetween(1, 3))*time.Minute
	o.TimeOrdered = clock(ordered)
	o.TimeOrderPicked = clock(picked)

	minutes := f.fake.IntBetween(10, 35)
	if o.TrafficDensity == models.TrafficJam {
		minutes += 10
	}
	if o.Festival == models.FestivalYes {
		minutes += 15
	}
	o.TimeTakenMinutes = min(minutes, 54)

	fields := normalizer.Denormalize(o)
	for _, col := range paddedColumns {
		fields[col] = pad(fields[col])
	}

	// A missing delivery person blanks both age and rating, as the export does.
	if f.missing() {
		fields[colAge] = pad(models.MissingSentinel)
		fields[colRating] = pad(models.MissingSentinel)
	}
	for _, col := range []int{colTraffic, colMultiple, colFestival, colCity} {
		if f.missing() {
			fields[col] = pad(models.MissingSentinel)
		}
	}
	if f.missing() {
		fields[colWeather] = pad("conditions " + models.MissingSentinel)
	}

	return fields
}

// CreateRawTable returns a table of n rows under the source header.
func (f *RawRecordFactory) CreateRawTable(n int) models.RawTable {
	raw := models.RawTable{Header: normalizer.RawHeader(), Rows: make([][]string, 0, n)}
	for i := 0; i < n; i++ {
		raw.Rows = append(raw.Rows, f.CreateRawRecord())
	}
	return raw
}

func round6(v float64) float64 {
	return float64(int64(v*1e6)) / 1e6
}

func clock(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%02d:%02d:00", h, m)
}
