package normalizer

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/samuel262816/curry-company/internal/models"
)

// OrderDateLayout is the day-month-year layout of Order_Date.
const OrderDateLayout = "02-01-2006"

// timeTakenMarker precedes the minutes in Time_taken(min), e.g. "(min) 24".
const timeTakenMarker = "(min) "

var (
	errMissingMarker = errors.New("missing " + strconv.Quote(timeTakenMarker) + " marker")
	errNotFinite     = errors.New("value is not a finite number")
	errNegative      = errors.New("value is negative")
)

// row is one record moving through the pipeline. fields keeps the raw text by
// position; order accumulates the coerced values.
type row struct {
	line   int
	fields []string
	order  models.Order
}

func newRow(line int, fields []string) *row {
	cp := make([]string, len(fields))
	copy(cp, fields)
	return &row{line: line, fields: cp}
}

// stage is one step of the pipeline. drop, when set, filters the current
// surviving rows; apply, when set, then runs on every survivor.
type stage struct {
	name  string
	drop  func(r *row) bool
	apply func(r *row) error
}

func (s stage) run(rows []*row) ([]*row, error) {
	if s.drop != nil {
		kept := make([]*row, 0, len(rows))
		for _, r := range rows {
			if !s.drop(r) {
				kept = append(kept, r)
			}
		}
		rows = kept
	}
	if s.apply != nil {
		for _, r := range rows {
			if err := s.apply(r); err != nil {
				return nil, err
			}
		}
	}
	return rows, nil
}

func isSentinel(col int) func(r *row) bool {
	return func(r *row) bool {
		return r.fields[col] == models.MissingSentinel
	}
}

// coerce wraps a field parser so its failures become a FormatError that
// points at the offending line and column.
func coerce(col int, parse func(r *row, value string) error) func(r *row) error {
	return func(r *row) error {
		value := r.fields[col]
		if err := parse(r, value); err != nil {
			return &FormatError{
				Line:   r.line,
				Column: CanonicalColumns[col],
				Value:  value,
				Err:    err,
			}
		}
		return nil
	}
}

func parseInt(value string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(value))
}

func parseFinite(value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

func trimStage() stage {
	return stage{
		name: "trim",
		apply: func(r *row) error {
			for i, f := range r.fields {
				r.fields[i] = strings.TrimSpace(f)
			}
			return nil
		},
	}
}

func ageStage() stage {
	return stage{
		name: "delivery_person_age",
		drop: isSentinel(colDeliveryPersonAge),
		apply: coerce(colDeliveryPersonAge, func(r *row, v string) error {
			age, err := parseInt(v)
			r.order.DeliveryPersonAge = age
			return err
		}),
	}
}

func ratingStage() stage {
	return stage{
		name: "delivery_person_rating",
		apply: coerce(colDeliveryPersonRating, func(r *row, v string) error {
			rating, err := parseFinite(v)
			r.order.DeliveryPersonRating = rating
			return err
		}),
	}
}

func orderDateStage() stage {
	return stage{
		name: "order_date",
		apply: coerce(colOrderDate, func(r *row, v string) error {
			date, err := time.Parse(OrderDateLayout, v)
			r.order.OrderDate = date
			return err
		}),
	}
}

func multipleDeliveriesStage() stage {
	return stage{
		name: "multiple_deliveries",
		drop: isSentinel(colMultipleDeliveries),
		apply: coerce(colMultipleDeliveries, func(r *row, v string) error {
			n, err := parseInt(v)
			r.order.MultipleDeliveries = n
			return err
		}),
	}
}

func timeTakenStage() stage {
	return stage{
		name: "time_taken",
		apply: coerce(colTimeTaken, func(r *row, v string) error {
			_, minutes, found := strings.Cut(v, timeTakenMarker)
			if !found {
				return errMissingMarker
			}
			n, err := parseInt(minutes)
			if err != nil {
				return err
			}
			if n < 0 {
				return errNegative
			}
			r.order.TimeTakenMinutes = n
			return nil
		}),
	}
}

func dropSentinelStage(col int) stage {
	return stage{
		name: CanonicalColumns[col],
		drop: isSentinel(col),
	}
}

// cityStage folds the dataset's "Metropolitian" spelling into the canonical name.
func cityStage() stage {
	return stage{
		name: "city_spelling",
		apply: func(r *row) error {
			if strings.EqualFold(r.fields[colCity], "Metropolitian") {
				r.fields[colCity] = models.CityMetropolitan
			}
			return nil
		},
	}
}

func identifiersStage() stage {
	return stage{
		name: "identifiers",
		drop: func(r *row) bool {
			return r.fields[colOrderID] == "" || r.fields[colDeliveryPersonID] == ""
		},
	}
}

func coordinatesStage() stage {
	targets := []struct {
		col int
		set func(o *models.Order, v float64)
	}{
		{colRestaurantLatitude, func(o *models.Order, v float64) { o.RestaurantLatitude = v }},
		{colRestaurantLongitude, func(o *models.Order, v float64) { o.RestaurantLongitude = v }},
		{colDeliveryLatitude, func(o *models.Order, v float64) { o.DeliveryLatitude = v }},
		{colDeliveryLongitude, func(o *models.Order, v float64) { o.DeliveryLongitude = v }},
	}
	return stage{
		name: "coordinates",
		apply: func(r *row) error {
			for _, t := range targets {
				set := t.set
				err := coerce(t.col, func(r *row, v string) error {
					f, err := parseFinite(v)
					set(&r.order, f)
					return err
				})(r)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func vehicleConditionStage() stage {
	return stage{
		name: "vehicle_condition",
		apply: coerce(colVehicleCondition, func(r *row, v string) error {
			n, err := parseInt(v)
			r.order.VehicleCondition = n
			return err
		}),
	}
}

// passthroughStage copies the text fields that keep their raw value.
func passthroughStage() stage {
	return stage{
		name: "passthrough",
		apply: func(r *row) error {
			o := &r.order
			o.ID = r.fields[colOrderID]
			o.DeliveryPersonID = r.fields[colDeliveryPersonID]
			o.TimeOrdered = r.fields[colTimeOrdered]
			o.TimeOrderPicked = r.fields[colTimeOrderPicked]
			o.WeatherCondition = r.fields[colWeatherCondition]
			o.TrafficDensity = r.fields[colTrafficDensity]
			o.OrderType = r.fields[colOrderType]
			o.VehicleType = r.fields[colVehicleType]
			o.Festival = r.fields[colFestival]
			o.City = r.fields[colCity]
			return nil
		},
	}
}

func weekOfYearStage() stage {
	return stage{
		name: "week_of_year",
		apply: func(r *row) error {
			r.order.WeekOfYear = SundayWeek(r.order.OrderDate)
			return nil
		},
	}
}

// defaultStages is the normalization order. Rows dropped by an earlier stage
// are never seen by a later one, so a row with a missing age is dropped even
// if its duration is malformed.
func defaultStages() []stage {
	return []stage{
		trimStage(),
		ageStage(),
		ratingStage(),
		orderDateStage(),
		multipleDeliveriesStage(),
		timeTakenStage(),
		dropSentinelStage(colTrafficDensity),
		dropSentinelStage(colCity),
		dropSentinelStage(colFestival),
		cityStage(),
		identifiersStage(),
		coordinatesStage(),
		vehicleConditionStage(),
		passthroughStage(),
		weekOfYearStage(),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
