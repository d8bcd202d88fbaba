package normalizer

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/samuel262816/curry-company/internal/models"
)

func scenarioRow() []string {
	return []string{
		"1", "D1", "25", "4.5", "10.0", "20.0", "10.001", "20.001", "19-03-2022", "", "",
		"Sunny", "Low", "2", "Snack", "motorcycle", "1", "No", "Urban", "(min) 15",
	}
}

func rowWith(col int, value string) []string {
	r := scenarioRow()
	r[col] = value
	return r
}

func rawTable(rows ...[]string) models.RawTable {
	return models.RawTable{Header: RawHeader(), Rows: rows}
}

func TestNormalizeScenario(t *testing.T) {
	t.Parallel()

	table, stats, err := Normalize(rawTable(scenarioRow()))
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if table.Len() != 1 || stats.Kept != 1 || stats.Read != 1 {
		t.Fatalf("expected one row, got len=%d stats=%+v", table.Len(), stats)
	}

	o := table.At(0)
	if o.DeliveryPersonAge != 25 {
		t.Fatalf("age = %d, want 25", o.DeliveryPersonAge)
	}
	if o.TimeTakenMinutes != 15 {
		t.Fatalf("time taken = %d, want 15", o.TimeTakenMinutes)
	}
	if o.WeekOfYear != 11 {
		t.Fatalf("week of year = %d, want 11", o.WeekOfYear)
	}
	if o.Festival != models.FestivalNo {
		t.Fatalf("festival = %q, want No", o.Festival)
	}
	if !o.OrderDate.Equal(time.Date(2022, 3, 19, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("order date = %v", o.OrderDate)
	}
	if o.DeliveryPersonRating != 4.5 || o.VehicleCondition != 2 || o.MultipleDeliveries != 1 {
		t.Fatalf("unexpected numeric fields: %+v", o)
	}
	if o.RestaurantLatitude != 10.0 || o.DeliveryLongitude != 20.001 {
		t.Fatalf("unexpected coordinates: %+v", o)
	}
	if o.ID != "1" || o.DeliveryPersonID != "D1" || o.City != models.CityUrban || o.TrafficDensity != models.TrafficLow {
		t.Fatalf("unexpected text fields: %+v", o)
	}
}

func TestNormalizeTrimsPadding(t *testing.T) {
	t.Parallel()

	r := scenarioRow()
	r[colDeliveryPersonID] = "  D1 "
	r[colDeliveryPersonAge] = " 25"
	r[colTrafficDensity] = "Low "
	r[colCity] = "Metropolitian "
	r[colTimeTaken] = "(min) 15 "

	table, _, err := Normalize(rawTable(r))
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	o := table.At(0)
	if o.DeliveryPersonID != "D1" || o.TrafficDensity != "Low" || o.TimeTakenMinutes != 15 {
		t.Fatalf("padding not trimmed: %+v", o)
	}
	if o.City != models.CityMetropolitan {
		t.Fatalf("city = %q, want %q", o.City, models.CityMetropolitan)
	}
}

func TestNormalizeDropsMissingAge(t *testing.T) {
	t.Parallel()

	raw := rawTable(scenarioRow(), rowWith(colDeliveryPersonAge, "NaN "), scenarioRow())
	table, stats, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if table.Len() != raw.Len()-1 {
		t.Fatalf("expected %d rows, got %d", raw.Len()-1, table.Len())
	}
	if stats.Dropped["delivery_person_age"] != 1 || stats.TotalDropped() != 1 {
		t.Fatalf("unexpected drop stats: %+v", stats.Dropped)
	}
}

func TestNormalizeDropsSentinelRows(t *testing.T) {
	t.Parallel()

	raw := rawTable(
		scenarioRow(),
		rowWith(colMultipleDeliveries, "NaN"),
		rowWith(colTrafficDensity, "NaN"),
		rowWith(colCity, "NaN"),
		rowWith(colFestival, "NaN"),
	)
	table, stats, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", table.Len())
	}
	for _, stage := range []string{"multiple_deliveries", "traffic_density", "city", "festival"} {
		if stats.Dropped[stage] != 1 {
			t.Fatalf("stage %s dropped %d rows, want 1", stage, stats.Dropped[stage])
		}
	}
	for _, o := range table.Rows() {
		for _, v := range []string{o.TrafficDensity, o.City, o.Festival} {
			if v == models.MissingSentinel {
				t.Fatalf("sentinel survived normalization: %+v", o)
			}
		}
	}
}

func TestNormalizeRowInvalidInTwoFieldsDroppedOnce(t *testing.T) {
	t.Parallel()

	r := scenarioRow()
	r[colDeliveryPersonAge] = "NaN"
	r[colMultipleDeliveries] = "NaN"

	_, stats, err := Normalize(rawTable(r, scenarioRow()))
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if stats.TotalDropped() != 1 || stats.Dropped["multiple_deliveries"] != 0 {
		t.Fatalf("row counted more than once: %+v", stats.Dropped)
	}
}

func TestNormalizeAgeDropPrecedesDurationCheck(t *testing.T) {
	t.Parallel()

	r := scenarioRow()
	r[colDeliveryPersonAge] = "NaN"
	r[colTimeTaken] = "fifteen minutes"

	table, _, err := Normalize(rawTable(r))
	if err != nil {
		t.Fatalf("expected the row to be dropped before the duration stage, got %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("expected empty table, got %d rows", table.Len())
	}
}

func TestNormalizeFormatErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		col    int
		value  string
		column string
	}{
		{name: "date", col: colOrderDate, value: "2022-03-19", column: "order_date"},
		{name: "rating", col: colDeliveryPersonRating, value: "excellent", column: "delivery_person_rating"},
		{name: "rating sentinel", col: colDeliveryPersonRating, value: "NaN", column: "delivery_person_rating"},
		{name: "duration marker", col: colTimeTaken, value: "15", column: "time_taken_minutes"},
		{name: "duration value", col: colTimeTaken, value: "(min) 1x", column: "time_taken_minutes"},
		{name: "negative duration", col: colTimeTaken, value: "(min) -3", column: "time_taken_minutes"},
		{name: "age", col: colDeliveryPersonAge, value: "twenty", column: "delivery_person_age"},
		{name: "latitude", col: colDeliveryLatitude, value: "north", column: "delivery_latitude"},
		{name: "vehicle condition", col: colVehicleCondition, value: "good", column: "vehicle_condition"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			table, _, err := Normalize(rawTable(scenarioRow(), rowWith(tt.col, tt.value)))
			if !errors.Is(err, ErrFormat) {
				t.Fatalf("expected ErrFormat, got %v", err)
			}
			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("expected *FormatError, got %T", err)
			}
			if formatErr.Line != 3 || formatErr.Column != tt.column {
				t.Fatalf("unexpected error location: %+v", formatErr)
			}
			if table.Len() != 0 {
				t.Fatalf("partial table exposed: %d rows", table.Len())
			}
		})
	}
}

func TestNormalizeSchemaErrors(t *testing.T) {
	t.Parallel()

	short := RawHeader()[:NumColumns-1]
	renamed := RawHeader()
	renamed[0], renamed[1] = renamed[1], renamed[0]

	tests := []struct {
		name   string
		raw    models.RawTable
		strict bool
	}{
		{name: "header count", raw: models.RawTable{Header: short}, strict: false},
		{name: "header names", raw: models.RawTable{Header: renamed}, strict: true},
		{name: "short row", raw: rawTable(scenarioRow()[:5]), strict: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := NewNormalizer(tt.strict, nil).Normalize(tt.raw)
			if !errors.Is(err, ErrSchema) {
				t.Fatalf("expected ErrSchema, got %v", err)
			}
		})
	}
}

func TestNormalizeLenientHeaderAcceptsOtherNames(t *testing.T) {
	t.Parallel()

	header := make([]string, NumColumns)
	copy(header, CanonicalColumns[:])

	table, _, err := NewNormalizer(false, nil).Normalize(models.RawTable{Header: header, Rows: [][]string{scenarioRow()}})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", table.Len())
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	second := scenarioRow()
	second[colOrderID] = "2"
	second[colDeliveryPersonID] = "D2"
	second[colOrderDate] = "01-04-2022"
	second[colCity] = "Metropolitian"
	second[colTimeTaken] = "(min) 41"

	first, _, err := Normalize(rawTable(scenarioRow(), second, rowWith(colFestival, "NaN")))
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	again, stats, err := Normalize(DenormalizeTable(first))
	if err != nil {
		t.Fatalf("second Normalize returned error: %v", err)
	}
	if stats.TotalDropped() != 0 {
		t.Fatalf("second pass dropped rows: %+v", stats.Dropped)
	}
	if !reflect.DeepEqual(first.Rows(), again.Rows()) {
		t.Fatalf("rows differ after re-normalization:\n%+v\n%+v", first.Rows(), again.Rows())
	}
}

func TestNormalizeDoesNotModifyInput(t *testing.T) {
	t.Parallel()

	r := scenarioRow()
	r[colCity] = " Metropolitian "
	raw := rawTable(r)

	if _, _, err := Normalize(raw); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if raw.Rows[0][colCity] != " Metropolitian " {
		t.Fatalf("input row was modified: %q", raw.Rows[0][colCity])
	}
}

func TestSundayWeek(t *testing.T) {
	t.Parallel()

	tests := []struct {
		date string
		want int
	}{
		{"2022-01-01", 0}, // Saturday before the first Sunday
		{"2022-01-02", 1},
		{"2022-02-11", 6},
		{"2022-03-19", 11},
		{"2022-04-06", 14},
		{"2023-01-01", 1}, // year starting on a Sunday
		{"2022-12-31", 52},
	}

	for _, tt := range tests {
		d, err := time.Parse("2006-01-02", tt.date)
		if err != nil {
			t.Fatal(err)
		}
		if got := SundayWeek(d); got != tt.want {
			t.Fatalf("SundayWeek(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}
}

func TestColumnIndex(t *testing.T) {
	t.Parallel()

	if got := ColumnIndex("order_id"); got != 0 {
		t.Fatalf("expected order_id at 0, got %d", got)
	}
	if got := ColumnIndex("time_taken_minutes"); got != NumColumns-1 {
		t.Fatalf("expected time_taken_minutes last, got %d", got)
	}
	if got := ColumnIndex("week_of_year"); got != -1 {
		t.Fatalf("derived columns have no raw position, got %d", got)
	}
}
