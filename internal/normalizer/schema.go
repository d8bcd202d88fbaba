package normalizer

import (
	"fmt"
	"strings"
)

// Column positions of the raw dataset.
const (
	colOrderID = iota
	colDeliveryPersonID
	colDeliveryPersonAge
	colDeliveryPersonRating
	colRestaurantLatitude
	colRestaurantLongitude
	colDeliveryLatitude
	colDeliveryLongitude
	colOrderDate
	colTimeOrdered
	colTimeOrderPicked
	colWeatherCondition
	colTrafficDensity
	colVehicleCondition
	colOrderType
	colVehicleType
	colMultipleDeliveries
	colFestival
	colCity
	colTimeTaken

	NumColumns
)

// RawColumns is the header of the source file, in order.
var RawColumns = [NumColumns]string{
	"ID",
	"Delivery_person_ID",
	"Delivery_person_Age",
	"Delivery_person_Ratings",
	"Restaurant_latitude",
	"Restaurant_longitude",
	"Delivery_location_latitude",
	"Delivery_location_longitude",
	"Order_Date",
	"Time_Orderd",
	"Time_Order_picked",
	"Weatherconditions",
	"Road_traffic_density",
	"Vehicle_condition",
	"Type_of_order",
	"Type_of_vehicle",
	"multiple_deliveries",
	"Festival",
	"City",
	"Time_taken(min)",
}

// CanonicalColumns names each raw position in the normalized schema.
var CanonicalColumns = [NumColumns]string{
	"order_id",
	"delivery_person_id",
	"delivery_person_age",
	"delivery_person_rating",
	"restaurant_latitude",
	"restaurant_longitude",
	"delivery_latitude",
	"delivery_longitude",
	"order_date",
	"time_ordered",
	"time_order_picked",
	"weather_condition",
	"traffic_density",
	"vehicle_condition",
	"order_type",
	"vehicle_type",
	"multiple_deliveries",
	"festival",
	"city",
	"time_taken_minutes",
}

// ColumnIndex returns the position of a canonical column, or -1.
func ColumnIndex(canonical string) int {
	for i, name := range CanonicalColumns {
		if name == canonical {
			return i
		}
	}
	return -1
}

// RawHeader returns the source header as a slice.
func RawHeader() []string {
	return append([]string(nil), RawColumns[:]...)
}

// ValidateHeader checks the column count and, when strict, the column names.
// Columns are mapped by position afterwards, so a reordered header must be
// rejected here rather than silently misread.
func ValidateHeader(header []string, strict bool) error {
	if len(header) != NumColumns {
		return &SchemaError{
			Line:   1,
			Reason: fmt.Sprintf("expected %d columns, got %d", NumColumns, len(header)),
		}
	}
	if !strict {
		return nil
	}
	for i, name := range header {
		if !strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")), RawColumns[i]) {
			return &SchemaError{
				Line:   1,
				Reason: fmt.Sprintf("column %d is %q, expected %q", i+1, name, RawColumns[i]),
			}
		}
	}
	return nil
}
