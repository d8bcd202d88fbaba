package models

import "time"

// Order is one normalized delivery order.
type Order struct {
	ID                   string    `json:"order_id"`
	DeliveryPersonID     string    `json:"delivery_person_id"`
	DeliveryPersonAge    int       `json:"delivery_person_age"`
	DeliveryPersonRating float64   `json:"delivery_person_rating"`
	RestaurantLatitude   float64   `json:"restaurant_latitude"`
	RestaurantLongitude  float64   `json:"restaurant_longitude"`
	DeliveryLatitude     float64   `json:"delivery_latitude"`
	DeliveryLongitude    float64   `json:"delivery_longitude"`
	OrderDate            time.Time `json:"order_date"`
	TimeOrdered          string    `json:"time_ordered"`
	TimeOrderPicked      string    `json:"time_order_picked"`
	WeekOfYear           int       `json:"week_of_year"`
	WeatherCondition     string    `json:"weather_condition"`
	TrafficDensity       string    `json:"traffic_density"`
	VehicleCondition     int       `json:"vehicle_condition"`
	OrderType            string    `json:"order_type"`
	VehicleType          string    `json:"vehicle_type"`
	MultipleDeliveries   int       `json:"multiple_deliveries"`
	Festival             string    `json:"festival"`
	City                 string    `json:"city"`
	TimeTakenMinutes     int       `json:"time_taken_minutes"`
}

func (o Order) RestaurantLocation() Location {
	return Location{Lat: o.RestaurantLatitude, Lon: o.RestaurantLongitude}
}

func (o Order) DeliveryLocation() Location {
	return Location{Lat: o.DeliveryLatitude, Lon: o.DeliveryLongitude}
}

// DistanceKm is the haversine distance between the restaurant and the delivery point.
func (o Order) DistanceKm() float64 {
	return o.RestaurantLocation().DistanceTo(o.DeliveryLocation())
}
