package models

import (
	"encoding/json"
	"math"
	"testing"
)

func TestTableWhereReturnsNewTable(t *testing.T) {
	t.Parallel()

	source := []Order{{ID: "a", City: CityUrban}, {ID: "b", City: CityMetropolitan}, {ID: "c", City: CityUrban}}
	table := NewTable(source)
	source[0].ID = "changed"

	urban := table.Where(func(o Order) bool { return o.City == CityUrban })

	if urban.Len() != 2 || urban.At(0).ID != "a" || urban.At(1).ID != "c" {
		t.Fatalf("unexpected filtered rows: %+v", urban.Rows())
	}
	if table.Len() != 3 || table.At(0).ID != "a" {
		t.Fatalf("table changed after filtering: %+v", table.Rows())
	}

	rows := table.Rows()
	rows[1].ID = "mutated"
	if table.At(1).ID != "b" {
		t.Fatal("Rows must return a copy")
	}
}

func TestOrderDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		order Order
		want  float64
	}{
		{
			name:  "same point",
			order: Order{RestaurantLatitude: 12.9, RestaurantLongitude: 77.6, DeliveryLatitude: 12.9, DeliveryLongitude: 77.6},
			want:  0,
		},
		{
			name:  "one degree of latitude",
			order: Order{RestaurantLatitude: 0, RestaurantLongitude: 0, DeliveryLatitude: 1, DeliveryLongitude: 0},
			want:  111.195,
		},
		{
			name:  "indore sample",
			order: Order{RestaurantLatitude: 22.745049, RestaurantLongitude: 75.892471, DeliveryLatitude: 22.765049, DeliveryLongitude: 75.912471},
			want:  3.025,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.order.DistanceKm()
			if math.Abs(got-tt.want) > 0.01 {
				t.Fatalf("expected %.3f km, got %.3f km", tt.want, got)
			}
		})
	}
}

func TestNullFloatJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Std NullFloat `json:"std"`
	}

	data, err := json.Marshal(payload{Std: NullFloat(math.NaN())})
	if err != nil {
		t.Fatalf("marshal NaN: %v", err)
	}
	if string(data) != `{"std":null}` {
		t.Fatalf("expected null, got %s", data)
	}

	data, err = json.Marshal(payload{Std: 1.25})
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}
	if string(data) != `{"std":1.25}` {
		t.Fatalf("expected 1.25, got %s", data)
	}

	var decoded payload
	if err := json.Unmarshal([]byte(`{"std":null}`), &decoded); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !decoded.Std.IsNaN() {
		t.Fatalf("expected NaN after decoding null, got %v", decoded.Std)
	}
}
