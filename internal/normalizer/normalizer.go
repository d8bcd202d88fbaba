// Package normalizer turns the raw delivery log into the canonical order table.
package normalizer

import (
	"fmt"
	"io"

	"github.com/samuel262816/curry-company/internal/models"
	"github.com/sirupsen/logrus"
)

// Stats describes what a normalization run kept and dropped.
type Stats struct {
	Read    int            `json:"rows_read"`
	Kept    int            `json:"rows_kept"`
	Dropped map[string]int `json:"rows_dropped"`
}

func (s Stats) TotalDropped() int {
	total := 0
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

type Normalizer struct {
	strictHeader bool
	log          logrus.FieldLogger
	stages       []stage
}

// NewNormalizer builds a normalizer. With strictHeader the header names must
// match the source layout, not just the column count. log may be nil.
func NewNormalizer(strictHeader bool, log logrus.FieldLogger) *Normalizer {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Normalizer{
		strictHeader: strictHeader,
		log:          log,
		stages:       defaultStages(),
	}
}

// Normalize validates raw and runs every stage in order. Rows carrying the
// missing sentinel in a required field are dropped; any parse failure aborts
// the call and no table is returned. raw is not modified.
func (n *Normalizer) Normalize(raw models.RawTable) (models.Table, Stats, error) {
	stats := Stats{Dropped: make(map[string]int)}

	if err := ValidateHeader(raw.Header, n.strictHeader); err != nil {
		return models.Table{}, stats, err
	}

	rows := make([]*row, 0, len(raw.Rows))
	for i, fields := range raw.Rows {
		line := i + 2
		if len(fields) != NumColumns {
			return models.Table{}, stats, &SchemaError{
				Line:   line,
				Reason: fmt.Sprintf("expected %d fields, got %d", NumColumns, len(fields)),
			}
		}
		rows = append(rows, newRow(line, fields))
	}
	stats.Read = len(rows)

	for _, st := range n.stages {
		before := len(rows)
		var err error
		rows, err = st.run(rows)
		if err != nil {
			return models.Table{}, stats, fmt.Errorf("stage %s: %w", st.name, err)
		}
		if dropped := before - len(rows); dropped > 0 {
			stats.Dropped[st.name] += dropped
			n.log.WithFields(logrus.Fields{
				"stage":   st.name,
				"dropped": dropped,
			}).Debug("dropped rows with missing values")
		}
	}

	orders := make([]models.Order, len(rows))
	for i, r := range rows {
		orders[i] = r.order
	}
	stats.Kept = len(orders)

	n.log.WithFields(logrus.Fields{
		"rows":    stats.Read,
		"kept":    stats.Kept,
		"dropped": stats.TotalDropped(),
	}).Info("dataset normalized")

	return models.NewTable(orders), stats, nil
}

// Normalize runs a strict-header normalizer without logging.
func Normalize(raw models.RawTable) (models.Table, Stats, error) {
	return NewNormalizer(true, nil).Normalize(raw)
}

// Denormalize renders o back into the raw source layout.
func Denormalize(o models.Order) []string {
	fields := make([]string, NumColumns)
	fields[colOrderID] = o.ID
	fields[colDeliveryPersonID] = o.DeliveryPersonID
	fields[colDeliveryPersonAge] = fmt.Sprint(o.DeliveryPersonAge)
	fields[colDeliveryPersonRating] = formatFloat(o.DeliveryPersonRating)
	fields[colRestaurantLatitude] = formatFloat(o.RestaurantLatitude)
	fields[colRestaurantLongitude] = formatFloat(o.RestaurantLongitude)
	fields[colDeliveryLatitude] = formatFloat(o.DeliveryLatitude)
	fields[colDeliveryLongitude] = formatFloat(o.DeliveryLongitude)
	fields[colOrderDate] = o.OrderDate.Format(OrderDateLayout)
	fields[colTimeOrdered] = o.TimeOrdered
	fields[colTimeOrderPicked] = o.TimeOrderPicked
	fields[colWeatherCondition] = o.WeatherCondition
	fields[colTrafficDensity] = o.TrafficDensity
	fields[colVehicleCondition] = fmt.Sprint(o.VehicleCondition)
	fields[colOrderType] = o.OrderType
	fields[colVehicleType] = o.VehicleType
	fields[colMultipleDeliveries] = fmt.Sprint(o.MultipleDeliveries)
	fields[colFestival] = o.Festival
	fields[colCity] = o.City
	fields[colTimeTaken] = timeTakenMarker + fmt.Sprint(o.TimeTakenMinutes)
	return fields
}

// DenormalizeTable renders t back into a raw table with the source header.
func DenormalizeTable(t models.Table) models.RawTable {
	raw := models.RawTable{Header: RawHeader()}
	for _, o := range t.Rows() {
		raw.Rows = append(raw.Rows, Denormalize(o))
	}
	return raw
}
