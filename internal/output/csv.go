package output

import (
	"context"
	"encoding/csv"
	"strconv"

	"github.com/samuel262816/curry-company/internal/models"
	"github.com/samuel262816/curry-company/internal/normalizer"
	"github.com/samuel262816/curry-company/internal/report"
)

// CSVOutput writes each day partition as data.csv with the canonical column
// names. Reports are nested and go out as JSON.
type CSVOutput struct {
	store   *store
	tracker Tracker
}

func NewCSVOutput(basePath, folder string) *CSVOutput {
	return &CSVOutput{store: &store{basePath: basePath, folder: folder}, tracker: noopTracker{}}
}

// CSVHeader is the canonical header followed by the derived week column.
func CSVHeader() []string {
	return append(append([]string(nil), normalizer.CanonicalColumns[:]...), "week_of_year")
}

func csvRecord(o models.Order) []string {
	float := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		o.ID,
		o.DeliveryPersonID,
		strconv.Itoa(o.DeliveryPersonAge),
		float(o.DeliveryPersonRating),
		float(o.RestaurantLatitude),
		float(o.RestaurantLongitude),
		float(o.DeliveryLatitude),
		float(o.DeliveryLongitude),
		o.OrderDate.Format(models.DateLayout),
		o.TimeOrdered,
		o.TimeOrderPicked,
		o.WeatherCondition,
		o.TrafficDensity,
		strconv.Itoa(o.VehicleCondition),
		o.OrderType,
		o.VehicleType,
		strconv.Itoa(o.MultipleDeliveries),
		o.Festival,
		o.City,
		strconv.Itoa(o.TimeTakenMinutes),
		strconv.Itoa(o.WeekOfYear),
	}
}

func (c *CSVOutput) WriteOrders(ctx context.Context, t models.Table) error {
	if err := c.store.cleanup(".csv"); err != nil {
		return err
	}
	for _, p := range partitionByDay(t) {
		if err := ctx.Err(); err != nil {
			return err
		}
		w, err := c.store.create(ctx, c.store.key("orders", p.path(), "data.csv"))
		if err != nil {
			return err
		}

		csvWriter := csv.NewWriter(w)
		if err := csvWriter.Write(CSVHeader()); err != nil {
			discard(w)
			return err
		}
		for _, o := range p.orders {
			if err := csvWriter.Write(csvRecord(o)); err != nil {
				discard(w)
				return err
			}
		}
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			discard(w)
			return err
		}

		if err := w.Close(); err != nil {
			return err
		}
		if err := c.tracker.Add(len(p.orders)); err != nil {
			return err
		}
	}
	return nil
}

func (c *CSVOutput) WriteReport(ctx context.Context, r *report.Report) error {
	return c.store.writeReport(ctx, r)
}

func (c *CSVOutput) Close() error {
	return nil
}
