package output

import (
	"context"
	"fmt"
	"time"

	"github.com/samuel262816/curry-company/internal/models"
	"github.com/samuel262816/curry-company/internal/report"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

const parquetParallelism = 4

// ParquetOrder is the on-disk layout of an order. OrderDate counts days since
// the Unix epoch.
type ParquetOrder struct {
	OrderID              string  `parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	DeliveryPersonID     string  `parquet:"name=delivery_person_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	DeliveryPersonAge    int32   `parquet:"name=delivery_person_age, type=INT32"`
	DeliveryPersonRating float64 `parquet:"name=delivery_person_rating, type=DOUBLE"`
	RestaurantLatitude   float64 `parquet:"name=restaurant_latitude, type=DOUBLE"`
	RestaurantLongitude  float64 `parquet:"name=restaurant_longitude, type=DOUBLE"`
	DeliveryLatitude     float64 `parquet:"name=delivery_latitude, type=DOUBLE"`
	DeliveryLongitude    float64 `parquet:"name=delivery_longitude, type=DOUBLE"`
	OrderDate            int32   `parquet:"name=order_date, type=INT32, convertedtype=DATE"`
	TimeOrdered          string  `parquet:"name=time_ordered, type=BYTE_ARRAY, convertedtype=UTF8"`
	TimeOrderPicked      string  `parquet:"name=time_order_picked, type=BYTE_ARRAY, convertedtype=UTF8"`
	WeekOfYear           int32   `parquet:"name=week_of_year, type=INT32"`
	WeatherCondition     string  `parquet:"name=weather_condition, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	TrafficDensity       string  `parquet:"name=traffic_density, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	VehicleCondition     int32   `parquet:"name=vehicle_condition, type=INT32"`
	OrderType            string  `parquet:"name=order_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	VehicleType          string  `parquet:"name=vehicle_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	MultipleDeliveries   int32   `parquet:"name=multiple_deliveries, type=INT32"`
	Festival             string  `parquet:"name=festival, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	City                 string  `parquet:"name=city, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	TimeTakenMinutes     int32   `parquet:"name=time_taken_minutes, type=INT32"`
}

func toParquet(o models.Order) ParquetOrder {
	return ParquetOrder{
		OrderID:              o.ID,
		DeliveryPersonID:     o.DeliveryPersonID,
		DeliveryPersonAge:    int32(o.DeliveryPersonAge),
		DeliveryPersonRating: o.DeliveryPersonRating,
		RestaurantLatitude:   o.RestaurantLatitude,
		RestaurantLongitude:  o.RestaurantLongitude,
		DeliveryLatitude:     o.DeliveryLatitude,
		DeliveryLongitude:    o.DeliveryLongitude,
		OrderDate:            int32(o.OrderDate.Unix() / int64((24 * time.Hour).Seconds())),
		TimeOrdered:          o.TimeOrdered,
		TimeOrderPicked:      o.TimeOrderPicked,
		WeekOfYear:           int32(o.WeekOfYear),
		WeatherCondition:     o.WeatherCondition,
		TrafficDensity:       o.TrafficDensity,
		VehicleCondition:     int32(o.VehicleCondition),
		OrderType:            o.OrderType,
		VehicleType:          o.VehicleType,
		MultipleDeliveries:   int32(o.MultipleDeliveries),
		Festival:             o.Festival,
		City:                 o.City,
		TimeTakenMinutes:     int32(o.TimeTakenMinutes),
	}
}

// ParquetOutput writes each day partition as a snappy compressed
// data.parquet file.
type ParquetOutput struct {
	store   *store
	tracker Tracker
}

func NewParquetOutput(basePath, folder string) *ParquetOutput {
	return &ParquetOutput{store: &store{basePath: basePath, folder: folder}, tracker: noopTracker{}}
}

func (p *ParquetOutput) WriteOrders(ctx context.Context, t models.Table) error {
	// clean up existing .parquet files
	if err := p.store.cleanup(".parquet"); err != nil {
		return err
	}
	for _, part := range partitionByDay(t) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.writePartition(ctx, part); err != nil {
			return fmt.Errorf("partition %s: %w", part.path(), err)
		}
		if err := p.tracker.Add(len(part.orders)); err != nil {
			return err
		}
	}
	return nil
}

func (p *ParquetOutput) writePartition(ctx context.Context, part partition) error {
	fw, err := p.store.createParquet(ctx, p.store.key("orders", part.path(), "data.parquet"))
	if err != nil {
		return err
	}

	pw, err := writer.NewParquetWriter(fw, new(ParquetOrder), parquetParallelism)
	if err != nil {
		discard(fw)
		return fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, o := range part.orders {
		if err := pw.Write(toParquet(o)); err != nil {
			discard(fw)
			return fmt.Errorf("failed to write order %s: %w", o.ID, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		discard(fw)
		return err
	}
	return fw.Close()
}

func (p *ParquetOutput) WriteReport(ctx context.Context, r *report.Report) error {
	return p.store.writeReport(ctx, r)
}

func (p *ParquetOutput) Close() error {
	return nil
}
