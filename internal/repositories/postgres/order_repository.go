package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samuel262816/curry-company/internal/models"
)

var orderColumns = []string{
	"order_id", "delivery_person_id", "delivery_person_age", "delivery_person_rating",
	"restaurant_latitude", "restaurant_longitude", "delivery_latitude", "delivery_longitude",
	"order_date", "time_ordered", "time_order_picked", "week_of_year",
	"weather_condition", "traffic_density", "vehicle_condition", "order_type",
	"vehicle_type", "multiple_deliveries", "festival", "city", "time_taken_minutes",
}

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS orders (
            row_id                  BIGSERIAL PRIMARY KEY,
            order_id                TEXT NOT NULL,
            delivery_person_id      TEXT NOT NULL,
            delivery_person_age     INTEGER NOT NULL,
            delivery_person_rating  DOUBLE PRECISION NOT NULL,
            restaurant_latitude     DOUBLE PRECISION NOT NULL,
            restaurant_longitude    DOUBLE PRECISION NOT NULL,
            delivery_latitude       DOUBLE PRECISION NOT NULL,
            delivery_longitude      DOUBLE PRECISION NOT NULL,
            order_date              DATE NOT NULL,
            time_ordered            TEXT NOT NULL,
            time_order_picked       TEXT NOT NULL,
            week_of_year            INTEGER NOT NULL,
            weather_condition       TEXT NOT NULL,
            traffic_density         TEXT NOT NULL,
            vehicle_condition       INTEGER NOT NULL,
            order_type              TEXT NOT NULL,
            vehicle_type            TEXT NOT NULL,
            multiple_deliveries     INTEGER NOT NULL,
            festival                TEXT NOT NULL,
            city                    TEXT NOT NULL,
            time_taken_minutes      INTEGER NOT NULL
        )
    `)
	return err
}

// BulkCreate copies orders in one round trip. The source order is kept in
// row_id so GetAll returns rows the way they were written.
func (r *OrderRepository) BulkCreate(ctx context.Context, orders []models.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := copyOrders(ctx, tx, orders); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ReplaceAll swaps the stored orders for orders. The truncate and the copy
// share one transaction, so a failed copy leaves the previous rows in place.
func (r *OrderRepository) ReplaceAll(ctx context.Context, orders []models.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE TABLE orders RESTART IDENTITY"); err != nil {
		return fmt.Errorf("truncate orders: %w", err)
	}
	if err := copyOrders(ctx, tx, orders); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func copyOrders(ctx context.Context, tx pgx.Tx, orders []models.Order) error {
	rows := pgx.CopyFromSlice(len(orders), func(i int) ([]any, error) {
		o := orders[i]
		return []any{
			o.ID,
			o.DeliveryPersonID,
			o.DeliveryPersonAge,
			o.DeliveryPersonRating,
			o.RestaurantLatitude,
			o.RestaurantLongitude,
			o.DeliveryLatitude,
			o.DeliveryLongitude,
			o.OrderDate,
			o.TimeOrdered,
			o.TimeOrderPicked,
			o.WeekOfYear,
			o.WeatherCondition,
			o.TrafficDensity,
			o.VehicleCondition,
			o.OrderType,
			o.VehicleType,
			o.MultipleDeliveries,
			o.Festival,
			o.City,
			o.TimeTakenMinutes,
		}, nil
	})

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"orders"}, orderColumns, rows)
	if err != nil {
		return fmt.Errorf("copy orders: %w", err)
	}
	if int(n) != len(orders) {
		return fmt.Errorf("copy orders: wrote %d of %d rows", n, len(orders))
	}
	return nil
}

func (r *OrderRepository) GetAll(ctx context.Context) (models.Table, error) {
	query := `
        SELECT
            order_id, delivery_person_id, delivery_person_age, delivery_person_rating,
            restaurant_latitude, restaurant_longitude, delivery_latitude, delivery_longitude,
            order_date, time_ordered, time_order_picked, week_of_year,
            weather_condition, traffic_density, vehicle_condition, order_type,
            vehicle_type, multiple_deliveries, festival, city, time_taken_minutes
        FROM orders
        ORDER BY row_id
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return models.Table{}, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		err := rows.Scan(
			&o.ID,
			&o.DeliveryPersonID,
			&o.DeliveryPersonAge,
			&o.DeliveryPersonRating,
			&o.RestaurantLatitude,
			&o.RestaurantLongitude,
			&o.DeliveryLatitude,
			&o.DeliveryLongitude,
			&o.OrderDate,
			&o.TimeOrdered,
			&o.TimeOrderPicked,
			&o.WeekOfYear,
			&o.WeatherCondition,
			&o.TrafficDensity,
			&o.VehicleCondition,
			&o.OrderType,
			&o.VehicleType,
			&o.MultipleDeliveries,
			&o.Festival,
			&o.City,
			&o.TimeTakenMinutes,
		)
		if err != nil {
			return models.Table{}, err
		}
		o.OrderDate = o.OrderDate.UTC()
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return models.Table{}, err
	}
	return models.NewTable(orders), nil
}

func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders").Scan(&count)
	return count, err
}

func (r *OrderRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE orders RESTART IDENTITY")
	return err
}
