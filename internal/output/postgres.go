package output

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samuel262816/curry-company/internal/models"
	"github.com/samuel262816/curry-company/internal/report"
	"github.com/samuel262816/curry-company/internal/repositories"
	"github.com/samuel262816/curry-company/internal/repositories/postgres"
)

// PostgresOutput replaces the orders table with each written table and keeps
// every report as a snapshot.
type PostgresOutput struct {
	pool    *pgxpool.Pool
	orders  repositories.OrderRepository
	reports repositories.ReportRepository
}

func NewPostgresOutput(ctx context.Context, cfg models.DatabaseConfig) (*PostgresOutput, error) {
	pool, err := postgres.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	out, err := NewPostgresOutputFromRepositories(ctx,
		postgres.NewOrderRepository(pool),
		postgres.NewReportRepository(pool),
	)
	if err != nil {
		pool.Close()
		return nil, err
	}
	out.pool = pool
	return out, nil
}

func NewPostgresOutputFromRepositories(ctx context.Context, orders repositories.OrderRepository, reports repositories.ReportRepository) (*PostgresOutput, error) {
	if err := orders.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("create orders table: %w", err)
	}
	if err := reports.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("create reports table: %w", err)
	}
	return &PostgresOutput{orders: orders, reports: reports}, nil
}

func (p *PostgresOutput) WriteOrders(ctx context.Context, t models.Table) error {
	return p.orders.ReplaceAll(ctx, t.Rows())
}

func (p *PostgresOutput) WriteReport(ctx context.Context, r *report.Report) error {
	return p.reports.Save(ctx, r)
}

func (p *PostgresOutput) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
