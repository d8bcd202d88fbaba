package repositories

import (
	"context"

	"github.com/samuel262816/curry-company/internal/models"
	"github.com/samuel262816/curry-company/internal/report"
)

type OrderRepository interface {
	EnsureSchema(ctx context.Context) error
	BulkCreate(ctx context.Context, orders []models.Order) error
	ReplaceAll(ctx context.Context, orders []models.Order) error
	GetAll(ctx context.Context) (models.Table, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type ReportRepository interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, r *report.Report) error
	Latest(ctx context.Context) (*report.Report, error)
}
