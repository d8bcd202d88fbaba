package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samuel262816/curry-company/internal/report"
)

// ReportRepository keeps every generated report as a JSONB snapshot.
type ReportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

func (r *ReportRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS dashboard_reports (
            id            TEXT PRIMARY KEY,
            generated_at  TIMESTAMPTZ NOT NULL,
            orders        INTEGER NOT NULL,
            body          JSONB NOT NULL
        )
    `)
	return err
}

func (r *ReportRepository) Save(ctx context.Context, rep *report.Report) error {
	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", rep.ID, err)
	}

	query := `
        INSERT INTO dashboard_reports (id, generated_at, orders, body)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO UPDATE
        SET generated_at = EXCLUDED.generated_at,
            orders = EXCLUDED.orders,
            body = EXCLUDED.body
    `
	_, err = r.pool.Exec(ctx, query, rep.ID, rep.GeneratedAt, rep.Orders, body)
	return err
}

func (r *ReportRepository) Latest(ctx context.Context) (*report.Report, error) {
	var body []byte
	err := r.pool.QueryRow(ctx,
		"SELECT body FROM dashboard_reports ORDER BY generated_at DESC LIMIT 1",
	).Scan(&body)
	if err != nil {
		return nil, err
	}

	var rep report.Report
	if err := json.Unmarshal(body, &rep); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &rep, nil
}
