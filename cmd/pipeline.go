package cmd

import (
	"context"
	"fmt"

	"github.com/samuel262816/curry-company/internal/dataset"
	"github.com/samuel262816/curry-company/internal/metrics"
	"github.com/samuel262816/curry-company/internal/models"
	"github.com/samuel262816/curry-company/internal/normalizer"
	"github.com/samuel262816/curry-company/internal/repositories/postgres"
)

// loadTable reads and normalizes the configured dataset.
func loadTable() (models.Table, *normalizer.Stats, error) {
	log := logger.WithField("dataset", cfg.DatasetPath)

	raw, err := dataset.Load(cfg.DatasetPath, cfg.DatasetSheet)
	if err != nil {
		return models.Table{}, nil, fmt.Errorf("load dataset: %w", err)
	}
	log.WithField("rows", raw.Len()).Info("dataset loaded")

	table, stats, err := normalizer.NewNormalizer(cfg.StrictHeader, log).Normalize(raw)
	if err != nil {
		return models.Table{}, nil, fmt.Errorf("normalize %s: %w", cfg.DatasetPath, err)
	}
	return table, &stats, nil
}

// loadStoredTable reads the orders a previous export stored in Postgres.
func loadStoredTable(ctx context.Context) (models.Table, error) {
	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return models.Table{}, err
	}
	defer pool.Close()

	table, err := postgres.NewOrderRepository(pool).GetAll(ctx)
	if err != nil {
		return models.Table{}, fmt.Errorf("read stored orders: %w", err)
	}
	logger.WithField("rows", table.Len()).Info("orders loaded from postgres")
	return table, nil
}

func configuredFilter() metrics.Filter {
	return metrics.Filter{Before: cfg.DateCutoff, Traffic: cfg.TrafficFilter}
}
