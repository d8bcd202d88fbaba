package output

import (
	"context"

	"github.com/samuel262816/curry-company/internal/models"
	"github.com/samuel262816/curry-company/internal/report"
)

// JSONOutput writes one JSON object per line into data.json of each day
// partition.
type JSONOutput struct {
	store   *store
	tracker Tracker
}

func NewJSONOutput(basePath, folder string) *JSONOutput {
	return &JSONOutput{store: &store{basePath: basePath, folder: folder}, tracker: noopTracker{}}
}

func (j *JSONOutput) WriteOrders(ctx context.Context, t models.Table) error {
	if err := j.store.cleanup(".json"); err != nil {
		return err
	}
	for _, p := range partitionByDay(t) {
		if err := ctx.Err(); err != nil {
			return err
		}
		w, err := j.store.create(ctx, j.store.key("orders", p.path(), "data.json"))
		if err != nil {
			return err
		}
		if err := writeJSONLines(w, p.orders); err != nil {
			discard(w)
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		if err := j.tracker.Add(len(p.orders)); err != nil {
			return err
		}
	}
	return nil
}

func (j *JSONOutput) WriteReport(ctx context.Context, r *report.Report) error {
	return j.store.writeReport(ctx, r)
}

func (j *JSONOutput) Close() error {
	return nil
}
