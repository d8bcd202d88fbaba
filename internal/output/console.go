package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/samuel262816/curry-company/internal/models"
	"github.com/samuel262816/curry-company/internal/report"
)

// ConsoleOutput prints orders as "[orders] <json>" lines and the report as
// indented JSON.
type ConsoleOutput struct {
	w io.Writer
}

func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	return &ConsoleOutput{w: w}
}

func (c *ConsoleOutput) WriteOrders(_ context.Context, t models.Table) error {
	for _, o := range t.Rows() {
		msg, err := json.Marshal(o)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.w, "[orders] %s\n", msg); err != nil {
			return fmt.Errorf("failed to write to console: %w", err)
		}
	}
	return nil
}

func (c *ConsoleOutput) WriteReport(_ context.Context, r *report.Report) error {
	data, err := r.JSON()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.w, "%s\n", data); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error {
	return nil
}
