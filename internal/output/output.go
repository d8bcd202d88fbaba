// Package output writes normalized orders and dashboard reports to the
// configured destinations: files (JSON, CSV, Parquet) on local disk or S3,
// Kafka topics, Postgres, or the console.
package output

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/samuel262816/curry-company/internal/cloudwriter"
	"github.com/samuel262816/curry-company/internal/models"
	"github.com/samuel262816/curry-company/internal/report"
	"github.com/sirupsen/logrus"
)

type Destination interface {
	WriteOrders(ctx context.Context, t models.Table) error
	WriteReport(ctx context.Context, r *report.Report) error
	Close() error
}

// Tracker is told how many orders were written. *progressbar.ProgressBar
// satisfies it.
type Tracker interface {
	Add(n int) error
}

type noopTracker struct{}

func (noopTracker) Add(int) error { return nil }

type Option func(*options)

type options struct {
	tracker Tracker
	log     logrus.FieldLogger
}

func WithTracker(t Tracker) Option {
	return func(o *options) { o.tracker = t }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

// New builds the destinations enabled in cfg. Without an output path the
// file output falls back to the console.
func New(ctx context.Context, cfg *models.Config, opts ...Option) (Destination, error) {
	o := options{tracker: noopTracker{}, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	var dests Multi
	closeAll := func() { _ = dests.Close() }

	file, err := newFileOutput(ctx, cfg, o)
	if err != nil {
		return nil, err
	}
	dests = append(dests, logged(file, o.log))

	if cfg.KafkaEnabled {
		kafka, err := NewKafkaOutput(cfg)
		if err != nil {
			closeAll()
			return nil, err
		}
		kafka.tracker = o.tracker
		dests = append(dests, logged(kafka, o.log))
	}

	if cfg.PostgresEnabled {
		pg, err := NewPostgresOutput(ctx, cfg.Database)
		if err != nil {
			closeAll()
			return nil, err
		}
		dests = append(dests, logged(pg, o.log))
	}

	if len(dests) == 1 {
		return dests[0], nil
	}
	return dests, nil
}

func newFileOutput(ctx context.Context, cfg *models.Config, o options) (Destination, error) {
	if cfg.OutputPath == "" && cfg.OutputDestination == "local" {
		return NewConsoleOutput(os.Stdout), nil
	}

	st := &store{basePath: cfg.OutputPath, folder: cfg.OutputFolder}
	if cfg.OutputDestination != "local" {
		var factory cloudwriter.CloudWriterFactory
		var err error

		switch cfg.CloudStorage.Provider {
		case "s3":
			factory, err = cloudwriter.NewS3WriterFactory(ctx, cfg.CloudStorage.Region)
		default:
			return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.CloudStorage.Provider)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
		}

		st.cloud = factory
		st.bucket = cfg.CloudStorage.BucketName
	}

	switch cfg.OutputFormat {
	case "json":
		return &JSONOutput{store: st, tracker: o.tracker}, nil
	case "csv":
		return &CSVOutput{store: st, tracker: o.tracker}, nil
	case "parquet":
		return &ParquetOutput{store: st, tracker: o.tracker}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", cfg.OutputFormat)
	}
}

// Multi fans every call out to each destination. A failing destination does
// not stop the others; the errors are joined.
type Multi []Destination

func (m Multi) WriteOrders(ctx context.Context, t models.Table) error {
	var errs []error
	for _, d := range m {
		if err := d.WriteOrders(ctx, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) WriteReport(ctx context.Context, r *report.Report) error {
	var errs []error
	for _, d := range m {
		if err := d.WriteReport(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, d := range m {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type loggedDestination struct {
	Destination
	log logrus.FieldLogger
}

func logged(d Destination, log logrus.FieldLogger) Destination {
	return &loggedDestination{
		Destination: d,
		log:         log.WithField("destination", fmt.Sprintf("%T", d)),
	}
}

func (l *loggedDestination) WriteOrders(ctx context.Context, t models.Table) error {
	if err := l.Destination.WriteOrders(ctx, t); err != nil {
		return fmt.Errorf("%T: write orders: %w", l.Destination, err)
	}
	l.log.WithField("rows", t.Len()).Info("orders written")
	return nil
}

func (l *loggedDestination) WriteReport(ctx context.Context, r *report.Report) error {
	if err := l.Destination.WriteReport(ctx, r); err != nil {
		return fmt.Errorf("%T: write report: %w", l.Destination, err)
	}
	l.log.WithField("report", r.ID).Info("report written")
	return nil
}
