package output

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/samuel262816/curry-company/internal/cloudwriter"
	"github.com/samuel262816/curry-company/internal/metrics"
	"github.com/samuel262816/curry-company/internal/models"
	"github.com/samuel262816/curry-company/internal/report"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

func sampleTable() models.Table {
	order := func(id string, day int, city string) models.Order {
		return models.Order{
			ID:                   id,
			DeliveryPersonID:     "INDORES13DEL02",
			DeliveryPersonAge:    37,
			DeliveryPersonRating: 4.9,
			RestaurantLatitude:   22.745049,
			RestaurantLongitude:  75.892471,
			DeliveryLatitude:     22.765049,
			DeliveryLongitude:    75.912471,
			OrderDate:            time.Date(2022, time.March, day, 0, 0, 0, 0, time.UTC),
			TimeOrdered:          "11:30:00",
			TimeOrderPicked:      "11:45:00",
			WeekOfYear:           11,
			WeatherCondition:     "conditions Sunny",
			TrafficDensity:       models.TrafficHigh,
			VehicleCondition:     2,
			OrderType:            "Snack",
			VehicleType:          "motorcycle",
			Festival:             models.FestivalNo,
			City:                 city,
			TimeTakenMinutes:     24,
		}
	}
	return models.NewTable([]models.Order{
		order("0x4607", 19, models.CityUrban),
		order("0xb379", 19, models.CityMetropolitan),
		order("0x5d6d", 25, models.CityUrban),
	})
}

func sampleReport(t *testing.T) *report.Report {
	t.Helper()

	rep, err := report.Build(sampleTable(), metrics.Filter{})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	return rep
}

type countingTracker struct {
	mu    sync.Mutex
	total int
}

func (c *countingTracker) Add(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total += n
	return nil
}

func TestPartitionByDay(t *testing.T) {
	t.Parallel()

	parts := partitionByDay(sampleTable())
	if len(parts) != 2 {
		t.Fatalf("expected 2 partitions, got %d", len(parts))
	}
	if parts[0].path() != "year=2022/month=03/day=19" || len(parts[0].orders) != 2 {
		t.Fatalf("unexpected first partition %s with %d orders", parts[0].path(), len(parts[0].orders))
	}
	if parts[0].orders[0].ID != "0x4607" || parts[0].orders[1].ID != "0xb379" {
		t.Fatal("partition must keep table order")
	}
	if parts[1].path() != "year=2022/month=03/day=25" {
		t.Fatalf("unexpected second partition %s", parts[1].path())
	}
}

func TestJSONOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := NewJSONOutput(dir, "curry")
	tracker := &countingTracker{}
	out.tracker = tracker

	if err := out.WriteOrders(context.Background(), sampleTable()); err != nil {
		t.Fatalf("write orders: %v", err)
	}

	file, err := os.Open(filepath.Join(dir, "curry", "orders", "year=2022", "month=03", "day=19", "data.json"))
	if err != nil {
		t.Fatalf("open partition: %v", err)
	}
	defer file.Close()

	var ids []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var o models.Order
		if err := json.Unmarshal(scanner.Bytes(), &o); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		ids = append(ids, o.ID)
	}
	if strings.Join(ids, ",") != "0x4607,0xb379" {
		t.Fatalf("unexpected orders in partition: %v", ids)
	}
	if tracker.total != 3 {
		t.Fatalf("expected the tracker to see 3 orders, got %d", tracker.total)
	}

	rep := sampleReport(t)
	if err := out.WriteReport(context.Background(), rep); err != nil {
		t.Fatalf("write report: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "curry", "reports", rep.ID+".json")); err != nil {
		t.Fatalf("report file missing: %v", err)
	}
}

func TestJSONOutputRemovesStalePartitions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stale := filepath.Join(dir, "curry", "orders", "year=2021", "month=01", "day=01", "data.json")
	if err := os.MkdirAll(filepath.Dir(stale), os.ModePerm); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := NewJSONOutput(dir, "curry").WriteOrders(context.Background(), sampleTable()); err != nil {
		t.Fatalf("write orders: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected the stale partition to be removed, got %v", err)
	}
}

func TestCSVOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := NewCSVOutput(dir, "curry").WriteOrders(context.Background(), sampleTable()); err != nil {
		t.Fatalf("write orders: %v", err)
	}

	file, err := os.Open(filepath.Join(dir, "curry", "orders", "year=2022", "month=03", "day=25", "data.csv"))
	if err != nil {
		t.Fatalf("open partition: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d records", len(records))
	}
	header, row := records[0], records[1]
	if len(header) != len(row) || header[len(header)-1] != "week_of_year" {
		t.Fatalf("unexpected header %q", header)
	}
	if row[0] != "0x5d6d" || row[8] != "2022-03-25" || row[19] != "24" {
		t.Fatalf("unexpected row %q", row)
	}
}

func TestParquetOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := NewParquetOutput(dir, "curry").WriteOrders(context.Background(), sampleTable()); err != nil {
		t.Fatalf("write orders: %v", err)
	}

	path := filepath.Join(dir, "curry", "orders", "year=2022", "month=03", "day=19", "data.parquet")
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		t.Fatalf("open parquet: %v", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(ParquetOrder), 1)
	if err != nil {
		t.Fatalf("parquet reader: %v", err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	if n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
	rows := make([]ParquetOrder, n)
	if err := pr.Read(&rows); err != nil {
		t.Fatalf("read rows: %v", err)
	}

	want := int32(time.Date(2022, time.March, 19, 0, 0, 0, 0, time.UTC).Unix() / 86400)
	if rows[0].OrderID != "0x4607" || rows[1].City != models.CityMetropolitan || rows[0].OrderDate != want {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

type memoryObject struct {
	bytes.Buffer
	key    string
	bucket *memoryBucket
}

func (m *memoryObject) Write(p []byte) (int, error) {
	if m.bucket.writeErr != nil {
		return 0, m.bucket.writeErr
	}
	return m.Buffer.Write(p)
}

func (m *memoryObject) Close() error {
	m.bucket.mu.Lock()
	defer m.bucket.mu.Unlock()
	m.bucket.uploads[m.key] = m.Bytes()
	return nil
}

func (m *memoryObject) Abort() error {
	m.bucket.mu.Lock()
	defer m.bucket.mu.Unlock()
	m.bucket.aborted++
	return nil
}

type memoryBucket struct {
	mu       sync.Mutex
	uploads  map[string][]byte
	aborted  int
	writeErr error
}

func (b *memoryBucket) NewWriter(_ context.Context, bucket, objectPath string) (cloudwriter.CloudWriter, error) {
	return &memoryObject{key: bucket + "/" + objectPath, bucket: b}, nil
}

func TestCloudDestination(t *testing.T) {
	t.Parallel()

	bucket := &memoryBucket{uploads: make(map[string][]byte)}
	st := &store{folder: "curry", cloud: bucket, bucket: "reports-bucket"}

	out := &ParquetOutput{store: st, tracker: noopTracker{}}
	if err := out.WriteOrders(context.Background(), sampleTable()); err != nil {
		t.Fatalf("write orders: %v", err)
	}
	rep := sampleReport(t)
	if err := out.WriteReport(context.Background(), rep); err != nil {
		t.Fatalf("write report: %v", err)
	}

	for _, key := range []string{
		"reports-bucket/curry/orders/year=2022/month=03/day=19/data.parquet",
		"reports-bucket/curry/orders/year=2022/month=03/day=25/data.parquet",
		"reports-bucket/curry/reports/" + rep.ID + ".json",
	} {
		body, ok := bucket.uploads[key]
		if !ok || len(body) == 0 {
			t.Errorf("expected object %s to be uploaded", key)
		}
	}
	if body := bucket.uploads["reports-bucket/curry/orders/year=2022/month=03/day=19/data.parquet"]; !bytes.HasPrefix(body, []byte("PAR1")) {
		t.Error("expected a parquet object")
	}
}

func TestCloudDestinationDropsFailedObjects(t *testing.T) {
	t.Parallel()

	diskFull := errors.New("disk full")
	for name, out := range map[string]func(*store) Destination{
		"json":    func(st *store) Destination { return &JSONOutput{store: st, tracker: noopTracker{}} },
		"csv":     func(st *store) Destination { return &CSVOutput{store: st, tracker: noopTracker{}} },
		"parquet": func(st *store) Destination { return &ParquetOutput{store: st, tracker: noopTracker{}} },
	} {
		name, out := name, out
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			bucket := &memoryBucket{uploads: make(map[string][]byte), writeErr: diskFull}
			dest := out(&store{folder: "curry", cloud: bucket, bucket: "orders-bucket"})

			if err := dest.WriteOrders(context.Background(), sampleTable()); !errors.Is(err, diskFull) {
				t.Fatalf("expected the write error, got %v", err)
			}
			if err := dest.WriteReport(context.Background(), sampleReport(t)); !errors.Is(err, diskFull) {
				t.Fatalf("expected the write error, got %v", err)
			}
			if len(bucket.uploads) != 0 {
				t.Fatalf("expected no objects to be uploaded, got %d", len(bucket.uploads))
			}
			if bucket.aborted != 2 {
				t.Fatalf("expected both objects to be aborted, got %d", bucket.aborted)
			}
		})
	}
}

func TestLocalDestinationRemovesFailedFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	st := &store{basePath: dir, folder: "curry"}
	w, err := st.create(context.Background(), st.key("reports", "partial.json"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := w.Write([]byte(`{"id":`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	discard(w)

	if _, err := os.Stat(filepath.Join(dir, "curry", "reports", "partial.json")); !os.IsNotExist(err) {
		t.Fatalf("expected the partial file to be removed, got %v", err)
	}
}

func TestKafkaOutput(t *testing.T) {
	t.Parallel()

	producer := mocks.NewSyncProducer(t, nil)
	for i := 0; i < sampleTable().Len(); i++ {
		producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
			if msg.Topic != "normalized_orders" {
				return errors.New("unexpected topic " + msg.Topic)
			}
			if msg.Key == nil {
				return errors.New("orders must be keyed")
			}
			return nil
		})
	}
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var decoded map[string]any
		if err := json.Unmarshal(val, &decoded); err != nil {
			return err
		}
		if _, ok := decoded["restaurants"]; !ok {
			return errors.New("report is missing the restaurant view")
		}
		return nil
	})

	out := NewKafkaOutputFromProducer(producer, "normalized_orders", "dashboard_reports")
	if err := out.WriteOrders(context.Background(), sampleTable()); err != nil {
		t.Fatalf("write orders: %v", err)
	}
	if err := out.WriteReport(context.Background(), sampleReport(t)); err != nil {
		t.Fatalf("write report: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := out.WriteOrders(context.Background(), sampleTable()); err == nil {
		t.Fatal("expected an error after Close")
	}
}

type memoryOrders struct {
	rows     []models.Order
	replaces int
	copyErr  error
}

func (m *memoryOrders) EnsureSchema(context.Context) error { return nil }

func (m *memoryOrders) BulkCreate(_ context.Context, orders []models.Order) error {
	if m.copyErr != nil {
		return m.copyErr
	}
	m.rows = append(m.rows, orders...)
	return nil
}

// ReplaceAll stages the copy and only swaps the rows once it succeeds.
func (m *memoryOrders) ReplaceAll(ctx context.Context, orders []models.Order) error {
	staged := &memoryOrders{copyErr: m.copyErr}
	if err := staged.BulkCreate(ctx, orders); err != nil {
		return err
	}
	m.rows = staged.rows
	m.replaces++
	return nil
}

func (m *memoryOrders) GetAll(context.Context) (models.Table, error) {
	return models.NewTable(m.rows), nil
}

func (m *memoryOrders) Count(context.Context) (int, error) { return len(m.rows), nil }

func (m *memoryOrders) DeleteAll(context.Context) error {
	m.rows = nil
	return nil
}

type memoryReports struct {
	saved []*report.Report
}

func (m *memoryReports) EnsureSchema(context.Context) error { return nil }

func (m *memoryReports) Save(_ context.Context, r *report.Report) error {
	m.saved = append(m.saved, r)
	return nil
}

func (m *memoryReports) Latest(context.Context) (*report.Report, error) {
	if len(m.saved) == 0 {
		return nil, errors.New("no reports")
	}
	return m.saved[len(m.saved)-1], nil
}

func TestPostgresOutputReplacesOrders(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	orders, reports := &memoryOrders{}, &memoryReports{}
	out, err := NewPostgresOutputFromRepositories(ctx, orders, reports)
	if err != nil {
		t.Fatalf("new output: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := out.WriteOrders(ctx, sampleTable()); err != nil {
			t.Fatalf("write orders: %v", err)
		}
	}
	if len(orders.rows) != 3 || orders.replaces != 2 {
		t.Fatalf("expected the table to be replaced, got %d rows after %d replaces", len(orders.rows), orders.replaces)
	}

	if err := out.WriteReport(ctx, sampleReport(t)); err != nil {
		t.Fatalf("write report: %v", err)
	}
	if len(reports.saved) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(reports.saved))
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestPostgresOutputKeepsOrdersWhenCopyFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	orders := &memoryOrders{rows: sampleTable().Rows()}
	out, err := NewPostgresOutputFromRepositories(ctx, orders, &memoryReports{})
	if err != nil {
		t.Fatalf("new output: %v", err)
	}

	copyFailed := errors.New("copy failed")
	orders.copyErr = copyFailed
	if err := out.WriteOrders(ctx, sampleTable()); !errors.Is(err, copyFailed) {
		t.Fatalf("expected the copy error, got %v", err)
	}

	count, _ := orders.Count(ctx)
	if count != 3 {
		t.Fatalf("expected the stored orders to survive a failed copy, got %d rows", count)
	}
}

type failingDestination struct{ err error }

func (f failingDestination) WriteOrders(context.Context, models.Table) error   { return f.err }
func (f failingDestination) WriteReport(context.Context, *report.Report) error { return f.err }
func (f failingDestination) Close() error                                      { return nil }

func TestMultiKeepsWritingAfterFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("broker down")
	var buf bytes.Buffer
	multi := Multi{failingDestination{err: boom}, NewConsoleOutput(&buf)}

	err := multi.WriteOrders(context.Background(), sampleTable())
	if !errors.Is(err, boom) {
		t.Fatalf("expected the failure to be reported, got %v", err)
	}
	if got := strings.Count(buf.String(), "[orders] "); got != 3 {
		t.Fatalf("expected the console to receive 3 orders, got %d", got)
	}
}

func TestNewFallsBackToConsole(t *testing.T) {
	t.Parallel()

	cfg := &models.Config{OutputFormat: "json", OutputDestination: "local"}
	dest, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer dest.Close()

	inner, ok := dest.(*loggedDestination)
	if !ok {
		t.Fatalf("expected a single logged destination, got %T", dest)
	}
	if _, ok := inner.Destination.(*ConsoleOutput); !ok {
		t.Fatalf("expected console output, got %T", inner.Destination)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	cfg := &models.Config{
		OutputFormat:      "json",
		OutputDestination: "s3",
		CloudStorage:      models.CloudStorageConfig{Provider: "azure", BucketName: "b"},
	}
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("expected an error for an unsupported provider")
	}
}
