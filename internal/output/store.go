package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/samuel262816/curry-company/internal/cloudwriter"
	"github.com/samuel262816/curry-company/internal/models"
	"github.com/samuel262816/curry-company/internal/report"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
)

// store resolves object keys to local files under basePath or to objects in
// a cloud bucket. Keys always start with folder.
type store struct {
	basePath string
	folder   string
	cloud    cloudwriter.CloudWriterFactory
	bucket   string
}

func (s *store) key(parts ...string) string {
	return path.Join(append([]string{s.folder}, parts...)...)
}

func (s *store) localPath(key string) (string, error) {
	full := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), os.ModePerm); err != nil {
		return "", err
	}
	return full, nil
}

// aborter is implemented by writers that can drop a partly written object.
type aborter interface {
	Abort() error
}

// discard drops w after a failed write so no partial object is left behind.
func discard(w io.Closer) {
	if a, ok := w.(aborter); ok {
		a.Abort()
		return
	}
	w.Close()
}

type localFile struct {
	*os.File
}

func (f localFile) Abort() error {
	f.File.Close()
	return os.Remove(f.Name())
}

type localParquetFile struct {
	source.ParquetFile
	path string
}

func (f localParquetFile) Abort() error {
	f.ParquetFile.Close()
	return os.Remove(f.path)
}

func (s *store) create(ctx context.Context, key string) (io.WriteCloser, error) {
	if s.cloud != nil {
		return s.cloud.NewWriter(ctx, s.bucket, key)
	}
	full, err := s.localPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(full)
	if err != nil {
		return nil, err
	}
	return localFile{File: f}, nil
}

func (s *store) createParquet(ctx context.Context, key string) (source.ParquetFile, error) {
	if s.cloud != nil {
		cw, err := s.cloud.NewWriter(ctx, s.bucket, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return NewCloudParquetFile(cw), nil
	}
	full, err := s.localPath(key)
	if err != nil {
		return nil, err
	}
	fw, err := local.NewLocalFileWriter(full)
	if err != nil {
		return nil, fmt.Errorf("failed to create local file writer: %w", err)
	}
	return localParquetFile{ParquetFile: fw, path: full}, nil
}

// cleanup removes files with extension ext left under the orders tree by a
// previous run, so stale partitions do not survive. Cloud objects are
// overwritten in place instead.
func (s *store) cleanup(ext string) error {
	if s.cloud != nil {
		return nil
	}
	root := filepath.Join(s.basePath, filepath.FromSlash(s.key("orders")))
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(p) == ext {
			return os.Remove(p)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// writeReport stores r as reports/<id>.json, whatever the order format.
func (s *store) writeReport(ctx context.Context, r *report.Report) error {
	data, err := r.JSON()
	if err != nil {
		return err
	}
	w, err := s.create(ctx, s.key("reports", r.ID+".json"))
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		discard(w)
		return err
	}
	return w.Close()
}

type partition struct {
	day    time.Time
	orders []models.Order
}

// path renders the hive-style partition directory for the day.
func (p partition) path() string {
	year, month, day := p.day.Date()
	return fmt.Sprintf("year=%d/month=%02d/day=%02d", year, month, day)
}

// partitionByDay splits t by order date, oldest day first. Rows keep their
// table order within a partition.
func partitionByDay(t models.Table) []partition {
	groups := lo.GroupBy(t.Rows(), func(o models.Order) time.Time {
		y, m, d := o.OrderDate.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	})

	days := lo.Keys(groups)
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })

	return lo.Map(days, func(d time.Time, _ int) partition {
		return partition{day: d, orders: groups[d]}
	})
}

func writeJSONLines(w io.Writer, orders []models.Order) error {
	enc := json.NewEncoder(w)
	for _, o := range orders {
		if err := enc.Encode(o); err != nil {
			return err
		}
	}
	return nil
}

// CloudParquetFile adapts a CloudWriter to the write side of
// source.ParquetFile.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cloudWriter cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cloudWriter}
}

// Open and Create return the file itself; the object is created on upload.
func (c *CloudParquetFile) Open(string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Create(string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	default:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read([]byte) (int, error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (int, error) {
	n, err := c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}

func (c *CloudParquetFile) Abort() error {
	return c.cloudWriter.Abort()
}
