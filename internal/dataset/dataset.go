// Package dataset reads the raw delivery log from CSV or XLSX files.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samuel262816/curry-company/internal/models"
	"github.com/xuri/excelize/v2"
)

// ErrEmpty is returned when the source has no header row.
var ErrEmpty = errors.New("dataset has no header row")

// Load reads path, choosing the reader from the file extension. sheet is
// only used for workbooks; an empty sheet selects the first one.
func Load(path, sheet string) (models.RawTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, sheet)
	default:
		return LoadCSV(path)
	}
}

func LoadCSV(path string) (models.RawTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return models.RawTable{}, err
	}
	defer file.Close()

	raw, err := ReadCSV(file)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}

// ReadCSV reads a comma separated dataset. Field counts are not enforced
// here; the normalizer validates the shape and reports the offending line.
func ReadCSV(r io.Reader) (models.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return models.RawTable{}, ErrEmpty
	}
	if err != nil {
		return models.RawTable{}, err
	}

	table := models.RawTable{Header: header}
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.RawTable{}, err
		}
		table.Rows = append(table.Rows, fields)
	}

	return table, nil
}

func LoadXLSX(path, sheet string) (models.RawTable, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return models.RawTable{}, err
	}
	defer file.Close()

	if sheet == "" {
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return models.RawTable{}, ErrEmpty
		}
		sheet = sheets[0]
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("read sheet %q of %s: %w", sheet, path, err)
	}
	if len(rows) == 0 {
		return models.RawTable{}, ErrEmpty
	}

	table := models.RawTable{Header: rows[0]}
	width := len(rows[0])
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		// excelize trims trailing empty cells; pad them back so an empty
		// trailing column is not mistaken for a short row.
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// WriteCSV writes raw back out in the source layout.
func WriteCSV(w io.Writer, raw models.RawTable) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(raw.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(raw.Rows); err != nil {
		return err
	}
	return writer.Error()
}

// WriteXLSX saves raw as a single-sheet workbook at path.
func WriteXLSX(path, sheet string, raw models.RawTable) error {
	file := excelize.NewFile()
	defer file.Close()

	if sheet == "" {
		sheet = "train"
	}
	if err := file.SetSheetName(file.GetSheetName(0), sheet); err != nil {
		return err
	}

	stream, err := file.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	for i, fields := range append([][]string{raw.Header}, raw.Rows...) {
		cells := make([]interface{}, len(fields))
		for j, f := range fields {
			cells[j] = f
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := stream.SetRow(cell, cells); err != nil {
			return err
		}
	}
	if err := stream.Flush(); err != nil {
		return err
	}
	return file.SaveAs(path)
}
