// Package importer reads analysis tables from XLSX and CSV files.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"Petronorm/internal/calc/cipw"
)

var (
	ErrEmptySheet = errors.New("sheet has no data rows")
	ErrFormat     = errors.New("unsupported file format")
)

// ReadFile loads a table from a .xlsx or .csv file. sheet selects the XLSX
// sheet; empty means the first one.
func ReadFile(path, sheet string) (cipw.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return cipw.Table{}, err
	}
	defer f.Close()
	return Read(f, filepath.Base(path), sheet)
}

// Read dispatches on the file name extension.
func Read(r io.Reader, name, sheet string) (cipw.Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r, sheet)
	case ".csv", ".txt":
		return ReadCSV(r)
	}
	return cipw.Table{}, fmt.Errorf("%w: %q", ErrFormat, name)
}

func ReadXLSX(r io.Reader, sheet string) (cipw.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return cipw.Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return cipw.Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return toTable(rows)
}

// ReadCSV reads comma or semicolon separated values; the separator is taken
// from the header line.
func ReadCSV(r io.Reader) (cipw.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return cipw.Table{}, err
	}
	header, _, _ := strings.Cut(string(data), "\n")

	cr := csv.NewReader(strings.NewReader(string(data)))
	if strings.Count(header, ";") > strings.Count(header, ",") {
		cr.Comma = ';'
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return cipw.Table{}, fmt.Errorf("read csv: %w", err)
	}
	return toTable(rows)
}

// toTable uses the first row as header and drops blank rows.
func toTable(rows [][]string) (cipw.Table, error) {
	if len(rows) < 2 {
		return cipw.Table{}, ErrEmptySheet
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	var data [][]string
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		data = append(data, row)
	}
	if len(data) == 0 {
		return cipw.Table{}, ErrEmptySheet
	}
	return cipw.NewTable(header, data), nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
