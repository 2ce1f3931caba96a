// Package report renders norm results as XLSX workbooks, CSV and PDF.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"

	"Petronorm/internal/calc/cipw"
)

// Meta describes a report.
type Meta struct {
	Title   string    `json:"title"`
	Project string    `json:"project"`
	Author  string    `json:"author"`
	Date    time.Time `json:"-"`
}

func (m Meta) title() string {
	if m.Title == "" {
		return "CIPW Norm Report"
	}
	return m.Title
}

var sheets = []struct {
	name  string
	frame func(*cipw.Result) *cipw.Frame
}{
	{"Partitions", func(r *cipw.Result) *cipw.Frame { return &r.Partitions }},
	{"Free", func(r *cipw.Result) *cipw.Frame { return &r.Free }},
	{"Supplementary", func(r *cipw.Result) *cipw.Frame { return &r.Supplementary }},
}

// WriteXLSX writes one sheet per frame plus a Warnings sheet when there are
// any.
func WriteXLSX(w io.Writer, res *cipw.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return err
		}
		if err := writeFrameSheet(f, s.name, s.frame(res)); err != nil {
			return fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}

	if len(res.Warnings) > 0 {
		if _, err := f.NewSheet("Warnings"); err != nil {
			return err
		}
		rows := [][]any{{"sample", "kind", "message"}}
		for _, wn := range res.Warnings {
			rows = append(rows, []any{wn.Sample, string(wn.Kind), wn.Message})
		}
		if err := setRows(f, "Warnings", rows); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeFrameSheet(f *excelize.File, sheet string, fr *cipw.Frame) error {
	header := []any{"index"}
	for _, c := range fr.IDColumns {
		header = append(header, c)
	}
	for _, c := range fr.Columns {
		header = append(header, c)
	}
	rows := [][]any{header}
	for i, vals := range fr.Values {
		row := []any{fr.Index[i]}
		if fr.IDs != nil {
			for _, id := range fr.IDs[i] {
				row = append(row, id)
			}
		}
		for _, v := range vals {
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	if err := setRows(f, sheet, rows); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes one frame with the identification columns first.
func WriteCSV(w io.Writer, fr *cipw.Frame) error {
	cw := csv.NewWriter(w)
	header := append([]string{"index"}, fr.IDColumns...)
	header = append(header, fr.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, vals := range fr.Values {
		rec := []string{strconv.Itoa(fr.Index[i])}
		if fr.IDs != nil {
			rec = append(rec, fr.IDs[i]...)
		}
		for _, v := range vals {
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// pdfColumns fit on one landscape A4 line next to the sample label.
const pdfColumns = 12

// WritePDF renders the partitions in blocks of columns, then the warnings.
func WritePDF(w io.Writer, res *cipw.Result, meta Meta) error {
	if meta.Date.IsZero() {
		meta.Date = time.Now()
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, meta.title())
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	if meta.Project != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Project: %s", meta.Project))
		pdf.Ln(6)
	}
	if meta.Author != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Author: %s", meta.Author))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", meta.Date.Format("2006-01-02")))
	pdf.Ln(6)
	o := res.Options
	pdf.Cell(0, 6, fmt.Sprintf("Samples: %d   Minor elements: %t   Normalized: %t   CO2 cancrinite/calcite: %g/%g",
		len(res.Partitions.Values), o.MinorIncluded, o.NormalizeEntry, o.CO2Cancrinite, o.CO2Calcite))
	pdf.Ln(10)

	fr := &res.Partitions
	for start := 0; start < len(fr.Columns); start += pdfColumns {
		end := min(start+pdfColumns, len(fr.Columns))
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(40, 6, "Sample", "1", 0, "L", false, 0, "")
		for _, c := range fr.Columns[start:end] {
			pdf.CellFormat(19, 6, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		for i, vals := range fr.Values {
			pdf.CellFormat(40, 6, sampleLabel(fr, i), "1", 0, "L", false, 0, "")
			for _, v := range vals[start:end] {
				pdf.CellFormat(19, 6, strconv.FormatFloat(v, 'f', o.ToRound, 64), "1", 0, "R", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	if len(res.Warnings) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 8, "Warnings")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 9)
		for _, wn := range res.Warnings {
			pdf.MultiCell(0, 5, wn.String(), "", "L", false)
		}
	}
	return pdf.Output(w)
}

func sampleLabel(fr *cipw.Frame, i int) string {
	if fr.IDs != nil && len(fr.IDs[i]) > 0 {
		return strings.Join(fr.IDs[i], " ")
	}
	return strconv.Itoa(fr.Index[i])
}
