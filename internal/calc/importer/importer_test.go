package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"Petronorm/internal/calc/cipw"
	"Petronorm/internal/chem"
)

var sheetRows = [][]any{
	{"Sample", "SiO2", "TiO2", "Al2O3", "Fe2O3", "FeO", "MnO", "MgO", "CaO", "Na2O", "K2O", "P2O5", "Total"},
	{"AND-1", 60, 0.7, 17, 2, 4, 0, 3, 6, 3.5, 3, 0.2, 100},
	{},
	{"AND-2", 58, 0.9, 17.5, 2.5, 4.5, 0.1, 3.5, 6.5, 3.6, 2.4, 0.25, 99.75},
}

func workbook(t *testing.T, sheet string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range sheetRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		if len(row) > 0 {
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestReadXLSX(t *testing.T) {
	tbl, err := ReadXLSX(bytes.NewReader(workbook(t, "Sheet1")), "")
	require.NoError(t, err)
	assert.Equal(t, "Total", tbl.Columns[len(tbl.Columns)-1])
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, cipw.Cell("AND-2"), tbl.Rows[1][0])
	assert.Equal(t, cipw.Cell("58"), tbl.Rows[1][1])
}

func TestReadXLSXNamedSheet(t *testing.T) {
	data := workbook(t, "Majors")
	tbl, err := ReadXLSX(bytes.NewReader(data), "Majors")
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)

	_, err = ReadXLSX(bytes.NewReader(data), "Missing")
	assert.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("Sample,SiO2,MgO\nA,50.1,7\n,,\nB,49,8.5\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Sample", "SiO2", "MgO"}, tbl.Columns)
	assert.Equal(t, [][]cipw.Cell{{"A", "50.1", "7"}, {"B", "49", "8.5"}}, tbl.Rows)

	tbl, err = ReadCSV(strings.NewReader("Sample;SiO2;MgO\nA;50,1;7\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]cipw.Cell{{"A", "50,1", "7"}}, tbl.Rows)

	_, err = ReadCSV(strings.NewReader("Sample,SiO2\n"))
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "majors.xlsx")
	require.NoError(t, os.WriteFile(path, workbook(t, "Sheet1"), 0o600))
	tbl, err := ReadFile(path, "")
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)

	_, err = ReadFile(filepath.Join(dir, "majors.ods"), "")
	assert.Error(t, err)

	other := filepath.Join(dir, "majors.ods")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o600))
	_, err = ReadFile(other, "")
	assert.ErrorIs(t, err, ErrFormat)
}

func upload(t *testing.T, name string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newHandler(t *testing.T) *Handler {
	t.Helper()
	e, err := cipw.NewEngine(chem.NewReference())
	require.NoError(t, err)
	return &Handler{Norm: &cipw.Handler{Engine: e}, Defaults: cipw.DefaultOptions()}
}

func TestUpload(t *testing.T) {
	h := newHandler(t)
	rec := httptest.NewRecorder()
	h.Upload(rec, upload(t, "majors.xlsx", workbook(t, "Sheet1"), map[string]string{"skip_cols": "1", "to_round": "2"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got cipw.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 2, got.Options.ToRound)
	assert.Len(t, got.Samples, 2)
	assert.Greater(t, got.Partitions.Value(1, "Q"), 0.0)
}

func TestUploadRejects(t *testing.T) {
	h := newHandler(t)
	cases := map[string]*http.Request{
		"format":  upload(t, "majors.pdf", []byte("%PDF"), nil),
		"option":  upload(t, "m.csv", []byte("SiO2\n50\n"), map[string]string{"to_round": "two"}),
		"split":   upload(t, "m.csv", []byte("SiO2\n50\n"), map[string]string{"co2_calcite": "0.4"}),
		"empty":   upload(t, "m.csv", []byte("SiO2\n"), nil),
		"no file": httptest.NewRequest(http.MethodPost, "/import", nil),
	}
	for name, req := range cases {
		rec := httptest.NewRecorder()
		h.Upload(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestFormOptions(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/?minor_included=true&co2_cancrinite=0.3&co2_calcite=0.7", nil)
	opts, err := FormOptions(req, cipw.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, opts.MinorIncluded)
	assert.Equal(t, 0.3, opts.CO2Cancrinite)
	assert.Equal(t, 4, opts.ToRound)
}
