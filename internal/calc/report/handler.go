package report

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"Petronorm/internal/calc/cipw"
	"Petronorm/internal/runs"
)

type Handler struct {
	Engine   *cipw.Engine
	Runs     *runs.Handler
	Defaults cipw.Options
}

type Input struct {
	cipw.Request
	Meta
}

func (h *Handler) compute(w http.ResponseWriter, r *http.Request) (*cipw.Result, Meta, bool) {
	defaults := h.Defaults
	if defaults == (cipw.Options{}) {
		defaults = cipw.DefaultOptions()
	}
	input := Input{Request: cipw.Request{Options: defaults}}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return nil, Meta{}, false
	}
	res, err := h.Engine.Compute(r.Context(), input.Table, input.Options)
	if err != nil {
		if cipw.IsInputError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil, Meta{}, false
		}
		log.Printf("cipw compute: %v", err)
		http.Error(w, "Calculation error", http.StatusInternalServerError)
		return nil, Meta{}, false
	}
	return res, input.Meta, true
}

func (h *Handler) saved(w http.ResponseWriter, r *http.Request) (*cipw.Result, Meta, bool) {
	run, ok := h.Runs.Load(w, r)
	if !ok {
		return nil, Meta{}, false
	}
	var res cipw.Result
	if err := json.Unmarshal(run.Payload, &res); err != nil {
		log.Printf("decode run %s: %v", run.ID, err)
		http.Error(w, "Corrupt run", http.StatusInternalServerError)
		return nil, Meta{}, false
	}
	return &res, Meta{Title: run.Name, Date: run.CreatedAt}, true
}

// Generate computes a norm from the request body and returns it as PDF.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if res, meta, ok := h.compute(w, r); ok {
		writePDF(w, res, meta)
	}
}

// Export computes a norm from the request body and returns an XLSX workbook.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if res, _, ok := h.compute(w, r); ok {
		writeXLSX(w, res)
	}
}

// RunPDF renders a saved run.
func (h *Handler) RunPDF(w http.ResponseWriter, r *http.Request) {
	if res, meta, ok := h.saved(w, r); ok {
		writePDF(w, res, meta)
	}
}

// RunXLSX exports a saved run.
func (h *Handler) RunXLSX(w http.ResponseWriter, r *http.Request) {
	if res, _, ok := h.saved(w, r); ok {
		writeXLSX(w, res)
	}
}

// The documents are built in memory so that a rendering failure can still
// be reported with a status code.
func writePDF(w http.ResponseWriter, res *cipw.Result, meta Meta) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, res, meta); err != nil {
		log.Printf("pdf: %v", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"cipw-report.pdf\"")
	buf.WriteTo(w)
}

func writeXLSX(w http.ResponseWriter, res *cipw.Result) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, res); err != nil {
		log.Printf("xlsx: %v", err)
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"cipw-norm.xlsx\"")
	buf.WriteTo(w)
}
