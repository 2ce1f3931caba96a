package importer

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"Petronorm/internal/calc/cipw"
)

const MaxUploadSize = 10 << 20 // 10MB

type Handler struct {
	Norm     *cipw.Handler
	Defaults cipw.Options
}

// Upload computes the norm of an uploaded XLSX or CSV file. Options come
// from form fields named like the JSON options.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		http.Error(w, "File too big", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	opts, err := FormOptions(r, h.Defaults)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	table, err := Read(file, header.Filename, r.FormValue("sheet"))
	if err != nil {
		if errors.Is(err, ErrFormat) || errors.Is(err, ErrEmptySheet) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}

	res, err := h.Norm.Engine.Compute(r.Context(), table, opts)
	if err != nil {
		if cipw.IsInputError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("cipw compute: %v", err)
		http.Error(w, "Calculation error", http.StatusInternalServerError)
		return
	}
	h.Norm.Respond(w, r, res)
}

// FormOptions overlays form values on defaults.
func FormOptions(r *http.Request, defaults cipw.Options) (cipw.Options, error) {
	opts := defaults
	ints := map[string]*int{"skip_cols": &opts.SkipCols, "to_round": &opts.ToRound}
	for k, p := range ints {
		if v := r.FormValue(k); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return opts, errors.New("invalid " + k)
			}
			*p = n
		}
	}
	floats := map[string]*float64{"co2_cancrinite": &opts.CO2Cancrinite, "co2_calcite": &opts.CO2Calcite}
	for k, p := range floats {
		if v := r.FormValue(k); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, errors.New("invalid " + k)
			}
			*p = f
		}
	}
	bools := map[string]*bool{"normalize_entry": &opts.NormalizeEntry, "minor_included": &opts.MinorIncluded}
	for k, p := range bools {
		if v := r.FormValue(k); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.New("invalid " + k)
			}
			*p = b
		}
	}
	return opts, nil
}
