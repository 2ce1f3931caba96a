package cipw

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"Petronorm/internal/auth"
)

// RunSaver stores a computed norm under the analyst's account.
type RunSaver interface {
	SaveRun(ctx context.Context, userID int, name string, samples int, payload []byte) (string, error)
}

type Handler struct {
	Engine *Engine
	Runs   RunSaver
	// Defaults seeds the options of every request. The zero value means
	// DefaultOptions.
	Defaults Options
}

func (h *Handler) defaults() Options {
	if h.Defaults == (Options{}) {
		return DefaultOptions()
	}
	return h.Defaults
}

// Request is the body of a norm calculation. Omitted options keep their
// defaults.
type Request struct {
	Table
	Options Options `json:"options"`
}

type Response struct {
	RunID string `json:"run_id,omitempty"`
	*Result
}

// DecodeRequest reads a Request, starting from defaults.
func DecodeRequest(r *http.Request, defaults Options) (Request, error) {
	req := Request{Options: defaults}
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

// IsInputError reports whether err comes from bad options or an unusable table.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidCO2Split) ||
		errors.Is(err, ErrInvalidSkipCols) ||
		errors.Is(err, ErrInvalidRounding) ||
		errors.Is(err, ErrEmptyTable)
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	req, err := DecodeRequest(r, h.defaults())
	if err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := h.Engine.Compute(r.Context(), req.Table, req.Options)
	if err != nil {
		if IsInputError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("cipw compute: %v", err)
		http.Error(w, "Calculation error", http.StatusInternalServerError)
		return
	}
	h.Respond(w, r, res)
}

// Respond writes res as JSON and, when the request carries ?save=name,
// stores it as a run first.
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request, res *Result) {
	out := Response{Result: res}
	if name := r.URL.Query().Get("save"); name != "" && h.Runs != nil {
		userID := auth.UserID(r.Context())
		if userID == 0 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		payload, err := json.Marshal(res)
		if err != nil {
			http.Error(w, "Encoding error", http.StatusInternalServerError)
			return
		}
		id, err := h.Runs.SaveRun(r.Context(), userID, name, len(res.Samples), payload)
		if err != nil {
			log.Printf("SaveRun Error: %v", err)
			http.Error(w, "DB error", http.StatusInternalServerError)
			return
		}
		out.RunID = id
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
