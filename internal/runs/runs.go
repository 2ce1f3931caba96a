// Package runs serves the norm results an analyst has saved.
package runs

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"Petronorm/internal/auth"
	"Petronorm/internal/repo"
)

// Store is the part of the repository the handlers need.
type Store interface {
	ListRuns(ctx context.Context, userID int) ([]repo.Run, error)
	GetRun(ctx context.Context, userID int, id string) (repo.Run, error)
	DeleteRun(ctx context.Context, userID int, id string) error
}

type Handler struct {
	Repo Store
}

func currentUser(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID := auth.UserID(r.Context())
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	list, err := h.Repo.ListRuns(r.Context(), userID)
	if err != nil {
		log.Printf("ListRuns Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// Load fetches the run named by the {id} path variable, writing the error
// response itself when it fails.
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) (repo.Run, bool) {
	userID, ok := currentUser(w, r)
	if !ok {
		return repo.Run{}, false
	}
	run, err := h.Repo.GetRun(r.Context(), userID, mux.Vars(r)["id"])
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return repo.Run{}, false
	}
	if err != nil {
		log.Printf("GetRun Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return repo.Run{}, false
	}
	return run, true
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	run, ok := h.Load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	err := h.Repo.DeleteRun(r.Context(), userID, mux.Vars(r)["id"])
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("DeleteRun Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
