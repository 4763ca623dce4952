// Package plans manages the saved-plan library: named snapshots of the
// wizard state that can be reloaded later.
package plans

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	json "github.com/goccy/go-json"

	"careplan/internal/config"
	"careplan/internal/models"
	"careplan/internal/services/plan"
	"careplan/internal/services/storage"
	"careplan/internal/web"
)

var (
	cfg    *config.Config
	store  *storage.Storage
	mgr    *plan.Manager
	schema *models.ResolvedSchema

	// indexMu serializes index read-modify-write cycles
	indexMu sync.Mutex
)

// SavedPlan is one entry in the plan library index
type SavedPlan struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Initialize sets up the plans package with required dependencies
func Initialize(c *config.Config, s *storage.Storage, m *plan.Manager, rs *models.ResolvedSchema) {
	cfg = c
	store = s
	mgr = m
	schema = rs
}

// RegisterRoutes registers all saved-plan routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/plans", handleList)
	r.Post("/api/plans", handleSave)
	r.Post("/api/plans/{id}/load", handleLoad)
	r.Delete("/api/plans/{id}", handleDelete)
}

func handleList(w http.ResponseWriter, r *http.Request) {
	index, err := loadIndex()
	if err != nil {
		web.ErrorResponse(w, "Failed to read plan library", http.StatusInternalServerError)
		return
	}
	web.RespondJSON(w, http.StatusOK, index)
}

// handleSave snapshots the working state under a new id
func handleSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := web.DecodeJSON(r, &req); err != nil {
		web.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		web.ErrorResponse(w, "Plan name is required", http.StatusBadRequest)
		return
	}

	data, err := plan.Encode(mgr.Snapshot())
	if err != nil {
		web.ErrorResponse(w, "Failed to encode plan", http.StatusInternalServerError)
		return
	}

	entry := SavedPlan{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := store.WriteFile(planPath(entry.ID), data, 0644); err != nil {
		web.ErrorResponse(w, "Failed to write plan", http.StatusInternalServerError)
		return
	}

	if err := updateIndex(func(index []SavedPlan) []SavedPlan {
		return append(index, entry)
	}); err != nil {
		web.ErrorResponse(w, "Failed to update plan library", http.StatusInternalServerError)
		return
	}

	log.Printf("Saved plan %q (%s)", entry.Name, entry.ID)
	web.RespondJSON(w, http.StatusCreated, entry)
}

// handleLoad replaces the working state with a saved snapshot. A document
// that fails to decode leaves the working state untouched.
func handleLoad(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		web.ErrorResponse(w, "Invalid plan id", http.StatusBadRequest)
		return
	}

	data, err := store.ReadFile(planPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			web.ErrorResponse(w, "Plan not found", http.StatusNotFound)
			return
		}
		web.ErrorResponse(w, "Failed to read plan", http.StatusInternalServerError)
		return
	}

	state, err := plan.Decode(schema, data, planPath(id))
	if err != nil {
		var lerr *plan.LoadError
		if errors.As(err, &lerr) {
			web.ErrorResponse(w, "Saved plan is unreadable; current plan kept", http.StatusUnprocessableEntity)
			return
		}
		web.ErrorResponse(w, "Failed to load plan", http.StatusInternalServerError)
		return
	}

	if err := mgr.Replace(state); err != nil {
		web.ErrorResponse(w, "Failed to apply plan", http.StatusInternalServerError)
		return
	}

	web.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"values": state.Values(),
		"flags":  state.Flags(),
	})
}

func handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		web.ErrorResponse(w, "Invalid plan id", http.StatusBadRequest)
		return
	}

	if err := store.Remove(planPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		web.ErrorResponse(w, "Failed to delete plan", http.StatusInternalServerError)
		return
	}

	if err := updateIndex(func(index []SavedPlan) []SavedPlan {
		out := index[:0]
		for _, e := range index {
			if e.ID != id {
				out = append(out, e)
			}
		}
		return out
	}); err != nil {
		web.ErrorResponse(w, "Failed to update plan library", http.StatusInternalServerError)
		return
	}

	web.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func planPath(id string) string {
	return filepath.Join(cfg.PlansDirectory, id+".json")
}

func indexPath() string {
	return filepath.Join(cfg.PlansDirectory, "index.json")
}

// loadIndex reads the library index, newest first. A missing index is an
// empty library.
func loadIndex() ([]SavedPlan, error) {
	data, err := store.ReadFile(indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []SavedPlan{}, nil
		}
		return nil, err
	}

	var index []SavedPlan
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse plan index: %w", err)
	}

	sort.Slice(index, func(i, j int) bool {
		return index[i].CreatedAt.After(index[j].CreatedAt)
	})
	return index, nil
}

func updateIndex(mutate func([]SavedPlan) []SavedPlan) error {
	indexMu.Lock()
	defer indexMu.Unlock()

	index, err := loadIndex()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(mutate(index), "", "  ")
	if err != nil {
		return err
	}
	return store.WriteFile(indexPath(), data, 0644)
}
