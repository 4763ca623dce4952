// Package wizard serves the resolved schema and the working plan state
// the wizard form binds to.
package wizard

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"careplan/internal/models"
	"careplan/internal/services/plan"
	"careplan/internal/web"
)

var (
	mgr    *plan.Manager
	schema *models.ResolvedSchema
)

// Initialize sets up the wizard package with required dependencies
func Initialize(m *plan.Manager, s *models.ResolvedSchema) {
	mgr = m
	schema = s
}

// RegisterRoutes registers all wizard routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/schema", handleSchema)
	r.Get("/api/plan", handlePlan)
	r.Put("/api/plan/fields", handleSetFields)
	r.Post("/api/plan/reset", handleReset)
}

// handleSchema returns the resolved schema the form renders from
func handleSchema(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, http.StatusOK, schema)
}

// planView is the client's picture of the working state: every field has a
// value, and flags carry the messages for inputs that fell back to defaults
type planView struct {
	Values map[string]interface{} `json:"values"`
	Flags  map[string]string      `json:"flags"`
}

func viewOf(s *plan.State) planView {
	return planView{Values: s.Values(), Flags: s.Flags()}
}

func handlePlan(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, http.StatusOK, viewOf(mgr.Snapshot()))
}

// handleSetFields applies a batch of field writes. Unknown keys reject the
// whole batch; invalid values fall back to defaults and come back flagged.
func handleSetFields(w http.ResponseWriter, r *http.Request) {
	var fields map[string]interface{}
	if err := web.DecodeJSON(r, &fields); err != nil {
		web.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(fields) == 0 {
		web.ErrorResponse(w, "No fields provided", http.StatusBadRequest)
		return
	}

	if _, err := mgr.SetFields(fields); err != nil {
		if errors.Is(err, plan.ErrUnknownField) {
			web.ErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		web.ErrorResponse(w, "Failed to save plan", http.StatusInternalServerError)
		return
	}

	web.RespondJSON(w, http.StatusOK, viewOf(mgr.Snapshot()))
}

func handleReset(w http.ResponseWriter, r *http.Request) {
	if err := mgr.Reset(); err != nil {
		web.ErrorResponse(w, "Failed to reset plan", http.StatusInternalServerError)
		return
	}
	web.RespondJSON(w, http.StatusOK, viewOf(mgr.Snapshot()))
}
