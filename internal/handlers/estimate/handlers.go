// Package estimate serves the derived outputs: the monthly cost breakdown
// and the asset runway projection. Everything here is recomputed from the
// working plan on each request.
package estimate

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"careplan/internal/models"
	"careplan/internal/services/costmodel"
	"careplan/internal/services/plan"
	"careplan/internal/services/runway"
	"careplan/internal/web"
)

var (
	mgr    *plan.Manager
	model  *costmodel.Model
	schema *models.ResolvedSchema
)

// Initialize sets up the estimate package with required dependencies
func Initialize(m *plan.Manager, s *models.ResolvedSchema) {
	mgr = m
	schema = s
	model = costmodel.New(s)
}

// RegisterRoutes registers all estimate routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/estimate", handleEstimate)
	r.Get("/api/estimate/runway", handleRunway)
	r.Get("/api/estimate/runway/chart", handleRunwayChart)
}

func handleEstimate(w http.ResponseWriter, r *http.Request) {
	bd, err := model.Breakdown(mgr.Snapshot())
	if err != nil {
		respondComputeError(w, err)
		return
	}
	web.RespondJSON(w, http.StatusOK, bd)
}

func handleRunway(w http.ResponseWriter, r *http.Request) {
	result, err := project(mgr.Snapshot())
	if err != nil {
		respondComputeError(w, err)
		return
	}
	web.RespondJSON(w, http.StatusOK, result)
}

// handleRunwayChart returns the projection as a Plotly figure payload
func handleRunwayChart(w http.ResponseWriter, r *http.Request) {
	result, err := project(mgr.Snapshot())
	if err != nil {
		respondComputeError(w, err)
		return
	}

	months := []int{}
	balances := []float64{}
	for _, p := range result.Points {
		months = append(months, p.Month)
		b, _ := p.Balance.Float64()
		balances = append(balances, b)
	}

	// Green while assets last the horizon, red when they deplete
	fillColor := "rgba(34, 197, 94, 0.3)"
	lineColor := "#22c55e"
	if result.Depletes() {
		fillColor = "rgba(239, 68, 68, 0.3)"
		lineColor = "#ef4444"
	}

	chartData := map[string]interface{}{
		"data": []map[string]interface{}{
			{
				"type":      "scatter",
				"mode":      "lines",
				"name":      "Remaining Assets",
				"x":         months,
				"y":         balances,
				"fill":      "tozeroy",
				"fillcolor": fillColor,
				"line": map[string]interface{}{
					"color": lineColor,
					"width": 2,
				},
			},
		},
		"layout": map[string]interface{}{
			"title": "Asset Runway",
			"xaxis": map[string]interface{}{
				"title": "Month",
			},
			"yaxis": map[string]interface{}{
				"title":      "Balance ($)",
				"tickformat": "$,.0f",
			},
			"showlegend": false,
		},
	}

	web.RespondJSON(w, http.StatusOK, chartData)
}

// project builds the runway for the given state
func project(state *plan.State) (*models.RunwayResult, error) {
	bd, err := model.Breakdown(state)
	if err != nil {
		return nil, err
	}

	opts := []runway.Option{runway.WithHorizon(schema.Settings.HorizonMonths)}
	if state.Bool("sell_home") {
		opts = append(opts, runway.WithHomeSale(models.HomeSaleEvent{
			Month:          state.Int("home_sale_month"),
			SalePrice:      state.Currency("sale_price"),
			MortgagePayoff: state.Currency("mortgage_payoff"),
			SellingCosts:   state.Currency("selling_costs"),
		}))
	}

	p := runway.New(bd.MonthlyIncome, bd.MonthlyCost, state.Currency("liquid_assets"), opts...)
	return p.Run(), nil
}

func respondComputeError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrValidation) {
		web.ErrorResponse(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	web.ErrorResponse(w, "Failed to compute estimate", http.StatusInternalServerError)
}
