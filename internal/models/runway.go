package models

import "github.com/shopspring/decimal"

// RunwayPoint is one month of the asset-depletion series. Balance is the
// remaining liquid assets at the end of that month.
type RunwayPoint struct {
	Month   int             `json:"month"`
	Balance decimal.Decimal `json:"balance"`
}

// RunwayResult is a fully materialized projection. NonDepleting is the
// sentinel for income covering cost: the series is empty and DepletionMonth
// is nil.
type RunwayResult struct {
	Points         []RunwayPoint   `json:"points"`
	DepletionMonth *int            `json:"depletion_month"`
	NonDepleting   bool            `json:"non_depleting"`
	HorizonMonths  int             `json:"horizon_months"`
	FinalBalance   decimal.Decimal `json:"final_balance"`
}

// Depletes reports whether the balance reached zero within the horizon
func (r *RunwayResult) Depletes() bool {
	return r.DepletionMonth != nil
}

// HomeSaleEvent injects one-time net sale proceeds into the runway at a
// given month index (1-based; 0 means the proceeds are already in assets)
type HomeSaleEvent struct {
	Month          int             `json:"month"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	MortgagePayoff decimal.Decimal `json:"mortgage_payoff"`
	SellingCosts   decimal.Decimal `json:"selling_costs"`
}

// NetProceeds is sale price minus payoff and selling costs, floored at zero
func (e HomeSaleEvent) NetProceeds() decimal.Decimal {
	net := e.SalePrice.Sub(e.MortgagePayoff).Sub(e.SellingCosts)
	if net.IsNegative() {
		return decimal.Zero
	}
	return Money(net)
}
