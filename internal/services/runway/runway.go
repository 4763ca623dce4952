// Package runway projects how long liquid assets cover the monthly gap
// between care cost and household income.
package runway

import (
	"github.com/shopspring/decimal"

	"careplan/internal/models"
)

// DefaultHorizonMonths bounds a projection at thirty years
const DefaultHorizonMonths = 360

// Option configures a projection
type Option func(*Projection)

// WithHorizon overrides the maximum number of months projected
func WithHorizon(months int) Option {
	return func(p *Projection) {
		if months > 0 {
			p.horizon = months
		}
	}
}

// WithHomeSale schedules one-time net sale proceeds to land at the event's
// month index
func WithHomeSale(event models.HomeSaleEvent) Option {
	return func(p *Projection) {
		p.sale = &event
	}
}

// Projection walks the asset balance forward one month at a time. It is
// deterministic: two projections built from the same inputs produce the
// same series.
type Projection struct {
	shortfall decimal.Decimal
	balance   decimal.Decimal
	horizon   int
	sale      *models.HomeSaleEvent

	month    int
	depleted bool
}

// New builds a projection from the household's monthly income, monthly
// cost, and starting liquid assets. The monthly shortfall is floored at
// zero, so income covering cost yields a non-depleting projection.
func New(income, cost, liquidAssets decimal.Decimal, opts ...Option) *Projection {
	shortfall := cost.Sub(income)
	if shortfall.IsNegative() {
		shortfall = decimal.Zero
	}

	p := &Projection{
		shortfall: shortfall,
		balance:   liquidAssets,
		horizon:   DefaultHorizonMonths,
	}
	for _, opt := range opts {
		opt(p)
	}

	// proceeds scheduled at or before month zero are part of the
	// starting balance
	if p.sale != nil && p.sale.Month <= 0 {
		p.balance = p.balance.Add(p.sale.NetProceeds())
		p.sale = nil
	}

	return p
}

// NonDepleting reports whether the balance can never shrink. A scheduled
// home sale cannot change this; it only adds assets.
func (p *Projection) NonDepleting() bool {
	return p.shortfall.IsZero()
}

// Next produces the following month of the series. It returns false once
// the projection is exhausted: immediately for a non-depleting household,
// otherwise after depletion or the horizon, whichever comes first.
func (p *Projection) Next() (models.RunwayPoint, bool) {
	if p.NonDepleting() || p.depleted || p.month >= p.horizon {
		return models.RunwayPoint{}, false
	}

	p.month++
	if p.sale != nil && p.sale.Month == p.month {
		p.balance = p.balance.Add(p.sale.NetProceeds())
		p.sale = nil
	}
	p.balance = p.balance.Sub(p.shortfall)

	if !p.balance.IsPositive() {
		p.depleted = true
	}

	return models.RunwayPoint{Month: p.month, Balance: models.Money(p.balance)}, true
}

// Run materializes the whole series
func (p *Projection) Run() *models.RunwayResult {
	result := &models.RunwayResult{
		HorizonMonths: p.horizon,
		NonDepleting:  p.NonDepleting(),
		FinalBalance:  models.Money(p.balance),
	}

	for {
		point, ok := p.Next()
		if !ok {
			break
		}
		result.Points = append(result.Points, point)
		result.FinalBalance = point.Balance
		if p.depleted {
			m := point.Month
			result.DepletionMonth = &m
		}
	}

	return result
}
