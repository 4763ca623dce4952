package models

import "github.com/shopspring/decimal"

// PersonCost is one person's share of the monthly care cost
type PersonCost struct {
	Person   string          `json:"person"` // "a" or "b"
	CareType string          `json:"care_type"`
	Monthly  decimal.Decimal `json:"monthly"`
}

// CostBreakdown is the derived monthly cost picture for the household.
// It is recomputed on every read and never stored.
type CostBreakdown struct {
	Persons              []PersonCost    `json:"persons"`
	SharedUnitAdjustment decimal.Decimal `json:"shared_unit_adjustment"`
	CareTotal            decimal.Decimal `json:"care_total"`
	HomeCarrying         decimal.Decimal `json:"home_carrying"`
	HomeModMonthly       decimal.Decimal `json:"home_mod_monthly"`
	Optional             decimal.Decimal `json:"optional"`
	GrossMonthlyCost     decimal.Decimal `json:"gross_monthly_cost"`
	VAOffset             decimal.Decimal `json:"va_offset"`
	MonthlyCost          decimal.Decimal `json:"monthly_cost"` // gross minus VA offset
	MonthlyIncome        decimal.Decimal `json:"monthly_income"`
	MonthlyGap           decimal.Decimal `json:"monthly_gap"` // max(0, cost - income)
}
