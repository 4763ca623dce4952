package costmodel

import (
	"github.com/shopspring/decimal"

	"careplan/internal/models"
)

// Care plan kinds selectable per person
const (
	CareNone           = "none"
	CareInHome         = "in_home"
	CareAssistedLiving = "assisted_living"
	CareMemoryCare     = "memory_care"
)

// personTags are the household members, in display order
var personTags = []string{"a", "b"}

// incomeKeys are the currency fields summed into household monthly income
var incomeKeys = []string{
	"ss_a", "pension_a",
	"ss_b", "pension_b",
	"disability",
	"rental_income",
	"wages_part_time",
	"alimony_support",
	"dividends_interest",
	"other_income_monthly",
}

// homeCarryingKeys are the monthly costs of keeping the house, counted
// only while the household maintains it
var homeCarryingKeys = []string{"mortgage", "taxes", "insurance", "hoa", "utilities"}

// optionalKeys are the recurring out-of-pocket extras
var optionalKeys = []string{"medicare", "dvh", "rx", "personal", "other_monthly"}

// Inputs is the read surface the model needs from the wizard state. Every
// accessor returns the type's zero value for a missing key, so the model
// never branches on presence.
type Inputs interface {
	Currency(key string) decimal.Decimal
	Int(key string) int
	Percent(key string) float64
	Enum(key string) string
	Bool(key string) bool
}

// Model computes monthly cost breakdowns against one resolved schema's
// rate tables and settings
type Model struct {
	lookups  models.RateTables
	settings models.Settings
	hourly   *HourlyTable
}

// New builds a model from the resolved schema
func New(schema *models.ResolvedSchema) *Model {
	return &Model{
		lookups:  schema.Lookups,
		settings: schema.Settings,
		hourly:   NewHourlyTable(schema.Lookups.InHomeHourly),
	}
}

// Breakdown computes the full monthly cost picture for the household. The
// only validation failure it can surface is a bad amortization horizon.
func (m *Model) Breakdown(in Inputs) (*models.CostBreakdown, error) {
	mult := m.stateMultiplier(in)

	bd := &models.CostBreakdown{}
	careTotal := decimal.Zero
	for _, tag := range personTags {
		cost := m.personCost(in, tag, mult)
		bd.Persons = append(bd.Persons, models.PersonCost{
			Person:   tag,
			CareType: careType(in, tag),
			Monthly:  cost,
		})
		careTotal = careTotal.Add(cost)
	}

	bd.SharedUnitAdjustment = m.sharedUnitAdjustment(in, mult)
	careTotal = careTotal.Sub(bd.SharedUnitAdjustment)
	if careTotal.IsNegative() {
		careTotal = decimal.Zero
	}
	bd.CareTotal = models.Money(careTotal)

	if in.Bool("maintain_home") {
		bd.HomeCarrying = models.Money(sumCurrency(in, homeCarryingKeys))
	} else {
		bd.HomeCarrying = decimal.Zero
	}
	bd.Optional = models.Money(sumCurrency(in, optionalKeys))

	modCost := in.Currency("home_mod_cost")
	if modCost.IsPositive() {
		monthly, err := AmortizedMonthly(modCost, in.Int("home_mod_months"))
		if err != nil {
			return nil, err
		}
		bd.HomeModMonthly = monthly
	} else {
		bd.HomeModMonthly = decimal.Zero
	}

	bd.GrossMonthlyCost = models.Money(bd.CareTotal.
		Add(bd.HomeCarrying).
		Add(bd.HomeModMonthly).
		Add(bd.Optional))

	bd.VAOffset = m.vaOffset(in)
	net := bd.GrossMonthlyCost.Sub(bd.VAOffset)
	if net.IsNegative() {
		net = decimal.Zero
	}
	bd.MonthlyCost = models.Money(net)

	bd.MonthlyIncome = models.Money(m.monthlyIncome(in))

	gap := bd.MonthlyCost.Sub(bd.MonthlyIncome)
	if gap.IsNegative() {
		gap = decimal.Zero
	}
	bd.MonthlyGap = models.Money(gap)

	return bd, nil
}

// AmortizedMonthly spreads a one-time cost across a horizon of whole
// months. The horizon must be at least 1.
func AmortizedMonthly(cost decimal.Decimal, months int) (decimal.Decimal, error) {
	if months < 1 {
		return decimal.Zero, &models.ValidationError{
			Field:  "home_mod_months",
			Reason: "amortization horizon must be at least 1 month",
			Value:  months,
		}
	}
	return models.Money(cost.Div(decimal.NewFromInt(int64(months)))), nil
}

// personCost computes one person's monthly care cost before any household
// adjustments
func (m *Model) personCost(in Inputs, tag string, mult float64) decimal.Decimal {
	chronic := m.lookups.ChronicAdders[in.Enum("chronic_"+tag)]

	switch careType(in, tag) {
	case CareInHome:
		hours := float64(in.Int("hours_per_day_" + tag))
		days := float64(in.Int("days_per_week_" + tag))
		rate := m.hourly.Rate(hours)
		base := hours * days * m.settings.WeeksPerMonth * rate
		base += m.mobilityInHome(in.Enum("mobility_"+tag)) + chronic
		return models.MoneyFromFloat(base * mult)

	case CareAssistedLiving, CareMemoryCare:
		base := m.lookups.RoomType[in.Enum("room_type_"+tag)]
		base += m.lookups.CareLevelAdders[in.Enum("care_level_"+tag)]
		base += m.mobilityFacility(in.Enum("mobility_" + tag))
		base += chronic
		if careType(in, tag) == CareMemoryCare {
			base *= m.settings.MemoryCareMultiplier
		}
		return models.MoneyFromFloat(base * mult)
	}

	return decimal.Zero
}

// sharedUnitAdjustment is the discount for a couple sharing one facility
// unit. It applies only when both persons are in facility care and the
// household opted in.
func (m *Model) sharedUnitAdjustment(in Inputs, mult float64) decimal.Decimal {
	if !in.Bool("share_one_unit") {
		return decimal.Zero
	}
	if !isFacility(careType(in, "a")) || !isFacility(careType(in, "b")) {
		return decimal.Zero
	}
	return models.MoneyFromFloat(m.settings.SecondPersonCost * mult)
}

// vaOffset sums the household's Aid & Attendance benefit. Each distinct
// benefit category counts once no matter how many persons reference it.
func (m *Model) vaOffset(in Inputs) decimal.Decimal {
	seen := make(map[string]bool)
	total := decimal.Zero
	for _, tag := range personTags {
		cat := in.Enum("va_category_" + tag)
		if cat == "" || cat == "none" || seen[cat] {
			continue
		}
		seen[cat] = true
		total = total.Add(models.MoneyFromFloat(m.lookups.VACategories[cat]))
	}
	return models.Money(total)
}

// monthlyIncome aggregates household income plus long-term-care insurance
// payouts per covered person
func (m *Model) monthlyIncome(in Inputs) decimal.Decimal {
	total := sumCurrency(in, incomeKeys)
	for _, tag := range personTags {
		if in.Bool("ltc_" + tag) {
			total = total.Add(models.MoneyFromFloat(m.settings.LTCMonthlyAdd))
		}
	}
	return total
}

func (m *Model) stateMultiplier(in Inputs) float64 {
	if v, ok := m.lookups.StateMultipliers[in.Enum("state")]; ok {
		return v
	}
	return 1.0
}

func (m *Model) mobilityFacility(key string) float64 {
	if m.lookups.MobilityAdders == nil {
		return 0
	}
	return m.lookups.MobilityAdders.Facility[key]
}

func (m *Model) mobilityInHome(key string) float64 {
	if m.lookups.MobilityAdders == nil {
		return 0
	}
	return m.lookups.MobilityAdders.InHome[key]
}

func careType(in Inputs, tag string) string {
	ct := in.Enum("care_type_" + tag)
	if ct == "" {
		return CareNone
	}
	return ct
}

func isFacility(careType string) bool {
	return careType == CareAssistedLiving || careType == CareMemoryCare
}

func sumCurrency(in Inputs, keys []string) decimal.Decimal {
	total := decimal.Zero
	for _, k := range keys {
		total = total.Add(in.Currency(k))
	}
	return total
}
