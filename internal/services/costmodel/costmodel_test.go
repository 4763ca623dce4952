package costmodel

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careplan/internal/models"
)

// fakeInputs satisfies Inputs with a flat map, mirroring how the wizard
// state exposes values
type fakeInputs map[string]interface{}

func (f fakeInputs) Currency(key string) decimal.Decimal {
	if v, ok := f[key].(float64); ok {
		return decimal.NewFromFloat(v)
	}
	return decimal.Zero
}

func (f fakeInputs) Int(key string) int {
	if v, ok := f[key].(int); ok {
		return v
	}
	return 0
}

func (f fakeInputs) Percent(key string) float64 {
	if v, ok := f[key].(float64); ok {
		return v
	}
	return 0
}

func (f fakeInputs) Enum(key string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

func (f fakeInputs) Bool(key string) bool {
	if v, ok := f[key].(bool); ok {
		return v
	}
	return false
}

func newTestModel() *Model {
	return New(&models.ResolvedSchema{
		Lookups:  models.DefaultRateTables(),
		Settings: models.DefaultSettings(),
	})
}

func TestPersonCostInHome(t *testing.T) {
	m := newTestModel()

	in := fakeInputs{
		"care_type_a":     CareInHome,
		"hours_per_day_a": 8,
		"days_per_week_a": 5,
		"mobility_a":      "walker",
		"chronic_a":       "some",
	}

	bd, err := m.Breakdown(in)
	require.NoError(t, err)

	// 8h x 5d x 4.345 wk/mo x $34/h = 5909.20, plus 75 mobility and 150 chronic
	assert.Equal(t, "6134.2", bd.Persons[0].Monthly.String())
	assert.True(t, bd.Persons[1].Monthly.IsZero())
	assert.Equal(t, "6134.2", bd.CareTotal.String())
}

func TestPersonCostFacility(t *testing.T) {
	m := newTestModel()

	tests := []struct {
		name     string
		careType string
		want     string
	}{
		// studio 3500 + medium 600 + walker 150 + some 150
		{"assisted living", CareAssistedLiving, "4400"},
		// memory care multiplies the facility base by 1.25
		{"memory care", CareMemoryCare, "5500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := fakeInputs{
				"care_type_a":  tt.careType,
				"room_type_a":  "studio",
				"care_level_a": "medium",
				"mobility_a":   "walker",
				"chronic_a":    "some",
			}
			bd, err := m.Breakdown(in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, bd.Persons[0].Monthly.String())
		})
	}
}

func TestNoPaidCareContributesZero(t *testing.T) {
	m := newTestModel()

	bd, err := m.Breakdown(fakeInputs{"care_type_a": CareNone})
	require.NoError(t, err)
	assert.True(t, bd.CareTotal.IsZero())
	assert.True(t, bd.MonthlyCost.IsZero())
}

func TestStateMultiplierScalesPersonCost(t *testing.T) {
	schema := &models.ResolvedSchema{
		Lookups:  models.DefaultRateTables(),
		Settings: models.DefaultSettings(),
	}
	schema.Lookups.StateMultipliers = map[string]float64{
		"national": 1.0,
		"wa":       1.2,
	}
	m := New(schema)

	in := fakeInputs{
		"care_type_a": CareAssistedLiving,
		"room_type_a": "shared",
		"state":       "wa",
	}
	bd, err := m.Breakdown(in)
	require.NoError(t, err)
	assert.Equal(t, "3600", bd.Persons[0].Monthly.String())
}

func TestSharedUnitAdjustment(t *testing.T) {
	m := newTestModel()

	base := fakeInputs{
		"care_type_a": CareAssistedLiving,
		"room_type_a": "shared",
		"care_type_b": CareAssistedLiving,
		"room_type_b": "shared",
	}

	t.Run("applies when both in facility and sharing", func(t *testing.T) {
		in := fakeInputs{"share_one_unit": true}
		for k, v := range base {
			in[k] = v
		}
		bd, err := m.Breakdown(in)
		require.NoError(t, err)
		assert.Equal(t, "1200", bd.SharedUnitAdjustment.String())
		// 3000 + 3000 - 1200
		assert.Equal(t, "4800", bd.CareTotal.String())
	})

	t.Run("skipped without opt-in", func(t *testing.T) {
		bd, err := m.Breakdown(base)
		require.NoError(t, err)
		assert.True(t, bd.SharedUnitAdjustment.IsZero())
	})

	t.Run("skipped when one person is at home", func(t *testing.T) {
		in := fakeInputs{
			"care_type_a":     CareAssistedLiving,
			"room_type_a":     "shared",
			"care_type_b":     CareInHome,
			"hours_per_day_b": 4,
			"days_per_week_b": 3,
			"share_one_unit":  true,
		}
		bd, err := m.Breakdown(in)
		require.NoError(t, err)
		assert.True(t, bd.SharedUnitAdjustment.IsZero())
	})
}

func TestVAOffsetCoupleSameCategoryCountsOnce(t *testing.T) {
	m := newTestModel()

	in := fakeInputs{
		"care_type_a":   CareAssistedLiving,
		"room_type_a":   "studio",
		"va_category_a": "veteran_spouse",
		"va_category_b": "veteran_spouse",
	}
	bd, err := m.Breakdown(in)
	require.NoError(t, err)

	assert.Equal(t, "2795.67", bd.VAOffset.String())
	assert.Equal(t, "704.33", bd.MonthlyCost.String())
}

func TestVAOffsetDistinctCategoriesBothCount(t *testing.T) {
	m := newTestModel()

	in := fakeInputs{
		"va_category_a": "veteran",
		"va_category_b": "surviving_spouse",
	}
	bd, err := m.Breakdown(in)
	require.NoError(t, err)

	// 2358.33 + 1515.58
	assert.Equal(t, "3873.91", bd.VAOffset.String())
}

func TestVAOffsetNeverDrivesCostNegative(t *testing.T) {
	m := newTestModel()

	bd, err := m.Breakdown(fakeInputs{"va_category_a": "veteran"})
	require.NoError(t, err)
	assert.True(t, bd.MonthlyCost.IsZero())
}

func TestAmortizedMonthly(t *testing.T) {
	monthly, err := AmortizedMonthly(decimal.NewFromInt(6000), 12)
	require.NoError(t, err)
	assert.Equal(t, "500", monthly.String())

	_, err = AmortizedMonthly(decimal.NewFromInt(6000), 0)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = AmortizedMonthly(decimal.NewFromInt(6000), -3)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestBreakdownHousehold(t *testing.T) {
	m := newTestModel()

	in := fakeInputs{
		"care_type_a":     CareInHome,
		"hours_per_day_a": 8,
		"days_per_week_a": 5,

		"maintain_home": true,
		"mortgage":      1200.0,
		"taxes":         300.0,
		"insurance":     100.0,
		"utilities":     250.0,

		"home_mod_cost":   6000.0,
		"home_mod_months": 12,

		"rx": 120.0,

		"va_category_a": "veteran",

		"ss_a":      2100.0,
		"pension_a": 800.0,
		"ltc_a":     true,
	}

	bd, err := m.Breakdown(in)
	require.NoError(t, err)

	assert.Equal(t, "5909.2", bd.CareTotal.String())
	assert.Equal(t, "1850", bd.HomeCarrying.String())
	assert.Equal(t, "500", bd.HomeModMonthly.String())
	assert.Equal(t, "120", bd.Optional.String())
	assert.Equal(t, "8379.2", bd.GrossMonthlyCost.String())
	assert.Equal(t, "2358.33", bd.VAOffset.String())
	assert.Equal(t, "6020.87", bd.MonthlyCost.String())
	// 2100 + 800 + 1800 LTC payout
	assert.Equal(t, "4700", bd.MonthlyIncome.String())
	assert.Equal(t, "1320.87", bd.MonthlyGap.String())
}

func TestHomeCarryingGatedOnMaintainHome(t *testing.T) {
	m := newTestModel()

	in := fakeInputs{
		"maintain_home": false,
		"mortgage":      1200.0,
		"taxes":         300.0,
	}
	bd, err := m.Breakdown(in)
	require.NoError(t, err)
	assert.True(t, bd.HomeCarrying.IsZero())
}

func TestGapFlooredAtZero(t *testing.T) {
	m := newTestModel()

	in := fakeInputs{
		"care_type_a":     CareInHome,
		"hours_per_day_a": 2,
		"days_per_week_a": 2,
		"ss_a":            9000.0,
	}
	bd, err := m.Breakdown(in)
	require.NoError(t, err)
	assert.True(t, bd.MonthlyGap.IsZero())
}

func TestBreakdownAmortizationError(t *testing.T) {
	m := newTestModel()

	in := fakeInputs{
		"home_mod_cost":   6000.0,
		"home_mod_months": 0,
	}
	_, err := m.Breakdown(in)
	assert.ErrorIs(t, err, models.ErrValidation)
}
