package models

// MobilityAdders holds monthly mobility surcharges, which differ between
// facility and in-home care
type MobilityAdders struct {
	Facility map[string]float64 `json:"facility,omitempty"`
	InHome   map[string]float64 `json:"in_home,omitempty"`
}

// RateTables are the lookup tables the cost model reads. Hourly rates are
// keyed by hours-per-day breakpoint (as a decimal string, e.g. "8").
type RateTables struct {
	RoomType         map[string]float64 `json:"room_type,omitempty"`
	CareLevelAdders  map[string]float64 `json:"care_level_adders,omitempty"`
	MobilityAdders   *MobilityAdders    `json:"mobility_adders,omitempty"`
	ChronicAdders    map[string]float64 `json:"chronic_adders,omitempty"`
	InHomeHourly     map[string]float64 `json:"in_home_hourly,omitempty"`
	VACategories     map[string]float64 `json:"va_categories,omitempty"`
	StateMultipliers map[string]float64 `json:"state_multipliers,omitempty"`
}

// Settings are scalar knobs applied across the cost and runway models
type Settings struct {
	MemoryCareMultiplier float64 `json:"memory_care_multiplier"`
	SecondPersonCost     float64 `json:"second_person_cost"`
	LTCMonthlyAdd        float64 `json:"ltc_monthly_add"`
	WeeksPerMonth        float64 `json:"weeks_per_month"`
	HorizonMonths        int     `json:"horizon_months"`
}

// SettingsPatch is the document form of Settings. Pointer fields make an
// omitted setting distinguishable from an explicit zero, so a deployment
// can turn a knob off without it snapping back to the default.
type SettingsPatch struct {
	MemoryCareMultiplier *float64 `json:"memory_care_multiplier,omitempty"`
	SecondPersonCost     *float64 `json:"second_person_cost,omitempty"`
	LTCMonthlyAdd        *float64 `json:"ltc_monthly_add,omitempty"`
	WeeksPerMonth        *float64 `json:"weeks_per_month,omitempty"`
	HorizonMonths        *int     `json:"horizon_months,omitempty"`
}

// Apply overwrites the settings the patch carries, leaving the rest alone
func (p *SettingsPatch) Apply(s *Settings) {
	if p == nil {
		return
	}
	if p.MemoryCareMultiplier != nil {
		s.MemoryCareMultiplier = *p.MemoryCareMultiplier
	}
	if p.SecondPersonCost != nil {
		s.SecondPersonCost = *p.SecondPersonCost
	}
	if p.LTCMonthlyAdd != nil {
		s.LTCMonthlyAdd = *p.LTCMonthlyAdd
	}
	if p.WeeksPerMonth != nil {
		s.WeeksPerMonth = *p.WeeksPerMonth
	}
	if p.HorizonMonths != nil {
		s.HorizonMonths = *p.HorizonMonths
	}
}

// DefaultRateTables returns the built-in tables used to backfill schema
// documents that omit a lookup
func DefaultRateTables() RateTables {
	return RateTables{
		RoomType: map[string]float64{
			"studio":    3500,
			"1_bedroom": 4200,
			"shared":    3000,
		},
		CareLevelAdders: map[string]float64{
			"low":    200,
			"medium": 600,
			"high":   1200,
		},
		MobilityAdders: &MobilityAdders{
			Facility: map[string]float64{
				"independent": 0,
				"walker":      150,
				"wheelchair":  300,
			},
			InHome: map[string]float64{
				"independent": 0,
				"walker":      75,
				"wheelchair":  150,
			},
		},
		ChronicAdders: map[string]float64{
			"none":     0,
			"some":     150,
			"multiple": 400,
		},
		// Hourly rate by hours of paid care per day. Intermediate hour
		// counts interpolate; values outside the table clamp.
		InHomeHourly: map[string]float64{
			"2":  42,
			"4":  38,
			"8":  34,
			"12": 32,
			"24": 28,
		},
		VACategories: map[string]float64{
			"none":             0,
			"veteran":          2358.33,
			"veteran_spouse":   2795.67,
			"two_veterans":     3740.50,
			"surviving_spouse": 1515.58,
		},
		StateMultipliers: map[string]float64{
			"national": 1.0,
		},
	}
}

// DefaultSettings returns the built-in settings used when the schema
// document omits them
func DefaultSettings() Settings {
	return Settings{
		MemoryCareMultiplier: 1.25,
		SecondPersonCost:     1200,
		LTCMonthlyAdd:        1800,
		WeeksPerMonth:        4.345,
		HorizonMonths:        360,
	}
}
