package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careplan/internal/models"
)

func testSchema() *models.ResolvedSchema {
	min1 := float64(1)
	return &models.ResolvedSchema{
		Groups: []models.Group{
			{
				Name: "care",
				Fields: []models.Field{
					{Key: "care_type_a", Type: models.FieldEnum, Default: "none",
						Choices: []string{"none", "in_home", "assisted_living", "memory_care"}},
					{Key: "hours_per_day_a", Type: models.FieldInteger, Default: 4},
					{Key: "maintain_home", Type: models.FieldBoolean, Default: true},
				},
			},
			{
				Name: "finances",
				Fields: []models.Field{
					{Key: "liquid_assets", Type: models.FieldCurrency, Default: 100000},
					{Key: "home_mod_months", Type: models.FieldInteger, Default: 12, Min: &min1},
					{Key: "growth_rate", Type: models.FieldPercent, Default: 2.5},
				},
			},
		},
		Lookups:  models.DefaultRateTables(),
		Settings: models.DefaultSettings(),
	}
}

func TestNewStateDefaults(t *testing.T) {
	s := NewState(testSchema())

	assert.Equal(t, "none", s.Enum("care_type_a"))
	assert.Equal(t, 4, s.Int("hours_per_day_a"))
	assert.True(t, s.Bool("maintain_home"))
	assert.Equal(t, "100000", s.Currency("liquid_assets").String())
	assert.Equal(t, 2.5, s.Percent("growth_rate"))
	assert.Empty(t, s.Flags())
}

func TestSetCoercion(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		raw     interface{}
		wantErr bool
		check   func(t *testing.T, s *State)
	}{
		{
			name: "enum valid",
			key:  "care_type_a", raw: "memory_care",
			check: func(t *testing.T, s *State) {
				assert.Equal(t, "memory_care", s.Enum("care_type_a"))
			},
		},
		{
			name: "enum not in choices",
			key:  "care_type_a", raw: "hospice",
			wantErr: true,
			check: func(t *testing.T, s *State) {
				assert.Equal(t, "none", s.Enum("care_type_a"))
			},
		},
		{
			name: "currency from numeric string",
			key:  "liquid_assets", raw: "2500.75",
			check: func(t *testing.T, s *State) {
				assert.Equal(t, "2500.75", s.Currency("liquid_assets").String())
			},
		},
		{
			name: "currency blank string reads as zero",
			key:  "liquid_assets", raw: "",
			check: func(t *testing.T, s *State) {
				assert.True(t, s.Currency("liquid_assets").IsZero())
			},
		},
		{
			name: "currency negative rejected",
			key:  "liquid_assets", raw: -50.0,
			wantErr: true,
			check: func(t *testing.T, s *State) {
				assert.Equal(t, "100000", s.Currency("liquid_assets").String())
			},
		},
		{
			name: "integer fractional rejected",
			key:  "hours_per_day_a", raw: 4.5,
			wantErr: true,
			check: func(t *testing.T, s *State) {
				assert.Equal(t, 4, s.Int("hours_per_day_a"))
			},
		},
		{
			name: "integer below minimum rejected",
			key:  "home_mod_months", raw: 0,
			wantErr: true,
			check: func(t *testing.T, s *State) {
				assert.Equal(t, 12, s.Int("home_mod_months"))
			},
		},
		{
			name: "percent above hundred rejected",
			key:  "growth_rate", raw: 250.0,
			wantErr: true,
		},
		{
			name: "boolean from string",
			key:  "maintain_home", raw: "no",
			check: func(t *testing.T, s *State) {
				assert.False(t, s.Bool("maintain_home"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState(testSchema())
			err := s.Set(tt.key, tt.raw)
			if tt.wantErr {
				var verr *models.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.ErrorIs(t, err, models.ErrValidation)
				assert.Contains(t, s.Flags(), tt.key)
			} else {
				require.NoError(t, err)
				assert.NotContains(t, s.Flags(), tt.key)
			}
			if tt.check != nil {
				tt.check(t, s)
			}
		})
	}
}

func TestSetUnknownField(t *testing.T) {
	s := NewState(testSchema())
	err := s.Set("no_such_field", 1)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestFlagClearedOnValidWrite(t *testing.T) {
	s := NewState(testSchema())

	require.Error(t, s.Set("hours_per_day_a", 4.5))
	assert.Contains(t, s.Flags(), "hours_per_day_a")

	require.NoError(t, s.Set("hours_per_day_a", 8))
	assert.NotContains(t, s.Flags(), "hours_per_day_a")
	assert.Equal(t, 8, s.Int("hours_per_day_a"))
}

func TestAccessorZeroOnTypeMismatch(t *testing.T) {
	s := NewState(testSchema())

	// care_type_a is an enum, so the currency accessor yields zero
	assert.True(t, s.Currency("care_type_a").IsZero())
	assert.Equal(t, 0, s.Int("missing_key"))
	assert.Equal(t, "", s.Enum("missing_key"))
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewState(testSchema())
	c := s.Clone()

	require.NoError(t, c.Set("hours_per_day_a", 12))
	assert.Equal(t, 4, s.Int("hours_per_day_a"))
	assert.Equal(t, 12, c.Int("hours_per_day_a"))
}
