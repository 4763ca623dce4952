package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careplan/internal/models"
)

func baseSchema() *models.Schema {
	return &models.Schema{
		Groups: []models.Group{
			{
				Name: "care",
				Fields: []models.Field{
					{Key: "care_type_a", Type: models.FieldEnum, Default: "none",
						Choices: []string{"none", "in_home", "assisted_living", "memory_care"}},
					{Key: "hours_per_day_a", Type: models.FieldInteger, Default: 4},
				},
			},
			{
				Name: "household",
				Fields: []models.Field{
					{Key: "maintain_home", Type: models.FieldBoolean, Default: true},
				},
			},
		},
	}
}

func TestResolveBaseOnly(t *testing.T) {
	rs, err := Resolve(baseSchema(), nil)
	require.NoError(t, err)

	assert.Len(t, rs.Groups, 2)
	assert.Len(t, rs.Fields(), 3)

	// omitted lookups and settings come from the defaults
	assert.Equal(t, 3500.0, rs.Lookups.RoomType["studio"])
	assert.Equal(t, 360, rs.Settings.HorizonMonths)
}

func TestResolveReplaceFieldKeepsPosition(t *testing.T) {
	overlay := &models.Overlay{
		Directives: []models.Directive{
			{
				Action: models.ActionReplaceField,
				Target: "care",
				Field: &models.Field{
					Key: "hours_per_day_a", Type: models.FieldInteger, Default: 8,
				},
			},
		},
	}

	rs, err := Resolve(baseSchema(), overlay)
	require.NoError(t, err)

	f, ok := rs.FieldByKey("hours_per_day_a")
	require.True(t, ok)
	assert.Equal(t, 8, f.Default)

	// still the second field of the first group
	assert.Equal(t, "hours_per_day_a", rs.Groups[0].Fields[1].Key)
}

func TestResolveReplaceAbsentFieldAppends(t *testing.T) {
	overlay := &models.Overlay{
		Directives: []models.Directive{
			{
				Action: models.ActionReplaceField,
				Target: "household",
				Field: &models.Field{
					Key: "share_one_unit", Type: models.FieldBoolean, Default: false,
				},
			},
		},
	}

	rs, err := Resolve(baseSchema(), overlay)
	require.NoError(t, err)

	_, ok := rs.FieldByKey("share_one_unit")
	assert.True(t, ok)
	assert.Equal(t, "share_one_unit", rs.Groups[1].Fields[1].Key)
}

func TestResolveAppendFieldMissingGroup(t *testing.T) {
	overlay := &models.Overlay{
		Directives: []models.Directive{
			{
				Action: models.ActionAppendField,
				Target: "no_such_group",
				Field: &models.Field{
					Key: "liquid_assets", Type: models.FieldCurrency,
				},
			},
		},
	}

	_, err := Resolve(baseSchema(), overlay)
	var serr *SchemaError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestResolveAddGroupDuplicateIsNoOp(t *testing.T) {
	overlay := &models.Overlay{
		Directives: []models.Directive{
			{
				Action: models.ActionAddGroup,
				Group: &models.Group{
					Name: "care",
					Fields: []models.Field{
						{Key: "intruder", Type: models.FieldInteger},
					},
				},
			},
		},
	}

	rs, err := Resolve(baseSchema(), overlay)
	require.NoError(t, err)

	assert.Len(t, rs.Groups, 2)
	_, ok := rs.FieldByKey("intruder")
	assert.False(t, ok)
}

func TestResolveAddGroupMovesShadowedKeys(t *testing.T) {
	overlay := &models.Overlay{
		Directives: []models.Directive{
			{
				Action: models.ActionAddGroup,
				Group: &models.Group{
					Name: "extra",
					Fields: []models.Field{
						{Key: "hours_per_day_a", Type: models.FieldInteger, Default: 10},
						{Key: "days_per_week_a", Type: models.FieldInteger, Default: 5},
					},
				},
			},
		},
	}

	rs, err := Resolve(baseSchema(), overlay)
	require.NoError(t, err)

	// a key redefined by the added group exists exactly once, in it
	counts := make(map[string]int)
	for _, f := range rs.Fields() {
		counts[f.Key]++
	}
	assert.Equal(t, 1, counts["hours_per_day_a"])

	f, ok := rs.FieldByKey("hours_per_day_a")
	require.True(t, ok)
	assert.Equal(t, 10, f.Default)

	require.Len(t, rs.Groups, 3)
	assert.Equal(t, "extra", rs.Groups[2].Name)
	assert.Len(t, rs.Groups[2].Fields, 2)
	assert.Len(t, rs.Groups[0].Fields, 1)
}

func TestResolveLastWriterWins(t *testing.T) {
	overlay := &models.Overlay{
		Directives: []models.Directive{
			{
				Action: models.ActionReplaceField,
				Target: "care",
				Field: &models.Field{
					Key: "hours_per_day_a", Type: models.FieldInteger, Default: 8,
				},
			},
			{
				Action: models.ActionReplaceField,
				Target: "care",
				Field: &models.Field{
					Key: "hours_per_day_a", Type: models.FieldInteger, Default: 12,
				},
			},
		},
	}

	rs, err := Resolve(baseSchema(), overlay)
	require.NoError(t, err)

	f, _ := rs.FieldByKey("hours_per_day_a")
	assert.Equal(t, 12, f.Default)
	assert.Len(t, rs.Groups[0].Fields, 2)
}

func TestResolveDoesNotMutateInputs(t *testing.T) {
	base := baseSchema()
	overlay := &models.Overlay{
		Directives: []models.Directive{
			{
				Action: models.ActionAddGroup,
				Group: &models.Group{
					Name: "finances",
					Fields: []models.Field{
						{Key: "liquid_assets", Type: models.FieldCurrency},
					},
				},
			},
			{
				Action: models.ActionReplaceField,
				Target: "care",
				Field: &models.Field{
					Key: "hours_per_day_a", Type: models.FieldInteger, Default: 24,
				},
			},
		},
	}

	_, err := Resolve(base, overlay)
	require.NoError(t, err)

	assert.Len(t, base.Groups, 2)
	assert.Equal(t, 4, base.Groups[0].Fields[1].Default)
	assert.Len(t, overlay.Directives, 2)
}

func TestResolveOverlayLookupsOverridePerKey(t *testing.T) {
	base := baseSchema()
	base.Lookups = &models.RateTables{
		RoomType: map[string]float64{"studio": 3500, "shared": 3000},
	}
	overlay := &models.Overlay{
		Lookups: &models.RateTables{
			RoomType: map[string]float64{"studio": 4000},
		},
	}

	rs, err := Resolve(base, overlay)
	require.NoError(t, err)

	assert.Equal(t, 4000.0, rs.Lookups.RoomType["studio"])
	assert.Equal(t, 3000.0, rs.Lookups.RoomType["shared"])
}

func TestResolveExplicitZeroSettingSticks(t *testing.T) {
	zero := 0.0
	overlay := &models.Overlay{
		Settings: &models.SettingsPatch{SecondPersonCost: &zero},
	}

	rs, err := Resolve(baseSchema(), overlay)
	require.NoError(t, err)

	// an explicit zero is a configuration, not an omission
	assert.Equal(t, 0.0, rs.Settings.SecondPersonCost)
	assert.Equal(t, 1800.0, rs.Settings.LTCMonthlyAdd)
	assert.Equal(t, 360, rs.Settings.HorizonMonths)
}

func TestResolveRepeatedIsDeterministic(t *testing.T) {
	overlay := &models.Overlay{
		Directives: []models.Directive{
			{
				Action: models.ActionAppendField,
				Target: "household",
				Field: &models.Field{
					Key: "state", Type: models.FieldEnum, Default: "national",
					Choices: []string{"national", "wa"},
				},
			},
		},
	}

	first, err := Resolve(baseSchema(), overlay)
	require.NoError(t, err)
	second, err := Resolve(baseSchema(), overlay)
	require.NoError(t, err)

	assert.Equal(t, first.Groups, second.Groups)
}
