package schema

import (
	"fmt"

	"careplan/internal/models"
)

// Resolve merges overlay into base and returns the resolved schema.
// Directives apply in overlay-document order with last-writer-wins
// semantics; neither input is mutated. A nil overlay resolves the base
// alone.
func Resolve(base *models.Schema, overlay *models.Overlay) (*models.ResolvedSchema, error) {
	if base == nil {
		return nil, invalidDoc("base", "nil document")
	}
	if err := validateBase(base); err != nil {
		return nil, err
	}

	rs := &models.ResolvedSchema{
		Groups:   copyGroups(base.Groups),
		Settings: models.DefaultSettings(),
	}
	if base.Lookups != nil {
		rs.Lookups = copyTables(*base.Lookups)
	}
	base.Settings.Apply(&rs.Settings)

	if overlay != nil {
		mergeTables(&rs.Lookups, overlay.Lookups)
		overlay.Settings.Apply(&rs.Settings)
		for i, d := range overlay.Directives {
			if err := apply(rs, i, d); err != nil {
				return nil, err
			}
		}
	}

	applyTableDefaults(&rs.Lookups)
	return rs, nil
}

func apply(rs *models.ResolvedSchema, idx int, d models.Directive) error {
	switch d.Action {
	case models.ActionAddGroup:
		if d.Group == nil {
			return invalidDoc("overlay", "directive %d: add-group without group payload", idx)
		}
		name := d.Group.Name
		if d.Target != "" {
			name = d.Target
		}
		for _, g := range rs.Groups {
			if g.Name == name {
				// Duplicate add-group is a no-op, not an error.
				return nil
			}
		}
		ng := copyGroup(*d.Group)
		ng.Name = name
		ng.Fields = dedupeFields(ng.Fields)
		// keys the new group shadows move into it
		for _, f := range ng.Fields {
			removeField(rs, f.Key)
		}
		rs.Groups = append(rs.Groups, ng)
		return nil

	case models.ActionAppendField:
		if d.Field == nil {
			return invalidDoc("overlay", "directive %d: append-field without field payload", idx)
		}
		gi := groupIndex(rs, d.Target)
		if gi < 0 {
			return &SchemaError{
				Doc:    "overlay",
				Detail: fmt.Sprintf("directive %d: append-field into %q", idx, d.Target),
				err:    ErrGroupNotFound,
			}
		}
		removeField(rs, d.Field.Key)
		rs.Groups[gi].Fields = append(rs.Groups[gi].Fields, copyField(*d.Field))
		return nil

	case models.ActionReplaceField:
		if d.Field == nil {
			return invalidDoc("overlay", "directive %d: replace-field without field payload", idx)
		}
		if replaceField(rs, *d.Field) {
			return nil
		}
		// Absent key: behaves as append into the target group.
		gi := groupIndex(rs, d.Target)
		if gi < 0 {
			return &SchemaError{
				Doc:    "overlay",
				Detail: fmt.Sprintf("directive %d: replace-field into %q", idx, d.Target),
				err:    ErrGroupNotFound,
			}
		}
		rs.Groups[gi].Fields = append(rs.Groups[gi].Fields, copyField(*d.Field))
		return nil

	default:
		return &SchemaError{
			Doc:    "overlay",
			Detail: fmt.Sprintf("directive %d: action %q", idx, d.Action),
			err:    ErrUnknownAction,
		}
	}
}

func groupIndex(rs *models.ResolvedSchema, name string) int {
	for i, g := range rs.Groups {
		if g.Name == name {
			return i
		}
	}
	return -1
}

// replaceField overwrites the field with the same key in place, wherever it
// currently lives, and reports whether it was found
func replaceField(rs *models.ResolvedSchema, f models.Field) bool {
	for gi := range rs.Groups {
		for fi := range rs.Groups[gi].Fields {
			if rs.Groups[gi].Fields[fi].Key == f.Key {
				rs.Groups[gi].Fields[fi] = copyField(f)
				return true
			}
		}
	}
	return false
}

// dedupeFields keeps the last definition of each key, at the position the
// key first appeared
func dedupeFields(fields []models.Field) []models.Field {
	seen := make(map[string]int, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if i, ok := seen[f.Key]; ok {
			out[i] = f
			continue
		}
		seen[f.Key] = len(out)
		out = append(out, f)
	}
	return out
}

// removeField drops any existing field with the given key so a subsequent
// append keeps keys unique
func removeField(rs *models.ResolvedSchema, key string) {
	for gi := range rs.Groups {
		fields := rs.Groups[gi].Fields
		for fi := range fields {
			if fields[fi].Key == key {
				rs.Groups[gi].Fields = append(fields[:fi:fi], fields[fi+1:]...)
				return
			}
		}
	}
}

func copyGroups(groups []models.Group) []models.Group {
	out := make([]models.Group, len(groups))
	for i, g := range groups {
		out[i] = copyGroup(g)
	}
	return out
}

func copyGroup(g models.Group) models.Group {
	ng := g
	if g.Condition != nil {
		c := *g.Condition
		ng.Condition = &c
	}
	ng.Fields = make([]models.Field, len(g.Fields))
	for i, f := range g.Fields {
		ng.Fields[i] = copyField(f)
	}
	return ng
}

func copyField(f models.Field) models.Field {
	nf := f
	if f.Choices != nil {
		nf.Choices = append([]string(nil), f.Choices...)
	}
	if f.Min != nil {
		m := *f.Min
		nf.Min = &m
	}
	if f.Max != nil {
		m := *f.Max
		nf.Max = &m
	}
	if f.Condition != nil {
		c := *f.Condition
		nf.Condition = &c
	}
	return nf
}

func copyTables(t models.RateTables) models.RateTables {
	out := models.RateTables{
		RoomType:         copyMap(t.RoomType),
		CareLevelAdders:  copyMap(t.CareLevelAdders),
		ChronicAdders:    copyMap(t.ChronicAdders),
		InHomeHourly:     copyMap(t.InHomeHourly),
		VACategories:     copyMap(t.VACategories),
		StateMultipliers: copyMap(t.StateMultipliers),
	}
	if t.MobilityAdders != nil {
		out.MobilityAdders = &models.MobilityAdders{
			Facility: copyMap(t.MobilityAdders.Facility),
			InHome:   copyMap(t.MobilityAdders.InHome),
		}
	}
	return out
}

func copyMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// mergeTables overrides resolved lookup entries with overlay entries,
// table by table, key by key
func mergeTables(dst *models.RateTables, src *models.RateTables) {
	if src == nil {
		return
	}
	dst.RoomType = mergeMap(dst.RoomType, src.RoomType)
	dst.CareLevelAdders = mergeMap(dst.CareLevelAdders, src.CareLevelAdders)
	dst.ChronicAdders = mergeMap(dst.ChronicAdders, src.ChronicAdders)
	dst.InHomeHourly = mergeMap(dst.InHomeHourly, src.InHomeHourly)
	dst.VACategories = mergeMap(dst.VACategories, src.VACategories)
	dst.StateMultipliers = mergeMap(dst.StateMultipliers, src.StateMultipliers)
	if src.MobilityAdders != nil {
		if dst.MobilityAdders == nil {
			dst.MobilityAdders = &models.MobilityAdders{}
		}
		dst.MobilityAdders.Facility = mergeMap(dst.MobilityAdders.Facility, src.MobilityAdders.Facility)
		dst.MobilityAdders.InHome = mergeMap(dst.MobilityAdders.InHome, src.MobilityAdders.InHome)
	}
}

func mergeMap(dst, src map[string]float64) map[string]float64 {
	if src == nil {
		return dst
	}
	if dst == nil {
		dst = make(map[string]float64, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

