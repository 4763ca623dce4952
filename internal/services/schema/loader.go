// Package schema loads the base and overlay schema documents and resolves
// them into the single schema the rest of the system consumes.
package schema

import (
	"fmt"

	json "github.com/goccy/go-json"

	"careplan/internal/models"
	"careplan/internal/services/storage"
)

// LoadFile reads and parses the base schema document at path
func LoadFile(store *storage.Storage, path string) (*models.Schema, error) {
	data, err := store.ReadFile(path)
	if err != nil {
		return nil, &SchemaError{Doc: "base", Detail: fmt.Sprintf("read %s: %v", path, err), err: err}
	}
	return Parse(data)
}

// LoadOverlayFile reads and parses the overlay document at path
func LoadOverlayFile(store *storage.Storage, path string) (*models.Overlay, error) {
	data, err := store.ReadFile(path)
	if err != nil {
		return nil, &SchemaError{Doc: "overlay", Detail: fmt.Sprintf("read %s: %v", path, err), err: err}
	}
	return ParseOverlay(data)
}

// Parse decodes and structurally validates a base schema document
func Parse(data []byte) (*models.Schema, error) {
	var s models.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, invalidDoc("base", "not valid JSON: %v", err)
	}
	if err := validateBase(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseOverlay decodes and structurally validates an overlay document
func ParseOverlay(data []byte) (*models.Overlay, error) {
	var ov models.Overlay
	if err := json.Unmarshal(data, &ov); err != nil {
		return nil, invalidDoc("overlay", "not valid JSON: %v", err)
	}
	for i, d := range ov.Directives {
		if !d.Action.Valid() {
			return nil, &SchemaError{
				Doc:    "overlay",
				Detail: fmt.Sprintf("directive %d: action %q", i, d.Action),
				err:    ErrUnknownAction,
			}
		}
		switch d.Action {
		case models.ActionAddGroup:
			if d.Group == nil {
				return nil, invalidDoc("overlay", "directive %d: add-group without group payload", i)
			}
			if err := validateGroup("overlay", *d.Group); err != nil {
				return nil, err
			}
		case models.ActionAppendField, models.ActionReplaceField:
			if d.Field == nil {
				return nil, invalidDoc("overlay", "directive %d: %s without field payload", i, d.Action)
			}
			if d.Target == "" {
				return nil, invalidDoc("overlay", "directive %d: %s without target group", i, d.Action)
			}
			if err := validateField("overlay", *d.Field); err != nil {
				return nil, err
			}
		}
	}
	return &ov, nil
}

func validateBase(s *models.Schema) error {
	if s.Groups == nil {
		return invalidDoc("base", "missing groups array")
	}
	seen := make(map[string]bool)
	for _, g := range s.Groups {
		if err := validateGroup("base", g); err != nil {
			return err
		}
		for _, f := range g.Fields {
			if seen[f.Key] {
				return invalidDoc("base", "duplicate field key %q", f.Key)
			}
			seen[f.Key] = true
		}
	}
	return nil
}

func validateGroup(doc string, g models.Group) error {
	if g.Name == "" {
		return invalidDoc(doc, "group with empty name")
	}
	if g.Fields == nil {
		return invalidDoc(doc, "group %q: missing fields array", g.Name)
	}
	for _, f := range g.Fields {
		if err := validateField(doc, f); err != nil {
			return err
		}
	}
	return nil
}

func validateField(doc string, f models.Field) error {
	if f.Key == "" {
		return invalidDoc(doc, "field with empty key")
	}
	if !f.Type.Valid() {
		return invalidDoc(doc, "field %q: unknown type %q", f.Key, f.Type)
	}
	if f.Type == models.FieldEnum && len(f.Choices) == 0 {
		return invalidDoc(doc, "field %q: enum without choices", f.Key)
	}
	return nil
}

// applyTableDefaults backfills any lookup table a document omits. Deployed
// schemas usually only carry the tables they customize.
func applyTableDefaults(lookups *models.RateTables) {
	def := models.DefaultRateTables()
	if lookups.RoomType == nil {
		lookups.RoomType = def.RoomType
	}
	if lookups.CareLevelAdders == nil {
		lookups.CareLevelAdders = def.CareLevelAdders
	}
	if lookups.MobilityAdders == nil {
		lookups.MobilityAdders = def.MobilityAdders
	} else {
		if lookups.MobilityAdders.Facility == nil {
			lookups.MobilityAdders.Facility = def.MobilityAdders.Facility
		}
		if lookups.MobilityAdders.InHome == nil {
			lookups.MobilityAdders.InHome = def.MobilityAdders.InHome
		}
	}
	if lookups.ChronicAdders == nil {
		lookups.ChronicAdders = def.ChronicAdders
	}
	if lookups.InHomeHourly == nil {
		lookups.InHomeHourly = def.InHomeHourly
	}
	if lookups.VACategories == nil {
		lookups.VACategories = def.VACategories
	}
	if lookups.StateMultipliers == nil {
		lookups.StateMultipliers = def.StateMultipliers
	}
}
