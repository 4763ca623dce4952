// Package plan holds the wizard input state: one typed value per schema
// field, fully defaulted at creation so the cost model never sees a
// missing key.
package plan

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"careplan/internal/models"
)

// State is the current set of wizard inputs for one household. Every field
// the resolved schema defines has a value at all times; rejected writes
// keep the field at its default and record a flag instead.
type State struct {
	schema *models.ResolvedSchema
	values map[string]models.Value
	flags  map[string]string
}

// NewState creates a fully defaulted state for the resolved schema
func NewState(schema *models.ResolvedSchema) *State {
	s := &State{
		schema: schema,
		values: make(map[string]models.Value),
		flags:  make(map[string]string),
	}
	for _, f := range schema.Fields() {
		s.values[f.Key] = defaultValue(f)
	}
	return s
}

// Schema returns the resolved schema this state was built from
func (s *State) Schema() *models.ResolvedSchema {
	return s.schema
}

// Set coerces raw into the field's type and stores it. An unknown key
// returns ErrUnknownField. A value that fails coercion leaves the field at
// its default, records a flag, and returns a ValidationError; the state
// stays usable either way.
func (s *State) Set(key string, raw interface{}) error {
	field, ok := s.schema.FieldByKey(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}

	v, err := Coerce(field, raw)
	if err != nil {
		s.values[key] = defaultValue(field)
		s.flags[key] = err.Error()
		return &models.ValidationError{Field: key, Reason: err.Error(), Value: raw}
	}

	s.values[key] = v
	delete(s.flags, key)
	return nil
}

// Currency returns the monetary value for key, or zero if the key is
// missing or not a currency field
func (s *State) Currency(key string) decimal.Decimal {
	if v, ok := s.values[key]; ok && v.Type == models.FieldCurrency {
		return v.Currency
	}
	return decimal.Zero
}

// Int returns the integer value for key, or zero
func (s *State) Int(key string) int {
	if v, ok := s.values[key]; ok && v.Type == models.FieldInteger {
		return v.Integer
	}
	return 0
}

// Percent returns the percentage value for key, or zero
func (s *State) Percent(key string) float64 {
	if v, ok := s.values[key]; ok && v.Type == models.FieldPercent {
		return v.Percent
	}
	return 0
}

// Enum returns the enum choice for key, or empty
func (s *State) Enum(key string) string {
	if v, ok := s.values[key]; ok && v.Type == models.FieldEnum {
		return v.Enum
	}
	return ""
}

// Bool returns the boolean value for key, or false
func (s *State) Bool(key string) bool {
	if v, ok := s.values[key]; ok && v.Type == models.FieldBoolean {
		return v.Bool
	}
	return false
}

// Value returns the typed value for key
func (s *State) Value(key string) (models.Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Flags returns the per-field rejection messages for values that were
// replaced by defaults
func (s *State) Flags() map[string]string {
	out := make(map[string]string, len(s.flags))
	for k, v := range s.flags {
		out[k] = v
	}
	return out
}

// Values returns the flat scalar view of the state, keyed by field key
func (s *State) Values() map[string]interface{} {
	out := make(map[string]interface{}, len(s.values))
	for k, v := range s.values {
		out[k] = v.Scalar()
	}
	return out
}

// Clone returns an independent copy sharing the same schema
func (s *State) Clone() *State {
	c := &State{
		schema: s.schema,
		values: make(map[string]models.Value, len(s.values)),
		flags:  make(map[string]string, len(s.flags)),
	}
	for k, v := range s.values {
		c.values[k] = v
	}
	for k, v := range s.flags {
		c.flags[k] = v
	}
	return c
}

// Equal reports whether two states carry the same values
func (s *State) Equal(o *State) bool {
	if len(s.values) != len(o.values) {
		return false
	}
	for k, v := range s.values {
		ov, ok := o.values[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// defaultValue coerces a field's declared default, falling back to the
// type's zero value when the default is absent or malformed
func defaultValue(f models.Field) models.Value {
	if f.Default == nil {
		return models.ZeroValue(f.Type)
	}
	v, err := Coerce(f, f.Default)
	if err != nil {
		return models.ZeroValue(f.Type)
	}
	return v
}

// Coerce converts a raw JSON or form value into the field's typed value.
// Numeric fields accept numbers and numeric strings; a blank string reads
// as zero.
func Coerce(f models.Field, raw interface{}) (models.Value, error) {
	switch f.Type {
	case models.FieldCurrency:
		n, err := toNumber(raw)
		if err != nil {
			return models.Value{}, err
		}
		if n < 0 {
			return models.Value{}, fmt.Errorf("must not be negative")
		}
		if err := checkRange(f, n); err != nil {
			return models.Value{}, err
		}
		return models.CurrencyValue(decimal.NewFromFloat(n)), nil

	case models.FieldInteger:
		n, err := toNumber(raw)
		if err != nil {
			return models.Value{}, err
		}
		if n != math.Trunc(n) {
			return models.Value{}, fmt.Errorf("must be a whole number")
		}
		if err := checkRange(f, n); err != nil {
			return models.Value{}, err
		}
		return models.IntegerValue(int(n)), nil

	case models.FieldPercent:
		n, err := toNumber(raw)
		if err != nil {
			return models.Value{}, err
		}
		if err := checkPercentRange(f, n); err != nil {
			return models.Value{}, err
		}
		return models.PercentValue(n), nil

	case models.FieldEnum:
		s, ok := raw.(string)
		if !ok {
			return models.Value{}, fmt.Errorf("must be a string")
		}
		for _, c := range f.Choices {
			if c == s {
				return models.EnumValue(s), nil
			}
		}
		return models.Value{}, fmt.Errorf("must be one of %s", strings.Join(f.Choices, ", "))

	case models.FieldBoolean:
		b, err := toBool(raw)
		if err != nil {
			return models.Value{}, err
		}
		return models.BoolValue(b), nil
	}

	return models.Value{}, fmt.Errorf("unsupported field type %q", f.Type)
}

func checkRange(f models.Field, n float64) error {
	if f.Min != nil && n < *f.Min {
		return fmt.Errorf("must be at least %g", *f.Min)
	}
	if f.Max != nil && n > *f.Max {
		return fmt.Errorf("must be at most %g", *f.Max)
	}
	return nil
}

// checkPercentRange applies the field's bounds, defaulting to 0-100
func checkPercentRange(f models.Field, n float64) error {
	if f.Min == nil && n < 0 {
		return fmt.Errorf("must not be negative")
	}
	if f.Max == nil && n > 100 {
		return fmt.Errorf("must be at most 100")
	}
	return checkRange(f, n)
}

func toNumber(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		t := strings.TrimSpace(v)
		if t == "" {
			return 0, nil
		}
		n, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("must be a number")
		}
		return n, nil
	}
	return 0, fmt.Errorf("must be a number")
}

func toBool(raw interface{}) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "y", "true", "1":
			return true, nil
		case "no", "n", "false", "0", "":
			return false, nil
		}
	}
	return false, fmt.Errorf("must be a boolean")
}
