package models

import (
	"github.com/shopspring/decimal"
)

// Value is a typed field value. Exactly one of the payload fields is
// meaningful, selected by Type; accessors on the plan state return the
// type's zero value on mismatch so downstream models never see missing keys.
type Value struct {
	Type     FieldType
	Currency decimal.Decimal
	Integer  int
	Percent  float64
	Enum     string
	Bool     bool
}

// ZeroValue returns the zero value for a field type (0, false, empty)
func ZeroValue(t FieldType) Value {
	return Value{Type: t}
}

// CurrencyValue wraps a monetary amount
func CurrencyValue(d decimal.Decimal) Value {
	return Value{Type: FieldCurrency, Currency: d}
}

// IntegerValue wraps a whole number
func IntegerValue(n int) Value {
	return Value{Type: FieldInteger, Integer: n}
}

// PercentValue wraps a percentage (e.g. 4.5 for 4.5%)
func PercentValue(p float64) Value {
	return Value{Type: FieldPercent, Percent: p}
}

// EnumValue wraps an enum choice key
func EnumValue(s string) Value {
	return Value{Type: FieldEnum, Enum: s}
}

// BoolValue wraps a boolean
func BoolValue(b bool) Value {
	return Value{Type: FieldBoolean, Bool: b}
}

// Scalar returns the plain JSON representation of the value, used by the
// flat saved-plan document
func (v Value) Scalar() interface{} {
	switch v.Type {
	case FieldCurrency:
		f, _ := v.Currency.Float64()
		return f
	case FieldInteger:
		return v.Integer
	case FieldPercent:
		return v.Percent
	case FieldEnum:
		return v.Enum
	case FieldBoolean:
		return v.Bool
	}
	return nil
}

// Equal reports whether two values carry the same type and payload
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case FieldCurrency:
		return v.Currency.Equal(o.Currency)
	case FieldInteger:
		return v.Integer == o.Integer
	case FieldPercent:
		return v.Percent == o.Percent
	case FieldEnum:
		return v.Enum == o.Enum
	case FieldBoolean:
		return v.Bool == o.Bool
	}
	return true
}

// Money rounds a monetary amount to cents, half away from zero, matching
// how every displayed figure in the system is quantized
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MoneyFromFloat converts a float dollar amount to a cent-rounded decimal
func MoneyFromFloat(f float64) decimal.Decimal {
	return Money(decimal.NewFromFloat(f))
}
