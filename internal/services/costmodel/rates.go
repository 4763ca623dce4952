// Package costmodel turns wizard inputs into the household's monthly cost
// breakdown using the resolved schema's rate tables.
package costmodel

import (
	"sort"
	"strconv"
)

// HourlyTable is an in-home hourly rate curve keyed by hours of paid care
// per day. Rates between tabulated breakpoints interpolate linearly; hours
// outside the table clamp to the nearest endpoint rather than extrapolate.
type HourlyTable struct {
	hours []float64
	rates []float64
}

// NewHourlyTable builds a sorted rate curve from a lookup table whose keys
// are hour counts as decimal strings. Keys that fail to parse are dropped.
func NewHourlyTable(table map[string]float64) *HourlyTable {
	t := &HourlyTable{}
	for k, rate := range table {
		h, err := strconv.ParseFloat(k, 64)
		if err != nil {
			continue
		}
		t.hours = append(t.hours, h)
		t.rates = append(t.rates, rate)
	}
	sort.Sort(byHours{t})
	return t
}

// Empty reports whether the table has no usable breakpoints
func (t *HourlyTable) Empty() bool {
	return len(t.hours) == 0
}

// Rate returns the hourly rate for the given hours per day
func (t *HourlyTable) Rate(hours float64) float64 {
	if len(t.hours) == 0 {
		return 0
	}
	if hours <= t.hours[0] {
		return t.rates[0]
	}
	last := len(t.hours) - 1
	if hours >= t.hours[last] {
		return t.rates[last]
	}

	// hours lies strictly between the endpoints
	i := sort.SearchFloat64s(t.hours, hours)
	if t.hours[i] == hours {
		return t.rates[i]
	}
	lo, hi := i-1, i
	frac := (hours - t.hours[lo]) / (t.hours[hi] - t.hours[lo])
	return t.rates[lo] + frac*(t.rates[hi]-t.rates[lo])
}

type byHours struct{ t *HourlyTable }

func (b byHours) Len() int           { return len(b.t.hours) }
func (b byHours) Less(i, j int) bool { return b.t.hours[i] < b.t.hours[j] }
func (b byHours) Swap(i, j int) {
	b.t.hours[i], b.t.hours[j] = b.t.hours[j], b.t.hours[i]
	b.t.rates[i], b.t.rates[j] = b.t.rates[j], b.t.rates[i]
}
