// Package units parses and formats physical quantities for command values.
// All lengths are stored internally in millimetres.
package units

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrBadNumber indicates a missing or malformed numeric magnitude.
	ErrBadNumber = errors.New("malformed number")
	// ErrMissingUnit indicates a value without a unit where one is required.
	ErrMissingUnit = errors.New("unit is required")
	// ErrUnknownUnit indicates a unit symbol not defined for the category.
	ErrUnknownUnit = errors.New("unknown unit")
	// ErrUnknownCategory indicates a category with no unit table.
	ErrUnknownCategory = errors.New("unknown unit category")
)

// Category groups units that measure the same dimension.
type Category string

const (
	// None marks a dimensionless value.
	None Category = ""
	// Length is the category of all length units.
	Length Category = "Length"
)

// Internal length units. Millimetre is the base.
const (
	MM       = 1.0
	CM       = 10 * MM
	M        = 1000 * MM
	KM       = 1000 * M
	UM       = 1e-3 * MM
	NM       = 1e-6 * MM
	Angstrom = 1e-7 * MM
	FM       = 1e-12 * MM
	Parsec   = 3.0856775807e+16 * M
	Inch     = 25.4 * MM
	Foot     = 12 * Inch
)

// Unit is one named unit of a category.
type Unit struct {
	Symbol string
	Name   string
	Value  float64 // size in internal units
}

var lengthUnits = []Unit{
	{"pc", "parsec", Parsec},
	{"km", "kilometer", KM},
	{"m", "meter", M},
	{"ft", "foot", Foot},
	{"in", "inch", Inch},
	{"cm", "centimeter", CM},
	{"mm", "millimeter", MM},
	{"um", "micrometer", UM},
	{"nm", "nanometer", NM},
	{"Ang", "angstrom", Angstrom},
	{"fm", "fermi", FM},
}

var tables = map[Category][]Unit{
	Length: lengthUnits,
}

// Units returns the units of a category, largest first.
func Units(c Category) ([]Unit, error) {
	t, ok := tables[c]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	out := make([]Unit, len(t))
	copy(out, t)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out, nil
}

// Lookup finds a unit by symbol or name. Symbols are case sensitive
// (mm and Mm are different things); names are not.
func Lookup(c Category, s string) (Unit, error) {
	t, ok := tables[c]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	for _, u := range t {
		if u.Symbol == s {
			return u, nil
		}
	}
	for _, u := range t {
		if strings.EqualFold(u.Name, s) || strings.EqualFold(u.Name+"s", s) {
			return u, nil
		}
	}
	return Unit{}, fmt.Errorf("%w %q for %s", ErrUnknownUnit, s, c)
}

// Value converts v expressed in the named unit to internal units.
func Value(c Category, v float64, unit string) (float64, error) {
	u, err := Lookup(c, unit)
	if err != nil {
		return 0, err
	}
	return v * u.Value, nil
}

// Parse reads "<number> <unit>" or "<number><unit>" and returns the
// magnitude in internal units. A unit is mandatory for any category other
// than None.
func Parse(c Category, raw string) (float64, error) {
	return ParseWithDefault(c, raw, "")
}

// ParseWithDefault is Parse, but a bare number is read in defaultUnit
// when defaultUnit is not empty.
func ParseWithDefault(c Category, raw, defaultUnit string) (float64, error) {
	num, unit := split(strings.TrimSpace(raw))
	if num == "" {
		return 0, fmt.Errorf("%w: %q", ErrBadNumber, raw)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrBadNumber, raw)
	}
	if c == None {
		if unit != "" {
			return 0, fmt.Errorf("%w %q for dimensionless value", ErrUnknownUnit, unit)
		}
		return v, nil
	}
	if unit == "" {
		unit = defaultUnit
	}
	if unit == "" {
		return 0, fmt.Errorf("%w: %q", ErrMissingUnit, raw)
	}
	return Value(c, v, unit)
}

// split separates the leading numeric token from the trailing unit.
func split(s string) (num, unit string) {
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}
	end := 0
	for end < len(s) && isNumChar(s, end) {
		end++
	}
	return s[:end], s[end:]
}

func isNumChar(s string, i int) bool {
	c := s[i]
	switch {
	case c >= '0' && c <= '9', c == '.', c == '+', c == '-':
		return true
	case c == 'e' || c == 'E':
		// exponent only when followed by a digit or sign, so "5em" style
		// units are not swallowed
		return i > 0 && i+1 < len(s) && (s[i+1] == '-' || s[i+1] == '+' || (s[i+1] >= '0' && s[i+1] <= '9'))
	}
	return false
}

// Format renders v (internal units) with the largest unit that keeps the
// magnitude at or above 1. Zero renders in the base unit.
func Format(c Category, v float64) string {
	t, err := Units(c)
	if err != nil || v == 0 {
		if c == Length {
			return strconv.FormatFloat(v, 'g', -1, 64) + " mm"
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	abs := math.Abs(v)
	best := t[len(t)-1]
	for _, u := range t {
		if u.Symbol == "ft" || u.Symbol == "in" {
			continue
		}
		if abs >= u.Value {
			best = u
			break
		}
	}
	return strconv.FormatFloat(v/best.Value, 'g', 6, 64) + " " + best.Symbol
}
