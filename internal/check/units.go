package check

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/ctessum/unit"
)

// UnitOracle decides whether a units attribute is a recognised unit string.
type UnitOracle interface {
	Valid(units string) bool
}

// UnitTable parses UDUNITS-style unit strings into SI dimensions: products
// separated by spaces, '*' or '.', division by '/', integer powers written
// as "m2", "m^2" or "s-1", SI prefixes on prefixable symbols, and reference
// time units of the form "<time unit> since <date>".
type UnitTable struct {
	symbols  map[string]symbol
	prefixes map[string]float64
}

type symbol struct {
	u          *unit.Unit
	prefixable bool
}

// referenceDate matches the date part of "<unit> since <date>", for example
// "1970-01-01", "1970-01-01 00:00:0.0" or "2000-1-1T12:00:00Z".
var referenceDate = regexp.MustCompile(
	`^-?\d{1,4}-\d{1,2}-\d{1,2}([ T]\d{1,2}(:\d{1,2}(:\d{1,2}(\.\d*)?)?)?)?( ?(Z|UTC|GMT|[+-]\d{1,2}(:?\d{2})?))?$`)

var factorPattern = regexp.MustCompile(`^([A-Za-z_%°]+)\^?(-?\d+)?$`)

// NewUnitTable returns the built-in symbol table.
func NewUnitTable() *UnitTable {
	t := &UnitTable{
		symbols: make(map[string]symbol),
		prefixes: map[string]float64{
			"G": 1e9, "M": 1e6, "k": 1e3, "h": 1e2, "da": 1e1,
			"d": 1e-1, "c": 1e-2, "m": 1e-3, "u": 1e-6, "µ": 1e-6, "n": 1e-9,
		},
	}

	angle := unit.Dimensions{unit.AngleDim: 1}
	t.add(1, unit.Meter, true, "m", "meter", "meters", "metre", "metres")
	t.add(1, unit.Second, true, "s", "sec", "second", "seconds")
	t.add(1e-3, unit.Second, false, "msec")
	t.add(60, unit.Second, false, "min", "minute", "minutes")
	t.add(3600, unit.Second, false, "h", "hr", "hour", "hours")
	t.add(86400, unit.Second, false, "d", "day", "days")
	t.add(1, unit.Kelvin, true, "K", "kelvin", "degK")
	t.add(1, unit.Kelvin, false, "degC", "celsius", "deg_C", "degrees_C", "°C")
	t.add(1e-3, unit.Kilogram, true, "g", "gram", "grams")
	t.add(1, unit.Kilogram, false, "kg")
	t.add(1, unit.Pascal, true, "Pa", "pascal")
	t.add(100, unit.Pascal, false, "mbar", "millibar")
	t.add(1e5, unit.Pascal, false, "bar")
	t.add(1, unit.Joule, true, "J", "joule")
	t.add(1, unit.Watt, true, "W", "watt")
	t.add(1, unit.Herz, true, "Hz")
	t.add(1e-3, unit.Meter3, false, "l", "L", "liter", "litre")
	t.add(1, angle, false, "rad", "radian", "radians")
	t.add(1, angle, false, "degree", "degrees", "deg", "arc_degree", "°",
		"degrees_north", "degree_north", "degree_N", "degrees_N", "degreeN", "degreesN",
		"degrees_east", "degree_east", "degree_E", "degrees_E", "degreeE", "degreesE")
	t.add(1, unit.Dimless, false, "1", "count", "level")
	t.add(1e-2, unit.Dimless, false, "%", "percent")
	t.add(1e-6, unit.Dimless, false, "ppm")
	t.add(1e-9, unit.Dimless, false, "ppb")
	return t
}

func (t *UnitTable) add(scale float64, d unit.Dimensions, prefixable bool, names ...string) {
	for _, n := range names {
		t.symbols[n] = symbol{u: unit.New(scale, d), prefixable: prefixable}
	}
}

// Valid reports whether s parses.
func (t *UnitTable) Valid(s string) bool {
	_, err := t.Parse(s)
	return err == nil
}

// Conforms reports whether s parses to the given dimensions.
func (t *UnitTable) Conforms(s string, d unit.Dimensions) bool {
	u, err := t.Parse(s)
	if err != nil {
		return false
	}
	return u.Check(d) == nil
}

// Parse converts s into a unit with its SI scale factor.
func (t *UnitTable) Parse(s string) (*unit.Unit, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty unit")
	}

	if base, ref, ok := strings.Cut(s, " since "); ok {
		u, err := t.Parse(base)
		if err != nil {
			return nil, err
		}
		if err := u.Check(unit.Second); err != nil {
			return nil, fmt.Errorf("reference unit %q is not a time unit: %w", base, err)
		}
		if !referenceDate.MatchString(strings.TrimSpace(ref)) {
			return nil, fmt.Errorf("invalid reference date %q", ref)
		}
		return u, nil
	}

	parts := strings.Split(s, "/")
	result, err := t.product(parts[0])
	if err != nil {
		return nil, err
	}
	for _, p := range parts[1:] {
		d, err := t.product(p)
		if err != nil {
			return nil, err
		}
		result = unit.Div(result, d)
	}
	return result, nil
}

// product parses a whitespace, '*' or '.' separated list of factors.
func (t *UnitTable) product(s string) (*unit.Unit, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '*' || r == '·'
	})
	var expanded []string
	for _, f := range fields {
		expanded = append(expanded, splitDots(f)...)
	}
	if len(expanded) == 0 {
		return nil, fmt.Errorf("empty unit term in %q", s)
	}

	result := unit.New(1, unit.Dimless)
	for _, f := range expanded {
		u, err := t.factor(f)
		if err != nil {
			return nil, err
		}
		result = unit.Mul(result, u)
	}
	return result, nil
}

// splitDots splits "m.s-1" into "m" and "s-1" but keeps numbers like "1e-3"
// and "0.5" intact.
func splitDots(f string) []string {
	if _, err := strconv.ParseFloat(f, 64); err == nil {
		return []string{f}
	}
	return strings.Split(f, ".")
}

func (t *UnitTable) factor(f string) (*unit.Unit, error) {
	if v, err := strconv.ParseFloat(f, 64); err == nil {
		if v == 0 {
			return nil, fmt.Errorf("zero scale factor")
		}
		return unit.New(v, unit.Dimless), nil
	}
	if sym, ok := t.symbols[f]; ok {
		return sym.u.Clone(), nil
	}

	m := factorPattern.FindStringSubmatch(f)
	if m == nil {
		return nil, fmt.Errorf("unknown unit %q", f)
	}
	base, err := t.lookup(m[1])
	if err != nil {
		return nil, err
	}
	if m[2] == "" {
		return base, nil
	}
	exp, err := strconv.Atoi(m[2])
	if err != nil || exp == 0 {
		return nil, fmt.Errorf("invalid exponent in %q", f)
	}
	return power(base, exp), nil
}

// lookup resolves a symbol, allowing an SI prefix on prefixable symbols.
func (t *UnitTable) lookup(name string) (*unit.Unit, error) {
	if sym, ok := t.symbols[name]; ok {
		return sym.u.Clone(), nil
	}
	for p, scale := range t.prefixes {
		rest, ok := strings.CutPrefix(name, p)
		if !ok || rest == "" {
			continue
		}
		if sym, ok := t.symbols[rest]; ok && sym.prefixable {
			return unit.Mul(unit.New(scale, unit.Dimless), sym.u), nil
		}
	}
	return nil, fmt.Errorf("unknown unit %q", name)
}

func power(u *unit.Unit, exp int) *unit.Unit {
	result := unit.New(1, unit.Dimless)
	for i := 0; i < abs(exp); i++ {
		if exp > 0 {
			result = unit.Mul(result, u)
		} else {
			result = unit.Div(result, u)
		}
	}
	return result
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
