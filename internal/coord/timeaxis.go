package coord

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var timeUnits = map[string]float64{
	"days":         86400,
	"day":          86400,
	"hours":        3600,
	"hour":         3600,
	"minutes":      60,
	"minute":       60,
	"seconds":      1,
	"second":       1,
	"milliseconds": 1e-3,
	"msec":         1e-3,
}

// generatorUnits are the step units TimeValues accepts.
var generatorUnits = map[string]bool{"days": true, "hours": true, "minutes": true, "seconds": true}

// TimeValues returns n time values that start at the reference date of
// units and advance by step of its unit, expressed in target units and
// rounded to eight decimals. units must use days, hours, minutes or
// seconds; target may also use milliseconds.
func TimeValues(units string, n int, step float64, target string) ([]float64, error) {
	unit, ref, err := ParseTimeUnits(units)
	if err != nil {
		return nil, err
	}
	if !generatorUnits[unit] {
		return nil, fmt.Errorf("time unit %q is not supported for generating values", unit)
	}
	tunit, tref, err := ParseTimeUnits(target)
	if err != nil {
		return nil, err
	}

	offset := float64(ref.Unix()-tref.Unix()) + float64(ref.Nanosecond()-tref.Nanosecond())/1e9
	scale := timeUnits[unit]
	out := make([]float64, n)
	for i := range out {
		secs := offset + float64(i)*step*scale
		out[i] = roundTo(secs/timeUnits[tunit], spacingDecimals)
	}
	return out, nil
}

// ParseTimeUnits splits "<unit> since <date>" into the unit and the UTC
// reference time.
func ParseTimeUnits(units string) (string, time.Time, error) {
	unit, date, ok := strings.Cut(strings.TrimSpace(units), " since ")
	if !ok {
		return "", time.Time{}, fmt.Errorf("time units %q are not of the form '<unit> since <date>'", units)
	}
	unit = strings.TrimSpace(unit)
	if _, ok := timeUnits[unit]; !ok {
		return "", time.Time{}, fmt.Errorf("unknown time unit %q", unit)
	}
	ref, err := parseReference(strings.TrimSpace(date))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid reference date in %q: %w", units, err)
	}
	return unit, ref, nil
}

// parseReference accepts RFC 3339 and the loose "Y-M-D h:m:s.f" form used
// in CF units, where every clock field may have one digit.
func parseReference(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	datePart, clock, _ := strings.Cut(s, " ")
	d, err := time.Parse("2006-1-2", datePart)
	if err != nil {
		return time.Time{}, err
	}
	if clock == "" {
		return d, nil
	}

	fields := strings.Split(strings.TrimSuffix(clock, "Z"), ":")
	if len(fields) > 3 {
		return time.Time{}, fmt.Errorf("invalid clock %q", clock)
	}
	var secs float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || v < 0 {
			return time.Time{}, fmt.Errorf("invalid clock %q", clock)
		}
		secs += v * math.Pow(60, float64(2-i))
	}
	return d.Add(time.Duration(secs * float64(time.Second))), nil
}
