package coord

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"go.ngs.io/ncmodel/internal/domain"
)

// Record is the compact coordinate form stored in the coordinate file:
// either Min and Max of an evenly spaced axis, or an explicit value list.
type Record struct {
	Min       string
	Max       string
	Values    string
	Separator string
}

// DefaultSeparator splits Values when the record names no separator.
const DefaultSeparator = ","

// ListSeparator joins values written by Encode.
const ListSeparator = ", "

// spacingDecimals is the rounding applied to neighbouring gradients before
// comparing them, so float noise below 1e-8 still counts as even spacing.
const spacingDecimals = 8

// Resolve rebuilds a 1-D coordinate array of the given length from rec.
// Min and Max take precedence over Values.
func Resolve(tag string, rec Record, length int, dt domain.DType) (*domain.Array, error) {
	if rec.Min != "" && rec.Max != "" {
		lo, err := strconv.ParseFloat(strings.TrimSpace(rec.Min), 64)
		if err != nil {
			return nil, &domain.ParseError{Tag: tag, Token: rec.Min, DType: domain.Float64, Err: err}
		}
		hi, err := strconv.ParseFloat(strings.TrimSpace(rec.Max), 64)
		if err != nil {
			return nil, &domain.ParseError{Tag: tag, Token: rec.Max, DType: domain.Float64, Err: err}
		}
		return domain.FromFloat64s(dt, linspace(lo, hi, length), length)
	}

	if rec.Values != "" {
		sep := rec.Separator
		if sep == "" {
			sep = DefaultSeparator
		}
		tokens := strings.Split(rec.Values, sep)
		vals := make([]float64, len(tokens))
		for i, tok := range tokens {
			v, err := parseToken(strings.TrimSpace(tok), dt)
			if err != nil {
				return nil, &domain.ParseError{Tag: tag, Token: tok, DType: dt, Err: err}
			}
			vals[i] = v
		}
		return domain.FromFloat64s(dt, vals, len(vals))
	}

	return nil, &domain.MissingCoordinateDataError{Tag: tag}
}

// Encode writes a 1-D coordinate array in compact form. Evenly spaced
// ascending axes keep only Min and Max; everything else, including single
// values and descending axes, is written as an explicit list.
func Encode(a *domain.Array) (Record, error) {
	if a.NDim() != 1 {
		return Record{}, fmt.Errorf("coordinate array must be 1-D, got shape %v", a.Shape())
	}
	vals := a.Float64s()
	if len(vals) == 0 {
		return Record{}, errors.New("coordinate array is empty")
	}

	lo, hi := vals[0], vals[len(vals)-1]
	if lo < hi && EvenlySpaced(vals) {
		return Record{Min: formatValue(lo, a.DType()), Max: formatValue(hi, a.DType())}, nil
	}

	tokens := make([]string, len(vals))
	for i, v := range vals {
		tokens[i] = formatValue(v, a.DType())
	}
	return Record{Values: strings.Join(tokens, ListSeparator), Separator: ListSeparator}, nil
}

// EvenlySpaced reports whether successive gradients agree after rounding to
// eight decimals. Gradients use central differences inside the array and
// one-sided differences at the ends. Length ≤ 1 counts as evenly spaced.
func EvenlySpaced(vals []float64) bool {
	if len(vals) <= 1 {
		return true
	}
	g := gradient(vals)
	for i := 1; i < len(g); i++ {
		if roundTo(g[i], spacingDecimals) != roundTo(g[i-1], spacingDecimals) {
			return false
		}
	}
	return true
}

func gradient(vals []float64) []float64 {
	n := len(vals)
	g := make([]float64, n)
	g[0] = vals[1] - vals[0]
	g[n-1] = vals[n-1] - vals[n-2]
	for i := 1; i < n-1; i++ {
		g[i] = (vals[i+1] - vals[i-1]) / 2
	}
	return g
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	if math.Abs(v*p) >= 1<<53 {
		return v
	}
	return math.RoundToEven(v*p) / p
}

func linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

func parseToken(tok string, dt domain.DType) (float64, error) {
	switch dt {
	case domain.Float32:
		v, err := strconv.ParseFloat(tok, 32)
		return v, err
	case domain.Float64:
		return strconv.ParseFloat(tok, 64)
	case domain.Uint8, domain.Uint16, domain.Uint32, domain.Uint64:
		v, err := strconv.ParseUint(tok, 10, dt.Size()*8)
		return float64(v), err
	case domain.Int8, domain.Int16, domain.Int32, domain.Int64:
		v, err := strconv.ParseInt(tok, 10, dt.Size()*8)
		return float64(v), err
	default:
		return 0, fmt.Errorf("unsupported dtype %s", dt)
	}
}

func formatValue(v float64, dt domain.DType) string {
	switch dt {
	case domain.Float32:
		return strconv.FormatFloat(v, 'g', -1, 32)
	case domain.Float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
}
