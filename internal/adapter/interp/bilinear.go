// Package interp samples gridded values between grid nodes.
package interp

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoData is returned when a node that contributes to a sample holds the
// nodata value.
var ErrNoData = errors.New("sample touches a nodata node")

// Cell holds the four node values around a sample point:
// V00 at (x0, y0), V10 at (x1, y0), V01 at (x0, y1) and V11 at (x1, y1).
type Cell struct {
	V00, V10, V01, V11 float64
}

// Bilinear blends the corner values of c at the normalized offsets t along
// x and u along y, both in [0, 1]:
//
//	f ≈ (1-t)(1-u)V00 + t(1-u)V10 + (1-t)u*V01 + tu*V11
func Bilinear(c Cell, t, u float64) float64 {
	t = math.Max(0, math.Min(1, t))
	u = math.Max(0, math.Min(1, u))
	return (1-t)*(1-u)*c.V00 +
		t*(1-u)*c.V10 +
		(1-t)*u*c.V01 +
		t*u*c.V11
}

// Grid is a 2-D grid of values stored row-major: Values[iy*len(X)+ix] lies
// at (X[ix], Y[iy]). Axes may run in either direction and may have a single
// node, in which case samples must fall on it.
type Grid struct {
	X, Y   []float64
	Values []float64
	// Nodata marks missing values; NaN values are always missing.
	Nodata    float64
	HasNodata bool
}

// NewGrid validates the axes and values.
func NewGrid(x, y, values []float64) (*Grid, error) {
	g := &Grid{X: x, Y: y, Values: values}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// WithNodata marks v as the nodata value.
func (g *Grid) WithNodata(v float64) *Grid {
	g.Nodata, g.HasNodata = v, true
	return g
}

// Validate checks the axis lengths and that each axis is strictly
// monotonic.
func (g *Grid) Validate() error {
	if len(g.X) == 0 || len(g.Y) == 0 {
		return fmt.Errorf("grid needs at least one node per axis")
	}
	if len(g.Values) != len(g.X)*len(g.Y) {
		return fmt.Errorf("grid of %d x %d nodes holds %d values", len(g.X), len(g.Y), len(g.Values))
	}
	if !monotonic(g.X) {
		return fmt.Errorf("x coordinates must be strictly monotonic")
	}
	if !monotonic(g.Y) {
		return fmt.Errorf("y coordinates must be strictly monotonic")
	}
	return nil
}

// At interpolates the grid at (x, y).
func (g *Grid) At(x, y float64) (float64, error) {
	ix, t, err := locate(g.X, x)
	if err != nil {
		return 0, fmt.Errorf("x: %w", err)
	}
	iy, u, err := locate(g.Y, y)
	if err != nil {
		return 0, fmt.Errorf("y: %w", err)
	}

	ix1, iy1 := min(ix+1, len(g.X)-1), min(iy+1, len(g.Y)-1)
	nx := len(g.X)
	c := Cell{
		V00: g.Values[iy*nx+ix],
		V10: g.Values[iy*nx+ix1],
		V01: g.Values[iy1*nx+ix],
		V11: g.Values[iy1*nx+ix1],
	}

	weights := [4]float64{(1 - t) * (1 - u), t * (1 - u), (1 - t) * u, t * u}
	for i, v := range [4]float64{c.V00, c.V10, c.V01, c.V11} {
		if weights[i] > 0 && g.missing(v) {
			return 0, ErrNoData
		}
	}
	return Bilinear(c, t, u), nil
}

func (g *Grid) missing(v float64) bool {
	return math.IsNaN(v) || (g.HasNodata && v == g.Nodata)
}

const epsilon = 1e-9

// locate returns the index of the lower node of the interval holding v and
// the normalized offset of v within it.
func locate(axis []float64, v float64) (int, float64, error) {
	if len(axis) == 1 {
		if math.Abs(v-axis[0]) > epsilon {
			return 0, 0, fmt.Errorf("coordinate %.6f is not on the single node %.6f", v, axis[0])
		}
		return 0, 0, nil
	}
	for i := 0; i < len(axis)-1; i++ {
		lo, hi := axis[i], axis[i+1]
		if v >= math.Min(lo, hi)-epsilon && v <= math.Max(lo, hi)+epsilon {
			return i, (v - lo) / (hi - lo), nil
		}
	}
	return 0, 0, fmt.Errorf("coordinate %.6f is outside grid range [%.6f, %.6f]", v, axis[0], axis[len(axis)-1])
}

func monotonic(axis []float64) bool {
	if len(axis) < 2 {
		return true
	}
	up := axis[1] > axis[0]
	for i := 1; i < len(axis); i++ {
		if (up && axis[i] <= axis[i-1]) || (!up && axis[i] >= axis[i-1]) {
			return false
		}
	}
	return true
}
