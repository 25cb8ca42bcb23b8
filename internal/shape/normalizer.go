// Package shape brings station tables and gridded arrays into the canonical
// rank-5 (variable, time, z, lat, lon) layout.
package shape

import (
	"fmt"

	"go.ngs.io/ncmodel/internal/coord"
	"go.ngs.io/ncmodel/internal/domain"
)

// Layout identifies the source array layout.
type Layout int

// Supported layouts.
const (
	// Station is a rank-2 (time, variable) table at a single location.
	Station Layout = iota + 1
	// Grid is a rank-5 (variable, time, z, lat, lon) array.
	Grid
)

// AllowedRanks lists the ranks LayoutForRank accepts.
var AllowedRanks = []int{2, 5}

func (l Layout) String() string {
	switch l {
	case Station:
		return "station"
	case Grid:
		return "grid"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// LayoutForRank picks the layout for an array rank.
func LayoutForRank(rank int) (Layout, error) {
	switch rank {
	case 2:
		return Station, nil
	case 5:
		return Grid, nil
	default:
		return 0, &domain.UnsupportedRankError{Rank: rank, Allowed: AllowedRanks}
	}
}

// Result holds the axis lengths and the canonical array.
type Result struct {
	Layout    Layout
	DimVar    int
	DimTime   int
	DimZ      int
	DimLat    int
	DimLon    int
	DimID     int
	Canonical *domain.Array
}

// Normalizer assigns per-variable slices of a source array.
type Normalizer struct {
	classifier *coord.Classifier
}

// New returns a Normalizer that uses c to tell data variables apart.
func New(c *coord.Classifier) *Normalizer {
	return &Normalizer{classifier: c}
}

// Normalize reshapes raw into the canonical layout and attaches one slice to
// each data variable of vars, in declaration order. Station slices are
// copies into a fresh buffer; grid slices are views of raw.
func (n *Normalizer) Normalize(raw *domain.Array, vars []*domain.Variable) (*Result, error) {
	layout, err := LayoutForRank(raw.NDim())
	if err != nil {
		return nil, err
	}

	var res *Result
	switch layout {
	case Station:
		res, err = normalizeStation(raw)
	case Grid:
		res = normalizeGrid(raw)
	}
	if err != nil {
		return nil, err
	}

	dataVars := n.classifier.DataVariables(vars)
	if len(dataVars) != res.DimVar {
		return nil, &domain.VariableCountMismatchError{Declared: len(dataVars), Array: res.DimVar}
	}
	for k, v := range dataVars {
		slice, err := res.Canonical.Index(k)
		if err != nil {
			return nil, fmt.Errorf("failed to slice variable %q: %w", v.Name, err)
		}
		v.Data = slice
	}
	return res, nil
}

func normalizeStation(raw *domain.Array) (*Result, error) {
	shape := raw.Shape()
	res := &Result{
		Layout:  Station,
		DimTime: shape[0],
		DimVar:  shape[1],
		DimZ:    1,
		DimLat:  1,
		DimLon:  1,
		DimID:   1,
	}

	canonical, err := domain.NewArray(raw.DType(), res.DimVar, res.DimTime, 1, 1, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate canonical array: %w", err)
	}
	for k := 0; k < res.DimVar; k++ {
		for t := 0; t < res.DimTime; t++ {
			if err := canonical.CopyElement(k*res.DimTime+t, raw, t*res.DimVar+k); err != nil {
				return nil, err
			}
		}
	}
	res.Canonical = canonical
	return res, nil
}

func normalizeGrid(raw *domain.Array) *Result {
	shape := raw.Shape()
	return &Result{
		Layout:    Grid,
		DimVar:    shape[0],
		DimTime:   shape[1],
		DimZ:      shape[2],
		DimLat:    shape[3],
		DimLon:    shape[4],
		DimID:     0,
		Canonical: raw,
	}
}
