package usecase

import (
	"fmt"
	"math"

	"github.com/spf13/cast"

	"go.ngs.io/ncmodel/internal/adapter/interp"
	"go.ngs.io/ncmodel/internal/coord"
	"go.ngs.io/ncmodel/internal/domain"
)

// SampleRequest selects a point of a four-dimensional data variable. Time
// and Height are indices; Latitude and Longitude are coordinates that may
// fall between grid nodes.
type SampleRequest struct {
	Variable  string
	Time      int
	Height    int
	Latitude  float64
	Longitude float64
}

// Sampler reads data variables at arbitrary horizontal positions.
type Sampler struct {
	classifier *coord.Classifier
}

// NewSampler returns a Sampler.
func NewSampler(classifier *coord.Classifier) *Sampler {
	return &Sampler{classifier: classifier}
}

// Sample interpolates the requested variable bilinearly in the horizontal.
// Nodes holding the _FillValue must not contribute to the result.
func (s *Sampler) Sample(m *domain.Model, req SampleRequest) (float64, error) {
	v, ok := m.Variable(req.Variable)
	if !ok {
		return 0, fmt.Errorf("no variable %q", req.Variable)
	}
	if s.classifier.Classify(v.Name) != coord.Data {
		return 0, fmt.Errorf("variable %q is a coordinate variable", v.Name)
	}
	if v.Data == nil || v.Data.NDim() != 4 {
		return 0, fmt.Errorf("variable %q has no (time, height, lat, lon) data", v.Name)
	}

	shape := v.Data.Shape()
	if req.Time < 0 || req.Time >= shape[0] {
		return 0, fmt.Errorf("time index %d out of range [0, %d)", req.Time, shape[0])
	}
	if req.Height < 0 || req.Height >= shape[1] {
		return 0, fmt.Errorf("height index %d out of range [0, %d)", req.Height, shape[1])
	}
	slab, err := v.Data.Index(req.Time)
	if err != nil {
		return 0, err
	}
	if slab, err = slab.Index(req.Height); err != nil {
		return 0, err
	}

	lats, err := s.axisValues(m, coord.Latitude, shape[2])
	if err != nil {
		return 0, err
	}
	lons, err := s.axisValues(m, coord.Longitude, shape[3])
	if err != nil {
		return 0, err
	}

	grid, err := interp.NewGrid(lons, lats, slab.Float64s())
	if err != nil {
		return 0, fmt.Errorf("variable %q: %w", v.Name, err)
	}
	if a, ok := v.Attribute("_FillValue"); ok && a.Value != "" {
		fill, err := cast.ToFloat64E(a.Value)
		if err != nil {
			return 0, fmt.Errorf("invalid _FillValue of %q: %w", v.Name, err)
		}
		grid.WithNodata(fill)
	}

	val, err := grid.At(req.Longitude, req.Latitude)
	if err != nil {
		return 0, fmt.Errorf("sample %q at (%g, %g): %w", v.Name, req.Latitude, req.Longitude, err)
	}
	return val, nil
}

func (s *Sampler) axisValues(m *domain.Model, r coord.Role, n int) ([]float64, error) {
	v, ok := s.classifier.VariableFor(m, r)
	if !ok || v.Data == nil {
		return nil, fmt.Errorf("model has no %s values", r)
	}
	vals := v.Data.Float64s()
	if len(vals) != n {
		return nil, fmt.Errorf("%s has %d values, data expects %d", r, len(vals), n)
	}
	for _, f := range vals {
		if math.IsNaN(f) {
			return nil, fmt.Errorf("%s holds NaN", r)
		}
	}
	return vals, nil
}
