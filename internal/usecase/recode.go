package usecase

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"gonum.org/v1/gonum/floats"

	"go.ngs.io/ncmodel/internal/coord"
	"go.ngs.io/ncmodel/internal/domain"
)

// Recoder rewrites the values of data variables.
type Recoder struct {
	classifier *coord.Classifier
	log        logrus.FieldLogger
}

// NewRecoder returns a Recoder.
func NewRecoder(classifier *coord.Classifier, log logrus.FieldLogger) *Recoder {
	return &Recoder{classifier: classifier, log: log}
}

// DataRange returns the smallest and largest data value of v, ignoring
// NaNs and the _FillValue.
func DataRange(v *domain.Variable) (lo, hi float64, err error) {
	if v.Data == nil {
		return 0, 0, fmt.Errorf("variable %q has no data", v.Name)
	}
	fill, hasFill, err := fillValue(v)
	if err != nil {
		return 0, 0, err
	}

	var vals []float64
	for _, f := range v.Data.Float64s() {
		if math.IsNaN(f) || (hasFill && f == fill) {
			continue
		}
		vals = append(vals, f)
	}
	if len(vals) == 0 {
		return 0, 0, fmt.Errorf("variable %q holds no valid values", v.Name)
	}
	return floats.Min(vals), floats.Max(vals), nil
}

func fillValue(v *domain.Variable) (float64, bool, error) {
	a, ok := v.Attribute("_FillValue")
	if !ok || a.Value == "" {
		return 0, false, nil
	}
	fill, err := cast.ToFloat64E(a.Value)
	if err != nil {
		return 0, false, fmt.Errorf("invalid _FillValue of %q: %w", v.Name, err)
	}
	return fill, true, nil
}

// Scale multiplies the data of variable name by factor in place and casts
// the result back to the variable's element type; integer types truncate
// toward zero. NaNs and _FillValue entries are left as they are.
func (r *Recoder) Scale(m *domain.Model, name string, factor float64) error {
	v, ok := m.Variable(name)
	if !ok {
		return fmt.Errorf("no variable %q", name)
	}
	if v.Data == nil {
		return fmt.Errorf("variable %q has no data", name)
	}
	if r.classifier.Classify(name) != coord.Data {
		return fmt.Errorf("variable %q is a coordinate variable", name)
	}
	fill, hasFill, err := fillValue(v)
	if err != nil {
		return err
	}

	vals := v.Data.Float64s()
	scaled := append([]float64(nil), vals...)
	floats.Scale(factor, scaled)
	for i, f := range vals {
		if math.IsNaN(f) || (hasFill && f == fill) {
			scaled[i] = f
		}
	}
	data, err := domain.FromFloat64s(v.Data.DType(), scaled, v.Data.Shape()...)
	if err != nil {
		return err
	}
	v.Data = data

	r.log.WithFields(logrus.Fields{"variable": name, "factor": factor}).Info("Variable scaled")
	return nil
}

// RecodeBool replaces the data variables of m with one byte variable per
// integer value in [lo, hi] that is not listed in bad. Variable
// "<name>_<value>" is 1 where the source variable equals the value and 0
// elsewhere, and inherits the source attributes with the value appended to
// long_name. Coordinate variables are kept.
func (r *Recoder) RecodeBool(m *domain.Model, name string, lo, hi float64, bad []float64) error {
	src, ok := m.Variable(name)
	if !ok {
		return fmt.Errorf("no variable %q", name)
	}
	if src.Data == nil {
		return fmt.Errorf("variable %q has no data", name)
	}
	if r.classifier.Classify(name) != coord.Data {
		return fmt.Errorf("variable %q is a coordinate variable", name)
	}
	if lo > hi {
		return fmt.Errorf("invalid value range [%g, %g]", lo, hi)
	}

	vals := src.Data.Float64s()
	var recoded []*domain.Variable
	for v := math.Ceil(lo); v <= hi; v++ {
		if contains(bad, v) {
			continue
		}
		flags := make([]float64, len(vals))
		for i, f := range vals {
			if f == v {
				flags[i] = 1
			}
		}
		data, err := domain.FromFloat64s(domain.Int8, flags, src.Data.Shape()...)
		if err != nil {
			return err
		}
		recoded = append(recoded, indicator(src, v, data))
	}
	if len(recoded) == 0 {
		return fmt.Errorf("no values left in [%g, %g] after excluding %v", lo, hi, bad)
	}

	var kept []*domain.Variable
	for _, v := range m.Variables {
		if r.classifier.Classify(v.Name) != coord.Data {
			kept = append(kept, v)
		}
	}
	m.Variables = append(kept, recoded...)

	r.log.WithFields(logrus.Fields{"variable": name, "created": len(recoded)}).Info("Variable recoded to indicator variables")
	return nil
}

func indicator(src *domain.Variable, value float64, data *domain.Array) *domain.Variable {
	label := strconv.FormatFloat(value, 'f', -1, 64)
	v := domain.NewVariable(src.Name+"_"+label, src.Shape, "byte")
	for _, a := range src.Attributes {
		switch a.Name {
		case "_FillValue", "valid_range", "scale_factor", "add_offset":
			continue
		case "long_name":
			a.Value = fmt.Sprintf("%s (value %s)", a.Value, label)
		case "units":
			a.Value = "1"
		}
		v.Attributes = append(v.Attributes, a)
	}
	if _, ok := v.Attribute("long_name"); !ok {
		v.AddAttribute("long_name", "", fmt.Sprintf("%s (value %s)", src.Name, label), "")
	}
	v.AddAttribute("_FillValue", "byte", "0", "")
	v.Data = data
	return v
}

func contains(list []float64, v float64) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
