package check

import (
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"go.ngs.io/ncmodel/internal/config"
	"go.ngs.io/ncmodel/internal/coord"
	"go.ngs.io/ncmodel/internal/domain"
	"go.ngs.io/ncmodel/internal/dtype"
)

// Checker validates the internal consistency of a model: dimensions against
// coordinate variables, declared types against data, and required metadata.
// It does not check conformance to a convention profile.
type Checker struct {
	classifier *coord.Classifier
	registry   *dtype.Registry
	units      UnitOracle
	settings   config.Settings
	log        logrus.FieldLogger
}

// New returns a Checker.
func New(settings config.Settings, classifier *coord.Classifier, registry *dtype.Registry, units UnitOracle, log logrus.FieldLogger) *Checker {
	return &Checker{
		classifier: classifier,
		registry:   registry,
		units:      units,
		settings:   settings,
		log:        log,
	}
}

// axisDims holds the first dimension found per axis role.
type axisDims map[coord.Role]*domain.Dimension

func (d axisDims) complete() bool {
	for _, r := range coord.AxisRoles {
		if d[r] == nil {
			return false
		}
	}
	return true
}

// Check runs every check and returns the findings. Content defects never
// stop the run.
func (c *Checker) Check(m *domain.Model) *Report {
	rec := NewRecorder(c.log.WithField("component", "check"))

	dims := c.checkDimensions(rec, m)
	c.checkGlobals(rec, m)

	checked := make(map[coord.Role]bool, len(coord.AxisRoles))
	seen := make(map[string]struct{}, len(m.Variables))
	for _, v := range m.Variables {
		if _, dup := seen[v.Name]; dup {
			rec.Errorf(CodeDuplicateVariable, v.Name, "variable %q is declared more than once", v.Name)
		}
		seen[v.Name] = struct{}{}

		c.checkLocalAttributes(rec, v)
		for _, n := range m.UndeclaredDimensions(v) {
			rec.Errorf(CodeUndeclaredDimension, v.Name, "variable %q references undeclared dimension %q", v.Name, n)
		}

		role := c.classifier.Classify(v.Name)
		switch {
		case role.IsAxis():
			if d := dims[role]; d != nil {
				checked[role] = c.checkCoordinate(rec, role, d, v)
			}
		default:
			c.checkData(rec, role, v, dims)
		}
	}

	if dims.complete() {
		var missing []string
		for _, r := range coord.AxisRoles {
			if !checked[r] {
				missing = append(missing, r.String())
			}
		}
		if len(missing) > 0 {
			rec.Errorf(CodeCoordinateVariableUnchecked, strings.Join(missing, " "),
				"coordinate variable for %s is missing, misnamed or invalid", strings.Join(missing, ", "))
		}
	}
	return rec.Report()
}

func (c *Checker) checkDimensions(rec *Recorder, m *domain.Model) axisDims {
	dims := make(axisDims, len(coord.AxisRoles))
	seen := make(map[string]struct{}, len(m.Dimensions))
	for i := range m.Dimensions {
		d := &m.Dimensions[i]
		if _, dup := seen[d.Name]; dup {
			rec.Errorf(CodeDuplicateDimension, d.Name, "dimension %q is declared more than once", d.Name)
		}
		seen[d.Name] = struct{}{}

		role := c.classifier.Classify(d.Name)
		if !role.IsAxis() {
			rec.Warnf(CodeInvalidDimensionName, d.Name, "dimension %q is not a coordinate dimension name", d.Name)
			continue
		}
		if dims[role] == nil {
			dims[role] = d
		}
	}

	for _, r := range coord.AxisRoles {
		if dims[r] == nil {
			rec.Errorf(CodeMissingRequiredDimension, r.String(), "%s: no %s dimension declared", domain.ErrMissingRequiredDimension, r)
		}
	}
	return dims
}

func (c *Checker) checkGlobals(rec *Recorder, m *domain.Model) {
	seen := make(map[string]struct{}, len(m.GlobalAttributes))
	for _, a := range m.GlobalAttributes {
		if a.Value == "" {
			rec.Warnf(CodeEmptyGlobalAttribute, a.Name, "global attribute %q is empty", a.Name)
		}
		if _, dup := seen[a.Name]; dup {
			rec.Errorf(CodeDuplicateGlobalAttribute, a.Name, "global attribute %q is declared more than once", a.Name)
		}
		seen[a.Name] = struct{}{}
	}
}

func (c *Checker) checkLocalAttributes(rec *Recorder, v *domain.Variable) {
	seen := make(map[string]struct{}, len(v.Attributes))
	for _, a := range v.Attributes {
		if a.Value == "" {
			rec.Warnf(CodeEmptyLocalAttribute, v.Name, "attribute %q of variable %q is empty", a.Name, v.Name)
		}
		if _, dup := seen[a.Name]; dup {
			rec.Errorf(CodeDuplicateLocalAttribute, v.Name, "attribute %q of variable %q is declared more than once", a.Name, v.Name)
		}
		seen[a.Name] = struct{}{}
	}
	if _, ok := seen["long_name"]; !ok {
		rec.Warnf(CodeMissingLongName, v.Name, "variable %q has no long_name attribute", v.Name)
	}
}

// checkCoordinate validates a coordinate variable against the dimension of
// the same role and reports whether it passed.
func (c *Checker) checkCoordinate(rec *Recorder, role coord.Role, d *domain.Dimension, v *domain.Variable) bool {
	before := len(rec.Report().Errors())

	if v.Shape != d.Name {
		rec.Errorf(CodeShapeNameMismatch, v.Name, "dimension %q differs from shape %q of coordinate variable %q", d.Name, v.Shape, v.Name)
	}
	if d.IsUnlimited && role != coord.Time {
		rec.Errorf(CodeUnlimitedNotAllowed, v.Name, "dimension %q cannot be unlimited", d.Name)
	}

	if v.Data == nil {
		rec.Errorf(CodeMissingData, v.Name, "coordinate variable %q has no data", v.Name)
	} else {
		if n := firstAxisLen(v.Data); d.Length != n {
			rec.Errorf(CodeLengthMismatch, v.Name, "dimension %q has length %d but variable %q holds %d values", d.Name, d.Length, v.Name, n)
		}
		c.checkType(rec, v)
		if tokens := v.ShapeNames(); v.Data.NDim() != 1 || len(tokens) != v.Data.NDim() {
			rec.Errorf(CodeCoordinateRank, v.Name, "coordinate variable %q must be one-dimensional; data has %d dimensions, shape %q declares %d",
				v.Name, v.Data.NDim(), v.Shape, len(tokens))
		}
	}

	c.checkCoordinateAttributes(rec, role, v)

	if v.Name != v.Shape {
		rec.Warnf(CodeNameShapeMismatch, v.Name, "coordinate variable %q differs from its shape %q", v.Name, v.Shape)
	}
	return len(rec.Report().Errors()) == before
}

func (c *Checker) checkCoordinateAttributes(rec *Recorder, role coord.Role, v *domain.Variable) {
	if a, ok := v.Attribute("units"); !ok {
		rec.Errorf(CodeMissingAttribute, v.Name, "variable %q has no units attribute", v.Name)
	} else if a.Value == "" {
		rec.Warnf(CodeEmptyAttribute, v.Name, "units of variable %q is empty", v.Name)
	} else {
		if legal := c.legalUnits(role); !slices.Contains(legal, a.Value) {
			rec.Errorf(CodeInvalidUnits, v.Name, "units %q of variable %q is not one of %q", a.Value, v.Name, legal)
		}
		if !c.units.Valid(a.Value) {
			rec.Errorf(CodeNonconformingUnits, v.Name, "units %q of variable %q is not a recognised unit", a.Value, v.Name)
		}
	}

	c.requireValue(rec, v, "axis", func(s string) bool { return s == role.Axis() }, CodeInvalidAxis)
	switch role {
	case coord.Time:
		calendar := c.settings.Variable.Time.Calendar
		c.requireValue(rec, v, "calendar", func(s string) bool { return s == calendar }, CodeInvalidCalendar)
	case coord.Height:
		c.requireValue(rec, v, "positive", func(s string) bool { return s == "up" || s == "down" }, CodeInvalidPositive)
	}
}

// requireValue records an error when attribute name is absent, empty or
// rejected by valid.
func (c *Checker) requireValue(rec *Recorder, v *domain.Variable, name string, valid func(string) bool, invalidCode string) {
	a, ok := v.Attribute(name)
	switch {
	case !ok:
		rec.Errorf(CodeMissingAttribute, v.Name, "variable %q has no %s attribute", v.Name, name)
	case a.Value == "":
		rec.Errorf(CodeEmptyAttribute, v.Name, "%s of variable %q is empty", name, v.Name)
	case !valid(a.Value):
		rec.Errorf(invalidCode, v.Name, "%s %q of variable %q is not valid", name, a.Value, v.Name)
	}
}

func (c *Checker) legalUnits(role coord.Role) []string {
	switch role {
	case coord.Time:
		return c.settings.Units.Time
	case coord.Height:
		return c.settings.Units.Height
	case coord.Latitude:
		return c.settings.Units.Latitude
	case coord.Longitude:
		return c.settings.Units.Longitude
	default:
		return nil
	}
}

// checkData validates a data or id variable against the axis dimensions.
func (c *Checker) checkData(rec *Recorder, role coord.Role, v *domain.Variable, dims axisDims) {
	tokens := v.ShapeNames()

	if v.Data == nil {
		rec.Errorf(CodeMissingData, v.Name, "variable %q has no data", v.Name)
	} else {
		ndim := v.Data.NDim()
		if len(tokens) != ndim && !(len(tokens) == 0 && ndim == 1) {
			rec.Errorf(CodeRankMismatch, v.Name, "variable %q has %d data dimensions but shape %q declares %d", v.Name, ndim, v.Shape, len(tokens))
		}
		if len(tokens) == 4 && dims.complete() {
			c.checkDataAxes(rec, v, tokens, dims)
		}
		c.checkType(rec, v)
	}

	if a, ok := v.Attribute("units"); !ok {
		if role != coord.ID {
			rec.Warnf(CodeMissingUnits, v.Name, "variable %q has no units attribute", v.Name)
		}
	} else if a.Value == "" {
		rec.Warnf(CodeEmptyUnits, v.Name, "units of variable %q is empty", v.Name)
	} else if !c.units.Valid(a.Value) {
		rec.Errorf(CodeNonconformingUnits, v.Name, "units %q of variable %q is not a recognised unit", a.Value, v.Name)
	}

	if n := len(tokens); n != 4 && n != 0 {
		rec.Warnf(CodeNonstandardRank, v.Name, "variable %q declares %d dimensions; expected time, height, latitude and longitude", v.Name, n)
	}
}

func (c *Checker) checkDataAxes(rec *Recorder, v *domain.Variable, tokens []string, dims axisDims) {
	for i, r := range coord.AxisRoles {
		if tokens[i] != dims[r].Name {
			rec.Errorf(CodeDimensionOrder, v.Name, "variable %q must have shape %q, got %q", v.Name, axisShape(dims), v.Shape)
			break
		}
	}
	if v.Data.NDim() != 4 {
		return
	}
	shape := v.Data.Shape()
	for i, r := range coord.AxisRoles {
		if shape[i] != dims[r].Length {
			rec.Errorf(CodeDataLengthMismatch, v.Name, "variable %q has data shape %v but the dimensions declare %v",
				v.Name, shape, axisLengths(dims))
			break
		}
	}
}

func (c *Checker) checkType(rec *Recorder, v *domain.Variable) {
	want, err := c.registry.ArrayDType(v.Type)
	if err != nil {
		rec.Errorf(CodeTypeMismatch, v.Name, "variable %q: %v", v.Name, err)
		return
	}
	if got := v.Data.DType(); got != want {
		rec.Errorf(CodeTypeMismatch, v.Name, "variable %q holds %s data but declares type %q (%s)", v.Name, got, v.Type, want)
	}
}

func firstAxisLen(a *domain.Array) int {
	if a.NDim() == 0 {
		return a.Len()
	}
	return a.Shape()[0]
}

func axisShape(dims axisDims) string {
	names := make([]string, 0, len(coord.AxisRoles))
	for _, r := range coord.AxisRoles {
		names = append(names, dims[r].Name)
	}
	return strings.Join(names, " ")
}

func axisLengths(dims axisDims) []int {
	lengths := make([]int, 0, len(coord.AxisRoles))
	for _, r := range coord.AxisRoles {
		lengths = append(lengths, dims[r].Length)
	}
	return lengths
}
