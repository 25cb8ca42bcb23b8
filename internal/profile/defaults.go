package profile

import (
	"github.com/sirupsen/logrus"

	"go.ngs.io/ncmodel/internal/check"
	"go.ngs.io/ncmodel/internal/config"
	"go.ngs.io/ncmodel/internal/coord"
	"go.ngs.io/ncmodel/internal/domain"
	"go.ngs.io/ncmodel/internal/dtype"
)

// Profile finding codes.
const (
	CodeAxisName          = "axis_name"
	CodeTimeUnlimited     = "time_unlimited"
	CodeGlobalValue       = "global_value"
	CodeGlobalCount       = "global_count"
	CodeVariableName      = "variable_name"
	CodeVariableType      = "variable_type"
	CodeAttributeValue    = "attribute_value"
	CodeStationFilename   = "station_filename"
	CodeStationHeightName = "station_height_name"
	CodeStationLength     = "station_length"
	CodeStationTimeUnits  = "station_time_units"
	CodeCoordinateKinds   = "coordinate_kinds"
	CodeIDVariable        = "id_variable"
	CodeIDCount           = "id_count"
	CodeDataKinds         = "data_kinds"
	CodeCoordinatesAttr   = "coordinates_attribute"
	CodeCoordinatesCount  = "coordinates_count"
)

// Checker compares a model with the installation defaults and the station
// profile. It assumes the model already passed the consistency check.
type Checker struct {
	settings   config.Settings
	classifier *coord.Classifier
	registry   *dtype.Registry
	log        logrus.FieldLogger
}

// New returns a profile Checker.
func New(settings config.Settings, classifier *coord.Classifier, registry *dtype.Registry, log logrus.FieldLogger) *Checker {
	return &Checker{
		settings:   settings,
		classifier: classifier,
		registry:   registry,
		log:        log.WithField("component", "profile"),
	}
}

// axisName returns the configured name for an axis role.
func (c *Checker) axisName(r coord.Role) string {
	switch r {
	case coord.Time:
		return c.settings.Axis.Time
	case coord.Height:
		return c.settings.Axis.Height
	case coord.Latitude:
		return c.settings.Axis.Latitude
	case coord.Longitude:
		return c.settings.Axis.Longitude
	default:
		return ""
	}
}

func (c *Checker) axisType(r coord.Role) string {
	switch r {
	case coord.Time:
		return c.settings.Variable.Time.Type
	case coord.Height:
		return c.settings.Variable.Height.Type
	case coord.Latitude:
		return c.settings.Variable.Latitude.Type
	case coord.Longitude:
		return c.settings.Variable.Longitude.Type
	default:
		return ""
	}
}

// axisAttributes lists the attribute values each coordinate variable must
// carry under the defaults.
func (c *Checker) axisAttributes(r coord.Role) []domain.Attribute {
	v := c.settings.Variable
	switch r {
	case coord.Time:
		return []domain.Attribute{{Name: "units", Value: v.Time.Units}, {Name: "calendar", Value: v.Time.Calendar}}
	case coord.Height:
		return []domain.Attribute{{Name: "positive", Value: v.Height.Positive}}
	case coord.Latitude:
		return []domain.Attribute{{Name: "units", Value: v.Latitude.Units}}
	case coord.Longitude:
		return []domain.Attribute{{Name: "units", Value: v.Longitude.Units}}
	default:
		return nil
	}
}

// CheckDefaults compares m with the configured defaults. The report is OK
// when m conforms.
func (c *Checker) CheckDefaults(m *domain.Model) *check.Report {
	rec := check.NewRecorder(c.log.WithField("profile", "default"))

	for _, d := range m.Dimensions {
		role := c.classifier.Classify(d.Name)
		if !role.IsAxis() {
			continue
		}
		if want := c.axisName(role); d.Name != want {
			rec.Errorf(CodeAxisName, d.Name, "dimension %q differs from the default %s axis name %q", d.Name, role, want)
		}
		if role == coord.Time && d.IsUnlimited != bool(c.settings.Dimension.TimeIsUnlimited) {
			rec.Errorf(CodeTimeUnlimited, d.Name, "dimension %q has isUnlimited=%t; default is %t",
				d.Name, d.IsUnlimited, bool(c.settings.Dimension.TimeIsUnlimited))
		}
	}

	c.requireGlobal(rec, m, "Conventions", c.settings.Global.Conventions)
	c.requireGlobal(rec, m, "institution", c.settings.Global.Institution)

	for _, v := range m.Variables {
		role := c.classifier.Classify(v.Name)
		if !role.IsAxis() {
			continue
		}
		name := c.axisName(role)
		if v.Name != name || v.Shape != name {
			rec.Errorf(CodeVariableName, v.Name, "coordinate variable %q with shape %q differs from the default %s axis name %q",
				v.Name, v.Shape, role, name)
		}
		c.compareFileCodes(rec, v, c.axisType(role))
		for _, want := range c.axisAttributes(role) {
			if a, ok := v.Attribute(want.Name); ok && a.Value != want.Value {
				rec.Errorf(CodeAttributeValue, v.Name, "attribute %s of %q is %q; default is %q", want.Name, v.Name, a.Value, want.Value)
			}
		}
	}
	return rec.Report()
}

// requireGlobal records an error unless m has exactly one global attribute
// name with value want.
func (c *Checker) requireGlobal(rec *check.Recorder, m *domain.Model, name, want string) {
	n := 0
	for _, a := range m.GlobalAttributes {
		if a.Name != name {
			continue
		}
		n++
		if a.Value != want {
			rec.Errorf(CodeGlobalValue, name, "global attribute %s is %q; default is %q", name, a.Value, want)
		}
	}
	if n != 1 {
		rec.Errorf(CodeGlobalCount, name, "found %d global attributes %s; exactly one is required", n, name)
	}
}

func (c *Checker) compareFileCodes(rec *check.Recorder, v *domain.Variable, want string) {
	got, err := c.registry.FileCode(v.Type)
	if err != nil {
		rec.Errorf(CodeVariableType, v.Name, "variable %q: %v", v.Name, err)
		return
	}
	exp, err := c.registry.FileCode(want)
	if err != nil {
		rec.Errorf(CodeVariableType, v.Name, "default type for %q: %v", v.Name, err)
		return
	}
	if got != exp {
		rec.Errorf(CodeVariableType, v.Name, "variable %q has type %q; default is %q", v.Name, v.Type, want)
	}
}
