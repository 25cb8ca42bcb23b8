package ncml

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.ngs.io/ncmodel/internal/config"
	"go.ngs.io/ncmodel/internal/domain"
	"go.ngs.io/ncmodel/internal/dtype"
	"go.ngs.io/ncmodel/internal/shape"
)

// DataVariableName is the placeholder name of the i-th data variable added
// by FillFromArray.
func DataVariableName(i int) string {
	return "variable #" + strconv.Itoa(i)
}

// Template returns the default schema for gridded data: the four axis
// dimensions with zero lengths, the global attributes and the coordinate
// variables, without data variables.
func Template(s config.Settings) *domain.Model {
	return templateAt(s, time.Now())
}

func templateAt(s config.Settings, now time.Time) *domain.Model {
	m := &domain.Model{}
	m.AddDimension(s.Axis.Time, 0, bool(s.Dimension.TimeIsUnlimited))
	m.AddDimension(s.Axis.Height, 0, false)
	m.AddDimension(s.Axis.Latitude, 0, false)
	m.AddDimension(s.Axis.Longitude, 0, false)

	m.AddGlobalAttribute("Conventions", "", s.Global.Conventions, "")
	m.AddGlobalAttribute("title", "", "", "")
	m.AddGlobalAttribute("institution", "", s.Global.Institution, "")
	m.AddGlobalAttribute("source", "", "", "")
	m.AddGlobalAttribute("history", "", "Ncml creation date: "+now.Format(time.ANSIC), "")
	m.AddGlobalAttribute("references", "", "", "")
	m.AddGlobalAttribute("comment", "", "", "")

	v := s.Variable
	t := m.AddVariable(domain.NewVariable(s.Axis.Time, s.Axis.Time, v.Time.Type))
	t.AddAttribute("units", "", v.Time.Units, "")
	t.AddAttribute("long_name", "", "time", "")
	t.AddAttribute("standard_name", "", "time", "")
	t.AddAttribute("calendar", "", v.Time.Calendar, "")
	t.AddAttribute("axis", "", "T", "")

	h := m.AddVariable(domain.NewVariable(s.Axis.Height, s.Axis.Height, v.Height.Type))
	h.AddAttribute("units", "", "", "")
	h.AddAttribute("long_name", "", "", "")
	h.AddAttribute("standard_name", "", "", "")
	h.AddAttribute("positive", "", v.Height.Positive, "")
	h.AddAttribute("axis", "", "Z", "")

	lat := m.AddVariable(domain.NewVariable(s.Axis.Latitude, s.Axis.Latitude, v.Latitude.Type))
	lat.AddAttribute("units", "", v.Latitude.Units, "")
	lat.AddAttribute("long_name", "", "latitude", "")
	lat.AddAttribute("standard_name", "", "latitude", "")
	lat.AddAttribute("axis", "", "Y", "")

	lon := m.AddVariable(domain.NewVariable(s.Axis.Longitude, s.Axis.Longitude, v.Longitude.Type))
	lon.AddAttribute("units", "", v.Longitude.Units, "")
	lon.AddAttribute("long_name", "", "longitude", "")
	lon.AddAttribute("standard_name", "", "longitude", "")
	lon.AddAttribute("axis", "", "X", "")
	return m
}

// FillFromArray sets the axis lengths of a template from a rank-2 station
// table or a rank-5 grid and appends one placeholder data variable per
// variable slot. The placeholders carry empty units, long_name and
// standard_name and a _FillValue typed with the array dtype.
func FillFromArray(m *domain.Model, raw *domain.Array, axis config.AxisSettings) error {
	layout, err := shape.LayoutForRank(raw.NDim())
	if err != nil {
		return err
	}
	dims := raw.Shape()
	nvar, lengths := 0, []int{}
	switch layout {
	case shape.Station:
		nvar, lengths = dims[1], []int{dims[0], 1, 1, 1}
	case shape.Grid:
		nvar, lengths = dims[0], dims[1:]
	}

	names := []string{axis.Time, axis.Height, axis.Latitude, axis.Longitude}
	for i, name := range names {
		d, ok := m.Dimension(name)
		if !ok {
			return fmt.Errorf("template has no %q dimension", name)
		}
		d.Length = lengths[i]
	}

	typ := dtype.DTypeName(raw.DType())
	for i := 0; i < nvar; i++ {
		v := m.AddVariable(domain.NewVariable(DataVariableName(i), strings.Join(names, " "), typ))
		v.AddAttribute("units", "", "", "")
		v.AddAttribute("long_name", "", "", "")
		v.AddAttribute("standard_name", "", "", "")
		v.AddAttribute("_FillValue", typ, "", "")
	}
	return nil
}

// ApplyStation turns a filled grid template into the in-situ time-series
// layout: the height axis becomes a length-1 "elev" axis, latitude and
// longitude get length 1, coordinate types are fixed, a scalar station id
// is added and every data variable gets a coordinates attribute.
func ApplyStation(m *domain.Model, axis config.AxisSettings) error {
	if axis.Height != domain.StationHeightName {
		if err := m.RenameDimension(axis.Height, domain.StationHeightName); err != nil {
			return err
		}
	}
	for _, name := range []string{domain.StationHeightName, axis.Latitude, axis.Longitude} {
		d, ok := m.Dimension(name)
		if !ok {
			return fmt.Errorf("station schema needs a %q dimension", name)
		}
		d.Length = 1
	}

	m.SetGlobalAttribute("Conventions", domain.StationConventions)

	if h, ok := m.Variable(axis.Height); ok {
		h.Name = domain.StationHeightName
		h.Shape = domain.StationHeightName
	}
	if t, ok := m.Variable(axis.Time); ok {
		t.Type = "double"
	}
	for _, name := range []string{domain.StationHeightName, axis.Latitude, axis.Longitude} {
		if v, ok := m.Variable(name); ok {
			v.Type = "float"
		}
	}

	coordinates := strings.Join([]string{axis.Time, domain.StationHeightName, axis.Latitude, axis.Longitude}, " ")
	for _, v := range m.Variables {
		if len(v.ShapeNames()) == 4 {
			v.SetAttribute("coordinates", coordinates)
		}
	}

	id := m.AddVariable(domain.NewVariable(domain.StationIDName, "", "int"))
	id.AddAttribute("long_name", "", domain.StationIDLongName, "")
	return nil
}
