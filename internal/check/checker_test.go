package check

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/ncmodel/internal/config"
	"go.ngs.io/ncmodel/internal/coord"
	"go.ngs.io/ncmodel/internal/domain"
	"go.ngs.io/ncmodel/internal/dtype"
)

func newChecker(t *testing.T) (*Checker, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	settings := config.Default()
	return New(settings,
		coord.NewClassifier(coord.AliasesFromSettings(settings.Aliases)),
		dtype.MustRegistry(),
		NewUnitTable(),
		log,
	), hook
}

func coordinate(t *testing.T, name, typ string, data any, n int, attrs ...[2]string) *domain.Variable {
	t.Helper()
	v := domain.NewVariable(name, name, typ)
	v.AddAttribute("long_name", "", name, "")
	for _, a := range attrs {
		v.AddAttribute(a[0], "", a[1], "")
	}
	arr, err := domain.FromSlice(data, n)
	require.NoError(t, err)
	v.Data = arr
	return v
}

// tempModel is a complete 3 x 1 x 2 x 2 grid with one data variable.
func tempModel(t *testing.T) *domain.Model {
	t.Helper()
	m := &domain.Model{}
	m.AddDimension("time", 3, true)
	m.AddDimension("height", 1, false)
	m.AddDimension("lat", 2, false)
	m.AddDimension("lon", 2, false)
	m.AddGlobalAttribute("Conventions", "", "CF-1.4", "")
	m.AddGlobalAttribute("title", "", "temperature", "")

	m.AddVariable(coordinate(t, "time", "double", []float64{0, 1, 2}, 3,
		[2]string{"units", "hours since 1970-01-01 00:00:0.0"},
		[2]string{"calendar", "gregorian"},
		[2]string{"axis", "T"}))
	m.AddVariable(coordinate(t, "height", "float", []float32{0}, 1,
		[2]string{"units", "m"},
		[2]string{"positive", "up"},
		[2]string{"axis", "Z"}))
	m.AddVariable(coordinate(t, "lat", "float", []float32{10, 11}, 2,
		[2]string{"units", "degrees_north"},
		[2]string{"axis", "Y"}))
	m.AddVariable(coordinate(t, "lon", "float", []float32{20, 21}, 2,
		[2]string{"units", "degrees_east"},
		[2]string{"axis", "X"}))

	temp := domain.NewVariable("temp", "time height lat lon", "float")
	temp.AddAttribute("long_name", "", "air temperature", "")
	temp.AddAttribute("units", "", "K", "")
	data, err := domain.NewArray(domain.Float32, 3, 1, 2, 2)
	require.NoError(t, err)
	temp.Data = data
	m.AddVariable(temp)
	return m
}

func TestCheck_TempModelPasses(t *testing.T) {
	c, hook := newChecker(t)
	report := c.Check(tempModel(t))
	assert.True(t, report.OK(), "%+v", report.Findings)
	assert.Empty(t, report.Errors())
	assert.Empty(t, report.Warnings())
	assert.Empty(t, hook.AllEntries())
}

func TestCheck_HeightLengthMismatch(t *testing.T) {
	m := tempModel(t)
	d, ok := m.Dimension("height")
	require.True(t, ok)
	d.Length = 2

	c, _ := newChecker(t)
	report := c.Check(m)
	assert.False(t, report.OK())
	assert.Equal(t, 1, report.Count(CodeLengthMismatch, "height"))
	assert.Equal(t, 1, report.Count(CodeDataLengthMismatch, "temp"))
	assert.Equal(t, 1, report.Count(CodeCoordinateVariableUnchecked, ""))
}

func TestCheck_DuplicateTitle(t *testing.T) {
	m := tempModel(t)
	m.AddGlobalAttribute("title", "", "again", "")

	c, _ := newChecker(t)
	report := c.Check(m)
	assert.False(t, report.OK())
	require.Len(t, report.Errors(), 1)
	assert.Equal(t, CodeDuplicateGlobalAttribute, report.Errors()[0].Code)
	assert.Equal(t, "title", report.Errors()[0].Subject)
}

func TestCheck_MissingDimensionsStillChecksRest(t *testing.T) {
	m := tempModel(t)
	m.Dimensions = nil
	m.AddGlobalAttribute("title", "", "", "")

	c, _ := newChecker(t)
	var report *Report
	require.NotPanics(t, func() { report = c.Check(m) })

	assert.False(t, report.OK())
	assert.Equal(t, 4, report.Count(CodeMissingRequiredDimension, ""))
	assert.Equal(t, 1, report.Count(CodeDuplicateGlobalAttribute, "title"))
	assert.Equal(t, 1, report.Count(CodeEmptyGlobalAttribute, "title"))
	assert.Zero(t, report.Count(CodeCoordinateVariableUnchecked, ""))
	assert.Zero(t, report.Count(CodeDimensionOrder, ""))
	assert.Zero(t, report.Count(CodeShapeNameMismatch, ""))
}

func TestCheck_UndeclaredDimension(t *testing.T) {
	m := tempModel(t)
	x := domain.NewVariable("x", "time foo", "float")
	x.AddAttribute("long_name", "", "x", "")
	x.AddAttribute("units", "", "1", "")
	x.Data, _ = domain.NewArray(domain.Float32, 3, 2)
	m.AddVariable(x)
	lat, _ := m.Variable("lat")
	lat.Shape = "latitude"

	c, _ := newChecker(t)
	report := c.Check(m)
	assert.False(t, report.OK())
	assert.Equal(t, 1, report.Count(CodeUndeclaredDimension, "x"))
	assert.Equal(t, 1, report.Count(CodeUndeclaredDimension, "lat"))
	assert.Zero(t, report.Count(CodeUndeclaredDimension, "temp"))
	assert.Equal(t, 1, report.Count(CodeNonstandardRank, "x"))
}

func TestCheck_ScalarLatitude(t *testing.T) {
	m := tempModel(t)
	d, _ := m.Dimension("lat")
	d.Length = 1
	lat, _ := m.Variable("lat")
	lat.Data, _ = domain.FromSlice([]float32{10.0}, 1)
	temp, _ := m.Variable("temp")
	temp.Data, _ = domain.NewArray(domain.Float32, 3, 1, 1, 2)

	c, _ := newChecker(t)
	report := c.Check(m)
	assert.True(t, report.OK(), "%+v", report.Findings)
}

func TestCheck_StationIDVariable(t *testing.T) {
	m := tempModel(t)
	id := domain.NewVariable("_id", "", "int")
	id.AddAttribute("long_name", "", "station id variable", "")
	id.Data, _ = domain.FromSlice([]int32{1}, 1)
	m.AddVariable(id)

	c, _ := newChecker(t)
	report := c.Check(m)
	assert.True(t, report.OK(), "%+v", report.Findings)
	assert.Zero(t, report.Count(CodeMissingUnits, "_id"))
	assert.Zero(t, report.Count(CodeRankMismatch, "_id"))
}

func TestCheck_CoordinateAttributes(t *testing.T) {
	m := tempModel(t)
	tm, _ := m.Variable("time")
	tm.SetAttribute("calendar", "julian")
	tm.SetAttribute("axis", "")
	h, _ := m.Variable("height")
	h.SetAttribute("positive", "sideways")
	h.SetAttribute("units", "furlongs")
	lon, _ := m.Variable("lon")
	lon.RemoveAttribute("axis")
	lon.SetAttribute("units", "")

	c, _ := newChecker(t)
	report := c.Check(m)
	assert.Equal(t, 1, report.Count(CodeInvalidCalendar, "time"))
	assert.Equal(t, 1, report.Count(CodeEmptyAttribute, "time"))
	assert.Equal(t, 1, report.Count(CodeInvalidPositive, "height"))
	assert.Equal(t, 1, report.Count(CodeInvalidUnits, "height"))
	assert.Equal(t, 1, report.Count(CodeNonconformingUnits, "height"))
	assert.Equal(t, 1, report.Count(CodeMissingAttribute, "lon"))
	assert.Equal(t, 1, report.Count(CodeEmptyAttribute, "lon"))
	assert.Zero(t, report.Count(CodeInvalidUnits, "lon"))

	var unchecked []Finding
	for _, f := range report.Errors() {
		if f.Code == CodeCoordinateVariableUnchecked {
			unchecked = append(unchecked, f)
		}
	}
	require.Len(t, unchecked, 1)
	assert.Equal(t, "time height longitude", unchecked[0].Subject)
}

func TestCheck_DataVariableDefects(t *testing.T) {
	m := tempModel(t)
	temp, _ := m.Variable("temp")
	temp.Shape = "time lat height lon"
	temp.Type = "double"
	temp.RemoveAttribute("long_name")
	temp.SetAttribute("units", "bogus")

	flat := domain.NewVariable("flat", "time lat", "float")
	flat.AddAttribute("long_name", "", "flat", "")
	flat.Data, _ = domain.NewArray(domain.Float32, 3, 2)
	m.AddVariable(flat)

	bare := domain.NewVariable("bare", "time height lat lon", "float")
	bare.AddAttribute("long_name", "", "bare", "")
	bare.AddAttribute("units", "", "1", "")
	m.AddVariable(bare)

	c, _ := newChecker(t)
	report := c.Check(m)
	assert.Equal(t, 1, report.Count(CodeDimensionOrder, "temp"))
	assert.Equal(t, 1, report.Count(CodeTypeMismatch, "temp"))
	assert.Equal(t, 1, report.Count(CodeMissingLongName, "temp"))
	assert.Equal(t, 1, report.Count(CodeNonconformingUnits, "temp"))
	assert.Equal(t, 1, report.Count(CodeNonstandardRank, "flat"))
	assert.Equal(t, 1, report.Count(CodeMissingUnits, "flat"))
	assert.Zero(t, report.Count(CodeRankMismatch, "flat"))
	assert.Equal(t, 1, report.Count(CodeMissingData, "bare"))
	assert.Zero(t, report.Count(CodeCoordinateVariableUnchecked, ""))
}

func TestCheck_DuplicatesAndUnlimited(t *testing.T) {
	m := tempModel(t)
	m.AddDimension("lat", 2, false)
	m.AddDimension("station", 1, false)
	d, _ := m.Dimension("lon")
	d.IsUnlimited = true
	temp, _ := m.Variable("temp")
	temp.AddAttribute("units", "", "K", "")
	m.AddVariable(temp)

	c, hook := newChecker(t)
	report := c.Check(m)
	assert.Equal(t, 1, report.Count(CodeDuplicateDimension, "lat"))
	assert.Equal(t, 1, report.Count(CodeInvalidDimensionName, "station"))
	assert.Equal(t, 1, report.Count(CodeUnlimitedNotAllowed, "lon"))
	assert.Equal(t, 2, report.Count(CodeDuplicateLocalAttribute, "temp"))
	assert.Equal(t, 1, report.Count(CodeDuplicateVariable, "temp"))

	var logged int
	for _, e := range hook.AllEntries() {
		if e.Data["code"] == CodeDuplicateVariable {
			logged++
			assert.Equal(t, "temp", e.Data["subject"])
			assert.Equal(t, logrus.ErrorLevel, e.Level)
		}
	}
	assert.Equal(t, 1, logged)
}
