package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/ncmodel/internal/adapter/store"
	"go.ngs.io/ncmodel/internal/check"
	"go.ngs.io/ncmodel/internal/config"
	"go.ngs.io/ncmodel/internal/coord"
	"go.ngs.io/ncmodel/internal/domain"
	"go.ngs.io/ncmodel/internal/dtype"
	"go.ngs.io/ncmodel/internal/profile"
)

// memStore keeps models in memory by path.
type memStore struct {
	models map[string]*domain.Model
	writes []string
}

func newMemStore() *memStore { return &memStore{models: map[string]*domain.Model{}} }

func (s *memStore) Read(path string) (*domain.Model, error) {
	m, ok := s.models[path]
	if !ok {
		return nil, domain.NotFound(path, errors.New("no such model"))
	}
	return m, nil
}

func (s *memStore) Write(path string, m *domain.Model) error {
	s.models[path] = m
	s.writes = append(s.writes, path)
	return nil
}

type fakeCF struct {
	result profile.CFResult
	paths  []string
}

func (f *fakeCF) Check(_ context.Context, path string) (profile.CFResult, error) {
	f.paths = append(f.paths, path)
	return f.result, nil
}

func newValidator(t *testing.T, cf profile.CFChecker, scratch store.ModelWriter) *Validator {
	t.Helper()
	log, _ := test.NewNullLogger()
	s := config.Default()
	c := coord.NewClassifier(coord.AliasesFromSettings(s.Aliases))
	reg := dtype.MustRegistry()
	return NewValidator(
		check.New(s, c, reg, check.NewUnitTable(), log),
		profile.New(s, c, reg, log),
		cf, scratch, log,
	)
}

func coordinate(t *testing.T, name, typ string, data any, n int, attrs ...string) *domain.Variable {
	t.Helper()
	v := domain.NewVariable(name, name, typ)
	v.AddAttribute("long_name", "", name, "")
	for i := 0; i+1 < len(attrs); i += 2 {
		v.AddAttribute(attrs[i], "", attrs[i+1], "")
	}
	arr, err := domain.FromSlice(data, n)
	require.NoError(t, err)
	v.Data = arr
	return v
}

// gridModel is a consistent 2 x 1 x 1 x 3 grid with an integer class
// variable.
func gridModel(t *testing.T) *domain.Model {
	t.Helper()
	m := &domain.Model{}
	m.AddDimension("time", 2, true)
	m.AddDimension("height", 1, false)
	m.AddDimension("lat", 1, false)
	m.AddDimension("lon", 3, false)
	m.AddGlobalAttribute("Conventions", "", "CF-1.4", "")
	m.AddGlobalAttribute("title", "", "land cover", "")

	m.AddVariable(coordinate(t, "time", "double", []float64{0, 1}, 2,
		"units", "hours since 1970-01-01 00:00:0.0", "calendar", "gregorian", "axis", "T"))
	m.AddVariable(coordinate(t, "height", "float", []float32{0}, 1, "units", "m", "positive", "up", "axis", "Z"))
	m.AddVariable(coordinate(t, "lat", "float", []float32{10}, 1, "units", "degrees_north", "axis", "Y"))
	m.AddVariable(coordinate(t, "lon", "float", []float32{20, 21, 22}, 3, "units", "degrees_east", "axis", "X"))

	class := domain.NewVariable("class", "time height lat lon", "float")
	class.AddAttribute("long_name", "", "cover class", "")
	class.AddAttribute("units", "", "1", "")
	class.AddAttribute("_FillValue", "float", "-9999", "")
	data, err := domain.FromSlice([]float32{1, 2, 3, 3, 2, -9999}, 2, 1, 1, 3)
	require.NoError(t, err)
	class.Data = data
	m.AddVariable(class)
	return m
}

func TestParseCheckOptions(t *testing.T) {
	cases := map[string]CheckOptions{
		"":                   {},
		"cf":                 {CF: true},
		"default":            {Default: true},
		"station":            {Station: true},
		"cf+default":         {CF: true, Default: true},
		"cf+default+station": {CF: true, Default: true, Station: true},
	}
	for in, want := range cases {
		got, err := ParseCheckOptions(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, in, got.String())
	}

	for _, in := range []string{"station+cf", "default+station", "CF", "all"} {
		_, err := ParseCheckOptions(in)
		assert.Error(t, err, in)
	}
}

func TestCheckOptionsFromProfiles(t *testing.T) {
	o, err := CheckOptionsFromProfiles([]string{"station", " default", ""})
	require.NoError(t, err)
	assert.Equal(t, CheckOptions{Default: true, Station: true}, o)

	_, err = CheckOptionsFromProfiles([]string{"epic"})
	assert.Error(t, err)
}

func TestValidator_ConsistencyOnly(t *testing.T) {
	v := newValidator(t, nil, nil)
	res, err := v.Validate(context.Background(), gridModel(t), "grid", "", CheckOptions{})
	require.NoError(t, err)
	assert.True(t, res.OK(), "%+v", res.Report.Findings)
	assert.Nil(t, res.CF)
}

func TestValidator_CFWritesScratchFile(t *testing.T) {
	cf := &fakeCF{result: profile.CFResult{Warnings: 2}}
	scratch := newMemStore()
	v := newValidator(t, cf, scratch)

	res, err := v.Validate(context.Background(), gridModel(t), "grid", "", CheckOptions{CF: true})
	require.NoError(t, err)
	require.NotNil(t, res.CF)
	assert.Equal(t, 2, res.CF.Warnings)
	assert.True(t, res.OK())

	require.Len(t, scratch.writes, 1)
	assert.Equal(t, scratch.writes, cf.paths)
	assert.True(t, strings.HasSuffix(cf.paths[0], ".nc"))
}

func TestValidator_CFUsesExistingFile(t *testing.T) {
	cf := &fakeCF{result: profile.CFResult{Errors: 1}}
	scratch := newMemStore()
	v := newValidator(t, cf, scratch)

	res, err := v.Validate(context.Background(), gridModel(t), "grid", "in.nc", CheckOptions{CF: true})
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, []string{"in.nc"}, cf.paths)
	assert.Empty(t, scratch.writes)
}

func TestValidator_CFWithoutChecker(t *testing.T) {
	v := newValidator(t, nil, newMemStore())
	_, err := v.Validate(context.Background(), gridModel(t), "grid", "", CheckOptions{CF: true})
	assert.Error(t, err)
}

func TestValidator_Profiles(t *testing.T) {
	v := newValidator(t, nil, nil)
	res, err := v.Validate(context.Background(), gridModel(t), "grid", "", CheckOptions{Default: true, Station: true})
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, 1, res.Report.Count(profile.CodeGlobalCount, "institution"))
	assert.Equal(t, 1, res.Report.Count(profile.CodeStationFilename, ""))
}

func newConverter(t *testing.T, abort bool) (*Converter, *memStore, *memStore) {
	t.Helper()
	log, _ := test.NewNullLogger()
	in, out := newMemStore(), newMemStore()
	c := NewConverter(
		map[Format]store.ModelReader{FormatModel: in},
		map[Format]store.ModelWriter{FormatNetCDF: out, FormatModel: out},
		newValidator(t, nil, nil), abort, log,
	)
	return c, in, out
}

func TestConverter_Convert(t *testing.T) {
	c, in, out := newConverter(t, true)
	in.models["grid"] = gridModel(t)

	res, path, err := c.Convert(context.Background(), ConvertRequest{From: FormatModel, To: FormatNetCDF, In: "grid", Out: "grid.nc"})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, "grid.nc", path)
	assert.Equal(t, []string{"grid.nc"}, out.writes)
}

func TestConverter_AbortOnFailedCheck(t *testing.T) {
	broken := gridModel(t)
	broken.AddGlobalAttribute("title", "", "again", "")

	c, in, out := newConverter(t, true)
	in.models["grid"] = broken
	res, _, err := c.Convert(context.Background(), ConvertRequest{From: FormatModel, To: FormatModel, In: "grid", Out: "copy"})
	assert.True(t, errors.Is(err, ErrCheckFailed))
	require.NotNil(t, res)
	assert.False(t, res.OK())
	assert.Empty(t, out.writes)

	c, in, out = newConverter(t, false)
	in.models["grid"] = broken
	_, _, err = c.Convert(context.Background(), ConvertRequest{From: FormatModel, To: FormatModel, In: "grid", Out: "copy"})
	require.NoError(t, err)
	assert.Equal(t, []string{"copy"}, out.writes)
}

func TestConverter_StationOutput(t *testing.T) {
	c, in, out := newConverter(t, false)
	in.models["buoy"] = gridModel(t)

	_, path, err := c.Convert(context.Background(), ConvertRequest{From: FormatModel, To: FormatNetCDF, In: "buoy", Out: "buoy.nc", Station: true})
	require.NoError(t, err)
	assert.Equal(t, "buoy_time_series.nc", path)

	m := gridModel(t)
	m.AddVariable(domain.NewVariable(domain.StationIDName, "", "int"))
	in.models["tagged"] = m
	_, path, err = c.Convert(context.Background(), ConvertRequest{From: FormatModel, To: FormatModel, In: "tagged", Out: "tagged"})
	require.NoError(t, err)
	assert.Equal(t, "tagged_time_series", path)
	assert.Equal(t, []string{"buoy_time_series.nc", "tagged_time_series"}, out.writes)
}

func TestConverter_UnknownFormats(t *testing.T) {
	c, _, _ := newConverter(t, false)
	_, _, err := c.Convert(context.Background(), ConvertRequest{From: FormatCSV, To: FormatModel})
	assert.Error(t, err)

	_, err = ParseFormat("grib")
	assert.Error(t, err)
	f, err := ParseFormat(" NC ")
	require.NoError(t, err)
	assert.Equal(t, FormatNetCDF, f)
}

func newRecoder() *Recoder {
	log, _ := test.NewNullLogger()
	return NewRecoder(coord.NewClassifier(coord.DefaultAliases()), log)
}

func TestRecodeBool(t *testing.T) {
	m := gridModel(t)
	require.NoError(t, newRecoder().RecodeBool(m, "class", 1, 3, []float64{2}))

	names := make([]string, len(m.Variables))
	for i, v := range m.Variables {
		names[i] = v.Name
	}
	assert.Equal(t, []string{"time", "height", "lat", "lon", "class_1", "class_3"}, names)

	c3, _ := m.Variable("class_3")
	assert.Equal(t, "byte", c3.Type)
	assert.Equal(t, "time height lat lon", c3.Shape)
	assert.Equal(t, []int8{0, 0, 1, 1, 0, 0}, c3.Data.Data())
	assert.Equal(t, []int{2, 1, 1, 3}, c3.Data.Shape())

	ln, _ := c3.Attribute("long_name")
	assert.Equal(t, "cover class (value 3)", ln.Value)
	fill, _ := c3.Attribute("_FillValue")
	assert.Equal(t, domain.Attribute{Name: "_FillValue", Type: "byte", Value: "0"}, fill)
}

func TestRecodeBool_Errors(t *testing.T) {
	r := newRecoder()
	assert.Error(t, r.RecodeBool(gridModel(t), "missing", 0, 1, nil))
	assert.Error(t, r.RecodeBool(gridModel(t), "lat", 0, 1, nil))
	assert.Error(t, r.RecodeBool(gridModel(t), "class", 3, 1, nil))
	assert.Error(t, r.RecodeBool(gridModel(t), "class", 2, 2, []float64{2}))
}

func TestScale(t *testing.T) {
	m := gridModel(t)
	require.NoError(t, newRecoder().Scale(m, "class", 2.5))
	class, _ := m.Variable("class")
	assert.Equal(t, []float32{2.5, 5, 7.5, 7.5, 5, -9999}, class.Data.Data())
	assert.Equal(t, []int{2, 1, 1, 3}, class.Data.Shape())

	m = gridModel(t)
	class, _ = m.Variable("class")
	class.Type = "short"
	var err error
	class.Data, err = domain.FromSlice([]int16{1, 2, 3, -3, 2, -9999}, 2, 1, 1, 3)
	require.NoError(t, err)
	require.NoError(t, newRecoder().Scale(m, "class", 1.5))
	assert.Equal(t, []int16{1, 3, 4, -4, 3, -9999}, class.Data.Data())
}

func TestScale_Errors(t *testing.T) {
	r := newRecoder()
	assert.Error(t, r.Scale(gridModel(t), "missing", 2))
	assert.Error(t, r.Scale(gridModel(t), "lon", 2))
}

func TestDataRange(t *testing.T) {
	lo, hi, err := DataRange(gridModel(t).Variables[4])
	require.NoError(t, err)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 3.0, hi)

	_, _, err = DataRange(domain.NewVariable("empty", "", "float"))
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	Describe(gridModel(t), log)

	var messages []string
	for _, e := range hook.AllEntries() {
		messages = append(messages, e.Message)
	}
	assert.Contains(t, messages, "dimension time")
	assert.Contains(t, messages, "global attribute title")
	assert.Contains(t, messages, "variable class")

	hook.Reset()
	DescribeValues(gridModel(t), log, func(v *domain.Variable) bool { return v.Name == "lon" })
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "[20 21 22]", hook.LastEntry().Message)
}

func TestStationPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "a_time_series.nc"), StationPath(filepath.Join(dir, "a.nc"), FormatNetCDF))
	assert.Equal(t, "a_time_series.nc", StationPath("a_time_series", FormatNetCDF))
	assert.Equal(t, "a_time_series", StationPath("a", FormatModel))
}
