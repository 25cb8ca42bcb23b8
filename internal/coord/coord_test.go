package coord

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/ncmodel/internal/domain"
)

func TestClassify_DefaultAliases(t *testing.T) {
	c := NewClassifier(DefaultAliases())
	cases := map[string]Role{
		"time":      Time,
		"height":    Height,
		"elev":      Height,
		"depth":     Height,
		"lat":       Latitude,
		"latitude":  Latitude,
		"lon":       Longitude,
		"longitude": Longitude,
		"_id":       ID,
		"Time":      Data,
		"temp":      Data,
		"":          Data,
	}
	for name, want := range cases {
		assert.Equal(t, want, c.Classify(name), name)
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	c := NewClassifier(AliasSets{Time: []string{"t"}, Height: []string{"t", "z"}})
	assert.Equal(t, Time, c.Classify("t"))
	assert.Equal(t, Height, c.Classify("z"))
}

func TestRole_AxisAndTag(t *testing.T) {
	assert.Equal(t, "T", Time.Axis())
	assert.Equal(t, "Z", Height.Axis())
	assert.Equal(t, "Y", Latitude.Axis())
	assert.Equal(t, "X", Longitude.Axis())
	assert.Equal(t, "", ID.Axis())
	assert.Equal(t, "id", ID.Tag())
	assert.Equal(t, "", Data.Tag())
	assert.True(t, Latitude.IsAxis())
	assert.False(t, ID.IsAxis())
}

func TestDataVariables_DeclarationOrder(t *testing.T) {
	c := NewClassifier(DefaultAliases())
	vars := []*domain.Variable{
		domain.NewVariable("time", "time", "double"),
		domain.NewVariable("b", "", "float"),
		domain.NewVariable("_id", "", "int"),
		domain.NewVariable("a", "", "float"),
	}
	got := c.DataVariables(vars)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Name)
	assert.Equal(t, "a", got[1].Name)
}

func TestResolve_MinMaxSpan(t *testing.T) {
	a, err := Resolve("longitude", Record{Min: "0", Max: "10"}, 5, domain.Float64)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2.5, 5, 7.5, 10}, a.Float64s())
}

func TestResolve_MinEqualsMaxSingleValue(t *testing.T) {
	a, err := Resolve("latitude", Record{Min: "10.0", Max: "10.0"}, 1, domain.Float32)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, a.Shape())
	assert.Equal(t, []float32{10}, a.Data())

	rec, err := Encode(a)
	require.NoError(t, err)
	assert.Empty(t, rec.Min)
	assert.Empty(t, rec.Max)
	assert.Equal(t, "10", rec.Values)
	assert.Equal(t, ListSeparator, rec.Separator)
}

func TestResolve_ValuesDefaultSeparator(t *testing.T) {
	a, err := Resolve("id", Record{Values: "3,1, 2"}, 0, domain.Int32)
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 1, 2}, a.Data())
}

func TestResolve_ParseError(t *testing.T) {
	_, err := Resolve("id", Record{Values: "1, 2.5"}, 2, domain.Int32)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParse))

	var pe *domain.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "id", pe.Tag)
	assert.Equal(t, " 2.5", pe.Token)
}

func TestResolve_MissingData(t *testing.T) {
	_, err := Resolve("time", Record{Min: "1"}, 3, domain.Float64)
	assert.True(t, errors.Is(err, domain.ErrMissingCoordinateData))
}

func TestEncode_EvenSpacingWritesMinMax(t *testing.T) {
	a, _ := domain.FromSlice([]float64{0, 0.1, 0.2, 0.30000000000000004, 0.4}, 5)
	rec, err := Encode(a)
	require.NoError(t, err)
	assert.Equal(t, "0", rec.Min)
	assert.Equal(t, "0.4", rec.Max)
	assert.Empty(t, rec.Values)

	back, err := Resolve("height", rec, 5, domain.Float64)
	require.NoError(t, err)
	for i, v := range back.Float64s() {
		assert.InDelta(t, a.Float64s()[i], v, 1e-8)
	}
}

func TestEncode_IrregularWritesValues(t *testing.T) {
	a, _ := domain.FromSlice([]float64{0, 1, 3, 7}, 4)
	rec, err := Encode(a)
	require.NoError(t, err)
	assert.Empty(t, rec.Min)
	assert.Equal(t, "0, 1, 3, 7", rec.Values)

	back, err := Resolve("time", rec, 4, domain.Float64)
	require.NoError(t, err)
	assert.True(t, a.Equal(back))
}

func TestEncode_DescendingWritesValues(t *testing.T) {
	a, _ := domain.FromSlice([]float32{30, 20, 10}, 3)
	rec, err := Encode(a)
	require.NoError(t, err)
	assert.Empty(t, rec.Min)
	assert.Empty(t, rec.Max)
	assert.Equal(t, "30, 20, 10", rec.Values)

	back, err := Resolve("latitude", rec, 3, domain.Float32)
	require.NoError(t, err)
	assert.Equal(t, []float32{30, 20, 10}, back.Data())
}

func TestEncode_IntegerAxis(t *testing.T) {
	a, _ := domain.FromSlice([]int32{10, 20, 30}, 3)
	rec, err := Encode(a)
	require.NoError(t, err)
	assert.Equal(t, Record{Min: "10", Max: "30"}, rec)
}

func TestEncode_RejectsNonVector(t *testing.T) {
	a, _ := domain.FromSlice([]float64{1, 2, 3, 4}, 2, 2)
	_, err := Encode(a)
	assert.Error(t, err)

	empty, _ := domain.NewArray(domain.Float64, 0)
	_, err = Encode(empty)
	assert.Error(t, err)
}

func TestEvenlySpaced_RoundingTolerance(t *testing.T) {
	assert.True(t, EvenlySpaced([]float64{1}))
	assert.True(t, EvenlySpaced([]float64{1, 1 + 1e-3, 1 + 2e-3 + 1e-12}))
	assert.False(t, EvenlySpaced([]float64{0, 1, 2.1}))
	assert.False(t, EvenlySpaced([]float64{0, 1, 2, 3 + 1e-6}))
	assert.True(t, EvenlySpaced([]float64{math.Pi, 2 * math.Pi, 3 * math.Pi}))
}
