package modelfile

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/ncmodel/internal/adapter/store/coords"
	"go.ngs.io/ncmodel/internal/adapter/store/ncml"
	"go.ngs.io/ncmodel/internal/adapter/store/npy"
	"go.ngs.io/ncmodel/internal/config"
	"go.ngs.io/ncmodel/internal/coord"
	"go.ngs.io/ncmodel/internal/domain"
	"go.ngs.io/ncmodel/internal/dtype"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	log, _ := test.NewNullLogger()
	return NewStore(coord.NewClassifier(coord.DefaultAliases()), dtype.MustRegistry(), log)
}

func gridModel(t *testing.T) *domain.Model {
	t.Helper()
	s := config.Default()
	raw, err := domain.FromFloat64s(domain.Float32, []float64{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	}, 2, 3, 1, 2, 1)
	require.NoError(t, err)

	m := ncml.Template(s)
	require.NoError(t, ncml.FillFromArray(m, raw, s.Axis))
	for k := 0; k < 2; k++ {
		v := m.Variables[4+k]
		v.Data, err = raw.Index(k)
		require.NoError(t, err)
	}
	coordData := map[string]*domain.Array{
		"time":   mustArray(t, []float64{0, 1, 2}, 3),
		"height": mustArray(t, []float32{10}, 1),
		"lat":    mustArray(t, []float32{45.5, 45}, 2),
		"lon":    mustArray(t, []float32{7}, 1),
	}
	for name, a := range coordData {
		v, ok := m.Variable(name)
		require.True(t, ok)
		v.Data = a
	}
	return m
}

func TestStore_RoundTrip(t *testing.T) {
	st := newStore(t)
	base := filepath.Join(t.TempDir(), "grid")
	m := gridModel(t)

	require.NoError(t, st.Write(base, m))
	got, err := st.Read(base)
	require.NoError(t, err)

	require.Len(t, got.Variables, len(m.Variables))
	for i, v := range m.Variables {
		g := got.Variables[i]
		assert.Equal(t, v.Name, g.Name)
		assert.Equal(t, v.Shape, g.Shape)
		assert.Equal(t, v.Type, g.Type)
		assert.Equal(t, v.Attributes, g.Attributes)
		assert.True(t, v.Data.Equal(g.Data), "%s: %s vs %s", v.Name, v.Data, g.Data)
	}
	assert.Equal(t, m.Dimensions, got.Dimensions)

	recs, err := coords.Read(base + domain.CoordsSuffix)
	require.NoError(t, err)
	assert.Equal(t, coord.Record{Min: "0", Max: "2"}, recs[coord.Time])
	assert.Equal(t, coord.Record{Values: "45.5, 45", Separator: coord.ListSeparator}, recs[coord.Latitude])

	lat, ok := got.Variable("lat")
	require.True(t, ok)
	assert.Equal(t, []float32{45.5, 45}, lat.Data.Data())
	assert.Equal(t, coord.Record{Values: "7", Separator: coord.ListSeparator}, recs[coord.Longitude])
}

func TestStore_ReadStationTable(t *testing.T) {
	s := config.Default()
	base := filepath.Join(t.TempDir(), domain.StationBase("buoy"))

	vals := make([]float64, 400)
	for i := range vals {
		vals[i] = float64(i)
	}
	raw, err := domain.FromFloat64s(domain.Float32, vals, 100, 4)
	require.NoError(t, err)
	require.NoError(t, npy.WriteFile(base+domain.DataSuffix, raw))

	m := ncml.Template(s)
	require.NoError(t, ncml.FillFromArray(m, raw, s.Axis))
	require.NoError(t, ncml.ApplyStation(m, s.Axis))
	require.NoError(t, ncml.Write(base+domain.NcmlSuffix, m))
	require.NoError(t, coords.Write(base+domain.CoordsSuffix, coords.Records{
		coord.Time:      {Min: "0", Max: "99"},
		coord.Height:    {Values: "3636"},
		coord.Latitude:  {Values: "29.644694"},
		coord.Longitude: {Values: "91.031778"},
		coord.ID:        {Values: "1"},
	}))

	got, err := newStore(t).Read(base)
	require.NoError(t, err)

	v, ok := got.Variable("variable #1")
	require.True(t, ok)
	assert.Equal(t, []int{100, 1, 1, 1}, v.Data.Shape())
	assert.Equal(t, 5.0, v.Data.Float64s()[1])

	tm, _ := got.Variable("time")
	assert.Equal(t, domain.Float64, tm.Data.DType())
	assert.Equal(t, 100, tm.Data.Len())
	assert.Equal(t, 99.0, tm.Data.Float64s()[99])

	id, _ := got.Variable(domain.StationIDName)
	assert.Equal(t, []int32{1}, id.Data.Data())
}

func TestStore_ReadMissingFiles(t *testing.T) {
	base := filepath.Join(t.TempDir(), "absent")
	_, err := newStore(t).Read(base)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStore_ReadVariableCountMismatch(t *testing.T) {
	st := newStore(t)
	base := filepath.Join(t.TempDir(), "grid")
	m := gridModel(t)
	require.NoError(t, st.Write(base, m))

	m.Variables = m.Variables[:5]
	require.NoError(t, ncml.Write(base+domain.NcmlSuffix, m))
	_, err := st.Read(base)
	assert.True(t, errors.Is(err, domain.ErrVariableCountMismatch))
}

func TestStore_WriteRejectsMixedData(t *testing.T) {
	st := newStore(t)
	dir := t.TempDir()

	m := gridModel(t)
	m.Variables[5].Data = mustArray(t, []float64{1, 2, 3, 4, 5, 6}, 3, 1, 2, 1)
	assert.Error(t, st.Write(filepath.Join(dir, "mixed"), m))

	m = gridModel(t)
	m.Variables[5].Data = mustArray(t, []float32{1, 2, 3}, 3)
	assert.True(t, errors.Is(st.Write(filepath.Join(dir, "rank"), m), domain.ErrUnsupportedRank))

	m = gridModel(t)
	m.Variables = m.Variables[:4]
	assert.Error(t, st.Write(filepath.Join(dir, "empty"), m))
}

func mustArray(t *testing.T, data any, shape ...int) *domain.Array {
	t.Helper()
	a, err := domain.FromSlice(data, shape...)
	require.NoError(t, err)
	return a
}
