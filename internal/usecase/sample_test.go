package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/ncmodel/internal/adapter/interp"
	"go.ngs.io/ncmodel/internal/coord"
)

func TestSampler_Sample(t *testing.T) {
	s := NewSampler(coord.NewClassifier(coord.DefaultAliases()))
	m := gridModel(t)

	v, err := s.Sample(m, SampleRequest{Variable: "class", Latitude: 10, Longitude: 20.5})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, v, 1e-9)

	v, err = s.Sample(m, SampleRequest{Variable: "class", Time: 1, Latitude: 10, Longitude: 20.5})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, v, 1e-9)

	v, err = s.Sample(m, SampleRequest{Variable: "class", Time: 1, Latitude: 10, Longitude: 21})
	require.NoError(t, err)
	assert.InDelta(t, 2, v, 1e-9)

	_, err = s.Sample(m, SampleRequest{Variable: "class", Time: 1, Latitude: 10, Longitude: 21.5})
	assert.ErrorIs(t, err, interp.ErrNoData)
}

func TestSampler_SampleErrors(t *testing.T) {
	s := NewSampler(coord.NewClassifier(coord.DefaultAliases()))
	m := gridModel(t)

	for name, req := range map[string]SampleRequest{
		"missing variable":    {Variable: "nope", Latitude: 10, Longitude: 20},
		"coordinate variable": {Variable: "lon", Latitude: 10, Longitude: 20},
		"time index":          {Variable: "class", Time: 2, Latitude: 10, Longitude: 20},
		"height index":        {Variable: "class", Height: -1, Latitude: 10, Longitude: 20},
		"off the row":         {Variable: "class", Latitude: 11, Longitude: 20},
		"outside longitudes":  {Variable: "class", Latitude: 10, Longitude: 25},
	} {
		_, err := s.Sample(m, req)
		assert.Error(t, err, name)
	}
}
