package models

import (
	"encoding/json"
	"testing"

	"github.com/kass/go-geo-coordinate/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointCoordinate(t *testing.T) {
	r := 2.0
	tests := []struct {
		name  string
		point *Point
		want  geo.Coordinate
	}{
		{
			name:  "location on earth",
			point: &Point{ID: "paris", Location: &Location{Lat: 48.8566, Lon: 2.3522}},
			want:  must(geo.SphericOnEarth(48.8566, 2.3522)),
		},
		{
			name:  "location with radius",
			point: &Point{ID: "unit", Location: &Location{Lat: 2, Lon: 2, Radius: &r}},
			want:  must(geo.SphericAt(2, 2, 2)),
		},
		{
			name:  "vector",
			point: &Point{ID: "v", Vector: &Vector{X: 2, Y: -2, Z: 2}},
			want:  must(geo.CartesianAt(2, -2, 2)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.point.Coordinate()
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestPointCoordinateErrors(t *testing.T) {
	_, err := (&Point{ID: "empty"}).Coordinate()
	assert.ErrorIs(t, err, ErrNoPosition)

	var nilPoint *Point
	_, err = nilPoint.Coordinate()
	assert.ErrorIs(t, err, ErrNoPosition)

	_, err = (&Point{ID: "bad", Location: &Location{Lat: 95, Lon: 0}}).Coordinate()
	assert.ErrorIs(t, err, geo.ErrInvalidArgument)
	assert.Contains(t, err.Error(), `"bad"`)
}

func TestLocationOf(t *testing.T) {
	c := must(geo.CartesianAt(0, 0, 5))
	loc, err := LocationOf(c)
	require.NoError(t, err)
	assert.InDelta(t, 90, loc.Lat, 1e-9)
	require.NotNil(t, loc.Radius)
	assert.InDelta(t, 5, *loc.Radius, 1e-9)

	s := must(geo.SphericAt(10, 20, 30))
	loc, err = LocationOf(s)
	require.NoError(t, err)
	assert.Equal(t, 10.0, loc.Lat)
	assert.Equal(t, 20.0, loc.Lon)
	assert.Equal(t, 30.0, *loc.Radius)
}

func TestVectorOf(t *testing.T) {
	v := VectorOf(must(geo.SphericAt(0, 0, 1)))
	assert.Equal(t, Vector{X: 1, Y: 0, Z: 0}, v)
}

func TestBoxContains(t *testing.T) {
	box := Box{Min: Vector{-1, -1, -1}, Max: Vector{1, 1, 1}}
	assert.True(t, box.Contains(Vector{0, 0, 0}))
	assert.True(t, box.Contains(Vector{1, -1, 1}))
	assert.False(t, box.Contains(Vector{1.01, 0, 0}))
}

func TestPointJSON(t *testing.T) {
	var p Point
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","location":{"lat":1,"lon":2}}`), &p))
	assert.Nil(t, p.Location.Radius)
	assert.Nil(t, p.Vector)

	out, err := json.Marshal(Point{ID: "b", Vector: &Vector{X: 1, Y: 2, Z: 3}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"b","vector":{"x":1,"y":2,"z":3}}`, string(out))
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
