package main

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/kass/go-geo-coordinate/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDistanceJSON(t *testing.T) {
	out, err := execute(t, "distance", "cart:0,0,0", "cart:2,2,2", "-o", "json")
	require.NoError(t, err)

	var got struct {
		Distance float64 `json:"distance"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 3.46410, got.Distance, 1e-5)
}

func TestDistanceAcrossRepresentations(t *testing.T) {
	out, err := execute(t, "distance", "cart:0,0,0", "sph:2,2,2", "--output", "json")
	require.NoError(t, err)

	var got struct {
		Distance float64 `json:"distance"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 2.0, got.Distance, 1e-9)
}

func TestDistanceTable(t *testing.T) {
	out, err := execute(t, "distance", "cart:0,0,0", "cart:2,2,2")
	require.NoError(t, err)
	assert.Contains(t, out, "3.464102")
}

func TestEqual(t *testing.T) {
	out, err := execute(t, "equal", "cart:1,2,3", "xyz:1,2,3", "-o", "json")
	require.NoError(t, err)

	var got struct {
		Equal bool `json:"equal"`
		Same  bool `json:"same_instance"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Equal)
	assert.True(t, got.Same)
}

func TestConvertRoundTrip(t *testing.T) {
	out, err := execute(t, "convert", "sph:0,0,3", "-o", "json")
	require.NoError(t, err)

	var got struct {
		To struct {
			Kind   string `json:"kind"`
			Vector struct {
				X float64 `json:"x"`
			} `json:"vector"`
		} `json:"to"`
		Equal bool `json:"equal"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, geo.CartesianPool, got.To.Kind)
	assert.InDelta(t, 3.0, got.To.Vector.X, 1e-12)
	assert.True(t, got.Equal)
}

func TestProjectUsesDefaultRadius(t *testing.T) {
	out, err := execute(t, "project", "0,90", "--radius", "2", "-o", "json")
	require.NoError(t, err)

	var got coordinateView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, geo.SphericPool, got.Kind)
	assert.InDelta(t, 2.0, got.Vector.Y, 1e-12)
	require.NotNil(t, got.Location.Radius)
	assert.Equal(t, 2.0, *got.Location.Radius)
}

func TestInvalidCoordinate(t *testing.T) {
	_, err := execute(t, "project", "sph:91,0,1")
	assert.ErrorIs(t, err, geo.ErrInvalidArgument)

	_, err = execute(t, "distance", "cart:1,2", "cart:0,0,0")
	assert.ErrorIs(t, err, geo.ErrInvalidArgument)
}

func TestInvalidOutput(t *testing.T) {
	_, err := execute(t, "project", "0,0", "-o", "xml")
	assert.Error(t, err)
}

func TestNearest(t *testing.T) {
	out, err := execute(t, "nearest", "--points", "500", "--k", "3", "--from", "10,20", "--radius", "1", "-o", "json", "-w", "2")
	require.NoError(t, err)

	var rows []struct {
		ID       string  `json:"id"`
		Distance float64 `json:"distance"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		assert.LessOrEqual(t, rows[i-1].Distance, rows[i].Distance)
	}
	assert.LessOrEqual(t, rows[0].Distance, 2.0)
}

func TestStress(t *testing.T) {
	out, err := execute(t, "stress", "--values", "200", "--rounds", "2", "-w", "4", "--seed", "7", "-o", "json")
	require.NoError(t, err)

	var got stressResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 200, got.DistinctSpherics)
	assert.Equal(t, 200, got.DistinctCartesian)
	assert.Equal(t, 200*2*4, got.Lookups)
	assert.GreaterOrEqual(t, got.SphericAfter, got.SphericBefore)
}

func TestStressMetrics(t *testing.T) {
	out, err := execute(t, "stress", "--values", "50", "--rounds", "1", "-w", "2", "--seed", "11", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, "Pool stress")
	assert.Contains(t, out, "geo_pool_lookups_total")
	assert.Contains(t, out, "pool=spheric result=hit")
}

func TestStressRejectsZeroValues(t *testing.T) {
	_, err := execute(t, "stress", "--values", "0")
	assert.ErrorIs(t, err, geo.ErrInvalidArgument)
}
