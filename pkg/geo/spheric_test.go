package geo

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSphericValidation(t *testing.T) {
	tests := []struct {
		name          string
		lat, lon, rad float64
		field         string
	}{
		{"latitude above range", 91, 0, 1, "latitude"},
		{"latitude below range", -90.5, 0, 1, "latitude"},
		{"longitude above range", 0, 181, 1, "longitude"},
		{"longitude below range", 0, -180.01, 1, "longitude"},
		{"negative radius", 0, 0, -1, "radius"},
		{"nan latitude", math.NaN(), 0, 1, "latitude"},
		{"nan longitude", 0, math.NaN(), 1, "longitude"},
		{"nan radius", 0, 0, math.NaN(), "radius"},
		{"infinite radius", 0, 0, math.Inf(1), "radius"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := SphericAt(tt.lat, tt.lon, tt.rad)
			assert.Nil(t, s)
			require.ErrorIs(t, err, ErrInvalidArgument)

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestSphericBoundsInclusive(t *testing.T) {
	for _, tc := range [][3]float64{
		{90, 180, 0},
		{-90, -180, 1},
		{90, -180, EarthRadius},
		{-90, 180, 0.5},
	} {
		_, err := SphericAt(tc[0], tc[1], tc[2])
		assert.NoError(t, err, "%v", tc)
	}
}

func TestSphericProjection(t *testing.T) {
	s := mustSpheric(t, 0, 0, 1)
	assert.Equal(t, 1.0, s.X())
	assert.Equal(t, 0.0, s.Y())
	assert.Equal(t, 0.0, s.Z())

	pole := mustSpheric(t, 90, 0, 2)
	assert.InDelta(t, 0, pole.X(), epsilon)
	assert.InDelta(t, 0, pole.Y(), epsilon)
	assert.InDelta(t, 2, pole.Z(), epsilon)

	east := mustSpheric(t, 0, 90, 3)
	assert.InDelta(t, 0, east.X(), epsilon)
	assert.InDelta(t, 3, east.Y(), epsilon)
	assert.InDelta(t, 0, east.Z(), epsilon)
}

func TestSphericOnEarth(t *testing.T) {
	s, err := SphericOnEarth(0, 0)
	require.NoError(t, err)
	assert.Equal(t, EarthRadius, s.Radius())
	assert.Equal(t, 6371.0, s.X())
	assert.Same(t, s, mustSpheric(t, 0, 0, EarthRadius))

	_, err = SphericOnEarth(100, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSphericSharedByProjection(t *testing.T) {
	a := mustSpheric(t, 12.5, 45.25, 100)
	b := mustSpheric(t, 12.5, 45.25, 100)
	c := mustSpheric(t, 12.5, 45.25, 101)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.False(t, a.Equal(c))

	// Every triple with radius 0 projects onto the origin.
	o1 := mustSpheric(t, 0, 0, 0)
	o2 := mustSpheric(t, 0, 45, 0)
	o3 := mustSpheric(t, 30, 60, 0)
	assert.Same(t, o1, o2)
	assert.Same(t, o1, o3)
}

func TestSphericImmutable(t *testing.T) {
	s := mustSpheric(t, 10, 20, 30)

	lat, err := s.WithLatitude(-45)
	require.NoError(t, err)
	lon, err := s.WithLongitude(170)
	require.NoError(t, err)
	rad, err := s.WithRadius(EarthRadius)
	require.NoError(t, err)

	assert.Equal(t, [3]float64{10, 20, 30}, [3]float64{s.Latitude(), s.Longitude(), s.Radius()})
	assert.Equal(t, [3]float64{-45, 20, 30}, [3]float64{lat.Latitude(), lat.Longitude(), lat.Radius()})
	assert.Equal(t, [3]float64{10, 170, 30}, [3]float64{lon.Latitude(), lon.Longitude(), lon.Radius()})
	assert.Equal(t, [3]float64{10, 20, EarthRadius}, [3]float64{rad.Latitude(), rad.Longitude(), rad.Radius()})

	back, err := lat.WithLatitude(10)
	require.NoError(t, err)
	assert.Same(t, s, back)
}

func TestSphericMutatorsValidate(t *testing.T) {
	s := mustSpheric(t, 10, 20, 30)

	_, err := s.WithLatitude(90.1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = s.WithLongitude(-181)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = s.WithRadius(-0.1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = s.WithRadius(math.NaN())
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Equal(t, 10.0, s.Latitude())
}

func TestSphericToCartesian(t *testing.T) {
	s := mustSpheric(t, 0, 0, 1)
	c := s.Cartesian()
	assert.Same(t, mustCartesian(t, 1, 0, 0), c)
	assert.True(t, s.Equal(c))

	paris, err := SphericOnEarth(48.8566, 2.3522)
	require.NoError(t, err)
	pc := paris.Cartesian()
	assert.Equal(t, 0.0, distance(t, paris, pc))

	round, err := pc.Spheric()
	require.NoError(t, err)
	assert.InDelta(t, paris.Latitude(), round.Latitude(), 1e-9)
	assert.InDelta(t, paris.Longitude(), round.Longitude(), 1e-9)
	assert.InDelta(t, paris.Radius(), round.Radius(), 1e-9)
}

func TestSphericConcurrentCreation(t *testing.T) {
	const workers = 32
	before := SphericPoolSize()

	got := make([]*Spheric, workers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			<-start
			s, err := SphericAt(-33.8688, 151.2093, 6378.137)
			if err != nil {
				t.Errorf("SphericAt: %v", err)
				return
			}
			got[w] = s
		}(w)
	}
	close(start)
	wg.Wait()

	for w := 1; w < workers; w++ {
		require.Same(t, got[0], got[w])
	}
	assert.Equal(t, before+1, SphericPoolSize())
}

func TestSphericString(t *testing.T) {
	assert.Equal(t, "spheric(lat=1.5, lon=-2, r=3)", mustSpheric(t, 1.5, -2, 3).String())
}

func BenchmarkSphericAtHit(b *testing.B) {
	if _, err := SphericOnEarth(51.5074, -0.1278); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = SphericOnEarth(51.5074, -0.1278)
		}
	})
}
