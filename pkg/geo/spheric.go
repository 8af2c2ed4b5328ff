package geo

import (
	"fmt"
	"math"
)

var spherics = newPool[Spheric](SphericPool)

// Spheric is a point stored as latitude and longitude in degrees and a radius
// in the same unit as the projection. Its (x, y, z) projection is derived on
// demand.
//
// The pool is keyed by the projection, not by the stored triple: two triples
// projecting to the same point (for instance any triple with radius 0) share
// the instance created first.
type Spheric struct {
	latitude  float64
	longitude float64
	radius    float64
}

// SphericAt returns the shared instance for the given latitude, longitude and
// radius.
func SphericAt(latitude, longitude, radius float64) (*Spheric, error) {
	if err := validateSpheric(latitude, longitude, radius); err != nil {
		return nil, err
	}
	x, y, z := project(latitude, longitude, radius)
	s := spherics.lookup(keyOf(x, y, z), func() *Spheric {
		return &Spheric{latitude: latitude, longitude: longitude, radius: radius}
	})
	s.assertInvariants()
	return s, nil
}

// SphericOnEarth is SphericAt with radius EarthRadius.
func SphericOnEarth(latitude, longitude float64) (*Spheric, error) {
	return SphericAt(latitude, longitude, EarthRadius)
}

// SphericPoolSize returns the number of distinct Spheric values created so far.
func SphericPoolSize() int64 {
	return spherics.len()
}

func (s *Spheric) Latitude() float64 {
	s.assertInvariants()
	return s.latitude
}

func (s *Spheric) Longitude() float64 {
	s.assertInvariants()
	return s.longitude
}

func (s *Spheric) Radius() float64 {
	s.assertInvariants()
	return s.radius
}

// WithLatitude returns the value with latitude replaced. The receiver is
// unchanged.
func (s *Spheric) WithLatitude(latitude float64) (*Spheric, error) {
	s.assertInvariants()
	return SphericAt(latitude, s.longitude, s.radius)
}

// WithLongitude returns the value with longitude replaced. The receiver is
// unchanged.
func (s *Spheric) WithLongitude(longitude float64) (*Spheric, error) {
	s.assertInvariants()
	return SphericAt(s.latitude, longitude, s.radius)
}

// WithRadius returns the value with radius replaced. The receiver is
// unchanged.
func (s *Spheric) WithRadius(radius float64) (*Spheric, error) {
	s.assertInvariants()
	return SphericAt(s.latitude, s.longitude, radius)
}

func (s *Spheric) X() float64 {
	s.assertInvariants()
	x, _, _ := project(s.latitude, s.longitude, s.radius)
	return x
}

func (s *Spheric) Y() float64 {
	s.assertInvariants()
	_, y, _ := project(s.latitude, s.longitude, s.radius)
	return y
}

func (s *Spheric) Z() float64 {
	s.assertInvariants()
	_, _, z := project(s.latitude, s.longitude, s.radius)
	return z
}

func (s *Spheric) Distance(other Coordinate) (float64, error) {
	if s == nil {
		return 0, ErrNilCoordinate
	}
	return Distance(s, other)
}

func (s *Spheric) Equal(other Coordinate) bool {
	if s == nil {
		return false
	}
	return Equal(s, other)
}

// Cartesian returns the shared Cartesian value with the same projection.
func (s *Spheric) Cartesian() *Cartesian {
	s.assertInvariants()
	return cartesianAt(project(s.latitude, s.longitude, s.radius))
}

func (s *Spheric) String() string {
	return fmt.Sprintf("spheric(lat=%g, lon=%g, r=%g)", s.latitude, s.longitude, s.radius)
}

func (s *Spheric) assertInvariants() {
	assertf(s != nil, "nil spheric coordinate")
	if err := validateSpheric(s.latitude, s.longitude, s.radius); err != nil {
		panic(&InvariantError{Msg: err.Error()})
	}
}

func project(latitude, longitude, radius float64) (x, y, z float64) {
	lat := latitude * math.Pi / 180
	lon := longitude * math.Pi / 180
	x = radius * math.Cos(lat) * math.Cos(lon)
	y = radius * math.Cos(lat) * math.Sin(lon)
	z = radius * math.Sin(lat)
	return x, y, z
}

func validateSpheric(latitude, longitude, radius float64) error {
	if math.IsNaN(latitude) || latitude < -90 || latitude > 90 {
		return &FieldError{Field: "latitude", Value: latitude, Reason: "must be between -90 and 90"}
	}
	if math.IsNaN(longitude) || longitude < -180 || longitude > 180 {
		return &FieldError{Field: "longitude", Value: longitude, Reason: "must be between -180 and 180"}
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius < 0 {
		return &FieldError{Field: "radius", Value: radius, Reason: "must be a finite number >= 0"}
	}
	return nil
}
