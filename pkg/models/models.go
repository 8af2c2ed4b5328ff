package models

import (
	"errors"
	"fmt"

	"github.com/kass/go-geo-coordinate/pkg/geo"
)

// ErrNoPosition is returned for a point carrying neither a location nor a vector.
var ErrNoPosition = errors.New("point has no position")

// Location represents a spherical position. A nil Radius means geo.EarthRadius.
type Location struct {
	Lat    float64  `json:"lat"`
	Lon    float64  `json:"lon"`
	Radius *float64 `json:"radius,omitempty"`
}

// Vector represents a Cartesian position
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Point represents a named position given either as a Location or a Vector.
// Location wins when both are set.
type Point struct {
	ID       string    `json:"id"`
	Location *Location `json:"location,omitempty"`
	Vector   *Vector   `json:"vector,omitempty"`
}

// Box is an axis-aligned box in projected (x, y, z) space
type Box struct {
	Min Vector `json:"min"`
	Max Vector `json:"max"`
}

// Coordinate resolves the location to its shared spherical value.
func (l Location) Coordinate() (*geo.Spheric, error) {
	radius := geo.EarthRadius
	if l.Radius != nil {
		radius = *l.Radius
	}
	return geo.SphericAt(l.Lat, l.Lon, radius)
}

// Coordinate resolves the vector to its shared Cartesian value.
func (v Vector) Coordinate() (*geo.Cartesian, error) {
	return geo.CartesianAt(v.X, v.Y, v.Z)
}

// Coordinate resolves the point's position.
func (p *Point) Coordinate() (geo.Coordinate, error) {
	switch {
	case p == nil:
		return nil, ErrNoPosition
	case p.Location != nil:
		s, err := p.Location.Coordinate()
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", p.ID, err)
		}
		return s, nil
	case p.Vector != nil:
		c, err := p.Vector.Coordinate()
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", p.ID, err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("point %q: %w", p.ID, ErrNoPosition)
}

// VectorOf returns the projection of c.
func VectorOf(c geo.Coordinate) Vector {
	return Vector{X: c.X(), Y: c.Y(), Z: c.Z()}
}

// LocationOf returns the spherical form of c.
func LocationOf(c geo.Coordinate) (Location, error) {
	var s *geo.Spheric
	switch v := c.(type) {
	case *geo.Spheric:
		s = v
	default:
		cart, err := geo.CartesianAt(c.X(), c.Y(), c.Z())
		if err != nil {
			return Location{}, err
		}
		if s, err = cart.Spheric(); err != nil {
			return Location{}, err
		}
	}
	r := s.Radius()
	return Location{Lat: s.Latitude(), Lon: s.Longitude(), Radius: &r}, nil
}

// Contains reports whether v lies inside the box, bounds included.
func (b Box) Contains(v Vector) bool {
	return v.X >= b.Min.X && v.X <= b.Max.X &&
		v.Y >= b.Min.Y && v.Y <= b.Max.Y &&
		v.Z >= b.Min.Z && v.Z <= b.Max.Z
}
