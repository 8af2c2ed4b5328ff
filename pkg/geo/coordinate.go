// Package geo models points on or around a sphere as immutable, shared value
// objects. Cartesian and Spheric coordinates are interchangeable: distance and
// equality are computed on their common (x, y, z) projection, so a spherical
// point can be compared with a Cartesian one directly.
//
// Values are obtained only through the lookup functions (CartesianAt,
// SphericAt, SphericOnEarth). Each concrete type keeps a process-wide pool, so
// equal values always resolve to the same pointer and may be compared with ==.
package geo

import (
	"math"
	"reflect"
)

// EarthRadius is the mean Earth radius in kilometers.
const EarthRadius = 6371.0

// Coordinate is implemented by every coordinate representation.
type Coordinate interface {
	X() float64
	Y() float64
	Z() float64

	// Distance returns the Euclidean distance between the projections of
	// both coordinates.
	Distance(other Coordinate) (float64, error)

	// Equal reports whether both coordinates project to the same point.
	Equal(other Coordinate) bool
}

// invariantChecker is implemented by representations carrying their own domain
// invariant. Distance asserts it on both operands before and after computing.
type invariantChecker interface {
	assertInvariants()
}

// Distance computes the straight-line distance between the projections of a
// and b. It is symmetric and independent of the concrete representations.
func Distance(a, b Coordinate) (float64, error) {
	if isNil(a) || isNil(b) {
		return 0, ErrNilCoordinate
	}
	checkInvariants(a, b)

	dx := b.X() - a.X()
	dy := b.Y() - a.Y()
	dz := b.Z() - a.Z()
	// Hypot keeps large but finite components from overflowing when squared.
	d := math.Hypot(math.Hypot(dx, dy), dz)

	assertf(!math.IsNaN(d) && !math.IsInf(d, 0), "distance is not finite: %v", d)
	assertf(d >= 0, "distance is negative: %v", d)
	checkInvariants(a, b)
	return d, nil
}

// Equal reports whether a and b have bit-identical projections. It never
// panics: nil operands compare unequal.
func Equal(a, b Coordinate) bool {
	if isNil(a) || isNil(b) {
		return false
	}
	return projectionKey(a) == projectionKey(b)
}

func checkInvariants(cs ...Coordinate) {
	for _, c := range cs {
		if ic, ok := c.(invariantChecker); ok {
			ic.assertInvariants()
		}
	}
}

// isNil also catches typed nil pointers stored in the interface.
func isNil(c Coordinate) bool {
	switch v := c.(type) {
	case nil:
		return true
	case *Cartesian:
		return v == nil
	case *Spheric:
		return v == nil
	}
	rv := reflect.ValueOf(c)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func assertFinite(name string, v float64) {
	assertf(!math.IsNaN(v) && !math.IsInf(v, 0), "%s is not finite: %v", name, v)
}

func checkFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &FieldError{Field: field, Value: v, Reason: "must be a finite number"}
	}
	return nil
}
