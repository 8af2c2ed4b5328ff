package geo

import (
	"fmt"
	"math"
)

var cartesians = newPool[Cartesian](CartesianPool)

// Cartesian is a point stored directly as (x, y, z). Obtain values with
// CartesianAt; equal values share one pointer.
type Cartesian struct {
	x, y, z float64
}

// CartesianAt returns the shared instance for (x, y, z), creating it on first
// request. All components must be finite.
func CartesianAt(x, y, z float64) (*Cartesian, error) {
	if err := checkFinite("x", x); err != nil {
		return nil, err
	}
	if err := checkFinite("y", y); err != nil {
		return nil, err
	}
	if err := checkFinite("z", z); err != nil {
		return nil, err
	}
	return cartesianAt(x, y, z), nil
}

func cartesianAt(x, y, z float64) *Cartesian {
	c := cartesians.lookup(keyOf(x, y, z), func() *Cartesian {
		return &Cartesian{x: x, y: y, z: z}
	})
	c.assertInvariants()
	return c
}

// CartesianPoolSize returns the number of distinct Cartesian values created so far.
func CartesianPoolSize() int64 {
	return cartesians.len()
}

func (c *Cartesian) X() float64 {
	c.assertInvariants()
	return c.x
}

func (c *Cartesian) Y() float64 {
	c.assertInvariants()
	return c.y
}

func (c *Cartesian) Z() float64 {
	c.assertInvariants()
	return c.z
}

// WithX returns the value with x replaced. The receiver is unchanged.
func (c *Cartesian) WithX(x float64) (*Cartesian, error) {
	c.assertInvariants()
	return CartesianAt(x, c.y, c.z)
}

// WithY returns the value with y replaced. The receiver is unchanged.
func (c *Cartesian) WithY(y float64) (*Cartesian, error) {
	c.assertInvariants()
	return CartesianAt(c.x, y, c.z)
}

// WithZ returns the value with z replaced. The receiver is unchanged.
func (c *Cartesian) WithZ(z float64) (*Cartesian, error) {
	c.assertInvariants()
	return CartesianAt(c.x, c.y, z)
}

func (c *Cartesian) Distance(other Coordinate) (float64, error) {
	if c == nil {
		return 0, ErrNilCoordinate
	}
	return Distance(c, other)
}

func (c *Cartesian) Equal(other Coordinate) bool {
	if c == nil {
		return false
	}
	return Equal(c, other)
}

// Spheric converts c to latitude, longitude and radius. The origin maps to
// (0, 0, 0).
func (c *Cartesian) Spheric() (*Spheric, error) {
	c.assertInvariants()
	r := math.Hypot(math.Hypot(c.x, c.y), c.z)
	if r == 0 {
		return SphericAt(0, 0, 0)
	}
	if math.IsInf(r, 0) {
		return nil, &FieldError{Field: "radius", Value: r, Reason: "must be a finite number"}
	}
	// Degree conversion can overshoot the bounds by an ulp at the poles and
	// the antimeridian.
	lat := clamp(math.Asin(clamp(c.z/r, -1, 1))*180/math.Pi, -90, 90)
	lon := clamp(math.Atan2(c.y, c.x)*180/math.Pi, -180, 180)
	return SphericAt(lat, lon, r)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func (c *Cartesian) String() string {
	return fmt.Sprintf("cartesian(%g, %g, %g)", c.x, c.y, c.z)
}

func (c *Cartesian) assertInvariants() {
	assertf(c != nil, "nil cartesian coordinate")
	assertFinite("x", c.x)
	assertFinite("y", c.y)
	assertFinite("z", c.z)
}
