package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kass/go-geo-coordinate/pkg/geo"
)

// ParseCoordinate parses a coordinate literal:
//
//	cart:x,y,z
//	sph:lat,lon[,radius]
//	lat,lon[,radius]
//
// A missing spherical radius defaults to defaultRadius.
func ParseCoordinate(s string, defaultRadius float64) (geo.Coordinate, error) {
	kind, body, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		kind, body = "sph", kind
	}

	values, err := parseFloats(body)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}

	switch strings.ToLower(kind) {
	case "cart", "cartesian", "xyz":
		if len(values) != 3 {
			return nil, fmt.Errorf("parse %q: %w: cartesian needs x,y,z", s, geo.ErrInvalidArgument)
		}
		c, err := geo.CartesianAt(values[0], values[1], values[2])
		if err != nil {
			return nil, err
		}
		return c, nil
	case "sph", "spheric", "ll":
		radius := defaultRadius
		switch len(values) {
		case 2:
		case 3:
			radius = values[2]
		default:
			return nil, fmt.Errorf("parse %q: %w: spheric needs lat,lon[,radius]", s, geo.ErrInvalidArgument)
		}
		sp, err := geo.SphericAt(values[0], values[1], radius)
		if err != nil {
			return nil, err
		}
		return sp, nil
	}
	return nil, fmt.Errorf("parse %q: %w: unknown kind %q", s, geo.ErrInvalidArgument, kind)
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", geo.ErrInvalidArgument, err)
		}
		values = append(values, v)
	}
	return values, nil
}
