package main

import (
	"fmt"
	"log"

	"github.com/kass/go-geo-coordinate/pkg/geo"
	"github.com/kass/go-geo-coordinate/pkg/models"
	"github.com/kass/go-geo-coordinate/pkg/rtree"
)

func main() {
	// Create a new coordinate index
	index := rtree.NewCoordinateIndex()

	// Sample points for major US cities, on the Earth sphere
	cities := []*models.Point{
		{ID: "NYC", Location: &models.Location{Lat: 40.7128, Lon: -74.0060}},
		{ID: "LAX", Location: &models.Location{Lat: 34.0522, Lon: -118.2437}},
		{ID: "CHI", Location: &models.Location{Lat: 41.8781, Lon: -87.6298}},
		{ID: "HOU", Location: &models.Location{Lat: 29.7604, Lon: -95.3698}},
		{ID: "PHX", Location: &models.Location{Lat: 33.4484, Lon: -112.0740}},
		{ID: "PHL", Location: &models.Location{Lat: 39.9526, Lon: -75.1652}},
		{ID: "SAT", Location: &models.Location{Lat: 29.4241, Lon: -98.4936}},
		{ID: "SDG", Location: &models.Location{Lat: 32.7157, Lon: -117.1611}},
		{ID: "DAL", Location: &models.Location{Lat: 32.7767, Lon: -96.7970}},
		{ID: "SJC", Location: &models.Location{Lat: 37.3382, Lon: -121.8863}},
		{ID: "AUS", Location: &models.Location{Lat: 30.2672, Lon: -97.7431}},
		{ID: "JAX", Location: &models.Location{Lat: 30.3322, Lon: -81.6557}},
		{ID: "SFO", Location: &models.Location{Lat: 37.7749, Lon: -122.4194}},
		{ID: "CLB", Location: &models.Location{Lat: 39.9612, Lon: -82.9988}},
		{ID: "CLT", Location: &models.Location{Lat: 35.2271, Lon: -80.8431}},
	}

	if err := index.IndexPoints(cities); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Indexed %d cities (spheric pool holds %d values)\n\n", index.Count(), geo.SphericPoolSize())

	// Example 1: equal values share one instance
	fmt.Println("=== Shared Instances ===")
	a, err := geo.SphericOnEarth(32.7767, -96.7970)
	if err != nil {
		log.Fatal(err)
	}
	b, err := cities[8].Location.Coordinate()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Dallas looked up twice: same instance = %t\n", a == b)

	// Example 2: convert and compare across representations
	fmt.Println("\n=== Cartesian Form of Dallas ===")
	dallas := a.Cartesian()
	fmt.Printf("%s -> %s\n", a, dallas)
	fmt.Printf("Equal across representations: %t\n", geo.Equal(a, dallas))

	back, err := dallas.Spheric()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Back to spheric: %s\n", back)

	// Example 3: chord distance between two cities
	fmt.Println("\n=== New York to Los Angeles ===")
	nyc, err := cities[0].Coordinate()
	if err != nil {
		log.Fatal(err)
	}
	lax, err := cities[1].Coordinate()
	if err != nil {
		log.Fatal(err)
	}
	d, err := nyc.Distance(lax)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Straight-line distance: %.1f km\n", d)

	// Example 4: cities within 500km (straight-line) of Dallas
	fmt.Println("\n=== Cities within 500km of Dallas ===")
	results, err := index.QueryRadius(dallas, 500)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Found %d cities within 500km of Dallas:\n", len(results))
	for _, m := range results {
		fmt.Printf("  - %s: %.1f km away\n", m.Point.ID, m.Distance)
	}

	// Example 5: 5 nearest cities to Denver
	fmt.Println("\n=== 5 Nearest Cities to Denver ===")
	denver, err := geo.SphericOnEarth(39.7392, -104.9903)
	if err != nil {
		log.Fatal(err)
	}
	nearest, err := index.NearestNeighbors(denver, 5)
	if err != nil {
		log.Fatal(err)
	}
	for i, m := range nearest {
		fmt.Printf("  %d. %s: %.1f km away\n", i+1, m.Point.ID, m.Distance)
	}

	// Example 6: a mutator returns a new value, the original is unchanged
	fmt.Println("\n=== Moving Denver ===")
	moved, err := denver.WithLongitude(-100)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("original: %s\nmoved:    %s\n", denver, moved)

	if _, err := denver.WithLatitude(95); err != nil {
		fmt.Printf("rejected: %v\n", err)
	}
}
