// Package rtree indexes coordinates by their (x, y, z) projection in a 3-D
// R-Tree, so Cartesian and spherical points share one index and are ranked by
// the same straight-line distance geo.Distance computes.
package rtree

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dhconnelly/rtreego"
	"github.com/kass/go-geo-coordinate/pkg/geo"
	"github.com/kass/go-geo-coordinate/pkg/models"
	"github.com/rs/zerolog"
)

const (
	tolerance   = 1e-6
	minChildren = 25
	maxChildren = 50
	dimensions  = 3
)

// indexedPoint wraps a resolved point to implement rtreego.Spatial
type indexedPoint struct {
	point *models.Point
	coord geo.Coordinate
	rect  *rtreego.Rect
}

func (ip *indexedPoint) Bounds() *rtreego.Rect {
	return ip.rect
}

// Match is a query result.
type Match struct {
	Point      *models.Point
	Coordinate geo.Coordinate
	// Distance is measured from the query center (the box center for QueryBox).
	Distance float64
}

// CoordinateIndex is a thread-safe R-Tree over coordinate projections
type CoordinateIndex struct {
	tree      *rtreego.Rtree
	mu        sync.RWMutex
	itemCount atomic.Int64
	workers   int
	logger    zerolog.Logger
}

// Option configures a CoordinateIndex.
type Option func(*CoordinateIndex)

// WithLogger sets the index logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(ix *CoordinateIndex) {
		ix.logger = logger
	}
}

// WithWorkers sets how many goroutines resolve coordinates in IndexPoints.
func WithWorkers(n int) Option {
	return func(ix *CoordinateIndex) {
		if n > 0 {
			ix.workers = n
		}
	}
}

// NewCoordinateIndex creates an empty index
func NewCoordinateIndex(opts ...Option) *CoordinateIndex {
	ix := &CoordinateIndex{
		tree:    rtreego.NewTree(dimensions, minChildren, maxChildren),
		workers: runtime.NumCPU(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// IndexPoints resolves and inserts a batch of points. Points without a
// position are skipped. If any point is invalid nothing is inserted.
func (ix *CoordinateIndex) IndexPoints(points []*models.Point) error {
	if len(points) == 0 {
		return nil
	}

	items := make([]*indexedPoint, len(points))
	errs := make([]error, len(points))

	workers := ix.workers
	batchSize := (len(points) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(points); start += batchSize {
		end := min(start+batchSize, len(points))

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for j := start; j < end; j++ {
				p := points[j]
				if p == nil || (p.Location == nil && p.Vector == nil) {
					continue
				}
				coord, err := p.Coordinate()
				if err != nil {
					errs[j] = err
					continue
				}
				items[j] = &indexedPoint{
					point: p,
					coord: coord,
					rect:  pointOf(coord).ToRect(tolerance),
				}
			}
		}(start, end)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to index points: %w", err)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	count := int64(0)
	for _, item := range items {
		if item != nil {
			ix.tree.Insert(item)
			count++
		}
	}
	total := ix.itemCount.Add(count)

	ix.logger.Debug().
		Int64("inserted", count).
		Int64("skipped", int64(len(points))-count).
		Int64("total", total).
		Msg("indexed points")
	return nil
}

// QueryBox returns all points whose projection lies inside the box, bounds
// included, ordered by distance from the box center.
func (ix *CoordinateIndex) QueryBox(box models.Box) ([]Match, error) {
	lo := []float64{box.Min.X, box.Min.Y, box.Min.Z}
	hi := []float64{box.Max.X, box.Max.Y, box.Max.Z}
	for i := range lo {
		if !isFinite(lo[i]) || !isFinite(hi[i]) || lo[i] > hi[i] {
			return nil, fmt.Errorf("%w: invalid bounding box %+v", geo.ErrInvalidArgument, box)
		}
	}
	center, err := geo.CartesianAt((lo[0]+hi[0])/2, (lo[1]+hi[1])/2, (lo[2]+hi[2])/2)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	bounds, err := rectBetween(lo, hi)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := ix.tree.SearchIntersect(bounds)
	matches := make([]Match, 0, len(results))
	for _, result := range results {
		item, ok := result.(*indexedPoint)
		if !ok || item == nil {
			continue
		}
		if !box.Contains(models.VectorOf(item.coord)) {
			continue
		}
		d, err := geo.Distance(center, item.coord)
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match{Point: item.point, Coordinate: item.coord, Distance: d})
	}
	sortMatches(matches)
	return matches, nil
}

// QueryRadius returns all points within radius (straight-line, in projection
// units) of center, nearest first.
func (ix *CoordinateIndex) QueryRadius(center geo.Coordinate, radius float64) ([]Match, error) {
	if !isFinite(radius) || radius < 0 {
		return nil, &geo.FieldError{Field: "radius", Value: radius, Reason: "must be a finite number >= 0"}
	}
	if center == nil {
		return nil, geo.ErrNilCoordinate
	}
	// Distance rejects typed nil pointers too.
	if _, err := geo.Distance(center, center); err != nil {
		return nil, err
	}

	c := pointOf(center)
	lo := []float64{c[0] - radius, c[1] - radius, c[2] - radius}
	hi := []float64{c[0] + radius, c[1] + radius, c[2] + radius}
	bounds, err := rectBetween(lo, hi)
	if err != nil {
		return nil, fmt.Errorf("invalid radius search: %w", err)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := ix.tree.SearchIntersect(bounds)
	matches := make([]Match, 0, len(results))
	for _, result := range results {
		item, ok := result.(*indexedPoint)
		if !ok || item == nil {
			continue
		}
		d, err := geo.Distance(center, item.coord)
		if err != nil {
			return nil, err
		}
		if d <= radius {
			matches = append(matches, Match{Point: item.point, Coordinate: item.coord, Distance: d})
		}
	}
	sortMatches(matches)
	return matches, nil
}

// NearestNeighbors returns the n points closest to center, nearest first.
func (ix *CoordinateIndex) NearestNeighbors(center geo.Coordinate, n int) ([]Match, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: neighbor count must be positive, got %d", geo.ErrInvalidArgument, n)
	}
	if center == nil {
		return nil, geo.ErrNilCoordinate
	}
	if _, err := geo.Distance(center, center); err != nil {
		return nil, err
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	size := int(ix.itemCount.Load())
	if size == 0 {
		return nil, nil
	}
	// Candidates are ranked by distance to their tolerance boxes, so fetch
	// extra and re-rank by exact distance.
	k := min(n*2, size)
	results := ix.tree.NearestNeighbors(k, pointOf(center))

	matches := make([]Match, 0, len(results))
	for _, result := range results {
		item, ok := result.(*indexedPoint)
		if !ok || item == nil {
			continue
		}
		d, err := geo.Distance(center, item.coord)
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match{Point: item.point, Coordinate: item.coord, Distance: d})
	}
	sortMatches(matches)
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}

// Count returns the number of indexed points
func (ix *CoordinateIndex) Count() int64 {
	return ix.itemCount.Load()
}

// Clear removes all points from the index
func (ix *CoordinateIndex) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.tree = rtreego.NewTree(dimensions, minChildren, maxChildren)
	ix.itemCount.Store(0)
	ix.logger.Debug().Msg("index cleared")
}

func pointOf(c geo.Coordinate) rtreego.Point {
	return rtreego.Point{c.X(), c.Y(), c.Z()}
}

// rectBetween builds the rectangle spanning lo..hi, padding empty extents so
// rtreego accepts them.
func rectBetween(lo, hi []float64) (*rtreego.Rect, error) {
	origin := make(rtreego.Point, len(lo))
	lengths := make([]float64, len(lo))
	for i := range lo {
		origin[i] = lo[i] - tolerance
		lengths[i] = hi[i] - lo[i] + 2*tolerance
	}
	return rtreego.NewRect(origin, lengths)
}

func sortMatches(matches []Match) {
	slices.SortStableFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Point.ID, b.Point.ID)
	})
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
