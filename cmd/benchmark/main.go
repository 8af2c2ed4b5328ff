package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kass/go-geo-coordinate/pkg/geo"
	"github.com/kass/go-geo-coordinate/pkg/models"
	"github.com/kass/go-geo-coordinate/pkg/rtree"
	"github.com/rs/zerolog"
)

type BenchmarkResult struct {
	OpType        string
	TotalOps      int
	TotalDuration time.Duration
	AvgDuration   time.Duration
	OpsPerSec     float64
	MinDuration   time.Duration
	MaxDuration   time.Duration
	Failures      int64
	PoolGrowth    int64
}

// op performs one operation using the worker's private random source.
type op func(r *rand.Rand) error

func main() {
	var (
		opType  = flag.String("t", "hit", "Operation type: hit, create, distance, nearest, mixed")
		numOps  = flag.Int("n", 100000, "Number of operations to run")
		workers = flag.Int("w", runtime.NumCPU(), "Number of concurrent workers")
		values  = flag.Int("values", 10000, "Number of pre-created values for hit, distance and nearest")
		radius  = flag.Float64("radius", geo.EarthRadius, "Sphere radius for generated coordinates")
		k       = flag.Int("k", 10, "Number of nearest neighbors")
		seed    = flag.Int64("seed", 1, "Random seed for pre-created values")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *numOps < 1 || *workers < 1 || *values < 1 {
		logger.Fatal().Msg("-n, -w and -values must be positive")
	}

	logger.Info().Int("values", *values).Msg("preparing coordinates")
	spherics, cartesians, err := prepare(rand.New(rand.NewSource(*seed)), *values, *radius)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare coordinates")
	}

	var index *rtree.CoordinateIndex
	if *opType == "nearest" || *opType == "mixed" {
		index = rtree.NewCoordinateIndex(rtree.WithWorkers(*workers))
		points := make([]*models.Point, len(spherics))
		for i, s := range spherics {
			loc, err := models.LocationOf(s)
			if err != nil {
				logger.Fatal().Err(err).Msg("failed to build index")
			}
			points[i] = &models.Point{ID: fmt.Sprintf("v%d", i), Location: &loc}
		}
		if err := index.IndexPoints(points); err != nil {
			logger.Fatal().Err(err).Msg("failed to build index")
		}
		logger.Info().Int64("points", index.Count()).Msg("index built")
	}

	ops := map[string]op{
		"hit":      hitOp(spherics),
		"create":   createOp(*radius),
		"distance": distanceOp(spherics, cartesians),
		"nearest":  nearestOp(index, spherics, *k),
	}

	logger.Info().Str("type", *opType).Int("ops", *numOps).Int("workers", *workers).Msg("running benchmark")

	var result BenchmarkResult
	switch *opType {
	case "hit", "create", "distance", "nearest":
		result = runBenchmark(*opType, ops[*opType], *numOps, *workers)
	case "mixed":
		result = runMixed(ops, *numOps, *workers)
	default:
		logger.Fatal().Str("type", *opType).Msg("unknown operation type")
	}

	fmt.Println("\n=== Benchmark Results ===")
	fmt.Printf("Operation Type: %s\n", result.OpType)
	fmt.Printf("Total Operations: %d\n", result.TotalOps)
	fmt.Printf("Total Duration: %v\n", result.TotalDuration)
	fmt.Printf("Average Duration: %v\n", result.AvgDuration)
	fmt.Printf("Operations/Second: %.2f\n", result.OpsPerSec)
	fmt.Printf("Min Duration: %v\n", result.MinDuration)
	fmt.Printf("Max Duration: %v\n", result.MaxDuration)
	fmt.Printf("Failures: %d\n", result.Failures)
	fmt.Printf("Pool Growth: %d\n", result.PoolGrowth)
	fmt.Printf("Cartesian Pool: %d\n", geo.CartesianPoolSize())
	fmt.Printf("Spheric Pool: %d\n", geo.SphericPoolSize())
	fmt.Printf("Workers Used: %d\n", *workers)
	fmt.Printf("CPU Cores: %d\n", runtime.NumCPU())
}

func prepare(r *rand.Rand, n int, radius float64) ([]*geo.Spheric, []*geo.Cartesian, error) {
	spherics := make([]*geo.Spheric, n)
	cartesians := make([]*geo.Cartesian, n)
	for i := 0; i < n; i++ {
		s, err := geo.SphericAt(randomLatitude(r), randomLongitude(r), radius)
		if err != nil {
			return nil, nil, err
		}
		spherics[i] = s
		cartesians[i] = s.Cartesian()
	}
	return spherics, cartesians, nil
}

func randomLatitude(r *rand.Rand) float64 {
	return math.Asin(2*r.Float64()-1) * 180 / math.Pi
}

func randomLongitude(r *rand.Rand) float64 {
	return r.Float64()*360 - 180
}

// hitOp looks up values already present in the pool.
func hitOp(spherics []*geo.Spheric) op {
	return func(r *rand.Rand) error {
		want := spherics[r.Intn(len(spherics))]
		got, err := geo.SphericAt(want.Latitude(), want.Longitude(), want.Radius())
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("lookup of %s returned a different instance", want)
		}
		return nil
	}
}

// createOp looks up fresh values, so nearly every call takes the create path.
func createOp(radius float64) op {
	return func(r *rand.Rand) error {
		_, err := geo.SphericAt(randomLatitude(r), randomLongitude(r), radius)
		return err
	}
}

// distanceOp measures across representations.
func distanceOp(spherics []*geo.Spheric, cartesians []*geo.Cartesian) op {
	return func(r *rand.Rand) error {
		a := spherics[r.Intn(len(spherics))]
		b := cartesians[r.Intn(len(cartesians))]
		_, err := geo.Distance(a, b)
		return err
	}
}

func nearestOp(index *rtree.CoordinateIndex, spherics []*geo.Spheric, k int) op {
	return func(r *rand.Rand) error {
		if index == nil {
			return fmt.Errorf("index not built")
		}
		_, err := index.NearestNeighbors(spherics[r.Intn(len(spherics))], k)
		return err
	}
}

func runBenchmark(name string, fn op, numOps, workers int) BenchmarkResult {
	var (
		failures    int64
		minDuration = time.Hour
		maxDuration time.Duration
		totalDur    time.Duration
		mu          sync.Mutex
	)

	poolBefore := geo.CartesianPoolSize() + geo.SphericPoolSize()
	startTime := time.Now()

	opCh := make(chan int, numOps)
	var wg sync.WaitGroup

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			r := rand.New(rand.NewSource(rand.Int63()))

			localMin, localMax, localTotal := time.Hour, time.Duration(0), time.Duration(0)
			for range opCh {
				opStart := time.Now()
				err := fn(r)
				opDuration := time.Since(opStart)

				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				localTotal += opDuration
				localMin = min(localMin, opDuration)
				localMax = max(localMax, opDuration)
			}

			mu.Lock()
			totalDur += localTotal
			minDuration = min(minDuration, localMin)
			maxDuration = max(maxDuration, localMax)
			mu.Unlock()
		}()
	}

	for i := 0; i < numOps; i++ {
		opCh <- i
	}
	close(opCh)

	wg.Wait()
	totalDuration := time.Since(startTime)

	var avgDuration time.Duration
	if succeeded := int64(numOps) - failures; succeeded > 0 {
		avgDuration = totalDur / time.Duration(succeeded)
	}

	return BenchmarkResult{
		OpType:        name,
		TotalOps:      numOps,
		TotalDuration: totalDuration,
		AvgDuration:   avgDuration,
		OpsPerSec:     float64(numOps) / totalDuration.Seconds(),
		MinDuration:   minDuration,
		MaxDuration:   maxDuration,
		Failures:      failures,
		PoolGrowth:    geo.CartesianPoolSize() + geo.SphericPoolSize() - poolBefore,
	}
}

// runMixed splits the operations evenly over every operation type.
func runMixed(ops map[string]op, numOps, workers int) BenchmarkResult {
	names := []string{"hit", "create", "distance", "nearest"}
	perType := numOps / len(names)

	combined := BenchmarkResult{OpType: "mixed", MinDuration: time.Hour}
	var weighted time.Duration
	for _, name := range names {
		res := runBenchmark(name, ops[name], perType, workers)
		combined.TotalOps += res.TotalOps
		combined.TotalDuration += res.TotalDuration
		combined.Failures += res.Failures
		combined.PoolGrowth += res.PoolGrowth
		combined.MinDuration = min(combined.MinDuration, res.MinDuration)
		combined.MaxDuration = max(combined.MaxDuration, res.MaxDuration)
		weighted += res.AvgDuration * time.Duration(res.TotalOps)
	}
	if combined.TotalOps > 0 {
		combined.AvgDuration = weighted / time.Duration(combined.TotalOps)
		combined.OpsPerSec = float64(combined.TotalOps) / combined.TotalDuration.Seconds()
	}
	return combined
}
