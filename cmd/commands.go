package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/kass/go-geo-coordinate/pkg/geo"
	"github.com/kass/go-geo-coordinate/pkg/models"
	"github.com/kass/go-geo-coordinate/pkg/rtree"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (a *app) parse(s string) (geo.Coordinate, error) {
	return models.ParseCoordinate(s, a.cfg.Radius)
}

func (a *app) parseAll(args []string) ([]geo.Coordinate, error) {
	coords := make([]geo.Coordinate, len(args))
	for i, arg := range args {
		c, err := a.parse(arg)
		if err != nil {
			return nil, err
		}
		coords[i] = c
	}
	return coords, nil
}

func (a *app) distanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distance A B",
		Short: "Straight-line distance between two coordinates",
		Example: `  geocoord distance cart:0,0,0 cart:2,2,2
  geocoord distance 52.52,13.40 48.86,2.35`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			coords, err := a.parseAll(args)
			if err != nil {
				return err
			}
			d, err := geo.Distance(coords[0], coords[1])
			if err != nil {
				return err
			}
			a.logger.Debug().Str("a", fmt.Sprint(coords[0])).Str("b", fmt.Sprint(coords[1])).Float64("distance", d).Msg("distance computed")

			out := struct {
				A        string  `json:"a"`
				B        string  `json:"b"`
				Distance float64 `json:"distance"`
			}{fmt.Sprint(coords[0]), fmt.Sprint(coords[1]), d}
			return a.render(cmd.OutOrStdout(), out, func(t table.Writer) {
				t.AppendHeader(table.Row{"A", "B", "Distance"})
				t.AppendRow(table.Row{out.A, out.B, formatFloat(d)})
			})
		},
	}
}

func (a *app) equalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "equal A B",
		Short: "Report whether two coordinates denote the same point",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			coords, err := a.parseAll(args)
			if err != nil {
				return err
			}
			out := struct {
				A     string `json:"a"`
				B     string `json:"b"`
				Equal bool   `json:"equal"`
				Same  bool   `json:"same_instance"`
			}{
				A:     fmt.Sprint(coords[0]),
				B:     fmt.Sprint(coords[1]),
				Equal: geo.Equal(coords[0], coords[1]),
				Same:  coords[0] == coords[1],
			}
			return a.render(cmd.OutOrStdout(), out, func(t table.Writer) {
				t.AppendHeader(table.Row{"A", "B", "Equal", "Same instance"})
				t.AppendRow(table.Row{out.A, out.B, out.Equal, out.Same})
			})
		},
	}
}

func (a *app) projectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "project A",
		Short: "Show the Cartesian projection and spherical form of a coordinate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.parse(args[0])
			if err != nil {
				return err
			}
			view, err := viewOf(args[0], c)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), view, func(t table.Writer) {
				appendCoordinateRows(t, view)
			})
		},
	}
}

func (a *app) convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert A",
		Short: "Convert between Cartesian and spherical representations",
		Example: `  geocoord convert cart:1,1,1
  geocoord convert sph:45,90,2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.parse(args[0])
			if err != nil {
				return err
			}

			var converted geo.Coordinate
			switch v := c.(type) {
			case *geo.Cartesian:
				s, err := v.Spheric()
				if err != nil {
					return err
				}
				converted = s
			case *geo.Spheric:
				converted = v.Cartesian()
			default:
				return fmt.Errorf("%w: cannot convert %T", geo.ErrInvalidArgument, c)
			}

			from, err := viewOf(args[0], c)
			if err != nil {
				return err
			}
			to, err := viewOf("", converted)
			if err != nil {
				return err
			}
			out := struct {
				From  coordinateView `json:"from"`
				To    coordinateView `json:"to"`
				Equal bool           `json:"equal"`
			}{from, to, geo.Equal(c, converted)}
			return a.render(cmd.OutOrStdout(), out, func(t table.Writer) {
				appendCoordinateRows(t, from, to)
				t.AppendFooter(table.Row{"", "", "", "", "", "", "equal", out.Equal})
			})
		},
	}
}

func (a *app) nearestCmd() *cobra.Command {
	var (
		points int
		k      int
		from   string
		seed   int64
	)
	cmd := &cobra.Command{
		Use:   "nearest",
		Short: "Index random points on the sphere and find the nearest to a coordinate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if points < 1 || k < 1 {
				return fmt.Errorf("%w: --points and --k must be positive", geo.ErrInvalidArgument)
			}
			center, err := a.parse(from)
			if err != nil {
				return err
			}

			index := rtree.NewCoordinateIndex(rtree.WithWorkers(a.cfg.Workers), rtree.WithLogger(a.logger))
			start := time.Now()
			if err := index.IndexPoints(randomPoints(rand.New(rand.NewSource(seed)), points, a.cfg.Radius)); err != nil {
				return err
			}
			a.logger.Info().Int64("points", index.Count()).Dur("elapsed", time.Since(start)).Msg("index built")

			matches, err := index.NearestNeighbors(center, k)
			if err != nil {
				return err
			}

			type row struct {
				ID       string          `json:"id"`
				Location models.Location `json:"location"`
				Distance float64         `json:"distance"`
			}
			rows := make([]row, 0, len(matches))
			for _, m := range matches {
				rows = append(rows, row{ID: m.Point.ID, Location: *m.Point.Location, Distance: m.Distance})
			}
			return a.render(cmd.OutOrStdout(), rows, func(t table.Writer) {
				t.SetTitle(fmt.Sprintf("%d nearest to %s", k, center))
				t.AppendHeader(table.Row{"#", "ID", "Lat", "Lon", "Distance"})
				for i, r := range rows {
					t.AppendRow(table.Row{i + 1, r.ID, formatFloat(r.Location.Lat), formatFloat(r.Location.Lon), formatFloat(r.Distance)})
				}
			})
		},
	}
	cmd.Flags().IntVarP(&points, "points", "n", 10000, "Number of random points to index")
	cmd.Flags().IntVar(&k, "k", 5, "Number of neighbors to return")
	cmd.Flags().StringVar(&from, "from", "0,0", "Query coordinate")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")
	return cmd
}

// randomPoints returns n points uniformly distributed on a sphere.
func randomPoints(r *rand.Rand, n int, radius float64) []*models.Point {
	points := make([]*models.Point, n)
	for i := range points {
		lat := math.Asin(2*r.Float64()-1) * 180 / math.Pi
		lon := r.Float64()*360 - 180
		rad := radius
		points[i] = &models.Point{
			ID:       fmt.Sprintf("p%06d", i),
			Location: &models.Location{Lat: lat, Lon: lon, Radius: &rad},
		}
	}
	return points
}

type stressResult struct {
	Values            int           `json:"values"`
	Rounds            int           `json:"rounds"`
	Workers           int           `json:"workers"`
	Lookups           int           `json:"lookups"`
	Elapsed           time.Duration `json:"elapsed_ns"`
	CartesianBefore   int64         `json:"cartesian_pool_before"`
	CartesianAfter    int64         `json:"cartesian_pool_after"`
	SphericBefore     int64         `json:"spheric_pool_before"`
	SphericAfter      int64         `json:"spheric_pool_after"`
	DistinctSpherics  int           `json:"distinct_spherics"`
	DistinctCartesian int           `json:"distinct_cartesians"`
}

func (a *app) stressCmd() *cobra.Command {
	var (
		values int
		rounds int
		seed   int64
	)
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Race workers creating the same coordinates and verify they share instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if values < 1 || rounds < 1 {
				return fmt.Errorf("%w: --values and --rounds must be positive", geo.ErrInvalidArgument)
			}
			res, err := a.stress(cmd, values, rounds, seed)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), res, func(t table.Writer) {
				t.SetTitle("Pool stress")
				t.AppendHeader(table.Row{"Values", "Rounds", "Workers", "Lookups", "Elapsed", "Cartesian pool", "Spheric pool"})
				t.AppendRow(table.Row{
					res.Values, res.Rounds, res.Workers, res.Lookups, res.Elapsed,
					fmt.Sprintf("%d -> %d", res.CartesianBefore, res.CartesianAfter),
					fmt.Sprintf("%d -> %d", res.SphericBefore, res.SphericAfter),
				})
			})
		},
	}
	cmd.Flags().IntVarP(&values, "values", "n", 1000, "Number of distinct values")
	cmd.Flags().IntVar(&rounds, "rounds", 4, "Lookups of every value per worker")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")
	return cmd
}

// stress has every worker look up the same values in its own order and
// checks that all workers ended up holding the same instance per value.
func (a *app) stress(cmd *cobra.Command, values, rounds int, seed int64) (stressResult, error) {
	workers := a.cfg.Workers
	r := rand.New(rand.NewSource(seed))
	triples := make([][3]float64, values)
	for i := range triples {
		triples[i] = [3]float64{r.Float64()*180 - 90, r.Float64()*360 - 180, 1 + r.Float64()*a.cfg.Radius}
	}

	res := stressResult{
		Values:          values,
		Rounds:          rounds,
		Workers:         workers,
		Lookups:         values * rounds * workers,
		CartesianBefore: geo.CartesianPoolSize(),
		SphericBefore:   geo.SphericPoolSize(),
	}

	spherics := make([][]*geo.Spheric, workers)
	cartesians := make([][]*geo.Cartesian, workers)

	start := time.Now()
	g, ctx := errgroup.WithContext(cmd.Context())
	for w := 0; w < workers; w++ {
		w := w
		order := r.Perm(values)
		g.Go(func() error {
			ss := make([]*geo.Spheric, values)
			cs := make([]*geo.Cartesian, values)
			for round := 0; round < rounds; round++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for _, i := range order {
					t := triples[i]
					s, err := geo.SphericAt(t[0], t[1], t[2])
					if err != nil {
						return fmt.Errorf("value %d: %w", i, err)
					}
					c := s.Cartesian()
					if ss[i] != nil && (ss[i] != s || cs[i] != c) {
						return fmt.Errorf("worker %d: value %d changed instance between rounds", w, i)
					}
					ss[i], cs[i] = s, c
				}
			}
			spherics[w], cartesians[w] = ss, cs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	res.Elapsed = time.Since(start)

	sphericSet := make(map[*geo.Spheric]struct{}, values)
	cartesianSet := make(map[*geo.Cartesian]struct{}, values)
	for i := 0; i < values; i++ {
		for w := 1; w < workers; w++ {
			if spherics[w][i] != spherics[0][i] || cartesians[w][i] != cartesians[0][i] {
				return res, fmt.Errorf("value %d: workers 0 and %d hold different instances", i, w)
			}
		}
		sphericSet[spherics[0][i]] = struct{}{}
		cartesianSet[cartesians[0][i]] = struct{}{}
	}
	res.DistinctSpherics = len(sphericSet)
	res.DistinctCartesian = len(cartesianSet)
	res.CartesianAfter = geo.CartesianPoolSize()
	res.SphericAfter = geo.SphericPoolSize()

	a.logger.Info().
		Int("lookups", res.Lookups).
		Dur("elapsed", res.Elapsed).
		Int("distinct", res.DistinctSpherics).
		Msg("all workers share one instance per value")
	return res, nil
}
