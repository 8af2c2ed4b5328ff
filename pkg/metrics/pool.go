// Package metrics exposes Prometheus metrics for the coordinate pools.
package metrics

import (
	"fmt"

	"github.com/kass/go-geo-coordinate/pkg/geo"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	lookupsName = "geo_pool_lookups_total"
	entriesName = "geo_pool_entries"
)

// PoolCollector records pool lookups. It implements geo.PoolObserver and is
// safe for concurrent use.
type PoolCollector struct {
	gatherer prometheus.Gatherer

	Lookups *prometheus.CounterVec
	Entries *prometheus.GaugeVec
}

var _ geo.PoolObserver = (*PoolCollector)(nil)

// NewPoolCollector registers the pool metrics against reg. A nil registerer
// uses the default one.
func NewPoolCollector(reg prometheus.Registerer) (*PoolCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: lookupsName,
		Help: "Coordinate pool lookups by pool and result (hit or created).",
	}, []string{"pool", "result"})
	if err := reg.Register(lookups); err != nil {
		existing, err := alreadyRegistered[*prometheus.CounterVec](err, lookupsName)
		if err != nil {
			return nil, err
		}
		lookups = existing
	}

	entries := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: entriesName,
		Help: "Number of distinct coordinates held by each pool.",
	}, []string{"pool"})
	if err := reg.Register(entries); err != nil {
		existing, err := alreadyRegistered[*prometheus.GaugeVec](err, entriesName)
		if err != nil {
			return nil, err
		}
		entries = existing
	}

	return &PoolCollector{
		gatherer: gatherer,
		Lookups:  lookups,
		Entries:  entries,
	}, nil
}

// Gatherer returns the gatherer associated with the collector's registerer.
func (c *PoolCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Hit counts a lookup served by an existing pool entry.
func (c *PoolCollector) Hit(pool string) {
	if c == nil || c.Lookups == nil {
		return
	}
	c.Lookups.WithLabelValues(pool, "hit").Inc()
}

// Created counts a lookup that published a new pool entry.
func (c *PoolCollector) Created(pool string, size int64) {
	if c == nil {
		return
	}
	if c.Lookups != nil {
		c.Lookups.WithLabelValues(pool, "created").Inc()
	}
	if c.Entries != nil {
		c.Entries.WithLabelValues(pool).Set(float64(size))
	}
}

// Sync sets the entry gauges from the current pool sizes. Useful after
// installing the collector in a process whose pools are already populated.
func (c *PoolCollector) Sync() {
	if c == nil || c.Entries == nil {
		return
	}
	c.Entries.WithLabelValues(geo.CartesianPool).Set(float64(geo.CartesianPoolSize()))
	c.Entries.WithLabelValues(geo.SphericPool).Set(float64(geo.SphericPoolSize()))
}

func alreadyRegistered[T prometheus.Collector](err error, name string) (T, error) {
	var zero T
	are, ok := err.(prometheus.AlreadyRegisteredError)
	if !ok {
		return zero, err
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
	}
	return existing, nil
}
