package geo

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

const poolShards = 32

// Pool names reported to a PoolObserver.
const (
	CartesianPool = "cartesian"
	SphericPool   = "spheric"
)

// PoolObserver receives lookup events from the coordinate pools. Methods may
// be called concurrently.
type PoolObserver interface {
	Hit(pool string)
	Created(pool string, size int64)
}

type nopObserver struct{}

func (nopObserver) Hit(string)            {}
func (nopObserver) Created(string, int64) {}

type observerHolder struct{ PoolObserver }

var poolObserver atomic.Pointer[observerHolder]

func init() {
	poolObserver.Store(&observerHolder{nopObserver{}})
}

// SetPoolObserver installs o as the process-wide pool observer. A nil
// observer restores the default no-op.
func SetPoolObserver(o PoolObserver) {
	if o == nil {
		o = nopObserver{}
	}
	poolObserver.Store(&observerHolder{o})
}

func observer() PoolObserver {
	return poolObserver.Load().PoolObserver
}

// key is the exact bit pattern of a projection.
type key struct {
	x, y, z uint64
}

func keyOf(x, y, z float64) key {
	return key{math.Float64bits(x), math.Float64bits(y), math.Float64bits(z)}
}

func projectionKey(c Coordinate) key {
	return keyOf(c.X(), c.Y(), c.Z())
}

func (k key) shard() int {
	var buf [24]byte
	binary.BigEndian.PutUint64(buf[0:8], k.x)
	binary.BigEndian.PutUint64(buf[8:16], k.y)
	binary.BigEndian.PutUint64(buf[16:24], k.z)
	return int(xxhash.Sum64(buf[:]) % poolShards)
}

type poolShard struct {
	mu      sync.Mutex
	entries sync.Map // key -> *T
}

// pool maps projections to their canonical instance. Reads of present entries
// take no lock; the create path re-checks under the shard mutex, so exactly
// one instance per key is ever published.
type pool[T any] struct {
	name   string
	shards [poolShards]poolShard
	size   atomic.Int64
}

func newPool[T any](name string) *pool[T] {
	return &pool[T]{name: name}
}

func (p *pool[T]) lookup(k key, create func() *T) *T {
	s := &p.shards[k.shard()]
	if v, ok := s.entries.Load(k); ok {
		observer().Hit(p.name)
		return v.(*T)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.entries.Load(k); ok {
		observer().Hit(p.name)
		return v.(*T)
	}
	v := create()
	s.entries.Store(k, v)
	size := p.size.Add(1)
	observer().Created(p.name, size)
	return v
}

func (p *pool[T]) len() int64 {
	return p.size.Load()
}
