// Package cache stores baked curves shared between animation bindings.
package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
)

// ErrDuplicateCurveKey is matched (via errors.Is) by every DuplicateCurveKeyError.
var ErrDuplicateCurveKey = errors.New("duplicate curve key")

// ErrCurveKindMismatch is returned when a curve's value type does not suit its attribute partition.
var ErrCurveKindMismatch = errors.New("curve value type does not match attribute kind")

var errNilCurve = errors.New("producer returned a nil curve")

// DuplicateCurveKeyError reports an insert under a key that already exists in the same kind partition.
// The existing curve is left untouched.
type DuplicateCurveKeyError struct {
	Key  string
	Kind common.AttributeKind
}

func (e *DuplicateCurveKeyError) Error() string {
	return fmt.Sprintf("duplicate curve key %q in %s partition", e.Key, e.Kind)
}

func (e *DuplicateCurveKeyError) Is(target error) bool {
	return target == ErrDuplicateCurveKey
}

// entry is a cached curve and the number of live references to it.
type entry struct {
	key   string
	kind  common.AttributeKind
	curve curve.Curve
	refs  int
}

// curveCache is the implementation of the CurveCache interface.
type curveCache struct {
	partitions map[common.AttributeKind]map[string]*entry
	logger     *slog.Logger
}

// CurveCache is a keyed, reference-counted store of baked curves partitioned by attribute kind.
// Keys only need to be unique within a partition. A cache is owned by a single goroutine (the tick loop)
// and performs no locking.
type CurveCache interface {
	// BakeOrFetch returns a new reference to the curve cached under key and kind, calling producer to bake it
	// only when no such curve exists. Source data is never compared: equal keys are assumed to hold equal curves.
	//
	// Parameters:
	//   - key: the cache key, by convention "{animation}channel{channel}"
	//   - kind: the attribute partition
	//   - producer: bakes the curve on a miss
	//
	// Returns:
	//   - *SharedCurve: a new reference to the cached curve
	//   - error: the producer's error, or a DuplicateCurveKeyError if the key appeared while the producer ran
	BakeOrFetch(key string, kind common.AttributeKind, producer func() (curve.Curve, error)) (*SharedCurve, error)

	// Insert stores c under key and kind and returns the first reference to it. Rotation curves must hold
	// quaternions, position and scaling curves vectors.
	//
	// Parameters:
	//   - key: the cache key
	//   - kind: the attribute partition
	//   - c: the baked curve
	//
	// Returns:
	//   - *SharedCurve: a reference to the inserted curve
	//   - error: a DuplicateCurveKeyError if the key is already present in the partition, ErrCurveKindMismatch
	//     if the value type does not suit kind
	Insert(key string, kind common.AttributeKind, c curve.Curve) (*SharedCurve, error)

	// Get returns a new reference to a cached curve.
	//
	// Parameters:
	//   - key: the cache key
	//   - kind: the attribute partition
	//
	// Returns:
	//   - *SharedCurve: the new reference, or nil
	//   - bool: true if the curve was found
	Get(key string, kind common.AttributeKind) (*SharedCurve, bool)

	// Peek returns a cached curve without taking a reference.
	//
	// Parameters:
	//   - key: the cache key
	//   - kind: the attribute partition
	//
	// Returns:
	//   - curve.Curve: the curve, or nil
	//   - bool: true if the curve was found
	Peek(key string, kind common.AttributeKind) (curve.Curve, bool)

	// Contains reports whether key is cached in the given partition.
	Contains(key string, kind common.AttributeKind) bool

	// RefCount returns the number of live references to a cached curve, or -1 if it is not cached.
	RefCount(key string, kind common.AttributeKind) int

	// Len returns the number of cached curves across all partitions.
	Len() int

	// Keys returns the sorted keys of a partition.
	Keys(kind common.AttributeKind) []string

	// Prune evicts every curve with no live references.
	//
	// Returns:
	//   - int: the number of evicted curves
	Prune() int
}

var _ CurveCache = &curveCache{}

// NewCurveCache creates an empty CurveCache configured with the given options.
//
// Parameters:
//   - options: functional options to configure the cache
//
// Returns:
//   - CurveCache: the new cache
func NewCurveCache(options ...CurveCacheBuilderOption) CurveCache {
	c := &curveCache{
		partitions: make(map[common.AttributeKind]map[string]*entry, len(common.AttributeKinds)),
		logger:     slog.Default(),
	}
	for _, kind := range common.AttributeKinds {
		c.partitions[kind] = make(map[string]*entry)
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *curveCache) BakeOrFetch(key string, kind common.AttributeKind, producer func() (curve.Curve, error)) (*SharedCurve, error) {
	if ref, ok := c.Get(key, kind); ok {
		return ref, nil
	}

	baked, err := producer()
	if err != nil {
		return nil, fmt.Errorf("failed to bake %s curve %q: %w", kind, key, err)
	}
	if baked == nil {
		return nil, fmt.Errorf("failed to bake %s curve %q: %w", kind, key, errNilCurve)
	}

	ref, err := c.Insert(key, kind, baked)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("baked curve", "key", key, "kind", kind.String(), "keyframes", baked.Len())
	return ref, nil
}

func (c *curveCache) Insert(key string, kind common.AttributeKind, cv curve.Curve) (*SharedCurve, error) {
	part, ok := c.partitions[kind]
	if !ok {
		return nil, fmt.Errorf("unknown attribute kind %s", kind)
	}
	if cv == nil {
		return nil, fmt.Errorf("insert %s curve %q: %w", kind, key, errNilCurve)
	}
	if !suitsKind(cv, kind) {
		return nil, fmt.Errorf("insert %s curve %q: %w", kind, key, ErrCurveKindMismatch)
	}
	if _, exists := part[key]; exists {
		return nil, &DuplicateCurveKeyError{Key: key, Kind: kind}
	}

	e := &entry{key: key, kind: kind, curve: cv}
	part[key] = e
	return newSharedCurve(e), nil
}

func (c *curveCache) Get(key string, kind common.AttributeKind) (*SharedCurve, bool) {
	e, ok := c.partitions[kind][key]
	if !ok {
		return nil, false
	}
	return newSharedCurve(e), true
}

func (c *curveCache) Peek(key string, kind common.AttributeKind) (curve.Curve, bool) {
	e, ok := c.partitions[kind][key]
	if !ok {
		return nil, false
	}
	return e.curve, true
}

func (c *curveCache) Contains(key string, kind common.AttributeKind) bool {
	_, ok := c.partitions[kind][key]
	return ok
}

func (c *curveCache) RefCount(key string, kind common.AttributeKind) int {
	e, ok := c.partitions[kind][key]
	if !ok {
		return -1
	}
	return e.refs
}

func (c *curveCache) Len() int {
	n := 0
	for _, part := range c.partitions {
		n += len(part)
	}
	return n
}

func (c *curveCache) Keys(kind common.AttributeKind) []string {
	part := c.partitions[kind]
	keys := make([]string, 0, len(part))
	for k := range part {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *curveCache) Prune() int {
	evicted := 0
	for kind, part := range c.partitions {
		for key, e := range part {
			if e.refs > 0 {
				continue
			}
			delete(part, key)
			evicted++
			c.logger.Debug("evicted curve", "key", key, "kind", kind.String())
		}
	}
	return evicted
}

// suitsKind reports whether the curve's value type matches the attribute partition.
func suitsKind(cv curve.Curve, kind common.AttributeKind) bool {
	switch cv.(type) {
	case *curve.FrameCurve[curve.Quat]:
		return kind == common.AttributeRotation
	case *curve.FrameCurve[curve.Vec3]:
		return kind != common.AttributeRotation
	default:
		return true
	}
}
