package cache

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
)

// SharedCurve is a counted reference to a cached curve. Holders never copy keyframe data; they evaluate
// the cached curve in place. Every reference must be released exactly once when its holder goes away.
type SharedCurve struct {
	entry    *entry
	released bool
}

func newSharedCurve(e *entry) *SharedCurve {
	e.refs++
	return &SharedCurve{entry: e}
}

// Curve returns the referenced curve.
func (s *SharedCurve) Curve() curve.Curve {
	return s.entry.curve
}

// Key returns the cache key of the referenced curve.
func (s *SharedCurve) Key() string {
	return s.entry.key
}

// Kind returns the attribute partition of the referenced curve.
func (s *SharedCurve) Kind() common.AttributeKind {
	return s.entry.kind
}

// Same reports whether s and other reference the same cached curve.
func (s *SharedCurve) Same(other *SharedCurve) bool {
	return other != nil && s.entry == other.entry
}

// Clone takes an additional reference to the same cached curve.
//
// Returns:
//   - *SharedCurve: the new reference
func (s *SharedCurve) Clone() *SharedCurve {
	return newSharedCurve(s.entry)
}

// Release drops this reference. Releasing twice is a no-op.
func (s *SharedCurve) Release() {
	if s.released {
		return
	}
	s.released = true
	s.entry.refs--
}
