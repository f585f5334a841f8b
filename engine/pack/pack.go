// Package pack stores baked curves in a bbolt resource file so a host can preload its curve cache
// instead of re-decoding source assets. The file has one bucket per attribute kind; each key is a
// curve cache key and each value is the curve's binary encoding.
package pack

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/cache"
	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
)

// keyframeSize is the encoded size of one keyframe: a u16 frame and twelve f32 components.
const keyframeSize = 2 + 12*4

var errShortCurve = errors.New("truncated curve encoding")

// PackedCurve is one curve read back from a resource file.
type PackedCurve struct {
	Key           string
	Kind          common.AttributeKind
	Interpolation curve.Interpolation
	Keyframes     []curve.RawKeyframe
}

// Curve rebuilds the baked curve.
//
// Returns:
//   - curve.Curve: the rebuilt curve
//   - error: error if the keyframes are invalid
func (p PackedCurve) Curve() (curve.Curve, error) {
	return curve.Rebuild(p.Kind, p.Interpolation, p.Keyframes)
}

// Write stores every curve in the cache into the resource file at path, creating it if needed.
// Existing entries with the same kind and key are overwritten.
//
// Parameters:
//   - path: the resource file
//   - c: the cache to store
//
// Returns:
//   - int: the number of curves written
//   - error: error if the file cannot be opened or written
func Write(path string, c cache.CurveCache) (int, error) {
	db, err := bolt.Open(path, 0666, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return 0, fmt.Errorf("failed to open pack %s: %w", path, err)
	}
	defer db.Close()

	written := 0
	err = db.Update(func(tx *bolt.Tx) error {
		for _, kind := range common.AttributeKinds {
			buck, err := tx.CreateBucketIfNotExists([]byte(kind.String()))
			if err != nil {
				return err
			}

			for _, key := range c.Keys(kind) {
				cv, ok := c.Peek(key, kind)
				if !ok {
					continue
				}
				if err := buck.Put([]byte(key), encodeCurve(cv)); err != nil {
					return fmt.Errorf("failed to store %s curve %q: %w", kind, key, err)
				}
				written++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// Read loads every curve from the resource file at path, ordered by kind then key.
//
// Parameters:
//   - path: the resource file
//
// Returns:
//   - []PackedCurve: the stored curves
//   - error: error if the file cannot be opened or an entry is corrupt
func Read(path string) ([]PackedCurve, error) {
	db, err := bolt.Open(path, 0444, &bolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open pack %s: %w", path, err)
	}
	defer db.Close()

	var packed []PackedCurve
	err = db.View(func(tx *bolt.Tx) error {
		for _, kind := range common.AttributeKinds {
			buck := tx.Bucket([]byte(kind.String()))
			if buck == nil {
				continue
			}

			err := buck.ForEach(func(k, v []byte) error {
				interpolation, keys, err := decodeCurve(v)
				if err != nil {
					return fmt.Errorf("%s curve %q: %w", kind, k, err)
				}
				packed = append(packed, PackedCurve{
					Key:           string(k),
					Kind:          kind,
					Interpolation: interpolation,
					Keyframes:     keys,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return packed, nil
}

// LoadInto rebuilds packed curves and inserts them into the cache. The inserted curves hold no
// references, so they stay until the next Prune unless a BakeOrFetch picks them up first.
// Entries that fail to rebuild or are already cached are reported and skipped.
//
// Parameters:
//   - c: the cache to fill
//   - packed: the curves read from a resource file
//
// Returns:
//   - int: the number of curves inserted
//   - error: every failure joined, nil if all were inserted
func LoadInto(c cache.CurveCache, packed []PackedCurve) (int, error) {
	var errs []error
	loaded := 0
	for _, p := range packed {
		cv, err := p.Curve()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s curve %q: %w", p.Kind, p.Key, err))
			continue
		}
		ref, err := c.Insert(p.Key, p.Kind, cv)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ref.Release()
		loaded++
	}
	return loaded, errors.Join(errs...)
}

// encodeCurve writes the interpolation, the keyframe count and every keyframe little-endian.
func encodeCurve(cv curve.Curve) []byte {
	keys := cv.Keyframes()
	buf := make([]byte, 5, 5+len(keys)*keyframeSize)
	buf[0] = byte(cv.Interpolation())
	binary.LittleEndian.PutUint32(buf[1:5], uint32(len(keys)))

	for _, k := range keys {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(k.Frame))
		for _, part := range [][4]float32{k.Value, k.InTangent, k.OutTangent} {
			for _, f := range part {
				buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
			}
		}
	}
	return buf
}

func decodeCurve(data []byte) (curve.Interpolation, []curve.RawKeyframe, error) {
	if len(data) < 5 {
		return 0, nil, errShortCurve
	}
	interpolation := curve.Interpolation(data[0])
	n := int(binary.LittleEndian.Uint32(data[1:5]))
	body := data[5:]
	if n < 0 || len(body) != n*keyframeSize {
		return 0, nil, fmt.Errorf("%w: %d keyframes need %d bytes, got %d", errShortCurve, n, n*keyframeSize, len(body))
	}

	keys := make([]curve.RawKeyframe, n)
	for i := range keys {
		rec := body[i*keyframeSize:]
		keys[i].Frame = common.Tick(binary.LittleEndian.Uint16(rec))
		off := 2
		for _, part := range []*[4]float32{&keys[i].Value, &keys[i].InTangent, &keys[i].OutTangent} {
			for j := range part {
				part[j] = math.Float32frombits(binary.LittleEndian.Uint32(rec[off:]))
				off += 4
			}
		}
	}
	return interpolation, keys, nil
}
