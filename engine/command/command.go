// Package command carries attribute writes from animation playback to whatever applies them: a scene,
// a network sink, or a recorder.
package command

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// commandSize is the encoded size of one AttributeCommand: three ids, the kind, the frame and four components.
const commandSize = 8*3 + 1 + 4 + 4*4

var errShortBatch = errors.New("short attribute command batch")

// AttributeCommand is a single "set this attribute on this object" write produced by a playback tick.
type AttributeCommand struct {
	Scene  common.SceneID
	Group  common.GroupID
	Target common.ObjectID
	Kind   common.AttributeKind
	// Frame is the curve frame that produced Value.
	Frame float32
	// Value holds xyz for vector attributes and xyzw for quaternions.
	Value [4]float32
}

func (c AttributeCommand) String() string {
	return fmt.Sprintf("scene %d group %d: %s of object %d = %v @ %.2f", c.Scene, c.Group, c.Kind, c.Target, c.Value, c.Frame)
}

// Batch is the ordered set of commands drained from a queue in one flush.
type Batch []AttributeCommand

// MarshalBinary encodes the batch as a little-endian command count followed by fixed-size commands.
func (b Batch) MarshalBinary() ([]byte, error) {
	data := make([]byte, 4, 4+len(b)*commandSize)
	binary.LittleEndian.PutUint32(data, uint32(len(b)))
	for _, c := range b {
		data = binary.LittleEndian.AppendUint64(data, uint64(c.Scene))
		data = binary.LittleEndian.AppendUint64(data, uint64(c.Group))
		data = binary.LittleEndian.AppendUint64(data, uint64(c.Target))
		data = append(data, byte(c.Kind))
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(c.Frame))
		for _, v := range c.Value {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
		}
	}
	return data, nil
}

// UnmarshalBinary decodes a batch written by MarshalBinary.
func (b *Batch) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return errShortBatch
	}
	n := int(binary.LittleEndian.Uint32(data))
	data = data[4:]
	if len(data) != n*commandSize {
		return fmt.Errorf("%w: want %d commands in %d bytes", errShortBatch, n, len(data))
	}

	out := make(Batch, n)
	for i := range out {
		rec := data[i*commandSize : (i+1)*commandSize]
		c := &out[i]
		c.Scene = common.SceneID(binary.LittleEndian.Uint64(rec[0:]))
		c.Group = common.GroupID(binary.LittleEndian.Uint64(rec[8:]))
		c.Target = common.ObjectID(binary.LittleEndian.Uint64(rec[16:]))
		c.Kind = common.AttributeKind(rec[24])
		c.Frame = math.Float32frombits(binary.LittleEndian.Uint32(rec[25:]))
		for j := range c.Value {
			c.Value[j] = math.Float32frombits(binary.LittleEndian.Uint32(rec[29+4*j:]))
		}
	}
	*b = out
	return nil
}
