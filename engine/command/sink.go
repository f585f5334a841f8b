package command

import (
	"errors"
	"sync"
)

// Sink consumes drained command batches. Apply receives commands in enqueue order.
type Sink interface {
	Apply(cmds Batch) error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(cmds Batch) error

func (f SinkFunc) Apply(cmds Batch) error {
	return f(cmds)
}

// Fanout applies every batch to each sink in order and joins their errors.
func Fanout(sinks ...Sink) Sink {
	return SinkFunc(func(cmds Batch) error {
		var errs []error
		for _, s := range sinks {
			if err := s.Apply(cmds); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// Discard is a Sink that drops everything.
var Discard Sink = SinkFunc(func(Batch) error { return nil })

// recordingSink is the implementation of the RecordingSink interface.
type recordingSink struct {
	mu      sync.Mutex
	batches []Batch
}

// RecordingSink keeps a copy of every batch it is given. It is meant for tests and debugging.
type RecordingSink interface {
	Sink

	// Batches returns the recorded batches, oldest first.
	//
	// Returns:
	//   - []Batch: the recorded batches
	Batches() []Batch

	// Commands returns every recorded command flattened in apply order.
	//
	// Returns:
	//   - Batch: the recorded commands
	Commands() Batch

	// Reset forgets every recorded batch.
	Reset()
}

var _ RecordingSink = &recordingSink{}

// NewRecordingSink creates an empty RecordingSink.
//
// Returns:
//   - RecordingSink: the new sink
func NewRecordingSink() RecordingSink {
	return &recordingSink{}
}

func (r *recordingSink) Apply(cmds Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, append(Batch(nil), cmds...))
	return nil
}

func (r *recordingSink) Batches() []Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Batch, len(r.batches))
	copy(out, r.batches)
	return out
}

func (r *recordingSink) Commands() Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out Batch
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

func (r *recordingSink) Reset() {
	r.mu.Lock()
	r.batches = nil
	r.mu.Unlock()
}
