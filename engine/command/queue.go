package command

import "sync"

// queue is the implementation of the Queue interface.
type queue struct {
	mu       sync.Mutex
	pending  []AttributeCommand
	capacity int
}

// Queue is the producer/consumer buffer between playback and a Sink. Commands come out of Drain in the
// order they were pushed, so when two commands write the same attribute the later one wins.
type Queue interface {
	// Push appends commands to the queue.
	//
	// Parameters:
	//   - cmds: the commands to enqueue
	Push(cmds ...AttributeCommand)

	// Drain removes and returns every pending command in enqueue order.
	//
	// Returns:
	//   - Batch: the pending commands, nil if the queue was empty
	Drain() Batch

	// Len returns the number of pending commands.
	//
	// Returns:
	//   - int: the pending command count
	Len() int
}

var _ Queue = &queue{}

// NewQueue creates an empty command queue.
//
// Parameters:
//   - options: functional options to configure the queue
//
// Returns:
//   - Queue: the new queue
func NewQueue(options ...QueueBuilderOption) Queue {
	q := &queue{capacity: 64}
	for _, option := range options {
		option(q)
	}
	q.pending = make([]AttributeCommand, 0, q.capacity)
	return q
}

func (q *queue) Push(cmds ...AttributeCommand) {
	q.mu.Lock()
	q.pending = append(q.pending, cmds...)
	q.mu.Unlock()
}

func (q *queue) Drain() Batch {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = make([]AttributeCommand, 0, max(q.capacity, len(out)))
	return out
}

func (q *queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
