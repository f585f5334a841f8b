package command

// QueueBuilderOption is a functional option for configuring a Queue during construction.
type QueueBuilderOption func(*queue)

// WithCapacity sets the initial buffer capacity of the Queue.
//
// Parameters:
//   - capacity: the number of commands to preallocate, ignored if not positive
//
// Returns:
//   - QueueBuilderOption: functional option to set the capacity
func WithCapacity(capacity int) QueueBuilderOption {
	return func(q *queue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}
