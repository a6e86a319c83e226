package queue

// Queue represents a basic FIFO queue of pending client messages.
type Queue interface {
	Enqueue(item interface{}) error
	// Dequeue blocks until an item is available.
	Dequeue() (interface{}, error)
	Size() int
	ReadAllMessages() []interface{}
	ClearQueue()
}
