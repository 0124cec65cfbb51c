package queue

// Queue represents a basic queue.
type Queue interface {
	Enqueue(item interface{}) error
	Size() int
	ReadAllMessages() []interface{}
	ClearQueue()
}
