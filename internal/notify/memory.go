package notify

import (
	"context"
	"sync"
)

// InMemoryNotifier records notifications for tests and development. FailWith
// makes every Notify call return the given error, for asserting that
// delivery failures never surface.
type InMemoryNotifier struct {
	mu       sync.Mutex
	sent     []Message
	failWith error
}

// NewInMemoryNotifier constructs an empty recorder.
func NewInMemoryNotifier() *InMemoryNotifier {
	return &InMemoryNotifier{}
}

func (n *InMemoryNotifier) Notify(_ context.Context, msg Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failWith != nil {
		return n.failWith
	}
	n.sent = append(n.sent, msg)
	return nil
}

// Sent returns a copy of everything delivered so far.
func (n *InMemoryNotifier) Sent() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Message, len(n.sent))
	copy(out, n.sent)
	return out
}

// FailWith makes subsequent deliveries fail with err; pass nil to recover.
func (n *InMemoryNotifier) FailWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failWith = err
}
