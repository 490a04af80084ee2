package realtime

import (
	"context"
	"sync"
	"time"
)

// Record collections that emit change events.
const (
	CollectionComments  = "comments"
	CollectionLocations = "saved_locations"
	CollectionDogs      = "dogs"
)

// Change describes a single record mutation pushed to subscribers.
type Change struct {
	Collection string      `json:"collection"`
	Action     string      `json:"action"` // "create", "update" or "delete"
	RecordID   string      `json:"recordId"`
	ZipCode    string      `json:"zipCode,omitempty"`
	Record     interface{} `json:"record,omitempty"`
	At         time.Time   `json:"at"`
}

// Notifier is the generic subscribe-to-change-stream abstraction. Publish
// never blocks on slow consumers.
type Notifier interface {
	Publish(ctx context.Context, change Change) error
	// Subscribe returns a channel of changes for one collection and a
	// cancel function that must be called to release the subscription.
	Subscribe(ctx context.Context, collection string) (<-chan Change, func(), error)
}

// MemoryNotifier is an in-process Notifier for single-node runs and tests.
type MemoryNotifier struct {
	mu   sync.Mutex
	subs map[string]map[chan Change]struct{}
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{
		subs: make(map[string]map[chan Change]struct{}),
	}
}

func (n *MemoryNotifier) Publish(_ context.Context, change Change) error {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	for ch := range n.subs[change.Collection] {
		select {
		case ch <- change:
		default:
			// Drop for slow consumers rather than blocking Publish.
		}
	}
	return nil
}

func (n *MemoryNotifier) Subscribe(_ context.Context, collection string) (<-chan Change, func(), error) {
	ch := make(chan Change, 16)

	n.mu.Lock()
	if n.subs[collection] == nil {
		n.subs[collection] = make(map[chan Change]struct{})
	}
	n.subs[collection][ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs[collection], ch)
			n.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}
