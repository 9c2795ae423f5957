package session

import "sync"

// Observer is called after a session state change. Observers pull the
// snapshot they need; no payload is pushed.
type Observer func()

// Subscription is an active observer registration.
type Subscription struct {
	id       uint64
	notifier *notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// notifier fans state-change signals out to observers. Callbacks run on the
// notifying goroutine without any session lock held.
type notifier struct {
	mu        sync.RWMutex
	observers map[uint64]Observer
	nextID    uint64
}

func newNotifier() *notifier {
	return &notifier{observers: make(map[uint64]Observer)}
}

func (n *notifier) subscribe(obs Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	n.observers[n.nextID] = obs
	return &Subscription{id: n.nextID, notifier: n}
}

func (n *notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

func (n *notifier) notify() {
	n.mu.RLock()
	obs := make([]Observer, 0, len(n.observers))
	for _, o := range n.observers {
		obs = append(obs, o)
	}
	n.mu.RUnlock()

	for _, o := range obs {
		o()
	}
}
