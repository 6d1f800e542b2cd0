package turnlock

import "sync"

// Guard enforces at most one in-flight interview turn per key. The dialogue
// controller itself does not coordinate concurrent turns for the same case,
// so the calling layer acquires a slot here before invoking it; a second
// submission while a turn is in flight is rejected instead of interleaving
// transcript writes.
type Guard[K comparable] struct {
	mu       sync.Mutex
	inFlight map[K]struct{}
}

func New[K comparable]() *Guard[K] {
	return &Guard[K]{
		inFlight: make(map[K]struct{}),
	}
}

// TryAcquire claims the slot for key. It returns false without blocking when
// a turn for the key is already in flight.
func (g *Guard[K]) TryAcquire(key K) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inFlight[key]; ok {
		return false
	}
	g.inFlight[key] = struct{}{}
	return true
}

// Release frees the slot for key. Releasing an unclaimed key is a no-op.
func (g *Guard[K]) Release(key K) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, key)
}
