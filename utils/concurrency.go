package utils

import "sync"

// ActionGuard rejects a second operation on a key while the first is running,
// such as two moderators jailing the same member at once.
type ActionGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewActionGuard() *ActionGuard {
	return &ActionGuard{held: make(map[string]struct{})}
}

// TryAcquire takes the key if it is free. The returned release must be called exactly once.
func (g *ActionGuard) TryAcquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[key]; busy {
		return nil, false
	}
	g.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, true
}
