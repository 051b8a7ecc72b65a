package engine

import (
	"sync"
	"time"
)

// CooldownGate remembers the last trigger time of every triangle and keeps
// triggers for the same key at least window apart.
// An entry only exists once the triangle has been triggered.
type CooldownGate struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
}

// NewCooldownGate creates a gate with a fixed per-triangle window.
func NewCooldownGate(window time.Duration) *CooldownGate {
	return &CooldownGate{window: window, last: make(map[string]time.Time)}
}

// Elapsed reports whether key may trigger at now.
func (g *CooldownGate) Elapsed(key string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.last[key]
	if !ok {
		return true
	}
	return now.Sub(last) >= g.window
}

// Mark records a trigger for key at now.
func (g *CooldownGate) Mark(key string, now time.Time) {
	g.mu.Lock()
	g.last[key] = now
	g.mu.Unlock()
}

// Last returns the last trigger time for key.
func (g *CooldownGate) Last(key string) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.last[key]
	return t, ok
}

// Window returns the configured cooldown.
func (g *CooldownGate) Window() time.Duration {
	return g.window
}
