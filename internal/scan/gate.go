// Package scan serialises raw decode events into at most one in-flight
// lookup.  A physical code left in front of the scanner fires the decoder
// repeatedly; the gate lets the first event through and drops the rest until
// the result of that lookup has been presented and the gate is reset.
package scan

import "sync"

// Gate is a two-state latch: idle or locked.  The zero value is an idle gate
// ready for use.  All methods are safe for concurrent use.
type Gate struct {
	mu     sync.Mutex
	locked bool
}

// NewGate returns an idle gate.
func NewGate() *Gate {
	return &Gate{}
}

// OnDecoded reports whether the caller should forward the event downstream.
// The first call on an idle gate locks it and returns true; every call while
// locked returns false and has no other effect.
func (g *Gate) OnDecoded(raw string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.locked {
		return false
	}
	g.locked = true
	return true
}

// Reset returns the gate to idle.  It must be called on every terminal path
// of the downstream lookup: success, parse failure, or operator cancel.
// Resetting an idle gate is a no-op.
func (g *Gate) Reset() {
	g.mu.Lock()
	g.locked = false
	g.mu.Unlock()
}

// Locked reports the current state.  Intended for presentation (disabling
// the scan surface), not for gating decisions; use OnDecoded for those.
func (g *Gate) Locked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.locked
}
