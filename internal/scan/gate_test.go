package scan

import (
	"sync"
	"testing"
)

func TestGateFirstEventWins(t *testing.T) {
	t.Parallel()

	g := NewGate()
	forwarded := []string{}
	for _, raw := range []string{"raw", "raw", "raw2"} {
		if g.OnDecoded(raw) {
			forwarded = append(forwarded, raw)
		}
	}
	if len(forwarded) != 1 || forwarded[0] != "raw" {
		t.Fatalf("forwarded = %v, want exactly [raw]", forwarded)
	}

	// After reset the next event fires a new lookup.
	g.Reset()
	if !g.OnDecoded("raw3") {
		t.Error("event after reset was dropped")
	}
	if g.OnDecoded("raw4") {
		t.Error("second event after re-lock was forwarded")
	}
}

func TestGateResetIdempotent(t *testing.T) {
	t.Parallel()

	g := NewGate()
	g.Reset() // resetting an idle gate is a no-op
	if !g.OnDecoded("a") {
		t.Fatal("idle gate dropped first event")
	}
	g.Reset()
	g.Reset()
	if !g.OnDecoded("b") {
		t.Error("gate stuck after double reset")
	}
}

func TestGateLocked(t *testing.T) {
	t.Parallel()

	g := NewGate()
	if g.Locked() {
		t.Error("new gate reports locked")
	}
	g.OnDecoded("x")
	if !g.Locked() {
		t.Error("gate not locked after forwarding")
	}
	g.Reset()
	if g.Locked() {
		t.Error("gate locked after reset")
	}
}

func TestGateConcurrentDecodes(t *testing.T) {
	t.Parallel()

	g := NewGate()
	const n = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.OnDecoded("same") {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Errorf("%d decodes forwarded concurrently, want 1", wins)
	}
}
