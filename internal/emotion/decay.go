package emotion

import (
	"time"
)

// startDecayLocked launches the entry's decay goroutine if it is not already
// running. Caller must hold ent.mu. The registry entry owns the goroutine:
// normalize and session end stop it, and it stops itself when the ledger
// empties.
func (e *Engine) startDecayLocked(characterID string, ent *entry) {
	if ent.decayRunning || len(ent.impacts) == 0 {
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	ent.decayRunning = true
	ent.stop = stop
	ent.done = done
	go e.decayLoop(ent, stop, done)
}

func (e *Engine) decayLoop(ent *entry, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if e.decayTick(ent) {
				return
			}
		}
	}
}

// decayTick applies one decay step to every active impact, prunes the expired
// ones, and writes back the recomputed composite. Returns true when the ledger
// is empty and the loop should end.
func (e *Engine) decayTick(ent *entry) (emptied bool) {
	ent.mu.Lock()
	defer ent.mu.Unlock()

	remaining := ent.impacts[:0]
	for i := range ent.impacts {
		impact := ent.impacts[i]
		impact.Intensity -= decayStep(impact.FadeRate, impact.Intensity)
		if impact.Intensity > 0 {
			remaining = append(remaining, impact)
		}
	}
	ent.impacts = remaining
	ent.state = compositeFromLedger(ent.impacts)

	if len(ent.impacts) == 0 {
		ent.decayRunning = false
		ent.stop = nil
		ent.done = nil
		return true
	}
	return false
}

// decayStep is the per-tick intensity reduction: the impact's own fade rate
// scaled by how much intensity it has left, so stronger impacts shed more per
// tick and every impact tapers toward zero.
func decayStep(fadeRate, intensity float64) float64 {
	return (fadeRate / 60) * (intensity / 100)
}

// stopDecayLoop synchronously stops the entry's decay goroutine, if any. Must
// be called without holding ent.mu.
func (ent *entry) stopDecayLoop() {
	ent.mu.Lock()
	running := ent.decayRunning
	stop := ent.stop
	done := ent.done
	ent.decayRunning = false
	ent.stop = nil
	ent.done = nil
	ent.mu.Unlock()

	if !running {
		return
	}
	close(stop)
	<-done
}
