package emotion

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/easeaico/emotion-engine/internal/types"
)

// Fixed transition metadata, placeholders until pathway modelling is refined.
const (
	transitionDuration   = 5 * time.Second
	transitionSmoothness = 70.0
	transitionResistance = 30.0
)

// TransitionLog stores the append-only history of state changes.
type TransitionLog interface {
	Append(ctx context.Context, transition types.EmotionalTransition) error
	List(ctx context.Context, characterID string, after, before time.Time, limit int) ([]types.EmotionalTransition, error)
}

// record appends one transition for a state change. Log failures are logged
// and swallowed: the state change is already committed and memory is the
// authoritative record.
func (e *Engine) record(ctx context.Context, characterID string, from, to types.EmotionalState, trigger, source string) {
	transition := types.EmotionalTransition{
		ID:          uuid.New().String(),
		CharacterID: characterID,
		From:        from,
		To:          to,
		Trigger:     trigger,
		Source:      source,
		Timestamp:   e.now(),
		Duration:    transitionDuration,
		Smoothness:  transitionSmoothness,
		Resistance:  transitionResistance,
		Intensity:   math.Abs(float64(to.Intensity-from.Intensity)) * 10,
		Pathway:     []string{},
	}
	if err := e.transitions.Append(ctx, transition); err != nil {
		slog.Warn("failed to log transition", "character_id", characterID, "source", source, "error", err.Error())
	}
}

// InMemoryTransitionLog keeps per-character transition history in memory.
type InMemoryTransitionLog struct {
	mu     sync.RWMutex
	byChar map[string][]types.EmotionalTransition
}

// NewInMemoryTransitionLog returns an empty log.
func NewInMemoryTransitionLog() *InMemoryTransitionLog {
	return &InMemoryTransitionLog{byChar: make(map[string][]types.EmotionalTransition)}
}

// Append adds a transition to the character's history.
func (l *InMemoryTransitionLog) Append(ctx context.Context, transition types.EmotionalTransition) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byChar[transition.CharacterID] = append(l.byChar[transition.CharacterID], transition)
	return nil
}

// List returns transitions in the time range, oldest first, capped at the
// most recent limit entries.
func (l *InMemoryTransitionLog) List(ctx context.Context, characterID string, after, before time.Time, limit int) ([]types.EmotionalTransition, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []types.EmotionalTransition
	for _, transition := range l.byChar[characterID] {
		if !after.IsZero() && transition.Timestamp.Before(after) {
			continue
		}
		if !before.IsZero() && transition.Timestamp.After(before) {
			continue
		}
		out = append(out, transition)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
