// Package emotion implements the per-character emotional state engine: a
// registry of composite states fed by independently-decaying impacts, update
// pathways, significance-gated memory formation, and transition history.
package emotion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/easeaico/emotion-engine/internal/events"
	"github.com/easeaico/emotion-engine/internal/memory"
	"github.com/easeaico/emotion-engine/internal/types"
)

// ErrCharacterNotFound is returned when the character directory has no record
// for the requested id.
var ErrCharacterNotFound = errors.New("character not found")

// CharacterDirectory validates character existence. It is consulted once per
// character, lazily, before a default state is created.
type CharacterDirectory interface {
	Lookup(ctx context.Context, characterID string) (*types.Character, error)
}

// NeedsSource supplies need snapshots for the need-driven pathway.
type NeedsSource interface {
	ActiveNeeds(ctx context.Context, characterID string) ([]types.NeedState, error)
}

// MemoryStore is what the engine needs from the memory service.
type MemoryStore interface {
	Create(ctx context.Context, characterID string, state types.EmotionalState, trigger string, emoCtx types.EmotionalContext, significance float64) (types.EmotionalMemory, error)
	Recent(ctx context.Context, characterID string, filter memory.Filter, limit int) ([]types.EmotionalMemory, error)
}

// SemanticSearcher is implemented by memory stores that support
// embedding-based retrieval.
type SemanticSearcher interface {
	SearchSimilar(ctx context.Context, characterID, query string, topK int, threshold float64) ([]types.EmotionalMemory, error)
}

// Config wires the engine's collaborators. Nil fields fall back to in-memory
// or logging defaults.
type Config struct {
	Directory   CharacterDirectory
	Memories    MemoryStore
	Transitions TransitionLog
	Profiles    ProfileRepo
	Needs       NeedsSource
	Sink        events.Sink
	// Searcher enables semantic recall. Optional; nil disables Recall.
	Searcher SemanticSearcher
	// TickInterval is the decay tick period. Defaults to one minute.
	TickInterval time.Duration
	Clock        func() time.Time
}

// Engine is the single source of truth for what every character is feeling.
// All in-memory operations are synchronous; only the first directory lookup
// per character may suspend on I/O.
type Engine struct {
	mu      sync.RWMutex
	entries map[string]*entry

	directory   CharacterDirectory
	memories    MemoryStore
	transitions TransitionLog
	profiles    ProfileRepo
	needs       NeedsSource
	sink        events.Sink
	searcher    SemanticSearcher
	tick        time.Duration
	now         func() time.Time
}

// entry is one character's registry slot. The entry owns its decay goroutine;
// stopping the entry stops the goroutine.
type entry struct {
	mu      sync.Mutex
	state   types.EmotionalState
	impacts []types.EmotionalImpact
	context types.EmotionalContext

	decayRunning bool
	stop         chan struct{}
	done         chan struct{}
}

// NewEngine creates an engine from the given configuration.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		entries:     make(map[string]*entry),
		directory:   cfg.Directory,
		memories:    cfg.Memories,
		transitions: cfg.Transitions,
		profiles:    cfg.Profiles,
		needs:       cfg.Needs,
		sink:        cfg.Sink,
		searcher:    cfg.Searcher,
		tick:        cfg.TickInterval,
		now:         cfg.Clock,
	}
	if e.transitions == nil {
		e.transitions = NewInMemoryTransitionLog()
	}
	if e.profiles == nil {
		e.profiles = NewInMemoryProfileRepo()
	}
	if e.sink == nil {
		e.sink = events.LogSink{}
	}
	if e.tick <= 0 {
		e.tick = time.Minute
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// State returns the character's current composite state, creating the neutral
// default on first access after the directory confirms the character exists.
func (e *Engine) State(ctx context.Context, characterID string) (types.EmotionalState, error) {
	ent, err := e.entryFor(ctx, characterID)
	if err != nil {
		return types.EmotionalState{}, err
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return ent.state, nil
}

// entryFor returns the registry slot for a character, creating it after a
// directory check. Subsequent calls never hit the directory again.
func (e *Engine) entryFor(ctx context.Context, characterID string) (*entry, error) {
	e.mu.RLock()
	ent := e.entries[characterID]
	e.mu.RUnlock()
	if ent != nil {
		return ent, nil
	}

	if e.directory != nil {
		character, err := e.directory.Lookup(ctx, characterID)
		if err != nil {
			if errors.Is(err, ErrCharacterNotFound) {
				return nil, fmt.Errorf("character %s: %w", characterID, ErrCharacterNotFound)
			}
			return nil, fmt.Errorf("failed to look up character %s: %w", characterID, err)
		}
		if character == nil {
			return nil, fmt.Errorf("character %s: %w", characterID, ErrCharacterNotFound)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if ent = e.entries[characterID]; ent != nil {
		return ent, nil
	}
	ent = &entry{state: types.NeutralState()}
	e.entries[characterID] = ent
	return ent, nil
}

// Normalize resets the character to the neutral default, clears every active
// impact, and synchronously stops the character's decay timer.
func (e *Engine) Normalize(ctx context.Context, characterID string) error {
	ent, err := e.entryFor(ctx, characterID)
	if err != nil {
		return err
	}

	ent.stopDecayLoop()

	ent.mu.Lock()
	old := ent.state
	ent.state = types.NeutralState()
	ent.impacts = nil
	newState := ent.state
	ent.mu.Unlock()

	e.record(ctx, characterID, old, newState, "normalized", types.SourceNormalize)
	e.publish(ctx, events.TopicNormalized, types.StateChangeEvent{
		CharacterID: characterID,
		OldState:    old,
		NewState:    newState,
		Trigger:     "normalized",
		Source:      types.SourceNormalize,
		Timestamp:   e.now(),
	})
	return nil
}

// EndSession discards the character's registry slot and stops its timers.
// State, impacts, and context are dropped; memories and transitions survive in
// their stores.
func (e *Engine) EndSession(characterID string) {
	e.mu.Lock()
	ent := e.entries[characterID]
	delete(e.entries, characterID)
	e.mu.Unlock()
	if ent != nil {
		ent.stopDecayLoop()
	}
}

// Close stops every character's decay goroutine and empties the registry.
// Intended for process shutdown.
func (e *Engine) Close() {
	e.mu.Lock()
	entries := e.entries
	e.entries = make(map[string]*entry)
	e.mu.Unlock()
	for _, ent := range entries {
		ent.stopDecayLoop()
	}
}

// RecentMemories retrieves ranked memories for the response layer.
func (e *Engine) RecentMemories(ctx context.Context, characterID string, filter memory.Filter, limit int) ([]types.EmotionalMemory, error) {
	if e.memories == nil {
		return nil, nil
	}
	return e.memories.Recent(ctx, characterID, filter, limit)
}

// Recall retrieves memories semantically close to the query text. Returns nil
// when the memory store has no semantic search support.
func (e *Engine) Recall(ctx context.Context, characterID, query string, topK int, threshold float64) ([]types.EmotionalMemory, error) {
	if e.searcher == nil {
		return nil, nil
	}
	if topK <= 0 {
		topK = 5
	}
	return e.searcher.SearchSimilar(ctx, characterID, query, topK, threshold)
}

// Transitions returns the character's logged state changes in the time range.
func (e *Engine) Transitions(ctx context.Context, characterID string, after, before time.Time, limit int) ([]types.EmotionalTransition, error) {
	return e.transitions.List(ctx, characterID, after, before, limit)
}

// publish delivers an event to the sink. Failures are logged, never
// propagated: the state change already happened and is not rolled back.
func (e *Engine) publish(ctx context.Context, topic string, event types.StateChangeEvent) {
	if e.sink == nil {
		return
	}
	if err := e.sink.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish emotion event", "topic", topic, "character_id", event.CharacterID, "error", err.Error())
	}
}

// hasPendingDecay reports whether the character's decay goroutine is running.
func (e *Engine) hasPendingDecay(characterID string) bool {
	e.mu.RLock()
	ent := e.entries[characterID]
	e.mu.RUnlock()
	if ent == nil {
		return false
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return ent.decayRunning
}
