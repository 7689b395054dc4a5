// Package memory persists significant emotional transitions and links related
// memories into a weighted association graph.
package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/easeaico/emotion-engine/internal/types"
)

// MemoryRepo abstracts memory storage. The in-memory implementation is the
// default; a PostgreSQL implementation lives in the repository package.
type MemoryRepo interface {
	Add(ctx context.Context, mem types.EmotionalMemory) error
	ListByCharacter(ctx context.Context, characterID string) ([]types.EmotionalMemory, error)
	AddAssociation(ctx context.Context, memoryID string, assoc types.MemoryAssociation) error
}

// Service creates memories from significant transitions and maintains the
// association graph between them.
type Service struct {
	memories MemoryRepo
	now      func() time.Time
}

// NewService returns a memory service backed by the given repo.
func NewService(memories MemoryRepo) *Service {
	return &Service{
		memories: memories,
		now:      time.Now,
	}
}

// SetClock overrides the service clock; used by tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create stores a new memory for the transition, derives vividness,
// accessibility, and tags, and links it against every existing memory of the
// character whose similarity exceeds the association threshold.
func (s *Service) Create(ctx context.Context, characterID string, state types.EmotionalState, trigger string, emoCtx types.EmotionalContext, significance float64) (types.EmotionalMemory, error) {
	if s.memories == nil {
		return types.EmotionalMemory{}, fmt.Errorf("memory repo is nil")
	}

	existing, err := s.memories.ListByCharacter(ctx, characterID)
	if err != nil {
		return types.EmotionalMemory{}, fmt.Errorf("failed to list memories: %w", err)
	}

	significance = types.ClampScore(significance)
	mem := types.EmotionalMemory{
		ID:            uuid.New().String(),
		CharacterID:   characterID,
		State:         state,
		Trigger:       trigger,
		Context:       emoCtx,
		Timestamp:     s.now(),
		Significance:  significance,
		Vividness:     vividness(state.Intensity, significance),
		Accessibility: accessibility(state.Intensity, emoCtx),
		Decay:         0,
		Tags:          deriveTags(state, trigger, emoCtx),
	}

	for _, other := range existing {
		strength := Similarity(mem, other)
		if strength <= associationThreshold {
			continue
		}
		mem.Associations = append(mem.Associations, types.MemoryAssociation{
			MemoryID: other.ID,
			Strength: strength,
			Type:     associationType(mem, other),
		})
	}

	if err := s.memories.Add(ctx, mem); err != nil {
		return types.EmotionalMemory{}, fmt.Errorf("failed to store memory: %w", err)
	}

	// Reciprocal edges on the existing memories; association growth is the only
	// mutation a stored memory allows.
	for _, assoc := range mem.Associations {
		back := types.MemoryAssociation{MemoryID: mem.ID, Strength: assoc.Strength, Type: assoc.Type}
		if err := s.memories.AddAssociation(ctx, assoc.MemoryID, back); err != nil {
			return types.EmotionalMemory{}, fmt.Errorf("failed to link memory %s: %w", assoc.MemoryID, err)
		}
	}

	return mem, nil
}

func vividness(intensity int, significance float64) float64 {
	v := (float64(intensity)*5 + significance) / 2
	if v > 100 {
		v = 100
	}
	return v
}

func accessibility(intensity int, emoCtx types.EmotionalContext) float64 {
	a := 70 + float64(intensity)*2
	if emoCtx.SocialSetting != "" && emoCtx.SocialSetting != types.SettingPrivate {
		a += 10
	}
	a += emoCtx.RelationshipLevel * 0.2
	switch {
	case a < 10:
		return 10
	case a > 100:
		return 100
	default:
		return a
	}
}

// deriveTags builds the retrieval tag set: emotion labels, intensity band,
// context markers, and any trigger word longer than three characters.
func deriveTags(state types.EmotionalState, trigger string, emoCtx types.EmotionalContext) []string {
	seen := make(map[string]bool)
	var tags []string
	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	add(state.Primary)
	add(state.Secondary)
	add(types.IntensityBand(float64(state.Intensity) * 10))
	add(emoCtx.SocialSetting)
	add(emoCtx.TimeOfDay)
	for _, word := range strings.Fields(trigger) {
		word = strings.Trim(word, ".,!?;:\"'")
		if len(word) > 3 {
			add(word)
		}
	}
	return tags
}
