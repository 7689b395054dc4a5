package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/easeaico/emotion-engine/internal/types"
)

// InMemoryRepo is the default MemoryRepo: per-character slices guarded by a
// read-write lock. Safe for concurrent use.
type InMemoryRepo struct {
	mu        sync.RWMutex
	byChar    map[string][]types.EmotionalMemory
	indexByID map[string]*types.EmotionalMemory
}

// NewInMemoryRepo returns an empty in-memory repo.
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		byChar:    make(map[string][]types.EmotionalMemory),
		indexByID: make(map[string]*types.EmotionalMemory),
	}
}

// Add appends a memory to its character's list.
func (r *InMemoryRepo) Add(ctx context.Context, mem types.EmotionalMemory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := append(r.byChar[mem.CharacterID], mem)
	r.byChar[mem.CharacterID] = list
	r.indexByID[mem.ID] = &list[len(list)-1]
	// Appends can relocate earlier entries; refresh the index.
	for i := range list {
		r.indexByID[list[i].ID] = &list[i]
	}
	return nil
}

// ListByCharacter returns copies of the character's memories in insertion order.
func (r *InMemoryRepo) ListByCharacter(ctx context.Context, characterID string) ([]types.EmotionalMemory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.byChar[characterID]
	out := make([]types.EmotionalMemory, len(list))
	copy(out, list)
	return out, nil
}

// AddAssociation grows the association list of a stored memory.
func (r *InMemoryRepo) AddAssociation(ctx context.Context, memoryID string, assoc types.MemoryAssociation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mem, ok := r.indexByID[memoryID]
	if !ok {
		return fmt.Errorf("memory %s not found", memoryID)
	}
	mem.Associations = append(mem.Associations, assoc)
	return nil
}

// Clear drops all memories for a character.
func (r *InMemoryRepo) Clear(characterID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mem := range r.byChar[characterID] {
		delete(r.indexByID, mem.ID)
	}
	delete(r.byChar, characterID)
}
