package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/easeaico/emotion-engine/internal/memory"
	"github.com/easeaico/emotion-engine/internal/types"
)

// memoryModel maps to the emotional_memories table.
type memoryModel struct {
	ID          string `gorm:"primaryKey"`
	CharacterID string `gorm:"index"`
	// State, Context, Associations, and Tags are stored as JSONB so retrieval
	// filters stay queryable without a column per field.
	State         json.RawMessage `gorm:"type:jsonb"`
	Trigger       string
	Context       json.RawMessage `gorm:"type:jsonb"`
	Timestamp     time.Time
	Significance  float64
	Vividness     float64
	Accessibility float64
	Decay         float64
	Associations  json.RawMessage `gorm:"type:jsonb"`
	Tags          json.RawMessage `gorm:"type:jsonb"`
	// Embedding stores the trigger-text vector for semantic recall.
	Embedding *pgvector.Vector `gorm:"type:vector(768)"`
}

func (memoryModel) TableName() string {
	return "emotional_memories"
}

// MemoryRepo persists emotional memories in PostgreSQL.
type MemoryRepo struct {
	db       *gorm.DB
	embedder memory.Embedder
}

// NewMemoryRepo returns a MemoryRepo. A nil embedder disables embeddings.
func NewMemoryRepo(db *gorm.DB, embedder memory.Embedder) *MemoryRepo {
	return &MemoryRepo{db: db, embedder: embedder}
}

// Add inserts a memory, embedding its trigger text when an embedder is wired.
// Embedding failures are logged and the memory is stored without a vector.
func (r *MemoryRepo) Add(ctx context.Context, mem types.EmotionalMemory) error {
	var vector *pgvector.Vector
	if r.embedder != nil && mem.Trigger != "" {
		values, err := r.embedder.EmbedDocument(ctx, mem.Trigger)
		if err != nil {
			slog.Warn("failed to embed memory trigger", "memory_id", mem.ID, "error", err.Error())
		} else if len(values) > 0 {
			v := pgvector.NewVector(values)
			vector = &v
		}
	}

	record, err := memoryToModel(mem)
	if err != nil {
		return err
	}
	record.Embedding = vector
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert memory: %w", err)
	}
	return nil
}

// ListByCharacter returns all memories of a character, oldest first.
func (r *MemoryRepo) ListByCharacter(ctx context.Context, characterID string) ([]types.EmotionalMemory, error) {
	var records []memoryModel
	err := r.db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Order("timestamp ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}

	results := make([]types.EmotionalMemory, 0, len(records))
	for _, record := range records {
		mem, err := memoryFromModel(record)
		if err != nil {
			return nil, err
		}
		results = append(results, mem)
	}
	return results, nil
}

// AddAssociation appends an association edge to a stored memory.
func (r *MemoryRepo) AddAssociation(ctx context.Context, memoryID string, assoc types.MemoryAssociation) error {
	var record memoryModel
	if err := r.db.WithContext(ctx).First(&record, "id = ?", memoryID).Error; err != nil {
		return fmt.Errorf("failed to load memory %s: %w", memoryID, err)
	}

	var associations []types.MemoryAssociation
	if err := unmarshalJSON(record.Associations, &associations); err != nil {
		return fmt.Errorf("failed to decode associations: %w", err)
	}
	associations = append(associations, assoc)
	raw, err := marshalJSON(associations)
	if err != nil {
		return fmt.Errorf("failed to encode associations: %w", err)
	}

	err = r.db.WithContext(ctx).
		Model(&memoryModel{}).
		Where("id = ?", memoryID).
		Update("associations", raw).Error
	if err != nil {
		return fmt.Errorf("failed to update associations: %w", err)
	}
	return nil
}

// SearchSimilar retrieves memories whose trigger embedding is close to the
// query, re-ranked by significance.
func (r *MemoryRepo) SearchSimilar(ctx context.Context, characterID, query string, topK int, threshold float64) ([]types.EmotionalMemory, error) {
	if r.embedder == nil {
		return nil, nil
	}
	vec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vec) == 0 {
		return nil, nil
	}

	var records []memoryModel
	err = r.db.WithContext(ctx).Raw(`
		SELECT *, 1 - (embedding <=> ?) AS similarity
		FROM emotional_memories
		WHERE character_id = ? AND embedding IS NOT NULL
		  AND 1 - (embedding <=> ?) > ?
		ORDER BY (0.85 * (1 - (embedding <=> ?)) + 0.15 * (significance / 100)) DESC
		LIMIT ?`,
		pgvector.NewVector(vec), characterID, pgvector.NewVector(vec), threshold,
		pgvector.NewVector(vec), topK,
	).Scan(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search similar memories: %w", err)
	}

	results := make([]types.EmotionalMemory, 0, len(records))
	for _, record := range records {
		mem, err := memoryFromModel(record)
		if err != nil {
			return nil, err
		}
		results = append(results, mem)
	}
	return results, nil
}

func memoryToModel(mem types.EmotionalMemory) (memoryModel, error) {
	state, err := marshalJSON(mem.State)
	if err != nil {
		return memoryModel{}, fmt.Errorf("failed to encode memory state: %w", err)
	}
	emoCtx, err := marshalJSON(mem.Context)
	if err != nil {
		return memoryModel{}, fmt.Errorf("failed to encode memory context: %w", err)
	}
	associations, err := marshalJSON(mem.Associations)
	if err != nil {
		return memoryModel{}, fmt.Errorf("failed to encode memory associations: %w", err)
	}
	tags, err := marshalJSON(mem.Tags)
	if err != nil {
		return memoryModel{}, fmt.Errorf("failed to encode memory tags: %w", err)
	}
	return memoryModel{
		ID:            mem.ID,
		CharacterID:   mem.CharacterID,
		State:         state,
		Trigger:       mem.Trigger,
		Context:       emoCtx,
		Timestamp:     mem.Timestamp,
		Significance:  mem.Significance,
		Vividness:     mem.Vividness,
		Accessibility: mem.Accessibility,
		Decay:         mem.Decay,
		Associations:  associations,
		Tags:          tags,
	}, nil
}

func memoryFromModel(record memoryModel) (types.EmotionalMemory, error) {
	mem := types.EmotionalMemory{
		ID:            record.ID,
		CharacterID:   record.CharacterID,
		Trigger:       record.Trigger,
		Timestamp:     record.Timestamp,
		Significance:  record.Significance,
		Vividness:     record.Vividness,
		Accessibility: record.Accessibility,
		Decay:         record.Decay,
	}
	if err := unmarshalJSON(record.State, &mem.State); err != nil {
		return types.EmotionalMemory{}, fmt.Errorf("failed to decode memory state: %w", err)
	}
	if err := unmarshalJSON(record.Context, &mem.Context); err != nil {
		return types.EmotionalMemory{}, fmt.Errorf("failed to decode memory context: %w", err)
	}
	if err := unmarshalJSON(record.Associations, &mem.Associations); err != nil {
		return types.EmotionalMemory{}, fmt.Errorf("failed to decode memory associations: %w", err)
	}
	if err := unmarshalJSON(record.Tags, &mem.Tags); err != nil {
		return types.EmotionalMemory{}, fmt.Errorf("failed to decode memory tags: %w", err)
	}
	return mem, nil
}

// marshalJSON encodes a value into JSONB, returning nil for empty values.
func marshalJSON(value any) (json.RawMessage, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// unmarshalJSON decodes JSONB into the provided target.
func unmarshalJSON(data json.RawMessage, target any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}
