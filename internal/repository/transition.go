package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/easeaico/emotion-engine/internal/types"
)

// transitionModel maps to the emotional_transitions table.
type transitionModel struct {
	ID          string          `gorm:"primaryKey"`
	CharacterID string          `gorm:"index"`
	FromState   json.RawMessage `gorm:"type:jsonb"`
	ToState     json.RawMessage `gorm:"type:jsonb"`
	Trigger     string
	Source      string
	Timestamp   time.Time `gorm:"index"`
	DurationMS  int64
	Smoothness  float64
	Resistance  float64
	Intensity   float64
	Pathway     json.RawMessage `gorm:"type:jsonb"`
}

func (transitionModel) TableName() string {
	return "emotional_transitions"
}

// TransitionRepo persists transition history in PostgreSQL.
type TransitionRepo struct {
	db *gorm.DB
}

// NewTransitionRepo returns a TransitionRepo.
func NewTransitionRepo(db *gorm.DB) *TransitionRepo {
	return &TransitionRepo{db: db}
}

// Append inserts a transition row.
func (r *TransitionRepo) Append(ctx context.Context, transition types.EmotionalTransition) error {
	fromState, err := marshalJSON(transition.From)
	if err != nil {
		return fmt.Errorf("failed to encode from state: %w", err)
	}
	toState, err := marshalJSON(transition.To)
	if err != nil {
		return fmt.Errorf("failed to encode to state: %w", err)
	}
	pathway, err := marshalJSON(transition.Pathway)
	if err != nil {
		return fmt.Errorf("failed to encode pathway: %w", err)
	}

	record := transitionModel{
		ID:          transition.ID,
		CharacterID: transition.CharacterID,
		FromState:   fromState,
		ToState:     toState,
		Trigger:     transition.Trigger,
		Source:      transition.Source,
		Timestamp:   transition.Timestamp,
		DurationMS:  transition.Duration.Milliseconds(),
		Smoothness:  transition.Smoothness,
		Resistance:  transition.Resistance,
		Intensity:   transition.Intensity,
		Pathway:     pathway,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert transition: %w", err)
	}
	return nil
}

// List returns transitions in the time range, oldest first, capped at the
// most recent limit entries.
func (r *TransitionRepo) List(ctx context.Context, characterID string, after, before time.Time, limit int) ([]types.EmotionalTransition, error) {
	query := r.db.WithContext(ctx).Where("character_id = ?", characterID)
	if !after.IsZero() {
		query = query.Where("timestamp >= ?", after)
	}
	if !before.IsZero() {
		query = query.Where("timestamp <= ?", before)
	}
	query = query.Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []transitionModel
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}

	results := make([]types.EmotionalTransition, 0, len(records))
	for _, record := range records {
		transition := types.EmotionalTransition{
			ID:          record.ID,
			CharacterID: record.CharacterID,
			Trigger:     record.Trigger,
			Source:      record.Source,
			Timestamp:   record.Timestamp,
			Duration:    time.Duration(record.DurationMS) * time.Millisecond,
			Smoothness:  record.Smoothness,
			Resistance:  record.Resistance,
			Intensity:   record.Intensity,
		}
		if err := unmarshalJSON(record.FromState, &transition.From); err != nil {
			return nil, fmt.Errorf("failed to decode from state: %w", err)
		}
		if err := unmarshalJSON(record.ToState, &transition.To); err != nil {
			return nil, fmt.Errorf("failed to decode to state: %w", err)
		}
		if err := unmarshalJSON(record.Pathway, &transition.Pathway); err != nil {
			return nil, fmt.Errorf("failed to decode pathway: %w", err)
		}
		results = append(results, transition)
	}

	// Oldest -> newest
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results, nil
}
