package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/easeaico/emotion-engine/internal/emotion"
	"github.com/easeaico/emotion-engine/internal/types"
)

// characterModel maps to the characters table.
type characterModel struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Persona   string
	CreatedAt time.Time
}

func (characterModel) TableName() string {
	return "characters"
}

// CharacterRepo is the PostgreSQL character directory.
type CharacterRepo struct {
	db *gorm.DB
}

// NewCharacterRepo returns a CharacterRepo.
func NewCharacterRepo(db *gorm.DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

// Lookup fetches a character by id. A missing row maps to the engine's
// not-found sentinel.
func (r *CharacterRepo) Lookup(ctx context.Context, characterID string) (*types.Character, error) {
	var record characterModel
	err := r.db.WithContext(ctx).First(&record, "id = ?", characterID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, emotion.ErrCharacterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get character by id: %w", err)
	}
	return &types.Character{
		ID:        record.ID,
		Name:      record.Name,
		Persona:   record.Persona,
		CreatedAt: record.CreatedAt,
	}, nil
}

// Create inserts a character record.
func (r *CharacterRepo) Create(ctx context.Context, character types.Character) error {
	record := characterModel{
		ID:        character.ID,
		Name:      character.Name,
		Persona:   character.Persona,
		CreatedAt: character.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert character: %w", err)
	}
	return nil
}
