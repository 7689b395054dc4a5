package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/easeaico/emotion-engine/internal/types"
)

// profileModel maps to the emotional_profiles table.
type profileModel struct {
	CharacterID            string          `gorm:"primaryKey"`
	BaselineEmotions       json.RawMessage `gorm:"type:jsonb"`
	EmotionalRange         json.RawMessage `gorm:"type:jsonb"`
	EmotionalAccessibility json.RawMessage `gorm:"type:jsonb"`
	Regulation             json.RawMessage `gorm:"type:jsonb"`
	Vulnerabilities        json.RawMessage `gorm:"type:jsonb"`
	Strengths              json.RawMessage `gorm:"type:jsonb"`
	Adaptability           float64
	Resilience             float64
	Sensitivity            float64
	Expressiveness         float64
	UpdatedAt              time.Time
}

func (profileModel) TableName() string {
	return "emotional_profiles"
}

// ProfileRepo persists emotional profiles in PostgreSQL.
type ProfileRepo struct {
	db *gorm.DB
}

// NewProfileRepo returns a ProfileRepo.
func NewProfileRepo(db *gorm.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Get returns the stored profile, or nil when none exists.
func (r *ProfileRepo) Get(ctx context.Context, characterID string) (*types.EmotionalProfile, error) {
	var record profileModel
	err := r.db.WithContext(ctx).First(&record, "character_id = ?", characterID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile := types.EmotionalProfile{
		CharacterID:    record.CharacterID,
		Adaptability:   record.Adaptability,
		Resilience:     record.Resilience,
		Sensitivity:    record.Sensitivity,
		Expressiveness: record.Expressiveness,
		UpdatedAt:      record.UpdatedAt,
	}
	if err := unmarshalJSON(record.BaselineEmotions, &profile.BaselineEmotions); err != nil {
		return nil, fmt.Errorf("failed to decode baseline emotions: %w", err)
	}
	if err := unmarshalJSON(record.EmotionalRange, &profile.EmotionalRange); err != nil {
		return nil, fmt.Errorf("failed to decode emotional range: %w", err)
	}
	if err := unmarshalJSON(record.EmotionalAccessibility, &profile.EmotionalAccessibility); err != nil {
		return nil, fmt.Errorf("failed to decode emotional accessibility: %w", err)
	}
	if err := unmarshalJSON(record.Regulation, &profile.Regulation); err != nil {
		return nil, fmt.Errorf("failed to decode regulation: %w", err)
	}
	if err := unmarshalJSON(record.Vulnerabilities, &profile.Vulnerabilities); err != nil {
		return nil, fmt.Errorf("failed to decode vulnerabilities: %w", err)
	}
	if err := unmarshalJSON(record.Strengths, &profile.Strengths); err != nil {
		return nil, fmt.Errorf("failed to decode strengths: %w", err)
	}
	return &profile, nil
}

// Save upserts the profile.
func (r *ProfileRepo) Save(ctx context.Context, profile types.EmotionalProfile) error {
	baseline, err := marshalJSON(profile.BaselineEmotions)
	if err != nil {
		return fmt.Errorf("failed to encode baseline emotions: %w", err)
	}
	emotionalRange, err := marshalJSON(profile.EmotionalRange)
	if err != nil {
		return fmt.Errorf("failed to encode emotional range: %w", err)
	}
	accessibility, err := marshalJSON(profile.EmotionalAccessibility)
	if err != nil {
		return fmt.Errorf("failed to encode emotional accessibility: %w", err)
	}
	regulation, err := marshalJSON(profile.Regulation)
	if err != nil {
		return fmt.Errorf("failed to encode regulation: %w", err)
	}
	vulnerabilities, err := marshalJSON(profile.Vulnerabilities)
	if err != nil {
		return fmt.Errorf("failed to encode vulnerabilities: %w", err)
	}
	strengths, err := marshalJSON(profile.Strengths)
	if err != nil {
		return fmt.Errorf("failed to encode strengths: %w", err)
	}

	record := profileModel{
		CharacterID:            profile.CharacterID,
		BaselineEmotions:       baseline,
		EmotionalRange:         emotionalRange,
		EmotionalAccessibility: accessibility,
		Regulation:             regulation,
		Vulnerabilities:        vulnerabilities,
		Strengths:              strengths,
		Adaptability:           profile.Adaptability,
		Resilience:             profile.Resilience,
		Sensitivity:            profile.Sensitivity,
		Expressiveness:         profile.Expressiveness,
		UpdatedAt:              profile.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
