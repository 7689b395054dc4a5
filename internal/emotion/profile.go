package emotion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/easeaico/emotion-engine/internal/types"
)

// ProfileRepo stores per-character emotional profiles.
type ProfileRepo interface {
	// Get returns the stored profile or nil when none exists.
	Get(ctx context.Context, characterID string) (*types.EmotionalProfile, error)
	Save(ctx context.Context, profile types.EmotionalProfile) error
}

// Profile returns the character's emotional profile, creating the default
// disposition on first access.
func (e *Engine) Profile(ctx context.Context, characterID string) (types.EmotionalProfile, error) {
	if _, err := e.entryFor(ctx, characterID); err != nil {
		return types.EmotionalProfile{}, err
	}

	existing, err := e.profiles.Get(ctx, characterID)
	if err != nil {
		return types.EmotionalProfile{}, fmt.Errorf("failed to load profile: %w", err)
	}
	if existing != nil {
		return *existing, nil
	}

	profile := defaultProfile(characterID, e.now())
	if err := e.profiles.Save(ctx, profile); err != nil {
		return types.EmotionalProfile{}, fmt.Errorf("failed to save default profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile merges the partial update into the stored profile. Absent
// fields are left untouched.
func (e *Engine) UpdateProfile(ctx context.Context, characterID string, update types.ProfileUpdate) (types.EmotionalProfile, error) {
	profile, err := e.Profile(ctx, characterID)
	if err != nil {
		return types.EmotionalProfile{}, err
	}

	profile.BaselineEmotions = mergeWeights(profile.BaselineEmotions, update.BaselineEmotions)
	profile.EmotionalRange = mergeWeights(profile.EmotionalRange, update.EmotionalRange)
	profile.EmotionalAccessibility = mergeWeights(profile.EmotionalAccessibility, update.EmotionalAccessibility)
	profile.Regulation = mergeWeights(profile.Regulation, update.Regulation)
	if update.Vulnerabilities != nil {
		profile.Vulnerabilities = update.Vulnerabilities
	}
	if update.Strengths != nil {
		profile.Strengths = update.Strengths
	}
	if update.Adaptability != nil {
		profile.Adaptability = types.Clamp01(*update.Adaptability)
	}
	if update.Resilience != nil {
		profile.Resilience = types.Clamp01(*update.Resilience)
	}
	if update.Sensitivity != nil {
		profile.Sensitivity = types.Clamp01(*update.Sensitivity)
	}
	if update.Expressiveness != nil {
		profile.Expressiveness = types.Clamp01(*update.Expressiveness)
	}
	profile.UpdatedAt = e.now()

	if err := e.profiles.Save(ctx, profile); err != nil {
		return types.EmotionalProfile{}, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}

// mergeWeights overlays src on a copy of base. The stored profile's maps are
// never written through; a failed save leaves them untouched.
func mergeWeights(base, src map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(base)+len(src))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range src {
		out[key] = value
	}
	return out
}

// defaultProfile is the lazily-created baseline disposition.
func defaultProfile(characterID string, now time.Time) types.EmotionalProfile {
	return types.EmotionalProfile{
		CharacterID: characterID,
		BaselineEmotions: map[string]float64{
			"neutral": 0.6,
			"joy":     0.3,
			"sadness": 0.1,
		},
		EmotionalRange: map[string]float64{
			"joy":     70,
			"sadness": 60,
			"anger":   50,
			"fear":    50,
		},
		EmotionalAccessibility: map[string]float64{
			"joy":     80,
			"sadness": 60,
			"anger":   40,
			"fear":    50,
		},
		Regulation: map[string]float64{
			"reappraisal": 0.6,
			"distraction": 0.5,
			"suppression": 0.3,
		},
		Vulnerabilities: []types.Vulnerability{},
		Strengths:       []types.Strength{},
		Adaptability:    0.5,
		Resilience:      0.5,
		Sensitivity:     0.5,
		Expressiveness:  0.5,
		UpdatedAt:       now,
	}
}

// InMemoryProfileRepo keeps profiles in a mutex-guarded map.
type InMemoryProfileRepo struct {
	mu       sync.RWMutex
	profiles map[string]types.EmotionalProfile
}

// NewInMemoryProfileRepo returns an empty repo.
func NewInMemoryProfileRepo() *InMemoryProfileRepo {
	return &InMemoryProfileRepo{profiles: make(map[string]types.EmotionalProfile)}
}

// Get returns the stored profile or nil.
func (r *InMemoryProfileRepo) Get(ctx context.Context, characterID string) (*types.EmotionalProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[characterID]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

// Save stores the profile, replacing any previous version.
func (r *InMemoryProfileRepo) Save(ctx context.Context, profile types.EmotionalProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.CharacterID] = profile
	return nil
}
