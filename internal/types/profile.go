package types

import "time"

// Vulnerability marks an emotion the character is disproportionately affected by.
type Vulnerability struct {
	Emotion string  `json:"emotion"`
	Level   float64 `json:"level"` // 0-100
	Source  string  `json:"source,omitempty"`
}

// Strength marks an emotion the character handles or expresses well.
type Strength struct {
	Emotion string  `json:"emotion"`
	Level   float64 `json:"level"` // 0-100
}

// EmotionalProfile is a character's baseline disposition. One per character,
// lazily created on first access, updated by partial merge.
type EmotionalProfile struct {
	CharacterID string `json:"character_id"`
	// BaselineEmotions weights the character's resting emotional palette.
	BaselineEmotions map[string]float64 `json:"baseline_emotions"`
	// EmotionalRange is how far each emotion can swing, 0-100 per emotion.
	EmotionalRange map[string]float64 `json:"emotional_range"`
	// EmotionalAccessibility is how readily each emotion surfaces, 0-100.
	EmotionalAccessibility map[string]float64 `json:"emotional_accessibility"`
	// Regulation maps regulation strategies to effectiveness, 0-1.
	Regulation      map[string]float64 `json:"regulation"`
	Vulnerabilities []Vulnerability    `json:"vulnerabilities"`
	Strengths       []Strength         `json:"strengths"`
	Adaptability    float64            `json:"adaptability"`   // 0-1
	Resilience      float64            `json:"resilience"`     // 0-1
	Sensitivity     float64            `json:"sensitivity"`    // 0-1
	Expressiveness  float64            `json:"expressiveness"` // 0-1
	UpdatedAt       time.Time          `json:"updated_at"`
}

// ProfileUpdate is a partial profile change; nil fields are left untouched.
type ProfileUpdate struct {
	BaselineEmotions       map[string]float64 `json:"baseline_emotions,omitempty"`
	EmotionalRange         map[string]float64 `json:"emotional_range,omitempty"`
	EmotionalAccessibility map[string]float64 `json:"emotional_accessibility,omitempty"`
	Regulation             map[string]float64 `json:"regulation,omitempty"`
	Vulnerabilities        []Vulnerability    `json:"vulnerabilities,omitempty"`
	Strengths              []Strength         `json:"strengths,omitempty"`
	Adaptability           *float64           `json:"adaptability,omitempty"`
	Resilience             *float64           `json:"resilience,omitempty"`
	Sensitivity            *float64           `json:"sensitivity,omitempty"`
	Expressiveness         *float64           `json:"expressiveness,omitempty"`
}
