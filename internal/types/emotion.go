// Package types holds the shared data model of the emotional state engine.
package types

import "time"

// EmotionNeutral is the label of the default resting state.
const EmotionNeutral = "neutral"

// Association types between two emotional memories.
const (
	AssociationSequence   = "sequence"
	AssociationContrast   = "contrast"
	AssociationContextual = "contextual"
	AssociationSimilarity = "similarity"
)

// Update pathway sources recorded on transitions and events.
const (
	SourceAnalysis  = "message_analysis"
	SourceDirect    = "direct_update"
	SourceImpact    = "gradual_impact"
	SourceNeed      = "need_frustration"
	SourceNormalize = "normalize"
)

// Social settings recognized by the memory accessibility formula.
const (
	SettingPrivate = "private"
	SettingPublic  = "public"
	SettingGroup   = "group"
)

// EmotionalState is the composite emotion of a character at one point in time.
// Exactly one live instance exists per character; it is always replaced whole,
// never partially mutated.
type EmotionalState struct {
	Primary     string `json:"primary"`
	Secondary   string `json:"secondary,omitempty"`
	Intensity   int    `json:"intensity"` // 1-10
	Description string `json:"description"`
}

// NeutralState returns the default state a character starts from and returns
// to on normalization.
func NeutralState() EmotionalState {
	return EmotionalState{
		Primary:     EmotionNeutral,
		Intensity:   3,
		Description: "feeling neutral",
	}
}

// Manifestations bundles the derived behavioral effects of an impact. They are
// read-only after creation.
type Manifestations struct {
	Behavioral   []string `json:"behavioral"`
	Physical     []string `json:"physical"`
	Cognitive    []string `json:"cognitive"`
	Social       []string `json:"social"`
	Motivational []string `json:"motivational"`
}

// EmotionalImpact is a time-bounded stimulus with its own decay rate. It lives
// in a character's ledger until its intensity decays to zero.
type EmotionalImpact struct {
	EmotionType    string         `json:"emotion_type"`
	Intensity      float64        `json:"intensity"` // 0-100
	Duration       time.Duration  `json:"duration"`
	FadeRate       float64        `json:"fade_rate"` // percent per minute
	Manifestations Manifestations `json:"manifestations"`
	AppliedAt      time.Time      `json:"applied_at"`
}

// EmotionalContext is an immutable snapshot of the situation at the moment an
// impact, memory, or transition was created.
type EmotionalContext struct {
	SocialSetting     string `json:"social_setting"`
	RelationshipLevel float64 `json:"relationship_level"` // 0-100
	TimeOfDay         string `json:"time_of_day"`
	Situation         string `json:"situation,omitempty"`
}

// MemoryAssociation is a weighted, typed link from one memory to another.
type MemoryAssociation struct {
	MemoryID string  `json:"memory_id"`
	Strength float64 `json:"strength"` // 0-100
	Type     string  `json:"type"`
}

// EmotionalMemory is a durably remembered state transition. Created only when
// significance exceeds the memorability threshold; append-only except for
// association growth.
type EmotionalMemory struct {
	ID            string              `json:"id"`
	CharacterID   string              `json:"character_id"`
	State         EmotionalState      `json:"state"`
	Trigger       string              `json:"trigger"`
	Context       EmotionalContext    `json:"context"`
	Timestamp     time.Time           `json:"timestamp"`
	Significance  float64             `json:"significance"`  // 0-100
	Vividness     float64             `json:"vividness"`     // 0-100
	Accessibility float64             `json:"accessibility"` // 0-100
	Decay         float64             `json:"decay"`         // 0-1, static after creation
	Associations  []MemoryAssociation `json:"associations"`
	Tags          []string            `json:"tags"`
}

// EmotionalTransition is one logged state change, recorded regardless of
// whether it produced a memory.
type EmotionalTransition struct {
	ID          string         `json:"id"`
	CharacterID string         `json:"character_id"`
	From        EmotionalState `json:"from"`
	To          EmotionalState `json:"to"`
	Trigger     string         `json:"trigger"`
	Source      string         `json:"source"`
	Timestamp   time.Time      `json:"timestamp"`
	Duration    time.Duration  `json:"duration"`
	Smoothness  float64        `json:"smoothness"`
	Resistance  float64        `json:"resistance"`
	Intensity   float64        `json:"intensity"` // |Δ composite intensity| * 10
	Pathway     []string       `json:"pathway,omitempty"`
}

// StateChangeEvent is published to the event sink on every state change.
type StateChangeEvent struct {
	CharacterID string         `json:"character_id"`
	OldState    EmotionalState `json:"old_state"`
	NewState    EmotionalState `json:"new_state"`
	Trigger     string         `json:"trigger"`
	Source      string         `json:"source"`
	Timestamp   time.Time      `json:"timestamp"`
}

// IntensityBand names an intensity on the 0-100 scale. Composite 1-10
// intensities map through ×10.
func IntensityBand(v float64) string {
	switch {
	case v <= 20:
		return "slight"
	case v <= 40:
		return "moderate"
	case v <= 60:
		return "noticeable"
	case v <= 80:
		return "strong"
	default:
		return "very strong"
	}
}

// ClampIntensity bounds a composite intensity to 1-10.
func ClampIntensity(v int) int {
	switch {
	case v < 1:
		return 1
	case v > 10:
		return 10
	default:
		return v
	}
}

// ClampScore bounds impact intensities, significance, vividness, and
// accessibility to 0-100.
func ClampScore(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// Clamp01 bounds urgency-like signals to 0-1.
func Clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
