package types

import "time"

// Need types the engine can map to emotional responses.
const (
	NeedAffection   = "AFFECTION"
	NeedSocial      = "SOCIAL"
	NeedRest        = "REST"
	NeedStimulation = "STIMULATION"
	NeedSafety      = "SAFETY"
)

// NeedState is a read-only snapshot from the needs source.
type NeedState struct {
	Type             string  `json:"type"`
	CurrentValue     float64 `json:"current_value"`     // 0-100
	FrustrationLevel float64 `json:"frustration_level"` // 0-100
}

// EmotionalAnalysis is the emotion block of an upstream message analysis.
type EmotionalAnalysis struct {
	UserMood                  string   `json:"user_mood"`
	ExpectedEmotionalResponse string   `json:"expected_emotional_response"`
	EmotionalIntensity        float64  `json:"emotional_intensity"` // 0-1
	TriggerEmotions           []string `json:"trigger_emotions"`
}

// MessageAnalysis is the structured output of the upstream analyzer, passed to
// the engine by value. The engine never calls back into the analyzer.
type MessageAnalysis struct {
	Urgency           float64           `json:"urgency"` // 0-1
	EmotionalAnalysis EmotionalAnalysis `json:"emotional_analysis"`
}

// DirectUpdate carries explicit emotion magnitudes for the direct pathway.
type DirectUpdate struct {
	Emotions    map[string]float64 `json:"emotions"` // emotion -> 0-100
	Description string             `json:"description,omitempty"`
}

// Character is the directory record the engine validates against before
// creating a default state.
type Character struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Persona   string    `json:"persona,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
