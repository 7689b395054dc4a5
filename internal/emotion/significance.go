package emotion

import (
	"math"

	"github.com/easeaico/emotion-engine/internal/types"
)

// memorabilityThreshold gates memory formation: a transition becomes a memory
// only when its significance strictly exceeds this value.
const memorabilityThreshold = 30.0

func intensityShift(old, new types.EmotionalState) float64 {
	return math.Abs(float64(new.Intensity - old.Intensity))
}

// analysisSignificance scores a message-analysis transition from the intensity
// shift, a primary-emotion change, and the upstream urgency and intensity
// signals.
func analysisSignificance(old, new types.EmotionalState, analysis types.MessageAnalysis) float64 {
	score := intensityShift(old, new) * 10
	if new.Primary != old.Primary {
		score += 30
	}
	score += analysis.Urgency * 20
	score += analysis.EmotionalAnalysis.EmotionalIntensity * 25
	return types.ClampScore(score)
}

// directSignificance scores a direct update, substituting the strongest
// requested magnitude for the analyzer's intensity signal and rewarding an
// explicit description.
func directSignificance(old, new types.EmotionalState, maxMagnitude float64, described bool) float64 {
	score := intensityShift(old, new) * 10
	if new.Primary != old.Primary {
		score += 30
	}
	score += maxMagnitude / 100 * 25
	if described {
		score += 15
	}
	return types.ClampScore(score)
}

// needSignificance scores a need-driven transition with the frustration level
// standing in for upstream intensity.
func needSignificance(old, new types.EmotionalState, frustration float64) float64 {
	score := intensityShift(old, new) * 10
	if new.Primary != old.Primary {
		score += 30
	}
	score += frustration / 100 * 25
	return types.ClampScore(score)
}
