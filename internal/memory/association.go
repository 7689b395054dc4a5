package memory

import (
	"time"

	"github.com/easeaico/emotion-engine/internal/types"
)

// associationThreshold is the similarity above which two memories are linked.
const associationThreshold = 30.0

// sequenceWindow is the maximum gap between two memories that still reads as
// one episode.
const sequenceWindow = time.Hour

// oppositePairs lists primary emotions considered contrasting.
var oppositePairs = map[string]string{
	"joy":     "sadness",
	"sadness": "joy",
	"anger":   "fear",
	"fear":    "anger",
	"trust":   "disgust",
	"disgust": "trust",
}

// Similarity scores how related two memories are, 0-100. Primary emotion
// dominates, then secondary emotion, social setting, time of day, and shared
// tags.
func Similarity(a, b types.EmotionalMemory) float64 {
	var score float64
	if a.State.Primary == b.State.Primary {
		score += 40
	}
	if a.State.Secondary == b.State.Secondary {
		score += 20
	}
	if a.Context.SocialSetting == b.Context.SocialSetting {
		score += 15
	}
	if a.Context.TimeOfDay == b.Context.TimeOfDay {
		score += 10
	}
	score += 5 * float64(commonTagCount(a.Tags, b.Tags))
	if score > 100 {
		score = 100
	}
	return score
}

// associationType classifies a link: memories within an hour form a sequence,
// opposite primaries contrast, matching settings are contextual, and anything
// else is plain similarity.
func associationType(a, b types.EmotionalMemory) string {
	gap := a.Timestamp.Sub(b.Timestamp)
	if gap < 0 {
		gap = -gap
	}
	if gap <= sequenceWindow {
		return types.AssociationSequence
	}
	if oppositePairs[normalizeEmotion(a.State.Primary)] == normalizeEmotion(b.State.Primary) {
		return types.AssociationContrast
	}
	if a.Context.SocialSetting == b.Context.SocialSetting {
		return types.AssociationContextual
	}
	return types.AssociationSimilarity
}

// normalizeEmotion maps label aliases onto the canonical family used by the
// opposite-pair table.
func normalizeEmotion(label string) string {
	switch label {
	case "happy", "happiness", "excitement", "content", "joy":
		return "joy"
	case "sad", "melancholy", "lonely", "grief", "sadness":
		return "sadness"
	case "angry", "frustration", "irritation", "anger":
		return "anger"
	case "anxious", "anxiety", "worry", "fear":
		return "fear"
	default:
		return label
	}
}

func commonTagCount(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, tag := range a {
		set[tag] = true
	}
	count := 0
	for _, tag := range b {
		if set[tag] {
			count++
		}
	}
	return count
}
