package emotion

import (
	"context"

	"github.com/easeaico/emotion-engine/internal/events"
	"github.com/easeaico/emotion-engine/internal/types"
)

// emotionFamily is the closed taxonomy behind manifestation derivation.
// Free-text labels normalize onto a family; anything unrecognized is neutral.
type emotionFamily int

const (
	familyNeutral emotionFamily = iota
	familyJoy
	familySadness
	familyAnger
	familyFear
)

func familyOf(label string) emotionFamily {
	switch label {
	case "joy", "happy", "happiness", "excitement", "content":
		return familyJoy
	case "sadness", "sad", "melancholy", "lonely", "grief":
		return familySadness
	case "anger", "angry", "frustration", "irritation":
		return familyAnger
	case "fear", "anxious", "anxiety", "worry":
		return familyFear
	default:
		return familyNeutral
	}
}

// manifestationTable maps each family to its effect bundles. The switch over
// emotionFamily below is exhaustive; new families must extend both.
var manifestationTable = map[emotionFamily]types.Manifestations{
	familyJoy: {
		Behavioral:   []string{"animated gestures", "quick to laugh"},
		Physical:     []string{"relaxed posture", "bright expression"},
		Cognitive:    []string{"optimistic framing", "broad attention"},
		Social:       []string{"seeks company", "openly affectionate"},
		Motivational: []string{"eager to start things"},
	},
	familySadness: {
		Behavioral:   []string{"slowed movements", "long pauses"},
		Physical:     []string{"slumped shoulders", "low energy"},
		Cognitive:    []string{"dwells on losses", "narrowed attention"},
		Social:       []string{"withdraws from conversation"},
		Motivational: []string{"little initiative"},
	},
	familyAnger: {
		Behavioral:   []string{"clipped speech", "restless pacing"},
		Physical:     []string{"tense jaw", "raised voice"},
		Cognitive:    []string{"fixates on the provocation"},
		Social:       []string{"confrontational", "short-tempered with others"},
		Motivational: []string{"driven to act immediately"},
	},
	familyFear: {
		Behavioral:   []string{"startles easily", "avoids the subject"},
		Physical:     []string{"shallow breathing", "fidgeting"},
		Cognitive:    []string{"scans for threats", "worst-case thinking"},
		Social:       []string{"stays close to trusted people"},
		Motivational: []string{"avoids risk"},
	},
	familyNeutral: {
		Behavioral:   []string{"even-paced"},
		Physical:     []string{"settled posture"},
		Cognitive:    []string{"balanced attention"},
		Social:       []string{"ordinary engagement"},
		Motivational: []string{"steady"},
	},
}

// deriveManifestations resolves the effect bundles for an impact. The context
// snapshot shades the social bundle: outside private settings the character
// moderates its expression.
func deriveManifestations(emotionType string, emoCtx types.EmotionalContext) types.Manifestations {
	m := manifestationTable[familyOf(emotionType)]
	out := types.Manifestations{
		Behavioral:   append([]string(nil), m.Behavioral...),
		Physical:     append([]string(nil), m.Physical...),
		Cognitive:    append([]string(nil), m.Cognitive...),
		Social:       append([]string(nil), m.Social...),
		Motivational: append([]string(nil), m.Motivational...),
	}
	if emoCtx.SocialSetting != "" && emoCtx.SocialSetting != types.SettingPrivate {
		out.Social = append(out.Social, "moderates expression in company")
	}
	return out
}

// ApplyImpact appends a gradual impact to the character's ledger, derives its
// manifestations, ensures the decay timer is running, and returns the
// recomputed composite state.
func (e *Engine) ApplyImpact(ctx context.Context, characterID string, impact types.EmotionalImpact, emoCtx types.EmotionalContext) (types.EmotionalState, error) {
	ent, err := e.entryFor(ctx, characterID)
	if err != nil {
		return types.EmotionalState{}, err
	}

	impact.Intensity = types.ClampScore(impact.Intensity)
	impact.Manifestations = deriveManifestations(impact.EmotionType, emoCtx)
	impact.AppliedAt = e.now()

	ent.mu.Lock()
	old := ent.state
	ent.impacts = append(ent.impacts, impact)
	ent.context = emoCtx
	ent.state = compositeFromLedger(ent.impacts)
	newState := ent.state
	e.startDecayLocked(characterID, ent)
	ent.mu.Unlock()

	e.record(ctx, characterID, old, newState, impact.EmotionType, types.SourceImpact)
	e.publish(ctx, events.TopicStateChanged, types.StateChangeEvent{
		CharacterID: characterID,
		OldState:    old,
		NewState:    newState,
		Trigger:     impact.EmotionType,
		Source:      types.SourceImpact,
		Timestamp:   e.now(),
	})
	return newState, nil
}
