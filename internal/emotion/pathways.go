package emotion

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/easeaico/emotion-engine/internal/events"
	"github.com/easeaico/emotion-engine/internal/types"
)

// needFrustrationFloor is the frustration level below which the need pathway
// does nothing.
const needFrustrationFloor = 50.0

// needEmotionWeights maps each need type to the emotions its frustration
// evokes. Unknown need types carry no mappable emotion and are skipped.
var needEmotionWeights = map[string]map[string]float64{
	types.NeedAffection:   {"sad": 0.9, "lonely": 0.7},
	types.NeedSocial:      {"lonely": 0.8, "sad": 0.5},
	types.NeedRest:        {"tired": 0.9, "irritation": 0.6},
	types.NeedStimulation: {"bored": 0.8, "restless": 0.5},
	types.NeedSafety:      {"fear": 0.9, "anxious": 0.7},
}

// ProcessAnalysis applies a message-analysis update: the expected emotional
// response becomes the new primary/secondary pair and the urgency pulls the
// intensity toward its own scale. Malformed analysis fields fall back to
// neutral defaults, never to an error.
func (e *Engine) ProcessAnalysis(ctx context.Context, characterID string, analysis types.MessageAnalysis, trigger string, emoCtx types.EmotionalContext) (types.EmotionalState, error) {
	ent, err := e.entryFor(ctx, characterID)
	if err != nil {
		return types.EmotionalState{}, err
	}

	analysis.Urgency = types.Clamp01(analysis.Urgency)
	analysis.EmotionalAnalysis.EmotionalIntensity = types.Clamp01(analysis.EmotionalAnalysis.EmotionalIntensity)
	primary, secondary := parseEmotionList(analysis.EmotionalAnalysis.ExpectedEmotionalResponse)

	ent.mu.Lock()
	old := ent.state
	intensity := int(math.Round((float64(old.Intensity) + math.Round(analysis.Urgency*10)) / 2))
	newState := buildState(primary, secondary, intensity)
	ent.state = newState
	ent.context = emoCtx
	ent.mu.Unlock()

	e.finish(ctx, characterID, old, newState, trigger, types.SourceAnalysis, emoCtx,
		analysisSignificance(old, newState, analysis))
	return newState, nil
}

// ApplyDirectUpdate applies explicit emotion magnitudes: the strongest becomes
// the primary, the runner-up the secondary. An empty update is a no-op.
func (e *Engine) ApplyDirectUpdate(ctx context.Context, characterID string, update types.DirectUpdate, emoCtx types.EmotionalContext) (types.EmotionalState, error) {
	ent, err := e.entryFor(ctx, characterID)
	if err != nil {
		return types.EmotionalState{}, err
	}
	if len(update.Emotions) == 0 {
		ent.mu.Lock()
		defer ent.mu.Unlock()
		return ent.state, nil
	}

	primary, secondary, maxMagnitude := rankEmotions(update.Emotions)
	intensity := types.ClampIntensity(int(math.Round(maxMagnitude / 10)))

	ent.mu.Lock()
	old := ent.state
	newState := buildState(primary, secondary, intensity)
	ent.state = newState
	ent.context = emoCtx
	ent.mu.Unlock()

	trigger := update.Description
	if trigger == "" {
		trigger = "direct emotional update"
	}
	e.finish(ctx, characterID, old, newState, trigger, types.SourceDirect, emoCtx,
		directSignificance(old, newState, maxMagnitude, update.Description != ""))
	return newState, nil
}

// ProcessNeeds reads the character's need snapshots and reacts to the most
// frustrated one. Needs below the frustration floor, and need types with no
// emotion mapping, leave the state untouched.
func (e *Engine) ProcessNeeds(ctx context.Context, characterID string, emoCtx types.EmotionalContext) (types.EmotionalState, error) {
	ent, err := e.entryFor(ctx, characterID)
	if err != nil {
		return types.EmotionalState{}, err
	}
	if e.needs == nil {
		ent.mu.Lock()
		defer ent.mu.Unlock()
		return ent.state, nil
	}

	needs, err := e.needs.ActiveNeeds(ctx, characterID)
	if err != nil {
		slog.Warn("failed to read active needs", "character_id", characterID, "error", err.Error())
		ent.mu.Lock()
		defer ent.mu.Unlock()
		return ent.state, nil
	}

	need, ok := mostFrustrated(needs)
	if !ok {
		ent.mu.Lock()
		defer ent.mu.Unlock()
		return ent.state, nil
	}
	weights, ok := needEmotionWeights[need.Type]
	if !ok {
		ent.mu.Lock()
		defer ent.mu.Unlock()
		return ent.state, nil
	}

	primary, secondary, _ := rankEmotions(weights)
	intensity := types.ClampIntensity(
		int(math.Round(need.FrustrationLevel/10)) + int(math.Floor(need.CurrentValue/25)))

	ent.mu.Lock()
	old := ent.state
	newState := buildState(primary, secondary, intensity)
	ent.state = newState
	ent.context = emoCtx
	ent.mu.Unlock()

	e.finish(ctx, characterID, old, newState, "frustrated "+strings.ToLower(need.Type)+" need", types.SourceNeed, emoCtx,
		needSignificance(old, newState, need.FrustrationLevel))
	return newState, nil
}

// finish runs the shared tail of every update pathway: significance-gated
// memory formation, the transition record, and the outbound event. Memory
// creation failures are logged, not propagated, and nothing rolls back.
func (e *Engine) finish(ctx context.Context, characterID string, old, newState types.EmotionalState, trigger, source string, emoCtx types.EmotionalContext, significance float64) {
	if significance > memorabilityThreshold && e.memories != nil {
		if _, err := e.memories.Create(ctx, characterID, newState, trigger, emoCtx, significance); err != nil {
			slog.Warn("failed to create emotional memory", "character_id", characterID, "source", source, "error", err.Error())
		}
	}
	e.record(ctx, characterID, old, newState, trigger, source)
	e.publish(ctx, events.TopicStateChanged, types.StateChangeEvent{
		CharacterID: characterID,
		OldState:    old,
		NewState:    newState,
		Trigger:     trigger,
		Source:      source,
		Timestamp:   e.now(),
	})
}

// parseEmotionList splits the analyzer's expected response on commas. A blank
// response defaults to neutral.
func parseEmotionList(response string) (primary, secondary string) {
	var labels []string
	for _, part := range strings.Split(response, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			labels = append(labels, part)
		}
	}
	if len(labels) == 0 {
		return types.EmotionNeutral, ""
	}
	if len(labels) == 1 {
		return labels[0], ""
	}
	return labels[0], labels[1]
}

// rankEmotions picks the strongest and second-strongest distinct emotions.
// Ties break alphabetically so the outcome is deterministic.
func rankEmotions(weights map[string]float64) (primary, secondary string, max float64) {
	labels := make([]string, 0, len(weights))
	for label := range weights {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if weights[labels[i]] != weights[labels[j]] {
			return weights[labels[i]] > weights[labels[j]]
		}
		return labels[i] < labels[j]
	})
	primary = labels[0]
	max = weights[primary]
	if len(labels) > 1 {
		secondary = labels[1]
	}
	return primary, secondary, max
}

// mostFrustrated selects the need with the highest frustration at or above
// the floor.
func mostFrustrated(needs []types.NeedState) (types.NeedState, bool) {
	var best types.NeedState
	found := false
	for _, need := range needs {
		if need.FrustrationLevel < needFrustrationFloor {
			continue
		}
		if !found || need.FrustrationLevel > best.FrustrationLevel {
			best = need
			found = true
		}
	}
	return best, found
}
