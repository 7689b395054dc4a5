package emotion

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/easeaico/emotion-engine/internal/types"
)

// compositeFromLedger folds the active impacts into one state: the strongest
// impact wins the primary slot, the runner-up the secondary, and the summed
// intensity collapses onto the 1-10 scale. Pure function over a ledger
// snapshot; callers write the result back whole.
func compositeFromLedger(impacts []types.EmotionalImpact) types.EmotionalState {
	if len(impacts) == 0 {
		return types.NeutralState()
	}

	ranked := make([]types.EmotionalImpact, len(impacts))
	copy(ranked, impacts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Intensity > ranked[j].Intensity
	})

	var total float64
	for _, impact := range ranked {
		total += impact.Intensity
	}
	if total > 100 {
		total = 100
	}

	state := types.EmotionalState{
		Primary:   ranked[0].EmotionType,
		Intensity: types.ClampIntensity(int(math.Round(total / 10))),
	}
	var secondaries []string
	for _, impact := range ranked[1:] {
		if impact.EmotionType != state.Primary {
			secondaries = append(secondaries, impact.EmotionType)
		}
	}
	if len(secondaries) > 0 {
		state.Secondary = secondaries[0]
	}
	state.Description = describeState(total, state.Primary, secondaries)
	return state
}

// describeState renders the intensity band, the dominant emotion, and any
// secondary labels into the derived description text.
func describeState(total float64, primary string, secondaries []string) string {
	desc := fmt.Sprintf("feeling %s %s", types.IntensityBand(total), primary)
	if len(secondaries) > 0 {
		desc += ", tinged with " + strings.Join(secondaries, ", ")
	}
	return desc
}

// buildState assembles a pathway-produced state with its derived description.
func buildState(primary, secondary string, intensity int) types.EmotionalState {
	intensity = types.ClampIntensity(intensity)
	var secondaries []string
	if secondary != "" && secondary != primary {
		secondaries = append(secondaries, secondary)
	} else {
		secondary = ""
	}
	return types.EmotionalState{
		Primary:     primary,
		Secondary:   secondary,
		Intensity:   intensity,
		Description: describeState(float64(intensity)*10, primary, secondaries),
	}
}
