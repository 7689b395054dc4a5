package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/easeaico/emotion-engine/internal/types"
)

// Filter narrows memory retrieval. Zero values leave a dimension unfiltered.
type Filter struct {
	Emotions        []string
	After           time.Time
	Before          time.Time
	MinSignificance float64
	MaxSignificance float64
	Tags            []string
}

// Recent returns up to limit memories matching the filter, ranked by
// significance × accessibility × (1 − decay), strongest first.
func (s *Service) Recent(ctx context.Context, characterID string, filter Filter, limit int) ([]types.EmotionalMemory, error) {
	if s.memories == nil {
		return nil, fmt.Errorf("memory repo is nil")
	}
	if limit <= 0 {
		limit = 10
	}

	all, err := s.memories.ListByCharacter(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}

	var matched []types.EmotionalMemory
	for _, mem := range all {
		if filter.matches(mem) {
			matched = append(matched, mem)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return recallScore(matched[i]) > recallScore(matched[j])
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func recallScore(mem types.EmotionalMemory) float64 {
	return mem.Significance * mem.Accessibility * (1 - mem.Decay)
}

func (f Filter) matches(mem types.EmotionalMemory) bool {
	if len(f.Emotions) > 0 && !containsAny(f.Emotions, mem.State.Primary, mem.State.Secondary) {
		return false
	}
	if !f.After.IsZero() && mem.Timestamp.Before(f.After) {
		return false
	}
	if !f.Before.IsZero() && mem.Timestamp.After(f.Before) {
		return false
	}
	if mem.Significance < f.MinSignificance {
		return false
	}
	if f.MaxSignificance > 0 && mem.Significance > f.MaxSignificance {
		return false
	}
	if len(f.Tags) > 0 && commonTagCount(f.Tags, mem.Tags) == 0 {
		return false
	}
	return true
}

func containsAny(set []string, values ...string) bool {
	for _, want := range set {
		for _, have := range values {
			if have != "" && want == have {
				return true
			}
		}
	}
	return false
}
