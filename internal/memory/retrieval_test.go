package memory

import (
	"context"
	"testing"
	"time"

	"github.com/easeaico/emotion-engine/internal/types"
)

func seedMemory(t *testing.T, repo *InMemoryRepo, mem types.EmotionalMemory) {
	t.Helper()
	if err := repo.Add(context.Background(), mem); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestRecentRanksByRecallScore(t *testing.T) {
	repo := NewInMemoryRepo()
	service := NewService(repo)
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	seedMemory(t, repo, types.EmotionalMemory{
		ID: "weak", CharacterID: "alice", Timestamp: at,
		Significance: 50, Accessibility: 100, Decay: 0,
	})
	seedMemory(t, repo, types.EmotionalMemory{
		ID: "strong", CharacterID: "alice", Timestamp: at,
		Significance: 90, Accessibility: 100, Decay: 0,
	})
	seedMemory(t, repo, types.EmotionalMemory{
		ID: "faded", CharacterID: "alice", Timestamp: at,
		Significance: 100, Accessibility: 100, Decay: 0.9,
	})

	got, err := service.Recent(context.Background(), "alice", Filter{}, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 memories, got %d", len(got))
	}
	if got[0].ID != "strong" || got[1].ID != "weak" || got[2].ID != "faded" {
		t.Fatalf("unexpected order: %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	repo := NewInMemoryRepo()
	service := NewService(repo)
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for _, id := range []string{"a", "b", "c"} {
		seedMemory(t, repo, types.EmotionalMemory{
			ID: id, CharacterID: "alice", Timestamp: at,
			Significance: 50, Accessibility: 50,
		})
	}

	got, err := service.Recent(context.Background(), "alice", Filter{}, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 memories, got %d", len(got))
	}
}

func TestRecentFiltersByEmotion(t *testing.T) {
	repo := NewInMemoryRepo()
	service := NewService(repo)
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	seedMemory(t, repo, types.EmotionalMemory{
		ID: "happy", CharacterID: "alice", Timestamp: at,
		State:        types.EmotionalState{Primary: "joy"},
		Significance: 50, Accessibility: 50,
	})
	seedMemory(t, repo, types.EmotionalMemory{
		ID: "tinged", CharacterID: "alice", Timestamp: at,
		State:        types.EmotionalState{Primary: "sadness", Secondary: "joy"},
		Significance: 50, Accessibility: 50,
	})
	seedMemory(t, repo, types.EmotionalMemory{
		ID: "scared", CharacterID: "alice", Timestamp: at,
		State:        types.EmotionalState{Primary: "fear"},
		Significance: 50, Accessibility: 50,
	})

	got, err := service.Recent(context.Background(), "alice", Filter{Emotions: []string{"joy"}}, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected primary and secondary matches, got %d", len(got))
	}
}

func TestRecentFiltersByTimeRange(t *testing.T) {
	repo := NewInMemoryRepo()
	service := NewService(repo)
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	seedMemory(t, repo, types.EmotionalMemory{
		ID: "old", CharacterID: "alice", Timestamp: at.Add(-2 * time.Hour),
		Significance: 50, Accessibility: 50,
	})
	seedMemory(t, repo, types.EmotionalMemory{
		ID: "recent", CharacterID: "alice", Timestamp: at,
		Significance: 50, Accessibility: 50,
	})

	got, err := service.Recent(context.Background(), "alice", Filter{After: at.Add(-time.Hour)}, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].ID != "recent" {
		t.Fatalf("unexpected result: %#v", got)
	}

	got, err = service.Recent(context.Background(), "alice", Filter{Before: at.Add(-time.Hour)}, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].ID != "old" {
		t.Fatalf("unexpected result: %#v", got)
	}
}

func TestRecentFiltersBySignificanceBand(t *testing.T) {
	repo := NewInMemoryRepo()
	service := NewService(repo)
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	seedMemory(t, repo, types.EmotionalMemory{
		ID: "minor", CharacterID: "alice", Timestamp: at,
		Significance: 35, Accessibility: 50,
	})
	seedMemory(t, repo, types.EmotionalMemory{
		ID: "major", CharacterID: "alice", Timestamp: at,
		Significance: 95, Accessibility: 50,
	})

	got, err := service.Recent(context.Background(), "alice", Filter{MinSignificance: 50}, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].ID != "major" {
		t.Fatalf("unexpected result: %#v", got)
	}

	got, err = service.Recent(context.Background(), "alice", Filter{MaxSignificance: 50}, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].ID != "minor" {
		t.Fatalf("unexpected result: %#v", got)
	}
}

func TestRecentFiltersByTags(t *testing.T) {
	repo := NewInMemoryRepo()
	service := NewService(repo)
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	seedMemory(t, repo, types.EmotionalMemory{
		ID: "tagged", CharacterID: "alice", Timestamp: at,
		Significance: 50, Accessibility: 50,
		Tags: []string{"concert", "evening"},
	})
	seedMemory(t, repo, types.EmotionalMemory{
		ID: "other", CharacterID: "alice", Timestamp: at,
		Significance: 50, Accessibility: 50,
		Tags: []string{"rain"},
	})

	got, err := service.Recent(context.Background(), "alice", Filter{Tags: []string{"concert"}}, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].ID != "tagged" {
		t.Fatalf("unexpected result: %#v", got)
	}
}
