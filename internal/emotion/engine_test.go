package emotion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/easeaico/emotion-engine/internal/memory"
	"github.com/easeaico/emotion-engine/internal/types"
)

type fakeDirectory struct {
	known   map[string]bool
	lookups int
}

func (d *fakeDirectory) Lookup(ctx context.Context, characterID string) (*types.Character, error) {
	d.lookups++
	if d.known[characterID] {
		return &types.Character{ID: characterID, Name: characterID}, nil
	}
	return nil, ErrCharacterNotFound
}

type fakeNeeds struct {
	needs []types.NeedState
	err   error
}

func (n *fakeNeeds) ActiveNeeds(ctx context.Context, characterID string) ([]types.NeedState, error) {
	return n.needs, n.err
}

type fakeMemoryStore struct {
	created []types.EmotionalMemory
	err     error
}

func (s *fakeMemoryStore) Create(ctx context.Context, characterID string, state types.EmotionalState, trigger string, emoCtx types.EmotionalContext, significance float64) (types.EmotionalMemory, error) {
	if s.err != nil {
		return types.EmotionalMemory{}, s.err
	}
	mem := types.EmotionalMemory{
		CharacterID:  characterID,
		State:        state,
		Trigger:      trigger,
		Context:      emoCtx,
		Significance: significance,
	}
	s.created = append(s.created, mem)
	return mem, nil
}

func (s *fakeMemoryStore) Recent(ctx context.Context, characterID string, filter memory.Filter, limit int) ([]types.EmotionalMemory, error) {
	return s.created, nil
}

type fakeSearcher struct {
	characterID string
	query       string
	topK        int
	threshold   float64
	results     []types.EmotionalMemory
}

func (s *fakeSearcher) SearchSimilar(ctx context.Context, characterID, query string, topK int, threshold float64) ([]types.EmotionalMemory, error) {
	s.characterID = characterID
	s.query = query
	s.topK = topK
	s.threshold = threshold
	return s.results, nil
}

type recordingSink struct {
	topics []string
	events []types.StateChangeEvent
}

func (s *recordingSink) Publish(ctx context.Context, topic string, event types.StateChangeEvent) error {
	s.topics = append(s.topics, topic)
	s.events = append(s.events, event)
	return nil
}

// fakeProfileRepo mimics the real repos: Get returns a struct copy whose maps
// still alias the stored ones.
type fakeProfileRepo struct {
	stored  *types.EmotionalProfile
	saveErr error
}

func (r *fakeProfileRepo) Get(ctx context.Context, characterID string) (*types.EmotionalProfile, error) {
	if r.stored == nil {
		return nil, nil
	}
	profile := *r.stored
	return &profile, nil
}

func (r *fakeProfileRepo) Save(ctx context.Context, profile types.EmotionalProfile) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.stored = &profile
	return nil
}

func newTestEngine(cfg Config) *Engine {
	if cfg.TickInterval == 0 {
		cfg.TickInterval = time.Hour
	}
	return NewEngine(cfg)
}

func TestStateCreatesNeutralDefault(t *testing.T) {
	directory := &fakeDirectory{known: map[string]bool{"alice": true}}
	engine := newTestEngine(Config{Directory: directory})

	state, err := engine.State(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if state.Primary != types.EmotionNeutral || state.Intensity != 3 {
		t.Fatalf("expected neutral default, got %#v", state)
	}
	if state.Description != "feeling neutral" {
		t.Fatalf("unexpected description: %q", state.Description)
	}
}

func TestStateUnknownCharacter(t *testing.T) {
	directory := &fakeDirectory{known: map[string]bool{}}
	engine := newTestEngine(Config{Directory: directory})

	_, err := engine.State(context.Background(), "ghost")
	if !errors.Is(err, ErrCharacterNotFound) {
		t.Fatalf("expected ErrCharacterNotFound, got %v", err)
	}
}

func TestStateLooksUpDirectoryOnce(t *testing.T) {
	directory := &fakeDirectory{known: map[string]bool{"alice": true}}
	engine := newTestEngine(Config{Directory: directory})

	for i := 0; i < 3; i++ {
		if _, err := engine.State(context.Background(), "alice"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	if directory.lookups != 1 {
		t.Fatalf("expected 1 directory lookup, got %d", directory.lookups)
	}
}

func TestApplyImpactRecomputesComposite(t *testing.T) {
	engine := newTestEngine(Config{})

	state, err := engine.ApplyImpact(context.Background(), "alice", types.EmotionalImpact{
		EmotionType: "joy",
		Intensity:   80,
		FadeRate:    60,
	}, types.EmotionalContext{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if state.Primary != "joy" || state.Intensity != 8 {
		t.Fatalf("expected strong joy, got %#v", state)
	}
	if state.Description != "feeling strong joy" {
		t.Fatalf("unexpected description: %q", state.Description)
	}
	if !engine.hasPendingDecay("alice") {
		t.Fatal("expected decay loop to be running")
	}
}

func TestApplyImpactDerivesManifestations(t *testing.T) {
	engine := newTestEngine(Config{})
	ctx := context.Background()

	if _, err := engine.ApplyImpact(ctx, "alice", types.EmotionalImpact{
		EmotionType: "joy",
		Intensity:   50,
		FadeRate:    30,
	}, types.EmotionalContext{SocialSetting: types.SettingPublic}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	ent, err := engine.entryFor(ctx, "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	if len(ent.impacts) != 1 {
		t.Fatalf("expected 1 impact, got %d", len(ent.impacts))
	}
	social := ent.impacts[0].Manifestations.Social
	if len(social) == 0 || social[len(social)-1] != "moderates expression in company" {
		t.Fatalf("expected public setting to moderate social bundle, got %v", social)
	}
}

func TestNormalizeResetsStateAndStopsDecay(t *testing.T) {
	sink := &recordingSink{}
	engine := newTestEngine(Config{Sink: sink})
	ctx := context.Background()

	if _, err := engine.ApplyImpact(ctx, "alice", types.EmotionalImpact{
		EmotionType: "sadness",
		Intensity:   70,
		FadeRate:    40,
	}, types.EmotionalContext{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := engine.Normalize(ctx, "alice"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	state, err := engine.State(ctx, "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if state != types.NeutralState() {
		t.Fatalf("expected neutral state after normalize, got %#v", state)
	}
	if engine.hasPendingDecay("alice") {
		t.Fatal("expected decay loop to be stopped after normalize")
	}

	if len(sink.topics) != 2 || sink.topics[1] != "emotion.normalized" {
		t.Fatalf("unexpected topics: %v", sink.topics)
	}
	last := sink.events[len(sink.events)-1]
	if last.OldState.Primary != "sadness" || last.NewState.Primary != types.EmotionNeutral {
		t.Fatalf("unexpected normalize event: %#v", last)
	}
}

func TestNormalizeLogsTransition(t *testing.T) {
	engine := newTestEngine(Config{})
	ctx := context.Background()

	if _, err := engine.ApplyImpact(ctx, "alice", types.EmotionalImpact{
		EmotionType: "anger",
		Intensity:   60,
		FadeRate:    50,
	}, types.EmotionalContext{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := engine.Normalize(ctx, "alice"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	transitions, err := engine.Transitions(ctx, "alice", time.Time{}, time.Time{}, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(transitions) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(transitions))
	}
	last := transitions[1]
	if last.Source != types.SourceNormalize || last.To.Primary != types.EmotionNeutral {
		t.Fatalf("unexpected final transition: %#v", last)
	}
	if last.Duration != 5*time.Second || last.Smoothness != 70 || last.Resistance != 30 {
		t.Fatalf("unexpected transition metadata: %#v", last)
	}
}

func TestEndSessionDropsEntry(t *testing.T) {
	directory := &fakeDirectory{known: map[string]bool{"alice": true}}
	engine := newTestEngine(Config{Directory: directory})
	ctx := context.Background()

	if _, err := engine.ApplyImpact(ctx, "alice", types.EmotionalImpact{
		EmotionType: "joy",
		Intensity:   40,
		FadeRate:    30,
	}, types.EmotionalContext{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	engine.EndSession("alice")
	if engine.hasPendingDecay("alice") {
		t.Fatal("expected decay loop to be stopped after session end")
	}

	state, err := engine.State(ctx, "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if state != types.NeutralState() {
		t.Fatalf("expected fresh neutral state, got %#v", state)
	}
	if directory.lookups != 2 {
		t.Fatalf("expected a second directory lookup, got %d", directory.lookups)
	}
}

func TestCloseStopsAllDecayLoops(t *testing.T) {
	engine := newTestEngine(Config{})
	ctx := context.Background()

	for _, id := range []string{"alice", "bob"} {
		if _, err := engine.ApplyImpact(ctx, id, types.EmotionalImpact{
			EmotionType: "joy",
			Intensity:   50,
			FadeRate:    30,
		}, types.EmotionalContext{}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	engine.Close()
	if engine.hasPendingDecay("alice") || engine.hasPendingDecay("bob") {
		t.Fatal("expected all decay loops to be stopped")
	}
}

func TestRecallQueriesSearcher(t *testing.T) {
	searcher := &fakeSearcher{results: []types.EmotionalMemory{{ID: "m1"}}}
	engine := newTestEngine(Config{Searcher: searcher})

	got, err := engine.Recall(context.Background(), "alice", "the concert", 5, 0.7)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].ID != "m1" {
		t.Fatalf("unexpected results: %#v", got)
	}
	if searcher.characterID != "alice" || searcher.query != "the concert" {
		t.Fatalf("unexpected search args: %#v", searcher)
	}
	if searcher.topK != 5 || searcher.threshold != 0.7 {
		t.Fatalf("unexpected search bounds: %#v", searcher)
	}
}

func TestRecallDefaultsTopK(t *testing.T) {
	searcher := &fakeSearcher{}
	engine := newTestEngine(Config{Searcher: searcher})

	if _, err := engine.Recall(context.Background(), "alice", "anything", 0, 0.7); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if searcher.topK != 5 {
		t.Fatalf("expected default topK 5, got %d", searcher.topK)
	}
}

func TestRecallWithoutSearcher(t *testing.T) {
	engine := newTestEngine(Config{})

	got, err := engine.Recall(context.Background(), "alice", "anything", 5, 0.7)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil results, got %#v", got)
	}
}

func TestProfileLazyCreation(t *testing.T) {
	engine := newTestEngine(Config{})
	ctx := context.Background()

	profile, err := engine.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if profile.CharacterID != "alice" || profile.Adaptability != 0.5 {
		t.Fatalf("unexpected default profile: %#v", profile)
	}
	if profile.BaselineEmotions["neutral"] != 0.6 {
		t.Fatalf("unexpected baseline emotions: %v", profile.BaselineEmotions)
	}

	again, err := engine.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if again.CharacterID != profile.CharacterID || !again.UpdatedAt.Equal(profile.UpdatedAt) {
		t.Fatalf("expected stored profile on second access, got %#v", again)
	}
}

func TestUpdateProfileMergesPartialUpdate(t *testing.T) {
	engine := newTestEngine(Config{})
	ctx := context.Background()

	adaptability := 1.5
	updated, err := engine.UpdateProfile(ctx, "alice", types.ProfileUpdate{
		BaselineEmotions: map[string]float64{"joy": 0.9},
		Vulnerabilities:  []types.Vulnerability{{Emotion: "fear", Level: 80}},
		Adaptability:     &adaptability,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.BaselineEmotions["joy"] != 0.9 || updated.BaselineEmotions["neutral"] != 0.6 {
		t.Fatalf("expected merged baseline emotions, got %v", updated.BaselineEmotions)
	}
	if updated.Adaptability != 1 {
		t.Fatalf("expected adaptability clamped to 1, got %v", updated.Adaptability)
	}
	if len(updated.Vulnerabilities) != 1 || updated.Vulnerabilities[0].Emotion != "fear" {
		t.Fatalf("expected replaced vulnerabilities, got %v", updated.Vulnerabilities)
	}
	if updated.Resilience != 0.5 {
		t.Fatalf("expected untouched resilience, got %v", updated.Resilience)
	}
}

func TestUpdateProfileFailedSaveLeavesStoredProfileUntouched(t *testing.T) {
	repo := &fakeProfileRepo{}
	engine := newTestEngine(Config{Profiles: repo})
	ctx := context.Background()

	if _, err := engine.Profile(ctx, "alice"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	repo.saveErr = errors.New("save rejected")
	if _, err := engine.UpdateProfile(ctx, "alice", types.ProfileUpdate{
		BaselineEmotions: map[string]float64{"joy": 0.9},
	}); err == nil {
		t.Fatal("expected save error")
	}

	if _, ok := repo.stored.BaselineEmotions["joy"]; ok {
		t.Fatalf("stored profile mutated despite failed save: %v", repo.stored.BaselineEmotions)
	}
	if repo.stored.BaselineEmotions["neutral"] != 0.6 {
		t.Fatalf("stored baseline changed: %v", repo.stored.BaselineEmotions)
	}
}

func TestUpdateProfileHandlesNilStoredMaps(t *testing.T) {
	repo := &fakeProfileRepo{stored: &types.EmotionalProfile{CharacterID: "alice"}}
	engine := newTestEngine(Config{Profiles: repo})

	updated, err := engine.UpdateProfile(context.Background(), "alice", types.ProfileUpdate{
		Regulation: map[string]float64{"reappraisal": 0.7},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Regulation["reappraisal"] != 0.7 {
		t.Fatalf("expected merged regulation, got %v", updated.Regulation)
	}
}
