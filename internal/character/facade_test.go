package character

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dschilow/Avatales-Backend-sub000/internal/memory"
	"github.com/dschilow/Avatales-Backend-sub000/internal/trait"
	"github.com/dschilow/Avatales-Backend-sub000/internal/types"
)

type mockRepo struct {
	chars          map[string]*types.Character
	updateCalls    int
	savedWordCount int
}

var _ Repo = (*mockRepo)(nil)

func (r *mockRepo) GetByID(_ context.Context, id string) (*types.Character, error) {
	c, ok := r.chars[id]
	if !ok {
		return nil, fmt.Errorf("%w: character %s", types.ErrNotFound, id)
	}
	return c, nil
}

func (r *mockRepo) UpdateTraits(_ context.Context, _ string, _ map[types.TraitKind]*types.Trait, wordCount int) error {
	r.updateCalls++
	r.savedWordCount = wordCount
	return nil
}

type fakeMemoryStore struct {
	memories map[string]*types.Memory
	order    []string
}

var _ memory.Store = (*fakeMemoryStore)(nil)

func newFakeMemoryStore() *fakeMemoryStore {
	return &fakeMemoryStore{memories: make(map[string]*types.Memory)}
}

func (s *fakeMemoryStore) LoadByCharacter(_ context.Context, characterID string) ([]*types.Memory, error) {
	var out []*types.Memory
	for _, id := range s.order {
		if m := s.memories[id]; m.CharacterID == characterID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeMemoryStore) Save(_ context.Context, m *types.Memory) (*types.Memory, error) {
	if _, ok := s.memories[m.ID]; !ok {
		s.order = append(s.order, m.ID)
	}
	s.memories[m.ID] = m
	return m, nil
}

func (s *fakeMemoryStore) CountByCharacter(_ context.Context, characterID string) (int, error) {
	n := 0
	for _, m := range s.memories {
		if m.CharacterID == characterID {
			n++
		}
	}
	return n, nil
}

func testCharacter() *types.Character {
	dna := types.CharacterDNA{
		Archetype: "explorer",
		BaseTraits: map[types.TraitKind]int{
			types.TraitCourage:    5,
			types.TraitConfidence: 5,
		},
		GenrePreferences: []string{"adventure", "mystery"},
	}
	return &types.Character{
		ID:      "char-1",
		OwnerID: "owner-1",
		Name:    "Mira",
		DNA:     dna,
		Traits:  types.TraitsFromDNA(dna),
	}
}

func testFacade(char *types.Character) (*Facade, *mockRepo, *fakeMemoryStore) {
	repo := &mockRepo{chars: map[string]*types.Character{}}
	if char != nil {
		repo.chars[char.ID] = char
	}
	store := newFakeMemoryStore()
	f := NewFacade(repo, trait.NewEngine(), memory.NewEngine(store, nil, memory.Options{}))
	f.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	return f, repo, store
}

func TestApplyStoryExperienceGrowsAndChallenges(t *testing.T) {
	char := testCharacter()
	f, repo, store := testFacade(char)

	influences := map[types.TraitKind]float64{
		types.TraitCourage:    1.0,
		types.TraitConfidence: -0.8,
		types.TraitHumor:      0,
	}
	results, err := f.ApplyStoryExperience(context.Background(), "char-1", "story-1",
		12, []string{"valley", "echo", "summit"}, influences, nil)
	if err != nil {
		t.Fatalf("ApplyStoryExperience returned error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results (zero weights skipped), got %d", len(results))
	}
	if results[0].Kind != types.TraitCourage || !results[0].ValueChanged || results[0].NewValue != 6 {
		t.Fatalf("expected courage to grow 5 -> 6, got %+v", results[0])
	}
	if results[1].Kind != types.TraitConfidence || results[1].ValueChanged {
		t.Fatalf("expected fresh confidence to withstand the challenge, got %+v", results[1])
	}
	if !char.Traits[types.TraitConfidence].RecentExperiences.Contains("Story story-1") {
		t.Fatalf("expected resisted challenge noted on the trait")
	}

	if repo.updateCalls != 1 || repo.savedWordCount != 3 {
		t.Fatalf("expected traits saved with word count 3, got calls=%d count=%d", repo.updateCalls, repo.savedWordCount)
	}
	if len(store.order) != 0 {
		t.Fatalf("expected no memory without learning moments, got %d", len(store.order))
	}
}

func TestApplyStoryExperienceLearningMoments(t *testing.T) {
	char := testCharacter()
	f, _, store := testFacade(char)

	moments := []string{"Sharing makes friends happy."}
	results, err := f.ApplyStoryExperience(context.Background(), "char-1", "story-2", 0, nil, nil, moments)
	if err != nil {
		t.Fatalf("ApplyStoryExperience returned error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected results for curiosity and wisdom, got %d", len(results))
	}
	if got := char.Traits[types.TraitCuriosity].Experience; got != 2 {
		t.Fatalf("expected 2 experience on curiosity, got %v", got)
	}
	if got := char.Traits[types.TraitWisdom].Experience; got != 2 {
		t.Fatalf("expected 2 experience on wisdom, got %v", got)
	}

	if len(store.order) != 1 {
		t.Fatalf("expected one learning memory, got %d", len(store.order))
	}
	m := store.memories[store.order[0]]
	if m.Kind != types.MemoryLearning || m.StoryID != "story-2" {
		t.Fatalf("expected a learning memory for story-2, got %+v", m)
	}
	if m.Title != "What Mira learned" {
		t.Fatalf("unexpected memory title %q", m.Title)
	}
	if !m.Tags.Contains("learning") {
		t.Fatalf("expected learning tag, got %v", m.Tags.Items)
	}
}

func TestApplyStoryExperienceRejectsNegativePoints(t *testing.T) {
	f, _, _ := testFacade(testCharacter())

	if _, err := f.ApplyStoryExperience(context.Background(), "char-1", "story-1", -1, nil, nil, nil); !errors.Is(err, types.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplyStoryExperienceUnknownCharacter(t *testing.T) {
	f, _, _ := testFacade(nil)

	if _, err := f.ApplyStoryExperience(context.Background(), "ghost", "story-1", 5, nil, nil, nil); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestRecordStoryMemoryTagsGenres(t *testing.T) {
	char := testCharacter()
	f, _, store := testFacade(char)

	summary := "The brave fox crossed the river to help a lost duckling."
	m, err := f.RecordStoryMemory(context.Background(), "char-1", "story-3", summary, 6)
	if err != nil {
		t.Fatalf("RecordStoryMemory returned error: %v", err)
	}

	if m.Title != "The brave fox crossed the river to help" {
		t.Fatalf("unexpected derived title %q", m.Title)
	}
	if m.Kind != types.MemoryExperience || m.StoryID != "story-3" {
		t.Fatalf("unexpected memory %+v", m)
	}
	for _, tag := range []string{"story", "adventure", "mystery"} {
		if !m.Tags.Contains(tag) {
			t.Fatalf("expected tag %q, got %v", tag, m.Tags.Items)
		}
	}
	if len(store.order) != 1 {
		t.Fatalf("expected memory persisted, got %d", len(store.order))
	}
}

func TestStoryTitle(t *testing.T) {
	cases := []struct {
		summary string
		want    string
	}{
		{"", "A story"},
		{"Hello.", "Hello"},
		{"One two three four five six seven eight nine ten", "One two three four five six seven eight"},
	}
	for _, tc := range cases {
		if got := storyTitle(tc.summary); got != tc.want {
			t.Fatalf("storyTitle(%q) = %q, want %q", tc.summary, got, tc.want)
		}
	}
}
