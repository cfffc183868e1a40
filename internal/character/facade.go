// Package character exposes the development facade combining trait and
// memory engines per character.
package character

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dschilow/Avatales-Backend-sub000/internal/memory"
	"github.com/dschilow/Avatales-Backend-sub000/internal/trait"
	"github.com/dschilow/Avatales-Backend-sub000/internal/types"
)

// Repo loads and saves character development state.
type Repo interface {
	GetByID(ctx context.Context, id string) (*types.Character, error)
	UpdateTraits(ctx context.Context, id string, traits map[types.TraitKind]*types.Trait, wordCount int) error
}

// Facade is the entry point the story-completion workflow calls after a
// character finishes a story. Callers must serialize mutating calls for the
// same character id.
type Facade struct {
	characters Repo
	traits     *trait.Engine
	memories   *memory.Engine
	now        func() time.Time
}

// NewFacade returns a development facade.
func NewFacade(characters Repo, traits *trait.Engine, memories *memory.Engine) *Facade {
	return &Facade{
		characters: characters,
		traits:     traits,
		memories:   memories,
		now:        time.Now,
	}
}

// Experience points granted per learning moment to the learning traits.
const learningMomentPoints = 2

// ApplyStoryExperience applies a finished story to the character's traits.
// traitInfluences weights the base experience per trait; negative weights
// challenge the trait instead. Learning moments feed Curiosity and Wisdom
// and are kept as a learning memory.
func (f *Facade) ApplyStoryExperience(ctx context.Context, characterID, storyID string, experiencePoints float64, newWords []string, traitInfluences map[types.TraitKind]float64, learningMoments []string) ([]types.TraitChangeResult, error) {
	if experiencePoints < 0 {
		return nil, fmt.Errorf("%w: experience points must not be negative, got %v", types.ErrValidation, experiencePoints)
	}

	char, err := f.characters.GetByID(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load character: %w", err)
	}

	description := "Story " + storyID
	var results []types.TraitChangeResult

	// Catalog order keeps results deterministic regardless of map order.
	for _, kind := range types.AllTraitKinds() {
		weight, ok := traitInfluences[kind]
		if !ok || weight == 0 {
			continue
		}
		t, exists := char.Traits[kind]
		if !exists {
			return nil, fmt.Errorf("%w: character %s has no trait %s", types.ErrNotFound, characterID, kind)
		}

		var result *types.TraitChangeResult
		if weight > 0 {
			result, err = f.traits.AddExperience(t, experiencePoints*weight, description, learningMoments)
		} else {
			intensity := -weight
			if intensity > 1 {
				intensity = 1
			}
			result, err = f.traits.Challenge(t, intensity, description, learningMoments)
		}
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	for _, moment := range learningMoments {
		for _, kind := range []types.TraitKind{types.TraitCuriosity, types.TraitWisdom} {
			t, exists := char.Traits[kind]
			if !exists {
				continue
			}
			result, err := f.traits.AddExperience(t, learningMomentPoints, moment, nil)
			if err != nil {
				return nil, err
			}
			results = append(results, *result)
		}
	}

	char.WordCount += len(newWords)
	if err := f.characters.UpdateTraits(ctx, characterID, char.Traits, char.WordCount); err != nil {
		return nil, fmt.Errorf("failed to save traits: %w", err)
	}

	if len(learningMoments) > 0 {
		m := types.NewMemory(characterID,
			fmt.Sprintf("What %s learned", char.Name),
			strings.Join(learningMoments, " "),
			types.MemoryLearning, 4, f.now())
		m.StoryID = storyID
		m.Tags.Add("learning")
		if _, err := f.memories.Record(ctx, characterID, m); err != nil {
			return nil, fmt.Errorf("failed to record learning memory: %w", err)
		}
	}

	return results, nil
}

// RecordStoryMemory stores the finished story as an experience memory.
func (f *Facade) RecordStoryMemory(ctx context.Context, characterID, storyID, storySummary string, importance int) (*types.Memory, error) {
	char, err := f.characters.GetByID(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load character: %w", err)
	}

	m := types.NewMemory(characterID, storyTitle(storySummary), storySummary,
		types.MemoryExperience, importance, f.now())
	m.StoryID = storyID
	m.Tags.Add("story")
	for _, genre := range char.DNA.GenrePreferences {
		m.Tags.Add(genre)
	}

	return f.memories.Record(ctx, characterID, m)
}

// storyTitle derives a short title from the summary's opening words.
func storyTitle(summary string) string {
	words := strings.Fields(summary)
	if len(words) > 8 {
		words = words[:8]
	}
	title := strings.Join(words, " ")
	title = strings.TrimRight(title, ".,;:!?")
	if title == "" {
		return "A story"
	}
	return title
}
