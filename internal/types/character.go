package types

import "time"

// CharacterDNA is the immutable personality template fixed at character
// creation. Copies with reduced fidelity may be produced on adoption.
type CharacterDNA struct {
	Archetype        string            `json:"archetype"`
	BaseTraits       map[TraitKind]int `json:"base_traits"`
	Keywords         []string          `json:"keywords"`
	Motivations      []string          `json:"motivations"`
	Fears            []string          `json:"fears"`
	GenrePreferences []string          `json:"genre_preferences"`
	TopicPreferences []string          `json:"topic_preferences"`
	Difficulty       string            `json:"difficulty"`
	EndingPreference string            `json:"ending_preference"`
}

// Character is the persisted virtual character profile. A character
// exclusively owns its trait set and its memory collection.
type Character struct {
	ID        string               `json:"id"`
	OwnerID   string               `json:"owner_id"`
	Name      string               `json:"name"`
	DNA       CharacterDNA         `json:"dna"`
	Traits    map[TraitKind]*Trait `json:"traits"`
	WordCount int                  `json:"word_count"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// TraitsFromDNA builds the full trait catalog from DNA base values. Kinds
// missing from the DNA start at the midpoint.
func TraitsFromDNA(dna CharacterDNA) map[TraitKind]*Trait {
	traits := make(map[TraitKind]*Trait, len(AllTraitKinds()))
	for _, kind := range AllTraitKinds() {
		base, ok := dna.BaseTraits[kind]
		if !ok {
			base = 5
		}
		traits[kind] = NewTrait(kind, base)
	}
	return traits
}
