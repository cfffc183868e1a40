package character

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub000/internal/types"
)

// archetypeProfile is the template a DNA roll starts from.
type archetypeProfile struct {
	baseTraits  map[types.TraitKind]int
	keywords    []string
	motivations []string
	fears       []string
	genres      []string
	topics      []string
}

const defaultArchetype = "explorer"

var archetypes = map[string]archetypeProfile{
	"explorer": {
		baseTraits: map[types.TraitKind]int{
			types.TraitCourage:       6,
			types.TraitCuriosity:     8,
			types.TraitCreativity:    5,
			types.TraitEmpathy:       5,
			types.TraitDetermination: 6,
			types.TraitHonesty:       5,
			types.TraitHumor:         5,
			types.TraitWisdom:        4,
			types.TraitKindness:      5,
			types.TraitConfidence:    6,
		},
		keywords:    []string{"adventurous", "curious", "brave", "restless", "open-minded", "observant"},
		motivations: []string{"discover hidden places", "understand how things work", "see what lies beyond the map"},
		fears:       []string{"being stuck in one place", "the dark unknown"},
		genres:      []string{"adventure", "mystery"},
		topics:      []string{"nature", "travel", "animals"},
	},
	"dreamer": {
		baseTraits: map[types.TraitKind]int{
			types.TraitCourage:       4,
			types.TraitCuriosity:     6,
			types.TraitCreativity:    8,
			types.TraitEmpathy:       7,
			types.TraitDetermination: 4,
			types.TraitHonesty:       6,
			types.TraitHumor:         6,
			types.TraitWisdom:        5,
			types.TraitKindness:      7,
			types.TraitConfidence:    4,
		},
		keywords:    []string{"imaginative", "gentle", "thoughtful", "artistic", "sensitive", "playful"},
		motivations: []string{"bring ideas to life", "make friends smile", "find beauty in small things"},
		fears:       []string{"being laughed at", "loud arguments"},
		genres:      []string{"fantasy", "fairy tale"},
		topics:      []string{"magic", "art", "friendship"},
	},
	"guardian": {
		baseTraits: map[types.TraitKind]int{
			types.TraitCourage:       7,
			types.TraitCuriosity:     4,
			types.TraitCreativity:    4,
			types.TraitEmpathy:       8,
			types.TraitDetermination: 7,
			types.TraitHonesty:       7,
			types.TraitHumor:         4,
			types.TraitWisdom:        6,
			types.TraitKindness:      8,
			types.TraitConfidence:    5,
		},
		keywords:    []string{"loyal", "protective", "patient", "dependable", "warm", "steady"},
		motivations: []string{"keep friends safe", "do the right thing", "help whoever needs it"},
		fears:       []string{"letting someone down", "being alone"},
		genres:      []string{"adventure", "everyday heroes"},
		topics:      []string{"family", "friendship", "helping"},
	},
	"trickster": {
		baseTraits: map[types.TraitKind]int{
			types.TraitCourage:       6,
			types.TraitCuriosity:     7,
			types.TraitCreativity:    7,
			types.TraitEmpathy:       4,
			types.TraitDetermination: 5,
			types.TraitHonesty:       4,
			types.TraitHumor:         9,
			types.TraitWisdom:        4,
			types.TraitKindness:      5,
			types.TraitConfidence:    7,
		},
		keywords:    []string{"witty", "mischievous", "quick", "charming", "bold", "inventive"},
		motivations: []string{"make everyone laugh", "outsmart any puzzle", "turn dull days upside down"},
		fears:       []string{"being ignored", "boring afternoons"},
		genres:      []string{"comedy", "adventure"},
		topics:      []string{"jokes", "games", "surprises"},
	},
}

// Archetypes lists the known archetype labels.
func Archetypes() []string {
	return []string{"explorer", "dreamer", "guardian", "trickster"}
}

// GenerateDNA rolls an immutable DNA snapshot for the archetype. All
// randomness comes from the injected source, so a fixed seed reproduces the
// same DNA. Unknown archetypes fall back to the explorer template.
func GenerateDNA(rng *rand.Rand, archetype string) types.CharacterDNA {
	profile, ok := archetypes[archetype]
	if !ok {
		archetype = defaultArchetype
		profile = archetypes[defaultArchetype]
	}

	base := make(map[types.TraitKind]int, len(profile.baseTraits))
	for _, kind := range types.AllTraitKinds() {
		v := profile.baseTraits[kind] + rng.Intn(3) - 1
		if v < 1 {
			v = 1
		}
		if v > 10 {
			v = 10
		}
		base[kind] = v
	}

	return types.CharacterDNA{
		Archetype:        archetype,
		BaseTraits:       base,
		Keywords:         pick(rng, profile.keywords, 4),
		Motivations:      pick(rng, profile.motivations, 2),
		Fears:            pick(rng, profile.fears, 1),
		GenrePreferences: append([]string(nil), profile.genres...),
		TopicPreferences: append([]string(nil), profile.topics...),
		Difficulty:       "medium",
		EndingPreference: "happy",
	}
}

// AdoptDNA copies a DNA snapshot for a new owner with reduced fidelity:
// base values drift one step toward the midpoint and only part of the
// keyword list carries over.
func AdoptDNA(rng *rand.Rand, dna types.CharacterDNA) types.CharacterDNA {
	adopted := dna
	adopted.BaseTraits = make(map[types.TraitKind]int, len(dna.BaseTraits))
	for kind, v := range dna.BaseTraits {
		switch {
		case v > 5:
			v--
		case v < 5:
			v++
		}
		adopted.BaseTraits[kind] = v
	}
	adopted.Keywords = pick(rng, dna.Keywords, 3)
	adopted.Motivations = append([]string(nil), dna.Motivations...)
	adopted.Fears = append([]string(nil), dna.Fears...)
	adopted.GenrePreferences = append([]string(nil), dna.GenrePreferences...)
	adopted.TopicPreferences = append([]string(nil), dna.TopicPreferences...)
	return adopted
}

// New creates a character with a freshly rolled DNA and the full trait
// catalog at DNA base values.
func New(rng *rand.Rand, ownerID, name, archetype string, now time.Time) *types.Character {
	dna := GenerateDNA(rng, archetype)
	return &types.Character{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		DNA:       dna,
		Traits:    types.TraitsFromDNA(dna),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// pick selects up to n distinct entries in random order.
func pick(rng *rand.Rand, pool []string, n int) []string {
	if n >= len(pool) {
		out := append([]string(nil), pool...)
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}
	idx := rng.Perm(len(pool))[:n]
	out := make([]string, 0, n)
	for _, i := range idx {
		out = append(out, pool[i])
	}
	return out
}
