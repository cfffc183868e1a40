package character

import (
	"math/rand"
	"testing"
	"time"

	"github.com/dschilow/Avatales-Backend-sub000/internal/types"
)

func TestGenerateDNAIsSeedDeterministic(t *testing.T) {
	a := GenerateDNA(rand.New(rand.NewSource(7)), "dreamer")
	b := GenerateDNA(rand.New(rand.NewSource(7)), "dreamer")

	for kind, v := range a.BaseTraits {
		if b.BaseTraits[kind] != v {
			t.Fatalf("expected identical base traits for the same seed, %s differs: %d vs %d", kind, v, b.BaseTraits[kind])
		}
	}
	for i, kw := range a.Keywords {
		if b.Keywords[i] != kw {
			t.Fatalf("expected identical keywords for the same seed, got %v vs %v", a.Keywords, b.Keywords)
		}
	}
}

func TestGenerateDNAStaysNearTemplate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	profile := archetypes["guardian"]

	for i := 0; i < 50; i++ {
		dna := GenerateDNA(rng, "guardian")
		for _, kind := range types.AllTraitKinds() {
			v := dna.BaseTraits[kind]
			base := profile.baseTraits[kind]
			if v < base-1 || v > base+1 {
				t.Fatalf("%s drifted beyond one step: template %d, got %d", kind, base, v)
			}
			if v < 1 || v > 10 {
				t.Fatalf("%s out of range: %d", kind, v)
			}
		}
		if len(dna.Keywords) != 4 || len(dna.Motivations) != 2 || len(dna.Fears) != 1 {
			t.Fatalf("unexpected pick sizes: %d keywords, %d motivations, %d fears",
				len(dna.Keywords), len(dna.Motivations), len(dna.Fears))
		}
	}
}

func TestGenerateDNAUnknownArchetypeFallsBack(t *testing.T) {
	dna := GenerateDNA(rand.New(rand.NewSource(1)), "pirate")
	if dna.Archetype != "explorer" {
		t.Fatalf("expected fallback to explorer, got %q", dna.Archetype)
	}
}

func TestAdoptDNADriftsTowardMidpoint(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	original := GenerateDNA(rng, "trickster")

	adopted := AdoptDNA(rng, original)
	for kind, v := range original.BaseTraits {
		got := adopted.BaseTraits[kind]
		switch {
		case v > 5:
			if got != v-1 {
				t.Fatalf("%s: expected %d to drift down to %d, got %d", kind, v, v-1, got)
			}
		case v < 5:
			if got != v+1 {
				t.Fatalf("%s: expected %d to drift up to %d, got %d", kind, v, v+1, got)
			}
		default:
			if got != 5 {
				t.Fatalf("%s: expected midpoint to hold, got %d", kind, got)
			}
		}
	}
	if len(adopted.Keywords) != 3 {
		t.Fatalf("expected 3 carried-over keywords, got %v", adopted.Keywords)
	}
	if len(adopted.GenrePreferences) != len(original.GenrePreferences) {
		t.Fatalf("expected genre preferences preserved, got %v", adopted.GenrePreferences)
	}
}

func TestNewCharacterCarriesFullTraitCatalog(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	char := New(rand.New(rand.NewSource(9)), "owner-1", "Finn", "explorer", now)

	if char.ID == "" || char.OwnerID != "owner-1" || char.Name != "Finn" {
		t.Fatalf("unexpected character %+v", char)
	}
	for _, kind := range types.AllTraitKinds() {
		tr, ok := char.Traits[kind]
		if !ok {
			t.Fatalf("missing trait %s", kind)
		}
		if tr.Value != char.DNA.BaseTraits[kind] || tr.BaseValue != char.DNA.BaseTraits[kind] {
			t.Fatalf("%s: expected value at DNA base %d, got value=%d base=%d",
				kind, char.DNA.BaseTraits[kind], tr.Value, tr.BaseValue)
		}
	}
	if !char.CreatedAt.Equal(now) || !char.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps set to %v", now)
	}
}
