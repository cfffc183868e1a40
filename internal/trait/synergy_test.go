package trait

import (
	"math"
	"testing"

	"github.com/dschilow/Avatales-Backend-sub000/internal/types"
)

func TestSynergyScalesWithWeakerTrait(t *testing.T) {
	courage := types.NewTrait(types.TraitCourage, 8)
	determination := types.NewTrait(types.TraitDetermination, 5)

	// table 0.8 scaled by min(8,5)/10
	got := Synergy(courage, determination)
	if math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("expected synergy 0.4, got %v", got)
	}
}

func TestSynergyIsSymmetric(t *testing.T) {
	kinds := types.AllTraitKinds()
	for _, ka := range kinds {
		for _, kb := range kinds {
			a := types.NewTrait(ka, 6)
			b := types.NewTrait(kb, 4)
			if Synergy(a, b) != Synergy(b, a) {
				t.Fatalf("synergy not symmetric for %s/%s", ka, kb)
			}
		}
	}
}

func TestSynergyUnrelatedPairIsZero(t *testing.T) {
	courage := types.NewTrait(types.TraitCourage, 9)
	humor := types.NewTrait(types.TraitHumor, 9)
	if got := Synergy(courage, humor); got != 0 {
		t.Fatalf("expected 0 for unrelated pair, got %v", got)
	}
}

func TestSynergyStaysInUnitInterval(t *testing.T) {
	kinds := types.AllTraitKinds()
	for _, ka := range kinds {
		for _, kb := range kinds {
			a := types.NewTrait(ka, 10)
			b := types.NewTrait(kb, 10)
			got := Synergy(a, b)
			if got < 0 || got > 1 {
				t.Fatalf("synergy out of range for %s/%s: %v", ka, kb, got)
			}
		}
	}
}

func TestSynergyNilTrait(t *testing.T) {
	courage := types.NewTrait(types.TraitCourage, 5)
	if got := Synergy(courage, nil); got != 0 {
		t.Fatalf("expected 0 for nil trait, got %v", got)
	}
}
