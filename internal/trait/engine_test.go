package trait

import (
	"errors"
	"math"
	"testing"

	"github.com/dschilow/Avatales-Backend-sub000/internal/types"
)

func TestThresholdCurve(t *testing.T) {
	if Threshold(1) != 0 {
		t.Fatalf("expected threshold(1)=0, got %v", Threshold(1))
	}
	if Threshold(2) != 10 {
		t.Fatalf("expected threshold(2)=10, got %v", Threshold(2))
	}
	for v := 2; v <= 10; v++ {
		if Threshold(v) <= Threshold(v-1) {
			t.Fatalf("expected threshold strictly increasing, threshold(%d)=%v <= threshold(%d)=%v",
				v, Threshold(v), v-1, Threshold(v-1))
		}
	}
}

func TestAddExperienceLevelsUp(t *testing.T) {
	engine := NewEngine()
	curiosity := types.NewTrait(types.TraitCuriosity, 5)

	result, err := engine.AddExperience(curiosity, 12, "explored the cave", nil)
	if err != nil {
		t.Fatalf("AddExperience returned error: %v", err)
	}

	if curiosity.Experience != 12 {
		t.Fatalf("expected accumulated experience 12, got %v", curiosity.Experience)
	}
	if !result.ValueChanged {
		t.Fatalf("expected value change, got %+v", result)
	}
	if result.PreviousValue != 5 || result.NewValue != 6 {
		t.Fatalf("expected 5 -> 6, got %d -> %d", result.PreviousValue, result.NewValue)
	}
	if curiosity.ReinforcementCount != 1 {
		t.Fatalf("expected reinforcement count 1, got %d", curiosity.ReinforcementCount)
	}
	if math.Abs(curiosity.Stability-1.05) > 1e-9 {
		t.Fatalf("expected stability raised to 1.05, got %v", curiosity.Stability)
	}
	if len(curiosity.History.Events) != 1 || curiosity.History.Events[0].Change != types.TraitChangeIncreased {
		t.Fatalf("expected one increased history event, got %+v", curiosity.History.Events)
	}
}

func TestAddExperienceBelowThresholdKeepsValue(t *testing.T) {
	engine := NewEngine()
	courage := types.NewTrait(types.TraitCourage, 3)

	result, err := engine.AddExperience(courage, 5, "small step", nil)
	if err != nil {
		t.Fatalf("AddExperience returned error: %v", err)
	}
	if result.ValueChanged {
		t.Fatalf("expected no value change below threshold, got %+v", result)
	}
	if courage.Value != 3 {
		t.Fatalf("expected value to stay at 3, got %d", courage.Value)
	}
	if len(courage.History.Events) != 0 {
		t.Fatalf("expected no history entry without a level change, got %+v", courage.History.Events)
	}
}

func TestAddExperienceRejectsNonPositivePoints(t *testing.T) {
	engine := NewEngine()
	courage := types.NewTrait(types.TraitCourage, 3)

	for _, points := range []float64{0, -1} {
		if _, err := engine.AddExperience(courage, points, "bad", nil); !errors.Is(err, types.ErrValidation) {
			t.Fatalf("expected validation error for points %v, got %v", points, err)
		}
	}
}

func TestAddExperienceUsesGrowthRate(t *testing.T) {
	engine := NewEngine()
	humor := types.NewTrait(types.TraitHumor, 2)
	humor.GrowthRate = 2.0

	result, err := engine.AddExperience(humor, 5, "told a great joke", nil)
	if err != nil {
		t.Fatalf("AddExperience returned error: %v", err)
	}
	if result.ExperienceGained != 10 {
		t.Fatalf("expected 10 scaled experience, got %v", result.ExperienceGained)
	}
	if humor.Value != 3 {
		t.Fatalf("expected value 3 after crossing first threshold, got %d", humor.Value)
	}
}

func TestAddExperienceMergesInfluence(t *testing.T) {
	engine := NewEngine()
	empathy := types.NewTrait(types.TraitEmpathy, 4)

	if _, err := engine.AddExperience(empathy, 3, "helped a friend", []string{"friendship", "sharing"}); err != nil {
		t.Fatalf("AddExperience returned error: %v", err)
	}
	if _, err := engine.AddExperience(empathy, 2, "listened", []string{"friendship"}); err != nil {
		t.Fatalf("AddExperience returned error: %v", err)
	}

	if empathy.InfluenceWeights["friendship"] != 5 {
		t.Fatalf("expected friendship weight 5, got %v", empathy.InfluenceWeights["friendship"])
	}
	if empathy.InfluenceWeights["sharing"] != 3 {
		t.Fatalf("expected sharing weight 3, got %v", empathy.InfluenceWeights["sharing"])
	}
}

func TestChallengeReducesUnstableTrait(t *testing.T) {
	engine := NewEngine()
	confidence := types.NewTrait(types.TraitConfidence, 3)
	confidence.Value = 6
	confidence.Stability = 0.5

	result, err := engine.Challenge(confidence, 0.8, "mocked by the dragon", nil)
	if err != nil {
		t.Fatalf("Challenge returned error: %v", err)
	}
	// pressure = (1-0.5)*0.8 = 0.4 > 0.3; reduction = round(0.8*2) = 2
	if result.NewValue != 4 {
		t.Fatalf("expected value reduced to 4, got %d", result.NewValue)
	}
	if confidence.ChallengeCount != 1 {
		t.Fatalf("expected challenge count 1, got %d", confidence.ChallengeCount)
	}
	if math.Abs(confidence.GrowthRate-0.9) > 1e-9 {
		t.Fatalf("expected growth rate reduced to 0.9, got %v", confidence.GrowthRate)
	}
	if len(confidence.History.Events) != 1 || confidence.History.Events[0].Change != types.TraitChangeChallenged {
		t.Fatalf("expected one challenged history event, got %+v", confidence.History.Events)
	}
}

func TestChallengeNeverDropsBelowBase(t *testing.T) {
	engine := NewEngine()
	courage := types.NewTrait(types.TraitCourage, 5)
	courage.Value = 6
	courage.Stability = 0.5

	result, err := engine.Challenge(courage, 1.0, "storm at sea", nil)
	if err != nil {
		t.Fatalf("Challenge returned error: %v", err)
	}
	if result.NewValue != 5 {
		t.Fatalf("expected value floored at base 5, got %d", result.NewValue)
	}
}

func TestStableTraitResistsChallenge(t *testing.T) {
	engine := NewEngine()
	wisdom := types.NewTrait(types.TraitWisdom, 4)
	wisdom.Value = 7
	wisdom.Stability = 1.8

	result, err := engine.Challenge(wisdom, 1.0, "tricky riddle", nil)
	if err != nil {
		t.Fatalf("Challenge returned error: %v", err)
	}
	if result.ValueChanged {
		t.Fatalf("expected stable trait to hold, got %+v", result)
	}
	if wisdom.Value != 7 {
		t.Fatalf("expected value unchanged at 7, got %d", wisdom.Value)
	}
	if !wisdom.RecentExperiences.Contains("tricky riddle") {
		t.Fatalf("expected resisted attempt noted, got %v", wisdom.RecentExperiences.Items)
	}
}

func TestChallengeRejectsOutOfRangeIntensity(t *testing.T) {
	engine := NewEngine()
	courage := types.NewTrait(types.TraitCourage, 3)

	for _, intensity := range []float64{0, -0.5, 1.1} {
		if _, err := engine.Challenge(courage, intensity, "bad", nil); !errors.Is(err, types.ErrValidation) {
			t.Fatalf("expected validation error for intensity %v, got %v", intensity, err)
		}
	}
}

func TestGrowthRateFloor(t *testing.T) {
	engine := NewEngine()
	humor := types.NewTrait(types.TraitHumor, 2)
	humor.Value = 8
	humor.Stability = 0.5
	humor.GrowthRate = 0.55

	if _, err := engine.Challenge(humor, 1.0, "heckled", nil); err != nil {
		t.Fatalf("Challenge returned error: %v", err)
	}
	if humor.GrowthRate != 0.5 {
		t.Fatalf("expected growth rate floored at 0.5, got %v", humor.GrowthRate)
	}
}

func TestStabilityCap(t *testing.T) {
	engine := NewEngine()
	courage := types.NewTrait(types.TraitCourage, 1)
	courage.Stability = 1.98

	// Enough experience to level several times in one call.
	if _, err := engine.AddExperience(courage, 100, "epic quest", nil); err != nil {
		t.Fatalf("AddExperience returned error: %v", err)
	}
	if courage.Stability > 2.0 {
		t.Fatalf("expected stability capped at 2.0, got %v", courage.Stability)
	}
}

func TestReinforcePositivelyScalesWithValue(t *testing.T) {
	engine := NewEngine()
	kindness := types.NewTrait(types.TraitKindness, 4)

	result, err := engine.ReinforcePositively(kindness, "shared the last cookie", 0)
	if err != nil {
		t.Fatalf("ReinforcePositively returned error: %v", err)
	}
	// bonus = 5 * (1 + 4/10) * 1.5 = 10.5
	if math.Abs(result.ExperienceGained-10.5) > 1e-9 {
		t.Fatalf("expected 10.5 bonus experience, got %v", result.ExperienceGained)
	}
	if result.NewValue != 5 {
		t.Fatalf("expected value raised to 5, got %d", result.NewValue)
	}
}

func TestValueNeverExceedsTen(t *testing.T) {
	engine := NewEngine()
	courage := types.NewTrait(types.TraitCourage, 8)

	if _, err := engine.AddExperience(courage, 10000, "legendary deed", nil); err != nil {
		t.Fatalf("AddExperience returned error: %v", err)
	}
	if courage.Value != 10 {
		t.Fatalf("expected value capped at 10, got %d", courage.Value)
	}
}
