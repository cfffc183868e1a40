// Package trait applies story experience to a character's personality traits.
package trait

import (
	"fmt"
	"math"
	"time"

	"github.com/dschilow/Avatales-Backend-sub000/internal/types"
)

const (
	maxValue            = 10
	maxStability        = 2.0
	minGrowthRate       = 0.5
	stabilityGainOnGrow = 0.05
	growthRatePenalty   = 0.1
	// A challenge only bites once reduction pressure clears this bar.
	challengePressureBar       = 0.3
	defaultReinforceMultiplier = 1.5
)

// Engine performs trait leveling, challenge resolution, and reinforcement.
// It mutates traits in memory only; persistence belongs to the caller.
type Engine struct {
	now func() time.Time
}

// NewEngine returns a trait engine.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// Threshold returns the accumulated experience required for level v.
// Each level is markedly harder than the last.
func Threshold(v int) float64 {
	if v <= 1 {
		return 0
	}
	return 10 * math.Pow(float64(v-1), 2.2)
}

// levelFor returns the highest level in [1,10] whose threshold the
// accumulated experience meets.
func levelFor(experience float64) int {
	level := 1
	for v := 2; v <= maxValue; v++ {
		if experience >= Threshold(v) {
			level = v
		}
	}
	return level
}

// valueFor derives the current value from base value and experience.
func valueFor(base int, experience float64) int {
	v := base + levelFor(experience) - 1
	if v > maxValue {
		return maxValue
	}
	return v
}

// AddExperience converts points into accumulated experience via the trait's
// growth rate and re-derives the level. Influence tags feed the per-trait
// weight map used for analytics only.
func (e *Engine) AddExperience(t *types.Trait, points float64, description string, influence []string) (*types.TraitChangeResult, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: experience points must be positive, got %v", types.ErrValidation, points)
	}

	prev := t.Value
	gained := points * t.GrowthRate
	t.Experience += gained

	next := valueFor(t.BaseValue, t.Experience)
	if next > t.Value {
		t.Value = next
		t.ReinforcementCount++
		t.Stability = math.Min(maxStability, t.Stability+stabilityGainOnGrow)
		t.History.Append(types.TraitEvent{
			At:     e.now(),
			Change: types.TraitChangeIncreased,
			Value:  t.Value,
			Reason: description,
		})
	}

	mergeInfluence(t, influence, gained)

	result := &types.TraitChangeResult{
		Kind:             t.Kind,
		PreviousValue:    prev,
		NewValue:         t.Value,
		ValueChanged:     t.Value != prev,
		ExperienceGained: gained,
	}
	if result.ValueChanged {
		result.Message = fmt.Sprintf("%s grew from %d to %d", t.Kind, prev, t.Value)
	} else {
		result.Message = fmt.Sprintf("%s gained %.1f experience", t.Kind, gained)
	}
	return result, nil
}

// Challenge pressures a trait downward. Strongly stabilized traits resist:
// only when (1-stability)*intensity clears the pressure bar and the value
// sits above its base does the trait regress.
func (e *Engine) Challenge(t *types.Trait, intensity float64, description string, influence []string) (*types.TraitChangeResult, error) {
	if intensity <= 0 || intensity > 1 {
		return nil, fmt.Errorf("%w: challenge intensity must be in (0,1], got %v", types.ErrValidation, intensity)
	}

	prev := t.Value
	pressure := (1 - t.Stability) * intensity

	if pressure > challengePressureBar && t.Value > t.BaseValue {
		reduction := int(math.Max(1, math.Round(intensity*2)))
		t.Value -= reduction
		if t.Value < t.BaseValue {
			t.Value = t.BaseValue
		}
		t.ChallengeCount++
		t.GrowthRate = math.Max(minGrowthRate, t.GrowthRate-growthRatePenalty)
		t.History.Append(types.TraitEvent{
			At:     e.now(),
			Change: types.TraitChangeChallenged,
			Value:  t.Value,
			Reason: description,
		})
	} else {
		// The attempt is noted but the trait holds.
		t.RecentExperiences.Add(description)
	}

	mergeInfluence(t, influence, intensity)

	result := &types.TraitChangeResult{
		Kind:          t.Kind,
		PreviousValue: prev,
		NewValue:      t.Value,
		ValueChanged:  t.Value != prev,
	}
	if result.ValueChanged {
		result.Message = fmt.Sprintf("%s was shaken and fell from %d to %d", t.Kind, prev, t.Value)
	} else {
		result.Message = fmt.Sprintf("%s withstood the challenge", t.Kind)
	}
	return result, nil
}

// ReinforcePositively awards bonus experience scaled by the current value.
// A multiplier of 0 or below selects the default of 1.5.
func (e *Engine) ReinforcePositively(t *types.Trait, description string, multiplier float64) (*types.TraitChangeResult, error) {
	if multiplier <= 0 {
		multiplier = defaultReinforceMultiplier
	}
	bonus := 5 * (1 + float64(t.Value)/10) * multiplier
	return e.AddExperience(t, bonus, description, nil)
}

func mergeInfluence(t *types.Trait, influence []string, weight float64) {
	if len(influence) == 0 {
		return
	}
	if t.InfluenceWeights == nil {
		t.InfluenceWeights = make(map[string]float64, len(influence))
	}
	for _, tag := range influence {
		if tag == "" {
			continue
		}
		t.InfluenceWeights[tag] += weight
	}
}
