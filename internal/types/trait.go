package types

import "time"

// TraitKind identifies one personality dimension. The set is closed; switches
// over it are written exhaustively, without a default branch.
type TraitKind string

const (
	TraitCourage       TraitKind = "courage"
	TraitCuriosity     TraitKind = "curiosity"
	TraitCreativity    TraitKind = "creativity"
	TraitEmpathy       TraitKind = "empathy"
	TraitDetermination TraitKind = "determination"
	TraitHonesty       TraitKind = "honesty"
	TraitHumor         TraitKind = "humor"
	TraitWisdom        TraitKind = "wisdom"
	TraitKindness      TraitKind = "kindness"
	TraitConfidence    TraitKind = "confidence"
)

// AllTraitKinds lists every trait kind in catalog order.
func AllTraitKinds() []TraitKind {
	return []TraitKind{
		TraitCourage,
		TraitCuriosity,
		TraitCreativity,
		TraitEmpathy,
		TraitDetermination,
		TraitHonesty,
		TraitHumor,
		TraitWisdom,
		TraitKindness,
		TraitConfidence,
	}
}

// Valid reports whether k is a known trait kind.
func (k TraitKind) Valid() bool {
	switch k {
	case TraitCourage, TraitCuriosity, TraitCreativity, TraitEmpathy,
		TraitDetermination, TraitHonesty, TraitHumor, TraitWisdom,
		TraitKindness, TraitConfidence:
		return true
	}
	return false
}

// TraitChangeKind labels one trait history event.
type TraitChangeKind string

const (
	TraitChangeIncreased  TraitChangeKind = "increased"
	TraitChangeChallenged TraitChangeKind = "challenged"
)

// TraitEvent is one entry in a trait's evolution history.
type TraitEvent struct {
	At     time.Time       `json:"at"`
	Change TraitChangeKind `json:"change"`
	Value  int             `json:"value"`
	Reason string          `json:"reason"`
}

// TraitHistoryCap bounds the evolution history per trait.
const TraitHistoryCap = 50

// TraitHistory is a fixed-capacity event queue, evicting oldest first.
type TraitHistory struct {
	Events []TraitEvent `json:"events"`
}

// Append records an event, dropping the oldest when full.
func (h *TraitHistory) Append(e TraitEvent) {
	if len(h.Events) >= TraitHistoryCap {
		h.Events = h.Events[1:]
	}
	h.Events = append(h.Events, e)
}

// Trait is one scored personality dimension of a character.
type Trait struct {
	Kind      TraitKind `json:"kind"`
	Value     int       `json:"value"`
	BaseValue int       `json:"base_value"`
	// Experience accumulates scaled experience points; the current value is
	// derived from it and never falls below BaseValue.
	Experience float64 `json:"experience"`
	// Stability in [0.5, 2.0] is resistance to challenge-driven regression.
	Stability float64 `json:"stability"`
	// GrowthRate in [0.5, 2.0] converts raw points into experience.
	GrowthRate         float64            `json:"growth_rate"`
	ReinforcementCount int                `json:"reinforcement_count"`
	ChallengeCount     int                `json:"challenge_count"`
	History            TraitHistory       `json:"history"`
	InfluenceWeights   map[string]float64 `json:"influence_weights,omitempty"`
	// RecentExperiences keeps short notes for challenge attempts that did
	// not change the value.
	RecentExperiences BoundedSet `json:"recent_experiences"`
}

// NewTrait creates a live trait at its DNA base value.
func NewTrait(kind TraitKind, base int) *Trait {
	if base < 1 {
		base = 1
	}
	if base > 10 {
		base = 10
	}
	return &Trait{
		Kind:              kind,
		Value:             base,
		BaseValue:         base,
		Stability:         1.0,
		GrowthRate:        1.0,
		RecentExperiences: NewBoundedSet(10),
	}
}

// TraitChangeResult is the ephemeral outcome of one trait operation.
type TraitChangeResult struct {
	Kind             TraitKind `json:"kind"`
	PreviousValue    int       `json:"previous_value"`
	NewValue         int       `json:"new_value"`
	ValueChanged     bool      `json:"value_changed"`
	ExperienceGained float64   `json:"experience_gained"`
	Message          string    `json:"message"`
}
