package trait

import "github.com/dschilow/Avatales-Backend-sub000/internal/types"

// synergyTable holds the fixed pairwise affinities between trait kinds.
// Pairs are stored once in catalog order; lookups normalize direction.
var synergyTable = map[[2]types.TraitKind]float64{
	{types.TraitCourage, types.TraitDetermination}:  0.8,
	{types.TraitCourage, types.TraitConfidence}:     0.7,
	{types.TraitCuriosity, types.TraitCreativity}:   0.9,
	{types.TraitCuriosity, types.TraitWisdom}:       0.8,
	{types.TraitCreativity, types.TraitHumor}:       0.7,
	{types.TraitEmpathy, types.TraitKindness}:       0.9,
	{types.TraitEmpathy, types.TraitHonesty}:        0.7,
	{types.TraitDetermination, types.TraitConfidence}: 0.6,
	{types.TraitHumor, types.TraitConfidence}:       0.6,
	{types.TraitWisdom, types.TraitHonesty}:         0.6,
}

// Synergy scores how strongly two traits amplify each other, scaled by the
// weaker of the two values. Unrelated pairs score zero.
func Synergy(a, b *types.Trait) float64 {
	if a == nil || b == nil {
		return 0
	}
	base, ok := synergyTable[[2]types.TraitKind{a.Kind, b.Kind}]
	if !ok {
		base, ok = synergyTable[[2]types.TraitKind{b.Kind, a.Kind}]
	}
	if !ok {
		return 0
	}
	lower := a.Value
	if b.Value < lower {
		lower = b.Value
	}
	return base * float64(lower) / 10
}
