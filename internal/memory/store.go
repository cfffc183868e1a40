// Package memory stores, scores, deduplicates, decays, and consolidates a
// bounded set of episodic memories attached to a character.
package memory

import (
	"context"

	"github.com/dschilow/Avatales-Backend-sub000/internal/types"
)

// Store persists and retrieves memories keyed by character id. Ordering of
// LoadByCharacter is not assumed. Durability and retry policy belong to the
// implementation; engine callers see failures unchanged.
type Store interface {
	LoadByCharacter(ctx context.Context, characterID string) ([]*types.Memory, error)
	Save(ctx context.Context, m *types.Memory) (*types.Memory, error)
	CountByCharacter(ctx context.Context, characterID string) (int, error)
}

// MergedText is the outcome of an external fluent merge of several memories.
type MergedText struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Content string `json:"content"`
}

// TextMerge produces fluent merged text from source memory texts. It is an
// optional collaborator: when absent or failing, the engine falls back to a
// deterministic concatenation so consolidation stays total.
type TextMerge interface {
	Merge(ctx context.Context, sources []string, reason string) (MergedText, error)
}
