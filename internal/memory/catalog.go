package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dschilow/Avatales-Backend-sub000/internal/types"
)

// Catalog is an in-process read view over one character's memories. All
// operations are pure; nothing is persisted through the catalog.
type Catalog struct {
	memories []*types.Memory
}

// NewCatalog wraps an already loaded memory set.
func NewCatalog(memories []*types.Memory) *Catalog {
	return &Catalog{memories: memories}
}

// LoadCatalog reads a character's full memory set from the store.
func LoadCatalog(ctx context.Context, store Store, characterID string) (*Catalog, error) {
	memories, err := store.LoadByCharacter(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load memories: %w", err)
	}
	return NewCatalog(memories), nil
}

// All returns every memory, archived and consolidated included.
func (c *Catalog) All() []*types.Memory {
	return c.memories
}

// Active returns memories neither archived nor consolidated.
func (c *Catalog) Active() []*types.Memory {
	var active []*types.Memory
	for _, m := range c.memories {
		if m.Active() {
			active = append(active, m)
		}
	}
	return active
}

// Search returns active memories whose title, summary, or tags contain the
// query, case-insensitively.
func (c *Catalog) Search(query string) []*types.Memory {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	var hits []*types.Memory
	for _, m := range c.Active() {
		if memoryMatches(m, query) {
			hits = append(hits, m)
		}
	}
	return hits
}

// ByTopic returns active memories about the topic, matching text fields and
// the kind's implied topic terms.
func (c *Catalog) ByTopic(topic string) []*types.Memory {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return nil
	}
	var hits []*types.Memory
	for _, m := range c.Active() {
		if memoryMatches(m, topic) {
			hits = append(hits, m)
			continue
		}
		for _, kw := range kindKeywords(m.Kind) {
			if kw == topic {
				hits = append(hits, m)
				break
			}
		}
	}
	return hits
}

// GroupByKind buckets active memories by kind.
func (c *Catalog) GroupByKind() map[types.MemoryKind][]*types.Memory {
	groups := make(map[types.MemoryKind][]*types.Memory)
	for _, m := range c.Active() {
		groups[m.Kind] = append(groups[m.Kind], m)
	}
	return groups
}

// SimilarTo returns active memories scoring above the threshold against the
// reference, excluding the reference itself.
func (c *Catalog) SimilarTo(ref *types.Memory, threshold float64) []*types.Memory {
	var similar []*types.Memory
	for _, m := range c.Active() {
		if m.ID == ref.ID {
			continue
		}
		if Similarity(ref, m) > threshold {
			similar = append(similar, m)
		}
	}
	return similar
}

// Analyze computes aggregate statistics and heuristic recommendations over
// the full set. The result is ephemeral and recomputed on demand.
func (c *Catalog) Analyze() *types.MemoryAnalysis {
	analysis := &types.MemoryAnalysis{
		Total:        len(c.memories),
		ByKind:       make(map[types.MemoryKind]int),
		ByImportance: make(map[int]int),
	}

	tagCounts := make(map[string]int)
	importanceSum := 0
	maxAccess := -1
	lowImportance := 0

	for _, m := range c.memories {
		if !m.Active() {
			continue
		}
		analysis.ActiveCount++
		analysis.ByKind[m.Kind]++
		analysis.ByImportance[m.Importance]++
		importanceSum += m.Importance
		for _, tag := range m.Tags.Items {
			tagCounts[tag]++
		}
		if m.Importance <= 3 {
			lowImportance++
		}

		occurred := m.OccurredAt
		if analysis.OldestAt == nil || occurred.Before(*analysis.OldestAt) {
			t := occurred
			analysis.OldestAt = &t
		}
		if analysis.NewestAt == nil || occurred.After(*analysis.NewestAt) {
			t := occurred
			analysis.NewestAt = &t
		}
		if m.AccessCount > maxAccess {
			maxAccess = m.AccessCount
			analysis.MostAccessedID = m.ID
		}
	}

	if analysis.ActiveCount > 0 {
		analysis.AverageImportance = float64(importanceSum) / float64(analysis.ActiveCount)
	}
	analysis.TopTags = topTags(tagCounts, 5)

	if analysis.Total > 80 {
		analysis.Recommendations = append(analysis.Recommendations,
			fmt.Sprintf("consolidate: total memories %d exceed 80", analysis.Total))
	}
	if lowImportance > analysis.ActiveCount/2 && analysis.ActiveCount > 10 {
		analysis.Recommendations = append(analysis.Recommendations,
			"decay sweep: more than half of active memories are low importance")
	}

	return analysis
}

func topTags(counts map[string]int, limit int) []types.TagCount {
	tags := make([]types.TagCount, 0, len(counts))
	for tag, count := range counts {
		tags = append(tags, types.TagCount{Tag: tag, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})
	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}

func memoryMatches(m *types.Memory, lowered string) bool {
	if strings.Contains(strings.ToLower(m.Title), lowered) {
		return true
	}
	if strings.Contains(strings.ToLower(m.Summary), lowered) {
		return true
	}
	for _, tag := range m.Tags.Items {
		if strings.ToLower(tag) == lowered {
			return true
		}
	}
	return false
}
