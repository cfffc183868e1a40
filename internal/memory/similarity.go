package memory

import (
	"strings"
	"time"
	"unicode"

	"github.com/dschilow/Avatales-Backend-sub000/internal/types"
)

// Similarity component weights. Each term is computed independently and the
// sum is capped at 1.0.
const (
	tagWeight     = 0.3
	kindWeight    = 0.2
	timeWeight    = 0.2
	summaryWeight = 0.3

	proximityWindow = 7 * 24 * time.Hour
)

// Similarity scores how alike two memories are, in [0,1]. It is symmetric
// and side-effect free.
func Similarity(a, b *types.Memory) float64 {
	score := tagWeight * jaccard(a.Tags.Items, b.Tags.Items)
	if a.Kind == b.Kind {
		score += kindWeight
	}
	diff := a.OccurredAt.Sub(b.OccurredAt)
	if diff < 0 {
		diff = -diff
	}
	if diff < proximityWindow {
		score += timeWeight
	}
	score += summaryWeight * jaccard(tokenize(a.Summary), tokenize(b.Summary))
	if score > 1 {
		return 1
	}
	return score
}

// jaccard computes |A∩B| / |A∪B| over two string lists. Two empty lists
// score zero.
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[strings.ToLower(s)] = struct{}{}
	}
	union := make(map[string]struct{}, len(a)+len(b))
	for s := range setA {
		union[s] = struct{}{}
	}
	intersection := 0
	seenB := make(map[string]struct{}, len(b))
	for _, s := range b {
		lower := strings.ToLower(s)
		if _, dup := seenB[lower]; dup {
			continue
		}
		seenB[lower] = struct{}{}
		union[lower] = struct{}{}
		if _, ok := setA[lower]; ok {
			intersection++
		}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}

// tokenize splits text into lowercased word tokens.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// extractKeywords returns the distinct lowercased context keywords used for
// relevance scoring. Very short tokens carry no signal and are dropped.
func extractKeywords(text string) []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, token := range tokenize(text) {
		if len(token) < 3 {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}
	return keywords
}

// kindKeywords expands a memory kind into the topic terms it implies. The
// switch is exhaustive over the closed kind set.
func kindKeywords(kind types.MemoryKind) []string {
	switch kind {
	case types.MemoryExperience:
		return []string{"adventure", "journey", "event"}
	case types.MemoryLearning:
		return []string{"lesson", "discovery", "knowledge"}
	case types.MemoryEmotional:
		return []string{"feeling", "emotion", "mood"}
	case types.MemoryRelationship:
		return []string{"friend", "family", "bond"}
	case types.MemoryAchievement:
		return []string{"success", "victory", "milestone"}
	case types.MemoryUserInteraction:
		return []string{"conversation", "question", "play"}
	}
	return nil
}
