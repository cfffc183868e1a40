package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub000/internal/types"
)

// Options carries the tunable thresholds of the memory lifecycle. The three
// similarity thresholds are deliberately distinct and configured, not
// derived from each other.
type Options struct {
	// DuplicateThreshold: above it a new memory is treated as a duplicate
	// of an existing one and merged instead of inserted.
	DuplicateThreshold float64
	// AutoConsolidateThreshold: above it existing memories cluster with a
	// newly recorded one; two or more hits trigger consolidation.
	AutoConsolidateThreshold float64
	// CandidateThreshold: above it memories pair up in the standing
	// consolidation-candidate scan.
	CandidateThreshold float64
	// MaxActiveMemories caps the active, non-core set per character.
	MaxActiveMemories int
	// CoreImportance marks memories exempt from the capacity cap.
	CoreImportance int
	// RecencyWindow is the access window that counts as recent in
	// relevance scoring.
	RecencyWindow time.Duration
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		DuplicateThreshold:       0.9,
		AutoConsolidateThreshold: 0.6,
		CandidateThreshold:       0.7,
		MaxActiveMemories:        50,
		CoreImportance:           9,
		RecencyWindow:            7 * 24 * time.Hour,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.DuplicateThreshold <= 0 {
		o.DuplicateThreshold = def.DuplicateThreshold
	}
	if o.AutoConsolidateThreshold <= 0 {
		o.AutoConsolidateThreshold = def.AutoConsolidateThreshold
	}
	if o.CandidateThreshold <= 0 {
		o.CandidateThreshold = def.CandidateThreshold
	}
	if o.MaxActiveMemories <= 0 {
		o.MaxActiveMemories = def.MaxActiveMemories
	}
	if o.CoreImportance <= 0 {
		o.CoreImportance = def.CoreImportance
	}
	if o.RecencyWindow <= 0 {
		o.RecencyWindow = def.RecencyWindow
	}
	return o
}

// Engine orchestrates the memory lifecycle: insertion with duplicate
// detection, auto-consolidation, relevance ranking, decay, and bounded
// archival. Callers must serialize mutating calls per character.
type Engine struct {
	store Store
	merge TextMerge
	opts  Options
	now   func() time.Time
}

// NewEngine returns a memory engine. merge may be nil; consolidation then
// uses the deterministic fallback text.
func NewEngine(store Store, merge TextMerge, opts Options) *Engine {
	return &Engine{
		store: store,
		merge: merge,
		opts:  opts.withDefaults(),
		now:   time.Now,
	}
}

// Record validates and inserts a memory. A near-duplicate of an existing
// memory is merged instead of inserted; otherwise insertion is followed by
// auto-consolidation discovery and capacity enforcement.
func (e *Engine) Record(ctx context.Context, characterID string, m *types.Memory) (*types.Memory, error) {
	if err := validateMemory(m); err != nil {
		return nil, err
	}
	e.prepare(characterID, m)

	catalog, err := LoadCatalog(ctx, e.store, characterID)
	if err != nil {
		return nil, err
	}

	for _, existing := range catalog.Active() {
		if Similarity(existing, m) > e.opts.DuplicateThreshold {
			return e.Consolidate(ctx, characterID, []*types.Memory{existing, m}, "duplicate")
		}
	}

	saved, err := e.store.Save(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("failed to save memory: %w", err)
	}

	cluster := catalog.SimilarTo(saved, e.opts.AutoConsolidateThreshold)
	if len(cluster) >= 2 {
		if _, err := e.Consolidate(ctx, characterID, append(cluster, saved), "auto"); err != nil {
			return nil, err
		}
	}

	if _, err := e.EnforceLimit(ctx, characterID); err != nil {
		return nil, err
	}
	return saved, nil
}

// Consolidate merges two or more memories into one new memory that subsumes
// them. Sources stay stored, marked consolidated with a back-reference; they
// are never deleted.
func (e *Engine) Consolidate(ctx context.Context, characterID string, sources []*types.Memory, reason string) (*types.Memory, error) {
	if len(sources) < 2 {
		return nil, fmt.Errorf("%w: consolidation needs at least 2 memories, got %d", types.ErrValidation, len(sources))
	}

	now := e.now()
	merged := &types.Memory{
		ID:                   uuid.NewString(),
		CharacterID:          characterID,
		Kind:                 dominantKind(sources),
		OccurredAt:           earliestOccurrence(sources),
		CreatedAt:            now,
		Tags:                 types.NewBoundedSet(types.MemoryTagCap),
		AssociatedCharacters: types.NewBoundedSet(types.MemoryCharacterCap),
		EmotionalContext:     types.NewBoundedSet(types.MemoryEmotionCap),
	}

	maxImportance := 0
	for _, src := range sources {
		if src.Importance > maxImportance {
			maxImportance = src.Importance
		}
		merged.Tags.AddAll(src.Tags.Items)
		merged.AssociatedCharacters.AddAll(src.AssociatedCharacters.Items)
		merged.EmotionalContext.AddAll(src.EmotionalContext.Items)
		merged.SourceIDs = append(merged.SourceIDs, src.ID)
		if src.StoryID != "" && merged.StoryID == "" {
			merged.StoryID = src.StoryID
		}
	}
	merged.Importance = maxImportance + 1
	if merged.Importance > 10 {
		merged.Importance = 10
	}
	merged.DecayResistance = types.DecayResistanceFor(merged.Importance)

	text := e.mergeText(ctx, sources, reason)
	merged.Title = text.Title
	merged.Summary = text.Summary
	merged.Content = text.Content

	saved, err := e.store.Save(ctx, merged)
	if err != nil {
		return nil, fmt.Errorf("failed to save consolidated memory: %w", err)
	}

	for _, src := range sources {
		src.Consolidated = true
		src.ConsolidatedInto = saved.ID
		if _, err := e.store.Save(ctx, src); err != nil {
			return nil, fmt.Errorf("failed to mark source memory consolidated: %w", err)
		}
	}
	return saved, nil
}

// Relevant ranks memories against a context text and returns the top
// results, recording an access on each. Deterministic given identical
// inputs and state.
func (e *Engine) Relevant(ctx context.Context, characterID, contextText string, maxResults int) ([]*types.Memory, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	catalog, err := LoadCatalog(ctx, e.store, characterID)
	if err != nil {
		return nil, err
	}

	keywords := extractKeywords(contextText)
	now := e.now()

	type scored struct {
		memory *types.Memory
		score  float64
	}
	var ranked []scored
	for _, m := range catalog.Active() {
		ranked = append(ranked, scored{memory: m, score: e.relevanceScore(m, keywords, now)})
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.memory.Importance != b.memory.Importance {
			return a.memory.Importance > b.memory.Importance
		}
		if a.memory.AccessCount != b.memory.AccessCount {
			return a.memory.AccessCount > b.memory.AccessCount
		}
		return a.memory.ID < b.memory.ID
	})

	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	results := make([]*types.Memory, 0, len(ranked))
	for _, r := range ranked {
		r.memory.Touch(now)
		if _, err := e.store.Save(ctx, r.memory); err != nil {
			return nil, fmt.Errorf("failed to record memory access: %w", err)
		}
		results = append(results, r.memory)
	}
	return results, nil
}

// ProcessDecay archives low-value memories that have gone stale. Archival
// never deletes. Returns the number of memories archived.
func (e *Engine) ProcessDecay(ctx context.Context, characterID string) (int, error) {
	catalog, err := LoadCatalog(ctx, e.store, characterID)
	if err != nil {
		return 0, err
	}

	now := e.now()
	archived := 0
	for _, m := range catalog.Active() {
		days := e.daysSinceAccess(m, now)
		factor := days/30 - float64(m.DecayResistance)/10 - float64(m.Importance)/10
		if factor < 0 {
			factor = 0
		}
		lowValue := m.Importance <= 3 && m.DecayResistance <= 2
		untouched := m.AccessCount == 0 && days > 30
		if factor > 0.5 && (lowValue || untouched) {
			m.Archive(fmt.Sprintf("decay: inactive for %.0f days", days))
			if _, err := e.store.Save(ctx, m); err != nil {
				return archived, fmt.Errorf("failed to archive decayed memory: %w", err)
			}
			archived++
		}
	}
	return archived, nil
}

// EnforceLimit archives the least valuable excess when the active, non-core
// memory count exceeds the cap. Returns the number archived.
func (e *Engine) EnforceLimit(ctx context.Context, characterID string) (int, error) {
	catalog, err := LoadCatalog(ctx, e.store, characterID)
	if err != nil {
		return 0, err
	}

	var capped []*types.Memory
	for _, m := range catalog.Active() {
		if m.Importance >= e.opts.CoreImportance {
			continue
		}
		capped = append(capped, m)
	}
	excess := len(capped) - e.opts.MaxActiveMemories
	if excess <= 0 {
		return 0, nil
	}

	sort.Slice(capped, func(i, j int) bool {
		a, b := capped[i], capped[j]
		if a.Importance != b.Importance {
			return a.Importance < b.Importance
		}
		at, bt := lastActivity(a), lastActivity(b)
		if !at.Equal(bt) {
			return at.Before(bt)
		}
		return a.ID < b.ID
	})

	for _, m := range capped[:excess] {
		m.Archive("capacity: active memory limit reached")
		if _, err := e.store.Save(ctx, m); err != nil {
			return 0, fmt.Errorf("failed to archive excess memory: %w", err)
		}
	}
	return excess, nil
}

// ConsolidationCandidates scans for active memory pairs scoring above the
// candidate threshold, clustered greedily. A read-only maintenance view.
func (e *Engine) ConsolidationCandidates(ctx context.Context, characterID string) ([][]*types.Memory, error) {
	catalog, err := LoadCatalog(ctx, e.store, characterID)
	if err != nil {
		return nil, err
	}

	active := catalog.Active()
	claimed := make(map[string]bool, len(active))
	var clusters [][]*types.Memory
	for i, m := range active {
		if claimed[m.ID] {
			continue
		}
		cluster := []*types.Memory{m}
		for _, other := range active[i+1:] {
			if claimed[other.ID] {
				continue
			}
			if Similarity(m, other) > e.opts.CandidateThreshold {
				cluster = append(cluster, other)
			}
		}
		if len(cluster) < 2 {
			continue
		}
		for _, member := range cluster {
			claimed[member.ID] = true
		}
		clusters = append(clusters, cluster)
	}
	return clusters, nil
}

func (e *Engine) relevanceScore(m *types.Memory, keywords []string, now time.Time) float64 {
	haystack := strings.ToLower(m.Title + " " + m.Summary + " " + strings.Join(m.Tags.Items, " "))
	score := 0.0
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			score += 0.1
		}
	}
	score += float64(m.Importance) / 10 * 0.3
	if m.LastAccessed != nil && now.Sub(*m.LastAccessed) <= e.opts.RecencyWindow {
		score += 0.2
	}
	if score > 1 {
		return 1
	}
	return score
}

func (e *Engine) daysSinceAccess(m *types.Memory, now time.Time) float64 {
	ref := m.CreatedAt
	if m.LastAccessed != nil {
		ref = *m.LastAccessed
	}
	return now.Sub(ref).Hours() / 24
}

// mergeText asks the external merge provider for fluent text and falls back
// to a deterministic concatenation on absence or failure.
func (e *Engine) mergeText(ctx context.Context, sources []*types.Memory, reason string) MergedText {
	if e.merge != nil {
		texts := make([]string, 0, len(sources))
		for _, src := range sources {
			texts = append(texts, src.Title+": "+src.Summary)
		}
		merged, err := e.merge.Merge(ctx, texts, reason)
		if err == nil && merged.Title != "" && merged.Summary != "" {
			return merged
		}
		if err != nil {
			slog.Warn("text merge failed, using fallback", "error", err, "reason", reason)
		}
	}
	return fallbackMergeText(sources)
}

func fallbackMergeText(sources []*types.Memory) MergedText {
	titles := make([]string, 0, len(sources))
	summaries := make([]string, 0, len(sources))
	var contents []string
	for _, src := range sources {
		titles = append(titles, src.Title)
		summaries = append(summaries, src.Summary)
		if src.Content != "" {
			contents = append(contents, src.Content)
		}
	}
	return MergedText{
		Title:   "Merged: " + strings.Join(titles, " / "),
		Summary: strings.Join(summaries, " "),
		Content: strings.Join(contents, "\n"),
	}
}

// dominantKind picks the most common kind among sources; ties go to the
// kind of the highest-importance source holding a tied kind.
func dominantKind(sources []*types.Memory) types.MemoryKind {
	counts := make(map[types.MemoryKind]int, len(sources))
	maxCount := 0
	for _, src := range sources {
		counts[src.Kind]++
		if counts[src.Kind] > maxCount {
			maxCount = counts[src.Kind]
		}
	}
	best := sources[0].Kind
	bestImportance := -1
	for _, src := range sources {
		if counts[src.Kind] == maxCount && src.Importance > bestImportance {
			best = src.Kind
			bestImportance = src.Importance
		}
	}
	return best
}

func earliestOccurrence(sources []*types.Memory) time.Time {
	earliest := sources[0].OccurredAt
	for _, src := range sources[1:] {
		if src.OccurredAt.Before(earliest) {
			earliest = src.OccurredAt
		}
	}
	return earliest
}

func lastActivity(m *types.Memory) time.Time {
	if m.LastAccessed != nil {
		return *m.LastAccessed
	}
	return m.CreatedAt
}

func validateMemory(m *types.Memory) error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("%w: memory title must not be empty", types.ErrValidation)
	}
	if strings.TrimSpace(m.Summary) == "" {
		return fmt.Errorf("%w: memory summary must not be empty", types.ErrValidation)
	}
	if m.Importance < 1 || m.Importance > 10 {
		return fmt.Errorf("%w: importance must be in [1,10], got %d", types.ErrValidation, m.Importance)
	}
	if !m.Kind.Valid() {
		return fmt.Errorf("%w: unknown memory kind %q", types.ErrValidation, m.Kind)
	}
	return nil
}

// prepare fills generated and derived fields before insertion.
func (e *Engine) prepare(characterID string, m *types.Memory) {
	now := e.now()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CharacterID = characterID
	if m.OccurredAt.IsZero() {
		m.OccurredAt = now
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.DecayResistance == 0 {
		m.DecayResistance = types.DecayResistanceFor(m.Importance)
	}
	if m.Tags.Cap == 0 {
		m.Tags.Cap = types.MemoryTagCap
	}
	if m.AssociatedCharacters.Cap == 0 {
		m.AssociatedCharacters.Cap = types.MemoryCharacterCap
	}
	if m.EmotionalContext.Cap == 0 {
		m.EmotionalContext.Cap = types.MemoryEmotionCap
	}
}
