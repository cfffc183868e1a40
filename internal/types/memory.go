package types

import "time"

// MemoryKind classifies an episodic record. The set is closed; switches over
// it are written exhaustively, without a default branch.
type MemoryKind string

const (
	MemoryExperience      MemoryKind = "experience"
	MemoryLearning        MemoryKind = "learning"
	MemoryEmotional       MemoryKind = "emotional"
	MemoryRelationship    MemoryKind = "relationship"
	MemoryAchievement     MemoryKind = "achievement"
	MemoryUserInteraction MemoryKind = "user_interaction"
)

// AllMemoryKinds lists every memory kind.
func AllMemoryKinds() []MemoryKind {
	return []MemoryKind{
		MemoryExperience,
		MemoryLearning,
		MemoryEmotional,
		MemoryRelationship,
		MemoryAchievement,
		MemoryUserInteraction,
	}
}

// Valid reports whether k is a known memory kind.
func (k MemoryKind) Valid() bool {
	switch k {
	case MemoryExperience, MemoryLearning, MemoryEmotional,
		MemoryRelationship, MemoryAchievement, MemoryUserInteraction:
		return true
	}
	return false
}

// Capacity bounds for memory collections.
const (
	MemoryTagCap       = 10
	MemoryCharacterCap = 10
	MemoryEmotionCap   = 5
)

// Memory is one stored episodic record attached to a character.
type Memory struct {
	ID          string     `json:"id"`
	CharacterID string     `json:"character_id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content,omitempty"`
	Kind        MemoryKind `json:"kind"`
	// Importance is a 1-10 tier; it moves only upward except via explicit
	// decay or archival.
	Importance int `json:"importance"`
	// DecayResistance in 1-5 is derived from importance.
	DecayResistance      int        `json:"decay_resistance"`
	OccurredAt           time.Time  `json:"occurred_at"`
	CreatedAt            time.Time  `json:"created_at"`
	LastAccessed         *time.Time `json:"last_accessed,omitempty"`
	AccessCount          int        `json:"access_count"`
	Tags                 BoundedSet `json:"tags"`
	AssociatedCharacters BoundedSet `json:"associated_characters"`
	EmotionalContext     BoundedSet `json:"emotional_context"`
	StoryID              string     `json:"story_id,omitempty"`
	// Consolidated marks a source memory superseded by a merged one.
	Consolidated     bool   `json:"consolidated"`
	ConsolidatedInto string `json:"consolidated_into,omitempty"`
	// SourceIDs are weak id-only links to the memories this one subsumes.
	SourceIDs     []string `json:"source_ids,omitempty"`
	Archived      bool     `json:"archived"`
	ArchiveReason string   `json:"archive_reason,omitempty"`
}

// NewMemory builds a memory with derived decay resistance and bounded sets
// initialized to their capacities.
func NewMemory(characterID, title, summary string, kind MemoryKind, importance int, now time.Time) *Memory {
	return &Memory{
		CharacterID:          characterID,
		Title:                title,
		Summary:              summary,
		Kind:                 kind,
		Importance:           importance,
		DecayResistance:      DecayResistanceFor(importance),
		OccurredAt:           now,
		CreatedAt:            now,
		Tags:                 NewBoundedSet(MemoryTagCap),
		AssociatedCharacters: NewBoundedSet(MemoryCharacterCap),
		EmotionalContext:     NewBoundedSet(MemoryEmotionCap),
	}
}

// DecayResistanceFor maps an importance tier to its 1-5 resistance tier.
func DecayResistanceFor(importance int) int {
	r := (importance + 1) / 2
	if r < 1 {
		r = 1
	}
	if r > 5 {
		r = 5
	}
	return r
}

// Active reports whether the memory is part of the character's active set.
func (m *Memory) Active() bool {
	return !m.Archived && !m.Consolidated
}

// Touch records one access. Every fifth access raises importance one tier
// (capped at 10) and re-derives decay resistance.
func (m *Memory) Touch(now time.Time) {
	m.AccessCount++
	t := now
	m.LastAccessed = &t
	if m.AccessCount%5 == 0 && m.Importance < 10 {
		m.Importance++
		m.DecayResistance = DecayResistanceFor(m.Importance)
	}
}

// Archive soft-removes the memory from the active set.
func (m *Memory) Archive(reason string) {
	m.Archived = true
	m.ArchiveReason = reason
}

// TagCount pairs a tag with its usage count.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// MemoryAnalysis is an ephemeral aggregate over a character's memories.
type MemoryAnalysis struct {
	Total             int                `json:"total"`
	ActiveCount       int                `json:"active_count"`
	ByKind            map[MemoryKind]int `json:"by_kind"`
	ByImportance      map[int]int        `json:"by_importance"`
	AverageImportance float64            `json:"average_importance"`
	TopTags           []TagCount         `json:"top_tags"`
	OldestAt          *time.Time         `json:"oldest_at,omitempty"`
	NewestAt          *time.Time         `json:"newest_at,omitempty"`
	MostAccessedID    string             `json:"most_accessed_id,omitempty"`
	Recommendations   []string           `json:"recommendations,omitempty"`
}
