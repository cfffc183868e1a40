package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dschilow/Avatales-Backend-sub000/internal/memory"
	"github.com/dschilow/Avatales-Backend-sub000/internal/types"
)

// memoryModel maps to the memories table.
type memoryModel struct {
	ID              string `gorm:"primaryKey"`
	CharacterID     string `gorm:"index"`
	Title           string
	Summary         string
	Content         string
	Kind            string
	Importance      int
	DecayResistance int
	OccurredAt      time.Time
	CreatedAt       time.Time
	LastAccessed    *time.Time
	AccessCount     int
	// List fields are stored as JSONB for retrieval filters.
	Tags                 json.RawMessage `gorm:"type:jsonb"`
	AssociatedCharacters json.RawMessage `gorm:"type:jsonb"`
	EmotionalContext     json.RawMessage `gorm:"type:jsonb"`
	SourceIDs            json.RawMessage `gorm:"type:jsonb"`
	StoryID              string
	Consolidated         bool
	ConsolidatedInto     string
	Archived             bool
	ArchiveReason        string
}

func (memoryModel) TableName() string {
	return "memories"
}

// MemoryRepo accesses memory data. It implements memory.Store.
type MemoryRepo struct {
	db *gorm.DB
}

// NewMemoryRepo returns a MemoryRepo.
func NewMemoryRepo(db *gorm.DB) *MemoryRepo {
	return &MemoryRepo{db: db}
}

// LoadByCharacter returns every memory of a character, in no assumed order.
func (r *MemoryRepo) LoadByCharacter(ctx context.Context, characterID string) ([]*types.Memory, error) {
	var records []memoryModel
	if err := r.db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}

	results := make([]*types.Memory, 0, len(records))
	for _, record := range records {
		results = append(results, memoryFromModel(record))
	}
	return results, nil
}

// Save inserts or updates a memory.
func (r *MemoryRepo) Save(ctx context.Context, m *types.Memory) (*types.Memory, error) {
	record, err := memoryToModel(m)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to save memory: %w", err)
	}
	return m, nil
}

// CharacterIDs returns the distinct character ids holding memories, used by
// the maintenance sweep.
func (r *MemoryRepo) CharacterIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&memoryModel{}).
		Distinct("character_id").
		Pluck("character_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list character ids: %w", err)
	}
	return ids, nil
}

// CountByCharacter returns the number of stored memories for a character.
func (r *MemoryRepo) CountByCharacter(ctx context.Context, characterID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&memoryModel{}).
		Where("character_id = ?", characterID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count memories: %w", err)
	}
	return int(count), nil
}

func memoryToModel(m *types.Memory) (memoryModel, error) {
	tags, err := marshalJSON(m.Tags.Items)
	if err != nil {
		return memoryModel{}, fmt.Errorf("failed to encode memory tags: %w", err)
	}
	associated, err := marshalJSON(m.AssociatedCharacters.Items)
	if err != nil {
		return memoryModel{}, fmt.Errorf("failed to encode associated characters: %w", err)
	}
	emotions, err := marshalJSON(m.EmotionalContext.Items)
	if err != nil {
		return memoryModel{}, fmt.Errorf("failed to encode emotional context: %w", err)
	}
	sources, err := marshalJSON(m.SourceIDs)
	if err != nil {
		return memoryModel{}, fmt.Errorf("failed to encode source ids: %w", err)
	}
	return memoryModel{
		ID:                   m.ID,
		CharacterID:          m.CharacterID,
		Title:                m.Title,
		Summary:              m.Summary,
		Content:              m.Content,
		Kind:                 string(m.Kind),
		Importance:           m.Importance,
		DecayResistance:      m.DecayResistance,
		OccurredAt:           m.OccurredAt,
		CreatedAt:            m.CreatedAt,
		LastAccessed:         m.LastAccessed,
		AccessCount:          m.AccessCount,
		Tags:                 tags,
		AssociatedCharacters: associated,
		EmotionalContext:     emotions,
		SourceIDs:            sources,
		StoryID:              m.StoryID,
		Consolidated:         m.Consolidated,
		ConsolidatedInto:     m.ConsolidatedInto,
		Archived:             m.Archived,
		ArchiveReason:        m.ArchiveReason,
	}, nil
}

// memoryFromModel converts the database model to the domain struct,
// restoring the bounded-set capacities.
func memoryFromModel(model memoryModel) *types.Memory {
	var tags, associated, emotions, sources []string
	_ = unmarshalJSON(model.Tags, &tags)
	_ = unmarshalJSON(model.AssociatedCharacters, &associated)
	_ = unmarshalJSON(model.EmotionalContext, &emotions)
	_ = unmarshalJSON(model.SourceIDs, &sources)

	tagSet := types.NewBoundedSet(types.MemoryTagCap)
	tagSet.AddAll(tags)
	charSet := types.NewBoundedSet(types.MemoryCharacterCap)
	charSet.AddAll(associated)
	emotionSet := types.NewBoundedSet(types.MemoryEmotionCap)
	emotionSet.AddAll(emotions)

	return &types.Memory{
		ID:                   model.ID,
		CharacterID:          model.CharacterID,
		Title:                model.Title,
		Summary:              model.Summary,
		Content:              model.Content,
		Kind:                 types.MemoryKind(model.Kind),
		Importance:           model.Importance,
		DecayResistance:      model.DecayResistance,
		OccurredAt:           model.OccurredAt,
		CreatedAt:            model.CreatedAt,
		LastAccessed:         model.LastAccessed,
		AccessCount:          model.AccessCount,
		Tags:                 tagSet,
		AssociatedCharacters: charSet,
		EmotionalContext:     emotionSet,
		SourceIDs:            sources,
		StoryID:              model.StoryID,
		Consolidated:         model.Consolidated,
		ConsolidatedInto:     model.ConsolidatedInto,
		Archived:             model.Archived,
		ArchiveReason:        model.ArchiveReason,
	}
}

// marshalJSON encodes a value into JSONB, returning nil for empty values.
func marshalJSON(value any) (json.RawMessage, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// unmarshalJSON decodes JSONB into the provided target.
func unmarshalJSON(data json.RawMessage, target any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}

var _ memory.Store = (*MemoryRepo)(nil)
