package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dschilow/Avatales-Backend-sub000/internal/character"
	"github.com/dschilow/Avatales-Backend-sub000/internal/types"
)

// characterModel maps to the characters table. DNA and traits are stored as
// JSONB snapshots; DNA never changes after creation.
type characterModel struct {
	ID        string `gorm:"primaryKey"`
	OwnerID   string `gorm:"index"`
	Name      string
	DNA       json.RawMessage `gorm:"type:jsonb"`
	Traits    json.RawMessage `gorm:"type:jsonb"`
	WordCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (characterModel) TableName() string {
	return "characters"
}

// CharacterRepo accesses character data. It implements character.Repo.
type CharacterRepo struct {
	db *gorm.DB
}

// NewCharacterRepo returns a CharacterRepo.
func NewCharacterRepo(db *gorm.DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

// Create stores a freshly created character.
func (r *CharacterRepo) Create(ctx context.Context, c *types.Character) error {
	record, err := characterToModel(c)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert character: %w", err)
	}
	return nil
}

// GetByID fetches a character with its trait set.
func (r *CharacterRepo) GetByID(ctx context.Context, id string) (*types.Character, error) {
	var record characterModel
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: character %s", types.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	return characterFromModel(record)
}

// UpdateTraits persists a character's evolved trait set and word count.
func (r *CharacterRepo) UpdateTraits(ctx context.Context, id string, traits map[types.TraitKind]*types.Trait, wordCount int) error {
	raw, err := marshalJSON(traits)
	if err != nil {
		return fmt.Errorf("failed to encode traits: %w", err)
	}
	result := r.db.WithContext(ctx).
		Model(&characterModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"traits":     raw,
			"word_count": wordCount,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update traits: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: character %s", types.ErrNotFound, id)
	}
	return nil
}

// ListByOwner returns the characters belonging to one owner.
func (r *CharacterRepo) ListByOwner(ctx context.Context, ownerID string) ([]*types.Character, error) {
	var records []characterModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	results := make([]*types.Character, 0, len(records))
	for _, record := range records {
		c, err := characterFromModel(record)
		if err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, nil
}

func characterToModel(c *types.Character) (characterModel, error) {
	dna, err := marshalJSON(c.DNA)
	if err != nil {
		return characterModel{}, fmt.Errorf("failed to encode dna: %w", err)
	}
	traits, err := marshalJSON(c.Traits)
	if err != nil {
		return characterModel{}, fmt.Errorf("failed to encode traits: %w", err)
	}
	return characterModel{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      c.Name,
		DNA:       dna,
		Traits:    traits,
		WordCount: c.WordCount,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}, nil
}

func characterFromModel(model characterModel) (*types.Character, error) {
	c := &types.Character{
		ID:        model.ID,
		OwnerID:   model.OwnerID,
		Name:      model.Name,
		WordCount: model.WordCount,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if err := unmarshalJSON(model.DNA, &c.DNA); err != nil {
		return nil, fmt.Errorf("failed to decode dna: %w", err)
	}
	if err := unmarshalJSON(model.Traits, &c.Traits); err != nil {
		return nil, fmt.Errorf("failed to decode traits: %w", err)
	}
	if c.Traits == nil {
		c.Traits = types.TraitsFromDNA(c.DNA)
	}
	return c, nil
}

var _ character.Repo = (*CharacterRepo)(nil)
