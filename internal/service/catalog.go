package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// CatalogService reads tags and ingredients. The only writers are the get-or-create
// primitives used by the bulk loader.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "tag", ID: id}
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

// ListIngredients returns ingredients whose name starts with prefix, ignoring case
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Model(&models.Ingredient{})
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(prefix))+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Order("name").Order("id").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "ingredient", ID: id}
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	return &ingredient, nil
}

// GetOrCreateIngredient returns the ingredient with this exact name and unit, creating it
// if needed. The bool reports whether a row was created.
func (s *CatalogService) GetOrCreateIngredient(ctx context.Context, name, unit string) (*models.Ingredient, bool, error) {
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	res := s.db.WithContext(ctx).
		Where("name = ? AND measurement_unit = ?", name, unit).
		FirstOrCreate(&ingredient)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to get or create ingredient %q: %w", name, res.Error)
	}
	return &ingredient, res.RowsAffected > 0, nil
}

// GetOrCreateTag looks a tag up by name and creates it from tag when missing
func (s *CatalogService) GetOrCreateTag(ctx context.Context, tag models.Tag) (*models.Tag, bool, error) {
	res := s.db.WithContext(ctx).Where("name = ?", tag.Name).FirstOrCreate(&tag)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return nil, false, &ConflictError{Kind: "tag", Field: "slug", Message: fmt.Sprintf("tag %q clashes with an existing color or slug", tag.Name)}
		}
		return nil, false, fmt.Errorf("failed to get or create tag %q: %w", tag.Name, res.Error)
	}
	return &tag, res.RowsAffected > 0, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
