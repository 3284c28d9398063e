package importer

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/models"
)

// Catalog is the get-or-create surface the loader writes through
type Catalog interface {
	GetOrCreateIngredient(ctx context.Context, name, unit string) (*models.Ingredient, bool, error)
	GetOrCreateTag(ctx context.Context, tag models.Tag) (*models.Tag, bool, error)
}

// Result counts what a load did
type Result struct {
	Created  int
	Existing int
}

func (r *Result) add(created bool) {
	if created {
		r.Created++
	} else {
		r.Existing++
	}
}

// LoadIngredients stores every record; loading the same file twice creates nothing new
func LoadIngredients(ctx context.Context, catalog Catalog, records []IngredientRecord) (Result, error) {
	var result Result
	for i, record := range records {
		_, created, err := catalog.GetOrCreateIngredient(ctx, record.Name, record.MeasurementUnit)
		if err != nil {
			return result, fmt.Errorf("ingredient record %d: %w", i+1, err)
		}
		result.add(created)
	}
	return result, nil
}

func LoadTags(ctx context.Context, catalog Catalog, records []TagRecord) (Result, error) {
	var result Result
	for i, record := range records {
		tag := models.Tag{Name: record.Name}
		if record.Color != "" {
			color := record.Color
			tag.Color = &color
		}
		if record.Slug != "" {
			slug := record.Slug
			tag.Slug = &slug
		}

		_, created, err := catalog.GetOrCreateTag(ctx, tag)
		if err != nil {
			return result, fmt.Errorf("tag record %d: %w", i+1, err)
		}
		result.add(created)
	}
	return result, nil
}
