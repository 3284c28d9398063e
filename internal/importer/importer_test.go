package importer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/importer"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestFormatFromPath(t *testing.T) {
	f, err := importer.FormatFromPath("data/ingredients.CSV")
	require.NoError(t, err)
	assert.Equal(t, importer.FormatCSV, f)

	f, err = importer.FormatFromPath("/tmp/tags.json")
	require.NoError(t, err)
	assert.Equal(t, importer.FormatJSON, f)

	_, err = importer.FormatFromPath("ingredients.xml")
	assert.Error(t, err)
}

func TestReadIngredientsCSV(t *testing.T) {
	input := "name,measurement_unit\nабрикосовое варенье,г\n flour , g\n"

	records, err := importer.ReadIngredients(strings.NewReader(input), importer.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []importer.IngredientRecord{
		{Name: "абрикосовое варенье", MeasurementUnit: "г"},
		{Name: "flour", MeasurementUnit: "g"},
	}, records)
}

func TestReadIngredientsCSVWithoutHeader(t *testing.T) {
	records, err := importer.ReadIngredients(strings.NewReader("sugar,g\nmilk,ml\n"), importer.FormatCSV)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestReadIngredientsRejectsInvalidRecords(t *testing.T) {
	_, err := importer.ReadIngredients(strings.NewReader(`[{"name":"salt","measurement_unit":""}]`), importer.FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingredient record 1")
	assert.Contains(t, err.Error(), "measurementunit is required")

	_, err = importer.ReadIngredients(strings.NewReader("salt,g,extra\n"), importer.FormatCSV)
	assert.Error(t, err)
}

func TestReadTags(t *testing.T) {
	input := `[
		{"name": "Breakfast", "color": "#e26c2d", "slug": "breakfast"},
		{"name": "Lunch"}
	]`
	records, err := importer.ReadTags(strings.NewReader(input), importer.FormatJSON)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "#E26C2D", records[0].Color)
	assert.Empty(t, records[1].Slug)

	_, err = importer.ReadTags(strings.NewReader("Dinner,#12,dinner\n"), importer.FormatCSV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "color must be a #RRGGBB color")

	_, err = importer.ReadTags(strings.NewReader("Dinner,#123456,din ner\n"), importer.FormatCSV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slug may only contain")
}

func TestLoadIngredientsIsIdempotent(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	catalog := service.NewCatalogService(db)
	ctx := context.Background()

	records := []importer.IngredientRecord{
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "milk", MeasurementUnit: "ml"},
		{Name: "flour", MeasurementUnit: "g"},
	}

	result, err := importer.LoadIngredients(ctx, catalog, records)
	require.NoError(t, err)
	assert.Equal(t, importer.Result{Created: 2, Existing: 1}, result)

	result, err = importer.LoadIngredients(ctx, catalog, records)
	require.NoError(t, err)
	assert.Equal(t, importer.Result{Created: 0, Existing: 3}, result)

	var count int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestLoadTags(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	catalog := service.NewCatalogService(db)
	ctx := context.Background()

	result, err := importer.LoadTags(ctx, catalog, []importer.TagRecord{
		{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		{Name: "Lunch"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)

	var tag models.Tag
	require.NoError(t, db.Where("name = ?", "Lunch").First(&tag).Error)
	assert.Nil(t, tag.Color)
	assert.Nil(t, tag.Slug)

	// A new name reusing an existing slug clashes with the unique index
	_, err = importer.LoadTags(ctx, catalog, []importer.TagRecord{{Name: "Brunch", Slug: "breakfast"}})
	require.Error(t, err)
	var conflict *service.ConflictError
	assert.ErrorAs(t, err, &conflict)
}
