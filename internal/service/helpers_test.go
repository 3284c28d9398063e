package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memoryImages is an ImageStore that only records what it was asked to do
type memoryImages struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
}

func (m *memoryImages) Save(_ context.Context, img *types.ImagePayload) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := "/media/" + img.Filename
	m.saved = append(m.saved, ref)
	return ref, nil
}

func (m *memoryImages) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, ref)
	return nil
}

func pngPayload(name string) *types.ImagePayload {
	return &types.ImagePayload{
		Filename:    "recipes/" + name + ".png",
		ContentType: "image/png",
		Data:        []byte{0x89, 'P', 'N', 'G'},
	}
}

func recipeInput(name string, image string, lines ...types.IngredientAmount) service.RecipeInput {
	in := service.RecipeInput{
		Name:        name,
		Text:        "Mix and bake",
		CookingTime: 20,
		Ingredients: lines,
	}
	if image != "" {
		in.Image = pngPayload(image)
	}
	return in
}

func line(ingredient *models.Ingredient, amount int) types.IngredientAmount {
	return types.IngredientAmount{ID: ingredient.ID, Amount: amount}
}

func viewerOf(user *models.User) service.Viewer {
	return service.Viewer{ID: user.ID, IsStaff: user.IsStaff}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
