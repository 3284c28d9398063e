package service_test

import (
	"context"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateShoppingList(t *testing.T) {
	items := service.AggregateShoppingList([]service.ShoppingListLine{
		{Name: "flour", MeasurementUnit: "g", Amount: 200},
		{Name: "milk", MeasurementUnit: "ml", Amount: 300},
		{Name: "flour", MeasurementUnit: "g", Amount: 300},
		{Name: "flour", MeasurementUnit: "kg", Amount: 1},
	})

	assert.Equal(t, []service.ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", Total: 500},
		{Name: "milk", MeasurementUnit: "ml", Total: 300},
		{Name: "flour", MeasurementUnit: "kg", Total: 1},
	}, items)
}

func TestRenderShoppingListEmpty(t *testing.T) {
	assert.Equal(t, "Shopping list:\n", service.RenderShoppingList(nil))
}

func TestBuildShoppingList(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ctx := context.Background()
	chef := testhelpers.CreateTestUser(t, db, "chef", false)
	shopper := testhelpers.CreateTestUser(t, db, "shopper", false)
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")
	sugar := testhelpers.CreateTestIngredient(t, db, "sugar", "g")

	cake := testhelpers.CreateTestRecipe(t, db, chef, "Cake", map[*models.Ingredient]int{flour: 200})
	require.NoError(t, db.Omit("Ingredient").Create(&models.RecipeIngredient{RecipeID: cake.ID, IngredientID: sugar.ID, Amount: 50}).Error)
	bread := testhelpers.CreateTestRecipe(t, db, chef, "Bread", map[*models.Ingredient]int{flour: 300})

	list := service.NewShoppingListService(db)

	empty, err := list.BuildShoppingList(ctx, shopper.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shopping list:\n", empty)

	carts := service.NewShoppingCartService(db)
	_, err = carts.Add(ctx, shopper.ID, cake.ID)
	require.NoError(t, err)
	_, err = carts.Add(ctx, shopper.ID, bread.ID)
	require.NoError(t, err)

	text, err := list.BuildShoppingList(ctx, shopper.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shopping list:\nflour (g) - 500\nsugar (g) - 50\n", text)

	// another user's cart is unaffected
	other, err := list.BuildShoppingList(ctx, chef.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shopping list:\n", other)

	_, err = list.BuildShoppingList(ctx, 0)
	assert.ErrorIs(t, err, service.ErrAuthenticationRequired)
}
