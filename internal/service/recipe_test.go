package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recipeFixture struct {
	db      *gorm.DB
	images  *memoryImages
	recipes *service.RecipeService
	queries *service.QueryService
	author  *models.User
	other   *models.User
	staff   *models.User
	flour   *models.Ingredient
	sugar   *models.Ingredient
	eggs    *models.Ingredient
	brunch  *models.Tag
	dinner  *models.Tag
}

func setupRecipeFixture(t *testing.T) *recipeFixture {
	db := testhelpers.SetupTestDB(t)
	images := &memoryImages{}
	return &recipeFixture{
		db:      db,
		images:  images,
		recipes: service.NewRecipeService(db, images),
		queries: service.NewQueryService(db),
		author:  testhelpers.CreateTestUser(t, db, "chef", false),
		other:   testhelpers.CreateTestUser(t, db, "guest", false),
		staff:   testhelpers.CreateTestUser(t, db, "admin", true),
		flour:   testhelpers.CreateTestIngredient(t, db, "flour", "g"),
		sugar:   testhelpers.CreateTestIngredient(t, db, "sugar", "g"),
		eggs:    testhelpers.CreateTestIngredient(t, db, "eggs", "pcs"),
		brunch:  testhelpers.CreateTestTag(t, db, "brunch", "#FFAA00"),
		dinner:  testhelpers.CreateTestTag(t, db, "dinner", "#0000FF"),
	}
}

func TestCreateRecipe(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()

	in := recipeInput("  Pancakes ", "pancakes", line(f.flour, 200), line(f.eggs, 2))
	in.Tags = []uint{f.dinner.ID, f.brunch.ID}

	recipe, err := f.recipes.CreateRecipe(ctx, f.author.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", recipe.Name)
	assert.Equal(t, "/media/recipes/pancakes.png", recipe.Image)
	assert.False(t, recipe.PubDate.IsZero())

	detail, err := f.queries.GetRecipe(ctx, recipe.ID, viewerOf(f.author))
	require.NoError(t, err)
	assert.Equal(t, f.author.Username, detail.Author.Username)
	require.Len(t, detail.Ingredients, 2)
	assert.Equal(t, types.IngredientLineView{ID: f.flour.ID, Name: "flour", MeasurementUnit: "g", Amount: 200}, detail.Ingredients[0])
	assert.Equal(t, types.IngredientLineView{ID: f.eggs.ID, Name: "eggs", MeasurementUnit: "pcs", Amount: 2}, detail.Ingredients[1])
	require.Len(t, detail.Tags, 2)
	assert.Equal(t, "brunch", detail.Tags[0].Name)
	assert.Equal(t, "dinner", detail.Tags[1].Name)
}

func TestCreateRecipeValidationOrder(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     func() service.RecipeInput
		wantField string
		notFound  bool
	}{
		{
			name: "empty ingredients before cooking time",
			input: func() service.RecipeInput {
				in := recipeInput("Empty", "empty")
				in.CookingTime = 0
				return in
			},
			wantField: "ingredients",
		},
		{
			name: "missing ingredient before duplicate",
			input: func() service.RecipeInput {
				return recipeInput("Ghost", "ghost", line(f.flour, 1), line(f.flour, 1),
					types.IngredientAmount{ID: 999, Amount: 1})
			},
			notFound: true,
		},
		{
			name: "duplicate ingredient before amount",
			input: func() service.RecipeInput {
				return recipeInput("Twice", "twice", line(f.flour, 0), line(f.flour, 5))
			},
			wantField: "ingredients",
		},
		{
			name: "amount before cooking time",
			input: func() service.RecipeInput {
				in := recipeInput("Nothing", "nothing", line(f.flour, 0))
				in.CookingTime = 0
				return in
			},
			wantField: "amount",
		},
		{
			name: "cooking time before tags",
			input: func() service.RecipeInput {
				in := recipeInput("Raw", "raw", line(f.flour, 1))
				in.CookingTime = 0
				in.Tags = []uint{999}
				return in
			},
			wantField: "cooking_time",
		},
		{
			name: "missing tag before name",
			input: func() service.RecipeInput {
				in := recipeInput(" ", "blank", line(f.flour, 1))
				in.Tags = []uint{f.brunch.ID, 999}
				return in
			},
			wantField: "tags",
		},
		{
			name: "name too long",
			input: func() service.RecipeInput {
				return recipeInput(strings.Repeat("я", 257), "long", line(f.flour, 1))
			},
			wantField: "name",
		},
		{
			name: "blank text",
			input: func() service.RecipeInput {
				in := recipeInput("Silent", "silent", line(f.flour, 1))
				in.Text = "   "
				return in
			},
			wantField: "text",
		},
		{
			name: "image required",
			input: func() service.RecipeInput {
				return recipeInput("Invisible", "", line(f.flour, 1))
			},
			wantField: "image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.recipes.CreateRecipe(ctx, f.author.ID, tt.input())
			require.Error(t, err)

			if tt.notFound {
				var notFound *service.NotFoundError
				require.ErrorAs(t, err, &notFound)
				assert.Equal(t, "ingredient", notFound.Kind)
				assert.Equal(t, uint(999), notFound.ID)
				return
			}

			var validation *service.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.wantField, validation.Field)
		})
	}

	assert.Zero(t, countRows(t, f.db, &models.Recipe{}))
	assert.Zero(t, countRows(t, f.db, &models.RecipeIngredient{}))
	assert.Empty(t, f.images.saved)
}

func TestCreateRecipeUnknownAuthor(t *testing.T) {
	f := setupRecipeFixture(t)

	_, err := f.recipes.CreateRecipe(context.Background(), 4242, recipeInput("Orphan", "orphan", line(f.flour, 1)))
	var notFound *service.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "user", notFound.Kind)
}

func TestCreateRecipeDuplicateNameIsConflict(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()

	_, err := f.recipes.CreateRecipe(ctx, f.author.ID, recipeInput("Soup", "soup-1", line(f.flour, 1)))
	require.NoError(t, err)

	_, err = f.recipes.CreateRecipe(ctx, f.author.ID, recipeInput("Soup", "soup-2", line(f.sugar, 1)))
	var conflict *service.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "name", conflict.Field)

	// the second image was stored and then thrown away
	assert.Equal(t, []string{"/media/recipes/soup-2.png"}, f.images.deleted)
	assert.Equal(t, int64(1), countRows(t, f.db, &models.Recipe{}))
	assert.Equal(t, int64(1), countRows(t, f.db, &models.RecipeIngredient{}))

	// another author may reuse the name
	_, err = f.recipes.CreateRecipe(ctx, f.other.ID, recipeInput("Soup", "soup-3", line(f.flour, 1)))
	require.NoError(t, err)
}

func TestUpdateRecipeReplacesComposition(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()

	in := recipeInput("Cake", "cake", line(f.flour, 300), line(f.sugar, 100))
	in.Tags = []uint{f.brunch.ID}
	recipe, err := f.recipes.CreateRecipe(ctx, f.author.ID, in)
	require.NoError(t, err)

	update := recipeInput("Better cake", "", line(f.eggs, 3))
	update.Tags = []uint{f.dinner.ID}
	updated, err := f.recipes.UpdateRecipe(ctx, viewerOf(f.author), recipe.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Better cake", updated.Name)
	assert.Equal(t, recipe.Image, updated.Image)
	assert.WithinDuration(t, recipe.PubDate, updated.PubDate, time.Second)

	detail, err := f.queries.GetRecipe(ctx, recipe.ID, service.Viewer{})
	require.NoError(t, err)
	require.Len(t, detail.Ingredients, 1)
	assert.Equal(t, "eggs", detail.Ingredients[0].Name)
	assert.Equal(t, 3, detail.Ingredients[0].Amount)
	require.Len(t, detail.Tags, 1)
	assert.Equal(t, "dinner", detail.Tags[0].Name)
	assert.Equal(t, int64(1), countRows(t, f.db, &models.RecipeIngredient{}))
	assert.Empty(t, f.images.deleted)
}

func TestUpdateRecipeNewImageDiscardsOld(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()

	recipe, err := f.recipes.CreateRecipe(ctx, f.author.ID, recipeInput("Bread", "bread", line(f.flour, 500)))
	require.NoError(t, err)

	updated, err := f.recipes.UpdateRecipe(ctx, viewerOf(f.author), recipe.ID,
		recipeInput("Bread", "bread-v2", line(f.flour, 450)))
	require.NoError(t, err)
	assert.Equal(t, "/media/recipes/bread-v2.png", updated.Image)
	assert.Equal(t, []string{"/media/recipes/bread.png"}, f.images.deleted)
}

func TestUpdateRecipeInvalidKeepsComposition(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()

	recipe, err := f.recipes.CreateRecipe(ctx, f.author.ID, recipeInput("Tea", "tea", line(f.sugar, 5)))
	require.NoError(t, err)

	_, err = f.recipes.UpdateRecipe(ctx, viewerOf(f.author), recipe.ID,
		recipeInput("Tea", "", line(f.flour, 1), line(f.flour, 2)))
	var validation *service.ValidationError
	require.ErrorAs(t, err, &validation)

	detail, err := f.queries.GetRecipe(ctx, recipe.ID, service.Viewer{})
	require.NoError(t, err)
	require.Len(t, detail.Ingredients, 1)
	assert.Equal(t, "sugar", detail.Ingredients[0].Name)
}

func TestRecipeWritePermissions(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()

	recipe, err := f.recipes.CreateRecipe(ctx, f.author.ID, recipeInput("Stew", "stew", line(f.flour, 10)))
	require.NoError(t, err)
	update := recipeInput("Stew", "", line(f.flour, 20))

	t.Run("anonymous", func(t *testing.T) {
		_, err := f.recipes.UpdateRecipe(ctx, service.Viewer{}, recipe.ID, update)
		assert.ErrorIs(t, err, service.ErrAuthenticationRequired)
		assert.ErrorIs(t, f.recipes.DeleteRecipe(ctx, service.Viewer{}, recipe.ID), service.ErrAuthenticationRequired)
	})

	t.Run("not the author", func(t *testing.T) {
		_, err := f.recipes.UpdateRecipe(ctx, viewerOf(f.other), recipe.ID, update)
		var denied *service.AuthorizationError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, "update this recipe", denied.Action)

		err = f.recipes.DeleteRecipe(ctx, viewerOf(f.other), recipe.ID)
		require.ErrorAs(t, err, &denied)
	})

	t.Run("missing recipe", func(t *testing.T) {
		_, err := f.recipes.UpdateRecipe(ctx, viewerOf(f.author), 9999, update)
		var notFound *service.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "recipe", notFound.Kind)
	})

	t.Run("staff", func(t *testing.T) {
		_, err := f.recipes.UpdateRecipe(ctx, viewerOf(f.staff), recipe.ID, update)
		require.NoError(t, err)
	})
}

func TestDeleteRecipeRemovesDependents(t *testing.T) {
	f := setupRecipeFixture(t)
	ctx := context.Background()

	in := recipeInput("Pie", "pie", line(f.flour, 250), line(f.sugar, 80))
	in.Tags = []uint{f.brunch.ID}
	recipe, err := f.recipes.CreateRecipe(ctx, f.author.ID, in)
	require.NoError(t, err)

	_, err = service.NewFavoriteService(f.db).Add(ctx, f.other.ID, recipe.ID)
	require.NoError(t, err)
	_, err = service.NewShoppingCartService(f.db).Add(ctx, f.other.ID, recipe.ID)
	require.NoError(t, err)

	require.NoError(t, f.recipes.DeleteRecipe(ctx, viewerOf(f.author), recipe.ID))

	for _, model := range []interface{}{
		&models.Recipe{}, &models.RecipeIngredient{}, &models.RecipeTag{}, &models.Favorite{}, &models.ShoppingCart{},
	} {
		assert.Zero(t, countRows(t, f.db, model))
	}
	assert.Equal(t, int64(2), countRows(t, f.db, &models.Tag{}))
	assert.Equal(t, []string{"/media/recipes/pie.png"}, f.images.deleted)

	_, err = f.queries.GetRecipe(ctx, recipe.ID, service.Viewer{})
	var notFound *service.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
