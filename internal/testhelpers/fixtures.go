package testhelpers

import (
	"fmt"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateTestUser inserts a user named username with password "password"
func CreateTestUser(t *testing.T, db *gorm.DB, username string, staff bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		FirstName:    "Test",
		LastName:     username,
		PasswordHash: string(hash),
		IsStaff:      staff,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

// CreateTestTag inserts a tag whose slug equals its name
func CreateTestTag(t *testing.T, db *gorm.DB, name, color string) *models.Tag {
	t.Helper()

	slug := name
	tag := &models.Tag{Name: name, Color: &color, Slug: &slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", name, err)
	}
	return tag
}

// CreateTestRecipe inserts a recipe directly, bypassing validation
func CreateTestRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, lines map[*models.Ingredient]int, tags ...*models.Tag) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       "/media/recipes/" + name + ".png",
		Text:        "Cook " + name,
		CookingTime: 10,
	}
	if err := db.Omit("Author", "Tags", "Ingredients").Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	for ingredient, amount := range lines {
		line := models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: ingredient.ID, Amount: amount}
		if err := db.Omit("Ingredient").Create(&line).Error; err != nil {
			t.Fatalf("failed to create ingredient line: %v", err)
		}
	}
	for _, tag := range tags {
		if err := db.Create(&models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error; err != nil {
			t.Fatalf("failed to tag recipe: %v", err)
		}
	}
	return recipe
}
