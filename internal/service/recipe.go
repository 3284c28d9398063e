package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxRecipeNameLength = 256

// RecipeInput is everything needed to write a recipe with its composition.
// Image is nil on updates that keep the current picture.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	Image       *types.ImagePayload
	Ingredients []types.IngredientAmount
	Tags        []uint
}

// RecipeService writes recipes together with their ingredient lines and tags
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
	}
}

// CreateRecipe validates in and stores the recipe, its ingredient lines and its tags in
// one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uint, in RecipeInput) (*models.Recipe, error) {
	db := s.db.WithContext(ctx)

	if err := ensureExists(db, &models.User{}, "user", authorID); err != nil {
		return nil, err
	}
	if err := validateRecipe(db, in, true); err != nil {
		return nil, err
	}

	image, err := s.images.Save(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(in.Name),
		Image:       image,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return translateRecipeWriteError(err, "create")
		}
		return writeComposition(tx, recipe.ID, in)
	})
	if err != nil {
		s.discardImage(ctx, image)
		return nil, err
	}

	logging.Info().Uint("recipe_id", recipe.ID).Uint("author_id", authorID).Msg("recipe created")
	return recipe, nil
}

// UpdateRecipe replaces the recipe fields and its whole composition. Old ingredient lines
// and tags are deleted and the new ones inserted; pub_date is left alone.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actor Viewer, recipeID uint, in RecipeInput) (*models.Recipe, error) {
	db := s.db.WithContext(ctx)

	recipe, err := loadForWrite(db, actor, recipeID, "update this recipe")
	if err != nil {
		return nil, err
	}
	if err := validateRecipe(db, in, false); err != nil {
		return nil, err
	}

	var image string
	if in.Image != nil {
		if image, err = s.images.Save(ctx, in.Image); err != nil {
			return nil, err
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to delete ingredient lines: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
			return fmt.Errorf("failed to delete recipe tags: %w", err)
		}

		updates := map[string]interface{}{
			"name":         strings.TrimSpace(in.Name),
			"text":         in.Text,
			"cooking_time": in.CookingTime,
		}
		if image != "" {
			updates["image"] = image
		}
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Updates(updates).Error; err != nil {
			return translateRecipeWriteError(err, "update")
		}

		return writeComposition(tx, recipeID, in)
	})
	if err != nil {
		if image != "" {
			s.discardImage(ctx, image)
		}
		return nil, err
	}

	if image != "" && recipe.Image != "" {
		s.discardImage(ctx, recipe.Image)
	}

	var updated models.Recipe
	if err := db.First(&updated, recipeID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload recipe: %w", err)
	}
	return &updated, nil
}

// DeleteRecipe removes a recipe along with everything that references it
func (s *RecipeService) DeleteRecipe(ctx context.Context, actor Viewer, recipeID uint) error {
	db := s.db.WithContext(ctx)

	recipe, err := loadForWrite(db, actor, recipeID, "delete this recipe")
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{
			&models.Favorite{},
			&models.ShoppingCart{},
			&models.RecipeIngredient{},
			&models.RecipeTag{},
		} {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(dependent).Error; err != nil {
				return fmt.Errorf("failed to delete recipe dependents: %w", err)
			}
		}
		if err := tx.Delete(&models.Recipe{}, recipeID).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.discardImage(ctx, recipe.Image)
	logging.Info().Uint("recipe_id", recipeID).Uint("actor_id", actor.ID).Msg("recipe deleted")
	return nil
}

// validateRecipe checks in, stopping at the first problem. Composition checks come
// first in a fixed order, then the plain fields.
func validateRecipe(db *gorm.DB, in RecipeInput, requireImage bool) error {
	if len(in.Ingredients) == 0 {
		return &ValidationError{Field: "ingredients", Message: "at least one ingredient is required"}
	}

	ids := make([]uint, len(in.Ingredients))
	for i, line := range in.Ingredients {
		ids[i] = line.ID
	}
	if err := ensureAllExist(db, &models.Ingredient{}, ids, func(id uint) error {
		return &NotFoundError{Kind: "ingredient", ID: id}
	}); err != nil {
		return err
	}

	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return &ValidationError{Field: "ingredients", Message: fmt.Sprintf("ingredient %d is listed more than once", id)}
		}
		seen[id] = struct{}{}
	}

	for _, line := range in.Ingredients {
		if line.Amount < 1 {
			return &ValidationError{Field: "amount", Message: "amount must be at least 1"}
		}
	}

	if in.CookingTime < 1 {
		return &ValidationError{Field: "cooking_time", Message: "cooking time must be at least 1 minute"}
	}

	if err := ensureAllExist(db, &models.Tag{}, in.Tags, func(id uint) error {
		return &ValidationError{Field: "tags", Message: fmt.Sprintf("tag %d does not exist", id)}
	}); err != nil {
		return err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) > maxRecipeNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", maxRecipeNameLength)}
	}
	if strings.TrimSpace(in.Text) == "" {
		return &ValidationError{Field: "text", Message: "text is required"}
	}
	if requireImage && in.Image == nil {
		return &ValidationError{Field: "image", Message: "image is required"}
	}

	return nil
}

// writeComposition inserts the ingredient lines and tag links of a recipe
func writeComposition(tx *gorm.DB, recipeID uint, in RecipeInput) error {
	lines := make([]models.RecipeIngredient, len(in.Ingredients))
	for i, line := range in.Ingredients {
		lines[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.ID,
			Amount:       line.Amount,
		}
	}
	if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
		return fmt.Errorf("failed to insert ingredient lines: %w", err)
	}

	tags := uniqueIDs(in.Tags)
	if len(tags) == 0 {
		return nil
	}
	links := make([]models.RecipeTag, len(tags))
	for i, tagID := range tags {
		links[i] = models.RecipeTag{RecipeID: recipeID, TagID: tagID}
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("failed to insert recipe tags: %w", err)
	}
	return nil
}

func loadForWrite(db *gorm.DB, actor Viewer, recipeID uint, action string) (*models.Recipe, error) {
	if !actor.Authenticated() {
		return nil, ErrAuthenticationRequired
	}

	var recipe models.Recipe
	if err := db.First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "recipe", ID: recipeID}
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}

	if !actor.CanModify(recipe.AuthorID) {
		return nil, &AuthorizationError{Action: action}
	}
	return &recipe, nil
}

func translateRecipeWriteError(err error, op string) error {
	if isUniqueViolation(err) {
		return &ConflictError{Kind: "recipe", Field: "name", Message: "you already have a recipe with this name"}
	}
	return fmt.Errorf("failed to %s recipe: %w", op, err)
}

// discardImage removes an image that is no longer referenced. Failures are only logged.
func (s *RecipeService) discardImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		logging.Warn().Err(err).Str("image", ref).Msg("failed to delete image")
	}
}

// ensureExists returns a NotFoundError when no row of model has the given id
func ensureExists(db *gorm.DB, model interface{}, kind string, id uint) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up %s: %w", kind, err)
	}
	if count == 0 {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

// ensureAllExist loads the ids of model present in ids and reports the first missing one
// in request order through missing.
func ensureAllExist(db *gorm.DB, model interface{}, ids []uint, missing func(uint) error) error {
	if len(ids) == 0 {
		return nil
	}

	var found []uint
	if err := db.Model(model).Where("id IN ?", uniqueIDs(ids)).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("failed to look up references: %w", err)
	}

	present := make(map[uint]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			return missing(id)
		}
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
