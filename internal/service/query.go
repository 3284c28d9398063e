package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// QueryService builds the read models. Viewer-relative flags are always false for
// anonymous viewers.
type QueryService struct {
	db        *gorm.DB
	favorites *MarkerService[models.Favorite]
	carts     *MarkerService[models.ShoppingCart]
	follows   *MarkerService[models.Follow]
}

func NewQueryService(db *gorm.DB) *QueryService {
	return &QueryService{
		db:        db,
		favorites: NewFavoriteService(db),
		carts:     NewShoppingCartService(db),
		follows:   NewFollowService(db),
	}
}

// viewerMarks holds the ids a viewer has marked, for flagging many recipes at once
type viewerMarks struct {
	favorites map[uint]bool
	cart      map[uint]bool
	following map[uint]bool
}

func (s *QueryService) marksFor(ctx context.Context, viewer Viewer) (*viewerMarks, error) {
	marks := &viewerMarks{}
	if !viewer.Authenticated() {
		return marks, nil
	}

	var err error
	if marks.favorites, err = s.idSet(ctx, s.favorites.TargetIDs, viewer.ID); err != nil {
		return nil, err
	}
	if marks.cart, err = s.idSet(ctx, s.carts.TargetIDs, viewer.ID); err != nil {
		return nil, err
	}
	if marks.following, err = s.idSet(ctx, s.follows.TargetIDs, viewer.ID); err != nil {
		return nil, err
	}
	return marks, nil
}

func (s *QueryService) idSet(ctx context.Context, list func(context.Context, uint) ([]uint, error), subjectID uint) (map[uint]bool, error) {
	ids, err := list(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// GetRecipe returns the detail view of one recipe
func (s *QueryService) GetRecipe(ctx context.Context, recipeID uint, viewer Viewer) (*types.RecipeDetail, error) {
	var recipe models.Recipe
	err := withComposition(s.db.WithContext(ctx)).First(&recipe, recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "recipe", ID: recipeID}
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}

	marks, err := s.marksFor(ctx, viewer)
	if err != nil {
		return nil, err
	}
	detail := toRecipeDetail(&recipe, marks)
	return &detail, nil
}

// ListRecipes returns every recipe matching filter, newest first. Favorite and cart
// filters are ignored for anonymous viewers.
func (s *QueryService) ListRecipes(ctx context.Context, filter types.RecipeFilter, viewer Viewer) ([]types.RecipeDetail, error) {
	db := s.db.WithContext(ctx)

	query := db.Model(&models.Recipe{})
	if filter.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		if err := ensureTagSlugsExist(db, filter.TagSlugs); err != nil {
			return nil, err
		}
		tagged := db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if filter.IsFavorited && viewer.Authenticated() {
		query = query.Where("recipes.id IN (?)",
			db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", viewer.ID))
	}
	if filter.IsInShoppingCart && viewer.Authenticated() {
		query = query.Where("recipes.id IN (?)",
			db.Model(&models.ShoppingCart{}).Select("recipe_id").Where("user_id = ?", viewer.ID))
	}

	var recipes []models.Recipe
	if err := withComposition(query).Order("recipes.pub_date DESC").Order("recipes.id DESC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	marks, err := s.marksFor(ctx, viewer)
	if err != nil {
		return nil, err
	}

	result := make([]types.RecipeDetail, len(recipes))
	for i := range recipes {
		result[i] = toRecipeDetail(&recipes[i], marks)
	}
	return result, nil
}

// ensureTagSlugsExist rejects a tag filter naming a slug that no tag has
func ensureTagSlugsExist(db *gorm.DB, slugs []string) error {
	var known []string
	if err := db.Model(&models.Tag{}).Where("slug IN ?", slugs).Pluck("slug", &known).Error; err != nil {
		return fmt.Errorf("failed to look up tags: %w", err)
	}
	found := make(map[string]bool, len(known))
	for _, slug := range known {
		found[slug] = true
	}
	for _, slug := range slugs {
		if !found[slug] {
			return &ValidationError{Field: "tags", Message: fmt.Sprintf("unknown tag %q", slug)}
		}
	}
	return nil
}

// GetRecipeSummary returns the short form of a recipe
func (s *QueryService) GetRecipeSummary(ctx context.Context, recipeID uint) (*types.RecipeSummary, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "recipe", ID: recipeID}
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	summary := toRecipeSummary(&recipe)
	return &summary, nil
}

// withComposition preloads everything the detail view embeds
func withComposition(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(tx *gorm.DB) *gorm.DB { return tx.Order("tags.id") }).
		Preload("Ingredients", func(tx *gorm.DB) *gorm.DB { return tx.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

func toRecipeDetail(recipe *models.Recipe, marks *viewerMarks) types.RecipeDetail {
	tags := make([]types.TagView, len(recipe.Tags))
	for i, tag := range recipe.Tags {
		tags[i] = toTagView(tag)
	}

	lines := make([]types.IngredientLineView, len(recipe.Ingredients))
	for i, line := range recipe.Ingredients {
		lines[i] = types.IngredientLineView{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		}
	}

	return types.RecipeDetail{
		ID:               recipe.ID,
		Tags:             tags,
		Author:           toUserView(&recipe.Author, marks.following[recipe.AuthorID]),
		Ingredients:      lines,
		IsFavorited:      marks.favorites[recipe.ID],
		IsInShoppingCart: marks.cart[recipe.ID],
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		PubDate:          recipe.PubDate,
	}
}

func toRecipeSummary(recipe *models.Recipe) types.RecipeSummary {
	return types.RecipeSummary{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

func toUserView(user *models.User, subscribed bool) types.UserView {
	return types.UserView{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
	}
}

func toTagView(tag models.Tag) types.TagView {
	return types.TagView{
		ID:    tag.ID,
		Name:  tag.Name,
		Color: tag.Color,
		Slug:  tag.Slug,
	}
}
