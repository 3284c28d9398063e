package types

import "time"

// UserView is the public projection of a user relative to a viewer
type UserView struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type TagView struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
	Slug  *string `json:"slug"`
}

type IngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// IngredientLineView is an ingredient joined with its amount in one recipe
type IngredientLineView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeDetail is the denormalized read model of a recipe
type RecipeDetail struct {
	ID               uint                 `json:"id"`
	Tags             []TagView            `json:"tags"`
	Author           UserView             `json:"author"`
	Ingredients      []IngredientLineView `json:"ingredients"`
	IsFavorited      bool                 `json:"is_favorited"`
	IsInShoppingCart bool                 `json:"is_in_shopping_cart"`
	Name             string               `json:"name"`
	Image            string               `json:"image"`
	Text             string               `json:"text"`
	CookingTime      int                  `json:"cooking_time"`
	PubDate          time.Time            `json:"pub_date"`
}

// RecipeSummary is the short form used in subscriptions and marker responses
type RecipeSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// Subscription describes a followed author with their latest recipes
type Subscription struct {
	UserView
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}

// RecipeFilter narrows ListRecipes. Zero values do not filter.
type RecipeFilter struct {
	AuthorID         uint
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

// ImagePayload is a decoded image ready to be stored
type ImagePayload struct {
	Filename    string
	ContentType string
	Data        []byte
}
