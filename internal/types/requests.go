package types

// IngredientAmount is one requested ingredient line
type IngredientAmount struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeRequest is the body of recipe create and update calls.
// Image is a data URI: data:image/<ext>;base64,<payload>.
type RecipeRequest struct {
	Ingredients []IngredientAmount `json:"ingredients"`
	Tags        []uint             `json:"tags"`
	Image       string             `json:"image"`
	Name        string             `json:"name"`
	Text        string             `json:"text"`
	CookingTime int                `json:"cooking_time"`
}

// Page is a page-number paginated response
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
