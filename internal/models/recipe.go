package models

import "time"

type Recipe struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	AuthorID    uint               `gorm:"not null;uniqueIndex:idx_recipe_author_name" json:"author_id"`
	Author      User               `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name        string             `gorm:"size:256;not null;uniqueIndex:idx_recipe_author_name" json:"name"`
	Image       string             `gorm:"size:512;not null" json:"image"`
	Text        string             `gorm:"type:text;not null" json:"text"`
	CookingTime int                `gorm:"not null;check:cooking_time >= 1" json:"cooking_time"`
	PubDate     time.Time          `gorm:"autoCreateTime;index" json:"pub_date"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients"`
}

// RecipeIngredient binds an ingredient and its amount to a recipe
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredient"`
	Amount       int        `gorm:"not null;check:amount >= 1" json:"amount"`
}

// RecipeTag is a row of the recipe_tags join table behind Recipe.Tags
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey"`
	TagID    uint `gorm:"primaryKey"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}

// Favorite marks a recipe as favorited by a user
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index" json:"recipe_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// ShoppingCart marks a recipe as being in a user's shopping cart
type ShoppingCart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe;index" json:"recipe_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&Ingredient{},
		&Tag{},
		&Recipe{},
		&RecipeIngredient{},
		&Favorite{},
		&ShoppingCart{},
	}
}
