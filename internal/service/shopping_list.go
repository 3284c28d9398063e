package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

const shoppingListHeader = "Shopping list:"

// ShoppingListLine is one ingredient line of a recipe in a cart
type ShoppingListLine struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// ShoppingListItem is the summed amount of one (name, unit) group
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	Total           int
}

type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// BuildShoppingList renders the merged ingredient list of every recipe in the user's cart
func (s *ShoppingListService) BuildShoppingList(ctx context.Context, userID uint) (string, error) {
	if userID == 0 {
		return "", ErrAuthenticationRequired
	}

	var lines []ShoppingListLine
	err := s.db.WithContext(ctx).
		Model(&models.ShoppingCart{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, recipe_ingredients.amount AS amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_carts.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_carts.user_id = ?", userID).
		Order("shopping_carts.id").
		Order("recipe_ingredients.id").
		Scan(&lines).Error
	if err != nil {
		return "", fmt.Errorf("failed to load shopping cart ingredients: %w", err)
	}

	return RenderShoppingList(AggregateShoppingList(lines)), nil
}

// AggregateShoppingList groups lines by (name, unit) in first-seen order and sums amounts
func AggregateShoppingList(lines []ShoppingListLine) []ShoppingListItem {
	type key struct{ name, unit string }

	index := make(map[key]int)
	items := make([]ShoppingListItem, 0, len(lines))
	for _, line := range lines {
		k := key{line.Name, line.MeasurementUnit}
		if i, ok := index[k]; ok {
			items[i].Total += line.Amount
			continue
		}
		index[k] = len(items)
		items = append(items, ShoppingListItem{
			Name:            line.Name,
			MeasurementUnit: line.MeasurementUnit,
			Total:           line.Amount,
		})
	}
	return items
}

// RenderShoppingList writes the header and one "name (unit) - total" line per item
func RenderShoppingList(items []ShoppingListItem) string {
	var b strings.Builder
	b.WriteString(shoppingListHeader)
	b.WriteByte('\n')
	for _, item := range items {
		fmt.Fprintf(&b, "%s (%s) - %d\n", item.Name, item.MeasurementUnit, item.Total)
	}
	return b.String()
}
