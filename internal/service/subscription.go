package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// GetSubscriptions lists the authors the viewer follows, in the order they were followed.
// Each entry carries the author's recipe count and newest recipes, truncated to
// recipesLimit when it is positive.
func (s *QueryService) GetSubscriptions(ctx context.Context, viewer Viewer, recipesLimit int) ([]types.Subscription, error) {
	if !viewer.Authenticated() {
		return nil, &AuthorizationError{Action: "view subscriptions"}
	}

	authorIDs, err := s.follows.TargetIDs(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	if len(authorIDs) == 0 {
		return []types.Subscription{}, nil
	}

	db := s.db.WithContext(ctx)

	var authors []models.User
	if err := db.Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}
	byID := make(map[uint]*models.User, len(authors))
	for i := range authors {
		byID[authors[i].ID] = &authors[i]
	}

	recipes, counts, err := s.recipesByAuthor(db, authorIDs, recipesLimit)
	if err != nil {
		return nil, err
	}

	result := make([]types.Subscription, 0, len(authorIDs))
	for _, id := range authorIDs {
		author, ok := byID[id]
		if !ok {
			continue
		}
		result = append(result, types.Subscription{
			UserView:     toUserView(author, true),
			Recipes:      recipes[id],
			RecipesCount: counts[id],
		})
	}
	return result, nil
}

// GetAuthorSubscription describes a single author the way GetSubscriptions does, with
// is_subscribed relative to the viewer.
func (s *QueryService) GetAuthorSubscription(ctx context.Context, viewer Viewer, authorID uint, recipesLimit int) (*types.Subscription, error) {
	db := s.db.WithContext(ctx)

	var author models.User
	if err := db.First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "user", ID: authorID}
		}
		return nil, fmt.Errorf("failed to load author: %w", err)
	}

	subscribed, err := s.follows.Exists(ctx, viewer.ID, authorID)
	if err != nil {
		return nil, err
	}

	recipes, counts, err := s.recipesByAuthor(db, []uint{authorID}, recipesLimit)
	if err != nil {
		return nil, err
	}

	return &types.Subscription{
		UserView:     toUserView(&author, subscribed),
		Recipes:      recipes[authorID],
		RecipesCount: counts[authorID],
	}, nil
}

// recipesByAuthor returns newest-first summaries and total counts keyed by author id
func (s *QueryService) recipesByAuthor(db *gorm.DB, authorIDs []uint, limit int) (map[uint][]types.RecipeSummary, map[uint]int64, error) {
	var recipes []models.Recipe
	err := db.Where("author_id IN ?", authorIDs).
		Order("pub_date DESC").Order("id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load author recipes: %w", err)
	}

	summaries := make(map[uint][]types.RecipeSummary, len(authorIDs))
	counts := make(map[uint]int64, len(authorIDs))
	for _, id := range authorIDs {
		summaries[id] = []types.RecipeSummary{}
	}
	for i := range recipes {
		authorID := recipes[i].AuthorID
		counts[authorID]++
		if limit > 0 && len(summaries[authorID]) >= limit {
			continue
		}
		summaries[authorID] = append(summaries[authorID], toRecipeSummary(&recipes[i]))
	}
	return summaries, counts, nil
}
