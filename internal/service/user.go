package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// ListUsers returns every user ordered by id, with is_subscribed relative to viewer
func (s *QueryService) ListUsers(ctx context.Context, viewer Viewer) ([]types.UserView, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	marks, err := s.marksFor(ctx, viewer)
	if err != nil {
		return nil, err
	}

	result := make([]types.UserView, len(users))
	for i := range users {
		result[i] = toUserView(&users[i], marks.following[users[i].ID])
	}
	return result, nil
}

// GetUser returns the profile of one user
func (s *QueryService) GetUser(ctx context.Context, userID uint, viewer Viewer) (*types.UserView, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "user", ID: userID}
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	subscribed, err := s.follows.Exists(ctx, viewer.ID, userID)
	if err != nil {
		return nil, err
	}
	view := toUserView(&user, subscribed)
	return &view, nil
}

// GetCurrentUser returns the viewer's own profile
func (s *QueryService) GetCurrentUser(ctx context.Context, viewer Viewer) (*types.UserView, error) {
	if !viewer.Authenticated() {
		return nil, ErrAuthenticationRequired
	}
	return s.GetUser(ctx, viewer.ID, viewer)
}
