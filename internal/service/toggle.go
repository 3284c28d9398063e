package service

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MarkerSpec describes one presence-only relation between a user and a target row.
// Every marker table keys the subject by user_id.
type MarkerSpec[M any] struct {
	// Kind names the marker in errors, e.g. "favorite"
	Kind string
	// TargetKind names the target entity, e.g. "recipe"
	TargetKind   string
	TargetModel  interface{}
	TargetColumn string
	// SelfReference rejects markers whose target is the subject itself
	SelfReference   bool
	ConflictMessage string
	New             func(subjectID, targetID uint) *M
}

// MarkerService adds and removes markers of one kind. The unique index on
// (user_id, TargetColumn) settles concurrent adds.
type MarkerService[M any] struct {
	db   *gorm.DB
	spec MarkerSpec[M]
}

func NewMarkerService[M any](db *gorm.DB, spec MarkerSpec[M]) *MarkerService[M] {
	return &MarkerService[M]{db: db, spec: spec}
}

func NewFavoriteService(db *gorm.DB) *MarkerService[models.Favorite] {
	return NewMarkerService(db, MarkerSpec[models.Favorite]{
		Kind:            "favorite",
		TargetKind:      "recipe",
		TargetModel:     &models.Recipe{},
		TargetColumn:    "recipe_id",
		ConflictMessage: "recipe is already in favorites",
		New: func(userID, recipeID uint) *models.Favorite {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
	})
}

func NewShoppingCartService(db *gorm.DB) *MarkerService[models.ShoppingCart] {
	return NewMarkerService(db, MarkerSpec[models.ShoppingCart]{
		Kind:            "shopping cart entry",
		TargetKind:      "recipe",
		TargetModel:     &models.Recipe{},
		TargetColumn:    "recipe_id",
		ConflictMessage: "recipe is already in the shopping cart",
		New: func(userID, recipeID uint) *models.ShoppingCart {
			return &models.ShoppingCart{UserID: userID, RecipeID: recipeID}
		},
	})
}

func NewFollowService(db *gorm.DB) *MarkerService[models.Follow] {
	return NewMarkerService(db, MarkerSpec[models.Follow]{
		Kind:            "follow",
		TargetKind:      "user",
		TargetModel:     &models.User{},
		TargetColumn:    "author_id",
		SelfReference:   true,
		ConflictMessage: "already subscribed to this author",
		New: func(userID, authorID uint) *models.Follow {
			return &models.Follow{UserID: userID, AuthorID: authorID}
		},
	})
}

// Add creates the marker. An existing marker is a ConflictError, not a no-op.
func (s *MarkerService[M]) Add(ctx context.Context, subjectID, targetID uint) (*M, error) {
	if subjectID == 0 {
		return nil, ErrAuthenticationRequired
	}
	if s.spec.SelfReference && subjectID == targetID {
		return nil, &SelfReferenceError{Kind: s.spec.Kind}
	}

	db := s.db.WithContext(ctx)
	if err := ensureExists(db, s.spec.TargetModel, s.spec.TargetKind, targetID); err != nil {
		return nil, err
	}

	exists, err := s.Exists(ctx, subjectID, targetID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, s.conflict()
	}

	marker := s.spec.New(subjectID, targetID)
	if err := db.Omit(clause.Associations).Create(marker).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, s.conflict()
		}
		return nil, fmt.Errorf("failed to create %s: %w", s.spec.Kind, err)
	}
	return marker, nil
}

// Remove deletes the marker, or returns a NotFoundError when there is none
func (s *MarkerService[M]) Remove(ctx context.Context, subjectID, targetID uint) error {
	if subjectID == 0 {
		return ErrAuthenticationRequired
	}

	db := s.db.WithContext(ctx)
	if err := ensureExists(db, s.spec.TargetModel, s.spec.TargetKind, targetID); err != nil {
		return err
	}

	var marker M
	res := db.Where("user_id = ? AND "+s.spec.TargetColumn+" = ?", subjectID, targetID).Delete(&marker)
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", s.spec.Kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Kind: s.spec.Kind, ID: targetID}
	}
	return nil
}

func (s *MarkerService[M]) Exists(ctx context.Context, subjectID, targetID uint) (bool, error) {
	if subjectID == 0 {
		return false, nil
	}
	var count int64
	var marker M
	err := s.db.WithContext(ctx).Model(&marker).
		Where("user_id = ? AND "+s.spec.TargetColumn+" = ?", subjectID, targetID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", s.spec.Kind, err)
	}
	return count > 0, nil
}

// TargetIDs lists the targets marked by subjectID in insertion order
func (s *MarkerService[M]) TargetIDs(ctx context.Context, subjectID uint) ([]uint, error) {
	if subjectID == 0 {
		return nil, nil
	}
	var ids []uint
	var marker M
	err := s.db.WithContext(ctx).Model(&marker).
		Where("user_id = ?", subjectID).
		Order("id").
		Pluck(s.spec.TargetColumn, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s targets: %w", s.spec.Kind, err)
	}
	return ids, nil
}

func (s *MarkerService[M]) conflict() error {
	return &ConflictError{Kind: s.spec.Kind, Message: s.spec.ConflictMessage}
}
