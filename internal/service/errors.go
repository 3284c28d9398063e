package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrAuthenticationRequired is returned when an anonymous viewer calls an operation that
// needs an identity.
var ErrAuthenticationRequired = errors.New("authentication required")

// ValidationError reports malformed or out-of-range input for one field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a referenced entity that does not exist
type NotFoundError struct {
	Kind string
	ID   uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// ConflictError reports a uniqueness violation
type ConflictError struct {
	Kind    string
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Kind)
}

// AuthorizationError reports an actor without rights for Action
type AuthorizationError struct {
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not allowed to %s", e.Action)
}

// SelfReferenceError reports a marker whose subject and target are the same user
type SelfReferenceError struct {
	Kind string
}

func (e *SelfReferenceError) Error() string {
	return fmt.Sprintf("cannot %s yourself", e.Kind)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
