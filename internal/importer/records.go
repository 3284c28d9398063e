// Package importer reads catalog fixtures (ingredients and tags) from CSV or JSON files
// and loads them through get-or-create primitives.
package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// IngredientRecord is one ingredient row: name and measurement unit
type IngredientRecord struct {
	Name            string `json:"name" validate:"required,max=256"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=50"`
}

// TagRecord is one tag row. Color and slug may be empty.
type TagRecord struct {
	Name  string `json:"name" validate:"required,max=200"`
	Color string `json:"color" validate:"omitempty,hexcolor,len=7"`
	Slug  string `json:"slug" validate:"omitempty,max=200,slug"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		err := validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		if err != nil {
			panic(fmt.Sprintf("importer: register slug validation: %v", err))
		}
	})
	return validate
}

// validateRecord returns a readable error for the first failing field of record
func validateRecord(record interface{}) error {
	err := getValidator().Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			messages[i] = fmt.Sprintf("%s is required", field)
		case "max":
			messages[i] = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		case "hexcolor", "len":
			messages[i] = fmt.Sprintf("%s must be a #RRGGBB color", field)
		case "slug":
			messages[i] = fmt.Sprintf("%s may only contain letters, digits, '-' and '_'", field)
		default:
			messages[i] = fmt.Sprintf("%s failed %s validation", field, fe.Tag())
		}
	}
	return errors.New(strings.Join(messages, "; "))
}

func (r *IngredientRecord) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.MeasurementUnit = strings.TrimSpace(r.MeasurementUnit)
}

func (r *TagRecord) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Color = strings.ToUpper(strings.TrimSpace(r.Color))
	r.Slug = strings.TrimSpace(r.Slug)
}
