package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagSlugValidation(t *testing.T) {
	tests := []struct {
		slug  string
		valid bool
	}{
		{"", true},
		{"breakfast", true},
		{"late-night_snacks-2", true},
		{"-", true},
		{"has space", false},
		{"ужин", false},
		{"a/b", false},
		{"dots.not.allowed", false},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			err := validateRecord(&TagRecord{Name: "Tag", Slug: tt.slug})
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), "slug may only contain")
			}
		})
	}
}

func TestGetValidatorIsShared(t *testing.T) {
	assert.NotPanics(t, func() { getValidator() })
	assert.Same(t, getValidator(), getValidator())
}
