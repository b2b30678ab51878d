package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleDraft struct {
	Name   string `json:"name" validate:"required,max=10"`
	Email  string `json:"email" validate:"omitempty,email"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func TestValidateDraft(t *testing.T) {
	t.Run("valid draft", func(t *testing.T) {
		assert.NoError(t, ValidateDraft(sampleDraft{Name: "Kho A"}))
	})

	t.Run("missing required field", func(t *testing.T) {
		err := ValidateDraft(&sampleDraft{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{"name"}, verr.Fields())
		assert.Equal(t, "This field is required", verr.Violations[0].Message)
	})

	t.Run("multiple violations use json names", func(t *testing.T) {
		err := ValidateDraft(sampleDraft{Name: "a very long name", Email: "nope", Status: "x"})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.ElementsMatch(t, []string{"name", "email", "status"}, verr.Fields())
	})

	t.Run("non-struct drafts are not validated", func(t *testing.T) {
		assert.NoError(t, ValidateDraft(map[string]any{"name": ""}))
		assert.NoError(t, ValidateDraft(nil))
		var nilDraft *sampleDraft
		assert.NoError(t, ValidateDraft(nilDraft))
	})
}
