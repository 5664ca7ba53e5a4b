package core

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitValidators(t *testing.T) {
	validate := validator.New()
	translator := NewTranslator()
	InitValidators(validate, translator)

	type form struct {
		Title string `form:"title" validate:"required"`
		Body  string `form:"body" validate:"notblank"`
	}

	err := validate.Struct(form{Body: " \t "})
	require.Error(t, err)

	vErr := TranslateValidationErrors(err, translator)
	require.True(t, IsValidationError(vErr))
	assert.Equal(t, []FieldError{
		{Field: "title", Error: "this field is required"},
		{Field: "body", Error: notBlankText},
	}, vErr.(*ValidationError).Fields)

	assert.NoError(t, validate.Struct(form{Title: "Exams", Body: "When?"}))
}
