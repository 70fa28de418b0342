package model

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestBindErrorMessage(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")

	err := v.Struct(TranslateRequest{})
	assert.Equal(t, "Missing required field: selected_text.", BindErrorMessage(err))

	err = v.Struct(ExportRequest{Text: "hello", Format: "xlsx"})
	assert.Equal(t, "Invalid value for format. Allowed: txt docx pdf.", BindErrorMessage(err))

	assert.Equal(t, "Invalid request parameters.", BindErrorMessage(errors.New("unexpected EOF")))
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "selected_text", snakeCase("SelectedText"))
	assert.Equal(t, "file_id", snakeCase("FileID"))
	assert.Equal(t, "text", snakeCase("Text"))
}
