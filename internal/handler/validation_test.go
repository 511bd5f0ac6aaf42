package handler

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string `json:"name" binding:"required,max=5"`
	Email string `json:"email" binding:"required,email"`
}

func TestNewBindingErrorResponse(t *testing.T) {
	RegisterValidation()

	err := binding.Validator.ValidateStruct(&sampleRequest{Name: "long-name", Email: "not-an-email"})
	require.Error(t, err)

	resp := NewBindingErrorResponse(err)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "dados inválidos", resp.Message)

	fields, ok := resp.Data.([]FieldError)
	require.True(t, ok)
	require.Len(t, fields, 2)
	assert.Equal(t, "name", fields[0].Field)
	assert.Equal(t, "valor muito longo", fields[0].Message)
	assert.Equal(t, "email", fields[1].Field)
	assert.Equal(t, "e-mail inválido", fields[1].Message)
}

func TestNewBindingErrorResponsePlainError(t *testing.T) {
	resp := NewBindingErrorResponse(errors.New("unexpected EOF"))
	assert.Equal(t, "unexpected EOF", resp.Message)
	assert.Nil(t, resp.Data)
}
