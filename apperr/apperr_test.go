package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NotFound("missing"), fiber.StatusNotFound},
		{Unauthorized("who"), fiber.StatusUnauthorized},
		{Forbidden("no"), fiber.StatusForbidden},
		{Unprocessable("bad"), fiber.StatusUnprocessableEntity},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusCode(tt.err))
	}
}

func TestStatusCodeWrapped(t *testing.T) {
	err := fmt.Errorf("loading payee: %w", NotFound("The payee could not be found."))

	assert.Equal(t, fiber.StatusNotFound, StatusCode(err))
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindForbidden))
}

func TestMessageFormatting(t *testing.T) {
	err := Unprocessable("Test Site: %s.", "payees cannot be created for test sites")

	assert.Equal(t, "Test Site: payees cannot be created for test sites.", err.Error())
}
