package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{BadRequest("A", "a", nil), http.StatusBadRequest},
		{Unauthorized("A", "a", nil), http.StatusUnauthorized},
		{Forbidden("A", "a", nil), http.StatusForbidden},
		{NotFound("A", "a", nil), http.StatusNotFound},
		{Conflict("A", "a", nil), http.StatusConflict},
		{TooManyRequests("A", "a", nil), http.StatusTooManyRequests},
		{Internal("A", "a", nil), http.StatusInternalServerError},
		{nil, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, c.err.StatusCode())
	}
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	cause := errors.New("boom")
	wrapped := fmt.Errorf("ctx: %w", Conflict("EMAIL_EM_USO", "email em uso", cause))
	got := FromError(wrapped)
	assert.Equal(t, "EMAIL_EM_USO", got.Code)
	assert.ErrorIs(t, got, cause)

	plain := FromError(cause)
	assert.Equal(t, http.StatusInternalServerError, plain.StatusCode())
	assert.Equal(t, "ERRO_INTERNO", plain.Code)
}
