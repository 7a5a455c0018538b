//go:build !integration && !e2e

package routererrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Wrap(ErrorTypeInternal, "failed to load organization", cause)

	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("handler: %w", ErrRouterNotFound)
	assert.ErrorIs(t, wrapped, ErrRouterNotFound)
	assert.False(t, errors.Is(wrapped, ErrModelNotFound), "same type, different message")

	// An empty target message matches any error of the same type.
	assert.ErrorIs(t, ErrRouterNotFound, New(ErrorTypeNotFound, ""))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrPromptLength, http.StatusBadRequest},
		{ErrNoStrategyEnabled, http.StatusBadRequest},
		{InvalidSentence(3), http.StatusBadRequest},
		{ErrUnauthorizedToken, http.StatusUnauthorized},
		{ErrUnauthorizedScopes, http.StatusUnauthorized},
		{ErrOrganizationNotFound, http.StatusNotFound},
		{ErrModelNotFound, http.StatusNotFound},
		{Inference("boom", errors.New("x")), http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsValidation(ErrPromptLength))
	assert.True(t, IsNotFound(ErrRouterNotFound))
	assert.True(t, IsUnauthorized(ErrUnauthorizedScopes))
	assert.True(t, IsInference(Inference("x", nil)))
	assert.False(t, IsValidation(errors.New("plain")))
}

func TestInvalidSentence_NamesIndex(t *testing.T) {
	err := InvalidSentence(2)
	assert.Contains(t, err.Error(), "sentence 2")
	assert.True(t, IsValidation(err))
}
