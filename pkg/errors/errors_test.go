package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"wrapped empty message", fmt.Errorf("send: %w", ErrEmptyMessage), http.StatusBadRequest},
		{"invalid role", ErrInvalidRole, http.StatusBadRequest},
		{"invalid identifier", fmt.Errorf("key: %w", ErrInvalidIdentifier), http.StatusBadRequest},
		{"not participant", ErrNotParticipant, http.StatusForbidden},
		{"expired token", ErrTokenExpired, http.StatusUnauthorized},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests},
		{"api error", NewAPIError("teapot", http.StatusTeapot), http.StatusTeapot},
		{"unknown", fmt.Errorf("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromError(tt.err))
		})
	}
}
