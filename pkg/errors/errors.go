package errors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrInternalServer    = errors.New("internal server error")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrEmptyMessage      = errors.New("message text is empty")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrNotParticipant    = errors.New("sender is not a participant of the conversation")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrProfileHasNoName  = errors.New("profile has no display name")
)

type APIError struct {
	Message string `json:"error"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, code int) *APIError {
	return &APIError{
		Message: message,
		Code:    code,
	}
}

// Is и As реэкспортируются, чтобы пакеты не импортировали оба errors
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func HTTPStatusFromError(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrEmptyMessage),
		errors.Is(err, ErrInvalidRole), errors.Is(err, ErrInvalidIdentifier):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
