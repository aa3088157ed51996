package dto

import (
	"net/http"

	"github.com/hotel/backoffice/internal/domain/shared"
)

// API error codes surfaced to clients
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = shared.ErrCodeNotFound
	ErrCodeConflict   = "CONFLICT"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// statusByCode maps error codes to HTTP status codes. Storage and
// notification failures deliberately surface as a generic internal
// error with no detail.
var statusByCode = map[string]int{
	ErrCodeBadRequest:                 http.StatusBadRequest,
	shared.ErrCodeValidation:          http.StatusBadRequest,
	shared.ErrCodeNotFound:            http.StatusNotFound,
	shared.ErrCodeInvalidState:        http.StatusConflict,
	shared.ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeConflict:                   http.StatusConflict,
	shared.ErrCodeStorage:             http.StatusInternalServerError,
	shared.ErrCodeNotification:        http.StatusInternalServerError,
	ErrCodeInternal:                   http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
