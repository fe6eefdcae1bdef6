package apperr

import (
	"errors"
	"net/http"
)

// StatusCode maps err to the HTTP status reported to clients.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to return to clients for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "Internal server error"
}

// Body is the JSON error envelope for err. The code is included only when the
// error carries one.
func Body(err error) map[string]any {
	body := map[string]any{
		"success": false,
		"message": PublicMessage(err),
	}
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal && e.Code != "" {
		body["code"] = e.Code
	}
	return body
}
