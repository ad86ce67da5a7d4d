package api

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/icarus/internal/common"
	"github.com/tidwall/gjson"
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return common.ErrorInvalidRequest
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusForbidden:
		return common.ErrorForbidden
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorDuplicateUsername
	default:
		return common.ErrorInternal
	}
}

func newAPIError(status int, body []byte) *APIError {
	msg := gjson.GetBytes(body, "error").String()
	return &APIError{Status: status, Message: msg}
}
