package logo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// APIError is an error response from the Logo Objects service.
type APIError struct {
	StatusCode       int                 `json:"-"                          yaml:"status_code"`
	Message          string              `json:"Message,omitempty"          yaml:"message,omitempty"`
	ExceptionMessage string              `json:"ExceptionMessage,omitempty" yaml:"exception_message,omitempty"`
	ExceptionType    string              `json:"ExceptionType,omitempty"    yaml:"exception_type,omitempty"`
	ModelState       map[string][]string `json:"ModelState,omitempty"       yaml:"model_state,omitempty"`

	// OAuth errors from the token endpoint.
	Code        string `json:"error,omitempty"             yaml:"error,omitempty"`
	Description string `json:"error_description,omitempty" yaml:"error_description,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	detail := e.Detail()
	if detail == "" {
		detail = http.StatusText(e.StatusCode)
	}

	return fmt.Sprintf("logo objects: %s (status: %d)", detail, e.StatusCode)
}

// Detail returns the most specific message the service sent.
func (e *APIError) Detail() string {
	var parts []string

	switch {
	case e.ExceptionMessage != "":
		parts = append(parts, e.ExceptionMessage)
	case e.Message != "":
		parts = append(parts, e.Message)
	case e.Description != "":
		parts = append(parts, e.Description)
	case e.Code != "":
		parts = append(parts, e.Code)
	}

	fields := make([]string, 0, len(e.ModelState))
	for field := range e.ModelState {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e.ModelState[field], "; "))
	}

	return strings.Join(parts, ", ")
}

// Static errors that can be wrapped with context.
var (
	ErrInvalidValue       = errors.New("invalid filter value")
	ErrInvalidOperator    = errors.New("invalid filter operator")
	ErrInvalidCriteria    = errors.New("invalid criteria")
	ErrTrailingData       = errors.New("unexpected data after criteria document")
	ErrInvalidQueryOption = errors.New("invalid query option")
	ErrConfigRequired     = errors.New("config is required")
	ErrBaseURLRequired    = errors.New("base URL is required")
	ErrNoMoreItems        = errors.New("no more items")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCacheType   = errors.New("invalid cache type")
	ErrRateLimitExceeded  = errors.New("client rate limit exceeded")
)

func hasStatus(err error, status int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}

	return false
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsBadRequest checks if the error is a validation error.
func IsBadRequest(err error) bool {
	return hasStatus(err, http.StatusBadRequest)
}

// ParseResponseError decodes an error body. Bodies that are not JSON are kept as
// the message.
func ParseResponseError(statusCode int, data []byte) *APIError {
	apiErr := &APIError{}

	trimmed := strings.TrimSpace(string(data))
	if trimmed != "" {
		err := json.Unmarshal(data, apiErr)
		if err != nil {
			apiErr = &APIError{Message: trimmed}
		}
	}

	apiErr.StatusCode = statusCode

	return apiErr
}
