// ABOUTME: Error taxonomy for backend calls
// ABOUTME: APIError carries status and detail, ErrUnreachable marks network failures

package backend

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnreachable is returned when the backend could not be reached at all.
var ErrUnreachable = errors.New("backend unreachable")

// MsgUnreachable is the operator-facing text for network failures.
const MsgUnreachable = "Erreur de connexion au serveur"

// APIError is returned for non-2xx backend responses.
// Detail is empty when the body carried no string "detail" field.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// UserMessage maps a backend error to the text shown to the operator.
// A detail from the backend wins, network failures get MsgUnreachable and
// everything else gets fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if errors.Is(err, ErrUnreachable) {
		return MsgUnreachable
	}
	return fallback
}

// IsUnreachable reports whether err is a network failure.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// parseAPIError builds an APIError from a non-2xx body.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &payload) != nil || len(payload.Detail) == 0 {
		return apiErr
	}

	// FastAPI validation errors put a list in detail; only strings are shown
	var detail string
	if json.Unmarshal(payload.Detail, &detail) == nil {
		apiErr.Detail = detail
	}
	return apiErr
}
