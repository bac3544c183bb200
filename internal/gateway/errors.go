package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrUnreachable wraps every failure where no HTTP response was received.
var ErrUnreachable = errors.New("remote unreachable")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the server-provided message carried by err, if any.
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

func IsNotFound(err error) bool        { return StatusOf(err) == http.StatusNotFound }
func IsUnauthorized(err error) bool    { return StatusOf(err) == http.StatusUnauthorized }
func IsPayloadTooLarge(err error) bool { return StatusOf(err) == http.StatusRequestEntityTooLarge }
func IsUnreachable(err error) bool     { return errors.Is(err, ErrUnreachable) }

func payloadTooLarge(what string, size, limit int64) error {
	return &APIError{
		Status:  http.StatusRequestEntityTooLarge,
		Message: fmt.Sprintf("%s is %d bytes, limit is %d", what, size, limit),
	}
}

// errorFromResponse builds an APIError from the backend's {"error"} or {"message"} body.
func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	} else {
		msg = strings.TrimSpace(string(body))
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
