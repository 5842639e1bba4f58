// Package apierr defines the error taxonomy shared by services and mapped to
// HTTP statuses at the handler layer. Downstream failures are wrapped as
// internal errors so their detail never reaches the client.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func Invalid(msg string) *APIError      { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func Unauthorized(msg string) *APIError { return &APIError{Code: CodeUnauthorized, Message: msg} }
func Forbidden(msg string) *APIError    { return &APIError{Code: CodeForbidden, Message: msg} }
func NotFound(msg string) *APIError     { return &APIError{Code: CodeNotFound, Message: msg} }
func Conflict(msg string) *APIError     { return &APIError{Code: CodeConflict, Message: msg} }
func Internal(msg string) *APIError     { return &APIError{Code: CodeInternal, Message: msg} }

// HTTPStatus maps an error to its HTTP status. Unknown errors collapse to 500.
func HTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeUnauthorized:
			return http.StatusUnauthorized
		case CodeForbidden:
			return http.StatusForbidden
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict:
			return http.StatusConflict
		}
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing message for an error. Non-API errors get
// a fixed message so internal detail is never leaked.
func Message(err error) string {
	var api *APIError
	if errors.As(err, &api) && api.Code != CodeInternal {
		return api.Message
	}
	return "internal server error"
}
