package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Envelope messages shared by every failing response.
const (
	MessageNotFound      = "resource not found"
	MessageUnprocessable = "unprocessable"
	MessageInternal      = "server error"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Envelope is the JSON body written for every failed request. Details stay
// server-side; they are logged, never rendered.
type Envelope struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// Envelope renders the error in its wire shape.
func (e *DomainError) Envelope() Envelope {
	return Envelope{
		Success: false,
		Error:   e.HTTPStatus,
		Message: e.Message,
	}
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewUnprocessable reports a payload that parsed but cannot be applied.
func NewUnprocessable(details map[string]any, err error) error {
	return &DomainError{
		Code:       "UNPROCESSABLE",
		Message:    MessageUnprocessable,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
		Err:        err,
	}
}

func NewNotFound(resource string, id any) error {
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    MessageNotFound,
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"resource": resource, "id": id},
	}
}

func NewUnauthorized(code, message string, err error) error {
	return &DomainError{Code: code, Message: message, HTTPStatus: http.StatusUnauthorized, Err: err}
}

func NewForbidden(code, message string, err error) error {
	return &DomainError{Code: code, Message: message, HTTPStatus: http.StatusForbidden, Err: err}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    MessageInternal,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. Anything not already
// classified is treated as an internal failure.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    MessageInternal,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
