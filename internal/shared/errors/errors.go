// Package errors provides application-level error types and utilities.
// It defines the error taxonomy used at the panel boundary (authentication,
// connection, remote API, not found, data consistency) plus generic
// validation and internal errors.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation_error"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeConflict        ErrorType = "conflict"
	ErrorTypeInternal        ErrorType = "internal_error"
	ErrorTypeAuthentication  ErrorType = "authentication_error"
	ErrorTypeConnection      ErrorType = "connection_error"
	ErrorTypeRemoteAPI       ErrorType = "remote_api_error"
	ErrorTypeDataConsistency ErrorType = "data_consistency_error"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newAppError(errType ErrorType, code int, message string, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    errType,
		Message: message,
		Code:    code,
		Details: detail,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details...)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details...)
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, details...)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details...)
}

// NewAuthenticationError creates an error for rejected or expired panel credentials
func NewAuthenticationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeAuthentication, http.StatusUnauthorized, message, details...)
}

// NewConnectionError creates an error for an unreachable or timed-out panel
func NewConnectionError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConnection, http.StatusBadGateway, message, details...)
}

// NewRemoteAPIError creates an error for a well-formed failure response from a panel
func NewRemoteAPIError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeRemoteAPI, http.StatusBadGateway, message, details...)
}

// NewDataConsistencyError creates an error for a local reference whose remote
// counterpart no longer exists
func NewDataConsistencyError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeDataConsistency, http.StatusConflict, message, details...)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func isType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return isType(err, ErrorTypeConflict)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsAuthenticationError checks if the error is an authentication error
func IsAuthenticationError(err error) bool {
	return isType(err, ErrorTypeAuthentication)
}

// IsConnectionError checks if the error is a connection error
func IsConnectionError(err error) bool {
	return isType(err, ErrorTypeConnection)
}

// IsRemoteAPIError checks if the error is a remote API error
func IsRemoteAPIError(err error) bool {
	return isType(err, ErrorTypeRemoteAPI)
}

// IsDataConsistencyError checks if the error is a data consistency error
func IsDataConsistencyError(err error) bool {
	return isType(err, ErrorTypeDataConsistency)
}

// IsDuplicateError checks if the error is a database duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// MySQL duplicate entry error
	if strings.Contains(errStr, "Duplicate entry") || strings.Contains(errStr, "duplicate key") {
		return true
	}
	// PostgreSQL unique violation
	if strings.Contains(errStr, "unique constraint") || strings.Contains(errStr, "violates unique constraint") {
		return true
	}
	return false
}
