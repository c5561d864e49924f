// Package derrors provides custom error types for the autocomplete engine and its tooling.
// Each type carries a stable code so callers can branch on the failure kind
// without matching on message text.
package derrors

import (
	"fmt"
)

// AutocompleteError is the base interface for all autocomplete errors
type AutocompleteError interface {
	error
	// Code returns a unique error code for programmatic error handling
	Code() string
}

// baseError provides common functionality for all autocomplete errors
type baseError struct {
	code    string
	message string
	cause   error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Code() string {
	return e.code
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// ConfigurationError represents errors in configuration files
type ConfigurationError struct {
	baseError
	Path string
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(path string, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		baseError: baseError{
			code:    "CONFIG_ERROR",
			message: message,
			cause:   cause,
		},
		Path: path,
	}
}

// ValidationError represents errors during validation
type ValidationError struct {
	baseError
	Field string
}

// NewValidationError creates a new validation error
func NewValidationError(field string, message string, cause error) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			code:    "VALIDATION_ERROR",
			message: message,
			cause:   cause,
		},
		Field: field,
	}
}

// NotFoundError represents errors when a resource is not found
type NotFoundError struct {
	baseError
	Resource string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, message string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			code:    "NOT_FOUND",
			message: message,
			cause:   nil,
		},
		Resource: resource,
	}
}

// DictionaryError represents errors reading or writing candidate dictionaries
type DictionaryError struct {
	baseError
	Path string
}

// NewDictionaryError creates a new dictionary error
func NewDictionaryError(path string, message string, cause error) *DictionaryError {
	return &DictionaryError{
		baseError: baseError{
			code:    "DICTIONARY_ERROR",
			message: message,
			cause:   cause,
		},
		Path: path,
	}
}

// UnimplementedError signals a store that relies on a default stub it was
// required to override. It is a defect in the store, never a runtime condition.
type UnimplementedError struct {
	baseError
	Method string
}

// NewUnimplementedError creates a new unimplemented-method error
func NewUnimplementedError(method string) *UnimplementedError {
	return &UnimplementedError{
		baseError: baseError{
			code:    "UNIMPLEMENTED",
			message: fmt.Sprintf("store does not implement %s", method),
		},
		Method: method,
	}
}
