// Package types defines the error values reported by the REST and gRPC APIs.
package types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lemonberrylabs/unitconv/pkg/catalog"
	"github.com/lemonberrylabs/unitconv/pkg/expr"
	"github.com/lemonberrylabs/unitconv/pkg/parser"
	"github.com/lemonberrylabs/unitconv/pkg/units"
)

// Error tag constants, one per error class surfaced by the API.
const (
	TagDimensionError    = "DimensionError"
	TagPowerError        = "PowerError"
	TagZeroDivisionError = "ZeroDivisionError"
	TagOverflowError     = "OverflowError"
	TagSyntaxError       = "SyntaxError"
	TagUnknownUnitError  = "UnknownUnitError"
	TagDuplicateError    = "DuplicateError"
	TagNotFound          = "NotFound"
	TagInvalidUnitError  = "InvalidUnitError"
	TagParseError        = "ParseError"
	TagValueError        = "ValueError"
	TagSystemError       = "SystemError"
)

// Canonical status strings, shared by the REST envelope and gRPC codes.
const (
	StatusInvalidArgument = "INVALID_ARGUMENT"
	StatusNotFound        = "NOT_FOUND"
	StatusAlreadyExists   = "ALREADY_EXISTS"
	StatusInternal        = "INTERNAL"
)

// APIError is an error as reported to API clients: a message, an HTTP status
// code, a canonical status string and the tags describing its class.
type APIError struct {
	Message string
	Code    int64
	Status  string
	Tags    []string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (code=%d, tags=[%s])", e.Message, e.Code, strings.Join(e.Tags, ", "))
}

// HasTag returns true if the error has the specified tag.
func (e *APIError) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Classify maps any error returned by the engine, the catalog or the store to
// an APIError. Unknown errors are reported as internal.
func Classify(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		return newBadRequest(err.Error(), TagParseError)
	}

	msg := err.Error()
	switch {
	case units.DimensionError.Has(err):
		return newBadRequest(msg, TagDimensionError)
	case units.PowerError.Has(err):
		return newBadRequest(msg, TagPowerError)
	case units.DivisionError.Has(err):
		return newBadRequest(msg, TagZeroDivisionError)
	case units.OverflowError.Has(err):
		return newBadRequest(msg, TagOverflowError)
	case expr.SyntaxError.Has(err):
		return newBadRequest(msg, TagSyntaxError)
	case expr.UnknownUnitError.Has(err):
		return newBadRequest(msg, TagUnknownUnitError)
	case catalog.InvalidUnitError.Has(err):
		return newBadRequest(msg, TagInvalidUnitError)
	case catalog.DuplicateError.Has(err):
		return &APIError{Message: msg, Code: http.StatusConflict, Status: StatusAlreadyExists, Tags: []string{TagDuplicateError}}
	case catalog.NotFoundError.Has(err):
		return NewNotFoundError(msg)
	default:
		return NewSystemError(msg)
	}
}

func newBadRequest(msg, tag string) *APIError {
	return &APIError{Message: msg, Code: http.StatusBadRequest, Status: StatusInvalidArgument, Tags: []string{tag}}
}

// NewValueError creates a ValueError for malformed requests.
func NewValueError(msg string) *APIError {
	return newBadRequest(msg, TagValueError)
}

// NewNotFoundError creates a NotFound error.
func NewNotFoundError(msg string) *APIError {
	return &APIError{Message: msg, Code: http.StatusNotFound, Status: StatusNotFound, Tags: []string{TagNotFound}}
}

// NewSystemError creates a SystemError.
func NewSystemError(msg string) *APIError {
	return &APIError{Message: msg, Code: http.StatusInternalServerError, Status: StatusInternal, Tags: []string{TagSystemError}}
}
