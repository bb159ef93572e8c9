// Package errors renders RFC 7807 problem responses for the POS HTTP API.
package errors

import (
	"fmt"
	"maps"
	"net/http"
)

// ProblemDetail is an RFC 7807 problem document. It satisfies error so
// handlers can return one directly.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail == "" {
		return p.Title
	}
	return p.Title + ": " + p.Detail
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy carrying one more extension member. The
// receiver's map is never mutated, so package templates stay clean.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := maps.Clone(p.Extensions)
	if ext == nil {
		ext = make(map[string]any, 1)
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

// Problem type URI references, relative to the responder's base URI.
const (
	TypeValidation   = "/problems/validation-error"
	TypeNotFound     = "/problems/not-found"
	TypeConflict     = "/problems/conflict"
	TypeInternal     = "/problems/internal-error"
	TypeUnauthorized = "/problems/not-connected"
	TypeBadRequest   = "/problems/bad-request"
	TypeBadGateway   = "/problems/menu-store-unavailable"
)

func template(typ string, status int, title string) ProblemDetail {
	return ProblemDetail{Type: typ, Title: title, Status: status}
}

var (
	ErrValidation = template(TypeValidation, http.StatusBadRequest, "Validation Error")
	ErrBadRequest = template(TypeBadRequest, http.StatusBadRequest, "Bad Request")
	ErrNotFound   = template(TypeNotFound, http.StatusNotFound, "Resource Not Found")
	ErrInternal   = template(TypeInternal, http.StatusInternalServerError, "Internal Server Error")

	// ErrConflict reports a menu item name that is already taken.
	ErrConflict = template(TypeConflict, http.StatusConflict, "Conflict")
	// ErrUnauthorized reports that the terminal has no identity yet.
	ErrUnauthorized = template(TypeUnauthorized, http.StatusUnauthorized, "Not Connected")
	// ErrBadGateway reports a failed read or write against the menu store.
	ErrBadGateway = template(TypeBadGateway, http.StatusBadGateway, "Menu Store Unavailable")
)

// NewNotFoundProblem names the missing resource in detail and extensions.
func NewNotFoundProblem(resourceType string, identifier any) ProblemDetail {
	return ErrNotFound.
		WithDetail(fmt.Sprintf("%s %q not found", resourceType, fmt.Sprint(identifier))).
		WithExtension("resourceType", resourceType).
		WithExtension("identifier", identifier)
}
