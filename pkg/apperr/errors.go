// Package apperr defines the error kinds returned by the order, catalog and
// analytics services and how they surface over HTTP.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MaverickLook/Big-Bite/pkg/models"
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError reports a status change the lifecycle does not allow.
type InvalidTransitionError struct {
	Current     models.Status
	Requested   models.Status
	AllowedNext []models.Status
}

func (e *InvalidTransitionError) Error() string {
	allowed := make([]string, len(e.AllowedNext))
	for i, s := range e.AllowedNext {
		allowed[i] = string(s)
	}
	return fmt.Sprintf("invalid status transition from %s to %s (allowed: %s)",
		e.Current, e.Requested, strings.Join(allowed, ", "))
}

// OrderReadOnlyError reports a write to a completed or cancelled order.
type OrderReadOnlyError struct {
	Current models.Status
}

func (e *OrderReadOnlyError) Error() string {
	return fmt.Sprintf("order is read-only (%s)", e.Current)
}

type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

func Permission(message string) error {
	return &PermissionError{Message: message}
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError is returned when concurrent writers kept racing on the same
// record and the write could not be validated against a stable state.
type ConflictError struct {
	Resource string
	ID       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently", e.Resource, e.ID)
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	var (
		validation *ValidationError
		transition *InvalidTransitionError
		readOnly   *OrderReadOnlyError
		permission *PermissionError
		notFound   *NotFoundError
		conflict   *ConflictError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation), errors.As(err, &transition), errors.As(err, &readOnly):
		return http.StatusBadRequest
	case errors.As(err, &permission):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
