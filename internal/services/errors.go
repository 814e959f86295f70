// Package services sits between the HTTP handlers and the engine. It owns the
// loaded dataset, memoizes views and turns engine errors into coded errors.
package services

import (
	"errors"
	"net/http"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/anomaly"
	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/comparison"
	"github.com/sarenasr/Rappi-Dashboard/internal/engine"
	"github.com/sarenasr/Rappi-Dashboard/internal/filter"
	"github.com/sarenasr/Rappi-Dashboard/internal/models"
	"github.com/sarenasr/Rappi-Dashboard/internal/resample"
)

// Error codes carried by ServiceError
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInvalidSpec      = "INVALID_SPEC"
	CodeDatasetNotLoaded = "DATASET_NOT_LOADED"
	CodeReloadFailed     = "RELOAD_FAILED"
	CodeViewFailed       = "VIEW_FAILED"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// HTTPStatus maps the error code to a response status
func (e *ServiceError) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidRequest, CodeInvalidSpec:
		return http.StatusBadRequest
	case CodeDatasetNotLoaded:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// classify maps an error from the request or engine layers to a ServiceError.
// Anything the caller could fix by changing the query is INVALID_SPEC.
func classify(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	var fe *models.FieldError
	if errors.As(err, &fe) {
		return NewServiceErrorWithDetails(CodeInvalidRequest, fe.Message, map[string]interface{}{"field": fe.Field})
	}
	switch {
	case errors.Is(err, filter.ErrInvalidSpec),
		errors.Is(err, engine.ErrInvalidQuery),
		errors.Is(err, resample.ErrUnknownGranularity),
		errors.Is(err, anomaly.ErrInvalidThreshold),
		errors.Is(err, anomaly.ErrInvalidWindow),
		errors.Is(err, anomaly.ErrUnknownAlignment),
		errors.Is(err, comparison.ErrUnknownMode):
		return NewServiceError(CodeInvalidSpec, err.Error())
	}
	return NewServiceErrorWithDetails(CodeViewFailed, "Failed to compute view", map[string]interface{}{"error": err.Error()})
}
