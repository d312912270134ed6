package api

import (
	"errors"
	"net/http"

	"askdata/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
// Unknown catalog keys and invalid plans are caller mistakes; build and
// execution failures are server-side.
func httpStatusFromDomainError(err error) int {
	var unknownDim *domain.UnknownDimensionError
	var unknownMetric *domain.UnknownMetricError
	var validation *domain.ValidationError
	var execution *domain.ExecutionError

	switch {
	case errors.As(err, &unknownDim):
		return http.StatusBadRequest
	case errors.As(err, &unknownMetric):
		return http.StatusBadRequest
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &execution):
		if execution.Timeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the error text safe to expose to clients. Execution
// errors can carry database internals, so they are replaced with a generic
// message; the detail stays in the audit log and server logs.
func publicMessage(err error) string {
	var execution *domain.ExecutionError
	if errors.As(err, &execution) {
		if execution.Timeout {
			return "query timed out"
		}
		return "query execution failed"
	}
	return err.Error()
}
