// Package domain defines core types, interfaces, and errors for the ask-data
// query engine.
package domain

import "fmt"

// UnknownDimensionError indicates a plan referenced a dimension key that is
// not present in the semantic catalog.
type UnknownDimensionError struct {
	Key string
}

func (e *UnknownDimensionError) Error() string {
	return fmt.Sprintf("unknown dimension %q", e.Key)
}

// UnknownMetricError indicates a plan referenced a metric key that is not
// present in the semantic catalog.
type UnknownMetricError struct {
	Key string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("unknown metric %q", e.Key)
}

// ValidationError indicates a structurally invalid plan or request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// BuildError indicates a validated plan could not be compiled to SQL.
// This points at a catalog or builder bug, not at caller input.
type BuildError struct {
	Message string
}

func (e *BuildError) Error() string { return e.Message }

// ExecutionError indicates the database rejected or timed out the generated
// statement.
type ExecutionError struct {
	Message string
	Timeout bool
}

func (e *ExecutionError) Error() string { return e.Message }

// ErrUnknownDimension creates an UnknownDimensionError for the given key.
func ErrUnknownDimension(key string) *UnknownDimensionError {
	return &UnknownDimensionError{Key: key}
}

// ErrUnknownMetric creates an UnknownMetricError for the given key.
func ErrUnknownMetric(key string) *UnknownMetricError {
	return &UnknownMetricError{Key: key}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrBuild creates a BuildError with a formatted message.
func ErrBuild(format string, args ...interface{}) *BuildError {
	return &BuildError{Message: fmt.Sprintf(format, args...)}
}

// ErrExecution creates an ExecutionError with a formatted message.
func ErrExecution(format string, args ...interface{}) *ExecutionError {
	return &ExecutionError{Message: fmt.Sprintf(format, args...)}
}

// ErrExecutionTimeout creates an ExecutionError marked as a timeout.
func ErrExecutionTimeout(format string, args ...interface{}) *ExecutionError {
	return &ExecutionError{Message: fmt.Sprintf(format, args...), Timeout: true}
}
