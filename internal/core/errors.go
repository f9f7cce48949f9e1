package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// seriesErr annotates a series validation failure with the offending index.
func seriesErr(index int, reason string) error {
	return fmt.Errorf("point %d: %s", index, reason)
}

// Predefined errors
var (
	// Series errors
	ErrNoData           = &Error{Code: "NO_DATA", Message: "no data available"}
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "series too short for analysis"}
	ErrInvalidSeries    = &Error{Code: "INVALID_SERIES", Message: "price series invalid"}

	// Simulation errors
	ErrSimulationDone   = &Error{Code: "SIMULATION_DONE", Message: "simulator already completed a run"}
	ErrSimulationFailed = &Error{Code: "SIMULATION_FAILED", Message: "simulation run failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Journal errors
	ErrJournalFailed = &Error{Code: "JOURNAL_FAILED", Message: "journal write failed"}

	// Archive errors
	ErrArchiveFailed = &Error{Code: "ARCHIVE_FAILED", Message: "archive operation failed"}

	// API errors
	ErrRunNotFound = &Error{Code: "RUN_NOT_FOUND", Message: "run not found"}
	ErrJobNotFound = &Error{Code: "JOB_NOT_FOUND", Message: "job not found"}
)
