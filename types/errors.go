package types

import (
	"errors"
	"fmt"
)

// ErrorType classifies analysis failures
type ErrorType string

const (
	ErrorTypeInvalidInput   ErrorType = "invalid_input"
	ErrorTypeLoad           ErrorType = "load"
	ErrorTypeEncode         ErrorType = "encode"
	ErrorTypeMetadataAbsent ErrorType = "metadata_absent"
	ErrorTypeSubfieldParse  ErrorType = "subfield_parse"
)

// AnalysisError is the single error type surfaced by the analysis packages
type AnalysisError struct {
	Type    ErrorType
	Message string
	Path    string
	Cause   error
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Fatal reports whether the error aborts the requested analysis
func (e *AnalysisError) Fatal() bool {
	switch e.Type {
	case ErrorTypeMetadataAbsent, ErrorTypeSubfieldParse:
		return false
	default:
		return true
	}
}

// NewInvalidInputError is returned for unsupported file types or missing files
func NewInvalidInputError(message, path string, cause error) *AnalysisError {
	return &AnalysisError{Type: ErrorTypeInvalidInput, Message: message, Path: path, Cause: cause}
}

// NewLoadError is returned when a file exists but cannot be decoded
func NewLoadError(message, path string, cause error) *AnalysisError {
	return &AnalysisError{Type: ErrorTypeLoad, Message: message, Path: path, Cause: cause}
}

// NewEncodeError is returned when a resave round trip fails
func NewEncodeError(message string, cause error) *AnalysisError {
	return &AnalysisError{Type: ErrorTypeEncode, Message: message, Cause: cause}
}

// NewMetadataAbsentError signals a file without structured metadata
func NewMetadataAbsentError(path string, cause error) *AnalysisError {
	return &AnalysisError{Type: ErrorTypeMetadataAbsent, Message: "no structured metadata", Path: path, Cause: cause}
}

// NewSubfieldParseError signals a single tag that could not be interpreted
func NewSubfieldParseError(field string, cause error) *AnalysisError {
	return &AnalysisError{Type: ErrorTypeSubfieldParse, Message: "cannot parse " + field, Cause: cause}
}

// IsType checks if any error in the chain is an AnalysisError of the given type
func IsType(err error, errorType ErrorType) bool {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Type == errorType
	}
	return false
}

// IsFatal reports whether err should abort the requested analysis.
// Errors that are not AnalysisErrors are always fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Fatal()
	}
	return true
}
