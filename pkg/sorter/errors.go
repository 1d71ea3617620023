package sorter

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pagesort/pkg/schema"
)

// ErrorPayload is the failure body returned to callers. Only the fields relevant to the
// failure are populated.
type ErrorPayload struct {
	Error          string        `json:"error"`
	Details        string        `json:"details,omitempty"`
	InvalidNames   []string      `json:"invalidNames,omitempty"`
	ValidNames     []string      `json:"validNames,omitempty"`
	MissingNames   []string      `json:"missingNames,omitempty"`
	ReturnedNames  []string      `json:"returnedNames,omitempty"`
	DuplicateNames []string      `json:"duplicateNames,omitempty"`
	Status         schema.Status `json:"status,omitempty"`
}

// Failure is implemented by every pipeline error.
type Failure interface {
	error
	Payload() ErrorPayload
}

// ConfigurationError means no inference provider is available. No call was attempted.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return "inference provider not configured"
	}
	return "inference provider not configured: " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Payload() ErrorPayload {
	p := ErrorPayload{Error: "inference provider not configured"}
	if e.Err != nil {
		p.Details = e.Err.Error()
	}
	return p
}

// AnalysisFailure means the visual analysis call failed or returned something unusable.
type AnalysisFailure struct {
	Err error
}

func (e *AnalysisFailure) Error() string { return "page analysis failed: " + e.Err.Error() }

func (e *AnalysisFailure) Unwrap() error { return e.Err }

func (e *AnalysisFailure) Payload() ErrorPayload {
	return ErrorPayload{Error: "page analysis failed", Details: e.Err.Error(), Status: schema.StatusContextFailure}
}

// SequencingFailure means the sequencing call failed or its response lacked required fields.
type SequencingFailure struct {
	Err error
}

func (e *SequencingFailure) Error() string { return "page sequencing failed: " + e.Err.Error() }

func (e *SequencingFailure) Unwrap() error { return e.Err }

func (e *SequencingFailure) Payload() ErrorPayload {
	return ErrorPayload{Error: "page sequencing failed", Details: e.Err.Error(), Status: schema.StatusContextFailure}
}

// InvalidFilenamesError lists order entries that are not input filenames. MissingNames and
// DuplicateNames are filled when the completeness check also failed on the same order.
type InvalidFilenamesError struct {
	InvalidNames   []string
	ValidNames     []string
	MissingNames   []string
	DuplicateNames []string
	ReturnedNames  []string
}

func (e *InvalidFilenamesError) Error() string {
	msg := fmt.Sprintf("order contains unknown filenames: %s", strings.Join(e.InvalidNames, ", "))
	if len(e.MissingNames) > 0 {
		msg += fmt.Sprintf(" (missing: %s)", strings.Join(e.MissingNames, ", "))
	}
	if len(e.DuplicateNames) > 0 {
		msg += fmt.Sprintf(" (duplicated: %s)", strings.Join(e.DuplicateNames, ", "))
	}
	return msg
}

func (e *InvalidFilenamesError) Payload() ErrorPayload {
	return ErrorPayload{
		Error:          "order contains unknown filenames",
		InvalidNames:   e.InvalidNames,
		ValidNames:     e.ValidNames,
		MissingNames:   e.MissingNames,
		DuplicateNames: e.DuplicateNames,
		ReturnedNames:  e.ReturnedNames,
		Status:         schema.StatusContextFailure,
	}
}

// MissingFilenamesError lists input filenames the order does not contain exactly once.
type MissingFilenamesError struct {
	MissingNames   []string
	DuplicateNames []string
	ReturnedNames  []string
}

func (e *MissingFilenamesError) Error() string {
	var parts []string
	if len(e.MissingNames) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.MissingNames, ", "))
	}
	if len(e.DuplicateNames) > 0 {
		parts = append(parts, "duplicated: "+strings.Join(e.DuplicateNames, ", "))
	}
	return "order is incomplete (" + strings.Join(parts, "; ") + ")"
}

func (e *MissingFilenamesError) Payload() ErrorPayload {
	return ErrorPayload{
		Error:          "order is incomplete",
		MissingNames:   e.MissingNames,
		DuplicateNames: e.DuplicateNames,
		ReturnedNames:  e.ReturnedNames,
		Status:         schema.StatusContextFailure,
	}
}

// PayloadOf returns the failure body for err. Errors outside the pipeline taxonomy are
// reported as internal errors.
func PayloadOf(err error) ErrorPayload {
	var f Failure
	if errors.As(err, &f) {
		return f.Payload()
	}
	if errors.Is(err, ErrInvalidRequest) {
		return ErrorPayload{Error: ErrInvalidRequest.Error(), Details: err.Error()}
	}
	return ErrorPayload{Error: "internal error", Details: err.Error()}
}

// HTTPStatus maps a pipeline error to the status code the API responds with.
func HTTPStatus(err error) int {
	var (
		configErr   *ConfigurationError
		analysisErr *AnalysisFailure
		sequenceErr *SequencingFailure
		invalidErr  *InvalidFilenamesError
		missingErr  *MissingFilenamesError
	)
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.As(err, &configErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &analysisErr), errors.As(err, &sequenceErr):
		return http.StatusBadGateway
	case errors.As(err, &invalidErr), errors.As(err, &missingErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
