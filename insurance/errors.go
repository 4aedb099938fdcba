// Package insurance implements the prediction request pipeline: profile
// validation, feature shaping, model invocation, and currency conversion.
package insurance

import (
	"errors"
	"fmt"

	"medicost/model"
)

// ErrorCode classifies every way a prediction can fail. Codes are stable and
// user-facing; the collaborator maps them to messages or HTTP statuses.
type ErrorCode string

const (
	// CodeArtifactNotFound: the model file is missing from the expected
	// location. Fatal for the process until fixed and restarted.
	CodeArtifactNotFound ErrorCode = "ARTIFACT_NOT_FOUND"
	// CodeArtifactCorrupt: the model file exists but cannot be deserialized.
	CodeArtifactCorrupt ErrorCode = "ARTIFACT_CORRUPT"
	// CodeInvalidProfile: a profile field is out of domain. Caller error,
	// resubmit with a corrected profile.
	CodeInvalidProfile ErrorCode = "INVALID_PROFILE"
	// CodeInferenceFailed: the pipeline rejected well-formed input or
	// produced an out-of-range result.
	CodeInferenceFailed ErrorCode = "INFERENCE_FAILED"
	// CodeInvalidConfiguration: the conversion rate is not strictly
	// positive. Operator error.
	CodeInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
)

// PredictionError is the structured failure returned by every operation in
// this package. Exactly one is produced per failed call; it is never turned
// into a fabricated numeric estimate.
type PredictionError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Field     string    `json:"field,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Retryable bool      `json:"retryable"`
	cause     error
}

func (e *PredictionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PredictionError) Unwrap() error {
	return e.cause
}

// NewInvalidProfileError reports one out-of-domain field.
func NewInvalidProfileError(field, reason string) *PredictionError {
	return &PredictionError{
		Code:      CodeInvalidProfile,
		Message:   fmt.Sprintf("profile field %s is invalid: %s", field, reason),
		Field:     field,
		Reason:    reason,
		Retryable: false,
	}
}

// NewInferenceError reports a runtime model failure.
func NewInferenceError(cause error) *PredictionError {
	return &PredictionError{
		Code:      CodeInferenceFailed,
		Message:   fmt.Sprintf("model inference failed: %v", cause),
		Reason:    cause.Error(),
		Retryable: true,
		cause:     cause,
	}
}

// NewConfigurationError reports a misconfigured conversion rate.
func NewConfigurationError(message string) *PredictionError {
	return &PredictionError{
		Code:      CodeInvalidConfiguration,
		Message:   message,
		Retryable: false,
	}
}

// FromRegistryError translates a registry load failure into the taxonomy.
func FromRegistryError(err error) *PredictionError {
	code := CodeArtifactCorrupt
	message := "the model file is present but could not be deserialized"
	if errors.Is(err, model.ErrArtifactNotFound) {
		code = CodeArtifactNotFound
		message = "the model file is missing from the expected location"
	}
	return &PredictionError{
		Code:      code,
		Message:   message,
		Reason:    err.Error(),
		Retryable: false,
		cause:     err,
	}
}

// AsPredictionError unpacks err into a *PredictionError when possible.
func AsPredictionError(err error) (*PredictionError, bool) {
	var pe *PredictionError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
