package cipher

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeInvalidKey      = "INVALID_KEY"
	ErrCodeCodec           = "CODEC_ERROR"
	ErrCodeBadPadding      = "BAD_PADDING"
	ErrCodeBadBlockSize    = "BAD_BLOCK_SIZE"
	ErrCodePatternNotFound = "PATTERN_NOT_FOUND"
	ErrCodeUnknownSource   = "UNKNOWN_SOURCE"
)

// Error represents a structured error with code and details
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MarshalJSON implements json.Marshaler
func (e *Error) MarshalJSON() ([]byte, error) {
	type Alias Error
	return json.Marshal(&struct {
		*Alias
		Error string `json:"error"`
	}{
		Alias: (*Alias)(e),
		Error: e.Error(),
	})
}

// NewError creates a new Error with the given code and message
func NewError(code string, message string, details ...any) *Error {
	e := &Error{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

// StepError is returned by Pipeline.Run when one of its steps fails.
// It unwraps to the primitive's *Error.
type StepError struct {
	Index int
	Op    Op
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("operation %s failed at step %d: %v", e.Op, e.Index, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsInvalidKey returns true for empty stream cipher keys and bad substitution tables
func IsInvalidKey(err error) bool {
	return CodeOf(err) == ErrCodeInvalidKey
}

// IsCodec returns true for malformed base64 or percent-encoding
func IsCodec(err error) bool {
	return CodeOf(err) == ErrCodeCodec
}

// IsPadding returns true if block decryption found invalid PKCS#7 padding
func IsPadding(err error) bool {
	return CodeOf(err) == ErrCodeBadPadding
}

// IsBlockSize returns true if the ciphertext is not a whole number of blocks
func IsBlockSize(err error) bool {
	return CodeOf(err) == ErrCodeBadBlockSize
}

// IsPatternNotFound returns true if no packed script was found
func IsPatternNotFound(err error) bool {
	return CodeOf(err) == ErrCodePatternNotFound
}

// IsUnknownSource returns true if a source name is not registered
func IsUnknownSource(err error) bool {
	return CodeOf(err) == ErrCodeUnknownSource
}

// IsStepFailed returns true if err came out of a pipeline step
func IsStepFailed(err error) bool {
	var e *StepError
	return errors.As(err, &e)
}
