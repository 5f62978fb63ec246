package pipeline

import "fmt"

// ErrorKind enumerates the error taxonomy from §7. Most kinds are recovered
// locally by the layer that hits them; only input_invalid, timeout, and
// internal ever stop the pipeline outright.
type ErrorKind string

const (
	ErrInputInvalid                  ErrorKind = "input_invalid"
	ErrLanguageDetectionLowConfidence ErrorKind = "language_detection_low_confidence"
	ErrMorphologyUnavailable          ErrorKind = "morphology_unavailable"
	ErrDictionaryMiss                 ErrorKind = "dictionary_miss"
	ErrIdentifierChecksumFailed       ErrorKind = "identifier_checksum_failed"
	ErrSearchUnavailable              ErrorKind = "search_unavailable"
	ErrEmbeddingUnavailable           ErrorKind = "embedding_unavailable"
	ErrTimeout                        ErrorKind = "timeout"
	ErrInternal                       ErrorKind = "internal"
)

// Error wraps an ErrorKind with the underlying cause, if any.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds an *Error of kind k wrapping cause (which may be nil).
func NewError(k ErrorKind, cause error) *Error {
	return &Error{Kind: k, Cause: cause}
}
