package core

import (
	"errors"
	"fmt"
)

// UnsupportedFormatError means the file extension is not one the extractor
// knows how to parse. Permanent: retrying cannot change the format.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format %q (supported: .pdf, .docx, .pptx, .txt)", e.Ext)
}

// ExtractionError wraps a parse failure over corrupt or unreadable input.
// Permanent.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("text extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// AIProviderError is the single taxonomy every provider maps its transport,
// auth and rate-limit failures into. Retryable is an explicit property, set
// at the point the provider classifies its own error; the orchestrator's
// retry policy reads the flag and nothing else.
type AIProviderError struct {
	Provider  string
	Retryable bool
	Err       error
}

func (e *AIProviderError) Error() string {
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *AIProviderError) Unwrap() error { return e.Err }

// ResponseParseError means no decoding strategy could recover structured
// flashcards from the provider's response. Permanent per chunk: a malformed
// response from a healthy provider will not improve on retry.
type ResponseParseError struct {
	Err error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("could not parse provider response: %v", e.Err)
}

func (e *ResponseParseError) Unwrap() error { return e.Err }

// NoValidCardsError means every chunk of a document produced zero usable
// flashcards. Permanent: this indicates a content or model-output problem,
// not a transient fault.
type NoValidCardsError struct {
	DocumentID string
	Chunks     int
}

func (e *NoValidCardsError) Error() string {
	return fmt.Sprintf("no valid flashcards generated for document %s across %d chunk(s)", e.DocumentID, e.Chunks)
}

// IsRetryable reports whether err carries an explicit retryable provider
// failure. Every other error in the taxonomy is permanent.
func IsRetryable(err error) bool {
	var pe *AIProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}
