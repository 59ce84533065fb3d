// Package ierr defines the error taxonomy shared by the chunker, the
// indexing pipeline, the embedder/vector-store clients and the
// config/restart controller.
package ierr

import (
	"errors"
	"fmt"
)

// Kind tags an error with its origin and recovery semantics so callers
// can branch without string matching.
type Kind string

const (
	ParseError           Kind = "ParseError"
	EmbedTransient        Kind = "EmbedTransient"
	EmbedPermanent        Kind = "EmbedPermanent"
	VectorStoreTransient Kind = "VectorStoreTransient"
	VectorStorePermanent Kind = "VectorStorePermanent"
	ConfigInvalid        Kind = "ConfigInvalid"
	DimensionMismatch    Kind = "DimensionMismatch"
	IOError              Kind = "IOError"
)

// Fatal reports whether errors of this kind must abort the current run
// and drive the indexer state machine to Error.
func (k Kind) Fatal() bool {
	switch k {
	case EmbedPermanent, VectorStorePermanent, IOError:
		return true
	default:
		return false
	}
}

// CodeIndexError wraps an underlying error with a Kind and the path or
// identifier it occurred against, if any.
type CodeIndexError struct {
	Kind Kind
	Path string
	Err  error
}

func New(kind Kind, path string, err error) *CodeIndexError {
	return &CodeIndexError{Kind: kind, Path: path, Err: err}
}

func (e *CodeIndexError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Kind, e.Path, e.Err)
}

func (e *CodeIndexError) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind of err if it is (or wraps) a *CodeIndexError.
func KindOf(err error) (Kind, bool) {
	var cie *CodeIndexError
	if errors.As(err, &cie) {
		return cie.Kind, true
	}
	return "", false
}

// IsFatal reports whether err carries a Kind whose Fatal() is true.
func IsFatal(err error) bool {
	k, ok := KindOf(err)
	return ok && k.Fatal()
}
