package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidReference      = errors.New("invalid video reference")
	ErrMetadataUnavailable   = errors.New("video metadata unavailable")
	ErrExtractionFailure     = errors.New("article extraction failed")
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	ErrInvalidLevel          = errors.New("invalid CEFR level")
	ErrDuplicateContent      = errors.New("content already exists")
	ErrInvalidRecord         = errors.New("invalid content record")
	ErrNotFound              = errors.New("not found")
)

// FailureKind names a class of curation failure.
type FailureKind string

const (
	KindInvalidReference      FailureKind = "InvalidReference"
	KindMetadataUnavailable   FailureKind = "MetadataUnavailable"
	KindExtractionFailure     FailureKind = "ExtractionFailure"
	KindTranscriptUnavailable FailureKind = "TranscriptUnavailable"
	KindInvalidLevel          FailureKind = "InvalidLevel"
	KindDuplicateContent      FailureKind = "DuplicateContent"
	KindInternal              FailureKind = "Internal"
)

// Failure is the structured error reported to callers of the curation pipeline.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

// NewFailure classifies err and wraps it.
func NewFailure(err error) *Failure {
	return &Failure{Kind: KindOf(err), Message: err.Error(), Err: err}
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// KindOf maps an error onto its failure kind by walking the wrap chain.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	switch {
	case errors.Is(err, ErrInvalidReference):
		return KindInvalidReference
	case errors.Is(err, ErrMetadataUnavailable):
		return KindMetadataUnavailable
	case errors.Is(err, ErrExtractionFailure):
		return KindExtractionFailure
	case errors.Is(err, ErrTranscriptUnavailable):
		return KindTranscriptUnavailable
	case errors.Is(err, ErrInvalidLevel):
		return KindInvalidLevel
	case errors.Is(err, ErrDuplicateContent):
		return KindDuplicateContent
	default:
		return KindInternal
	}
}
