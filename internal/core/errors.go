// ABOUTME: Error taxonomy for ingestion and question answering
// ABOUTME: Typed errors are matched with errors.As, sentinels with errors.Is
package core

import (
	"errors"
	"fmt"
)

// NotFoundError reports a missing image or manifest file
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// ExtractionError reports model output with no recoverable caption record
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("caption extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("caption extraction failed: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ModelInvocationError reports a transport or model failure
type ModelInvocationError struct {
	Op  string
	Err error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ModelInvocationError) Unwrap() error { return e.Err }

// PreconditionError reports an operation called before its inputs exist
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return e.Reason }

var (
	// ErrIndexNotReady is returned by queries against an empty index
	ErrIndexNotReady = &PreconditionError{Reason: "index not loaded: ingest a caption manifest first"}
	// ErrEmptyQuestion is returned when the question is blank
	ErrEmptyQuestion = errors.New("question is required")
	// ErrInvalidK is returned when fewer than one result is requested
	ErrInvalidK = errors.New("k must be at least 1")
	// ErrIncompleteRecord is returned for manifest rows without image_id or caption
	ErrIncompleteRecord = errors.New("record is missing image_id or caption")
	// ErrQueryDimension is returned when a question embedding does not match the index dimension
	ErrQueryDimension = errors.New("question embedding dimension does not match the index")
	// ErrNoCaptioner is returned when the caption pass runs without a vision model
	ErrNoCaptioner = errors.New("no captioner configured")
)
