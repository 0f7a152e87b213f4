package apperr

import (
	"fmt"
	"strings"
)

// SchemaError reports a malformed task list or an answer that violates the
// active question schema. Fatal to starting or continuing a submission.
type SchemaError struct {
	Message string
	Err     error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func NewSchema(msg string) *SchemaError {
	return &SchemaError{Message: msg}
}

func NewSchemaWrap(msg string, err error) *SchemaError {
	return &SchemaError{Message: msg, Err: err}
}

// ResourceNotFoundError reports an image reference that could not be resolved,
// naming the missing item. Surfaced only when the item is reached.
type ResourceNotFoundError struct {
	Name string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("image %q not found", e.Name)
}

// EmptyTaskListError reports an attempt to start a session with no items.
type EmptyTaskListError struct{}

func (e *EmptyTaskListError) Error() string {
	return "task list is empty"
}

// CorruptStoreError reports a persisted store artifact that exists but cannot
// be parsed. A missing artifact is not corrupt; it reads as empty.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("store %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error {
	return e.Err
}

// IncompleteSubmissionError reports, in strict mode, the questions a
// submission left at their default value.
type IncompleteSubmissionError struct {
	Missing []string
}

func (e *IncompleteSubmissionError) Error() string {
	return fmt.Sprintf("submission left %d question(s) unanswered: %s",
		len(e.Missing), strings.Join(e.Missing, "; "))
}
