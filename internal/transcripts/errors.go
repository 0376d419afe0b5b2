package transcripts

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when no analysis has the requested id.
var ErrNotFound = errors.New("analysis not found")

// AnalysisError wraps any non-LLM failure raised while analyzing a transcript.
type AnalysisError struct {
	Message string
	Err     error
}

func newAnalysisError(cause error) *AnalysisError {
	return &AnalysisError{
		Message: fmt.Sprintf("failed to analyze transcript: %v", cause),
		Err:     cause,
	}
}

func (e *AnalysisError) Error() string { return e.Message }

func (e *AnalysisError) Unwrap() error { return e.Err }

// RepositoryError reports a storage failure.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// NotFoundError is returned by Service.Get when the id is unknown.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Analysis with ID '%s' not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
