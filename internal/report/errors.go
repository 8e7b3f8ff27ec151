package report

import (
	"errors"
	"fmt"
)

var ErrInvalidTaskData = errors.New("invalid task data")

// InvalidTaskDataError reports a snapshot carrying a status or priority
// outside the known sets. Report generation stops at the first one.
type InvalidTaskDataError struct {
	TaskID string
	Field  string
	Value  string
}

func (e *InvalidTaskDataError) Error() string {
	return fmt.Sprintf("task %q: unknown %s %q", e.TaskID, e.Field, e.Value)
}

func (e *InvalidTaskDataError) Unwrap() error {
	return ErrInvalidTaskData
}

func validateTask(t TaskSnapshot) error {
	if !t.Status.Valid() {
		return &InvalidTaskDataError{TaskID: t.ID, Field: "status", Value: string(t.Status)}
	}
	if !t.Priority.Valid() {
		return &InvalidTaskDataError{TaskID: t.ID, Field: "priority", Value: string(t.Priority)}
	}
	return nil
}
