package sitebuild

import (
	"errors"
	"fmt"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrNotSupported = errors.New("step not supported")
)

// StepError reports which step of which task aborted a run.
type StepError struct {
	Task  TaskID
	Index int
	Step  Step
	Err   error
}

// ExitError is returned when an external command exits non-zero.
type ExitError struct {
	Name   string
	Code   int
	Stderr []byte
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s %d %s] failed", e.Task, e.Index+1, e.Step)
	}

	return fmt.Sprintf("[%s %d %s] failed: %s", e.Task, e.Index+1, e.Step, e.Err.Error())
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command '%s' exited with code %d", e.Name, e.Code)
}
