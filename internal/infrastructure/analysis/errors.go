package analysis

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProcessFailed is matched by every *ProcessError.
	ErrProcessFailed = errors.New("analysis process failed")
	// ErrTimeout means the script exceeded its budget and was killed.
	ErrTimeout = errors.New("analysis timed out")
	// ErrParse means stdout held no decodable JSON object.
	ErrParse = errors.New("analysis output could not be parsed")
	// ErrBusy means no worker slot freed up within the queue timeout.
	ErrBusy = errors.New("analysis capacity exhausted")
)

// ProcessError describes a script that exited non-zero or failed to start.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if detail := e.Detail(); detail != "" {
		return fmt.Sprintf("%s (exit %d): %s", ErrProcessFailed, e.ExitCode, detail)
	}
	return fmt.Sprintf("%s (exit %d)", ErrProcessFailed, e.ExitCode)
}

// Detail returns the captured stderr, or the spawn error when stderr is empty.
func (e *ProcessError) Detail() string {
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		return stderr
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

func (e *ProcessError) Is(target error) bool {
	return target == ErrProcessFailed
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}
