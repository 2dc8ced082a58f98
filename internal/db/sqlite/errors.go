package sqlite

import "fmt"

// Error represents a failed SQLite store operation.
type Error struct {
	Op     string // Operation that failed
	Err    error  // Underlying error
	TaskID string // Optional: task ID if relevant
	UserID string // Optional: user ID if relevant
}

func (e *Error) Error() string {
	switch {
	case e.TaskID != "":
		return fmt.Sprintf("sqlite %s failed for task %s: %v", e.Op, e.TaskID, e.Err)
	case e.UserID != "":
		return fmt.Sprintf("sqlite %s failed for user %s: %v", e.Op, e.UserID, e.Err)
	}
	return fmt.Sprintf("sqlite %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
