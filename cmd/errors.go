package cmd

import "fmt"

// ExitError carries a process exit code. Its message has already been shown
// to the user when Silent is set.
type ExitError struct {
	Code   int
	Msg    string
	Silent bool
}

func (e *ExitError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// validationFailed returns the exit error used for rejected selections.
func validationFailed(msg string) *ExitError {
	return &ExitError{Code: 1, Msg: msg, Silent: true}
}
