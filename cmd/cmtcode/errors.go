package main

import (
	"errors"
	"fmt"
)

// exitError carries a process exit code. A silent exitError means the
// diagnostics were already printed and there is nothing more to say.
type exitError struct {
	code   int
	silent bool
	err    error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func silentExit(code int) error {
	return &exitError{code: code, silent: true}
}

func exitCodeOf(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

func errInvalidFlag(name, value, allowed string) error {
	return fmt.Errorf("invalid --%s value %q (expected %s)", name, value, allowed)
}
