package cmd

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/contentbuild/engine/core"
)

// ExitCode is the process exit status.
type ExitCode int

const (
	ExitOK ExitCode = iota
	ExitFailure
	ExitConfig
	ExitCompile
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code ExitCode
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitError picks the exit code for err.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	code := ExitFailure
	switch {
	case errors.Is(err, core.ErrMissingEnvironment), errors.Is(err, core.ErrInvalidConfig):
		code = ExitConfig
	case errors.Is(err, core.ErrCompileFailed):
		code = ExitCompile
	}
	return &ExitError{Code: code, Err: err}
}

// ExitCodeOf returns the code the process exits with for err.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(exitError(err), &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
