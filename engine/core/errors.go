package core

import (
	"errors"
)

var (
	ErrMissingEnvironment = errors.New("required environment variable is not set")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrCompileFailed      = errors.New("shader compilation failed")
)
