package core

import (
	"errors"
)

var (
	ErrAllocationFailed  = errors.New("gpu allocation failed")
	ErrCapabilityMissing = errors.New("required capability missing")
	ErrProgramNotLinked  = errors.New("program not linked")
	ErrInvalidViewport   = errors.New("invalid viewport")
	ErrInvalidProps      = errors.New("invalid renderer properties")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrDisposed          = errors.New("renderer disposed")
)
