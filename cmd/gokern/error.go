package main

import (
	"errors"
)

var (
	// errUsage is an error that occurs when a command is invoked with wrong
	// arguments.
	errUsage = errors.New("usage")

	// errSyscall is an error that occurs when the kernel syscall surface
	// reports failure.
	errSyscall = errors.New("syscall failed")
)
