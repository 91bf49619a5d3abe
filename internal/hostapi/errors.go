package hostapi

import "errors"

var (
	// ErrInvalidCallback is returned when a command callback is not a function.
	ErrInvalidCallback = errors.New("command callback is not invocable")
	// ErrNoWorkspace is returned by file operations when no workspace is open.
	ErrNoWorkspace = errors.New("no workspace is open")
	// ErrFileNotFound is returned when a resource does not resolve to a file.
	ErrFileNotFound = errors.New("file not found")
	// ErrDisposed is returned by operations on a disposed emulator.
	ErrDisposed = errors.New("extension host context disposed")
)
