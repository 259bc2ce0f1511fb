package client

import "errors"

var (
	// ErrDaemonNotRunning is returned when the monitor daemon socket is absent.
	ErrDaemonNotRunning = errors.New("monitor daemon not running")

	// ErrPermissionDenied is returned when the socket is not accessible.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when the daemon answers 404.
	ErrNotFound = errors.New("404 not found")
)
