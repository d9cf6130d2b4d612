package common

import "errors"

// Sentinel errors shared by the staging, upload and transport layers. Match
// them with errors.Is.
var (
	// Lookup errors.
	ErrorNotFound = errors.New("not found")

	// Lifecycle errors.
	ErrorDisposed = errors.New("use after dispose")
	ErrorClosed   = errors.New("closed")

	// Flow-control errors.
	ErrorAborted = errors.New("aborted")
)
