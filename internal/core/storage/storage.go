// Package storage defines error sentinels shared by the file-backed stores.
package storage

import "errors"

// Sentinel errors for persistence. Read failures are treated as empty
// state by callers; write failures are surfaced as non-fatal warnings
// while in-memory state stays authoritative.
var (
	ErrRead  = errors.New("storage read failed")
	ErrWrite = errors.New("storage write failed")
)
