// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable means candidates or ballots could not be fetched.
	// No partial result is produced.
	ErrDataUnavailable = errors.New("results unavailable")

	// ErrSuperseded is returned by Live.Refresh when a newer refresh started
	// before this one finished.
	ErrSuperseded = errors.New("tally superseded by newer refresh")
)

// MalformedBallotError reports a physical ballot record whose payload could
// not be decoded. It is recovered per record and never aborts a tally.
type MalformedBallotError struct {
	RecordID string
	Err      error
}

func (e *MalformedBallotError) Error() string {
	return fmt.Sprintf("malformed physical ballot %s: %v", e.RecordID, e.Err)
}

func (e *MalformedBallotError) Unwrap() error {
	return e.Err
}
