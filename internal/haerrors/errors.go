// SPDX-License-Identifier: Apache-2.0

// Package haerrors defines the error taxonomy shared by every component of
// the high-availability service agent.
package haerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error by which retry/termination policy applies to it.
type Code string

const (
	// FatalConfig means the topology could not be loaded or is structurally
	// invalid. The process must exit before any agent is started.
	FatalConfig Code = "FATAL_CONFIG"
	// TransientCoordinator means a coordinator call failed for a transport
	// or session-expiry reason. The caller retries with its own backoff.
	TransientCoordinator Code = "TRANSIENT_COORDINATOR"
	// TransientChild means the mount/start command exited non-zero. The
	// owning agent will retry on its next tick.
	TransientChild Code = "TRANSIENT_CHILD"
	// ParseConfig means a watched RuntimeConfig key held a value that did
	// not parse as YAML. The previous value is retained.
	ParseConfig Code = "PARSE_CONFIG"
	// Cancelled means the shared cancellation signal fired while the
	// operation was in flight.
	Cancelled Code = "CANCELLED"
)

// AgentError is the error type produced across the agent lifecycle. It
// carries a Code so callers can branch on retry policy without parsing
// strings, plus the underlying Cause for logging.
type AgentError struct {
	Code    Code
	Cause   error
	Message string
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap allows errors.Is/errors.As to see through to Cause.
func (e *AgentError) Unwrap() error {
	return e.Cause
}

// Wrap attaches a Code and Message to an existing error. Returns nil if err
// is nil so call sites can Wrap(someFn()) unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &AgentError{Code: code, Cause: err, Message: message}
}

// IsCode reports whether err, or any error it wraps, is an *AgentError
// carrying the given code.
func IsCode(err error, code Code) bool {
	var ae *AgentError
	return errors.As(err, &ae) && ae.Code == code
}
