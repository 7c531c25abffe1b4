// SPDX-License-Identifier: Apache-2.0

// Package agent drives the leader-election-and-maintain state machine
// shared by every service and host under this agent's care. ServiceAgent
// and HostAgent are thin constructors that each build a Supervisable and
// hand it to the single Loop driver in this package, instead of
// duplicating the state machine per kind.
package agent

import "context"

// Supervisable is everything the state machine driver needs from either a
// storage service or a storage host: where its lock and config live in the
// coordinator's KV namespace, how to perform its maintain action, and how
// to recognize that the action was a no-op.
type Supervisable interface {
	// LockKey is the coordinator KV path of this target's leadership lock.
	LockKey() string
	// ConfigKey is the coordinator KV path of this target's runtime config.
	ConfigKey() string
	// RunAction invokes the external management command that mounts a
	// service or starts a host, returning its captured output.
	RunAction(ctx context.Context) (stdout, stderr string, exitCode int, err error)
	// AlreadyOKMarker is the stdout value that indicates RunAction found
	// the target already in its desired state.
	AlreadyOKMarker() string
	// DisplayName is used in log records and as the registry key.
	DisplayName() string
}
