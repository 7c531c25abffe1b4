// SPDX-License-Identifier: Apache-2.0

// Package coordinator hides the external distributed lock/KV/session store
// behind a five-method facade, so the rest of the core never imports the
// coordinator's client library directly.
package coordinator

import (
	"context"
	"time"
)

// SessionTTL is the fixed lease duration used for every session this agent
// opens, per the specification's SESSION_TTL constant.
const SessionTTL = 10 * time.Second

// KVPair is a consistently-read key/value pair, together with the session
// currently holding it (empty if unheld).
type KVPair struct {
	Value        []byte
	HoldingSession string
}

// WatchResult is one delivery from a long-polled key watch: either a
// changed value (Present true) or a deletion (Present false).
type WatchResult struct {
	Value   []byte
	Present bool
	Index   uint64
}

// Client is the capability surface every agent needs from the external
// coordinator: sessions, an advisory lock, a consistent KV read, and a
// blocking-query watch. Implementations do not retry: a transport or
// session failure is returned at once as a haerrors.TransientCoordinator
// error, and a cancelled ctx as an error, so each caller applies its own
// retry and backoff.
type Client interface {
	// NewSession opens a session with the given TTL and starts renewing it
	// in the background for as long as ctx is alive. It returns the
	// session ID.
	NewSession(ctx context.Context, ttl time.Duration) (string, error)

	// AcquireLock blocks until the lock at key is acquired under
	// sessionID with the given value, or until ctx is done. On success it
	// returns a channel that closes when the lock is subsequently lost
	// (session expiry, explicit release by another holder, etc).
	AcquireLock(ctx context.Context, key, sessionID, value string) (lost <-chan struct{}, err error)

	// ReleaseLock releases a previously acquired lock. It is safe to call
	// even if the lock was already lost.
	ReleaseLock(ctx context.Context, key, sessionID string) error

	// GetConsistent performs a strongly consistent read of key. A missing
	// key is reported as KVPair{} with no error.
	GetConsistent(ctx context.Context, key string) (KVPair, error)

	// WatchOnce performs a single blocking-query poll for key, waiting
	// past waitIndex for a new value. Callers loop, passing the returned
	// Index back in as the next waitIndex, to maintain a long-lived watch.
	WatchOnce(ctx context.Context, key string, waitIndex uint64) (WatchResult, error)
}
