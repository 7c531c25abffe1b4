// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/lustre-hsm/ha-agent/internal/coordinator"
	"github.com/lustre-hsm/ha-agent/internal/haerrors"
	"github.com/lustre-hsm/ha-agent/internal/runtimeconfig"
	"github.com/lustre-hsm/ha-agent/internal/util"
	"github.com/lustre-hsm/ha-agent/internal/xec"
)

// Status is the last observed outcome of a maintain-loop action.
type Status string

const (
	StatusUnknown Status = "Unknown"
	StatusOK      Status = "OK"
	StatusFailed  Status = "Failed"
)

// lockReadRetryInterval is the one-second-per-attempt cadence for the
// resolve-leader KV read.
const lockReadRetryInterval = time.Second

// Loop drives the INIT -> RESOLVE -> ACQUIRING -> LEADING -> RELEASING ->
// TERMINATED state machine for one Supervisable, whether that is a service
// or a host. There is exactly one implementation of this state machine in
// the repository; ServiceAgent and HostAgent differ only in which
// Supervisable they construct.
type Loop struct {
	target     Supervisable
	coord      coordinator.Client
	watcher    *runtimeconfig.Watcher
	lockValue  string
	logger     logr.Logger
	sessionTTL time.Duration

	status Status
}

// NewLoop builds a Loop for target. lockValue is this agent's identity
// (typically a UUID) used as the lock's value.
func NewLoop(target Supervisable, coord coordinator.Client, watcher *runtimeconfig.Watcher, lockValue string, logger logr.Logger) *Loop {
	return &Loop{
		target:     target,
		coord:      coord,
		watcher:    watcher,
		lockValue:  lockValue,
		logger:     logger.WithValues("target", target.DisplayName()),
		sessionTTL: coordinator.SessionTTL,
		status:     StatusUnknown,
	}
}

// Run executes the state machine until ctx is cancelled. It signals wg.Done
// once the loop has released any held lock and returned.
func (l *Loop) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	go l.watcher.Run(ctx)

	var sessionID string
	for {
		id, err := l.coord.NewSession(ctx, l.sessionTTL)
		if err == nil {
			sessionID = id
			break
		}
		l.logger.Error(err, "failed to open coordinator session, will retry")
		select {
		case <-ctx.Done():
			return
		case <-time.After(l.sessionTTL):
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		held, _ := l.resolveLeader(ctx)
		l.logger.V(1).Info("resolved current lock state", "heldByOther", held)

		lost, err := l.acquireLock(ctx, sessionID)
		if err != nil {
			// Cancelled while acquiring; nothing was acquired, nothing to release.
			return
		}

		l.logger.Info("acquired lock, now leading")
		l.maintainLoop(ctx, lost)

		select {
		case <-ctx.Done():
			_ = l.coord.ReleaseLock(context.Background(), l.target.LockKey(), sessionID)
			l.logger.Info("released lock on shutdown")
			return
		default:
			_ = l.coord.ReleaseLock(context.Background(), l.target.LockKey(), sessionID)
			l.logger.Info("lost leadership, releasing and re-resolving")
		}
	}
}

// resolveLeader performs the observational consistent read described in
// the design notes: its result is logged but never gates whether Lock is
// subsequently attempted.
func (l *Loop) resolveLeader(ctx context.Context) (held bool, value string) {
	result := util.Retry(ctx, l.logger, "resolve leader", func() (coordinator.KVPair, error) {
		return l.coord.GetConsistent(ctx, l.target.LockKey())
	}, 10, lockReadRetryInterval, util.AlwaysRetry)

	if result.Err != nil {
		return false, ""
	}
	return result.Value.HoldingSession != "", string(result.Value.Value)
}

// acquireLock blocks until the lock is acquired or ctx is cancelled,
// retrying transient coordinator errors at the session TTL cadence.
func (l *Loop) acquireLock(ctx context.Context, sessionID string) (<-chan struct{}, error) {
	var lost <-chan struct{}
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		result, err := l.coord.AcquireLock(ctx, l.target.LockKey(), sessionID, l.lockValue)
		if err == nil {
			lost = result
			return lost, nil
		}
		l.logger.Error(err, "failed to acquire lock, will retry")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.sessionTTL):
		}
	}
}

// maintainLoop runs while this agent holds the lock, invoking the
// management action once per session TTL tick as long as autostart is
// enabled, until the lock is lost or ctx is cancelled.
func (l *Loop) maintainLoop(ctx context.Context, lost <-chan struct{}) {
	ticker := time.NewTicker(l.sessionTTL)
	defer ticker.Stop()

	prevAutostart := l.watcher.Current().Autostart
	for {
		select {
		case <-ctx.Done():
			return
		case <-lost:
			return
		case <-ticker.C:
			cfg := l.watcher.Current()
			if cfg.Autostart != prevAutostart {
				l.logger.Info("autostart setting changed", "autostart", cfg.Autostart)
				prevAutostart = cfg.Autostart
			}
			if !cfg.Autostart {
				continue
			}
			l.runOnce(ctx)
		}
	}
}

func (l *Loop) runOnce(ctx context.Context) {
	start := time.Now()
	stdout, stderr, exitCode, err := l.target.RunAction(ctx)
	duration := time.Since(start)
	if err != nil {
		l.logger.Error(err, "failed to invoke management command")
		return
	}

	newStatus := StatusOK
	if exitCode != 0 {
		newStatus = StatusFailed
	}

	if newStatus != l.status {
		if newStatus == StatusFailed {
			childErr := haerrors.Wrap(fmt.Errorf("exit code %d", exitCode), haerrors.TransientChild,
				"management command reported a non-zero exit")
			l.logger.Error(childErr, "status changed",
				"from", l.status, "to", newStatus,
				"stdout", xec.EscapeNewlines(stdout),
				"stderr", xec.EscapeNewlines(stderr),
				"durationSeconds", duration.Seconds())
		} else {
			l.logger.Info("status changed",
				"from", l.status, "to", newStatus,
				"exitCode", exitCode,
				"stdout", xec.EscapeNewlines(stdout),
				"stderr", xec.EscapeNewlines(stderr),
				"durationSeconds", duration.Seconds())
		}
	} else if newStatus == StatusOK && l.status == StatusOK && stdout != l.target.AlreadyOKMarker() {
		l.logger.Info("target was mounted/started outside this agent's control",
			"stdout", xec.EscapeNewlines(stdout))
	}

	l.status = newStatus
}
