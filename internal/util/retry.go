// SPDX-License-Identifier: Apache-2.0

// Package util collects small retry and sleep helpers shared across the
// runtime config watcher, the agent state machine and the version check —
// anywhere an operation needs to be retried against a
// cancellable context with a fixed backoff.
package util

import (
	"context"
	"time"

	"github.com/go-logr/logr"
)

// RetryResult captures the result of a retriable operation.
type RetryResult[T any] struct {
	Value T
	Err   error
}

// Retry retries an operation fn up to numAttempts times with a given
// backOff until one of the following conditions is met:
// 1. Invocation of fn succeeds.
// 2. canRetry returns false for the latest error.
// 3. numAttempts have been exhausted.
// 4. ctx has either been cancelled or has expired.
func Retry[T any](ctx context.Context, logger logr.Logger, operation string, fn func() (T, error), numAttempts int, backOff time.Duration, canRetry func(error) bool) RetryResult[T] {
	var result T
	var err error
	for i := 1; i <= numAttempts; i++ {
		select {
		case <-ctx.Done():
			logger.Error(ctx.Err(), "context cancelled, stopping retry", "operation", operation)
			return RetryResult[T]{Err: ctx.Err()}
		default:
		}
		result, err = fn()
		if err == nil {
			return RetryResult[T]{Value: result, Err: err}
		}
		if !canRetry(err) {
			logger.Error(err, "exiting retry, canRetry returned false", "operation", operation, "exitOnAttempt", i)
			return RetryResult[T]{Err: err}
		}
		select {
		case <-ctx.Done():
			logger.Error(ctx.Err(), "context cancelled, stopping retry", "operation", operation)
			return RetryResult[T]{Err: ctx.Err()}
		case <-time.After(backOff):
			logger.Info("retrying operation", "operation", operation, "currentAttempt", i, "error", err)
		}
	}
	return RetryResult[T]{Value: result, Err: err}
}

// RetryOnError invokes retriableFn repeatedly, sleeping interval between
// attempts, until it returns nil or ctx is done. Used for operations, such
// as re-establishing a watch against the coordinator, that must eventually
// succeed with no bound on attempt count.
func RetryOnError(ctx context.Context, logger logr.Logger, operation string, retriableFn func() error, interval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("context cancelled, abandoning retry", "operation", operation)
			return
		default:
			err := retriableFn()
			if err != nil {
				logger.Error(err, "retrying operation", "operation", operation)
				time.Sleep(interval)
				continue
			}
			return
		}
	}
}

// AlwaysRetry is a canRetry function that never gives up.
func AlwaysRetry(_ error) bool {
	return true
}
