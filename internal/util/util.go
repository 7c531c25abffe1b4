// SPDX-License-Identifier: Apache-2.0

package util

import (
	"context"
	"time"
)

// SleepWithContext sleeps until sleepFor has elapsed or ctx is done,
// whichever happens first.
func SleepWithContext(ctx context.Context, sleepFor time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepFor):
			return nil
		}
	}
}
