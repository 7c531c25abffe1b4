// SPDX-License-Identifier: Apache-2.0

// Package stagger provides random jitter helpers used to spread periodic
// work (the daily version check) across the cluster instead of having
// every node wake up at the same instant.
package stagger

import (
	"math/rand"
	"time"
)

// Random is the source RandomStagger draws from. It is a package-level
// indirection so tests can substitute a deterministic source.
var Random = rand.New(rand.NewSource(time.Now().UnixNano()))

// RandomStagger returns a duration drawn uniformly from [0, d). It returns
// zero for a non-positive d instead of panicking on rand.Int63n.
func RandomStagger(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(Random.Int63n(int64(d)))
}

// RandomStaggerQuarter returns a duration drawn uniformly from
// [0.75*d, 1.25*d), so its expected value is d. Used for the daily
// version-check interval, where we want to avoid a thundering herd without
// drifting the long-run cadence.
func RandomStaggerQuarter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	base := d/4*3
	half := d / 2
	return base + RandomStagger(half)
}
