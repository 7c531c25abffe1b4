// SPDX-License-Identifier: Apache-2.0

// Package versioncheck runs the management command's informational
// version-check subcommand on a jittered daily cadence.
package versioncheck

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"

	"github.com/lustre-hsm/ha-agent/internal/stagger"
	"github.com/lustre-hsm/ha-agent/internal/util"
	"github.com/lustre-hsm/ha-agent/internal/xec"
)

// interval is the nominal cadence; RandomStaggerQuarter spreads actual
// invocations across [0.75*interval, 1.25*interval).
const interval = 24 * time.Hour

// initialDelayBound is the uniform upper bound on the very first
// invocation's startup delay.
const initialDelayBound = 30 * time.Second

// Run sleeps a uniform random delay in [0, 30s), invokes
// "<mgr> version_check --no_log_prefix", logs its output, and repeats
// every RandomStaggerQuarter(24h) until ctx is done.
func Run(ctx context.Context, mgrPath string, logger logr.Logger) {
	logger = logger.WithName("version-check")
	if err := util.SleepWithContext(ctx, stagger.RandomStagger(initialDelayBound)); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		invoke(ctx, mgrPath, logger)

		if err := util.SleepWithContext(ctx, stagger.RandomStaggerQuarter(interval)); err != nil {
			return
		}
	}
}

func invoke(ctx context.Context, mgrPath string, logger logr.Logger) {
	res, err := xec.Run(ctx, mgrPath, "version_check", "--no_log_prefix")
	if err != nil {
		logger.Error(err, "failed to invoke version_check")
		return
	}
	if res.Stdout != "" {
		logger.Info("version check output", "stdout", xec.EscapeNewlines(res.Stdout))
	}
	if res.Stderr != "" {
		logger.Error(errors.New("version_check wrote to stderr"), "version check reported errors", "stderr", xec.EscapeNewlines(res.Stderr))
	}
}
