// SPDX-License-Identifier: Apache-2.0

package runtimeconfig

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	yaml "gopkg.in/yaml.v2"

	"github.com/lustre-hsm/ha-agent/internal/coordinator"
	"github.com/lustre-hsm/ha-agent/internal/haerrors"
	"github.com/lustre-hsm/ha-agent/internal/util"
)

// watchRetryInterval is the backoff between WatchOnce attempts that return
// a transport error, mirroring the teacher's watch-recreation cadence.
const watchRetryInterval = 500 * time.Millisecond

// Watcher subscribes to one coordinator KV key and keeps the most recently
// observed RuntimeConfig available via Current, without ever blocking its
// caller. It is single-producer (the watch loop) / single-consumer (an
// agent's supervisory loop).
type Watcher struct {
	client  coordinator.Client
	key     string
	logger  logr.Logger
	current atomic.Pointer[RuntimeConfig]
}

// NewWatcher builds a Watcher for key. Current returns Default until the
// first successful delivery.
func NewWatcher(client coordinator.Client, key string, logger logr.Logger) *Watcher {
	w := &Watcher{client: client, key: key, logger: logger.WithValues("key", key)}
	w.current.Store(&Default)
	return w
}

// Current returns the most recently published RuntimeConfig. It never
// blocks.
func (w *Watcher) Current() RuntimeConfig {
	return *w.current.Load()
}

// Run drives the watch loop until ctx is done. On each delivery it parses
// the value as YAML and publishes it; on deletion it restores Default; on
// a parse failure it logs and retains whatever was previously published.
func (w *Watcher) Run(ctx context.Context) {
	var waitIndex uint64
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var result coordinator.WatchResult
		util.RetryOnError(ctx, w.logger, "watch runtime config", func() error {
			res, err := w.client.WatchOnce(ctx, w.key, waitIndex)
			if err != nil {
				return err
			}
			result = res
			return nil
		}, watchRetryInterval)

		select {
		case <-ctx.Done():
			return
		default:
		}

		waitIndex = result.Index
		w.apply(result)
	}
}

func (w *Watcher) apply(result coordinator.WatchResult) {
	if !result.Present {
		w.logger.V(1).Info("runtime config key deleted, reverting to default")
		def := Default
		w.current.Store(&def)
		return
	}

	var parsed RuntimeConfig
	if err := yaml.Unmarshal(result.Value, &parsed); err != nil {
		wrapped := haerrors.Wrap(err, haerrors.ParseConfig, "failed to parse runtime config")
		w.logger.Error(wrapped, "retaining previous value")
		return
	}
	w.current.Store(&parsed)
}
