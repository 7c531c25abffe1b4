// SPDX-License-Identifier: Apache-2.0

package coordinator

import (
	"context"
	"fmt"
	"time"

	consulapi "github.com/hashicorp/consul/api"

	"github.com/lustre-hsm/ha-agent/internal/haerrors"
)

// watchWaitTime bounds a single blocking-query poll so WatchOnce always
// returns in finite time and can re-check ctx/cancellation between polls.
const watchWaitTime = 5 * time.Minute

// consulClient is the Client implementation backed by
// github.com/hashicorp/consul/api.
type consulClient struct {
	api *consulapi.Client
}

// NewConsulClient dials the coordinator agent at addr.
func NewConsulClient(addr string) (Client, error) {
	cfg := consulapi.DefaultConfig()
	cfg.Address = addr
	c, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build consul client for %s: %w", addr, err)
	}
	return &consulClient{api: c}, nil
}

func (c *consulClient) NewSession(ctx context.Context, ttl time.Duration) (string, error) {
	entry := &consulapi.SessionEntry{
		TTL:      ttl.String(),
		Behavior: consulapi.SessionBehaviorRelease,
	}
	id, _, err := c.api.Session().Create(entry, nil)
	if err != nil {
		return "", haerrors.Wrap(err, haerrors.TransientCoordinator, "failed to create coordinator session")
	}

	doneCh := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(doneCh)
	}()
	go func() {
		// RenewPeriodic blocks until doneCh closes or the session is lost;
		// errors are swallowed here because session loss surfaces to
		// callers via the lock's lost channel, not via this goroutine.
		_ = c.api.Session().RenewPeriodic(ttl.String(), id, nil, doneCh)
	}()

	return id, nil
}

func (c *consulClient) AcquireLock(ctx context.Context, key, sessionID, value string) (<-chan struct{}, error) {
	lock, err := c.api.LockOpts(&consulapi.LockOpts{
		Key:     key,
		Value:   []byte(value),
		Session: sessionID,
	})
	if err != nil {
		return nil, haerrors.Wrap(err, haerrors.TransientCoordinator, "failed to build lock handle")
	}

	stopCh := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(stopCh)
	}()

	lost, err := lock.Lock(stopCh)
	if err != nil {
		return nil, haerrors.Wrap(err, haerrors.TransientCoordinator, "failed to acquire lock")
	}
	if lost == nil {
		// ctx was cancelled before the lock was acquired.
		return nil, haerrors.Wrap(ctx.Err(), haerrors.Cancelled, "lock acquisition cancelled")
	}
	return lost, nil
}

func (c *consulClient) ReleaseLock(_ context.Context, key, sessionID string) error {
	lock, err := c.api.LockOpts(&consulapi.LockOpts{Key: key, Session: sessionID})
	if err != nil {
		return haerrors.Wrap(err, haerrors.TransientCoordinator, "failed to build lock handle for release")
	}
	if err := lock.Unlock(); err != nil {
		return haerrors.Wrap(err, haerrors.TransientCoordinator, "failed to release lock")
	}
	return nil
}

func (c *consulClient) GetConsistent(ctx context.Context, key string) (KVPair, error) {
	pair, _, err := c.api.KV().Get(key, (&consulapi.QueryOptions{RequireConsistent: true}).WithContext(ctx))
	if err != nil {
		return KVPair{}, haerrors.Wrap(err, haerrors.TransientCoordinator, "consistent KV read failed")
	}
	if pair == nil {
		return KVPair{}, nil
	}
	return KVPair{Value: pair.Value, HoldingSession: pair.Session}, nil
}

func (c *consulClient) WatchOnce(ctx context.Context, key string, waitIndex uint64) (WatchResult, error) {
	opts := (&consulapi.QueryOptions{WaitIndex: waitIndex, WaitTime: watchWaitTime}).WithContext(ctx)
	pair, meta, err := c.api.KV().Get(key, opts)
	if err != nil {
		return WatchResult{}, haerrors.Wrap(err, haerrors.TransientCoordinator, "watch poll failed")
	}
	if pair == nil {
		return WatchResult{Present: false, Index: meta.LastIndex}, nil
	}
	return WatchResult{Value: pair.Value, Present: true, Index: meta.LastIndex}, nil
}
