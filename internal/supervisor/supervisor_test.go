// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	. "github.com/onsi/gomega"

	"github.com/lustre-hsm/ha-agent/internal/coordinator"
)

// TestSupervisorRunLoadsTopologyAndDrainsOnCancel is the package's only
// test that calls Run: the process-wide signal handler may only be
// installed once, so every assertion this package makes about startup and
// shutdown lives in this single end-to-end pass.
func TestSupervisorRunLoadsTopologyAndDrainsOnCancel(t *testing.T) {
	g := NewWithT(t)

	cfg := Config{
		CoordinatorAddr: "127.0.0.1:8500",
		Namespace:       "lustre-ha",
		MgrPath:         "./testdata/fake_mgr.sh",
		WatchFanout:     3,
	}
	s := newWithClient(cfg, coordinator.NewFake(), logr.Discard())
	s.hostnameOverride = "localtesthost"

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	// Give topology load and agent registration time to complete before
	// triggering shutdown.
	time.Sleep(100 * time.Millisecond)
	g.Expect(s.mgr.All()).To(HaveLen(2)) // one local OST service + one neighbour host

	cancel()

	select {
	case err := <-done:
		g.Expect(err).To(BeNil())
	case <-time.After(2 * time.Second):
		t.Fatal("expected Run to return after context cancellation")
	}
}
