// SPDX-License-Identifier: Apache-2.0

package runtimeconfig

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	. "github.com/onsi/gomega"

	"github.com/lustre-hsm/ha-agent/internal/coordinator"
)

func TestWatcherStartsAtDefault(t *testing.T) {
	g := NewWithT(t)
	f := coordinator.NewFake()
	w := NewWatcher(f, "services/fs-OST0000/config", logr.Discard())
	g.Expect(w.Current()).To(Equal(Default))
}

func TestWatcherPublishesParsedValue(t *testing.T) {
	g := NewWithT(t)
	f := coordinator.NewFake()
	w := NewWatcher(f, "services/fs-OST0000/config", logr.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	f.Put("services/fs-OST0000/config", []byte("autostart: true\n"))

	g.Eventually(func() bool {
		return w.Current().Autostart
	}, time.Second, 5*time.Millisecond).Should(BeTrue())
}

func TestWatcherRetainsLastGoodOnParseFailure(t *testing.T) {
	g := NewWithT(t)
	f := coordinator.NewFake()
	w := NewWatcher(f, "services/fs-OST0000/config", logr.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	f.Put("services/fs-OST0000/config", []byte("autostart: true\n"))
	g.Eventually(func() bool { return w.Current().Autostart }, time.Second, 5*time.Millisecond).Should(BeTrue())

	f.Put("services/fs-OST0000/config", []byte(": not valid yaml : :\n"))
	time.Sleep(50 * time.Millisecond)
	g.Expect(w.Current().Autostart).To(BeTrue())
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	g := NewWithT(t)
	f := coordinator.NewFake()
	w := NewWatcher(f, "services/fs-OST0000/config", logr.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return after context cancel")
	}
	g.Expect(true).To(BeTrue())
}
