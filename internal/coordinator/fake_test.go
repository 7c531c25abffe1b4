// SPDX-License-Identifier: Apache-2.0

package coordinator

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestFakeImplementsClient(t *testing.T) {
	var _ Client = NewFake()
}

func TestFakeLockRoundTrip(t *testing.T) {
	g := NewWithT(t)
	f := NewFake()
	ctx := context.Background()

	sessionA, err := f.NewSession(ctx, SessionTTL)
	g.Expect(err).To(BeNil())

	lost, err := f.AcquireLock(ctx, "services/fs-OST0000/lock", sessionA, "uuid-a")
	g.Expect(err).To(BeNil())
	g.Expect(lost).ToNot(BeNil())

	pair, err := f.GetConsistent(ctx, "services/fs-OST0000/lock")
	g.Expect(err).To(BeNil())
	g.Expect(pair.HoldingSession).To(Equal(sessionA))

	g.Expect(f.ReleaseLock(ctx, "services/fs-OST0000/lock", sessionA)).To(Succeed())

	select {
	case <-lost:
	case <-time.After(time.Second):
		t.Fatal("expected lost channel to close after release")
	}

	pair, err = f.GetConsistent(ctx, "services/fs-OST0000/lock")
	g.Expect(err).To(BeNil())
	g.Expect(pair.HoldingSession).To(Equal(""))
}

func TestFakeExpireLockNotifiesHolder(t *testing.T) {
	g := NewWithT(t)
	f := NewFake()
	ctx := context.Background()

	sessionA, _ := f.NewSession(ctx, SessionTTL)
	lost, err := f.AcquireLock(ctx, "hosts/gamma/lock", sessionA, "uuid-a")
	g.Expect(err).To(BeNil())

	f.ExpireLock("hosts/gamma/lock")

	select {
	case <-lost:
	case <-time.After(time.Second):
		t.Fatal("expected lost channel to close after expiry")
	}
}

func TestFakeWatchOnceDeliversSubsequentPut(t *testing.T) {
	g := NewWithT(t)
	f := NewFake()
	ctx := context.Background()

	resultCh := make(chan WatchResult, 1)
	go func() {
		res, err := f.WatchOnce(ctx, "services/fs-OST0000/config", 0)
		g.Expect(err).To(BeNil())
		resultCh <- res
	}()

	time.Sleep(10 * time.Millisecond)
	f.Put("services/fs-OST0000/config", []byte("autostart: true\n"))

	select {
	case res := <-resultCh:
		g.Expect(res.Present).To(BeTrue())
		g.Expect(string(res.Value)).To(Equal("autostart: true\n"))
	case <-time.After(time.Second):
		t.Fatal("expected WatchOnce to return after Put")
	}
}

func TestFakeWatchOnceCancelled(t *testing.T) {
	g := NewWithT(t)
	f := NewFake()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.WatchOnce(ctx, "services/fs-OST0000/config", 0)
	g.Expect(err).ToNot(BeNil())
}
