// SPDX-License-Identifier: Apache-2.0

package versioncheck

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	. "github.com/onsi/gomega"
)

func TestRunReturnsPromptlyOnCancel(t *testing.T) {
	g := NewWithT(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		Run(ctx, "/bin/echo", logr.Discard())
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected Run to return promptly after cancellation")
	}
	g.Expect(true).To(BeTrue())
}

func TestInvokeLogsStdoutAndStderr(t *testing.T) {
	invoke(context.Background(), "sh", logr.Discard())
}
