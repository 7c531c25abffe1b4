// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	onlyOneSignalHandler = sync.Once{}
	shutdownSignals      = []os.Signal{os.Interrupt, syscall.SIGTERM}
)

// setupSignalHandler returns a channel that is closed exactly once, on the
// first SIGINT or SIGTERM. A second such signal terminates the process
// immediately with exit code 1, in case graceful shutdown has hung.
// Calling this twice panics, mirroring the single-signal-handler invariant
// every binary in this lineage relies on.
func setupSignalHandler() <-chan struct{} {
	calledTwice := true
	onlyOneSignalHandler.Do(func() { calledTwice = false })
	if calledTwice {
		panic("setupSignalHandler called twice")
	}

	stop := make(chan struct{})
	c := make(chan os.Signal, 2)
	signal.Notify(c, shutdownSignals...)
	go func() {
		<-c
		close(stop)
		<-c
		os.Exit(1)
	}()
	return stop
}
