// SPDX-License-Identifier: Apache-2.0

// Package supervisor builds every agent from a loaded topology, wires them
// to a shared cancellation signal, and waits for a clean shutdown.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/lustre-hsm/ha-agent/internal/agent"
	"github.com/lustre-hsm/ha-agent/internal/coordinator"
	"github.com/lustre-hsm/ha-agent/internal/haerrors"
	"github.com/lustre-hsm/ha-agent/internal/runtimeconfig"
	"github.com/lustre-hsm/ha-agent/internal/topology"
	"github.com/lustre-hsm/ha-agent/internal/versioncheck"
)

// Config carries every deployment-specific value the Supervisor needs,
// read once by main() from the environment and passed down as
// constructor parameters — never read again deeper in the call stack.
type Config struct {
	CoordinatorAddr string
	Namespace       string
	MgrPath         string
	WatchFanout     int
}

// Supervisor owns the full set of agents for this process: it loads the
// topology, builds a Loop per local service and per neighbour host, and
// drives them all to completion on shutdown.
type Supervisor struct {
	cfg    Config
	coord  coordinator.Client
	logger logr.Logger
	mgr    agent.Manager

	// hostnameOverride substitutes for os.Hostname in tests; production
	// code leaves it empty.
	hostnameOverride string
}

// New builds a Supervisor that will dial the coordinator at
// cfg.CoordinatorAddr.
func New(cfg Config, logger logr.Logger) (*Supervisor, error) {
	coord, err := coordinator.NewConsulClient(cfg.CoordinatorAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to build coordinator client: %w", err)
	}
	return newWithClient(cfg, coord, logger), nil
}

// newWithClient builds a Supervisor against an already-constructed
// coordinator client, letting tests substitute an in-memory fake.
func newWithClient(cfg Config, coord coordinator.Client, logger logr.Logger) *Supervisor {
	return &Supervisor{cfg: cfg, coord: coord, logger: logger, mgr: agent.NewManager()}
}

// Run loads the topology, builds every agent, installs the signal handler,
// and blocks until a shutdown signal has been handled and every agent has
// drained. It returns a non-nil error only for a FatalConfig failure that
// occurs before any agent is started.
func (s *Supervisor) Run(ctx context.Context) error {
	hostname := s.hostnameOverride
	if hostname == "" {
		h, err := os.Hostname()
		if err != nil {
			return haerrors.Wrap(err, haerrors.FatalConfig, "failed to determine local hostname")
		}
		hostname = h
	}

	loader := topology.NewConfigLoader(s.cfg.MgrPath, s.logger)
	top, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	localServices := topology.LocalServices(top, hostname)
	neighbours, err := topology.NeighbourHosts(top, hostname, s.cfg.WatchFanout)
	if err != nil {
		return err
	}

	s.logger.Info("topology resolved",
		"hostname", hostname,
		"localServices", len(localServices),
		"neighbourHosts", len(neighbours))

	for i := range localServices {
		s.registerServiceLoop(&localServices[i])
	}
	for _, h := range neighbours {
		s.registerHostLoop(h)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		versioncheck.Run(runCtx, s.cfg.MgrPath, s.logger)
	}()

	for _, loop := range s.mgr.All() {
		wg.Add(1)
		go loop.Run(runCtx, &wg)
	}

	stopCh := setupSignalHandler()
	select {
	case <-stopCh:
		s.logger.Info("shutdown signal received, cancelling all agents")
	case <-ctx.Done():
		s.logger.Info("parent context cancelled, cancelling all agents")
	}
	cancel()
	wg.Wait()
	s.logger.Info("all agents drained, exiting")
	return nil
}

func (s *Supervisor) registerServiceLoop(inst *topology.ServiceInstance) {
	target := agent.NewServiceTarget(s.cfg.Namespace, s.cfg.MgrPath, inst.Service)
	s.register(target)
}

func (s *Supervisor) registerHostLoop(host topology.SSHHost) {
	target := agent.NewHostTarget(s.cfg.Namespace, s.cfg.MgrPath, host)
	s.register(target)
}

func (s *Supervisor) register(target agent.Supervisable) {
	watcher := runtimeconfig.NewWatcher(s.coord, target.ConfigKey(), s.logger)
	loop := agent.NewLoop(target, s.coord, watcher, uuid.NewString(), s.logger)
	if !s.mgr.Register(loop) {
		s.logger.Info("target already registered, skipping duplicate", "target", target.DisplayName())
	}
}
