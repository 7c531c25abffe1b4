// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"fmt"

	"github.com/lustre-hsm/ha-agent/internal/topology"
	"github.com/lustre-hsm/ha-agent/internal/xec"
)

// MsgAlreadyMounted is the well-known stdout marker the management command
// prints when a service mount was a no-op.
const MsgAlreadyMounted = "MSG_ALREADY_MOUNTED"

// serviceTarget adapts a topology.Service to Supervisable, invoking
// "<mgr> service mount <name>" as its action.
type serviceTarget struct {
	namespace string
	mgrPath   string
	service   *topology.Service
}

// NewServiceTarget builds the Supervisable for a local service instance.
func NewServiceTarget(namespace, mgrPath string, service *topology.Service) Supervisable {
	return &serviceTarget{namespace: namespace, mgrPath: mgrPath, service: service}
}

func (s *serviceTarget) LockKey() string {
	return fmt.Sprintf("%s/services/%s/lock", s.namespace, s.service.Name)
}

func (s *serviceTarget) ConfigKey() string {
	return fmt.Sprintf("%s/services/%s/config", s.namespace, s.service.Name)
}

func (s *serviceTarget) RunAction(ctx context.Context) (string, string, int, error) {
	res, err := xec.Run(ctx, s.mgrPath, "service", "mount", s.service.Name)
	return res.Stdout, res.Stderr, res.ExitCode, err
}

func (s *serviceTarget) AlreadyOKMarker() string {
	return MsgAlreadyMounted
}

func (s *serviceTarget) DisplayName() string {
	return s.service.Name
}
