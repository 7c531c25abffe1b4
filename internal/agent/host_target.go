// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"fmt"

	"github.com/lustre-hsm/ha-agent/internal/topology"
	"github.com/lustre-hsm/ha-agent/internal/xec"
)

// MsgAlreadyStarted is the well-known stdout marker the management command
// prints when a host start was a no-op.
const MsgAlreadyStarted = "MSG_ALREADY_STARTED"

// hostTarget adapts a topology.SSHHost to Supervisable, invoking
// "<mgr> host start <hostname>" as its action.
type hostTarget struct {
	namespace string
	mgrPath   string
	host      topology.SSHHost
}

// NewHostTarget builds the Supervisable for a neighbour host this agent
// watches.
func NewHostTarget(namespace, mgrPath string, host topology.SSHHost) Supervisable {
	return &hostTarget{namespace: namespace, mgrPath: mgrPath, host: host}
}

func (h *hostTarget) LockKey() string {
	return fmt.Sprintf("%s/hosts/%s/lock", h.namespace, h.host.Hostname)
}

func (h *hostTarget) ConfigKey() string {
	return fmt.Sprintf("%s/hosts/%s/config", h.namespace, h.host.Hostname)
}

func (h *hostTarget) RunAction(ctx context.Context) (string, string, int, error) {
	res, err := xec.Run(ctx, h.mgrPath, "host", "start", h.host.Hostname)
	return res.Stdout, res.Stderr, res.ExitCode, err
}

func (h *hostTarget) AlreadyOKMarker() string {
	return MsgAlreadyStarted
}

func (h *hostTarget) DisplayName() string {
	return h.host.Hostname
}
