// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"fmt"
	"sort"

	"github.com/lustre-hsm/ha-agent/internal/haerrors"
)

// LocalServices returns every instance of t whose hostname equals
// localHostname, across filesystems and management services.
func LocalServices(t *Topology, localHostname string) []ServiceInstance {
	var out []ServiceInstance
	for _, inst := range t.Instances {
		if inst.Hostname == localHostname {
			out = append(out, inst)
		}
	}
	return out
}

// NeighbourHosts builds the monitor ring for localHostname: a sorted,
// wrap-around selection of up to fanout non-standalone peers (localHostname
// itself is always eligible as a candidate so the ring positions are
// stable, but it is never returned).
func NeighbourHosts(t *Topology, localHostname string, fanout int) ([]SSHHost, error) {
	var candidates []SSHHost
	for _, h := range t.Hosts {
		if !h.Standalone || h.Hostname == localHostname {
			candidates = append(candidates, h)
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Hostname < candidates[j].Hostname })

	localIdx := -1
	for i, h := range candidates {
		if h.Hostname == localHostname {
			localIdx = i
			break
		}
	}
	if localIdx == -1 {
		return nil, haerrors.Wrap(fmt.Errorf("local hostname %q is not present in topology hosts", localHostname), haerrors.FatalConfig, "cannot build neighbour-watch ring")
	}

	var picked []SSHHost
	n := len(candidates)
	for i := 1; i < n && len(picked) < fanout; i++ {
		candidate := candidates[(localIdx+i)%n]
		if candidate.Hostname == localHostname {
			continue
		}
		picked = append(picked, candidate)
	}

	// The selection above already walks a pre-sorted ring, but the source
	// this was ported from re-sorts the picked set again after wrap-around;
	// that second sort is preserved here per an open design question left
	// unresolved upstream rather than silently dropped.
	sort.Slice(picked, func(i, j int) bool { return picked[i].Hostname < picked[j].Hostname })

	return picked, nil
}
