// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/go-logr/logr"

	"github.com/lustre-hsm/ha-agent/internal/haerrors"
	"github.com/lustre-hsm/ha-agent/internal/util"
	"github.com/lustre-hsm/ha-agent/internal/xec"
)

// wireInstance mirrors the TOML [[...instances]] table.
type wireInstance struct {
	Hostname string `toml:"hostname"`
	Device   string `toml:"device"`
	NID      string `toml:"nid"`
	Mnt      string `toml:"mnt"`
}

type wireTarget struct {
	Index     int            `toml:"index"`
	Instances []wireInstance `toml:"instances"`
}

type wireFilesystem struct {
	FSName string       `toml:"fsname"`
	MDTs   []wireTarget `toml:"mdts"`
	OSTs   []wireTarget `toml:"osts"`
}

type wireMgs struct {
	MgsID     string         `toml:"mgs_id"`
	Instances []wireInstance `toml:"instances"`
}

type wireHost struct {
	Hostname   string `toml:"hostname"`
	Standalone bool   `toml:"standalone"`
}

type wireTopology struct {
	Filesystems []wireFilesystem `toml:"filesystems"`
	MgsList     []wireMgs        `toml:"mgs_list"`
	Hosts       []wireHost       `toml:"hosts"`
}

// ConfigLoader invokes the external management command's config
// subcommand and parses its TOML output into a Topology.
type ConfigLoader struct {
	mgrPath string
	logger  logr.Logger
}

// NewConfigLoader builds a ConfigLoader that invokes mgrPath for its
// simple_config subcommand.
func NewConfigLoader(mgrPath string, logger logr.Logger) *ConfigLoader {
	return &ConfigLoader{mgrPath: mgrPath, logger: logger.WithName("config-loader")}
}

// Load spawns "<mgr> simple_config", parses its stdout as TOML and
// flattens it into a Topology. Any failure is returned as a FatalConfig
// error, per the taxonomy in the error handling design.
func (l *ConfigLoader) Load(ctx context.Context) (*Topology, error) {
	res, err := xec.Run(ctx, l.mgrPath, "simple_config")
	if err != nil {
		return nil, haerrors.Wrap(err, haerrors.FatalConfig, "failed to invoke simple_config")
	}
	if res.ExitCode != 0 {
		return nil, haerrors.Wrap(fmt.Errorf("simple_config exited %d: stdout=%q stderr=%q",
			res.ExitCode, xec.EscapeNewlines(res.Stdout), xec.EscapeNewlines(res.Stderr)),
			haerrors.FatalConfig, "simple_config reported failure")
	}

	var wire wireTopology
	if _, err := toml.Decode(res.Stdout, &wire); err != nil {
		return nil, haerrors.Wrap(err, haerrors.FatalConfig, "failed to parse simple_config TOML output")
	}

	return flatten(&wire)
}

func flatten(wire *wireTopology) (*Topology, error) {
	v := &util.Validator{}
	t := &Topology{}

	for _, h := range wire.Hosts {
		v.MustNotBeEmpty("hosts[].hostname", h.Hostname)
		t.Hosts = append(t.Hosts, SSHHost{Hostname: h.Hostname, Standalone: h.Standalone})
	}

	for _, fs := range wire.Filesystems {
		v.MustNotBeEmpty("filesystems[].fsname", fs.FSName)
		if err := flattenTargets(t, v, fs.FSName, KindMDT, fs.MDTs); err != nil {
			return nil, err
		}
		if err := flattenTargets(t, v, fs.FSName, KindOST, fs.OSTs); err != nil {
			return nil, err
		}
	}

	for _, mgs := range wire.MgsList {
		v.MustNotBeEmpty("mgs_list[].mgs_id", mgs.MgsID)
		svc := &Service{Name: mgs.MgsID, Kind: KindMGS}
		for _, inst := range mgs.Instances {
			v.MustNotBeEmpty("mgs_list[].instances[].hostname", inst.Hostname)
			t.Instances = append(t.Instances, ServiceInstance{
				Hostname:   inst.Hostname,
				Device:     inst.Device,
				NetworkID:  inst.NID,
				Mountpoint: inst.Mnt,
				Service:    svc,
			})
		}
	}

	if v.Error != nil {
		return nil, haerrors.Wrap(v.Error, haerrors.FatalConfig, "topology failed validation")
	}
	return t, nil
}

func flattenTargets(t *Topology, v *util.Validator, fsname string, kind Kind, targets []wireTarget) error {
	for _, target := range targets {
		if !v.MustBeInRange(fmt.Sprintf("%s target index", kind), target.Index, 0, 0xffff) {
			continue
		}
		name, err := CanonicalName(fsname, kind, uint16(target.Index))
		if err != nil {
			return haerrors.Wrap(err, haerrors.FatalConfig, "failed to format canonical service name")
		}
		svc := &Service{Name: name, Kind: kind, FS: fsname, Index: uint16(target.Index)}
		for _, inst := range target.Instances {
			v.MustNotBeEmpty(name+".instances[].hostname", inst.Hostname)
			t.Instances = append(t.Instances, ServiceInstance{
				Hostname:   inst.Hostname,
				Device:     inst.Device,
				NetworkID:  inst.NID,
				Mountpoint: inst.Mnt,
				Service:    svc,
			})
		}
	}
	return nil
}
