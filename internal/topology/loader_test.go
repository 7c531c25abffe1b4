// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"context"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/go-logr/logr"
	. "github.com/onsi/gomega"
)

const sampleTOML = `
[[filesystems]]
fsname = "lustre0"

  [[filesystems.mdts]]
  index = 0

    [[filesystems.mdts.instances]]
    hostname = "alpha"
    device = "/dev/sda1"
    nid = "10.0.0.1@o2ib"
    mnt = "/mnt/lustre0/mdt0"

  [[filesystems.osts]]
  index = 16

    [[filesystems.osts.instances]]
    hostname = "alpha"
    device = "/dev/sdb1"
    nid = "10.0.0.1@o2ib"
    mnt = "/mnt/lustre0/ost10"

[[mgs_list]]
mgs_id = "MGS"

  [[mgs_list.instances]]
  hostname = "beta"
  device = "/dev/sda1"
  nid = "10.0.0.2@o2ib"
  mnt = "/mnt/mgs"

[[hosts]]
hostname = "alpha"
standalone = false

[[hosts]]
hostname = "beta"
standalone = false
`

func TestConfigLoaderFlattensTOML(t *testing.T) {
	g := NewWithT(t)
	l := NewConfigLoader("/bin/echo", logr.Discard())

	wire := &wireTopology{}
	_, err := toml.Decode(sampleTOML, wire)
	g.Expect(err).To(BeNil())

	top, err := flatten(wire)
	g.Expect(err).To(BeNil())
	g.Expect(top.Hosts).To(HaveLen(2))
	g.Expect(top.Instances).To(HaveLen(3))

	var ostName string
	for _, inst := range top.Instances {
		if inst.Service.Kind == KindOST {
			ostName = inst.Service.Name
		}
	}
	g.Expect(ostName).To(Equal("lustre0-OST0010"))

	_ = l
}

func TestConfigLoaderRejectsOutOfRangeIndex(t *testing.T) {
	g := NewWithT(t)
	wire := &wireTopology{
		Filesystems: []wireFilesystem{{
			FSName: "fsx",
			OSTs: []wireTarget{{
				Index:     0x10000,
				Instances: []wireInstance{{Hostname: "h1"}},
			}},
		}},
	}
	_, err := flatten(wire)
	g.Expect(err).ToNot(BeNil())
}

func TestConfigLoaderRejectsEmptyHostname(t *testing.T) {
	g := NewWithT(t)
	wire := &wireTopology{
		Filesystems: []wireFilesystem{{
			FSName: "fsx",
			OSTs: []wireTarget{{
				Index:     1,
				Instances: []wireInstance{{Hostname: ""}},
			}},
		}},
	}
	_, err := flatten(wire)
	g.Expect(err).ToNot(BeNil())
}

func TestConfigLoaderLoadPropagatesNonZeroExit(t *testing.T) {
	g := NewWithT(t)
	l := NewConfigLoader("false", logr.Discard())
	_, err := l.Load(context.Background())
	g.Expect(err).ToNot(BeNil())
}
