// SPDX-License-Identifier: Apache-2.0

// Package runtimeconfig watches a single coordinator KV key for the
// per-service or per-host runtime configuration and republishes it
// atomically for a supervisory loop to read without blocking.
package runtimeconfig

// RuntimeConfig is the YAML-encoded payload stored at a
// "services/<name>/config" or "hosts/<name>/config" key.
type RuntimeConfig struct {
	Autostart bool `yaml:"autostart"`
}

// Default is the config in effect before any value has ever been observed
// at the watched key, or after the key is deleted.
var Default = RuntimeConfig{Autostart: false}
