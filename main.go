/*
Copyright 2022.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"os"
	"strconv"

	"github.com/go-logr/zapr"
	"go.uber.org/zap"

	"github.com/lustre-hsm/ha-agent/internal/haerrors"
	"github.com/lustre-hsm/ha-agent/internal/supervisor"
)

func main() {
	zapLog, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer zapLog.Sync() //nolint:errcheck
	logger := zapr.NewLogger(zapLog).WithName("lustre-ha-agent")

	cfg := loadConfigFromEnv()

	s, err := supervisor.New(cfg, logger)
	if err != nil {
		logger.Error(err, "failed to build supervisor")
		os.Exit(1)
	}

	if err := s.Run(context.Background()); err != nil {
		if haerrors.IsCode(err, haerrors.FatalConfig) {
			logger.Error(err, "fatal configuration error, exiting")
			os.Exit(1)
		}
		logger.Error(err, "supervisor exited with error")
		os.Exit(1)
	}
}

const (
	envCoordinatorAddr = "LUSTRE_HA_COORDINATOR_ADDR"
	envNamespace       = "LUSTRE_HA_NAMESPACE"
	envMgrPath         = "LUSTRE_HA_MGR_PATH"
	envWatchFanout     = "LUSTRE_HA_WATCH_FANOUT"

	defaultCoordinatorAddr = "127.0.0.1:8500"
	defaultNamespace       = "lustre-ha"
	defaultMgrPath         = "lhsmtool_mgr"
	defaultWatchFanout     = 3
)

// loadConfigFromEnv reads the handful of deployment-specific values this
// binary needs from the environment, exactly once, and never again deeper
// in the call stack — there are no CLI flags and no process-global
// singletons.
func loadConfigFromEnv() supervisor.Config {
	return supervisor.Config{
		CoordinatorAddr: envOrDefault(envCoordinatorAddr, defaultCoordinatorAddr),
		Namespace:       envOrDefault(envNamespace, defaultNamespace),
		MgrPath:         envOrDefault(envMgrPath, defaultMgrPath),
		WatchFanout:     envIntOrDefault(envWatchFanout, defaultWatchFanout),
	}
}

func envOrDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
