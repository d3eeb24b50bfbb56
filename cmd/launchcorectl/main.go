package main

import (
	"context"

	"github.com/minepkg/launchcore/internal/asset"
	"github.com/minepkg/launchcore/internal/repair"
	"github.com/minepkg/launchcore/internal/worker"
)

func main() {
	registerHandlers()
	Execute()
}

// registerHandlers wires the compile-time-closed worker.Handler
// registry with the concrete repair handler, per spec §4.3/§9. Real
// distribution manifests are loaded from disk; this is the same
// wiring the "repair-worker" subcommand's worker.Run dispatch loop
// resolves at startup.
func registerHandlers() {
	worker.Register("repair", repair.NewHandlerFactory(lookupServer))
}

func lookupServer(ctx context.Context, launcherDir string, devMode bool, serverID string) (*asset.Server, error) {
	dist, err := asset.LoadDistribution(fs, launcherDir, devMode)
	if err != nil {
		return nil, err
	}
	if serverID == "" {
		return dist.MainServer()
	}
	return dist.ServerByID(serverID)
}
