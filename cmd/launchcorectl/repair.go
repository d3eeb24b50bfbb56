package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/minepkg/launchcore/internal/asset"
	"github.com/minepkg/launchcore/internal/repair"
)

var (
	repairServerID string
	repairDevMode  bool
)

var repairCmd = &cobra.Command{
	Use:   "repair <instance-dir>",
	Short: "Validate and download a server's assets into an instance directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instanceDir := args[0]
		launcherDir := filepath.Dir(instanceDir)

		dist, err := asset.LoadDistribution(fs, launcherDir, repairDevMode)
		if err != nil {
			return err
		}
		var server *asset.Server
		if repairServerID != "" {
			server, err = dist.ServerByID(repairServerID)
		} else {
			server, err = dist.MainServer()
		}
		if err != nil {
			return err
		}

		dirs := asset.Dirs{Common: filepath.Join(globalDir, "common"), Instance: instanceDir}
		orch := repair.New(fs, http.DefaultClient, dirs, server)

		task := logger.NewTask(2)
		task.Step("🔍", "Validating "+server.ID)
		invalid, err := orch.Validate(context.Background(), func(pct int) {})
		if err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("%d assets need downloading", invalid))

		task.Step("⬇️", "Downloading")
		if err := orch.Download(context.Background(), func(pct int) {}); err != nil {
			return err
		}

		logger.Info("repair complete")
		return nil
	},
}

func init() {
	repairCmd.Flags().StringVar(&repairServerID, "server", "", "server id to repair (defaults to the main server)")
	repairCmd.Flags().BoolVar(&repairDevMode, "dev", false, "read distribution_dev.json instead of distribution.json")
	rootCmd.AddCommand(repairCmd)
}
