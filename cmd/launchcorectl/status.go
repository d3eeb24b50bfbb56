package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/minepkg/launchcore/internal/asset"
	"github.com/minepkg/launchcore/internal/mcstatus"
)

var statusCmd = &cobra.Command{
	Use:   "status <instance-dir>",
	Short: "Ping a server and print its player count and latency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instanceDir := args[0]
		launcherDir := filepath.Dir(instanceDir)

		dist, err := asset.LoadDistribution(fs, launcherDir, repairDevMode)
		if err != nil {
			return err
		}
		server, err := dist.MainServer()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		result, err := mcstatus.Ping(ctx, server)
		if err != nil {
			logger.Warn(err.Error())
			return nil
		}

		logger.Info(fmt.Sprintf("%s: %d/%d players, %s latency", server.ID, result.Players.Online, result.Players.Max, result.Latency))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
