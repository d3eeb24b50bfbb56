package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/minepkg/launchcore/internal/worker"
)

var repairWorkerCmd = &cobra.Command{
	Use:    "repair-worker <handler>",
	Short:  "Run as a child process receiving JSON-line repair commands over stdin/stdout",
	Args:   cobra.ExactArgs(1),
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(worker.Run(args, os.Stdin, os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(repairWorkerCmd)
}
