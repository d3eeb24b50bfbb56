// Package main is launchcore's ambient CLI surface: a thin cobra/viper
// wrapper exercising the library end to end (java discovery, repair,
// login) the way the teacher's cmd/root.go wires minepkg's own
// subcommands.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gookit/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/minepkg/launchcore/internal/cmdlog"
	"github.com/minepkg/launchcore/internal/session"
)

// Version is set by the release build, matching the teacher's own
// goreleaser-injected variable.
var Version = "dev"

var (
	cfgFile       string
	globalDir     string
	disableColors bool

	logger *cmdlog.Logger
	fs     afero.Fs
	store  *session.Store
)

var rootCmd = &cobra.Command{
	Use:     "launchcorectl",
	Version: Version,
	Short:   "launchcorectl inspects and repairs Minecraft launcher instances.",
	Long:    "A command-line front end for the launchcore library: Java runtime discovery, distribution repair, and account login.",
}

// Execute runs the root command; called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	fs = afero.NewOsFs()
	logger = cmdlog.New()

	cobra.OnInitialize(initConfig)

	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	globalDir = filepath.Join(home, ".launchcore")
	store = session.New(fs, globalDir)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.launchcore/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&disableColors, "no-color", false, "disable color output")
}

// initConfig reads the config file and environment variables, matching
// the teacher's own viper wiring in cmd/root.go.
func initConfig() {
	if disableColors || os.Getenv("CI") != "" {
		color.Disable()
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(globalDir)
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("LAUNCHCORE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Info("using config file: " + viper.ConfigFileUsed())
	}
}
