package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/minepkg/launchcore/internal/asset"
	"github.com/minepkg/launchcore/internal/downloadengine"
	"github.com/minepkg/launchcore/internal/javaguard"
)

var javaFindCmd = &cobra.Command{
	Use:   "find <minecraft-version>",
	Short: "Discover installed Java runtimes matching a Minecraft version's requirement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var major, minor, patch int
		if _, err := fmt.Sscanf(args[0], "%d.%d.%d", &major, &minor, &patch); err != nil {
			fmt.Sscanf(args[0], "%d.%d", &major, &minor)
		}

		rangeExpr, wantMajor := javaguard.RangeForMinecraftVersion(major, minor, patch)
		logger.Info(fmt.Sprintf("looking for java satisfying %s (java %d)", rangeExpr, wantMajor))

		registry := javaguard.NewRegistry(filepath.Join(globalDir, "runtime"), javaguard.NewPlatformRegistryReader())
		found, err := registry.Find(context.Background(), rangeExpr)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			logger.Warn("no matching java runtime found")
			return nil
		}
		for _, d := range found {
			logger.Info(d.Describe())
		}
		return nil
	},
}

var javaInstallDistribution string

var javaInstallCmd = &cobra.Command{
	Use:   "install <major-version>",
	Short: "Download and install a JDK build for a Java feature version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		major, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid major version %q: %w", args[0], err)
		}

		ctx := context.Background()
		runtimeDir := filepath.Join(globalDir, "runtime")

		jdkAsset, err := resolveJDKAsset(ctx, javaInstallDistribution, major, runtimeDir)
		if err != nil {
			return err
		}

		engine := downloadengine.New(fs, downloadengine.DefaultConfig())
		installer := javaguard.NewInstaller(fs, engine)

		targetDir := filepath.Join(runtimeDir, fmt.Sprintf("jdk-%d", major))
		logger.Info(fmt.Sprintf("installing %s to %s", jdkAsset.ID, targetDir))
		if err := installer.Install(ctx, jdkAsset, targetDir); err != nil {
			return err
		}

		logger.Info(fmt.Sprintf("installed java %d at %s", major, targetDir))
		return nil
	},
}

// resolveJDKAsset picks the distribution client per the --distribution
// flag and resolves the current build for the requested major version.
func resolveJDKAsset(ctx context.Context, distribution string, major int, runtimeDir string) (asset.Asset, error) {
	switch distribution {
	case "adoptium":
		client := javaguard.NewAdoptiumClient()
		return client.FindAsset(ctx, javaguard.AdoptiumRequest{FeatureVersion: major, DataDir: runtimeDir})
	case "corretto":
		client := javaguard.NewCorrettoClient()
		return client.FindAsset(ctx, major)
	default:
		return asset.Asset{}, fmt.Errorf("unknown java distribution %q (want adoptium or corretto)", distribution)
	}
}

var javaCmd = &cobra.Command{
	Use:   "java",
	Short: "Java runtime discovery and installation",
}

func init() {
	javaInstallCmd.Flags().StringVar(&javaInstallDistribution, "distribution", "adoptium", "JDK distribution to install (adoptium, corretto)")
	javaCmd.AddCommand(javaFindCmd)
	javaCmd.AddCommand(javaInstallCmd)
	rootCmd.AddCommand(javaCmd)
}
