package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minepkg/launchcore/internal/envelope"
	"github.com/minepkg/launchcore/internal/mojangauth"
	"github.com/minepkg/launchcore/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with a Mojang (legacy) account",
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Email: ")
		email, _ := reader.ReadString('\n')
		fmt.Print("Password: ")
		password, _ := reader.ReadString('\n')

		client := mojangauth.New()
		result := client.Authenticate(context.Background(), strings.TrimSpace(email), strings.TrimSpace(password), "")
		if result.Status == envelope.StatusError {
			return fmt.Errorf("login failed: %s (%s)", result.Error, result.ProviderCode)
		}

		sess := result.Data
		if err := store.SaveLegacy(&session.LegacySession{
			AccessToken: sess.AccessToken,
			ClientToken: sess.ClientToken,
			ProfileID:   sess.GetUUID(),
			ProfileName: sess.GetPlayerName(),
		}); err != nil {
			return err
		}

		logger.Info(fmt.Sprintf("logged in as %s", sess.GetPlayerName()))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget stored login credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.Clear(); err != nil {
			return err
		}
		logger.Info("logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd)
}
