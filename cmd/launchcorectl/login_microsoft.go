package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/minepkg/launchcore/internal/envelope"
	"github.com/minepkg/launchcore/internal/msauth"
	"github.com/minepkg/launchcore/internal/session"
)

var msRedirectURL string

var loginMicrosoftCmd = &cobra.Command{
	Use:   "login-microsoft",
	Short: "Authenticate with a Microsoft account via the OAuth2 authorization-code (PKCE) flow",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := msauth.New()
		ctx := context.Background()

		tok, err := silentReauth(ctx, client)
		if err != nil {
			tok, err = interactiveOAuthLogin(ctx, client)
			if err != nil {
				return err
			}
		}

		xbl := client.AuthenticateXBL(ctx, tok.AccessToken)
		if xbl.Status == envelope.StatusError {
			return fmt.Errorf("xbl auth failed: %s (%s)", xbl.Error, xbl.ProviderCode)
		}

		xsts := client.AuthorizeXSTS(ctx, xbl.Data)
		if xsts.Status == envelope.StatusError {
			return fmt.Errorf("xsts auth failed: %s (%s)", xsts.Error, xsts.ProviderCode)
		}

		game := client.LoginWithXbox(ctx, xsts.Data)
		if game.Status == envelope.StatusError {
			return fmt.Errorf("minecraft login failed: %s (%s)", game.Error, game.ProviderCode)
		}

		profile := client.GetProfile(ctx, game.Data.AccessToken)
		if profile.Status == envelope.StatusError {
			return fmt.Errorf("fetch profile failed: %s (%s)", profile.Error, profile.ProviderCode)
		}

		if err := store.SaveMicrosoft(&session.MicrosoftSession{
			RefreshToken: tok.RefreshToken,
			ProfileID:    profile.Data.ID,
			ProfileName:  profile.Data.Name,
		}); err != nil {
			return err
		}

		logger.Info(fmt.Sprintf("logged in as %s", profile.Data.Name))
		return nil
	},
}

// silentReauth tries to re-authenticate with a previously stored
// refresh token before falling back to the interactive code flow, per
// spec §4.5.2 step 1's "authorization code OR refresh token" consumes
// clause.
func silentReauth(ctx context.Context, client *msauth.Client) (*oauth2.Token, error) {
	sess, err := store.LoadMicrosoft()
	if err != nil || sess == nil || sess.RefreshToken == "" {
		return nil, fmt.Errorf("no stored refresh token")
	}
	refreshed := client.ExchangeRefreshToken(ctx, msRedirectURL, sess.RefreshToken)
	if refreshed.Status == envelope.StatusError {
		return nil, fmt.Errorf("silent reauth: %s (%s)", refreshed.Error, refreshed.ProviderCode)
	}
	return refreshed.Data, nil
}

// interactiveOAuthLogin runs the browser-facing PKCE authorization code
// flow, per spec §4.5.2 step 1.
func interactiveOAuthLogin(ctx context.Context, client *msauth.Client) (*oauth2.Token, error) {
	pkce := msauth.NewPKCE()
	url := msauth.NewAuthCodeURL(msRedirectURL, pkce.Verifier[:8], pkce)
	logger.Info("open this URL to sign in: " + url)

	fmt.Print("Paste the redirected code: ")
	var code string
	fmt.Scanln(&code)

	exchanged := client.ExchangeCode(ctx, msRedirectURL, pkce, code)
	if exchanged.Status == envelope.StatusError {
		return nil, fmt.Errorf("oauth exchange: %s (%s)", exchanged.Error, exchanged.ProviderCode)
	}
	return exchanged.Data, nil
}

func init() {
	loginMicrosoftCmd.Flags().StringVar(&msRedirectURL, "redirect-url", "http://localhost:8080/callback", "OAuth2 redirect URL")
	rootCmd.AddCommand(loginMicrosoftCmd)
}
