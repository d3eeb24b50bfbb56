// Package msauth implements the Microsoft OAuth2 -> Xbox Live (XBL) ->
// XSTS -> Minecraft game-token -> profile chain from spec §4.5.2.
// Grounded on the teacher's internals/minecraft/microsoft (the
// multi-step token exchange and XErr classification table), rewritten
// against golang.org/x/oauth2's microsoft endpoint and PKCE verifier
// generation via github.com/dchest/uniuri instead of the teacher's
// hand-rolled random string helper.
package msauth

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dchest/uniuri"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/minepkg/launchcore/internal/envelope"
)

// ClientID is the OAuth2 client id launchcore authenticates as.
// Callers overriding this should do so before calling NewAuthCodeURL.
var ClientID = "00000000-0000-0000-0000-000000000000"

const (
	xblURL       = "https://user.auth.xboxlive.com/user/authenticate"
	xstsURL      = "https://xsts.auth.xboxlive.com/xsts/authorize"
	gameLoginURL = "https://api.minecraftservices.com/authentication/login_with_xbox"
	profileURL   = "https://api.minecraftservices.com/minecraft/profile"
	entitlementURL = "https://api.minecraftservices.com/entitlements/mcstore"
)

// ProviderCode values for the XBL/XSTS/game-token chain, per spec
// §4.5.2.
const (
	CodeNoXboxAccount         envelope.ProviderCode = "NO_XBOX_ACCOUNT"
	CodeXBLBanned             envelope.ProviderCode = "XBL_BANNED"
	CodeUnder18               envelope.ProviderCode = "UNDER_18"
	CodeXErrAdultVerification envelope.ProviderCode = "XERR_ADULT_VERIFICATION_REQUIRED"
	CodeXErrUnknown           envelope.ProviderCode = "XERR_UNKNOWN"
	CodeNotOwned              envelope.ProviderCode = "NOT_OWNED"
	CodeOAuthDenied           envelope.ProviderCode = "OAUTH_DENIED"
	CodeUnreachable           envelope.ProviderCode = "UNREACHABLE"
	CodeUnknown               envelope.ProviderCode = "UNKNOWN"
)

func init() {
	envelope.RegisterInternalError(CodeXErrUnknown, CodeUnknown)
}

// oauthConfig builds the golang.org/x/oauth2/microsoft authorization-code
// config, per spec §4.5.2.
func oauthConfig(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:    ClientID,
		Endpoint:    microsoft.LiveConnectEndpoint,
		RedirectURL: redirectURL,
		Scopes:      []string{"XboxLive.signin", "offline_access"},
	}
}

// PKCE holds a generated code verifier/challenge pair for the
// authorization code flow, per spec §4.5.2.
type PKCE struct {
	Verifier  string
	Challenge string
}

// NewPKCE generates a random 64-character verifier (above RFC 7636's
// 43-character minimum) via uniuri and its S256 challenge.
func NewPKCE() PKCE {
	verifier := uniuri.NewLen(64)
	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])
	return PKCE{Verifier: verifier, Challenge: challenge}
}

// NewAuthCodeURL builds the browser-facing authorization URL for the
// interactive OAuth2 + PKCE flow, per spec §4.5.2.
func NewAuthCodeURL(redirectURL, state string, pkce PKCE) string {
	cfg := oauthConfig(redirectURL)
	return cfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", pkce.Challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// Client drives the multi-step exchange chain once an OAuth2 token has
// been obtained.
type Client struct {
	HTTP *http.Client
}

// New builds a Client using http.DefaultClient.
func New() *Client {
	return &Client{HTTP: http.DefaultClient}
}

// ExchangeCode trades an authorization code for an OAuth2 token, per
// spec §4.5.2 step 1. A denied/expired code surfaces as CodeOAuthDenied,
// matching the uniform envelope every other step in this chain returns.
func (c *Client) ExchangeCode(ctx context.Context, redirectURL string, pkce PKCE, code string) envelope.Envelope[*oauth2.Token] {
	cfg := oauthConfig(redirectURL)
	tok, err := cfg.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", pkce.Verifier))
	if err != nil {
		return envelope.Fail[*oauth2.Token](err, classifyOAuthErr(err))
	}
	return envelope.Success(tok)
}

// ExchangeRefreshToken silently re-authenticates using a refresh token
// obtained from a prior ExchangeCode, per spec §4.5.2 step 1's consumes
// clause ("authorization code OR refresh token").
func (c *Client) ExchangeRefreshToken(ctx context.Context, redirectURL, refreshToken string) envelope.Envelope[*oauth2.Token] {
	cfg := oauthConfig(redirectURL)
	src := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return envelope.Fail[*oauth2.Token](err, classifyOAuthErr(err))
	}
	return envelope.Success(tok)
}

// classifyOAuthErr maps a token-endpoint failure to CodeOAuthDenied when
// the endpoint itself rejected the code/token, and CodeUnknown for
// anything else (network failure, malformed response, ...).
func classifyOAuthErr(err error) envelope.ProviderCode {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return CodeOAuthDenied
	}
	return CodeUnknown
}

type xblRequest struct {
	Properties   xblProperties `json:"Properties"`
	RelyingParty string        `json:"RelyingParty"`
	TokenType    string        `json:"TokenType"`
}

type xblProperties struct {
	AuthMethod string `json:"AuthMethod"`
	SiteName   string `json:"SiteName"`
	RpsTicket  string `json:"RpsTicket"`
}

type xstsRequest struct {
	Properties   xstsProperties `json:"Properties"`
	RelyingParty string         `json:"RelyingParty"`
	TokenType    string         `json:"TokenType"`
}

type xstsProperties struct {
	SandboxID  string   `json:"SandboxId"`
	UserTokens []string `json:"UserTokens"`
}

// XToken is the shared {Token, DisplayClaims.xui[0].uhs} shape both XBL
// and XSTS return, per spec §4.5.2.
type XToken struct {
	Token         string `json:"Token"`
	DisplayClaims struct {
		XUI []struct {
			UHS string `json:"uhs"`
		} `json:"xui"`
	} `json:"DisplayClaims"`
}

func (t *XToken) UserHash() string {
	if len(t.DisplayClaims.XUI) == 0 {
		return ""
	}
	return t.DisplayClaims.XUI[0].UHS
}

type xErrBody struct {
	XErr    int64  `json:"XErr"`
	Message string `json:"Message"`
}

// AuthenticateXBL exchanges an OAuth2 access token for an Xbox Live
// user token, per spec §4.5.2 step 2.
func (c *Client) AuthenticateXBL(ctx context.Context, msAccessToken string) envelope.Envelope[*XToken] {
	body := xblRequest{
		Properties: xblProperties{
			AuthMethod: "RPS",
			SiteName:   "user.auth.xboxlive.com",
			RpsTicket:  "d=" + msAccessToken,
		},
		RelyingParty: "http://auth.xboxlive.com",
		TokenType:    "JWT",
	}
	return c.postXToken(ctx, xblURL, body)
}

// AuthorizeXSTS exchanges an XBL user token for an XSTS token scoped to
// Minecraft's relying party, per spec §4.5.2 step 3. XErr codes are
// classified per the exhaustive table.
func (c *Client) AuthorizeXSTS(ctx context.Context, xblToken *XToken) envelope.Envelope[*XToken] {
	body := xstsRequest{
		Properties: xstsProperties{
			SandboxID:  "RETAIL",
			UserTokens: []string{xblToken.Token},
		},
		RelyingParty: "rp://api.minecraftservices.com/",
		TokenType:    "JWT",
	}
	return c.postXToken(ctx, xstsURL, body)
}

func (c *Client) postXToken(ctx context.Context, url string, body interface{}) envelope.Envelope[*XToken] {
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return envelope.Fail[*XToken](err, CodeUnknown)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-xbl-contract-version", "1")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return envelope.Fail[*XToken](err, CodeUnreachable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		var eb xErrBody
		json.NewDecoder(resp.Body).Decode(&eb)
		return envelope.Fail[*XToken](fmt.Errorf("msauth: %s", eb.Message), classifyXErr(eb.XErr))
	}
	if resp.StatusCode != http.StatusOK {
		return envelope.Fail[*XToken](fmt.Errorf("msauth: unexpected status %d", resp.StatusCode), CodeUnknown)
	}

	var tok XToken
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return envelope.Fail[*XToken](err, CodeUnknown)
	}
	return envelope.Success(&tok)
}

// classifyXErr maps Xbox's numeric XErr codes to provider codes, per
// spec §4.5.2's exhaustive table.
func classifyXErr(xerr int64) envelope.ProviderCode {
	switch xerr {
	case 2148916233:
		return CodeNoXboxAccount
	case 2148916235:
		return CodeXBLBanned
	case 2148916236, 2148916237:
		return CodeXErrAdultVerification
	case 2148916238:
		return CodeUnder18
	default:
		return CodeXErrUnknown
	}
}

type gameLoginRequest struct {
	IdentityToken string `json:"identityToken"`
}

// GameToken is the Minecraft-services access token returned by the
// game login exchange, per spec §4.5.2 step 4.
type GameToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// LoginWithXbox trades an XSTS token + user hash for a Minecraft
// services access token, per spec §4.5.2 step 4.
func (c *Client) LoginWithXbox(ctx context.Context, xsts *XToken) envelope.Envelope[*GameToken] {
	identityToken := fmt.Sprintf("XBL3.0 x=%s;%s", xsts.UserHash(), xsts.Token)
	body := gameLoginRequest{IdentityToken: identityToken}
	data, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, gameLoginURL, bytes.NewReader(data))
	if err != nil {
		return envelope.Fail[*GameToken](err, CodeUnknown)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return envelope.Fail[*GameToken](err, CodeUnreachable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return envelope.Fail[*GameToken](fmt.Errorf("msauth: game login status %d", resp.StatusCode), CodeUnknown)
	}

	var tok GameToken
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return envelope.Fail[*GameToken](err, CodeUnknown)
	}
	return envelope.Success(&tok)
}

// Profile is the Minecraft services player profile, per spec §4.5.2
// step 5.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// profileErrorBody is the {path, errorType} shape the profile endpoint
// returns on failure, per spec §4.5.2 step 5.
type profileErrorBody struct {
	Path      string `json:"path"`
	ErrorType string `json:"errorType"`
}

// classifyProfileNotFound requires both eb.Path and eb.ErrorType to
// match exactly before reporting CodeNotOwned; a bare 404 status alone
// (a malformed request, or a body missing these fields) is not enough.
func classifyProfileNotFound(eb profileErrorBody) envelope.ProviderCode {
	if eb.Path == "/minecraft/profile" && eb.ErrorType == "NOT_FOUND" {
		return CodeNotOwned
	}
	return CodeUnknown
}

// GetProfile fetches the caller's Minecraft profile. A 404 whose body
// is {path: "/minecraft/profile", errorType: "NOT_FOUND"} means the
// account does not own Minecraft, classified as CodeNotOwned per spec
// §4.5.2; any other 404 body falls through to CodeUnknown, since a
// bare 404 status alone doesn't distinguish "not owned" from a
// malformed request.
func (c *Client) GetProfile(ctx context.Context, gameAccessToken string) envelope.Envelope[*Profile] {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return envelope.Fail[*Profile](err, CodeUnknown)
	}
	req.Header.Set("Authorization", "Bearer "+gameAccessToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return envelope.Fail[*Profile](err, CodeUnreachable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		var eb profileErrorBody
		json.NewDecoder(resp.Body).Decode(&eb)
		return envelope.Fail[*Profile](fmt.Errorf("msauth: profile status 404: %s", eb.ErrorType), classifyProfileNotFound(eb))
	}
	if resp.StatusCode != http.StatusOK {
		return envelope.Fail[*Profile](fmt.Errorf("msauth: profile status %d", resp.StatusCode), CodeUnknown)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return envelope.Fail[*Profile](err, CodeUnknown)
	}
	return envelope.Success(&profile)
}

// HasEntitlement checks the entitlements store as a secondary ownership
// signal alongside GetProfile's 404, matching the teacher's own
// belt-and-braces ownership check.
func (c *Client) HasEntitlement(ctx context.Context, gameAccessToken string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entitlementURL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+gameAccessToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var body struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}
	return len(body.Items) > 0, nil
}
