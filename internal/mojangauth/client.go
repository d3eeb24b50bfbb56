// Package mojangauth implements the legacy Yggdrasil
// authenticate/validate/refresh/invalidate state machine from spec
// §4.5.1, plus status aggregation. Grounded on the teacher's
// internals/minecraft/mojang (types.go's AuthResponse/Profile/
// mojangError shapes) and internals/minecraft/api-client.go's
// envelope-less error handling, generalized into the uniform Envelope
// this spec requires.
package mojangauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/minepkg/launchcore/internal/envelope"
)

const baseURL = "https://authserver.mojang.com"

// ProviderCode values for Yggdrasil, per spec §4.5.1.
const (
	CodeMethodNotAllowed     envelope.ProviderCode = "METHOD_NOT_ALLOWED"
	CodeNotFound             envelope.ProviderCode = "NOT_FOUND"
	CodeUnsupportedMediaType envelope.ProviderCode = "UNSUPPORTED_MEDIA_TYPE"
	CodeUserMigrated         envelope.ProviderCode = "USER_MIGRATED"
	CodeInvalidCredentials   envelope.ProviderCode = "INVALID_CREDENTIALS"
	CodeRatelimit            envelope.ProviderCode = "RATELIMIT"
	CodeInvalidToken         envelope.ProviderCode = "INVALID_TOKEN"
	CodeCredentialsMissing   envelope.ProviderCode = "CREDENTIALS_MISSING"
	CodeAccessTokenHasProfile envelope.ProviderCode = "ACCESS_TOKEN_HAS_PROFILE"
	CodeInvalidSaltVersion   envelope.ProviderCode = "INVALID_SALT_VERSION"
	CodeGone                 envelope.ProviderCode = "GONE"
	CodeUnreachable          envelope.ProviderCode = "UNREACHABLE"
	CodeUnknown              envelope.ProviderCode = "UNKNOWN"
)

func init() {
	envelope.RegisterInternalError(
		CodeMethodNotAllowed, CodeNotFound, CodeAccessTokenHasProfile,
		CodeCredentialsMissing, CodeInvalidSaltVersion, CodeUnsupportedMediaType,
	)
}

// Client wraps HTTP access to the Yggdrasil endpoints.
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

// New builds a Client using http.DefaultClient and the production base
// URL.
func New() *Client {
	return &Client{HTTP: http.DefaultClient, BaseURL: baseURL}
}

// errorBody is the {error, errorMessage, cause?} shape Yggdrasil returns
// on failure, per spec §4.5.1.
type errorBody struct {
	ErrorType    string `json:"error"`
	ErrorMessage string `json:"errorMessage"`
	Cause        string `json:"cause"`
}

func (e errorBody) Error() string { return e.ErrorMessage }

// Session is the {accessToken, clientToken, selectedProfile, user?}
// shape returned by authenticate/refresh, per spec §4.5.1.
type Session struct {
	AccessToken     string   `json:"accessToken"`
	ClientToken     string   `json:"clientToken"`
	SelectedProfile *Profile `json:"selectedProfile,omitempty"`
	User            *User    `json:"user,omitempty"`
}

type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID string `json:"id"`
}

func (s *Session) GetAccessToken() string { return s.AccessToken }
func (s *Session) GetUUID() string {
	if s.SelectedProfile == nil {
		return ""
	}
	return s.SelectedProfile.ID
}
func (s *Session) GetPlayerName() string {
	if s.SelectedProfile == nil {
		return ""
	}
	return s.SelectedProfile.Name
}
func (s *Session) GetUserType() string { return "mojang" }
func (s *Session) GetXUID() string     { return "" }

type agent struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

type authenticateRequest struct {
	Agent       agent  `json:"agent"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	ClientToken string `json:"clientToken,omitempty"`
	RequestUser bool   `json:"requestUser"`
}

// Authenticate logs a user in with username+password, per spec §4.5.1.
func (c *Client) Authenticate(ctx context.Context, username, password, clientToken string) envelope.Envelope[*Session] {
	body := authenticateRequest{
		Agent:       agent{Name: "Minecraft", Version: 1},
		Username:    username,
		Password:    password,
		ClientToken: clientToken,
		RequestUser: true,
	}
	session := &Session{}
	if err, code := c.post(ctx, "/authenticate", body, session); err != nil {
		return envelope.Fail[*Session](err, code)
	}
	return envelope.Success(session)
}

type refreshRequest struct {
	AccessToken string `json:"accessToken"`
	ClientToken string `json:"clientToken"`
	RequestUser bool   `json:"requestUser"`
}

// Refresh exchanges a still-valid access token for a fresh one, per
// spec §4.5.1.
func (c *Client) Refresh(ctx context.Context, accessToken, clientToken string) envelope.Envelope[*Session] {
	body := refreshRequest{AccessToken: accessToken, ClientToken: clientToken, RequestUser: true}
	session := &Session{}
	if err, code := c.post(ctx, "/refresh", body, session); err != nil {
		return envelope.Fail[*Session](err, code)
	}
	return envelope.Success(session)
}

type tokenPair struct {
	AccessToken string `json:"accessToken"`
	ClientToken string `json:"clientToken"`
}

// Validate checks an access token, per spec §4.5.1. A 204 means valid
// (data=true); a 403 is a semantic-valid "not valid" answer rather than
// a transport error (data=false, status still SUCCESS), per spec §8.
func (c *Client) Validate(ctx context.Context, accessToken, clientToken string) envelope.Envelope[bool] {
	body := tokenPair{AccessToken: accessToken, ClientToken: clientToken}
	status, err := c.postRaw(ctx, "/validate", body, nil)
	if err != nil {
		code := CodeUnknown
		if AsUnreachable(err) {
			code = CodeUnreachable
		}
		return envelope.Fail[bool](err, code)
	}
	switch status {
	case http.StatusNoContent:
		return envelope.Success(true)
	case http.StatusForbidden:
		return envelope.Success(false)
	default:
		return envelope.Fail[bool](fmt.Errorf("mojangauth: unexpected status %d", status), classifyStatus(status))
	}
}

// Invalidate revokes an access token, per spec §4.5.1.
func (c *Client) Invalidate(ctx context.Context, accessToken, clientToken string) envelope.Envelope[struct{}] {
	body := tokenPair{AccessToken: accessToken, ClientToken: clientToken}
	if err, code := c.post(ctx, "/invalidate", body, nil); err != nil {
		return envelope.Fail[struct{}](err, code)
	}
	return envelope.Success(struct{}{})
}

// post issues a JSON POST and decodes a 200 body into out, translating
// any non-2xx response via classify.
func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) (error, envelope.ProviderCode) {
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return err, CodeUnknown
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if AsUnreachable(err) {
			return err, CodeUnreachable
		}
		return err, CodeUnknown
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil {
			json.NewDecoder(resp.Body).Decode(out)
		}
		return nil, ""
	}

	var eb errorBody
	json.NewDecoder(resp.Body).Decode(&eb)
	code := classify(resp.StatusCode, eb)
	return eb, code
}

// postRaw issues a JSON POST and returns the raw status code without
// interpreting it, for callers that need to branch on 204 vs 403
// themselves (Validate).
func (c *Client) postRaw(ctx context.Context, path string, body interface{}, out interface{}) (int, error) {
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil {
		json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode, nil
}

func classifyStatus(status int) envelope.ProviderCode {
	switch status {
	case http.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusUnsupportedMediaType:
		return CodeUnsupportedMediaType
	default:
		return CodeUnknown
	}
}

// classify translates an error body into a provider code, per spec
// §4.5.1's exhaustive table.
func classify(status int, eb errorBody) envelope.ProviderCode {
	switch status {
	case http.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusUnsupportedMediaType:
		return CodeUnsupportedMediaType
	}

	switch eb.ErrorType {
	case "ForbiddenOperationException":
		switch {
		case eb.Cause == "UserMigratedException":
			return CodeUserMigrated
		case eb.ErrorMessage == "Invalid credentials. Invalid username or password.":
			return CodeInvalidCredentials
		case eb.ErrorMessage == "Invalid credentials.":
			return CodeRatelimit
		case eb.ErrorMessage == "Invalid token.":
			return CodeInvalidToken
		case eb.ErrorMessage == "Forbidden":
			return CodeCredentialsMissing
		}
	case "IllegalArgumentException":
		switch eb.ErrorMessage {
		case "Access token already has a profile assigned.":
			return CodeAccessTokenHasProfile
		case "Invalid salt version":
			return CodeInvalidSaltVersion
		}
	case "ResourceException", "GoneException":
		return CodeGone
	}

	return CodeUnknown
}

// AsUnreachable reports whether err represents a DNS resolution
// failure, mapped to CodeUnreachable per spec §4.5.1. Any other
// transport error (connection refused, TLS failure, timeout, ...)
// falls through to CodeUnknown instead.
func AsUnreachable(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
