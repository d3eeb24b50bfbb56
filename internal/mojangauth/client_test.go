package mojangauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/minepkg/launchcore/internal/envelope"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   errorBody
		want   envelope.ProviderCode
	}{
		{"method not allowed", http.StatusMethodNotAllowed, errorBody{}, CodeMethodNotAllowed},
		{"not found", http.StatusNotFound, errorBody{}, CodeNotFound},
		{"user migrated", http.StatusForbidden, errorBody{ErrorType: "ForbiddenOperationException", Cause: "UserMigratedException"}, CodeUserMigrated},
		{"invalid credentials", http.StatusForbidden, errorBody{ErrorType: "ForbiddenOperationException", ErrorMessage: "Invalid credentials. Invalid username or password."}, CodeInvalidCredentials},
		{"ratelimit", http.StatusForbidden, errorBody{ErrorType: "ForbiddenOperationException", ErrorMessage: "Invalid credentials."}, CodeRatelimit},
		{"invalid token", http.StatusForbidden, errorBody{ErrorType: "ForbiddenOperationException", ErrorMessage: "Invalid token."}, CodeInvalidToken},
		{"credentials missing", http.StatusForbidden, errorBody{ErrorType: "ForbiddenOperationException", ErrorMessage: "Forbidden"}, CodeCredentialsMissing},
		{"access token has profile", http.StatusBadRequest, errorBody{ErrorType: "IllegalArgumentException", ErrorMessage: "Access token already has a profile assigned."}, CodeAccessTokenHasProfile},
		{"invalid salt version", http.StatusBadRequest, errorBody{ErrorType: "IllegalArgumentException", ErrorMessage: "Invalid salt version"}, CodeInvalidSaltVersion},
		{"gone", http.StatusGone, errorBody{ErrorType: "GoneException"}, CodeGone},
		{"unrecognized", http.StatusInternalServerError, errorBody{ErrorType: "SomethingElse"}, CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.status, tt.body); got != tt.want {
				t.Errorf("classify(%d, %+v) = %v, want %v", tt.status, tt.body, got, tt.want)
			}
		})
	}
}

type erroringTransport struct{ err error }

func (t erroringTransport) RoundTrip(*http.Request) (*http.Response, error) { return nil, t.err }

func TestAsUnreachable(t *testing.T) {
	dnsErr := &net.DNSError{Err: "no such host", Name: "authserver.mojang.com", IsNotFound: true}
	if !AsUnreachable(fmt.Errorf("wrapped: %w", dnsErr)) {
		t.Error("AsUnreachable(dns error) = false, want true")
	}
	if AsUnreachable(errors.New("connection reset by peer")) {
		t.Error("AsUnreachable(generic transport error) = true, want false")
	}
}

// TestClient_Validate_Scenario5 exercises spec §8 scenario 5 end to
// end through a real HTTP server: a 204 means valid, a 403 is a
// semantic "not valid" answer that still comes back as SUCCESS(false)
// rather than an ERROR envelope.
func TestClient_Validate_Scenario5(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{"204 means valid", http.StatusNoContent, true},
		{"403 means not valid", http.StatusForbidden, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := &Client{HTTP: srv.Client(), BaseURL: srv.URL}
			got := c.Validate(context.Background(), "access-token", "client-token")

			if got.Status != envelope.StatusSuccess {
				t.Fatalf("Status = %v, want SUCCESS", got.Status)
			}
			if got.Data != tt.want {
				t.Errorf("Data = %v, want %v", got.Data, tt.want)
			}
		})
	}
}

func TestPost_ClassifiesTransportErrors(t *testing.T) {
	dnsErr := &net.DNSError{Err: "no such host", Name: "authserver.mojang.com", IsNotFound: true}

	tests := []struct {
		name string
		err  error
		want envelope.ProviderCode
	}{
		{"dns failure maps to unreachable", dnsErr, CodeUnreachable},
		{"other transport error maps to unknown", errors.New("connection reset by peer"), CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{HTTP: &http.Client{Transport: erroringTransport{err: tt.err}}, BaseURL: "https://authserver.mojang.com"}
			_, code := c.post(context.Background(), "/authenticate", map[string]string{}, nil)
			if code != tt.want {
				t.Errorf("post() code = %v, want %v", code, tt.want)
			}
		})
	}
}
