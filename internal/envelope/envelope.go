// Package envelope defines the uniform response wrapper every outbound
// network request in launchcore returns. It mirrors the ad-hoc
// api-client error handling in the teacher's internals/minecraft
// package, generalized into a single reusable type instead of one
// bespoke error struct per client.
package envelope

// Status is the coarse outcome of a network-facing operation.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

// Envelope wraps every outbound request's result. Status and
// ProviderCode are independent: an ERROR envelope may or may not carry
// a provider-specific code, and a SUCCESS envelope never does.
type Envelope[T any] struct {
	Data         T            `json:"data"`
	Status       Status       `json:"status"`
	Error        string       `json:"error,omitempty"`
	ProviderCode ProviderCode `json:"provider_error_code,omitempty"`
}

// ProviderCode classifies a failure using a provider-specific taxonomy.
// The zero value means "no code assigned".
type ProviderCode string

// IsInternalError reports whether a code indicates the caller sent a
// malformed request, as opposed to a credential/authorization failure.
func (c ProviderCode) IsInternalError() bool {
	return internalErrorCodes[c]
}

var internalErrorCodes = map[ProviderCode]bool{}

// RegisterInternalError marks a provider code as caller-fault so
// IsInternalError reports it correctly. Called from each provider's
// init to populate the shared registry without a package cycle.
func RegisterInternalError(codes ...ProviderCode) {
	for _, c := range codes {
		internalErrorCodes[c] = true
	}
}

// Success builds a SUCCESS envelope around data.
func Success[T any](data T) Envelope[T] {
	return Envelope[T]{Data: data, Status: StatusSuccess}
}

// Fail builds an ERROR envelope, optionally with a provider code.
func Fail[T any](err error, code ProviderCode) Envelope[T] {
	var zero T
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Envelope[T]{Data: zero, Status: StatusError, Error: msg, ProviderCode: code}
}
