// Package worker implements the parent/child process bridge from spec
// §4.3: a duplex JSON-line message channel plus stdout/stderr log
// forwarding. Grounded on the teacher's os/exec usage patterns (the
// launcher's own child-process launch in internals/launcher) and its
// habit of tagging JSON payloads with a discriminator field (see
// internals/minecraft/microsoft's typed request/response bodies);
// spec §9 explicitly calls for "a sum type ... serialize over the
// channel with a discriminator field".
package worker

import "encoding/json"

// MessageType discriminates the tagged variants sent over the channel.
type MessageType string

const (
	// parent -> child
	MsgValidate MessageType = "validate"
	MsgDownload MessageType = "download"

	// child -> parent
	MsgValidateProgress MessageType = "validateProgress"
	MsgValidateComplete MessageType = "validateComplete"
	MsgDownloadProgress MessageType = "downloadProgress"
	MsgDownloadComplete MessageType = "downloadComplete"
	MsgError            MessageType = "error"
)

// Message is the wire envelope for every message crossing the channel,
// tagged by Type with a raw payload decoded per-type by the receiver.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ValidatePayload is the parent->child Validate command's payload.
type ValidatePayload struct {
	ServerID          string `json:"serverId"`
	LauncherDirectory string `json:"launcherDirectory"`
	CommonDirectory   string `json:"commonDirectory"`
	InstanceDirectory string `json:"instanceDirectory"`
	DevMode           bool   `json:"devMode"`
}

// ProgressPayload carries an integer percent for both validate and
// download progress replies.
type ProgressPayload struct {
	Percent int `json:"percent"`
}

// ValidateCompletePayload reports how many assets were found invalid.
type ValidateCompletePayload struct {
	InvalidCount int `json:"invalidCount"`
}

// ErrorPayload carries the displayable error string produced by the
// handler's error classifier, per spec §4.3.
type ErrorPayload struct {
	Displayable string `json:"displayable"`
}

// Encode marshals a typed payload into a Message.
func Encode(t MessageType, payload interface{}) (Message, error) {
	if payload == nil {
		return Message{Type: t}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}
