package repair

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/afero"

	"github.com/minepkg/launchcore/internal/asset"
	"github.com/minepkg/launchcore/internal/worker"
)

// ServerLookup resolves a serverId to a parsed Server, reading the
// distribution document the way spec §6 describes
// (distribution.json / distribution_dev.json). Implemented by the
// collaborator that owns distribution manifest publishing (out of
// scope per spec §1); this handler only needs the resolved Server.
type ServerLookup func(ctx context.Context, launcherDir string, devMode bool, serverID string) (*asset.Server, error)

// Handler implements worker.Handler for the "repair" registry key,
// wiring the Orchestrator behind the Validate/Download command
// protocol from spec §4.3.
type Handler struct {
	Lookup ServerLookup
	orch   *Orchestrator
}

// NewHandlerFactory returns a worker.Handler constructor closing over a
// ServerLookup, for registration with worker.Register.
func NewHandlerFactory(lookup ServerLookup) func() worker.Handler {
	return func() worker.Handler {
		return &Handler{Lookup: lookup}
	}
}

func (h *Handler) Execute(msg worker.Message) ([]worker.Message, error) {
	switch msg.Type {
	case worker.MsgValidate:
		return h.handleValidate(msg)
	case worker.MsgDownload:
		return h.handleDownload()
	default:
		return nil, fmt.Errorf("repair: unrecognized message type %q", msg.Type)
	}
}

func (h *Handler) handleValidate(msg worker.Message) ([]worker.Message, error) {
	var payload worker.ValidatePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("repair: decode validate payload: %w", err)
	}

	server, err := h.Lookup(context.Background(), payload.LauncherDirectory, payload.DevMode, payload.ServerID)
	if err != nil {
		return nil, fmt.Errorf("repair: resolve server %q: %w", payload.ServerID, err)
	}

	dirs := asset.Dirs{Common: payload.CommonDirectory, Instance: payload.InstanceDirectory}
	h.orch = New(afero.NewOsFs(), http.DefaultClient, dirs, server)

	replies := make([]worker.Message, 0, 4)
	invalidCount, err := h.orch.Validate(context.Background(), func(pct int) {
		reply, _ := worker.Encode(worker.MsgValidateProgress, worker.ProgressPayload{Percent: pct})
		replies = append(replies, reply)
	})
	if err != nil {
		return nil, err
	}

	complete, _ := worker.Encode(worker.MsgValidateComplete, worker.ValidateCompletePayload{InvalidCount: invalidCount})
	replies = append(replies, complete)
	return replies, nil
}

func (h *Handler) handleDownload() ([]worker.Message, error) {
	if h.orch == nil {
		return nil, ErrNotValidated
	}

	replies := make([]worker.Message, 0, 4)
	err := h.orch.Download(context.Background(), func(pct int) {
		reply, _ := worker.Encode(worker.MsgDownloadProgress, worker.ProgressPayload{Percent: pct})
		replies = append(replies, reply)
	})
	if err != nil {
		return nil, err
	}

	complete, _ := worker.Encode(worker.MsgDownloadComplete, nil)
	replies = append(replies, complete)
	return replies, nil
}

// ClassifyError turns an unhandled failure into a user-facing string,
// per spec §4.3's error classifier contract.
func (h *Handler) ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	return "Repair failed: " + err.Error()
}

func init() {
	// Registration is deferred to the cmd/ binary, which supplies a
	// concrete ServerLookup wired to its own distribution-document
	// loader; registering here with a nil lookup would violate the
	// "compile-time closed map" contract with an unusable handler.
}
