// Package mcstatus surfaces a server's online status and player count
// by speaking the Minecraft status protocol directly, using
// github.com/Tnze/go-mc rather than a hand-rolled packet reader. This
// is supplemental to the distribution/download pipeline (spec §1 scopes
// the launcher core to asset management, not server browsing) but gives
// the CLI a cheap way to show whether a configured server is reachable
// before a repair run.
package mcstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Tnze/go-mc/bot"

	"github.com/minepkg/launchcore/internal/asset"
)

// Status is the subset of the server list ping response launchcore
// cares about.
type Status struct {
	Description json.RawMessage `json:"description"`
	Players     struct {
		Max    int `json:"max"`
		Online int `json:"online"`
	} `json:"players"`
	Version struct {
		Name     string `json:"name"`
		Protocol int    `json:"protocol"`
	} `json:"version"`
	Latency time.Duration `json:"-"`
}

// Ping queries a server's status endpoint. It respects ctx's deadline
// by racing the blocking ping call against context cancellation.
func Ping(ctx context.Context, server *asset.Server) (*Status, error) {
	host, port, err := server.HostPort()
	if err != nil {
		return nil, fmt.Errorf("mcstatus: %w", err)
	}
	addr := host + ":" + port

	type result struct {
		resp  []byte
		delay time.Duration
		err   error
	}
	done := make(chan result, 1)
	go func() {
		resp, delay, err := bot.PingAndList(addr)
		done <- result{resp, delay, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("mcstatus: ping %s: %w", addr, r.err)
		}
		var status Status
		if err := json.Unmarshal(r.resp, &status); err != nil {
			return nil, fmt.Errorf("mcstatus: decode response from %s: %w", addr, err)
		}
		status.Latency = r.delay
		return &status, nil
	}
}

// Reachable reports whether a server responds to a status ping within
// timeout, swallowing the specific error (useful for a quick health
// indicator in the CLI where the failure reason is secondary).
func Reachable(server *asset.Server, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_, err := Ping(ctx, server)
	return err == nil
}
