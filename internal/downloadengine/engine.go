// Package downloadengine implements the single-file download algorithm
// and bounded-parallel queue from spec §4.1. Grounded on the teacher's
// internals/downloadmgr (HTTPItem.Download's timeout/client setup,
// checkSha256), generalized with retry/backoff, the config-file skip
// rule, and byte-accurate aggregate progress the teacher never had.
package downloadengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/minepkg/launchcore/internal/asset"
	"github.com/minepkg/launchcore/internal/fsutil"
)

// Config controls engine-wide behavior.
type Config struct {
	// StrictSizeValidation, when true, promotes a received-bytes /
	// declared-size mismatch to an error instead of the permissive
	// legacy behavior of logging and re-validating on disk. See
	// SPEC_FULL.md §11 (open question 1).
	StrictSizeValidation bool
	Concurrency          int
	MaxRetries           int
	ConnectTimeout       time.Duration
	TotalTimeout         time.Duration
}

// DefaultConfig matches spec §4.1's literal numbers.
func DefaultConfig() Config {
	return Config{
		StrictSizeValidation: false,
		Concurrency:          15,
		MaxRetries:           10,
		ConnectTimeout:       5 * time.Second,
		TotalTimeout:         15 * time.Second,
	}
}

// RetryableErrorCodes is the minimum set of transport error signatures
// that trigger a retry, per spec §4.1 step 6 and SPEC_FULL.md §11 (open
// question 2: "the list should be considered a minimum"). Callers may
// extend this map at package-init time.
var RetryableErrorCodes = map[string]bool{
	"timeout":            true,
	"connection reset":   true,
	"address in use":     true,
	"connection refused": true,
	"no such host":       true, // DNS not found
}

// ErrValidation is returned when a downloaded file's hash does not
// match the asset's expected hash. Validation failures are never
// retried, per spec §4.1 step 6.
type ErrValidation struct {
	Asset asset.Asset
	Got   string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("downloadengine: hash mismatch for %s: want %s got %s", e.Asset.ID, e.Asset.Hash.Digest, e.Got)
}

// Progress describes the state of one in-flight or completed transfer.
type Progress struct {
	Transferred int64
	Total       int64
	Percent     int
}

// Engine downloads Assets per spec §4.1.
type Engine struct {
	FS     afero.Fs
	Client *http.Client
	Config Config
}

// New builds an Engine with the given filesystem, using a client
// configured with the connect/total timeouts from cfg.
func New(fs afero.Fs, cfg Config) *Engine {
	return &Engine{
		FS: fs,
		Client: &http.Client{
			Timeout: cfg.TotalTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
			},
		},
		Config: cfg,
	}
}

// DownloadOne runs the single-file algorithm from spec §4.1 for one
// asset, calling onProgress with the per-stream transferred/total after
// every read chunk (and once with a {0,0,0} reset before each retry).
func (e *Engine) DownloadOne(ctx context.Context, a asset.Asset, onProgress func(Progress)) error {
	// step 1: never clobber user-editable configs that already exist
	if fsutil.IsUserEditable(a.Path) {
		if exists, _ := afero.Exists(e.FS, a.Path); exists {
			return nil
		}
	}

	// step 2: ensure parent directory exists
	if err := e.FS.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
		return err
	}

	// step 3: skip if already valid on disk
	if ok, err := fsutil.MatchesHash(e.FS, a.Path, a.Hash.Algorithm, a.Hash.Digest); err == nil && ok {
		return nil
	}

	var lastErr error
	for attempt := 0; attempt <= e.Config.MaxRetries; attempt++ {
		if attempt > 0 {
			if onProgress != nil {
				onProgress(Progress{})
			}
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := e.attempt(ctx, a, onProgress)
		if err == nil {
			return nil
		}

		var verr *ErrValidation
		if errors.As(err, &verr) {
			// Validation failures are fatal, never retried.
			e.FS.Remove(a.Path)
			return err
		}

		if !isRetryable(err) {
			e.FS.Remove(a.Path)
			return err
		}

		e.FS.Remove(a.Path)
		lastErr = err
	}

	return fmt.Errorf("downloadengine: exhausted %d retries for %s: %w", e.Config.MaxRetries, a.ID, lastErr)
}

func (e *Engine) attempt(ctx context.Context, a asset.Asset, onProgress func(Progress)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return err
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 && resp.StatusCode < 600 {
		return &retryableHTTPError{status: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloadengine: unexpected status %d for %s", resp.StatusCode, a.URL)
	}

	hasher, err := fsutil.NewHasher(a.Hash.Algorithm)
	if err != nil {
		return err
	}

	total := a.Size
	if total == 0 {
		total = resp.ContentLength
	}

	pr := &progressReader{r: resp.Body, hasher: hasher, total: total, onProgress: onProgress}

	if err := fsutil.AtomicWrite(e.FS, a.Path, pr); err != nil {
		return err
	}

	got := fmt.Sprintf("%x", hasher.Sum(nil))
	if a.Hash.Digest != "" && got != a.Hash.Digest {
		return &ErrValidation{Asset: a, Got: got}
	}

	if e.Config.StrictSizeValidation && a.Size != 0 && pr.transferred != a.Size {
		return fmt.Errorf("downloadengine: %s: received %d bytes, expected %d", a.ID, pr.transferred, a.Size)
	}
	// Permissive default (spec §9 open question 1): log-and-continue is
	// the caller's responsibility via the size mismatch already visible
	// on Progress; re-validation on disk already happened above via
	// the hash check.

	return nil
}

type progressReader struct {
	r           io.Reader
	hasher      io.Writer
	total       int64
	transferred int64
	onProgress  func(Progress)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.hasher.Write(buf[:n])
		p.transferred += int64(n)
		if p.onProgress != nil {
			pct := 0
			if p.total > 0 {
				pct = int(float64(p.transferred) / float64(p.total) * 100)
			}
			p.onProgress(Progress{Transferred: p.transferred, Total: p.total, Percent: pct})
		}
	}
	return n, err
}

type retryableHTTPError struct{ status int }

func (e *retryableHTTPError) Error() string { return fmt.Sprintf("downloadengine: http status %d", e.status) }

func isRetryable(err error) bool {
	var httpErr *retryableHTTPError
	if errors.As(err, &httpErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := err.Error()
	for code := range RetryableErrorCodes {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}
