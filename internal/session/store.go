// Package session persists Yggdrasil and Microsoft auth state between
// launcher runs, grounded on the teacher's internals/credentials: a
// zalando/go-keyring-backed store with an afero file-store fallback
// when the platform keyring is unavailable.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/zalando/go-keyring"
)

const (
	serviceLegacy   = "launchcore"
	userLegacy      = "mojang_auth_data"
	serviceMicrosoft = "launchcore"
	userMicrosoft   = "microsoft_auth_data"
)

// LegacySession is the persisted shape of a Yggdrasil login: access
// token, client token and profile identifiers, per spec §4.5.1.
type LegacySession struct {
	AccessToken string `json:"accessToken"`
	ClientToken string `json:"clientToken"`
	ProfileID   string `json:"profileId"`
	ProfileName string `json:"profileName"`
}

// MicrosoftSession is the persisted shape of a completed OAuth chain:
// the refresh token needed to silently re-authenticate, plus the
// resolved Minecraft profile, per spec §4.5.2.
type MicrosoftSession struct {
	RefreshToken string `json:"refreshToken"`
	ProfileID    string `json:"profileId"`
	ProfileName  string `json:"profileName"`
}

// Store persists session state to the OS keyring, falling back to
// plain JSON files under dir when the keyring is unavailable (headless
// CI, missing D-Bus secret service, etc).
type Store struct {
	FS          afero.Fs
	dir         string
	NoKeyRingMode bool
}

// New builds a Store rooted at dir (the launcher's config directory),
// probing the OS keyring once to decide whether to fall back to files.
func New(fs afero.Fs, dir string) *Store {
	s := &Store{FS: fs, dir: dir}
	if _, err := keyring.Get(serviceLegacy, "__probe__"); err != nil && err != keyring.ErrNotFound {
		s.NoKeyRingMode = true
	}
	return s
}

// LoadLegacy reads a persisted Yggdrasil session, returning (nil, nil)
// if none is stored.
func (s *Store) LoadLegacy() (*LegacySession, error) {
	var out LegacySession
	found, err := s.load(serviceLegacy, userLegacy, "legacy-session.json", &out)
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

// SaveLegacy persists a Yggdrasil session.
func (s *Store) SaveLegacy(sess *LegacySession) error {
	return s.save(serviceLegacy, userLegacy, "legacy-session.json", sess)
}

// LoadMicrosoft reads a persisted Microsoft OAuth session, returning
// (nil, nil) if none is stored.
func (s *Store) LoadMicrosoft() (*MicrosoftSession, error) {
	var out MicrosoftSession
	found, err := s.load(serviceMicrosoft, userMicrosoft, "microsoft-session.json", &out)
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

// SaveMicrosoft persists a Microsoft OAuth session.
func (s *Store) SaveMicrosoft(sess *MicrosoftSession) error {
	return s.save(serviceMicrosoft, userMicrosoft, "microsoft-session.json", sess)
}

// Clear removes both stored sessions, used by a "logout" operation.
func (s *Store) Clear() error {
	if s.NoKeyRingMode {
		s.FS.Remove(filepath.Join(s.dir, "legacy-session.json"))
		s.FS.Remove(filepath.Join(s.dir, "microsoft-session.json"))
		return nil
	}
	if err := keyring.Delete(serviceLegacy, userLegacy); err != nil && err != keyring.ErrNotFound {
		return err
	}
	if err := keyring.Delete(serviceMicrosoft, userMicrosoft); err != nil && err != keyring.ErrNotFound {
		return err
	}
	return nil
}

func (s *Store) load(service, user, fallbackFile string, out interface{}) (bool, error) {
	if s.NoKeyRingMode {
		return s.loadFile(fallbackFile, out)
	}

	blob, err := keyring.Get(service, user)
	switch err {
	case nil:
		return true, json.Unmarshal([]byte(blob), out)
	case keyring.ErrNotFound:
		return false, nil
	default:
		s.NoKeyRingMode = true
		return s.loadFile(fallbackFile, out)
	}
}

func (s *Store) save(service, user, fallbackFile string, v interface{}) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if s.NoKeyRingMode {
		return s.saveFile(fallbackFile, blob)
	}
	return keyring.Set(service, user, string(blob))
}

func (s *Store) loadFile(name string, out interface{}) (bool, error) {
	data, err := afero.ReadFile(s.FS, filepath.Join(s.dir, name))
	switch {
	case err == nil:
		return true, json.Unmarshal(data, out)
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, err
	}
}

func (s *Store) saveFile(name string, data []byte) error {
	if err := s.FS.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return afero.WriteFile(s.FS, filepath.Join(s.dir, name), data, 0o600)
}
