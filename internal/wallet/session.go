package wallet

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// ErrNotSignedIn is returned when no wallet session is stored.
var ErrNotSignedIn = errors.New("no wallet connected")

// Addresses are one account's addresses on each network.
type Addresses struct {
	Mainnet string `json:"mainnet"`
	Testnet string `json:"testnet"`
}

// UserData is what a connected wallet shares with the app.
type UserData struct {
	Wallet     string    `json:"wallet"`
	Addresses  Addresses `json:"stx_address"`
	AppName    string    `json:"app_name"`
	SignedInAt string    `json:"signed_in_at"`
}

// AddressFor returns the address for the given network flavour.
func (u UserData) AddressFor(mainnet bool) string {
	if mainnet {
		return u.Addresses.Mainnet
	}
	return u.Addresses.Testnet
}

// SessionFile persists the signed-in user between runs.
//
//	macOS:   ~/Library/Caches/stxtoken/session.json
//	Linux:   ~/.cache/stxtoken/session.json
//	Windows: %LocalAppData%\stxtoken\session.json
type SessionFile struct {
	path string
}

// NewSessionFile stores the session at path; empty means the per-user
// cache directory.
func NewSessionFile(path string) *SessionFile {
	if path == "" {
		path = defaultSessionPath()
	}
	return &SessionFile{path: path}
}

func defaultSessionPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "stxtoken", "session.json")
}

// Path returns the session file location.
func (s *SessionFile) Path() string { return s.path }

// Load returns the stored user, or ErrNotSignedIn. A corrupt file counts as
// signed out.
func (s *SessionFile) Load() (UserData, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return UserData{}, ErrNotSignedIn
		}
		return UserData{}, err
	}
	var u UserData
	if err := json.Unmarshal(data, &u); err != nil || u.Wallet == "" {
		return UserData{}, ErrNotSignedIn
	}
	return u, nil
}

// Save writes u with owner-only permissions.
func (s *SessionFile) Save(u UserData) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file.
	_ = os.Chmod(s.path, 0o600)
	return nil
}

// Active reports whether a session is stored.
func (s *SessionFile) Active() bool {
	_, err := s.Load()
	return err == nil
}

// Clear removes the session. Clearing an absent session is not an error.
func (s *SessionFile) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
