package wallet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

const keychainService = "stxtoken"

const (
	// EnvKey, when set, supplies the private key for every signing wallet.
	// Intended for CI and scripted use where no keychain is available.
	EnvKey = "STXTOKEN_KEY"
	// EnvKeystorePassword unlocks the encrypted file backend without a
	// terminal prompt.
	EnvKeystorePassword = "STXTOKEN_KEYSTORE_PASSWORD"
)

var (
	ErrKeystoreUnavailable = errors.New("keystore not available")
	ErrKeyNotFound         = errors.New("key not found")
)

// KeystoreBackend stores private keys by reference.
type KeystoreBackend interface {
	Store(name, hexKey string) (string, error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// Keystore keeps private keys in the OS keychain, or in an encrypted file
// where there is none.
type Keystore struct {
	ring keyring.Keyring
	// avoids a second keychain prompt within one process
	cache sync.Map
}

func keyRef(name string) string { return keychainService + "." + name }

// filePassword prefers STXTOKEN_KEYSTORE_PASSWORD over asking.
func filePassword(prompt string) (string, error) {
	if pw := os.Getenv(EnvKeystorePassword); pw != "" {
		return pw, nil
	}
	return keyring.TerminalPrompt(prompt)
}

// DefaultKeystore opens the platform keychain. fileDir is where the file
// backend keeps keys; empty means ~/.stxtoken/keys. A keystore whose backend
// cannot be opened still answers STXTOKEN_KEY lookups.
func DefaultKeystore(fileDir string) *Keystore {
	if fileDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			fileDir = filepath.Join(home, ".stxtoken", "keys")
		}
	}

	base := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  fileDir,
		FilePasswordFunc:         filePassword,
	}
	if runtime.GOOS == "linux" {
		// Headless Linux has neither secret service nor kwallet.
		base.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(base)
	if err != nil {
		fileOnly := base
		fileOnly.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		ring, _ = keyring.Open(fileOnly)
	}
	return &Keystore{ring: ring}
}

// Store saves hexKey under name and returns the reference to look it up by.
func (k *Keystore) Store(name, hexKey string) (string, error) {
	if k.ring == nil {
		return "", ErrKeystoreUnavailable
	}
	ref := keyRef(name)
	if err := k.ring.Set(keyring.Item{
		Key:         ref,
		Data:        []byte(hexKey),
		Label:       "stxtoken wallet " + name,
		Description: "Stacks private key",
	}); err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	k.cache.Store(ref, hexKey)
	return ref, nil
}

// Retrieve returns the key stored under ref. STXTOKEN_KEY wins over the
// keychain when set.
func (k *Keystore) Retrieve(ref string) (string, error) {
	if env := os.Getenv(EnvKey); env != "" {
		return normaliseHexKey(env), nil
	}
	if v, ok := k.cache.Load(ref); ok {
		return v.(string), nil
	}
	if k.ring == nil {
		return "", ErrKeystoreUnavailable
	}
	item, err := k.ring.Get(ref)
	switch {
	case errors.Is(err, keyring.ErrKeyNotFound):
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	case err != nil:
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	k.cache.Store(ref, string(item.Data))
	return string(item.Data), nil
}

// Delete removes a stored key. A missing key is not an error.
func (k *Keystore) Delete(ref string) error {
	k.cache.Delete(ref)
	if k.ring == nil {
		return nil
	}
	if err := k.ring.Remove(ref); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("keychain delete: %w", err)
	}
	return nil
}

// InMemoryKeystore keeps keys in a map. Tests use it in place of the
// keychain.
type InMemoryKeystore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewInMemoryKeystore() *InMemoryKeystore {
	return &InMemoryKeystore{data: make(map[string]string)}
}

func (k *InMemoryKeystore) Store(name, hexKey string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	ref := keyRef(name)
	k.data[ref] = hexKey
	return ref, nil
}

func (k *InMemoryKeystore) Retrieve(ref string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	return v, nil
}

func (k *InMemoryKeystore) Delete(ref string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, ref)
	return nil
}
