package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Mohsinsiddi/stxtoken/internal/c32"
)

// Wallet types.
const (
	TypeWatchOnly = "watch-only"
	TypeSigning   = "signing"
)

// Errors.
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidKey     = errors.New("invalid private key")
	ErrWatchOnly      = errors.New("wallet is watch-only and cannot sign")
)

// Wallet holds metadata for a single Stacks account. The same key hash
// backs both its mainnet and testnet address.
type Wallet struct {
	Name      string `json:"name"`
	Hash160   string `json:"hash160"`
	Type      string `json:"type"`
	KeyRef    string `json:"key_ref,omitempty"` // keychain reference for signing wallets
	Source    string `json:"source,omitempty"`  // "generated" | "key" | "mnemonic" | "address"
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
}

// Address returns the wallet's address for a network.
func (w *Wallet) Address(mainnet bool) string {
	version := c32.VersionTestnetSingleSig
	if mainnet {
		version = c32.VersionMainnetSingleSig
	}
	addr, err := c32.AddressFromHex(version, w.Hash160)
	if err != nil {
		return ""
	}
	return addr
}

// Addresses returns both network addresses of the wallet.
func (w *Wallet) Addresses() Addresses {
	return Addresses{Mainnet: w.Address(true), Testnet: w.Address(false)}
}

// CanSign reports whether the wallet holds a key.
func (w *Wallet) CanSign() bool { return w.Type == TypeSigning }

// Store is an interface for persisting wallets.
type Store interface {
	Load() ([]*Wallet, error)
	Save([]*Wallet) error
}

// Manager handles wallet CRUD.
type Manager struct {
	store   Store
	keys    KeystoreBackend
	wallets map[string]*Wallet
	loaded  bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithInMemoryStore uses an in-memory store (useful for tests).
func WithInMemoryStore() Option {
	return func(m *Manager) {
		m.store = &memStore{}
	}
}

// WithStore sets a custom store.
func WithStore(s Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithKeystore sets where private keys live. Defaults to the OS keychain.
func WithKeystore(ks KeystoreBackend) Option {
	return func(m *Manager) {
		m.keys = ks
	}
}

// NewManager creates a new wallet manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		wallets: make(map[string]*Wallet),
		store:   &memStore{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add registers a watch-only (or pre-built) wallet.
func (m *Manager) Add(name string, w *Wallet) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, exists := m.wallets[name]; exists {
		return ErrWalletExists
	}
	w.Name = name
	if w.CreatedAt == "" {
		w.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	m.wallets[name] = w
	return m.persist()
}

// AddWatchOnly registers an address without a key.
func (m *Manager) AddWatchOnly(name, address string) (*Wallet, error) {
	_, h, err := c32.ParseAddress(address)
	if err != nil {
		return nil, err
	}
	w := &Wallet{Hash160: hex.EncodeToString(h), Type: TypeWatchOnly, Source: "address"}
	if err := m.Add(name, w); err != nil {
		return nil, err
	}
	return w, nil
}

// AddWithKey imports a hex private key and stores it in the keystore.
func (m *Manager) AddWithKey(name, hexKey string) (*Wallet, error) {
	key, err := ParsePrivateKey(hexKey)
	if err != nil {
		return nil, err
	}
	return m.addKey(name, key, "key")
}

// Generate creates a new mnemonic-backed wallet and returns the phrase.
// The phrase is not stored; only the derived key is.
func (m *Manager) Generate(name string) (*Wallet, string, error) {
	mnemonic, err := NewMnemonic()
	if err != nil {
		return nil, "", fmt.Errorf("generating mnemonic: %w", err)
	}
	key, err := DeriveKey(mnemonic, "", 0)
	if err != nil {
		return nil, "", err
	}
	w, err := m.addKey(name, key, "generated")
	if err != nil {
		return nil, "", err
	}
	return w, mnemonic, nil
}

// ImportMnemonic derives the account key from a BIP39 phrase.
func (m *Manager) ImportMnemonic(name, mnemonic, passphrase string, account uint32) (*Wallet, error) {
	key, err := DeriveKey(mnemonic, passphrase, account)
	if err != nil {
		return nil, err
	}
	return m.addKey(name, key, "mnemonic")
}

// ExportKey returns the stored private key of a signing wallet.
func (m *Manager) ExportKey(name string) (string, error) {
	w, err := m.Get(name)
	if err != nil {
		return "", err
	}
	if !w.CanSign() {
		return "", ErrWatchOnly
	}
	return m.keystore().Retrieve(w.KeyRef)
}

// PrivateKey loads and parses the key of a signing wallet.
func (m *Manager) PrivateKey(w *Wallet) (*ecdsa.PrivateKey, error) {
	if !w.CanSign() {
		return nil, fmt.Errorf("%q: %w", w.Name, ErrWatchOnly)
	}
	hexKey, err := m.keystore().Retrieve(w.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	return ParsePrivateKey(hexKey)
}

// Get returns a wallet by name.
func (m *Manager) Get(name string) (*Wallet, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	w, ok := m.wallets[name]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return w, nil
}

// Remove deletes a wallet by name, and its key if it has one.
func (m *Manager) Remove(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	w, ok := m.wallets[name]
	if !ok {
		return ErrWalletNotFound
	}
	if w.KeyRef != "" {
		if err := m.keystore().Delete(w.KeyRef); err != nil {
			return fmt.Errorf("deleting key: %w", err)
		}
	}
	delete(m.wallets, name)
	return m.persist()
}

// List returns all wallets sorted by name.
func (m *Manager) List() []*Wallet {
	m.load() //nolint:errcheck
	out := make([]*Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetDefault marks a wallet as the default.
func (m *Manager) SetDefault(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, ok := m.wallets[name]; !ok {
		return ErrWalletNotFound
	}
	for _, w := range m.wallets {
		w.IsDefault = w.Name == name
	}
	return m.persist()
}

// Default returns the default wallet, or nil if none.
func (m *Manager) Default() *Wallet {
	m.load() //nolint:errcheck
	for _, w := range m.wallets {
		if w.IsDefault {
			return w
		}
	}
	// Fallback: return first wallet if only one exists.
	if len(m.wallets) == 1 {
		for _, w := range m.wallets {
			return w
		}
	}
	return nil
}

// --- internal ---

func (m *Manager) addKey(name string, key *ecdsa.PrivateKey, source string) (*Wallet, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	if _, exists := m.wallets[name]; exists {
		return nil, ErrWalletExists
	}

	ref, err := m.keystore().Store(name, EncodePrivateKey(key))
	if err != nil {
		return nil, fmt.Errorf("storing key: %w", err)
	}

	w := &Wallet{
		Name:      name,
		Hash160:   hex.EncodeToString(PublicKeyHash(key)),
		Type:      TypeSigning,
		KeyRef:    ref,
		Source:    source,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	m.wallets[name] = w
	return w, m.persist()
}

func (m *Manager) keystore() KeystoreBackend {
	if m.keys == nil {
		m.keys = DefaultKeystore("")
	}
	return m.keys
}

func (m *Manager) load() error {
	if m.loaded {
		return nil
	}
	wallets, err := m.store.Load()
	if err != nil {
		return err
	}
	for _, w := range wallets {
		m.wallets[w.Name] = w
	}
	m.loaded = true
	return nil
}

func (m *Manager) persist() error {
	wallets := make([]*Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		wallets = append(wallets, w)
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].Name < wallets[j].Name })
	return m.store.Save(wallets)
}

// --- in-memory store ---

type memStore struct {
	wallets []*Wallet
}

func (s *memStore) Load() ([]*Wallet, error) {
	return s.wallets, nil
}

func (s *memStore) Save(wallets []*Wallet) error {
	s.wallets = wallets
	return nil
}

// --- JSON file store ---

// JSONStore persists wallets to a JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed wallet store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load() ([]*Wallet, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var wallets []*Wallet
	if err := json.Unmarshal(data, &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

func (s *JSONStore) Save(wallets []*Wallet) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(wallets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
