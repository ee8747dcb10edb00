package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"

	"github.com/Mohsinsiddi/stxtoken/internal/tx"
)

// StacksCoinType is the SLIP-44 coin type of STX.
const StacksCoinType = 5757

// ErrInvalidMnemonic is returned for a phrase that fails the BIP39 checksum.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// NewMnemonic returns a fresh 24-word BIP39 phrase.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// DeriveKey derives the account key at m/44'/5757'/account'/0/0, the path
// Stacks wallets use for their first address.
func DeriveKey(mnemonic, passphrase string, account uint32) (*ecdsa.PrivateKey, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed := bip39.NewSeed(mnemonic, passphrase)

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}
	path := []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + StacksCoinType,
		hdkeychain.HardenedKeyStart + account,
		0,
		0,
	}
	for _, idx := range path {
		if key, err = key.Derive(idx); err != nil {
			return nil, fmt.Errorf("deriving child %d: %w", idx, err)
		}
	}

	ec, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("extracting private key: %w", err)
	}
	return crypto.ToECDSA(ec.Serialize())
}

// ParsePrivateKey accepts a 32-byte hex key, optionally with the 01 suffix
// Stacks wallets append to mark a compressed public key.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	clean := normaliseHexKey(hexKey)
	if len(clean) == 66 && strings.HasSuffix(clean, "01") {
		clean = clean[:64]
	}
	if len(clean) != 64 {
		return nil, fmt.Errorf("%w: expected 64 hex characters (or 66 ending in 01)", ErrInvalidKey)
	}
	key, err := crypto.HexToECDSA(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}

// EncodePrivateKey returns the Stacks form of key: hex with the 01 suffix.
func EncodePrivateKey(key *ecdsa.PrivateKey) string {
	return hex.EncodeToString(crypto.FromECDSA(key)) + "01"
}

// PublicKeyHash returns hash160 of the compressed public key.
func PublicKeyHash(key *ecdsa.PrivateKey) []byte {
	return tx.Hash160(crypto.CompressPubkey(&key.PublicKey))
}

func normaliseHexKey(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}
