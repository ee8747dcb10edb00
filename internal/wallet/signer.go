package wallet

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Mohsinsiddi/stxtoken/internal/tx"
)

// Signer builds and signs transactions for one signing wallet.
type Signer struct {
	wallet *Wallet
	mgr    *Manager
}

// NewSigner creates a signer for the given wallet.
func NewSigner(w *Wallet, mgr *Manager) *Signer {
	return &Signer{wallet: w, mgr: mgr}
}

// SignContractCall builds a contract call from req, signs it and returns the
// signed transaction.
func (s *Signer) SignContractCall(p tx.Params, req tx.ContractCallRequest, nonce, fee uint64) (*tx.Transaction, error) {
	if !s.wallet.CanSign() {
		return nil, fmt.Errorf("%q: %w", s.wallet.Name, ErrWatchOnly)
	}

	key, err := s.mgr.PrivateKey(s.wallet)
	if err != nil {
		return nil, err
	}

	t, err := tx.NewContractCall(p, req, crypto.CompressPubkey(&key.PublicKey), nonce, fee)
	if err != nil {
		return nil, fmt.Errorf("building transaction: %w", err)
	}
	if err := t.Sign(key); err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	if err := t.Verify(); err != nil {
		return nil, fmt.Errorf("verifying signature: %w", err)
	}
	return t, nil
}

// Address returns the wallet's address for a network.
func (s *Signer) Address(mainnet bool) string {
	return s.wallet.Address(mainnet)
}
