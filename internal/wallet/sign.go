package wallet

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Mohsinsiddi/stxtoken/internal/c32"
	"github.com/Mohsinsiddi/stxtoken/internal/tx"
)

const messagePrefix = "\x17Stacks Signed Message:\n"

// SignMessage signs a message the way Stacks wallets do for off-chain
// proofs of ownership. The message is prefixed with
// "\x17Stacks Signed Message:\n<varint len>" before hashing.
// Returns a 65-byte signature (R || S || V).
func SignMessage(w *Wallet, mgr *Manager, message []byte) ([]byte, error) {
	key, err := mgr.PrivateKey(w)
	if err != nil {
		return nil, err
	}

	sig, err := crypto.Sign(MessageHash(message), key)
	if err != nil {
		return nil, fmt.Errorf("signing message: %w", err)
	}
	return sig, nil
}

// VerifyMessage recovers the signer of an RSV signature and returns its
// address for the given network.
func VerifyMessage(message, sig []byte, mainnet bool) (string, error) {
	if len(sig) != 65 {
		return "", fmt.Errorf("invalid signature length: expected 65 bytes, got %d", len(sig))
	}

	pub, err := crypto.SigToPub(MessageHash(message), sig)
	if err != nil {
		return "", fmt.Errorf("recovering signer: %w", err)
	}

	version := c32.VersionTestnetSingleSig
	if mainnet {
		version = c32.VersionMainnetSingleSig
	}
	return c32.Address(version, tx.Hash160(crypto.CompressPubkey(pub)))
}

// messageHash returns sha256 of the prefixed message.
func MessageHash(message []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(messagePrefix)
	buf.Write(varint(uint64(len(message))))
	buf.Write(message)
	sum := sha256.Sum256(buf.Bytes())
	return sum[:]
}

// varint is the Bitcoin CompactSize encoding.
func varint(n uint64) []byte {
	switch {
	case n < 0xfd:
		return []byte{byte(n)}
	case n <= 0xffff:
		b := []byte{0xfd, 0, 0}
		binary.LittleEndian.PutUint16(b[1:], uint16(n))
		return b
	case n <= 0xffffffff:
		b := []byte{0xfe, 0, 0, 0, 0}
		binary.LittleEndian.PutUint32(b[1:], uint32(n))
		return b
	}
	b := make([]byte, 9)
	b[0] = 0xff
	binary.LittleEndian.PutUint64(b[1:], n)
	return b
}
