package tx

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck

	"github.com/Mohsinsiddi/stxtoken/internal/clarity"
)

// ErrUnsigned is returned when a signed form is requested before Sign.
var ErrUnsigned = errors.New("transaction is not signed")

// ContractCallRequest is what a caller hands to a wallet: the call to make
// and the guarantees it must carry. The wallet fills in nonce, fee and
// signature.
type ContractCallRequest struct {
	Contract          clarity.ContractPrincipal
	FunctionName      string
	FunctionArgs      []clarity.Value
	PostConditions    []FungiblePostCondition
	PostConditionMode PostConditionMode
}

// ContractID returns "ADDR.name" of the target contract.
func (r ContractCallRequest) ContractID() string { return r.Contract.Address() }

// Transaction is a single-sig, standard-auth contract call.
type Transaction struct {
	Params    Params
	Signer    [20]byte
	Nonce     uint64
	Fee       uint64
	Signature [65]byte
	Call      ContractCallRequest

	signed bool
}

// NewContractCall builds an unsigned transaction for req, paid for by the
// owner of pubKey (33-byte compressed).
func NewContractCall(p Params, req ContractCallRequest, pubKey []byte, nonce, fee uint64) (*Transaction, error) {
	if len(pubKey) != 33 {
		return nil, fmt.Errorf("public key must be 33 compressed bytes, got %d", len(pubKey))
	}
	if req.PostConditionMode == 0 {
		req.PostConditionMode = PostConditionModeDeny
	}
	t := &Transaction{Params: p, Nonce: nonce, Fee: fee, Call: req}
	copy(t.Signer[:], Hash160(pubKey))
	return t, nil
}

// Serialize encodes the transaction, signed or not.
func (t *Transaction) Serialize() ([]byte, error) {
	return t.encode(t.Nonce, t.Fee, t.Signature)
}

// Sign signs the transaction in place with priv.
func (t *Transaction) Sign(priv *ecdsa.PrivateKey) error {
	pub := crypto.CompressPubkey(&priv.PublicKey)
	if !bytes.Equal(Hash160(pub), t.Signer[:]) {
		return errors.New("signing key does not match the transaction signer")
	}

	presign, err := t.presignHash()
	if err != nil {
		return err
	}

	sig, err := crypto.Sign(presign[:], priv)
	if err != nil {
		return fmt.Errorf("signing transaction: %w", err)
	}

	// R || S || V -> V || R || S
	t.Signature[0] = sig[64]
	copy(t.Signature[1:], sig[:64])
	t.signed = true
	return nil
}

// Verify checks that the signature recovers to the signer hash.
func (t *Transaction) Verify() error {
	if !t.signed {
		return ErrUnsigned
	}
	presign, err := t.presignHash()
	if err != nil {
		return err
	}
	rsv := make([]byte, 65)
	copy(rsv, t.Signature[1:])
	rsv[64] = t.Signature[0]
	pub, err := crypto.SigToPub(presign[:], rsv)
	if err != nil {
		return fmt.Errorf("recovering signer: %w", err)
	}
	if !bytes.Equal(Hash160(crypto.CompressPubkey(pub)), t.Signer[:]) {
		return errors.New("signature does not match signer")
	}
	return nil
}

// Signed reports whether Sign has completed.
func (t *Transaction) Signed() bool { return t.signed }

// TxID returns the hex transaction id of the signed transaction.
func (t *Transaction) TxID() (string, error) {
	if !t.signed {
		return "", ErrUnsigned
	}
	raw, err := t.Serialize()
	if err != nil {
		return "", err
	}
	sum := sha512.Sum512_256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// presignHash commits to the transaction with its auth cleared, then to the
// auth type, fee and nonce.
func (t *Transaction) presignHash() ([32]byte, error) {
	cleared, err := t.encode(0, 0, [65]byte{})
	if err != nil {
		return [32]byte{}, err
	}
	initial := sha512.Sum512_256(cleared)

	var pre bytes.Buffer
	pre.Write(initial[:])
	pre.WriteByte(AuthStandard)
	writeU64(&pre, t.Fee)
	writeU64(&pre, t.Nonce)
	return sha512.Sum512_256(pre.Bytes()), nil
}

func (t *Transaction) encode(nonce, fee uint64, sig [65]byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(t.Params.TxVersion)
	var chain [4]byte
	binary.BigEndian.PutUint32(chain[:], t.Params.ChainID)
	buf.Write(chain[:])

	// Authorization: one single-sig spending condition.
	buf.WriteByte(AuthStandard)
	buf.WriteByte(HashModeP2PKH)
	buf.Write(t.Signer[:])
	writeU64(&buf, nonce)
	writeU64(&buf, fee)
	buf.WriteByte(KeyEncodingCompressed)
	buf.Write(sig[:])

	buf.WriteByte(AnchorModeAny)
	buf.WriteByte(byte(t.Call.PostConditionMode))

	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(t.Call.PostConditions)))
	buf.Write(n[:])
	for _, pc := range t.Call.PostConditions {
		if err := pc.encode(&buf); err != nil {
			return nil, err
		}
	}

	buf.WriteByte(PayloadContractCall)
	clarity.WritePrincipalBytes(&buf, t.Call.Contract.Issuer)
	if err := clarity.WriteName(&buf, t.Call.Contract.Name); err != nil {
		return nil, err
	}
	if err := clarity.WriteName(&buf, t.Call.FunctionName); err != nil {
		return nil, err
	}
	binary.BigEndian.PutUint32(n[:], uint32(len(t.Call.FunctionArgs)))
	buf.Write(n[:])
	for _, arg := range t.Call.FunctionArgs {
		b, err := clarity.Serialize(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", arg, err)
		}
		buf.Write(b)
	}
	return buf.Bytes(), nil
}

// Hash160 is RIPEMD160(SHA256(b)), the account hash of a public key.
func Hash160(b []byte) []byte {
	s := sha256.Sum256(b)
	r := ripemd160.New()
	r.Write(s[:])
	return r.Sum(nil)
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}
