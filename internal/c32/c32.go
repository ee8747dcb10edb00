// Package c32 implements the c32check encoding used for Stacks addresses.
package c32

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Alphabet is the c32 (Crockford base32) digit set.
const Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// Address versions for single-sig (P2PKH) accounts.
const (
	VersionMainnetSingleSig byte = 22 // SP...
	VersionMainnetMultiSig  byte = 20 // SM...
	VersionTestnetSingleSig byte = 26 // ST...
	VersionTestnetMultiSig  byte = 21 // SN...
)

// Errors.
var (
	ErrInvalidChar     = errors.New("invalid c32 character")
	ErrInvalidChecksum = errors.New("invalid c32check checksum")
	ErrInvalidAddress  = errors.New("invalid stacks address")
)

var thirtyTwo = big.NewInt(32)

// Encode encodes data as a c32 string. Each leading zero byte becomes a
// leading '0' digit.
func Encode(data []byte) string {
	zeros := 0
	for zeros < len(data) && data[zeros] == 0 {
		zeros++
	}

	n := new(big.Int).SetBytes(data)
	mod := new(big.Int)
	var out []byte
	for n.Sign() > 0 {
		n.DivMod(n, thirtyTwo, mod)
		out = append(out, Alphabet[mod.Int64()])
	}
	for range zeros {
		out = append(out, '0')
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// Decode reverses Encode. Input is normalized: lower case is accepted,
// O is read as 0 and I/L as 1.
func Decode(s string) ([]byte, error) {
	s = normalize(s)

	zeros := 0
	for zeros < len(s) && s[zeros] == '0' {
		zeros++
	}

	n := new(big.Int)
	for i := zeros; i < len(s); i++ {
		idx := strings.IndexByte(Alphabet, s[i])
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidChar, s[i])
		}
		n.Mul(n, thirtyTwo)
		n.Add(n, big.NewInt(int64(idx)))
	}

	out := make([]byte, zeros, zeros+len(n.Bytes()))
	return append(out, n.Bytes()...), nil
}

// CheckEncode returns the version digit followed by c32(data || checksum).
func CheckEncode(version byte, data []byte) (string, error) {
	if version >= 32 {
		return "", fmt.Errorf("invalid version %d: must be < 32", version)
	}
	payload := make([]byte, 0, len(data)+4)
	payload = append(payload, data...)
	payload = append(payload, checksum(version, data)...)
	return string(Alphabet[version]) + Encode(payload), nil
}

// CheckDecode reverses CheckEncode.
func CheckDecode(s string) (byte, []byte, error) {
	s = normalize(s)
	if len(s) < 2 {
		return 0, nil, fmt.Errorf("%w: too short", ErrInvalidAddress)
	}
	version := strings.IndexByte(Alphabet, s[0])
	if version < 0 {
		return 0, nil, fmt.Errorf("%w: %q", ErrInvalidChar, s[0])
	}
	payload, err := Decode(s[1:])
	if err != nil {
		return 0, nil, err
	}
	if len(payload) < 4 {
		return 0, nil, fmt.Errorf("%w: too short", ErrInvalidAddress)
	}
	data, sum := payload[:len(payload)-4], payload[len(payload)-4:]
	if !bytes.Equal(sum, checksum(byte(version), data)) {
		return 0, nil, ErrInvalidChecksum
	}
	return byte(version), data, nil
}

// Address builds a Stacks address from a version and a 20-byte hash160.
func Address(version byte, hash160 []byte) (string, error) {
	if len(hash160) != 20 {
		return "", fmt.Errorf("%w: hash160 must be 20 bytes, got %d", ErrInvalidAddress, len(hash160))
	}
	enc, err := CheckEncode(version, hash160)
	if err != nil {
		return "", err
	}
	return "S" + enc, nil
}

// AddressFromHex is Address with a hex-encoded hash160.
func AddressFromHex(version byte, hash160Hex string) (string, error) {
	h, err := hex.DecodeString(strings.TrimPrefix(hash160Hex, "0x"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return Address(version, h)
}

// ParseAddress decodes a Stacks address into its version and hash160.
func ParseAddress(addr string) (byte, []byte, error) {
	if len(addr) < 5 || (addr[0] != 'S' && addr[0] != 's') {
		return 0, nil, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	version, data, err := CheckDecode(addr[1:])
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(data) != 20 {
		return 0, nil, fmt.Errorf("%w: hash160 is %d bytes", ErrInvalidAddress, len(data))
	}
	return version, data, nil
}

// IsValid reports whether addr decodes with a correct checksum.
func IsValid(addr string) bool {
	_, _, err := ParseAddress(addr)
	return err == nil
}

// ConvertVersion re-encodes addr under another version, e.g. to map a
// testnet address onto its mainnet twin.
func ConvertVersion(addr string, version byte) (string, error) {
	_, h, err := ParseAddress(addr)
	if err != nil {
		return "", err
	}
	return Address(version, h)
}

func checksum(version byte, data []byte) []byte {
	first := sha256.Sum256(append([]byte{version}, data...))
	second := sha256.Sum256(first[:])
	return second[:4]
}

func normalize(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "O", "0")
	s = strings.ReplaceAll(s, "L", "1")
	return strings.ReplaceAll(s, "I", "1")
}
