package clarity

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"
)

// maxDepth bounds nesting when decoding untrusted input.
const maxDepth = 64

// ErrTruncated is returned when input ends before a value is complete.
var ErrTruncated = errors.New("clarity: truncated input")

// Serialize encodes v in the consensus wire format.
func Serialize(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeHex is Serialize with a 0x-prefixed hex result, the format the
// read-only call API expects for arguments.
func SerializeHex(v Value) (string, error) {
	b, err := Serialize(v)
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(b), nil
}

// Deserialize decodes exactly one value from b. Trailing bytes are an error.
func Deserialize(b []byte) (Value, error) {
	r := bytes.NewReader(b)
	v, err := readValue(r, 0)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("clarity: %d trailing bytes", r.Len())
	}
	return v, nil
}

// DeserializeHex decodes a hex string with or without a 0x prefix.
func DeserializeHex(s string) (Value, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("clarity: decoding hex: %w", err)
	}
	return Deserialize(b)
}

// WritePrincipalBytes writes the version byte and hash160 of a standard
// principal. Transactions and post-conditions reuse this layout.
func WritePrincipalBytes(buf *bytes.Buffer, p StandardPrincipal) {
	buf.WriteByte(p.Version)
	buf.Write(p.Hash160[:])
}

// WriteName writes a one-byte length prefixed name (contract, function or
// asset name).
func WriteName(buf *bytes.Buffer, name string) error {
	if len(name) > 128 {
		return ErrNameTooLong
	}
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
	return nil
}

func writeValue(buf *bytes.Buffer, v Value) error {
	if v == nil {
		return errors.New("clarity: nil value")
	}
	buf.WriteByte(byte(v.Type()))

	switch val := v.(type) {
	case Int:
		if val.V == nil || val.V.Cmp(minInt128) < 0 || val.V.Cmp(maxInt128) > 0 {
			return ErrOutOfRange
		}
		n := new(big.Int).Set(val.V)
		if n.Sign() < 0 {
			n.Add(n, new(big.Int).Lsh(big.NewInt(1), 128))
		}
		buf.Write(n.FillBytes(make([]byte, 16)))

	case UInt:
		if val.V == nil || val.V.Sign() < 0 || val.V.Cmp(maxUint128) > 0 {
			return ErrOutOfRange
		}
		buf.Write(val.V.FillBytes(make([]byte, 16)))

	case Buffer:
		writeLen(buf, len(val))
		buf.Write(val)

	case Bool, None:
		// Type byte only.

	case StandardPrincipal:
		WritePrincipalBytes(buf, val)

	case ContractPrincipal:
		WritePrincipalBytes(buf, val.Issuer)
		if err := WriteName(buf, val.Name); err != nil {
			return err
		}

	case ResponseOk:
		return writeValue(buf, val.Value)
	case ResponseErr:
		return writeValue(buf, val.Value)
	case Some:
		return writeValue(buf, val.Value)

	case List:
		writeLen(buf, len(val))
		for _, item := range val {
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}

	case Tuple:
		writeLen(buf, len(val))
		for _, k := range val.Keys() {
			if err := WriteName(buf, k); err != nil {
				return err
			}
			if err := writeValue(buf, val[k]); err != nil {
				return err
			}
		}

	case StringASCII:
		if _, err := NewStringASCII(string(val)); err != nil {
			return err
		}
		writeLen(buf, len(val))
		buf.WriteString(string(val))

	case StringUTF8:
		writeLen(buf, len(val))
		buf.WriteString(string(val))

	default:
		return fmt.Errorf("clarity: cannot serialize %T", v)
	}
	return nil
}

func writeLen(buf *bytes.Buffer, n int) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(n))
	buf.Write(b[:])
}

func readValue(r *bytes.Reader, depth int) (Value, error) {
	if depth > maxDepth {
		return nil, errors.New("clarity: value nested too deeply")
	}
	tb, err := r.ReadByte()
	if err != nil {
		return nil, ErrTruncated
	}

	switch Type(tb) {
	case TypeInt:
		b, err := readN(r, 16)
		if err != nil {
			return nil, err
		}
		n := new(big.Int).SetBytes(b)
		if b[0]&0x80 != 0 {
			n.Sub(n, new(big.Int).Lsh(big.NewInt(1), 128))
		}
		return Int{V: n}, nil

	case TypeUInt:
		b, err := readN(r, 16)
		if err != nil {
			return nil, err
		}
		return UInt{V: new(big.Int).SetBytes(b)}, nil

	case TypeBuffer:
		b, err := readPrefixed(r)
		if err != nil {
			return nil, err
		}
		return Buffer(b), nil

	case TypeBoolTrue:
		return Bool(true), nil
	case TypeBoolFalse:
		return Bool(false), nil

	case TypePrincipalStandard:
		return readStandardPrincipal(r)

	case TypePrincipalContract:
		issuer, err := readStandardPrincipal(r)
		if err != nil {
			return nil, err
		}
		name, err := readName(r)
		if err != nil {
			return nil, err
		}
		return ContractPrincipal{Issuer: issuer, Name: name}, nil

	case TypeResponseOk, TypeResponseErr, TypeOptionalSome:
		inner, err := readValue(r, depth+1)
		if err != nil {
			return nil, err
		}
		switch Type(tb) {
		case TypeResponseOk:
			return ResponseOk{Value: inner}, nil
		case TypeResponseErr:
			return ResponseErr{Value: inner}, nil
		}
		return Some{Value: inner}, nil

	case TypeOptionalNone:
		return None{}, nil

	case TypeList:
		n, err := readLen(r)
		if err != nil {
			return nil, err
		}
		if int64(n) > int64(r.Len()) {
			return nil, ErrTruncated
		}
		list := make(List, 0, n)
		for range n {
			item, err := readValue(r, depth+1)
			if err != nil {
				return nil, err
			}
			list = append(list, item)
		}
		return list, nil

	case TypeTuple:
		n, err := readLen(r)
		if err != nil {
			return nil, err
		}
		if int64(n) > int64(r.Len()) {
			return nil, ErrTruncated
		}
		tuple := make(Tuple, n)
		for range n {
			k, err := readName(r)
			if err != nil {
				return nil, err
			}
			item, err := readValue(r, depth+1)
			if err != nil {
				return nil, err
			}
			tuple[k] = item
		}
		return tuple, nil

	case TypeStringASCII:
		b, err := readPrefixed(r)
		if err != nil {
			return nil, err
		}
		return NewStringASCII(string(b))

	case TypeStringUTF8:
		b, err := readPrefixed(r)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, errors.New("clarity: invalid utf-8 in string-utf8")
		}
		return StringUTF8(b), nil
	}

	return nil, fmt.Errorf("clarity: unknown type prefix 0x%02x", tb)
}

func readStandardPrincipal(r *bytes.Reader) (StandardPrincipal, error) {
	b, err := readN(r, 21)
	if err != nil {
		return StandardPrincipal{}, err
	}
	var p StandardPrincipal
	p.Version = b[0]
	copy(p.Hash160[:], b[1:])
	return p, nil
}

func readName(r *bytes.Reader) (string, error) {
	l, err := r.ReadByte()
	if err != nil {
		return "", ErrTruncated
	}
	if l > 128 {
		return "", ErrNameTooLong
	}
	b, err := readN(r, int(l))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readLen(r *bytes.Reader) (uint32, error) {
	b, err := readN(r, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func readPrefixed(r *bytes.Reader) ([]byte, error) {
	n, err := readLen(r)
	if err != nil {
		return nil, err
	}
	if int64(n) > int64(r.Len()) {
		return nil, ErrTruncated
	}
	return readN(r, int(n))
}

func readN(r *bytes.Reader, n int) ([]byte, error) {
	if n > r.Len() {
		return nil, ErrTruncated
	}
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil && n > 0 {
		return nil, ErrTruncated
	}
	return b, nil
}
