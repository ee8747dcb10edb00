// Package clarity models Clarity values and their consensus wire encoding.
package clarity

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/stxtoken/internal/c32"
)

// Type is the one-byte type prefix of a serialized Clarity value.
type Type byte

// Type prefixes.
const (
	TypeInt               Type = 0x00
	TypeUInt              Type = 0x01
	TypeBuffer            Type = 0x02
	TypeBoolTrue          Type = 0x03
	TypeBoolFalse         Type = 0x04
	TypePrincipalStandard Type = 0x05
	TypePrincipalContract Type = 0x06
	TypeResponseOk        Type = 0x07
	TypeResponseErr       Type = 0x08
	TypeOptionalNone      Type = 0x09
	TypeOptionalSome      Type = 0x0a
	TypeList              Type = 0x0b
	TypeTuple             Type = 0x0c
	TypeStringASCII       Type = 0x0d
	TypeStringUTF8        Type = 0x0e
)

var typeNames = map[Type]string{
	TypeInt:               "int",
	TypeUInt:              "uint",
	TypeBuffer:            "buffer",
	TypeBoolTrue:          "true",
	TypeBoolFalse:         "false",
	TypePrincipalStandard: "standard-principal",
	TypePrincipalContract: "contract-principal",
	TypeResponseOk:        "ok",
	TypeResponseErr:       "err",
	TypeOptionalNone:      "none",
	TypeOptionalSome:      "some",
	TypeList:              "list",
	TypeTuple:             "tuple",
	TypeStringASCII:       "string-ascii",
	TypeStringUTF8:        "string-utf8",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("type(0x%02x)", byte(t))
}

// Value is any Clarity value. String returns the Clarity repr.
type Value interface {
	Type() Type
	String() string
}

// Errors.
var (
	ErrOutOfRange      = errors.New("clarity: integer out of range")
	ErrNameTooLong     = errors.New("clarity: name longer than 128 bytes")
	ErrNotASCII        = errors.New("clarity: string-ascii contains non-ascii byte")
	ErrInvalidContract = errors.New("clarity: invalid contract identifier")
)

var (
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	maxInt128  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// ── integers ──────────────────────────────────────────────────────────────────

// Int is a signed 128-bit integer.
type Int struct{ V *big.Int }

// UInt is an unsigned 128-bit integer.
type UInt struct{ V *big.Int }

// NewInt returns an Int, or ErrOutOfRange outside the i128 range.
func NewInt(v *big.Int) (Int, error) {
	if v == nil || v.Cmp(minInt128) < 0 || v.Cmp(maxInt128) > 0 {
		return Int{}, ErrOutOfRange
	}
	return Int{V: new(big.Int).Set(v)}, nil
}

// NewUInt returns a UInt, or ErrOutOfRange outside the u128 range.
func NewUInt(v *big.Int) (UInt, error) {
	if v == nil || v.Sign() < 0 || v.Cmp(maxUint128) > 0 {
		return UInt{}, ErrOutOfRange
	}
	return UInt{V: new(big.Int).Set(v)}, nil
}

// UInt64 is a convenience UInt constructor.
func UInt64(v uint64) UInt { return UInt{V: new(big.Int).SetUint64(v)} }

func (Int) Type() Type       { return TypeInt }
func (v Int) String() string { return v.V.String() }

func (UInt) Type() Type       { return TypeUInt }
func (v UInt) String() string { return "u" + v.V.String() }

// ── buffers, bools, strings ───────────────────────────────────────────────────

// Buffer is a byte buffer.
type Buffer []byte

func (Buffer) Type() Type       { return TypeBuffer }
func (b Buffer) String() string { return "0x" + hex.EncodeToString(b) }

// Bool is a boolean.
type Bool bool

func (b Bool) Type() Type {
	if b {
		return TypeBoolTrue
	}
	return TypeBoolFalse
}

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// StringASCII is an ASCII string.
type StringASCII string

// NewStringASCII validates s as ASCII.
func NewStringASCII(s string) (StringASCII, error) {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return "", ErrNotASCII
		}
	}
	return StringASCII(s), nil
}

func (StringASCII) Type() Type       { return TypeStringASCII }
func (s StringASCII) String() string { return strconv.Quote(string(s)) }

// StringUTF8 is a UTF-8 string.
type StringUTF8 string

func (StringUTF8) Type() Type       { return TypeStringUTF8 }
func (s StringUTF8) String() string { return "u" + strconv.Quote(string(s)) }

// ── principals ────────────────────────────────────────────────────────────────

// StandardPrincipal is an account principal.
type StandardPrincipal struct {
	Version byte
	Hash160 [20]byte
}

// Address returns the c32check address.
func (p StandardPrincipal) Address() string {
	addr, err := c32.Address(p.Version, p.Hash160[:])
	if err != nil {
		return ""
	}
	return addr
}

func (StandardPrincipal) Type() Type       { return TypePrincipalStandard }
func (p StandardPrincipal) String() string { return "'" + p.Address() }

// ContractPrincipal is a contract principal (issuer.name).
type ContractPrincipal struct {
	Issuer StandardPrincipal
	Name   string
}

// Address returns "issuer.name".
func (p ContractPrincipal) Address() string { return p.Issuer.Address() + "." + p.Name }

func (ContractPrincipal) Type() Type       { return TypePrincipalContract }
func (p ContractPrincipal) String() string { return "'" + p.Address() }

// ── responses and optionals ───────────────────────────────────────────────────

// ResponseOk wraps a successful response.
type ResponseOk struct{ Value Value }

// ResponseErr wraps an error response.
type ResponseErr struct{ Value Value }

// None is the empty optional.
type None struct{}

// Some wraps a present optional.
type Some struct{ Value Value }

func (ResponseOk) Type() Type        { return TypeResponseOk }
func (r ResponseOk) String() string  { return "(ok " + r.Value.String() + ")" }
func (ResponseErr) Type() Type       { return TypeResponseErr }
func (r ResponseErr) String() string { return "(err " + r.Value.String() + ")" }
func (None) Type() Type              { return TypeOptionalNone }
func (None) String() string          { return "none" }
func (Some) Type() Type              { return TypeOptionalSome }
func (s Some) String() string        { return "(some " + s.Value.String() + ")" }

// ── composites ────────────────────────────────────────────────────────────────

// List is a homogeneous list.
type List []Value

func (List) Type() Type { return TypeList }

func (l List) String() string {
	parts := make([]string, 0, len(l)+1)
	parts = append(parts, "list")
	for _, v := range l {
		parts = append(parts, v.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Tuple is a named-field record. Fields serialize in lexicographic key order.
type Tuple map[string]Value

func (Tuple) Type() Type { return TypeTuple }

// Keys returns the tuple keys in wire order.
func (t Tuple) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t Tuple) String() string {
	parts := []string{"tuple"}
	for _, k := range t.Keys() {
		parts = append(parts, "("+k+" "+t[k].String()+")")
	}
	return "(" + strings.Join(parts, " ") + ")"
}
