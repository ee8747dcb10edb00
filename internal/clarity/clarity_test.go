package clarity

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testnetAddr = "ST2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKQYAC0RQ"
	sampleHash  = "a46ff88886c2ef9762d970b4d2c63678835bd39d"
)

func mustHex(t *testing.T, v Value) string {
	t.Helper()
	s, err := SerializeHex(v)
	require.NoError(t, err)
	return s
}

// ---------------------------------------------------------------------------
// Serialize: known vectors
// ---------------------------------------------------------------------------

func TestSerializeKnownVectors(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"uint 1", UInt64(1), "0x0100000000000000000000000000000001"},
		{"int -1", Int{V: big.NewInt(-1)}, "0x00ffffffffffffffffffffffffffffffff"},
		{"int 0", Int{V: big.NewInt(0)}, "0x0000000000000000000000000000000000"},
		{"true", Bool(true), "0x03"},
		{"false", Bool(false), "0x04"},
		{"none", None{}, "0x09"},
		{"ascii", StringASCII("hello"), "0x0d0000000568656c6c6f"},
		{"utf8 empty", StringUTF8(""), "0x0e00000000"},
		{"buffer", Buffer{0xde, 0xad}, "0x0200000002dead"},
		{"some uint", Some{Value: UInt64(5)}, "0x0a0100000000000000000000000000000005"},
		{"ok true", ResponseOk{Value: Bool(true)}, "0x0703"},
		{"err uint", ResponseErr{Value: UInt64(1)}, "0x080100000000000000000000000000000001"},
		{"list", List{Bool(true), Bool(false)}, "0x0b000000020304"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, mustHex(t, tc.v))
		})
	}
}

func TestSerializeStandardPrincipal(t *testing.T) {
	p, err := ParseStandardPrincipal(testnetAddr)
	require.NoError(t, err)
	assert.Equal(t, "0x051a"+sampleHash, mustHex(t, p))
}

func TestSerializeContractPrincipal(t *testing.T) {
	p, err := ParseContractID(testnetAddr + ".simple-token")
	require.NoError(t, err)
	want := "0x061a" + sampleHash + "0c" + hex.EncodeToString([]byte("simple-token"))
	assert.Equal(t, want, mustHex(t, p))
}

func TestSerializeTupleSortsKeys(t *testing.T) {
	tup := Tuple{"b": Bool(false), "a": Bool(true)}
	// 0c, count 2, "a" true, "b" false
	assert.Equal(t, "0x0c00000002016103016204", mustHex(t, tup))
}

func TestSerializeRejectsOutOfRange(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 128)
	_, err := Serialize(UInt{V: tooBig})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = Serialize(UInt{V: big.NewInt(-1)})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = NewUInt(tooBig)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = NewInt(new(big.Int).Lsh(big.NewInt(1), 127))
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestSerializeRejectsNonASCII(t *testing.T) {
	_, err := Serialize(StringASCII("héllo"))
	assert.ErrorIs(t, err, ErrNotASCII)
}

// ---------------------------------------------------------------------------
// Deserialize
// ---------------------------------------------------------------------------

func TestDeserializeRoundTrip(t *testing.T) {
	p, err := ParseContractID(testnetAddr + ".simple-token")
	require.NoError(t, err)

	values := []Value{
		UInt64(1_500_000),
		Int{V: big.NewInt(-42)},
		StringUTF8("héllo"),
		ResponseOk{Value: StringASCII("Bebek")},
		Some{Value: p},
		List{UInt64(1), UInt64(2)},
		Tuple{"owner": p.Issuer, "amount": UInt64(9)},
	}
	for _, v := range values {
		s := mustHex(t, v)
		got, err := DeserializeHex(s)
		require.NoError(t, err, s)
		assert.Equal(t, v.String(), got.String())
	}
}

func TestDeserializeAcceptsBareHex(t *testing.T) {
	v, err := DeserializeHex("0100000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, "u1", v.String())
}

func TestDeserializeRejectsMalformed(t *testing.T) {
	for _, s := range []string{
		"",
		"0x01",
		"0x0d00000005686c",
		"0xff",
		"0x0b7fffffff",
		"0x0304",
		"zz",
	} {
		_, err := DeserializeHex(s)
		assert.Error(t, err, s)
	}
}

func TestDeserializeDepthLimit(t *testing.T) {
	b := make([]byte, 0, 200)
	for range 100 {
		b = append(b, byte(TypeOptionalSome))
	}
	b = append(b, byte(TypeBoolTrue))
	_, err := Deserialize(b)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Repr
// ---------------------------------------------------------------------------

func TestStringRepr(t *testing.T) {
	p, err := ParseStandardPrincipal(testnetAddr)
	require.NoError(t, err)

	assert.Equal(t, "u10", UInt64(10).String())
	assert.Equal(t, "-3", Int{V: big.NewInt(-3)}.String())
	assert.Equal(t, "'"+testnetAddr, p.String())
	assert.Equal(t, `"abc"`, StringASCII("abc").String())
	assert.Equal(t, `u"abc"`, StringUTF8("abc").String())
	assert.Equal(t, "(ok u1)", ResponseOk{Value: UInt64(1)}.String())
	assert.Equal(t, "(list true false)", List{Bool(true), Bool(false)}.String())
	assert.Equal(t, "(tuple (a u1) (b none))", Tuple{"b": None{}, "a": UInt64(1)}.String())
}

// ---------------------------------------------------------------------------
// Decoding helpers
// ---------------------------------------------------------------------------

func TestUnwrap(t *testing.T) {
	v, err := Unwrap(ResponseOk{Value: Some{Value: UInt64(7)}})
	require.NoError(t, err)
	assert.Equal(t, "u7", v.String())

	v, err = Unwrap(None{})
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = Unwrap(ResponseErr{Value: UInt64(401)})
	var rerr *ResponseError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "contract returned (err u401)", err.Error())
}

func TestTypedGetters(t *testing.T) {
	s, err := AsString(ResponseOk{Value: StringASCII("Bebek Token")})
	require.NoError(t, err)
	assert.Equal(t, "Bebek Token", s)

	s, err = AsString(ResponseOk{Value: StringUTF8("BBK")})
	require.NoError(t, err)
	assert.Equal(t, "BBK", s)

	n, err := AsUint(ResponseOk{Value: UInt64(6)})
	require.NoError(t, err)
	assert.Equal(t, int64(6), n.Int64())

	p, err := ParseStandardPrincipal(testnetAddr)
	require.NoError(t, err)
	addr, err := AsPrincipal(ResponseOk{Value: p})
	require.NoError(t, err)
	assert.Equal(t, testnetAddr, addr)

	_, err = AsUint(ResponseOk{Value: StringASCII("x")})
	assert.ErrorIs(t, err, ErrUnexpectedType)

	_, err = AsString(None{})
	assert.ErrorIs(t, err, ErrUnexpectedType)
}

// ---------------------------------------------------------------------------
// Principal parsing
// ---------------------------------------------------------------------------

func TestParsePrincipal(t *testing.T) {
	v, err := ParsePrincipal(testnetAddr)
	require.NoError(t, err)
	assert.Equal(t, TypePrincipalStandard, v.Type())

	v, err = ParsePrincipal("'" + testnetAddr + ".simple-token")
	require.NoError(t, err)
	assert.Equal(t, TypePrincipalContract, v.Type())
	assert.Equal(t, testnetAddr+".simple-token", v.(ContractPrincipal).Address())
}

func TestParseContractIDRejectsShapes(t *testing.T) {
	for _, id := range []string{
		"",
		"noperiod",
		".name",
		testnetAddr + ".",
		testnetAddr + ".a.b",
		"NOTANADDRESS.simple-token",
	} {
		_, err := ParseContractID(id)
		assert.ErrorIs(t, err, ErrInvalidContract, id)
	}
}
