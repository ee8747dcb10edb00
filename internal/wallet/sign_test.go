package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarint(t *testing.T) {
	assert.Equal(t, []byte{0x00}, varint(0))
	assert.Equal(t, []byte{0xfc}, varint(0xfc))
	assert.Equal(t, []byte{0xfd, 0xfd, 0x00}, varint(0xfd))
	assert.Equal(t, []byte{0xfd, 0xff, 0xff}, varint(0xffff))
	assert.Equal(t, []byte{0xfe, 0x00, 0x00, 0x01, 0x00}, varint(0x10000))
	assert.Len(t, varint(1<<33), 9)
}

func TestMessageHashDependsOnMessage(t *testing.T) {
	a := MessageHash([]byte("hello"))
	b := MessageHash([]byte("hello!"))
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestSignAndVerifyMessage(t *testing.T) {
	mgr := NewManager(WithInMemoryStore(), WithKeystore(NewInMemoryKeystore()))
	w, err := mgr.AddWithKey("alice", "47382d0211f3bbb11812b5e60b696a93d7ad0a91cdeb2162f7d69d4adef48b5d")
	require.NoError(t, err)

	msg := []byte("Sign in to Bebek DApp")
	sig, err := SignMessage(w, mgr, msg)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	addr, err := VerifyMessage(msg, sig, false)
	require.NoError(t, err)
	assert.Equal(t, w.Address(false), addr)

	addr, err = VerifyMessage(msg, sig, true)
	require.NoError(t, err)
	assert.Equal(t, w.Address(true), addr)

	// A different message recovers some other key.
	other, err := VerifyMessage([]byte("tampered"), sig, false)
	if err == nil {
		assert.NotEqual(t, w.Address(false), other)
	}
}

func TestSignMessageWatchOnly(t *testing.T) {
	mgr := NewManager(WithInMemoryStore(), WithKeystore(NewInMemoryKeystore()))
	w, err := mgr.AddWatchOnly("watched", "ST2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKQYAC0RQ")
	require.NoError(t, err)

	_, err = SignMessage(w, mgr, []byte("hi"))
	assert.ErrorIs(t, err, ErrWatchOnly)
}

func TestVerifyMessageBadLength(t *testing.T) {
	_, err := VerifyMessage([]byte("x"), make([]byte, 64), false)
	assert.Error(t, err)
}
