package wallet

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      keychainService,
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: keyring.FixedStringPrompt("testpass"),
	})
	require.NoError(t, err)
	return &Keystore{ring: ring}
}

// ---------------------------------------------------------------------------
// normaliseHexKey
// ---------------------------------------------------------------------------

func TestNormaliseHexKeyStripsPrefix(t *testing.T) {
	assert.Equal(t, "abc123", normaliseHexKey("0xabc123"))
}

func TestNormaliseHexKeyStripsUpperPrefix(t *testing.T) {
	assert.Equal(t, "abc123", normaliseHexKey("0Xabc123"))
}

func TestNormaliseHexKeyTrimsWhitespace(t *testing.T) {
	assert.Equal(t, "abc", normaliseHexKey("  0xabc  "))
}

func TestNormaliseHexKeyEmpty(t *testing.T) {
	assert.Equal(t, "", normaliseHexKey(""))
	assert.Equal(t, "", normaliseHexKey("0x"))
}

// ---------------------------------------------------------------------------
// Keystore with the file backend
// ---------------------------------------------------------------------------

func TestKeystoreStoreRetrieve(t *testing.T) {
	t.Setenv(EnvKey, "")
	ks := testKeystore(t)

	ref, err := ks.Store("alice", "deadbeef01")
	require.NoError(t, err)
	assert.Equal(t, "stxtoken.alice", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef01", got)
}

func TestKeystoreRetrieveBypassesCacheAfterRestart(t *testing.T) {
	t.Setenv(EnvKey, "")
	ks := testKeystore(t)
	ref, err := ks.Store("bob", "cafe")
	require.NoError(t, err)

	ks.cache.Delete(ref)
	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "cafe", got)
}

func TestKeystoreDelete(t *testing.T) {
	t.Setenv(EnvKey, "")
	ks := testKeystore(t)
	ref, err := ks.Store("carol", "beef")
	require.NoError(t, err)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// Deleting twice is fine.
	assert.NoError(t, ks.Delete(ref))
}

func TestKeystoreRetrieveEnvVarOverride(t *testing.T) {
	const testKey = "0x47382d0211f3bbb11812b5e60b696a93d7ad0a91cdeb2162f7d69d4adef48b5d"
	t.Setenv(EnvKey, testKey)

	ks := &Keystore{ring: nil}
	got, err := ks.Retrieve("stxtoken.any-ref")
	require.NoError(t, err)
	assert.Equal(t, testKey[2:], got)
}

func TestKeystoreNilRing(t *testing.T) {
	t.Setenv(EnvKey, "")
	ks := &Keystore{ring: nil}

	_, err := ks.Store("x", "y")
	assert.ErrorIs(t, err, ErrKeystoreUnavailable)
	_, err = ks.Retrieve("stxtoken.ghost")
	assert.ErrorIs(t, err, ErrKeystoreUnavailable)
	assert.NoError(t, ks.Delete("stxtoken.ghost"))
}

func TestInMemoryKeystore(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, err := ks.Store("m", "k")
	require.NoError(t, err)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "k", got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFilePasswordFromEnv(t *testing.T) {
	t.Setenv(EnvKeystorePassword, "hunter2")
	pw, err := filePassword("unused")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)
}

func TestDefaultKeystoreFileBackendWithEnvPassword(t *testing.T) {
	t.Setenv(EnvKey, "")
	t.Setenv(EnvKeystorePassword, "hunter2")

	ks := DefaultKeystore(t.TempDir())
	require.NotNil(t, ks.ring)
}
