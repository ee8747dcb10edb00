package fixtures

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func dir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}

// Hiro loads a recorded Hiro API response body.
func Hiro(t *testing.T, filename string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir(), "hiro", filename))
	require.NoError(t, err, "failed to load Hiro fixture: %s", filename)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

// TokenReads loads a read-only function name to serialized Clarity result
// table for a SIP-010 token.
func TokenReads(t *testing.T, filename string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir(), "hiro", filename))
	require.NoError(t, err, "failed to load token fixture: %s", filename)

	var reads map[string]string
	require.NoError(t, json.Unmarshal(data, &reads))
	return reads
}
