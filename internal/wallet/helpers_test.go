package wallet_test

import (
	"encoding/hex"
	"strings"
)

func splitWords(s string) []string { return strings.Fields(s) }

func hexString(b []byte) string { return hex.EncodeToString(b) }
