package clarity

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/stxtoken/internal/c32"
)

// ParseStandardPrincipal decodes a c32check account address.
func ParseStandardPrincipal(addr string) (StandardPrincipal, error) {
	version, h, err := c32.ParseAddress(addr)
	if err != nil {
		return StandardPrincipal{}, err
	}
	var p StandardPrincipal
	p.Version = version
	copy(p.Hash160[:], h)
	return p, nil
}

// ParsePrincipal accepts "ADDR" or "ADDR.contract-name" and returns the
// matching principal value.
func ParsePrincipal(s string) (Value, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "'")
	if strings.Contains(s, ".") {
		return ParseContractID(s)
	}
	return ParseStandardPrincipal(s)
}

// ParseContractID parses "ADDR.name". It requires exactly one dot with a
// non-empty side on each end, and a valid issuer address.
func ParseContractID(id string) (ContractPrincipal, error) {
	addr, name, err := SplitContractID(id)
	if err != nil {
		return ContractPrincipal{}, err
	}
	if len(name) > 128 {
		return ContractPrincipal{}, ErrNameTooLong
	}
	issuer, err := ParseStandardPrincipal(addr)
	if err != nil {
		return ContractPrincipal{}, fmt.Errorf("%w: %v", ErrInvalidContract, err)
	}
	return ContractPrincipal{Issuer: issuer, Name: name}, nil
}

// SplitContractID splits "ADDR.name" without decoding the address.
func SplitContractID(id string) (addr, name string, err error) {
	parts := strings.Split(id, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidContract, id)
	}
	return parts[0], parts[1], nil
}
