// Package tx builds, signs and serializes Stacks contract-call transactions.
package tx

import "github.com/Mohsinsiddi/stxtoken/internal/c32"

// Params are the per-network version bytes a transaction commits to.
type Params struct {
	TxVersion      byte
	ChainID        uint32
	AddressVersion byte
}

var (
	Mainnet = Params{TxVersion: 0x00, ChainID: 0x00000001, AddressVersion: c32.VersionMainnetSingleSig}
	Testnet = Params{TxVersion: 0x80, ChainID: 0x80000000, AddressVersion: c32.VersionTestnetSingleSig}
)

// Wire constants.
const (
	AuthStandard          byte = 0x04
	HashModeP2PKH         byte = 0x00
	KeyEncodingCompressed byte = 0x00
	AnchorModeAny         byte = 0x03
	PayloadContractCall   byte = 0x02
)

// PostConditionMode controls whether transfers not covered by a
// post-condition abort the transaction.
type PostConditionMode byte

const (
	PostConditionModeAllow PostConditionMode = 0x01
	PostConditionModeDeny  PostConditionMode = 0x02
)

func (m PostConditionMode) String() string {
	if m == PostConditionModeAllow {
		return "allow"
	}
	return "deny"
}
