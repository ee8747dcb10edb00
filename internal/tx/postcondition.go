package tx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/stxtoken/internal/clarity"
)

// FungibleConditionCode compares the amount actually moved with the declared
// amount.
type FungibleConditionCode byte

const (
	ConditionEqual        FungibleConditionCode = 0x01
	ConditionGreater      FungibleConditionCode = 0x02
	ConditionGreaterEqual FungibleConditionCode = 0x03
	ConditionLess         FungibleConditionCode = 0x04
	ConditionLessEqual    FungibleConditionCode = 0x05
)

func (c FungibleConditionCode) String() string {
	switch c {
	case ConditionEqual:
		return "sends exactly"
	case ConditionGreater:
		return "sends more than"
	case ConditionGreaterEqual:
		return "sends at least"
	case ConditionLess:
		return "sends less than"
	case ConditionLessEqual:
		return "sends at most"
	}
	return fmt.Sprintf("condition(0x%02x)", byte(c))
}

const (
	postConditionFungible byte = 0x01
	principalTypeStandard byte = 0x02
	principalTypeContract byte = 0x03
)

// AssetInfo identifies a fungible token: the defining contract and the
// token name declared inside it.
type AssetInfo struct {
	Contract  clarity.ContractPrincipal
	AssetName string
}

// String returns the asset identifier "ADDR.contract::asset".
func (a AssetInfo) String() string {
	return a.Contract.Address() + "::" + a.AssetName
}

// FungiblePostCondition asserts how much of an asset a principal may send.
// Sender is either a clarity.StandardPrincipal or a clarity.ContractPrincipal.
type FungiblePostCondition struct {
	Sender clarity.Value
	Asset  AssetInfo
	Code   FungibleConditionCode
	Amount *big.Int
}

// NewFungiblePostCondition parses sender and contract identifiers into a
// post-condition.
func NewFungiblePostCondition(sender, contractID, assetName string, code FungibleConditionCode, amount *big.Int) (FungiblePostCondition, error) {
	p, err := clarity.ParsePrincipal(sender)
	if err != nil {
		return FungiblePostCondition{}, fmt.Errorf("post-condition sender: %w", err)
	}
	c, err := clarity.ParseContractID(contractID)
	if err != nil {
		return FungiblePostCondition{}, fmt.Errorf("post-condition asset: %w", err)
	}
	return FungiblePostCondition{
		Sender: p,
		Asset:  AssetInfo{Contract: c, AssetName: assetName},
		Code:   code,
		Amount: amount,
	}, nil
}

// Describe renders the condition for approval prompts.
func (pc FungiblePostCondition) Describe() string {
	sender := ""
	switch p := pc.Sender.(type) {
	case clarity.StandardPrincipal:
		sender = p.Address()
	case clarity.ContractPrincipal:
		sender = p.Address()
	}
	return fmt.Sprintf("%s %s %s of %s", sender, pc.Code, pc.Amount, pc.Asset)
}

func (pc FungiblePostCondition) encode(buf *bytes.Buffer) error {
	if pc.Amount == nil || pc.Amount.Sign() < 0 || !pc.Amount.IsUint64() {
		return fmt.Errorf("post-condition amount %v does not fit in u64", pc.Amount)
	}

	buf.WriteByte(postConditionFungible)
	switch p := pc.Sender.(type) {
	case clarity.StandardPrincipal:
		buf.WriteByte(principalTypeStandard)
		clarity.WritePrincipalBytes(buf, p)
	case clarity.ContractPrincipal:
		buf.WriteByte(principalTypeContract)
		clarity.WritePrincipalBytes(buf, p.Issuer)
		if err := clarity.WriteName(buf, p.Name); err != nil {
			return err
		}
	default:
		return fmt.Errorf("post-condition sender must be a principal, got %T", pc.Sender)
	}

	clarity.WritePrincipalBytes(buf, pc.Asset.Contract.Issuer)
	if err := clarity.WriteName(buf, pc.Asset.Contract.Name); err != nil {
		return err
	}
	if err := clarity.WriteName(buf, pc.Asset.AssetName); err != nil {
		return err
	}

	buf.WriteByte(byte(pc.Code))
	var amt [8]byte
	binary.BigEndian.PutUint64(amt[:], pc.Amount.Uint64())
	buf.Write(amt[:])
	return nil
}
