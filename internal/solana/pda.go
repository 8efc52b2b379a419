package solana

import (
	"encoding/binary"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
)

// PDA seed prefixes. These must match the on-chain escrow program byte for
// byte or the derived addresses will not be the ones the program expects.
const (
	seedEscrow      = "escrow"
	seedEscrowToken = "escrow_token"
	seedBuyerBond   = "buyer_bond"
	seedSellerBond  = "seller_bond"
)

// Deriver computes program-derived addresses for the escrow program.
// All derivations are pure: same inputs always yield the same address.
type Deriver struct {
	programID common.PublicKey
}

// NewDeriver creates a Deriver for the given program identifier.
func NewDeriver(programID string) *Deriver {
	return &Deriver{programID: common.PublicKeyFromString(programID)}
}

// ProgramID returns the escrow program identifier.
func (d *Deriver) ProgramID() common.PublicKey {
	return d.programID
}

// le8 is the little-endian 8-byte encoding used for id seeds.
func le8(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// EscrowPDA derives the escrow account address from
// ["escrow", le8(escrowID), le8(tradeID)].
func (d *Deriver) EscrowPDA(escrowID, tradeID uint64) (common.PublicKey, error) {
	pda, _, err := common.FindProgramAddress(
		[][]byte{[]byte(seedEscrow), le8(escrowID), le8(tradeID)},
		d.programID,
	)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("derive escrow pda: %w", err)
	}
	return pda, nil
}

// EscrowTokenPDA derives the escrow token account address from
// ["escrow_token", escrow PDA bytes].
func (d *Deriver) EscrowTokenPDA(escrow common.PublicKey) (common.PublicKey, error) {
	pda, _, err := common.FindProgramAddress(
		[][]byte{[]byte(seedEscrowToken), escrow.Bytes()},
		d.programID,
	)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("derive escrow token pda: %w", err)
	}
	return pda, nil
}

// BuyerBondPDA derives the buyer dispute-bond account address.
func (d *Deriver) BuyerBondPDA(escrow common.PublicKey) (common.PublicKey, error) {
	pda, _, err := common.FindProgramAddress(
		[][]byte{[]byte(seedBuyerBond), escrow.Bytes()},
		d.programID,
	)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("derive buyer bond pda: %w", err)
	}
	return pda, nil
}

// SellerBondPDA derives the seller dispute-bond account address.
func (d *Deriver) SellerBondPDA(escrow common.PublicKey) (common.PublicKey, error) {
	pda, _, err := common.FindProgramAddress(
		[][]byte{[]byte(seedSellerBond), escrow.Bytes()},
		d.programID,
	)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("derive seller bond pda: %w", err)
	}
	return pda, nil
}
