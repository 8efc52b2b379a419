package solana

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// SPL token program, fixed across clusters.
var tokenProgramID = common.PublicKeyFromString("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

// EvidenceHashSize is the byte length of a dispute evidence hash.
const EvidenceHashSize = 32

// anchorDiscriminator is the 8-byte method selector the Anchor framework
// prepends to instruction data: sha256("global:<method>")[:8].
func anchorDiscriminator(method string) []byte {
	h := sha256.Sum256([]byte("global:" + method))
	return h[:8]
}

// appendU64 appends the Borsh (little-endian) encoding of v.
func appendU64(data []byte, v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return append(data, b...)
}

// appendBool appends the Borsh encoding of v.
func appendBool(data []byte, v bool) []byte {
	if v {
		return append(data, 1)
	}
	return append(data, 0)
}

// appendOptionPubkey appends the Borsh Option<Pubkey> encoding of pk.
func appendOptionPubkey(data []byte, pk *common.PublicKey) []byte {
	if pk == nil {
		return append(data, 0)
	}
	data = append(data, 1)
	return append(data, pk.Bytes()...)
}

// Builder composes unsigned escrow program instructions. It never signs or
// submits anything; callers hand the payload to the wallet holder.
type Builder struct {
	deriver *Deriver
}

// NewBuilder creates a Builder for the given program identifier.
func NewBuilder(programID string) *Builder {
	return &Builder{deriver: NewDeriver(programID)}
}

// Deriver exposes the underlying address deriver.
func (b *Builder) Deriver() *Deriver {
	return b.deriver
}

// CreateEscrowParams are the on-chain arguments and accounts for create_escrow.
type CreateEscrowParams struct {
	EscrowID          uint64
	TradeID           uint64
	Amount            uint64 // minor units
	Sequential        bool
	SequentialAddress *common.PublicKey
	Seller            common.PublicKey
	Buyer             common.PublicKey
}

// CreateEscrow builds the create_escrow instruction and returns it together
// with the derived escrow address.
func (b *Builder) CreateEscrow(p CreateEscrowParams) (types.Instruction, common.PublicKey, error) {
	escrowPDA, err := b.deriver.EscrowPDA(p.EscrowID, p.TradeID)
	if err != nil {
		return types.Instruction{}, common.PublicKey{}, err
	}

	data := anchorDiscriminator("create_escrow")
	data = appendU64(data, p.EscrowID)
	data = appendU64(data, p.TradeID)
	data = appendU64(data, p.Amount)
	data = appendBool(data, p.Sequential)
	data = appendOptionPubkey(data, p.SequentialAddress)

	ins := types.Instruction{
		ProgramID: b.deriver.ProgramID(),
		Accounts: []types.AccountMeta{
			{PubKey: p.Seller, IsSigner: true, IsWritable: true},
			{PubKey: p.Buyer, IsSigner: false, IsWritable: false},
			{PubKey: escrowPDA, IsSigner: false, IsWritable: true},
			{PubKey: common.SystemProgramID, IsSigner: false, IsWritable: false},
		},
		Data: data,
	}
	return ins, escrowPDA, nil
}

// FundEscrowParams are the accounts for fund_escrow.
type FundEscrowParams struct {
	EscrowID           uint64
	TradeID            uint64
	Seller             common.PublicKey
	SellerTokenAccount common.PublicKey
	TokenMint          common.PublicKey
}

// FundEscrow builds the fund_escrow instruction.
func (b *Builder) FundEscrow(p FundEscrowParams) (types.Instruction, error) {
	escrowPDA, err := b.deriver.EscrowPDA(p.EscrowID, p.TradeID)
	if err != nil {
		return types.Instruction{}, err
	}
	escrowTokenPDA, err := b.deriver.EscrowTokenPDA(escrowPDA)
	if err != nil {
		return types.Instruction{}, err
	}

	ins := types.Instruction{
		ProgramID: b.deriver.ProgramID(),
		Accounts: []types.AccountMeta{
			{PubKey: p.Seller, IsSigner: true, IsWritable: true},
			{PubKey: escrowPDA, IsSigner: false, IsWritable: true},
			{PubKey: p.SellerTokenAccount, IsSigner: false, IsWritable: true},
			{PubKey: escrowTokenPDA, IsSigner: false, IsWritable: true},
			{PubKey: p.TokenMint, IsSigner: false, IsWritable: false},
			{PubKey: tokenProgramID, IsSigner: false, IsWritable: false},
			{PubKey: common.SystemProgramID, IsSigner: false, IsWritable: false},
			{PubKey: common.SysVarRentPubkey, IsSigner: false, IsWritable: false},
		},
		Data: anchorDiscriminator("fund_escrow"),
	}
	return ins, nil
}

// ReleaseEscrowParams are the accounts for release_escrow.
type ReleaseEscrowParams struct {
	EscrowID                     uint64
	TradeID                      uint64
	Authority                    common.PublicKey
	BuyerTokenAccount            common.PublicKey
	ArbitratorTokenAccount       common.PublicKey
	SequentialEscrowTokenAccount *common.PublicKey
}

// ReleaseEscrow builds the release_escrow instruction. The sequential escrow
// token account is appended only for chained trades.
func (b *Builder) ReleaseEscrow(p ReleaseEscrowParams) (types.Instruction, error) {
	escrowPDA, err := b.deriver.EscrowPDA(p.EscrowID, p.TradeID)
	if err != nil {
		return types.Instruction{}, err
	}
	escrowTokenPDA, err := b.deriver.EscrowTokenPDA(escrowPDA)
	if err != nil {
		return types.Instruction{}, err
	}

	accounts := []types.AccountMeta{
		{PubKey: p.Authority, IsSigner: true, IsWritable: true},
		{PubKey: escrowPDA, IsSigner: false, IsWritable: true},
		{PubKey: escrowTokenPDA, IsSigner: false, IsWritable: true},
		{PubKey: p.BuyerTokenAccount, IsSigner: false, IsWritable: true},
		{PubKey: p.ArbitratorTokenAccount, IsSigner: false, IsWritable: true},
	}
	if p.SequentialEscrowTokenAccount != nil {
		accounts = append(accounts, types.AccountMeta{
			PubKey: *p.SequentialEscrowTokenAccount, IsSigner: false, IsWritable: true,
		})
	}
	accounts = append(accounts, types.AccountMeta{PubKey: tokenProgramID})

	return types.Instruction{
		ProgramID: b.deriver.ProgramID(),
		Accounts:  accounts,
		Data:      anchorDiscriminator("release_escrow"),
	}, nil
}

// CancelEscrowParams are the accounts for cancel_escrow.
type CancelEscrowParams struct {
	EscrowID           uint64
	TradeID            uint64
	Seller             common.PublicKey
	Authority          common.PublicKey
	SellerTokenAccount *common.PublicKey
}

// CancelEscrow builds the cancel_escrow instruction. The seller token account
// is present only when escrowed funds must be returned.
func (b *Builder) CancelEscrow(p CancelEscrowParams) (types.Instruction, error) {
	escrowPDA, err := b.deriver.EscrowPDA(p.EscrowID, p.TradeID)
	if err != nil {
		return types.Instruction{}, err
	}
	escrowTokenPDA, err := b.deriver.EscrowTokenPDA(escrowPDA)
	if err != nil {
		return types.Instruction{}, err
	}

	accounts := []types.AccountMeta{
		{PubKey: p.Seller, IsSigner: false, IsWritable: true},
		{PubKey: p.Authority, IsSigner: true, IsWritable: true},
		{PubKey: escrowPDA, IsSigner: false, IsWritable: true},
		{PubKey: escrowTokenPDA, IsSigner: false, IsWritable: true},
	}
	if p.SellerTokenAccount != nil {
		accounts = append(accounts, types.AccountMeta{
			PubKey: *p.SellerTokenAccount, IsSigner: false, IsWritable: true,
		})
	}
	accounts = append(accounts, types.AccountMeta{PubKey: tokenProgramID})

	return types.Instruction{
		ProgramID: b.deriver.ProgramID(),
		Accounts:  accounts,
		Data:      anchorDiscriminator("cancel_escrow"),
	}, nil
}

// DisputeEscrowParams are the arguments and accounts for open_dispute_with_bond.
type DisputeEscrowParams struct {
	EscrowID                   uint64
	TradeID                    uint64
	DisputingParty             common.PublicKey
	DisputingPartyTokenAccount common.PublicKey
	EvidenceHash               [EvidenceHashSize]byte
}

// DisputeEscrow builds the open_dispute_with_bond instruction, deriving both
// bond accounts from the escrow address.
func (b *Builder) DisputeEscrow(p DisputeEscrowParams) (types.Instruction, error) {
	escrowPDA, err := b.deriver.EscrowPDA(p.EscrowID, p.TradeID)
	if err != nil {
		return types.Instruction{}, err
	}
	buyerBondPDA, err := b.deriver.BuyerBondPDA(escrowPDA)
	if err != nil {
		return types.Instruction{}, err
	}
	sellerBondPDA, err := b.deriver.SellerBondPDA(escrowPDA)
	if err != nil {
		return types.Instruction{}, err
	}

	data := anchorDiscriminator("open_dispute_with_bond")
	data = append(data, p.EvidenceHash[:]...)

	return types.Instruction{
		ProgramID: b.deriver.ProgramID(),
		Accounts: []types.AccountMeta{
			{PubKey: p.DisputingParty, IsSigner: true, IsWritable: true},
			{PubKey: escrowPDA, IsSigner: false, IsWritable: true},
			{PubKey: p.DisputingPartyTokenAccount, IsSigner: false, IsWritable: true},
			{PubKey: buyerBondPDA, IsSigner: false, IsWritable: true},
			{PubKey: sellerBondPDA, IsSigner: false, IsWritable: true},
			{PubKey: tokenProgramID, IsSigner: false, IsWritable: false},
			{PubKey: common.SystemProgramID, IsSigner: false, IsWritable: false},
		},
		Data: data,
	}, nil
}

// AccountMetaJSON is the wire form of one account reference.
type AccountMetaJSON struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

// Payload is the unsigned, unbroadcast instruction description returned to
// the wallet holder.
type Payload struct {
	Keys      []AccountMetaJSON `json:"keys"`
	ProgramID string            `json:"programId"`
	Data      string            `json:"data"` // base64
}

// NewPayload converts an instruction into its wire form.
func NewPayload(ins types.Instruction) Payload {
	keys := make([]AccountMetaJSON, 0, len(ins.Accounts))
	for _, a := range ins.Accounts {
		keys = append(keys, AccountMetaJSON{
			Pubkey:     a.PubKey.ToBase58(),
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		})
	}
	return Payload{
		Keys:      keys,
		ProgramID: ins.ProgramID.ToBase58(),
		Data:      base64.StdEncoding.EncodeToString(ins.Data),
	}
}
