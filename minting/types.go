package minting

import (
	"fmt"
	"math/big"

	"github.com/TEENet-io/minter-go/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// Deposit is the read-only view of a deposit as recorded by the external
// Bridge ledger. The minter never mutates it.
type Deposit struct {
	RevealedAt int64 // unix seconds, zero = not yet revealed
	SweptAt    int64 // unix seconds, zero = not yet swept
	Vault      ethcommon.Address
	Depositor  ethcommon.Address
	Amount     *big.Int
}

// DepositLedger looks deposits up by their deposit key. Implemented by
// bridgeman against the real Bridge contract and by SimLedger in tests.
type DepositLedger interface {
	Lookup(depositKey ethcommon.Hash) (*Deposit, bool, error)
}

// TokenMinter is the capability that actually issues tokens.
type TokenMinter interface {
	Mint(recipient ethcommon.Address, amount *big.Int) error
}

// PendingMint is a recorded optimistic minting request that has been
// neither finalized nor cancelled yet.
type PendingMint struct {
	DepositKey         ethcommon.Hash
	FundingTxHash      [32]byte
	FundingOutputIndex uint32
	RequestedAt        int64 // unix seconds
}

func (p *PendingMint) String() string {
	return fmt.Sprintf("%+v", *p)
}

type sqlPendingMint struct {
	DepositKey         string
	FundingTxHash      string
	FundingOutputIndex uint32
	RequestedAt        int64
}

func (p *PendingMint) encode() *sqlPendingMint {
	return &sqlPendingMint{
		DepositKey:         p.DepositKey.String()[2:],
		FundingTxHash:      common.Bytes32ToHexStr(p.FundingTxHash)[2:],
		FundingOutputIndex: p.FundingOutputIndex,
		RequestedAt:        p.RequestedAt,
	}
}

func (s *sqlPendingMint) decode() *PendingMint {
	return &PendingMint{
		DepositKey:         ethcommon.HexToHash("0x" + s.DepositKey),
		FundingTxHash:      common.HexStrToBytes32("0x" + s.FundingTxHash),
		FundingOutputIndex: s.FundingOutputIndex,
		RequestedAt:        s.RequestedAt,
	}
}

type OptimisticMintRequestedEvent struct {
	Minter             ethcommon.Address
	DepositKey         ethcommon.Hash
	FundingTxHash      [32]byte
	FundingOutputIndex uint32
	RequestedAt        int64
}

type OptimisticMintFinalizedEvent struct {
	Minter             ethcommon.Address
	DepositKey         ethcommon.Hash
	FundingTxHash      [32]byte
	FundingOutputIndex uint32
	Depositor          ethcommon.Address
	Amount             *big.Int
	FinalizedAt        int64
}

type OptimisticMintCancelledEvent struct {
	Guard              ethcommon.Address
	DepositKey         ethcommon.Hash
	FundingTxHash      [32]byte
	FundingOutputIndex uint32
}
