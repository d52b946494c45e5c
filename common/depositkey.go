package common

/*
A deposit key uniquely identifies a deposit across the whole system.
It is derived from the BTC funding transaction hash and the index of the
funding output, exactly the way the external Bridge ledger derives it,
so the key computed here can be used to look the deposit up there.
*/

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DeriveDepositKey computes keccak256(fundingTxHash | fundingOutputIndex).
// The index is packed as a big-endian uint32. Pure function, no failure mode.
func DeriveDepositKey(fundingTxHash [32]byte, fundingOutputIndex uint32) ethcommon.Hash {
	return crypto.Keccak256Hash(EncodePacked(fundingTxHash, fundingOutputIndex))
}
