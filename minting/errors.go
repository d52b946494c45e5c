package minting

import "errors"

var (
	// authorization errors, always checked first
	ErrNotMinter = errors.New("caller is not a minter")
	ErrNotGuard  = errors.New("caller is not a guard")

	// precondition errors
	ErrDepositNotRevealed  = errors.New("deposit is not revealed to the ledger")
	ErrDepositAlreadySwept = errors.New("deposit is already swept")
	ErrUnexpectedVault     = errors.New("deposit is not routed to this vault")
	ErrMintNotPending      = errors.New("no pending optimistic mint for the deposit")
	ErrMintDelayNotElapsed = errors.New("optimistic minting delay has not elapsed")

	// capability failure: nothing is committed when the token mint fails
	ErrTokenMintFailed = errors.New("token mint failed")

	ErrLedgerLookup = errors.New("failed to look the deposit up in the ledger")

	ErrVaultUnset = errors.New("vault address must not be the zero address")
)
