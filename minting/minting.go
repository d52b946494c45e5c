package minting

/*
Optimistic minting lets an authorized minter credit a depositor with
synthetic tokens ahead of the slow settlement path, against the deposit
recorded in the external Bridge ledger. Every request opens a veto
window during which a guard can cancel it; after the window a minter
finalizes, which mints tokens and books the amount as the depositor's
debt. When the deposit is later actually swept, RepayDebt nets the
settlement amount against that debt so nothing is credited twice.
*/

import (
	"math/big"
	"sync"
	"time"

	"github.com/TEENet-io/minter-go/common"
	"github.com/TEENet-io/minter-go/registry"
	ethcommon "github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"
)

type State struct {
	db     *StateDB
	cfg    *Config
	reg    *registry.Registry
	ledger DepositLedger
	minter TokenMinter

	// serializes the mutating operations; each runs to completion
	mu sync.Mutex

	// current time in unix seconds, swapped out in tests
	now func() int64

	requestedCh chan *OptimisticMintRequestedEvent
	finalizedCh chan *OptimisticMintFinalizedEvent
	cancelledCh chan *OptimisticMintCancelledEvent
}

func New(db *StateDB, cfg *Config, reg *registry.Registry, ledger DepositLedger, minter TokenMinter) (*State, error) {
	if cfg.Vault == (ethcommon.Address{}) {
		return nil, ErrVaultUnset
	}

	return &State{
		db:          db,
		cfg:         cfg,
		reg:         reg,
		ledger:      ledger,
		minter:      minter,
		now:         func() int64 { return time.Now().Unix() },
		requestedCh: make(chan *OptimisticMintRequestedEvent, cfg.ChannelSize),
		finalizedCh: make(chan *OptimisticMintFinalizedEvent, cfg.ChannelSize),
		cancelledCh: make(chan *OptimisticMintCancelledEvent, cfg.ChannelSize),
	}, nil
}

func (st *State) GetRequestedEventChannel() <-chan *OptimisticMintRequestedEvent {
	return st.requestedCh
}

func (st *State) GetFinalizedEventChannel() <-chan *OptimisticMintFinalizedEvent {
	return st.finalizedCh
}

func (st *State) GetCancelledEventChannel() <-chan *OptimisticMintCancelledEvent {
	return st.cancelledCh
}

// RequestOptimisticMint records a minting request for the deposit and
// starts the veto window. The deposit must be revealed, not yet swept and
// routed to this vault. Requesting again while already pending overwrites
// the stored timestamp and restarts the window.
func (st *State) RequestOptimisticMint(caller ethcommon.Address, fundingTxHash [32]byte, fundingOutputIndex uint32) error {
	if !st.reg.IsMinter(caller) {
		return ErrNotMinter
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	depositKey := common.DeriveDepositKey(fundingTxHash, fundingOutputIndex)
	newLogger := logger.WithFields(logger.Fields{
		"depositKey": depositKey.String(),
		"minter":     caller.Hex(),
	})

	deposit, err := st.lookup(depositKey)
	if err != nil {
		return err
	}
	if deposit.SweptAt != 0 {
		return ErrDepositAlreadySwept
	}
	if deposit.Vault != st.cfg.Vault {
		newLogger.Warnf("deposit routed to %s, this vault is %s", deposit.Vault.Hex(), st.cfg.Vault.Hex())
		return ErrUnexpectedVault
	}

	pending := &PendingMint{
		DepositKey:         depositKey,
		FundingTxHash:      fundingTxHash,
		FundingOutputIndex: fundingOutputIndex,
		RequestedAt:        st.now(),
	}
	if err := st.db.setPending(pending); err != nil {
		return err
	}

	newLogger.Info("optimistic mint requested")
	st.emitRequested(&OptimisticMintRequestedEvent{
		Minter:             caller,
		DepositKey:         depositKey,
		FundingTxHash:      fundingTxHash,
		FundingOutputIndex: fundingOutputIndex,
		RequestedAt:        pending.RequestedAt,
	})

	return nil
}

// FinalizeOptimisticMint mints tokens for the depositor and books the
// minted amount as debt, provided the veto window has strictly elapsed
// and the deposit has not been swept in the meantime. The debt update,
// the pending-record removal and the token mint commit atomically.
func (st *State) FinalizeOptimisticMint(caller ethcommon.Address, fundingTxHash [32]byte, fundingOutputIndex uint32) error {
	if !st.reg.IsMinter(caller) {
		return ErrNotMinter
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	depositKey := common.DeriveDepositKey(fundingTxHash, fundingOutputIndex)
	newLogger := logger.WithFields(logger.Fields{
		"depositKey": depositKey.String(),
		"minter":     caller.Hex(),
	})

	pending, ok, err := st.db.GetPending(depositKey)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMintNotPending
	}

	// the window must have STRICTLY elapsed; finalizing at the exact
	// expiry instant still fails
	finalizedAt := st.now()
	if finalizedAt-pending.RequestedAt <= st.cfg.delaySeconds() {
		return ErrMintDelayNotElapsed
	}

	// settlement may have completed while the request was waiting
	deposit, err := st.lookup(depositKey)
	if err != nil {
		return err
	}
	if deposit.SweptAt != 0 {
		return ErrDepositAlreadySwept
	}

	tx, err := st.db.begin()
	if err != nil {
		return err
	}

	debt, err := st.db.getDebtTx(tx, deposit.Depositor)
	if err != nil {
		tx.Rollback()
		return err
	}
	newDebt := new(big.Int).Add(debt, deposit.Amount)
	if err := st.db.setDebtTx(tx, deposit.Depositor, newDebt); err != nil {
		tx.Rollback()
		return err
	}
	if err := st.db.deletePendingTx(tx, depositKey); err != nil {
		tx.Rollback()
		return err
	}

	// the mint capability is invoked before commit: if it fails, the
	// debt increase and the record removal are rolled back together
	if err := st.minter.Mint(deposit.Depositor, deposit.Amount); err != nil {
		tx.Rollback()
		newLogger.Errorf("token mint failed: depositor=%s, amount=%v, err=%v",
			deposit.Depositor.Hex(), deposit.Amount, err)
		return ErrTokenMintFailed
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	newLogger.WithFields(logger.Fields{
		"depositor": deposit.Depositor.Hex(),
		"amount":    deposit.Amount.String(),
	}).Info("optimistic mint finalized")
	st.emitFinalized(&OptimisticMintFinalizedEvent{
		Minter:             caller,
		DepositKey:         depositKey,
		FundingTxHash:      fundingTxHash,
		FundingOutputIndex: fundingOutputIndex,
		Depositor:          deposit.Depositor,
		Amount:             common.BigIntClone(deposit.Amount),
		FinalizedAt:        finalizedAt,
	})

	return nil
}

// CancelOptimisticMint lets a guard veto a pending request at any time
// before it is finalized. There is no delay requirement on cancelling.
func (st *State) CancelOptimisticMint(caller ethcommon.Address, fundingTxHash [32]byte, fundingOutputIndex uint32) error {
	if !st.reg.IsGuard(caller) {
		return ErrNotGuard
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	depositKey := common.DeriveDepositKey(fundingTxHash, fundingOutputIndex)

	_, ok, err := st.db.GetPending(depositKey)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMintNotPending
	}

	tx, err := st.db.begin()
	if err != nil {
		return err
	}
	if err := st.db.deletePendingTx(tx, depositKey); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	logger.WithFields(logger.Fields{
		"depositKey": depositKey.String(),
		"guard":      caller.Hex(),
	}).Info("optimistic mint cancelled")
	st.emitCancelled(&OptimisticMintCancelledEvent{
		Guard:              caller,
		DepositKey:         depositKey,
		FundingTxHash:      fundingTxHash,
		FundingOutputIndex: fundingOutputIndex,
	})

	return nil
}

// RepayDebt nets a real settlement against the depositor's outstanding
// optimistic minting debt. It returns the portion of amount that still
// has to be freshly minted by the settlement path. Never fails on
// arithmetic: the debt cannot underflow.
func (st *State) RepayDebt(depositor ethcommon.Address, amount *big.Int) (*big.Int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	tx, err := st.db.begin()
	if err != nil {
		return nil, err
	}

	debt, err := st.db.getDebtTx(tx, depositor)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if debt.Sign() == 0 {
		tx.Rollback()
		return common.BigIntClone(amount), nil
	}

	newDebt := new(big.Int)
	stillToMint := new(big.Int)
	if amount.Cmp(debt) == 1 {
		stillToMint.Sub(amount, debt)
	} else {
		newDebt.Sub(debt, amount)
	}

	if err := st.db.setDebtTx(tx, depositor, newDebt); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	logger.WithFields(logger.Fields{
		"depositor":   depositor.Hex(),
		"repaid":      new(big.Int).Sub(debt, newDebt).String(),
		"stillToMint": stillToMint.String(),
	}).Debug("optimistic minting debt repaid")

	return stillToMint, nil
}

// GetPending exposes the pending record for a deposit key.
func (st *State) GetPending(depositKey ethcommon.Hash) (*PendingMint, bool, error) {
	return st.db.GetPending(depositKey)
}

// ListPending returns all pending requests ordered by request time.
func (st *State) ListPending() ([]*PendingMint, error) {
	return st.db.ListPending()
}

// GetDebt returns the depositor's outstanding optimistic minting debt.
func (st *State) GetDebt(depositor ethcommon.Address) (*big.Int, error) {
	return st.db.GetDebt(depositor)
}

func (st *State) lookup(depositKey ethcommon.Hash) (*Deposit, error) {
	deposit, ok, err := st.ledger.Lookup(depositKey)
	if err != nil {
		logger.Errorf("ledger lookup failed: depositKey=%s, err=%v", depositKey.String(), err)
		return nil, ErrLedgerLookup
	}
	if !ok || deposit.RevealedAt == 0 {
		return nil, ErrDepositNotRevealed
	}
	return deposit, nil
}

func (st *State) emitRequested(ev *OptimisticMintRequestedEvent) {
	select {
	case st.requestedCh <- ev:
	default:
		logger.Debugf("requested event dropped, channel full: depositKey=%s", ev.DepositKey.String())
	}
}

func (st *State) emitFinalized(ev *OptimisticMintFinalizedEvent) {
	select {
	case st.finalizedCh <- ev:
	default:
		logger.Debugf("finalized event dropped, channel full: depositKey=%s", ev.DepositKey.String())
	}
}

func (st *State) emitCancelled(ev *OptimisticMintCancelledEvent) {
	select {
	case st.cancelledCh <- ev:
	default:
		logger.Debugf("cancelled event dropped, channel full: depositKey=%s", ev.DepositKey.String())
	}
}
