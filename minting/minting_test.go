package minting

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/TEENet-io/minter-go/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDelay = 3 * time.Hour

var testDelaySecs = int64(testDelay / time.Second)

type fixture struct {
	*SimState

	minter    ethcommon.Address
	guard     ethcommon.Address
	depositor ethcommon.Address

	txHash [32]byte
	idx    uint32
	key    ethcommon.Hash
	amount *big.Int

	clock int64
}

func newFixture(t *testing.T) *fixture {
	sim, err := NewSimState(testDelay, 16)
	require.NoError(t, err)

	f := &fixture{
		SimState:  sim,
		minter:    common.RandEthAddress(),
		guard:     common.RandEthAddress(),
		depositor: common.RandEthAddress(),
		txHash:    common.RandBytes32(),
		idx:       0,
		amount:    big.NewInt(100_000),
		clock:     1_700_000_000,
	}
	f.key = common.DeriveDepositKey(f.txHash, f.idx)

	require.NoError(t, sim.Registry.AddMinter(sim.Owner, f.minter))
	require.NoError(t, sim.Registry.AddGuard(sim.Owner, f.guard))

	sim.State.now = func() int64 { return f.clock }

	return f
}

func (f *fixture) reveal() {
	f.Ledger.Reveal(f.txHash, f.idx, f.Vault, f.depositor, f.amount, f.clock)
}

func TestRequestOptimisticMint(t *testing.T) {
	f := newFixture(t)

	// authorization is checked before anything else
	err := f.RequestOptimisticMint(common.RandEthAddress(), f.txHash, f.idx)
	assert.Equal(t, ErrNotMinter, err)

	// deposit not revealed yet
	err = f.RequestOptimisticMint(f.minter, f.txHash, f.idx)
	assert.Equal(t, ErrDepositNotRevealed, err)

	// deposit revealed to another vault
	otherTx := common.RandBytes32()
	f.Ledger.Reveal(otherTx, 0, common.RandEthAddress(), f.depositor, f.amount, f.clock)
	err = f.RequestOptimisticMint(f.minter, otherTx, 0)
	assert.Equal(t, ErrUnexpectedVault, err)

	// deposit already swept
	sweptTx := common.RandBytes32()
	sweptKey := f.Ledger.Reveal(sweptTx, 0, f.Vault, f.depositor, f.amount, f.clock)
	f.Ledger.Sweep(sweptKey, f.clock)
	err = f.RequestOptimisticMint(f.minter, sweptTx, 0)
	assert.Equal(t, ErrDepositAlreadySwept, err)

	// happy path
	f.reveal()
	assert.NoError(t, f.RequestOptimisticMint(f.minter, f.txHash, f.idx))

	pending, ok, err := f.GetPending(f.key)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, f.clock, pending.RequestedAt)
	assert.Equal(t, f.txHash, pending.FundingTxHash)

	ev := <-f.GetRequestedEventChannel()
	assert.Equal(t, f.minter, ev.Minter)
	assert.Equal(t, f.key, ev.DepositKey)
	assert.Equal(t, f.clock, ev.RequestedAt)
}

func TestRequestOverwriteResetsTimer(t *testing.T) {
	f := newFixture(t)
	f.reveal()

	assert.NoError(t, f.RequestOptimisticMint(f.minter, f.txHash, f.idx))

	f.clock += 100
	assert.NoError(t, f.RequestOptimisticMint(f.minter, f.txHash, f.idx))

	pending, _, err := f.GetPending(f.key)
	assert.NoError(t, err)
	assert.Equal(t, f.clock, pending.RequestedAt)
}

func TestFinalizeDelayBoundary(t *testing.T) {
	f := newFixture(t)
	f.reveal()
	requestedAt := f.clock
	require.NoError(t, f.RequestOptimisticMint(f.minter, f.txHash, f.idx))

	// too early
	err := f.FinalizeOptimisticMint(f.minter, f.txHash, f.idx)
	assert.Equal(t, ErrMintDelayNotElapsed, err)

	// exactly at expiry still fails: the delay must STRICTLY elapse
	f.clock = requestedAt + testDelaySecs
	err = f.FinalizeOptimisticMint(f.minter, f.txHash, f.idx)
	assert.Equal(t, ErrMintDelayNotElapsed, err)

	// one second past expiry succeeds
	f.clock = requestedAt + testDelaySecs + 1
	assert.NoError(t, f.FinalizeOptimisticMint(f.minter, f.txHash, f.idx))
}

func TestFinalizeOptimisticMint(t *testing.T) {
	f := newFixture(t)

	// authorization first
	err := f.FinalizeOptimisticMint(common.RandEthAddress(), f.txHash, f.idx)
	assert.Equal(t, ErrNotMinter, err)

	// nothing pending
	err = f.FinalizeOptimisticMint(f.minter, f.txHash, f.idx)
	assert.Equal(t, ErrMintNotPending, err)

	f.reveal()
	require.NoError(t, f.RequestOptimisticMint(f.minter, f.txHash, f.idx))
	f.clock += testDelaySecs + 1

	assert.NoError(t, f.FinalizeOptimisticMint(f.minter, f.txHash, f.idx))

	// tokens minted, debt booked, record cleared
	assert.Equal(t, f.amount, f.Minter.BalanceOf(f.depositor))
	debt, err := f.GetDebt(f.depositor)
	assert.NoError(t, err)
	assert.Equal(t, f.amount, debt)
	_, ok, err := f.GetPending(f.key)
	assert.NoError(t, err)
	assert.False(t, ok)

	ev := <-f.GetFinalizedEventChannel()
	assert.Equal(t, f.depositor, ev.Depositor)
	assert.Equal(t, f.amount, ev.Amount)
	assert.Equal(t, f.clock, ev.FinalizedAt)

	// no double finalize
	err = f.FinalizeOptimisticMint(f.minter, f.txHash, f.idx)
	assert.Equal(t, ErrMintNotPending, err)
}

func TestFinalizeRacesSweep(t *testing.T) {
	f := newFixture(t)
	f.reveal()
	require.NoError(t, f.RequestOptimisticMint(f.minter, f.txHash, f.idx))

	// the deposit settles for real while the request is waiting
	f.clock += testDelaySecs + 1
	f.Ledger.Sweep(f.key, f.clock)

	err := f.FinalizeOptimisticMint(f.minter, f.txHash, f.idx)
	assert.Equal(t, ErrDepositAlreadySwept, err)

	// nothing was minted or booked
	assert.Zero(t, f.Minter.BalanceOf(f.depositor).Sign())
	debt, err := f.GetDebt(f.depositor)
	assert.NoError(t, err)
	assert.Zero(t, debt.Sign())
}

func TestFinalizeMintFailureCommitsNothing(t *testing.T) {
	f := newFixture(t)
	f.reveal()
	require.NoError(t, f.RequestOptimisticMint(f.minter, f.txHash, f.idx))
	f.clock += testDelaySecs + 1

	f.Minter.FailWith(errors.New("token contract reverted"))

	err := f.FinalizeOptimisticMint(f.minter, f.txHash, f.idx)
	assert.Equal(t, ErrTokenMintFailed, err)

	// all-or-nothing: no debt, record still pending
	debt, err := f.GetDebt(f.depositor)
	assert.NoError(t, err)
	assert.Zero(t, debt.Sign())
	_, ok, err := f.GetPending(f.key)
	assert.NoError(t, err)
	assert.True(t, ok)

	// a retry after the capability recovers succeeds
	f.Minter.FailWith(nil)
	assert.NoError(t, f.FinalizeOptimisticMint(f.minter, f.txHash, f.idx))
	assert.Equal(t, f.amount, f.Minter.BalanceOf(f.depositor))
}

func TestCancelOptimisticMint(t *testing.T) {
	f := newFixture(t)

	err := f.CancelOptimisticMint(f.minter, f.txHash, f.idx)
	assert.Equal(t, ErrNotGuard, err)

	err = f.CancelOptimisticMint(f.guard, f.txHash, f.idx)
	assert.Equal(t, ErrMintNotPending, err)

	f.reveal()
	require.NoError(t, f.RequestOptimisticMint(f.minter, f.txHash, f.idx))

	// a guard needs no delay to cancel
	assert.NoError(t, f.CancelOptimisticMint(f.guard, f.txHash, f.idx))

	_, ok, err := f.GetPending(f.key)
	assert.NoError(t, err)
	assert.False(t, ok)

	ev := <-f.GetCancelledEventChannel()
	assert.Equal(t, f.guard, ev.Guard)
	assert.Equal(t, f.key, ev.DepositKey)

	// whoever resolves first wins: the finalize now observes no record
	f.clock += testDelaySecs + 1
	err = f.FinalizeOptimisticMint(f.minter, f.txHash, f.idx)
	assert.Equal(t, ErrMintNotPending, err)

	// and so does a second cancel
	err = f.CancelOptimisticMint(f.guard, f.txHash, f.idx)
	assert.Equal(t, ErrMintNotPending, err)
}

func TestRepayDebt(t *testing.T) {
	f := newFixture(t)

	// no debt: everything still has to be minted
	stillToMint, err := f.RepayDebt(f.depositor, big.NewInt(700))
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(700), stillToMint)

	// build up debt via a finalized optimistic mint
	f.reveal()
	require.NoError(t, f.RequestOptimisticMint(f.minter, f.txHash, f.idx))
	f.clock += testDelaySecs + 1
	require.NoError(t, f.FinalizeOptimisticMint(f.minter, f.txHash, f.idx))

	// amount < debt: fully absorbed
	stillToMint, err = f.RepayDebt(f.depositor, big.NewInt(40_000))
	assert.NoError(t, err)
	assert.Zero(t, stillToMint.Sign())
	debt, _ := f.GetDebt(f.depositor)
	assert.Equal(t, big.NewInt(60_000), debt)

	// amount == debt: absorbed, debt zeroed
	stillToMint, err = f.RepayDebt(f.depositor, big.NewInt(60_000))
	assert.NoError(t, err)
	assert.Zero(t, stillToMint.Sign())
	debt, _ = f.GetDebt(f.depositor)
	assert.Zero(t, debt.Sign())
}

func TestRepayDebtOverflowingSettlement(t *testing.T) {
	f := newFixture(t)
	f.reveal()
	require.NoError(t, f.RequestOptimisticMint(f.minter, f.txHash, f.idx))
	f.clock += testDelaySecs + 1
	require.NoError(t, f.FinalizeOptimisticMint(f.minter, f.txHash, f.idx))

	// amount > debt: debt zeroed, remainder reported back
	settlement := new(big.Int).Add(f.amount, big.NewInt(123))
	stillToMint, err := f.RepayDebt(f.depositor, settlement)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(123), stillToMint)

	debt, err := f.GetDebt(f.depositor)
	assert.NoError(t, err)
	assert.Zero(t, debt.Sign())
}

func TestDebtPoolsAcrossDeposits(t *testing.T) {
	f := newFixture(t)

	finalizeDeposit := func(txHash [32]byte, amount *big.Int) {
		f.Ledger.Reveal(txHash, 0, f.Vault, f.depositor, amount, f.clock)
		require.NoError(t, f.RequestOptimisticMint(f.minter, txHash, 0))
		f.clock += testDelaySecs + 1
		require.NoError(t, f.FinalizeOptimisticMint(f.minter, txHash, 0))
	}

	finalizeDeposit(common.RandBytes32(), big.NewInt(300))
	finalizeDeposit(common.RandBytes32(), big.NewInt(200))

	// two optimistic mints pool into one balance
	debt, err := f.GetDebt(f.depositor)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(500), debt)

	// a settlement of either deposit reduces the pooled debt
	stillToMint, err := f.RepayDebt(f.depositor, big.NewInt(300))
	assert.NoError(t, err)
	assert.Zero(t, stillToMint.Sign())
	debt, _ = f.GetDebt(f.depositor)
	assert.Equal(t, big.NewInt(200), debt)
}

func TestLedgerFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	f.reveal()

	f.Ledger.FailWith(errors.New("rpc unavailable"))
	err := f.RequestOptimisticMint(f.minter, f.txHash, f.idx)
	assert.Equal(t, ErrLedgerLookup, err)
}

// The end-to-end lifecycle: reveal, request, wait out the veto window,
// finalize, then settle for real and watch the debt absorb it.
func TestEndToEndScenario(t *testing.T) {
	f := newFixture(t)

	t0 := f.clock
	f.reveal()

	f.clock = t0 + 1
	require.NoError(t, f.RequestOptimisticMint(f.minter, f.txHash, f.idx))

	f.clock = t0 + 1 + testDelaySecs
	err := f.FinalizeOptimisticMint(f.minter, f.txHash, f.idx)
	assert.Equal(t, ErrMintDelayNotElapsed, err)

	f.clock = t0 + 1 + testDelaySecs + 1
	require.NoError(t, f.FinalizeOptimisticMint(f.minter, f.txHash, f.idx))

	assert.Equal(t, f.amount, f.Minter.BalanceOf(f.depositor))
	debt, err := f.GetDebt(f.depositor)
	assert.NoError(t, err)
	assert.Equal(t, f.amount, debt)
	_, ok, err := f.GetPending(f.key)
	assert.NoError(t, err)
	assert.False(t, ok)

	// real settlement arrives: no double credit
	stillToMint, err := f.RepayDebt(f.depositor, f.amount)
	assert.NoError(t, err)
	assert.Zero(t, stillToMint.Sign())
	debt, err = f.GetDebt(f.depositor)
	assert.NoError(t, err)
	assert.Zero(t, debt.Sign())
}
