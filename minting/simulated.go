package minting

import (
	"database/sql"
	"math/big"
	"sync"
	"time"

	"github.com/TEENet-io/minter-go/common"
	"github.com/TEENet-io/minter-go/registry"
	ethcommon "github.com/ethereum/go-ethereum/common"

	_ "github.com/mattn/go-sqlite3"
)

// SimLedger is an in-memory DepositLedger for tests. Reveal and Sweep
// drive the deposit through the lifecycle the real Bridge ledger owns.
type SimLedger struct {
	mu       sync.Mutex
	deposits map[ethcommon.Hash]*Deposit
	failErr  error
}

func NewSimLedger() *SimLedger {
	return &SimLedger{deposits: make(map[ethcommon.Hash]*Deposit)}
}

func (l *SimLedger) Reveal(fundingTxHash [32]byte, fundingOutputIndex uint32, vault, depositor ethcommon.Address, amount *big.Int, revealedAt int64) ethcommon.Hash {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := common.DeriveDepositKey(fundingTxHash, fundingOutputIndex)
	l.deposits[key] = &Deposit{
		RevealedAt: revealedAt,
		Vault:      vault,
		Depositor:  depositor,
		Amount:     common.BigIntClone(amount),
	}
	return key
}

func (l *SimLedger) Sweep(depositKey ethcommon.Hash, sweptAt int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if d, ok := l.deposits[depositKey]; ok {
		d.SweptAt = sweptAt
	}
}

func (l *SimLedger) FailWith(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failErr = err
}

func (l *SimLedger) Lookup(depositKey ethcommon.Hash) (*Deposit, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failErr != nil {
		return nil, false, l.failErr
	}

	d, ok := l.deposits[depositKey]
	if !ok {
		return nil, false, nil
	}

	clone := *d
	clone.Amount = common.BigIntClone(d.Amount)
	return &clone, true, nil
}

// SimMinter is an in-memory TokenMinter that tracks balances.
type SimMinter struct {
	mu       sync.Mutex
	balances map[ethcommon.Address]*big.Int
	failErr  error
}

func NewSimMinter() *SimMinter {
	return &SimMinter{balances: make(map[ethcommon.Address]*big.Int)}
}

func (m *SimMinter) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

func (m *SimMinter) Mint(recipient ethcommon.Address, amount *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failErr != nil {
		return m.failErr
	}

	balance, ok := m.balances[recipient]
	if !ok {
		balance = big.NewInt(0)
	}
	m.balances[recipient] = new(big.Int).Add(balance, amount)
	return nil
}

func (m *SimMinter) BalanceOf(recipient ethcommon.Address) *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance, ok := m.balances[recipient]
	if !ok {
		return big.NewInt(0)
	}
	return common.BigIntClone(balance)
}

// SimState bundles a state machine over in-memory storage with its
// simulated collaborators.
type SimState struct {
	*State

	Registry *registry.Registry
	Owner    ethcommon.Address
	Ledger   *SimLedger
	Minter   *SimMinter
	Vault    ethcommon.Address
}

func NewSimState(delay time.Duration, channelSize int) (*SimState, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}

	stdb, err := NewStateDB(db)
	if err != nil {
		return nil, err
	}

	reg, owner, err := registry.NewSimRegistry(channelSize)
	if err != nil {
		return nil, err
	}

	ledger := NewSimLedger()
	minter := NewSimMinter()
	vault := common.RandEthAddress()

	st, err := New(stdb, &Config{
		Vault:        vault,
		MintingDelay: delay,
		ChannelSize:  channelSize,
	}, reg, ledger, minter)
	if err != nil {
		return nil, err
	}

	return &SimState{
		State:    st,
		Registry: reg,
		Owner:    owner,
		Ledger:   ledger,
		Minter:   minter,
		Vault:    vault,
	}, nil
}
