package registry

import (
	"database/sql"
	"testing"

	"github.com/TEENet-io/minter-go/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	_ "github.com/mattn/go-sqlite3"
)

func TestOwnerPinning(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	assert.NoError(t, err)
	defer db.Close()

	stdb, err := NewStateDB(db)
	assert.NoError(t, err)
	defer stdb.Close()

	// zero owner rejected
	_, err = New(stdb, &Config{Owner: ethcommon.Address{}, ChannelSize: 1})
	assert.Equal(t, ErrOwnerUnset, err)

	owner := common.RandEthAddress()
	_, err = New(stdb, &Config{Owner: owner, ChannelSize: 1})
	assert.NoError(t, err)

	// reopening with the same owner is fine
	_, err = New(stdb, &Config{Owner: owner, ChannelSize: 1})
	assert.NoError(t, err)

	// reopening with a different owner is not
	_, err = New(stdb, &Config{Owner: common.RandEthAddress(), ChannelSize: 1})
	assert.Equal(t, ErrOwnerMismatch, err)
}

func TestMinterMembership(t *testing.T) {
	reg, owner, err := NewSimRegistry(4)
	assert.NoError(t, err)

	account := common.RandEthAddress()

	// non-owner cannot mutate
	assert.Equal(t, ErrNotOwner, reg.AddMinter(account, account))
	assert.Equal(t, ErrNotOwner, reg.RemoveMinter(account, account))

	// not a member yet
	assert.False(t, reg.IsMinter(account))
	assert.Equal(t, ErrNotMinter, reg.RemoveMinter(owner, account))

	// add once, not twice
	assert.NoError(t, reg.AddMinter(owner, account))
	assert.True(t, reg.IsMinter(account))
	assert.Equal(t, ErrAlreadyMinter, reg.AddMinter(owner, account))

	// being a minter does not make one a guard
	assert.False(t, reg.IsGuard(account))

	minters, err := reg.Minters()
	assert.NoError(t, err)
	assert.Equal(t, []ethcommon.Address{account}, minters)

	// remove once, not twice
	assert.NoError(t, reg.RemoveMinter(owner, account))
	assert.False(t, reg.IsMinter(account))
	assert.Equal(t, ErrNotMinter, reg.RemoveMinter(owner, account))
}

func TestGuardMembership(t *testing.T) {
	reg, owner, err := NewSimRegistry(4)
	assert.NoError(t, err)

	account := common.RandEthAddress()

	assert.Equal(t, ErrNotGuard, reg.RemoveGuard(owner, account))
	assert.NoError(t, reg.AddGuard(owner, account))
	assert.True(t, reg.IsGuard(account))
	assert.Equal(t, ErrAlreadyGuard, reg.AddGuard(owner, account))
	assert.False(t, reg.IsMinter(account))

	guards, err := reg.Guards()
	assert.NoError(t, err)
	assert.Equal(t, []ethcommon.Address{account}, guards)

	assert.NoError(t, reg.RemoveGuard(owner, account))
	assert.False(t, reg.IsGuard(account))
}

func TestMembershipEvents(t *testing.T) {
	reg, owner, err := NewSimRegistry(4)
	assert.NoError(t, err)

	account := common.RandEthAddress()
	assert.NoError(t, reg.AddMinter(owner, account))
	assert.NoError(t, reg.RemoveMinter(owner, account))

	ch := reg.GetMembershipChangedEventChannel()

	ev := <-ch
	assert.Equal(t, RoleMinter, ev.Role)
	assert.Equal(t, account, ev.Account)
	assert.True(t, ev.Added)
	assert.NotZero(t, ev.At)

	ev = <-ch
	assert.Equal(t, account, ev.Account)
	assert.False(t, ev.Added)
}
