package registry

import (
	"database/sql"

	"github.com/TEENet-io/minter-go/common"
	ethcommon "github.com/ethereum/go-ethereum/common"

	_ "github.com/mattn/go-sqlite3"
)

// NewSimRegistry creates a registry over an in-memory sqlite db,
// owned by a random account. For tests.
func NewSimRegistry(channelSize int) (*Registry, ethcommon.Address, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, ethcommon.Address{}, err
	}

	stdb, err := NewStateDB(db)
	if err != nil {
		return nil, ethcommon.Address{}, err
	}

	owner := common.RandEthAddress()
	reg, err := New(stdb, &Config{Owner: owner, ChannelSize: channelSize})
	if err != nil {
		return nil, ethcommon.Address{}, err
	}

	return reg, owner, nil
}
