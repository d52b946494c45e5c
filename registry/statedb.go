package registry

import (
	"database/sql"
	"fmt"

	"github.com/TEENet-io/minter-go/database"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

type StateDB struct {
	stmtCache *database.StmtCache
}

func NewStateDB(db *sql.DB) (*StateDB, error) {
	for _, table := range []string{minterTable, guardTable, kvTable} {
		if _, err := db.Exec(table); err != nil {
			return nil, err
		}
	}

	return &StateDB{
		stmtCache: database.NewStmtCache(db),
	}, nil
}

func (stdb *StateDB) Close() {
	stdb.stmtCache.Clear()
}

func tableOf(role Role) string {
	if role == RoleGuard {
		return "guard"
	}
	return "minter"
}

func (stdb *StateDB) hasMember(role Role, account ethcommon.Address) (bool, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE account = ?`, tableOf(role))
	stmt, err := stdb.stmtCache.Prepare(query)
	if err != nil {
		return false, err
	}

	var count int
	if err := stmt.QueryRow(account.String()[2:]).Scan(&count); err != nil {
		return false, err
	}

	return count > 0, nil
}

func (stdb *StateDB) insertMember(role Role, account ethcommon.Address, addedAt int64) error {
	query := fmt.Sprintf(`INSERT INTO %s (account, addedAt) VALUES (?, ?)`, tableOf(role))
	stmt, err := stdb.stmtCache.Prepare(query)
	if err != nil {
		return err
	}

	_, err = stmt.Exec(account.String()[2:], addedAt)
	return err
}

func (stdb *StateDB) deleteMember(role Role, account ethcommon.Address) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE account = ?`, tableOf(role))
	stmt, err := stdb.stmtCache.Prepare(query)
	if err != nil {
		return err
	}

	_, err = stmt.Exec(account.String()[2:])
	return err
}

func (stdb *StateDB) members(role Role) ([]ethcommon.Address, error) {
	query := fmt.Sprintf(`SELECT account FROM %s ORDER BY addedAt`, tableOf(role))
	stmt, err := stdb.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []ethcommon.Address{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		accounts = append(accounts, ethcommon.HexToAddress("0x"+s))
	}

	return accounts, nil
}

// GetKeyedValue returns the [32]byte value stored under the given key.
// Returns sql.ErrNoRows if the key is absent.
func (stdb *StateDB) GetKeyedValue(key ethcommon.Hash) (ethcommon.Hash, error) {
	stmt, err := stdb.stmtCache.Prepare(`SELECT value FROM kv WHERE key = ?`)
	if err != nil {
		return ethcommon.Hash{}, err
	}

	var s string
	if err := stmt.QueryRow(key.String()[2:]).Scan(&s); err != nil {
		return ethcommon.Hash{}, err
	}

	return ethcommon.HexToHash("0x" + s), nil
}

func (stdb *StateDB) setKeyedValue(key ethcommon.Hash, value ethcommon.Hash) error {
	stmt, err := stdb.stmtCache.Prepare(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return err
	}

	_, err = stmt.Exec(key.String()[2:], value.String()[2:])
	return err
}
