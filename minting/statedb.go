package minting

import (
	"database/sql"
	"math/big"

	"github.com/TEENet-io/minter-go/database"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

type StateDB struct {
	db        *sql.DB
	stmtCache *database.StmtCache
}

func NewStateDB(db *sql.DB) (*StateDB, error) {
	for _, table := range []string{pendingMintTable, mintingDebtTable} {
		if _, err := db.Exec(table); err != nil {
			return nil, err
		}
	}

	return &StateDB{
		db:        db,
		stmtCache: database.NewStmtCache(db),
	}, nil
}

func (stdb *StateDB) Close() {
	stdb.stmtCache.Clear()
}

// begin opens a transaction so that a finalize or repay either fully
// commits or fully reverts.
func (stdb *StateDB) begin() (*sql.Tx, error) {
	return stdb.db.Begin()
}

func (stdb *StateDB) GetPending(depositKey ethcommon.Hash) (*PendingMint, bool, error) {
	query := `SELECT depositKey, fundingTxHash, fundingOutputIndex, requestedAt
		FROM pending_mint WHERE depositKey = ?`
	stmt, err := stdb.stmtCache.Prepare(query)
	if err != nil {
		return nil, false, err
	}

	var s sqlPendingMint
	err = stmt.QueryRow(depositKey.String()[2:]).Scan(
		&s.DepositKey, &s.FundingTxHash, &s.FundingOutputIndex, &s.RequestedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}

	return s.decode(), true, nil
}

func (stdb *StateDB) ListPending() ([]*PendingMint, error) {
	query := `SELECT depositKey, fundingTxHash, fundingOutputIndex, requestedAt
		FROM pending_mint ORDER BY requestedAt`
	stmt, err := stdb.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pending := []*PendingMint{}
	for rows.Next() {
		var s sqlPendingMint
		if err := rows.Scan(&s.DepositKey, &s.FundingTxHash, &s.FundingOutputIndex, &s.RequestedAt); err != nil {
			return nil, err
		}
		pending = append(pending, s.decode())
	}

	return pending, nil
}

// setPending records a request. A request for an already pending deposit
// key overwrites the stored timestamp, resetting the delay window.
func (stdb *StateDB) setPending(p *PendingMint) error {
	query := `INSERT INTO pending_mint (depositKey, fundingTxHash, fundingOutputIndex, requestedAt)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (depositKey) DO UPDATE SET requestedAt = excluded.requestedAt`
	stmt, err := stdb.stmtCache.Prepare(query)
	if err != nil {
		return err
	}

	s := p.encode()
	_, err = stmt.Exec(s.DepositKey, s.FundingTxHash, s.FundingOutputIndex, s.RequestedAt)
	return err
}

func (stdb *StateDB) deletePendingTx(tx *sql.Tx, depositKey ethcommon.Hash) error {
	_, err := tx.Exec(`DELETE FROM pending_mint WHERE depositKey = ?`, depositKey.String()[2:])
	return err
}

func (stdb *StateDB) GetDebt(depositor ethcommon.Address) (*big.Int, error) {
	stmt, err := stdb.stmtCache.Prepare(`SELECT amount FROM minting_debt WHERE depositor = ?`)
	if err != nil {
		return nil, err
	}

	var amount uint64
	err = stmt.QueryRow(depositor.String()[2:]).Scan(&amount)
	if err != nil {
		if err == sql.ErrNoRows {
			return big.NewInt(0), nil
		}
		return nil, err
	}

	return new(big.Int).SetUint64(amount), nil
}

func (stdb *StateDB) getDebtTx(tx *sql.Tx, depositor ethcommon.Address) (*big.Int, error) {
	var amount uint64
	err := tx.QueryRow(`SELECT amount FROM minting_debt WHERE depositor = ?`,
		depositor.String()[2:]).Scan(&amount)
	if err != nil {
		if err == sql.ErrNoRows {
			return big.NewInt(0), nil
		}
		return nil, err
	}

	return new(big.Int).SetUint64(amount), nil
}

func (stdb *StateDB) setDebtTx(tx *sql.Tx, depositor ethcommon.Address, amount *big.Int) error {
	_, err := tx.Exec(`INSERT INTO minting_debt (depositor, amount) VALUES (?, ?)
		ON CONFLICT (depositor) DO UPDATE SET amount = excluded.amount`,
		depositor.String()[2:], amount.Uint64())
	return err
}
