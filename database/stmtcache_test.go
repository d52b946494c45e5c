package database

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	_ "github.com/mattn/go-sqlite3"
)

func TestStmtCache(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	assert.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE t (k INTEGER PRIMARY KEY)`)
	assert.NoError(t, err)

	sc := NewStmtCache(db)
	defer sc.Clear()

	stmt1, err := sc.Prepare(`INSERT INTO t (k) VALUES (?)`)
	assert.NoError(t, err)
	stmt2, err := sc.Prepare(`INSERT INTO t (k) VALUES (?)`)
	assert.NoError(t, err)
	assert.Same(t, stmt1, stmt2)

	_, err = stmt1.Exec(1)
	assert.NoError(t, err)

	// invalid sql surfaces the prepare error
	_, err = sc.Prepare(`INSERT INTO missing`)
	assert.Error(t, err)
}
