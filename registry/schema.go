package registry

import "strings"

var (
	strZeroBytes20 = strings.Repeat("0", 40)

	// one row per authorized account, one table per role
	minterTable = `CREATE TABLE IF NOT EXISTS minter (
		account CHAR(40) PRIMARY KEY NOT NULL,
		addedAt BIGINT NOT NULL,
		CONSTRAINT chk_account CHECK (account != '` + strZeroBytes20 + `')
	);`

	guardTable = `CREATE TABLE IF NOT EXISTS guard (
		account CHAR(40) PRIMARY KEY NOT NULL,
		addedAt BIGINT NOT NULL,
		CONSTRAINT chk_account CHECK (account != '` + strZeroBytes20 + `')
	);`

	// table stores key-value pairs. Both key and value are a 32-byte hex string without prefix '0x'
	kvTable = `CREATE TABLE IF NOT EXISTS kv (
		key CHAR(64) PRIMARY KEY NOT NULL,
		value CHAR(64) NOT NULL
	);`
)
