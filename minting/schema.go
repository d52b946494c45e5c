package minting

import "strings"

var (
	strZeroBytes32 = strings.Repeat("0", 64)
	strZeroBytes20 = strings.Repeat("0", 40)

	// one row per pending optimistic minting request; rows are deleted
	// when the request is finalized or cancelled
	pendingMintTable = `CREATE TABLE IF NOT EXISTS pending_mint (
		depositKey CHAR(64) PRIMARY KEY NOT NULL,
		fundingTxHash CHAR(64) NOT NULL,
		fundingOutputIndex INTEGER NOT NULL,
		requestedAt BIGINT NOT NULL,
		CONSTRAINT chk_depositKey CHECK (depositKey != '` + strZeroBytes32 + `'),
		CONSTRAINT chk_requestedAt CHECK (requestedAt > 0)
	);`

	// pooled optimistic minting debt per depositor; rows stay at zero
	// once fully repaid, they are never pruned
	mintingDebtTable = `CREATE TABLE IF NOT EXISTS minting_debt (
		depositor CHAR(40) PRIMARY KEY NOT NULL,
		amount BIGINT NOT NULL,
		CONSTRAINT chk_depositor CHECK (depositor != '` + strZeroBytes20 + `'),
		CONSTRAINT chk_amount CHECK (amount >= 0)
	);`
)
