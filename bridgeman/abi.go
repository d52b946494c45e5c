package bridgeman

// The slice of the Bridge ledger ABI the minter needs: the read-only
// deposits(depositKey) getter. Timestamps are uint32 on chain, zero
// meaning "not yet".
const bridgeABIJSON = `[
	{
		"inputs": [
			{"internalType": "uint256", "name": "depositKey", "type": "uint256"}
		],
		"name": "deposits",
		"outputs": [
			{"internalType": "address", "name": "depositor", "type": "address"},
			{"internalType": "uint64", "name": "amount", "type": "uint64"},
			{"internalType": "uint32", "name": "revealedAt", "type": "uint32"},
			{"internalType": "address", "name": "vault", "type": "address"},
			{"internalType": "uint32", "name": "sweptAt", "type": "uint32"}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`
