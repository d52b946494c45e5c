package minting

import (
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// DefaultMintingDelay is the veto window guards get between a request and
// its earliest possible finalization.
const DefaultMintingDelay = 3 * time.Hour

type Config struct {
	// Vault is the address minting is authorized for; deposits revealed
	// to another vault are rejected at request time.
	Vault ethcommon.Address

	// MintingDelay must have strictly elapsed since the request before a
	// finalize can succeed. Defaults to DefaultMintingDelay when zero.
	MintingDelay time.Duration

	ChannelSize int
}

func (cfg *Config) delaySeconds() int64 {
	d := cfg.MintingDelay
	if d == 0 {
		d = DefaultMintingDelay
	}
	return int64(d / time.Second)
}
