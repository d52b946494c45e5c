package bridgeman

/*
bridgeman implements minting.DepositLedger against the real Bridge
ledger contract on an EVM chain. It is strictly read-only: the minter
never writes to the Bridge, it only resolves deposit keys into the
deposit view recorded there.
*/

import (
	"context"
	"math/big"
	"strings"

	"github.com/TEENet-io/minter-go/minting"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	logger "github.com/sirupsen/logrus"
)

// ContractCaller is the slice of ethclient.Client we depend on.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type Bridgeman struct {
	caller        ContractCaller
	bridgeAddress ethcommon.Address
	bridgeABI     abi.ABI
}

// New dials the Ethereum node and binds to the Bridge ledger contract.
func New(cfg *Config) (*Bridgeman, error) {
	client, err := ethclient.Dial(cfg.URL)
	if err != nil {
		logger.Errorf("failed to connect to the Ethereum client: %v", err)
		return nil, err
	}

	return NewWithCaller(client, cfg.BridgeContractAddress)
}

// NewWithCaller binds to the Bridge ledger through any ContractCaller.
// Used by tests with a simulated caller.
func NewWithCaller(caller ContractCaller, bridgeAddress ethcommon.Address) (*Bridgeman, error) {
	parsed, err := abi.JSON(strings.NewReader(bridgeABIJSON))
	if err != nil {
		return nil, err
	}

	return &Bridgeman{
		caller:        caller,
		bridgeAddress: bridgeAddress,
		bridgeABI:     parsed,
	}, nil
}

// Lookup resolves a deposit key via the deposits(uint256) getter.
// A deposit with revealedAt == 0 reads as "not found".
func (b *Bridgeman) Lookup(depositKey ethcommon.Hash) (*minting.Deposit, bool, error) {
	input, err := b.bridgeABI.Pack("deposits", depositKey.Big())
	if err != nil {
		return nil, false, err
	}

	output, err := b.caller.CallContract(context.Background(), ethereum.CallMsg{
		To:   &b.bridgeAddress,
		Data: input,
	}, nil)
	if err != nil {
		logger.Errorf("deposits() call failed: depositKey=%s, err=%v", depositKey.String(), err)
		return nil, false, err
	}

	outs, err := b.bridgeABI.Unpack("deposits", output)
	if err != nil {
		return nil, false, err
	}

	deposit := &minting.Deposit{
		Depositor:  outs[0].(ethcommon.Address),
		Amount:     new(big.Int).SetUint64(outs[1].(uint64)),
		RevealedAt: int64(outs[2].(uint32)),
		Vault:      outs[3].(ethcommon.Address),
		SweptAt:    int64(outs[4].(uint32)),
	}

	if deposit.RevealedAt == 0 {
		return nil, false, nil
	}

	return deposit, true, nil
}
