package bridgeman

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	logger "github.com/sirupsen/logrus"
)

// mint(address,uint256) is all the minter needs from the token contract.
const tokenABIJSON = `[
	{
		"inputs": [
			{"internalType": "address", "name": "recipient", "type": "address"},
			{"internalType": "uint256", "name": "amount", "type": "uint256"}
		],
		"name": "mint",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

const mintGasLimit = 120_000

// TransactionBackend is the slice of ethclient.Client the token minter
// depends on.
type TransactionBackend interface {
	PendingNonceAt(ctx context.Context, account ethcommon.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// TokenMinterClient implements minting.TokenMinter by submitting a
// mint() transaction to the token contract, signed with the minter's
// core account key.
type TokenMinterClient struct {
	backend      TransactionBackend
	tokenAddress ethcommon.Address
	chainId      *big.Int
	priv         *ecdsa.PrivateKey
	from         ethcommon.Address
	tokenABI     abi.ABI
}

func NewTokenMinter(url string, tokenAddress ethcommon.Address, priv *ecdsa.PrivateKey) (*TokenMinterClient, error) {
	client, err := ethclient.Dial(url)
	if err != nil {
		logger.Errorf("failed to connect to the Ethereum client: %v", err)
		return nil, err
	}

	chainId, err := client.ChainID(context.Background())
	if err != nil {
		logger.Errorf("failed to get chain id: %v", err)
		return nil, err
	}

	return NewTokenMinterWithBackend(client, tokenAddress, chainId, priv)
}

func NewTokenMinterWithBackend(backend TransactionBackend, tokenAddress ethcommon.Address, chainId *big.Int, priv *ecdsa.PrivateKey) (*TokenMinterClient, error) {
	parsed, err := abi.JSON(strings.NewReader(tokenABIJSON))
	if err != nil {
		return nil, err
	}

	return &TokenMinterClient{
		backend:      backend,
		tokenAddress: tokenAddress,
		chainId:      chainId,
		priv:         priv,
		from:         crypto.PubkeyToAddress(priv.PublicKey),
		tokenABI:     parsed,
	}, nil
}

func (t *TokenMinterClient) Mint(recipient ethcommon.Address, amount *big.Int) error {
	input, err := t.tokenABI.Pack("mint", recipient, amount)
	if err != nil {
		return err
	}

	ctx := context.Background()

	nonce, err := t.backend.PendingNonceAt(ctx, t.from)
	if err != nil {
		return err
	}

	gasPrice, err := t.backend.SuggestGasPrice(ctx)
	if err != nil {
		return err
	}

	tx := types.NewTransaction(nonce, t.tokenAddress, big.NewInt(0), mintGasLimit, gasPrice, input)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(t.chainId), t.priv)
	if err != nil {
		return err
	}

	if err := t.backend.SendTransaction(ctx, signed); err != nil {
		logger.Errorf("mint tx failed to send: recipient=%s, amount=%v, err=%v",
			recipient.Hex(), amount, err)
		return err
	}

	logger.WithFields(logger.Fields{
		"txHash":    signed.Hash().Hex(),
		"recipient": recipient.Hex(),
		"amount":    amount.String(),
	}).Info("mint tx sent")

	return nil
}

// StringToPrivateKey parses a hex-encoded private key (with or without
// the 0x prefix).
func StringToPrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
}
