// Server = bridge ledger adapter + registry + minting state + http reporter.
// All components are configured via environment variables (strings!).

package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logger "github.com/sirupsen/logrus"

	ethcommon "github.com/ethereum/go-ethereum/common"
	_ "github.com/mattn/go-sqlite3"

	"github.com/TEENet-io/minter-go/bridgeman"
	"github.com/TEENet-io/minter-go/minting"
	"github.com/TEENet-io/minter-go/registry"
	"github.com/TEENet-io/minter-go/reporter"
)

const (
	// event channel sizing for registry and minting state
	CHANNEL_BUFFER_SIZE = 10
)

// Keep the configuration's fields as "text" as possible.
// Its easier to load it from env vars or a config file.
type MinterServerConfig struct {
	// eth side
	EthRpcUrl          string // json rpc url
	BridgeContractAddr string // Bridge ledger contract address
	VaultAddr          string // vault this minter is authorized for

	// governance side
	OwnerAddr string // registry owner account

	// state side
	DbFilePath string // db file path

	// Http side
	HttpIp   string // eg. 0.0.0.0
	HttpPort string // eg. 8080
}

// MinterServer holds the objects that consists of the minter server.
type MinterServer struct {
	MyRegistry   *registry.Registry
	MyState      *minting.State
	MyBridgeman  *bridgeman.Bridgeman
	MyReporter   *reporter.HttpReporter
	MyRegistryDb *registry.StateDB
	MyStateDb    *minting.StateDB
}

// NewMinterServer wires the components together. The token minter
// capability is injected by the caller since its concrete form depends
// on the deployment (contract-bound in production, simulated in tests).
func NewMinterServer(msc *MinterServerConfig, tokenMinter minting.TokenMinter) (*MinterServer, error) {
	// 1) Create sql db, shared by registry and minting state.
	sqldb, err := sql.Open("sqlite3", msc.DbFilePath)
	if err != nil {
		logger.Fatalf("failed to open db file: %v", err)
		return nil, err
	}

	// 2) registry over its statedb
	myRegistryDb, err := registry.NewStateDB(sqldb)
	if err != nil {
		logger.Fatalf("failed to create registry db: %v", err)
		return nil, err
	}

	myRegistry, err := registry.New(myRegistryDb, &registry.Config{
		Owner:       ethcommon.HexToAddress(msc.OwnerAddr),
		ChannelSize: CHANNEL_BUFFER_SIZE,
	})
	if err != nil {
		logger.Fatalf("failed to create registry: %v", err)
		return nil, err
	}

	// 3) read-only adapter to the Bridge ledger
	myBridgeman, err := bridgeman.New(&bridgeman.Config{
		URL:                   msc.EthRpcUrl,
		BridgeContractAddress: ethcommon.HexToAddress(msc.BridgeContractAddr),
	})
	if err != nil {
		logger.Fatalf("failed to create bridgeman: %v", err)
		return nil, err
	}

	// 4) minting state machine
	myStateDb, err := minting.NewStateDB(sqldb)
	if err != nil {
		logger.Fatalf("failed to create minting state db: %v", err)
		return nil, err
	}

	myState, err := minting.New(myStateDb, &minting.Config{
		Vault:       ethcommon.HexToAddress(msc.VaultAddr),
		ChannelSize: CHANNEL_BUFFER_SIZE,
	}, myRegistry, myBridgeman, tokenMinter)
	if err != nil {
		logger.Fatalf("failed to create minting state: %v", err)
		return nil, err
	}

	// 5) http reporter
	myReporter := reporter.NewHttpReporter(msc.HttpIp, msc.HttpPort, myState, myRegistry)

	return &MinterServer{
		MyRegistry:   myRegistry,
		MyState:      myState,
		MyBridgeman:  myBridgeman,
		MyReporter:   myReporter,
		MyRegistryDb: myRegistryDb,
		MyStateDb:    myStateDb,
	}, nil
}

// StartMinterServerAndWait starts the http reporter and blocks until
// the process receives SIGINT/SIGTERM.
func StartMinterServerAndWait(msc *MinterServerConfig, tokenMinter minting.TokenMinter) {
	server, err := NewMinterServer(msc, tokenMinter)
	if err != nil {
		fmt.Printf("Error creating minter server: %v\n", err)
		return
	}
	defer server.MyRegistryDb.Close()
	defer server.MyStateDb.Close()

	go server.MyReporter.Run()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Infof("received signal %v, shutting down", sig)
}
