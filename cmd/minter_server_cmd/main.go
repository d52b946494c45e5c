package main

import (
	"fmt"

	"github.com/TEENet-io/minter-go/bridgeman"
	"github.com/TEENet-io/minter-go/cmd"
	"github.com/TEENet-io/minter-go/logconfig"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

const (
	ENV_CONFIG_FILE_PATH = "MINTER_CONFIG"
)

func main() {
	logconfig.ConfigProductionLogger()

	// Tool to read environment variables
	viper.AutomaticEnv()

	// Accessing an environment variable of configuration file location.
	_config_file := viper.GetString(ENV_CONFIG_FILE_PATH)
	fmt.Printf("Minter server configuration file = %s\n", _config_file)

	// See if file exists
	if !cmd.FileExists(_config_file) {
		fmt.Printf("Minter server configuration file not found: %s\n", _config_file)
		return
	}

	// Read from config file.
	if !initializeViper(_config_file) {
		return
	}

	// Make the configuration
	msc := PrepareMinterServerConfig()

	// The token minter submits mint() transactions signed by the core account.
	priv, err := bridgeman.StringToPrivateKey(viper.GetString("ETH_CORE_ACCOUNT_PRIV"))
	if err != nil {
		fmt.Printf("Error parsing core account private key: %s\n", err)
		return
	}
	tokenMinter, err := bridgeman.NewTokenMinter(
		msc.EthRpcUrl,
		ethcommon.HexToAddress(viper.GetString("TOKEN_CONTRACT_ADDR")),
		priv,
	)
	if err != nil {
		fmt.Printf("Error creating token minter: %s\n", err)
		return
	}

	fmt.Println("Starting minter server... press Ctrl+C to kill the server")
	// Start server and block.
	cmd.StartMinterServerAndWait(msc, tokenMinter)
}

func initializeViper(filePath string) bool {
	viper.SetConfigFile(filePath)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("Error reading configuration file, %s", err)
		return false
	}
	return true
}

// PrepareMinterServerConfig reads configuration variables and returns a MinterServerConfig.
func PrepareMinterServerConfig() *cmd.MinterServerConfig {
	return &cmd.MinterServerConfig{
		// eth side
		EthRpcUrl:          viper.GetString("ETH_RPC_URL"),
		BridgeContractAddr: viper.GetString("BRIDGE_CONTRACT_ADDR"),
		VaultAddr:          viper.GetString("VAULT_ADDR"),
		// governance side
		OwnerAddr: viper.GetString("OWNER_ADDR"),
		// state side
		DbFilePath: viper.GetString("DB_FILE_PATH"),
		// Http side
		HttpIp:   viper.GetString("HTTP_IP"),
		HttpPort: viper.GetString("HTTP_PORT"),
	}
}
