// This is a http type of reporter.
// It fetches data from the minting state and the authorization registry
// and publishes it on the http routes. Strictly read-only.

package reporter

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TEENet-io/minter-go/common"
	"github.com/TEENet-io/minter-go/minting"
	"github.com/TEENet-io/minter-go/registry"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

const (
	ROUTE_HELLO   = "/hello"
	ROUTE_PENDING = "/pending"
	ROUTE_DEBT    = "/debt"
	ROUTE_MINTERS = "/minters"
	ROUTE_GUARDS  = "/guards"
)

type HttpReporter struct {
	serverIP   string // listen ip
	serverPort string // listen port

	// upstream data sources
	state *minting.State
	reg   *registry.Registry
}

func NewHttpReporter(serverIP string, serverPort string, state *minting.State, reg *registry.Registry) *HttpReporter {
	return &HttpReporter{
		serverIP:   serverIP,
		serverPort: serverPort,
		state:      state,
		reg:        reg,
	}
}

// Hook up routes & handlers
func (h *HttpReporter) SetupRouter() *gin.Engine {
	router := gin.Default()

	router.GET(ROUTE_HELLO, Hello)
	router.GET(ROUTE_PENDING, h.Pending)
	router.GET(ROUTE_DEBT, h.Debt)
	router.GET(ROUTE_MINTERS, h.Minters)
	router.GET(ROUTE_GUARDS, h.Guards)

	return router
}

// Hook up router & ip:port
func (h *HttpReporter) Run() {
	router := h.SetupRouter()
	address := h.serverIP + ":" + h.serverPort
	if err := router.Run(address); err != nil {
		panic(err)
	}
}

// Example route.
func Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "world",
	})
}

// Pending publishes the pending minting request for one deposit,
// addressed either by deposit_key or by (funding_tx, idx), or all of
// them when no parameter is given.
func (h *HttpReporter) Pending(c *gin.Context) {
	depositKey := c.Query("deposit_key")
	fundingTx := c.Query("funding_tx")

	if depositKey == "" && fundingTx == "" {
		pending, err := h.state.ListPending()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": jsonPendingList(pending)})
		return
	}

	var key ethcommon.Hash
	if depositKey != "" {
		key = ethcommon.HexToHash(common.Prepend0xPrefix(depositKey))
	} else {
		txHash, err := common.TxIdStrToBytes32(fundingTx)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "funding_tx is not a valid txid"})
			return
		}
		idx, ok := parseIdx(c.Query("idx"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "idx must be an unsigned integer"})
			return
		}
		key = common.DeriveDepositKey(txHash, idx)
	}

	pending, ok, err := h.state.GetPending(key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending mint for this deposit"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": jsonPending(pending)})
}

// Debt publishes a depositor's outstanding optimistic minting debt.
func (h *HttpReporter) Debt(c *gin.Context) {
	depositor := c.Query("depositor")
	if depositor == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "depositor must be provided"})
		return
	}

	debt, err := h.state.GetDebt(ethcommon.HexToAddress(depositor))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": JSONDebt{
		Depositor: ethcommon.HexToAddress(depositor).Hex(),
		Amount:    debt.String(),
		AmountBtc: common.FormatSatoshi(debt.Int64()),
	}})
}

func (h *HttpReporter) Minters(c *gin.Context) {
	h.members(c, h.reg.Minters)
}

func (h *HttpReporter) Guards(c *gin.Context) {
	h.members(c, h.reg.Guards)
}

func (h *HttpReporter) members(c *gin.Context, list func() ([]ethcommon.Address, error)) {
	accounts, err := list()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	hexed := []string{}
	for _, a := range accounts {
		hexed = append(hexed, a.Hex())
	}
	c.JSON(http.StatusOK, gin.H{"data": hexed})
}
