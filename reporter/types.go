package reporter

import (
	"strconv"

	"github.com/TEENet-io/minter-go/common"
	"github.com/TEENet-io/minter-go/minting"
)

type JSONPendingMint struct {
	DepositKey         string `json:"deposit_key"`
	FundingTxHash      string `json:"funding_txid"`
	FundingOutputIndex uint32 `json:"funding_output_index"`
	RequestedAt        int64  `json:"requested_at"`
}

type JSONDebt struct {
	Depositor string `json:"depositor"`
	Amount    string `json:"amount"`
	AmountBtc string `json:"amount_btc"`
}

func jsonPending(p *minting.PendingMint) JSONPendingMint {
	return JSONPendingMint{
		DepositKey:         p.DepositKey.String(),
		FundingTxHash:      common.Bytes32ToChainhash(p.FundingTxHash).String(),
		FundingOutputIndex: p.FundingOutputIndex,
		RequestedAt:        p.RequestedAt,
	}
}

func jsonPendingList(pending []*minting.PendingMint) []JSONPendingMint {
	out := []JSONPendingMint{}
	for _, p := range pending {
		out = append(out, jsonPending(p))
	}
	return out
}

func parseIdx(s string) (uint32, bool) {
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
