package common

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
)

func makeRawTx(t *testing.T, values ...int64) ([]byte, [32]byte) {
	msgTx := wire.NewMsgTx(wire.TxVersion)
	msgTx.AddTxIn(wire.NewTxIn(&wire.OutPoint{}, nil, nil))
	for _, v := range values {
		msgTx.AddTxOut(wire.NewTxOut(v, []byte{0x51}))
	}

	var buf bytes.Buffer
	err := msgTx.Serialize(&buf)
	assert.NoError(t, err)

	txHash := msgTx.TxHash()
	return buf.Bytes(), ChainhashToBytes32(&txHash)
}

func TestFundingReferenceFromRawTx(t *testing.T) {
	rawTx, wantHash := makeRawTx(t, 1000, 2000)

	gotHash, gotIdx, err := FundingReferenceFromRawTx(rawTx, 1)
	assert.NoError(t, err)
	assert.Equal(t, wantHash, gotHash)
	assert.Equal(t, uint32(1), gotIdx)

	// index out of range
	_, _, err = FundingReferenceFromRawTx(rawTx, 2)
	assert.Error(t, err)

	// not a transaction at all
	_, _, err = FundingReferenceFromRawTx([]byte{0xde, 0xad}, 0)
	assert.Error(t, err)
}

func TestTxIdStrRoundtrip(t *testing.T) {
	_, hash := makeRawTx(t, 500)

	display := Bytes32ToChainhash(hash).String()
	parsed, err := TxIdStrToBytes32(display)
	assert.NoError(t, err)
	assert.Equal(t, hash, parsed)

	_, err = TxIdStrToBytes32("zz")
	assert.Error(t, err)
}

func TestFormatSatoshi(t *testing.T) {
	assert.Equal(t, "0.00001 BTC", FormatSatoshi(1000))
}
