package common

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// ChainhashToBytes32 copies the internal (little-endian) byte order of a
// BTC tx hash into [32]byte. This is the byte order the Bridge ledger
// stores funding tx hashes in, NOT the reversed order block explorers show.
func ChainhashToBytes32(h *chainhash.Hash) [32]byte {
	var b [32]byte
	copy(b[:], h[:])
	return b
}

func Bytes32ToChainhash(b [32]byte) *chainhash.Hash {
	h, _ := chainhash.NewHash(b[:])
	return h
}

// TxIdStrToBytes32 parses a txid in the usual display (reversed) hex form.
func TxIdStrToBytes32(txid string) ([32]byte, error) {
	h, err := chainhash.NewHashFromStr(Trim0xPrefix(txid))
	if err != nil {
		return [32]byte{}, err
	}
	return ChainhashToBytes32(h), nil
}

// FundingReferenceFromRawTx extracts the (fundingTxHash, fundingOutputIndex)
// pair of a deposit from a serialized BTC transaction. The index must point
// at an existing output of the transaction.
func FundingReferenceFromRawTx(rawTx []byte, fundingOutputIndex uint32) ([32]byte, uint32, error) {
	var msgTx wire.MsgTx
	if err := msgTx.Deserialize(bytes.NewReader(rawTx)); err != nil {
		return [32]byte{}, 0, err
	}

	if int(fundingOutputIndex) >= len(msgTx.TxOut) {
		return [32]byte{}, 0, fmt.Errorf(
			"funding output index out of range: idx=%d, outputs=%d",
			fundingOutputIndex, len(msgTx.TxOut))
	}

	if msgTx.TxOut[fundingOutputIndex].Value <= 0 {
		return [32]byte{}, 0, errors.New("funding output carries no value")
	}

	txHash := msgTx.TxHash()
	return ChainhashToBytes32(&txHash), fundingOutputIndex, nil
}

// FormatSatoshi renders a satoshi amount as a BTC string, e.g. "0.015 BTC".
func FormatSatoshi(sats int64) string {
	return btcutil.Amount(sats).String()
}

func IsValidBtcAddress(address string, cfg *chaincfg.Params) bool {
	if _, err := btcutil.DecodeAddress(address, cfg); err != nil {
		return false
	}

	return true
}
