package common

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	logger "github.com/sirupsen/logrus"
)

// EncodePacked mimics solidity's abi.encodePacked for the types the
// minter deals with. Fixed-width values are emitted as-is, integers
// big-endian.
func EncodePacked(values ...interface{}) []byte {
	var res [][]byte
	for _, value := range values {
		switch v := value.(type) {
		case string:
			res = append(res, encodeString(v))
		case []byte:
			res = append(res, v)
		case [32]byte:
			res = append(res, v[:])
		case uint32:
			res = append(res, encodeUint32(v))
		case *big.Int:
			res = append(res, math.U256Bytes(v))
		case common.Hash:
			res = append(res, v[:])
		case common.Address:
			res = append(res, v[:])
		}
	}
	return bytes.Join(res, nil)
}

func encodeUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func encodeString(v string) []byte {
	if strings.HasPrefix(v, "0x") {
		return encodeHexString(v)
	}

	return []byte(v)
}

func encodeHexString(v string) []byte {
	decoded, err := hex.DecodeString(strings.TrimPrefix(v, "0x"))
	if err != nil {
		logger.Fatal(err)
	}
	return decoded
}
