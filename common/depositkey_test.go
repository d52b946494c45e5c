package common

import (
	"encoding/binary"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
)

func TestDeriveDepositKeyDeterministic(t *testing.T) {
	txHash := RandBytes32()
	idx := uint32(3)

	k1 := DeriveDepositKey(txHash, idx)
	k2 := DeriveDepositKey(txHash, idx)
	assert.Equal(t, k1, k2)

	// packing must be hash || big-endian index
	packed := make([]byte, 36)
	copy(packed[:32], txHash[:])
	binary.BigEndian.PutUint32(packed[32:], idx)
	assert.Equal(t, crypto.Keccak256Hash(packed), k1)
}

func TestDeriveDepositKeyDistinct(t *testing.T) {
	seen := make(map[[32]byte]bool)
	for i := 0; i < 1000; i++ {
		key := DeriveDepositKey(RandBytes32(), uint32(i%4))
		assert.False(t, seen[key], "deposit key collision")
		seen[key] = true
	}

	// same hash, different output index
	txHash := RandBytes32()
	assert.NotEqual(t, DeriveDepositKey(txHash, 0), DeriveDepositKey(txHash, 1))
}
