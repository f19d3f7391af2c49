package blockchain

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodSelectors(t *testing.T) {
	sels := MethodSelectors()
	require.Len(t, sels, 3)

	want := map[string]bool{
		"computeAddress(address[],uint256,uint256,address[],uint256,address)": true,
		"createWallet(address[],uint256,uint256,address[],uint256)":           true,
		"resetDailySpent()": true,
	}
	for i, s := range sels {
		assert.True(t, want[s.Signature], s.Signature)
		assert.Equal(t, "0x"+hex.EncodeToString(crypto.Keccak256([]byte(s.Signature))[:4]), s.ID)
		if i > 0 {
			assert.Less(t, sels[i-1].Signature, s.Signature)
		}
	}
}
