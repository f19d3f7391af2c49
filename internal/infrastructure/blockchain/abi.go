package blockchain

import (
	"encoding/hex"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const factoryABIJSON = `[
  {"type":"function","name":"createWallet","stateMutability":"nonpayable",
   "inputs":[
     {"name":"_owners","type":"address[]"},
     {"name":"_requiredSignatures","type":"uint256"},
     {"name":"_dailyLimit","type":"uint256"},
     {"name":"_emergencyContacts","type":"address[]"},
     {"name":"_salt","type":"uint256"}],
   "outputs":[{"name":"wallet","type":"address"}]},
  {"type":"function","name":"computeAddress","stateMutability":"view",
   "inputs":[
     {"name":"_owners","type":"address[]"},
     {"name":"_requiredSignatures","type":"uint256"},
     {"name":"_dailyLimit","type":"uint256"},
     {"name":"_emergencyContacts","type":"address[]"},
     {"name":"_salt","type":"uint256"},
     {"name":"_deployer","type":"address"}],
   "outputs":[{"name":"wallet","type":"address"}]}
]`

const walletABIJSON = `[
  {"type":"function","name":"resetDailySpent","stateMutability":"nonpayable","inputs":[],"outputs":[]}
]`

const (
	methodCreateWallet    = "createWallet"
	methodComputeAddress  = "computeAddress"
	methodResetDailySpent = "resetDailySpent"
)

var (
	factoryABI = mustParseABI(factoryABIJSON)
	walletABI  = mustParseABI(walletABIJSON)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// Selector is a contract function signature and its 4-byte id.
type Selector struct {
	Signature string
	ID        string
}

// MethodSelectors lists the selectors of every factory and wallet method the
// relayer calls, sorted by signature.
func MethodSelectors() []Selector {
	var out []Selector
	for _, parsed := range []abi.ABI{factoryABI, walletABI} {
		for _, m := range parsed.Methods {
			out = append(out, Selector{Signature: m.Sig, ID: "0x" + hex.EncodeToString(m.ID)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Signature < out[j].Signature })
	return out
}
