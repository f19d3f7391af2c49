// Command compute-address predicts the CREATE2 address of a wallet for a
// given owner, limit and salt, and reports whether code is already deployed
// there. Use it to reconcile a wallet whose deploy succeeded but whose row
// was never written: the server logs owner, salt and tx hash for that case.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"blackwallet.backend/internal/config"
	"blackwallet.backend/internal/infrastructure/blockchain"
	"blackwallet.backend/internal/usecases"
)

type addressChain interface {
	RelayerAddress() common.Address
	ComputeAddress(ctx context.Context, p blockchain.WalletParams) (common.Address, error)
	WalletCodeExists(ctx context.Context, addr common.Address) (bool, error)
	Close()
}

var dialChain = func(ctx context.Context, cfg config.BlockchainConfig) (addressChain, error) {
	signer, err := blockchain.NewKeySigner(cfg.RelayerPrivateKey)
	if err != nil {
		return nil, err
	}
	if !common.IsHexAddress(cfg.FactoryAddress) {
		return nil, fmt.Errorf("FACTORY_ADDRESS %q is not a valid address", cfg.FactoryAddress)
	}
	return blockchain.DialRelayerClient(ctx, cfg.RPCURL, signer, nil, common.HexToAddress(cfg.FactoryAddress), blockchain.RelayerOptions{})
}

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], config.Load(), os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, cfg *config.Config, out io.Writer) error {
	fs := flag.NewFlagSet("compute-address", flag.ContinueOnError)
	fs.SetOutput(out)
	owner := fs.String("owner", "", "owner EOA address")
	limit := fs.String("limit", "", "daily limit in whole tokens, e.g. 1000")
	saltArg := fs.String("salt", "", "decimal salt logged when the wallet was deployed")
	selectors := fs.Bool("selectors", false, "print the contract method selectors and exit")
	timeout := fs.Duration("timeout", 30*time.Second, "rpc timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *selectors {
		for _, s := range blockchain.MethodSelectors() {
			fmt.Fprintf(out, "%s: %s\n", s.Signature, s.ID)
		}
		return nil
	}

	if !common.IsHexAddress(*owner) {
		return errors.New("-owner must be a hex address")
	}
	dailyLimit, err := decimal.NewFromString(*limit)
	if err != nil || dailyLimit.IsNegative() {
		return errors.New("-limit must be a non-negative number")
	}
	salt, ok := new(big.Int).SetString(*saltArg, 10)
	if !ok || salt.Sign() < 0 {
		return errors.New("-salt must be a non-negative decimal integer")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	chain, err := dialChain(ctx, cfg.Blockchain)
	if err != nil {
		return err
	}
	defer chain.Close()

	params := usecases.NewWalletParams(common.HexToAddress(*owner), chain.RelayerAddress(), dailyLimit, salt)
	addr, err := chain.ComputeAddress(ctx, params)
	if err != nil {
		return err
	}
	deployed, err := chain.WalletCodeExists(ctx, addr)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "relayer:  %s\n", chain.RelayerAddress().Hex())
	fmt.Fprintf(out, "address:  %s\n", addr.Hex())
	fmt.Fprintf(out, "deployed: %t\n", deployed)
	return nil
}
