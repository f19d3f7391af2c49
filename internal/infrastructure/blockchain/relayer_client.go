package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	domainerrors "blackwallet.backend/internal/domain/errors"
	"blackwallet.backend/pkg/logger"
	"blackwallet.backend/pkg/metrics"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// ChainBackend is the subset of *ethclient.Client the relayer needs.
type ChainBackend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

var dialEVMClient = func(ctx context.Context, rpcURL string) (ChainBackend, func(), error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}

// WalletParams are the factory arguments that determine a wallet's address.
type WalletParams struct {
	Owners             []common.Address
	RequiredSignatures *big.Int
	DailyLimit         *big.Int
	EmergencyContacts  []common.Address
	Salt               *big.Int
}

// TxResult is a confirmed relayer transaction.
type TxResult struct {
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
}

// RelayerOptions tunes confirmation waiting.
type RelayerOptions struct {
	ConfirmTimeout time.Duration
	ReceiptPoll    time.Duration
	// GasHeadroomPercent is added on top of the node's gas estimate.
	GasHeadroomPercent uint64
}

// RelayerClient submits factory and wallet calls signed by the relayer account.
type RelayerClient struct {
	backend ChainBackend
	signer  RelayerSigner
	locker  NonceLocker
	factory common.Address
	chainID *big.Int
	opts    RelayerOptions
	closeFn func()
}

// NewRelayerClient wires a backend, signer and lock. The chain id is read once.
func NewRelayerClient(ctx context.Context, backend ChainBackend, signer RelayerSigner, locker NonceLocker, factory common.Address, opts RelayerOptions) (*RelayerClient, error) {
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = 2 * time.Minute
	}
	if opts.ReceiptPoll <= 0 {
		opts.ReceiptPoll = 2 * time.Second
	}
	if opts.GasHeadroomPercent == 0 {
		opts.GasHeadroomPercent = 20
	}
	if locker == nil {
		locker = NewMutexLocker()
	}
	return &RelayerClient{
		backend: backend,
		signer:  signer,
		locker:  locker,
		factory: factory,
		chainID: chainID,
		opts:    opts,
	}, nil
}

// DialRelayerClient connects to rpcURL and builds a RelayerClient on it.
func DialRelayerClient(ctx context.Context, rpcURL string, signer RelayerSigner, locker NonceLocker, factory common.Address, opts RelayerOptions) (*RelayerClient, error) {
	backend, closeFn, err := dialEVMClient(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc: %w", err)
	}
	client, err := NewRelayerClient(ctx, backend, signer, locker, factory, opts)
	if err != nil {
		closeFn()
		return nil, err
	}
	client.closeFn = closeFn
	return client, nil
}

// RelayerAddress is the account passed as emergency contact and deployer.
func (c *RelayerClient) RelayerAddress() common.Address {
	return c.signer.Address()
}

// ChainID returns the chain ID
func (c *RelayerClient) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// ComputeAddress asks the factory for the CREATE2 address the relayer would
// deploy to. Same params always give the same address.
func (c *RelayerClient) ComputeAddress(ctx context.Context, p WalletParams) (common.Address, error) {
	data, err := factoryABI.Pack(methodComputeAddress,
		p.Owners, p.RequiredSignatures, p.DailyLimit, p.EmergencyContacts, p.Salt, c.signer.Address())
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to pack computeAddress: %w", err)
	}

	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &c.factory, Data: data}, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("computeAddress call failed: %w", err)
	}

	values, err := factoryABI.Unpack(methodComputeAddress, out)
	if err != nil || len(values) != 1 {
		return common.Address{}, fmt.Errorf("failed to decode computeAddress result: %v", err)
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, errors.New("computeAddress returned a non-address value")
	}
	return addr, nil
}

// WalletCodeExists reports whether a contract is already deployed at addr.
func (c *RelayerClient) WalletCodeExists(ctx context.Context, addr common.Address) (bool, error) {
	code, err := c.backend.CodeAt(ctx, addr, nil)
	if err != nil {
		return false, fmt.Errorf("failed to read code: %w", err)
	}
	return len(code) > 0, nil
}

// DeployWallet calls createWallet and waits for one confirmation. Not
// idempotent: a repeated salt reverts on chain.
func (c *RelayerClient) DeployWallet(ctx context.Context, p WalletParams) (*TxResult, error) {
	data, err := factoryABI.Pack(methodCreateWallet,
		p.Owners, p.RequiredSignatures, p.DailyLimit, p.EmergencyContacts, p.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: pack createWallet: %v", domainerrors.ErrChainDeploymentFailed, err)
	}

	res, err := c.transact(ctx, methodCreateWallet, c.factory, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainerrors.ErrChainDeploymentFailed, err)
	}
	return res, nil
}

// ResetDailySpent calls resetDailySpent on the wallet contract and waits for
// confirmation.
func (c *RelayerClient) ResetDailySpent(ctx context.Context, wallet common.Address) (*TxResult, error) {
	data, err := walletABI.Pack(methodResetDailySpent)
	if err != nil {
		return nil, fmt.Errorf("%w: pack resetDailySpent: %v", domainerrors.ErrChainResetFailed, err)
	}

	res, err := c.transact(ctx, methodResetDailySpent, wallet, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainerrors.ErrChainResetFailed, err)
	}
	return res, nil
}

// Close closes the client connection
func (c *RelayerClient) Close() {
	if c.closeFn != nil {
		c.closeFn()
	}
}

var errReverted = errors.New("transaction reverted")

func (c *RelayerClient) transact(ctx context.Context, method string, to common.Address, data []byte) (*TxResult, error) {
	hash, err := c.submit(ctx, to, data)
	if err != nil {
		metrics.ChainTransactions.WithLabelValues(method, "submit_failed").Inc()
		return nil, err
	}
	logger.Info(ctx, "Relayer transaction broadcast",
		zap.String("method", method),
		zap.String("to", to.Hex()),
		zap.String("tx_hash", hash.Hex()),
	)

	// A broadcast tx is not abandoned when the caller goes away.
	started := time.Now()
	receipt, err := c.waitReceipt(context.WithoutCancel(ctx), hash)
	if err != nil {
		result := "error"
		if errors.Is(err, domainerrors.ErrChainTimeout) {
			result = "timeout"
		}
		metrics.ChainTransactions.WithLabelValues(method, result).Inc()
		logger.Error(ctx, "Relayer transaction not confirmed",
			zap.String("method", method),
			zap.String("tx_hash", hash.Hex()),
			zap.Error(err),
		)
		return nil, err
	}
	metrics.ChainConfirmSeconds.WithLabelValues(method).Observe(time.Since(started).Seconds())

	if receipt.Status != types.ReceiptStatusSuccessful {
		metrics.ChainTransactions.WithLabelValues(method, "reverted").Inc()
		return nil, fmt.Errorf("%w: %s", errReverted, hash.Hex())
	}

	metrics.ChainTransactions.WithLabelValues(method, "success").Inc()
	res := &TxResult{TxHash: hash.Hex(), GasUsed: receipt.GasUsed}
	if receipt.BlockNumber != nil {
		res.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return res, nil
}

// submit holds the nonce lock from nonce fetch through broadcast only.
func (c *RelayerClient) submit(ctx context.Context, to common.Address, data []byte) (common.Hash, error) {
	unlock, err := c.locker.Lock(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to acquire relayer lock: %w", err)
	}
	defer unlock()

	from := c.signer.Address()
	nonce, err := c.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get gas price: %w", err)
	}

	gas, err := c.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Data: data})
	if err != nil {
		return common.Hash{}, fmt.Errorf("gas estimation failed (likely revert): %w", err)
	}
	gas += gas * c.opts.GasHeadroomPercent / 100

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    big.NewInt(0),
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := c.signer.SignTx(tx, c.chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return signed.Hash(), nil
}

// waitReceipt polls until the receipt exists or the confirm timeout elapses
// (ErrChainTimeout).
func (c *RelayerClient) waitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.opts.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.opts.ReceiptPoll)
	defer ticker.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(waitCtx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) && waitCtx.Err() == nil {
			logger.Warn(ctx, "Receipt lookup failed, retrying", zap.String("tx_hash", hash.Hex()), zap.Error(err))
		}

		select {
		case <-waitCtx.Done():
			return nil, fmt.Errorf("%w: %s", domainerrors.ErrChainTimeout, hash.Hex())
		case <-ticker.C:
		}
	}
}
