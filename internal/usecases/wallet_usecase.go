package usecases

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"blackwallet.backend/internal/domain/entities"
	domainerrors "blackwallet.backend/internal/domain/errors"
	"blackwallet.backend/internal/domain/repositories"
	"blackwallet.backend/internal/infrastructure/blockchain"
	"blackwallet.backend/pkg/crypto"
	"blackwallet.backend/pkg/logger"
	"blackwallet.backend/pkg/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WalletChain is the relayer surface used to provision wallets.
type WalletChain interface {
	RelayerAddress() common.Address
	ComputeAddress(ctx context.Context, p blockchain.WalletParams) (common.Address, error)
	WalletCodeExists(ctx context.Context, addr common.Address) (bool, error)
	DeployWallet(ctx context.Context, p blockchain.WalletParams) (*blockchain.TxResult, error)
}

// tokenDecimals scales a decimal limit to the contract's integer units.
const tokenDecimals = 18

var generateSalt = func() (*big.Int, error) {
	raw, err := crypto.GenerateRandomToken(8)
	if err != nil {
		return nil, err
	}
	salt, ok := new(big.Int).SetString(raw, 16)
	if !ok {
		return nil, fmt.Errorf("invalid salt %q", raw)
	}
	return salt, nil
}

// NewWalletParams builds the factory arguments for a 1-of-1 wallet owned by
// owner with the relayer as its only emergency contact.
func NewWalletParams(owner, relayer common.Address, dailyLimit decimal.Decimal, salt *big.Int) blockchain.WalletParams {
	return blockchain.WalletParams{
		Owners:             []common.Address{owner},
		RequiredSignatures: big.NewInt(1),
		DailyLimit:         toTokenUnits(dailyLimit),
		EmergencyContacts:  []common.Address{relayer},
		Salt:               salt,
	}
}

// WalletUsecase provisions and manages multisig wallets
type WalletUsecase struct {
	userRepo   repositories.UserRepository
	walletRepo repositories.WalletRepository
	chain      WalletChain
	notifier   Notifier
	now        func() time.Time
}

// NewWalletUsecase creates a new wallet usecase
func NewWalletUsecase(
	userRepo repositories.UserRepository,
	walletRepo repositories.WalletRepository,
	chain WalletChain,
	notifier Notifier,
) *WalletUsecase {
	return &WalletUsecase{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		chain:      chain,
		notifier:   notifier,
		now:        time.Now,
	}
}

// CreateWallet deploys a 1-of-1 multisig owned by the user's EOA, with the
// relayer as emergency signer, and records it.
//
// The address is computed before deploying so a salt collision with an
// existing contract is rejected instead of failing on chain. If the deploy
// succeeds but the row cannot be written, the wallet is orphaned on chain;
// that case is logged with everything needed to reconcile it by hand.
func (u *WalletUsecase) CreateWallet(ctx context.Context, userID uuid.UUID, input *entities.CreateWalletInput) (*entities.Wallet, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	salt, err := generateSalt()
	if err != nil {
		return nil, err
	}

	params := NewWalletParams(common.HexToAddress(user.EOAAddress), u.chain.RelayerAddress(), input.DailyLimit, salt)

	address, err := u.chain.ComputeAddress(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("compute wallet address: %w", err)
	}
	exists, err := u.chain.WalletCodeExists(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("check wallet code: %w", err)
	}
	if exists {
		return nil, domainerrors.ErrWalletAlreadyDeployed
	}

	res, err := u.chain.DeployWallet(ctx, params)
	if err != nil {
		// a timed out deploy may still land; keep what is needed to find it
		logger.Error(ctx, "Wallet deploy not confirmed",
			zap.String("user_id", user.ID.String()),
			zap.String("address", address.Hex()),
			zap.String("salt", salt.String()),
			zap.Error(err),
		)
		return nil, err
	}

	// The contract exists now; record it even if the caller has gone.
	ctx = context.WithoutCancel(ctx)

	now := u.now()
	wallet := &entities.Wallet{
		ID:              utils.GenerateUUIDv7(),
		UserID:          user.ID,
		Address:         address.Hex(),
		Name:            input.Name,
		DailyLimit:      input.DailyLimit,
		SpendingToday:   decimal.Zero,
		EmergencyEmails: input.EmergencyEmails,
		Salt:            salt.String(),
		DeployTxHash:    res.TxHash,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := u.walletRepo.Create(ctx, wallet); err != nil {
		logger.Error(ctx, "Wallet deployed on chain but not recorded",
			zap.String("user_id", user.ID.String()),
			zap.String("address", wallet.Address),
			zap.String("salt", wallet.Salt),
			zap.String("tx_hash", res.TxHash),
			zap.Error(err),
		)
		return nil, fmt.Errorf("record wallet: %w", err)
	}

	if !user.Onboarded {
		if err := u.userRepo.MarkOnboarded(ctx, user.ID); err != nil {
			logger.Warn(ctx, "Failed to mark user onboarded", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	logger.Info(ctx, "Wallet created",
		zap.String("wallet_id", wallet.ID.String()),
		zap.String("address", wallet.Address),
		zap.String("tx_hash", res.TxHash),
	)
	u.notifier.Notify(ctx, user.ID, entities.NotificationWalletCreated, "Wallet created",
		fmt.Sprintf("%s is live at %s.", wallet.Name, wallet.Address))

	return wallet, nil
}

// GetWallet returns a wallet the user owns.
func (u *WalletUsecase) GetWallet(ctx context.Context, userID, walletID uuid.UUID) (*entities.Wallet, error) {
	wallet, err := u.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !wallet.IsOwnedBy(userID) {
		return nil, domainerrors.ErrForbidden
	}
	return wallet, nil
}

// GetPrimaryWallet returns the user's first wallet.
func (u *WalletUsecase) GetPrimaryWallet(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	return u.walletRepo.GetPrimaryByUserID(ctx, userID)
}

// ListWallets returns every wallet the user owns, oldest first.
func (u *WalletUsecase) ListWallets(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	return u.walletRepo.ListByUserID(ctx, userID)
}

// UpdateProfile changes name, daily limit or emergency contacts. The new
// limit applies to the ledger check; the deployed contract keeps its own.
func (u *WalletUsecase) UpdateProfile(ctx context.Context, userID, walletID uuid.UUID, input *entities.UpdateProfileInput) (*entities.Wallet, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	wallet, err := u.GetWallet(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		wallet.Name = *input.Name
	}
	if input.DailyLimit != nil {
		wallet.DailyLimit = *input.DailyLimit
	}
	if input.EmergencyEmails != nil {
		wallet.EmergencyEmails = input.EmergencyEmails
	}
	wallet.UpdatedAt = u.now()

	if err := u.walletRepo.UpdateProfile(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func toTokenUnits(amount decimal.Decimal) *big.Int {
	return amount.Shift(tokenDecimals).BigInt()
}
