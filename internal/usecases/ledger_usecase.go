package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blackwallet.backend/internal/domain/entities"
	domainerrors "blackwallet.backend/internal/domain/errors"
	"blackwallet.backend/internal/domain/repositories"
	"blackwallet.backend/pkg/logger"
	"blackwallet.backend/pkg/metrics"
	"blackwallet.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxWithdrawalAttempts bounds re-evaluation after a lost compare-and-swap.
const maxWithdrawalAttempts = 3

// LedgerUsecase owns the transaction ledger and the daily spending counter.
type LedgerUsecase struct {
	uow             repositories.UnitOfWork
	walletRepo      repositories.WalletRepository
	transactionRepo repositories.TransactionRepository
	notifier        Notifier
	now             func() time.Time
}

// NewLedgerUsecase creates a new ledger usecase
func NewLedgerUsecase(
	uow repositories.UnitOfWork,
	walletRepo repositories.WalletRepository,
	transactionRepo repositories.TransactionRepository,
	notifier Notifier,
) *LedgerUsecase {
	return &LedgerUsecase{
		uow:             uow,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		notifier:        notifier,
		now:             time.Now,
	}
}

// RecordDeposit credits the wallet. Deposits are never limit-checked.
func (u *LedgerUsecase) RecordDeposit(ctx context.Context, input *entities.DepositInput) (*entities.Transaction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	wallet, err := u.walletRepo.GetByID(ctx, input.WalletID)
	if err != nil {
		return nil, err
	}

	tx := u.newTransaction(wallet.ID, entities.TransactionDeposit, input.Amount, input.Category,
		"Deposit to wallet "+wallet.Name)
	if err := u.transactionRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("record deposit: %w", err)
	}
	metrics.LedgerEntries.WithLabelValues(string(tx.Type)).Inc()

	u.notifier.Notify(ctx, wallet.UserID, entities.NotificationDepositSuccess, "Deposit received",
		fmt.Sprintf("%s was deposited to %s.", tx.Amount.String(), wallet.Name))
	return tx, nil
}

// RecordYield credits a reward to the wallet.
func (u *LedgerUsecase) RecordYield(ctx context.Context, input *entities.RewardInput) (*entities.Transaction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	wallet, err := u.walletRepo.GetByID(ctx, input.WalletID)
	if err != nil {
		return nil, err
	}

	tx := u.newTransaction(wallet.ID, entities.TransactionYield, input.Amount, entities.CategoryReward,
		"Yield reward for wallet "+wallet.Name)
	if err := u.transactionRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("record yield: %w", err)
	}
	metrics.LedgerEntries.WithLabelValues(string(tx.Type)).Inc()

	u.notifier.Notify(ctx, wallet.UserID, entities.NotificationRewardReceived, "Reward received",
		fmt.Sprintf("You earned %s in %s.", tx.Amount.String(), wallet.Name))
	return tx, nil
}

// RecordWithdrawal debits the wallet if the balance and daily limit allow it.
// The balance read, limit check, ledger append and counter update happen in
// one transaction holding the wallet row lock. The counter is written with a
// compare-and-swap; a lost race re-reads and re-evaluates.
func (u *LedgerUsecase) RecordWithdrawal(ctx context.Context, input *entities.WithdrawInput) (*entities.WithdrawalResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return u.withdraw(ctx, input, func(w *entities.Wallet, amount decimal.Decimal) (string, string) {
		return "Withdrawal completed", fmt.Sprintf("%s was withdrawn from %s.", amount.String(), w.Name)
	})
}

// TransferFunds sends funds to an external address. The ledger books it as a
// withdrawal, so the balance and daily limit apply exactly as they do to
// RecordWithdrawal.
func (u *LedgerUsecase) TransferFunds(ctx context.Context, input *entities.TransferInput) (*entities.WithdrawalResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	withdrawal := input.Withdrawal()
	if err := withdrawal.Validate(); err != nil {
		return nil, err
	}
	destination := input.Destination()
	result, err := u.withdraw(ctx, withdrawal, func(_ *entities.Wallet, amount decimal.Decimal) (string, string) {
		return "Transfer sent", fmt.Sprintf("You sent %s to %s.", amount.String(), destination)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Transfer booked",
		zap.String("wallet_id", input.WalletID.String()),
		zap.String("destination", destination),
		zap.String("transaction_id", result.Transaction.ID.String()),
	)
	return result, nil
}

// successNote builds the notification title and message for a completed debit.
type successNote func(w *entities.Wallet, amount decimal.Decimal) (title, message string)

func (u *LedgerUsecase) withdraw(ctx context.Context, input *entities.WithdrawInput, note successNote) (*entities.WithdrawalResult, error) {

	var (
		result *entities.WithdrawalResult
		wallet *entities.Wallet
		err    error
	)
	for attempt := 1; attempt <= maxWithdrawalAttempts; attempt++ {
		result, wallet, err = u.withdrawOnce(ctx, input)
		if !errors.Is(err, domainerrors.ErrConcurrentUpdate) {
			break
		}
		logger.Warn(ctx, "Withdrawal lost spending update race, retrying",
			zap.String("wallet_id", input.WalletID.String()),
			zap.Int("attempt", attempt),
		)
	}

	switch {
	case errors.Is(err, domainerrors.ErrInsufficientBalance):
		metrics.WithdrawalDecisions.WithLabelValues("insufficient_balance").Inc()
		return nil, err
	case errors.Is(err, domainerrors.ErrDailyLimitExceeded):
		metrics.WithdrawalDecisions.WithLabelValues("block").Inc()
		return nil, err
	case err != nil:
		return nil, err
	}

	metrics.WithdrawalDecisions.WithLabelValues(strings.ToLower(string(result.Decision))).Inc()
	metrics.LedgerEntries.WithLabelValues(string(entities.TransactionWithdrawal)).Inc()

	if result.Decision == entities.DecisionWarn {
		u.notifier.Notify(ctx, wallet.UserID, entities.NotificationDailyLimitAlert, "Daily limit almost reached",
			fmt.Sprintf("%s has spent %s of its %s daily limit.", wallet.Name, result.SpendingToday.String(), wallet.DailyLimit.String()))
	}
	title, message := note(wallet, result.Transaction.Amount)
	u.notifier.Notify(ctx, wallet.UserID, entities.NotificationWithdrawalSuccess, title, message)

	return result, nil
}

func (u *LedgerUsecase) withdrawOnce(ctx context.Context, input *entities.WithdrawInput) (*entities.WithdrawalResult, *entities.Wallet, error) {
	var (
		result *entities.WithdrawalResult
		wallet *entities.Wallet
	)

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		w, err := u.walletRepo.GetByID(u.uow.WithLock(txCtx), input.WalletID)
		if err != nil {
			return err
		}

		summary, err := u.transactionRepo.Summarize(txCtx, w.ID)
		if err != nil {
			return err
		}

		decision, err := EvaluateWithdrawal(w, input.Amount, summary.Balance)
		if err != nil {
			return err
		}

		description := input.Description
		if description == "" {
			description = "Withdrawal from wallet " + w.Name
		}
		tx := u.newTransaction(w.ID, entities.TransactionWithdrawal, input.Amount, input.Category, description)
		if err := u.transactionRepo.Create(txCtx, tx); err != nil {
			return fmt.Errorf("record withdrawal: %w", err)
		}

		next := w.SpendingToday.Add(input.Amount)
		if err := u.walletRepo.CompareAndSwapSpending(txCtx, w.ID, w.SpendingToday, next); err != nil {
			return err
		}

		wallet = w
		result = &entities.WithdrawalResult{
			Decision:      decision,
			Transaction:   tx,
			SpendingToday: next,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, wallet, nil
}

// ComputeBalance folds the wallet's full ledger.
func (u *LedgerUsecase) ComputeBalance(ctx context.Context, walletID uuid.UUID) (entities.BalanceSummary, error) {
	if _, err := u.walletRepo.GetByID(ctx, walletID); err != nil {
		return entities.BalanceSummary{}, err
	}
	return u.transactionRepo.Summarize(ctx, walletID)
}

// History returns the balance over the full ledger and the entries inside
// the filter's date range, newest first.
func (u *LedgerUsecase) History(ctx context.Context, walletID uuid.UUID, filter repositories.TransactionFilter) (*entities.History, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, domainerrors.ValidationErrors{"to": "must not be before from"}
	}

	summary, err := u.ComputeBalance(ctx, walletID)
	if err != nil {
		return nil, err
	}

	txs, err := u.transactionRepo.ListByWallet(ctx, walletID, filter)
	if err != nil {
		return nil, err
	}

	return &entities.History{WalletID: walletID, Summary: summary, Transactions: txs}, nil
}

// ResetDailySpending zeroes the counter and clears any approval under the
// wallet row lock.
func (u *LedgerUsecase) ResetDailySpending(ctx context.Context, walletID uuid.UUID) error {
	return u.resetLocked(ctx, walletID, nil)
}

// ConsumeApproval is ResetDailySpending guarded by the approval that
// authorized it: if tokenHash is no longer the stored approval, nothing is
// reset and ErrNoPendingApproval is returned.
func (u *LedgerUsecase) ConsumeApproval(ctx context.Context, walletID uuid.UUID, tokenHash string) error {
	return u.resetLocked(ctx, walletID, func(w *entities.Wallet) error {
		if w.ApprovalTokenHash == nil || *w.ApprovalTokenHash != tokenHash {
			return domainerrors.ErrNoPendingApproval
		}
		return nil
	})
}

func (u *LedgerUsecase) resetLocked(ctx context.Context, walletID uuid.UUID, check func(*entities.Wallet) error) error {
	return u.uow.Do(ctx, func(txCtx context.Context) error {
		w, err := u.walletRepo.GetByID(u.uow.WithLock(txCtx), walletID)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(w); err != nil {
				return err
			}
		}
		return u.walletRepo.ResetSpending(txCtx, walletID)
	})
}

// RollOverDailySpending starts a new spending day for every wallet.
// Pending approvals are left alone.
func (u *LedgerUsecase) RollOverDailySpending(ctx context.Context) (int64, error) {
	n, err := u.walletRepo.ResetAllSpending(ctx)
	if err != nil {
		return 0, fmt.Errorf("roll over daily spending: %w", err)
	}
	return n, nil
}

func (u *LedgerUsecase) newTransaction(walletID uuid.UUID, kind entities.TransactionType, amount decimal.Decimal, category, description string) *entities.Transaction {
	return &entities.Transaction{
		ID:          utils.GenerateUUIDv7(),
		WalletID:    walletID,
		Type:        kind,
		Amount:      amount,
		Category:    category,
		Description: description,
		CreatedAt:   u.now(),
	}
}
