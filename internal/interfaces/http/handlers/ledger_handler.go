package handlers

import (
	"context"
	"net/http"
	"time"

	"blackwallet.backend/internal/domain/entities"
	domainerrors "blackwallet.backend/internal/domain/errors"
	"blackwallet.backend/internal/domain/repositories"
	"blackwallet.backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ledgerService interface {
	RecordDeposit(ctx context.Context, input *entities.DepositInput) (*entities.Transaction, error)
	RecordWithdrawal(ctx context.Context, input *entities.WithdrawInput) (*entities.WithdrawalResult, error)
	TransferFunds(ctx context.Context, input *entities.TransferInput) (*entities.WithdrawalResult, error)
	RecordYield(ctx context.Context, input *entities.RewardInput) (*entities.Transaction, error)
	ComputeBalance(ctx context.Context, walletID uuid.UUID) (entities.BalanceSummary, error)
	History(ctx context.Context, walletID uuid.UUID, filter repositories.TransactionFilter) (*entities.History, error)
}

// LedgerHandler handles deposits, withdrawals and balance queries
type LedgerHandler struct {
	ledgerUsecase ledgerService
	wallets       walletOwnership
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerUsecase ledgerService, wallets walletOwnership) *LedgerHandler {
	return &LedgerHandler{ledgerUsecase: ledgerUsecase, wallets: wallets}
}

// Deposit credits a wallet
// POST /api/v1/wallets/deposit
func (h *LedgerHandler) Deposit(c *gin.Context) {
	var input entities.DepositInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	if err := input.Validate(); err != nil {
		response.Error(c, err)
		return
	}
	if _, ok := requireOwner(c, h.wallets, input.WalletID); !ok {
		return
	}

	tx, err := h.ledgerUsecase.RecordDeposit(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"walletId":    input.WalletID,
		"transaction": tx,
	})
}

// Withdraw debits a wallet subject to balance and daily limit
// POST /api/v1/wallets/withdraw
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	var input entities.WithdrawInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	if err := input.Validate(); err != nil {
		response.Error(c, err)
		return
	}
	if _, ok := requireOwner(c, h.wallets, input.WalletID); !ok {
		return
	}

	result, err := h.ledgerUsecase.RecordWithdrawal(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"walletId":      input.WalletID,
		"decision":      result.Decision,
		"spendingToday": result.SpendingToday,
		"transaction":   result.Transaction,
	})
}

// Transfer sends funds to an external address, limit-checked like a withdrawal
// POST /api/v1/wallets/transfer
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var input entities.TransferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	if err := input.Validate(); err != nil {
		response.Error(c, err)
		return
	}
	if _, ok := requireOwner(c, h.wallets, input.WalletID); !ok {
		return
	}

	result, err := h.ledgerUsecase.TransferFunds(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message":       "Transfer successful",
		"walletId":      input.WalletID,
		"destination":   input.Destination(),
		"decision":      result.Decision,
		"spendingToday": result.SpendingToday,
		"transaction":   result.Transaction,
	})
}

// Reward credits yield to a wallet
// POST /api/v1/wallets/reward
func (h *LedgerHandler) Reward(c *gin.Context) {
	var input entities.RewardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	if err := input.Validate(); err != nil {
		response.Error(c, err)
		return
	}
	if _, ok := requireOwner(c, h.wallets, input.WalletID); !ok {
		return
	}

	tx, err := h.ledgerUsecase.RecordYield(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"walletId":    input.WalletID,
		"transaction": tx,
	})
}

// Balance returns the wallet's balance and totals
// GET /api/v1/wallets/:id/balance
func (h *LedgerHandler) Balance(c *gin.Context) {
	walletID, ok := pathWalletID(c)
	if !ok {
		return
	}
	wallet, ok := requireOwner(c, h.wallets, walletID)
	if !ok {
		return
	}

	summary, err := h.ledgerUsecase.ComputeBalance(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"walletId":       walletID,
		"balance":        summary.Balance,
		"totalIncome":    summary.TotalIncome,
		"totalWithdrawn": summary.TotalWithdrawn,
		"dailyLimit":     wallet.DailyLimit,
		"spendingToday":  wallet.SpendingToday,
		"remainingToday": wallet.RemainingToday(),
	})
}

// Transactions lists ledger entries, newest first
// GET /api/v1/wallets/:id/transactions?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *LedgerHandler) Transactions(c *gin.Context) {
	walletID, ok := pathWalletID(c)
	if !ok {
		return
	}

	filter, err := parseDateFilter(c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if _, ok := requireOwner(c, h.wallets, walletID); !ok {
		return
	}

	history, err := h.ledgerUsecase.History(c.Request.Context(), walletID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	if history.Transactions == nil {
		history.Transactions = []*entities.Transaction{}
	}

	response.Success(c, http.StatusOK, history)
}

// parseDateFilter accepts RFC 3339 timestamps or plain dates. A plain "to"
// date covers that whole day.
func parseDateFilter(from, to string) (repositories.TransactionFilter, error) {
	var filter repositories.TransactionFilter
	v := domainerrors.ValidationErrors{}

	if from != "" {
		ts, _, err := parseDate(from)
		if err != nil {
			v.Add("from", "must be YYYY-MM-DD or RFC 3339")
		}
		filter.From = ts
	}
	if to != "" {
		ts, dateOnly, err := parseDate(to)
		if err != nil {
			v.Add("to", "must be YYYY-MM-DD or RFC 3339")
		}
		if dateOnly {
			ts = ts.Add(24*time.Hour - time.Nanosecond)
		}
		filter.To = ts
	}
	return filter, v.OrNil()
}

func parseDate(s string) (time.Time, bool, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, false, nil
	}
	ts, err := time.Parse(time.DateOnly, s)
	return ts, err == nil, err
}
