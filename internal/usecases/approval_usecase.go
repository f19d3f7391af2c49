package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"blackwallet.backend/internal/domain/entities"
	domainerrors "blackwallet.backend/internal/domain/errors"
	"blackwallet.backend/internal/domain/repositories"
	"blackwallet.backend/internal/infrastructure/blockchain"
	"blackwallet.backend/internal/infrastructure/email"
	"blackwallet.backend/pkg/crypto"
	"blackwallet.backend/pkg/logger"
	"blackwallet.backend/pkg/metrics"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultApprovalTTL is how long an emergency approval code stays valid.
const DefaultApprovalTTL = 24 * time.Hour

// WalletResetter clears the on-chain daily spending of a wallet contract.
type WalletResetter interface {
	ResetDailySpent(ctx context.Context, wallet common.Address) (*blockchain.TxResult, error)
}

// ApprovalConsumer performs the local reset once the chain has confirmed.
type ApprovalConsumer interface {
	ConsumeApproval(ctx context.Context, walletID uuid.UUID, tokenHash string) error
}

var generateApprovalToken = crypto.GenerateApprovalToken

// ApprovalUsecase runs the emergency unlock workflow:
// NONE -> PENDING -> (consumed back to NONE | EXPIRED).
type ApprovalUsecase struct {
	walletRepo repositories.WalletRepository
	consumer   ApprovalConsumer
	chain      WalletResetter
	mailer     email.Dispatcher
	notifier   Notifier
	appURL     string
	ttl        time.Duration
	now        func() time.Time
}

// UnlockRequestResult reports the fan-out of an approval request.
type UnlockRequestResult struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Delivered int       `json:"delivered"`
	Failed    []string  `json:"failed"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ApprovalResult is returned once an approval has been consumed.
type ApprovalResult struct {
	WalletID uuid.UUID `json:"walletId"`
	TxHash   string    `json:"txHash"`
	Message  string    `json:"message"`
}

// NewApprovalUsecase creates a new approval usecase. A non-positive ttl
// means DefaultApprovalTTL.
func NewApprovalUsecase(
	walletRepo repositories.WalletRepository,
	consumer ApprovalConsumer,
	chain WalletResetter,
	mailer email.Dispatcher,
	notifier Notifier,
	appURL string,
	ttl time.Duration,
) *ApprovalUsecase {
	if ttl <= 0 {
		ttl = DefaultApprovalTTL
	}
	return &ApprovalUsecase{
		walletRepo: walletRepo,
		consumer:   consumer,
		chain:      chain,
		mailer:     mailer,
		notifier:   notifier,
		appURL:     strings.TrimRight(appURL, "/"),
		ttl:        ttl,
		now:        time.Now,
	}
}

// SetClock replaces the time source.
func (u *ApprovalUsecase) SetClock(now func() time.Time) {
	u.now = now
}

// RequestUnlock issues a fresh approval code, replacing any earlier one, and
// emails the approval link to every emergency contact. Delivery failures are
// reported per recipient; the stored code stays valid either way.
func (u *ApprovalUsecase) RequestUnlock(ctx context.Context, walletID uuid.UUID) (*UnlockRequestResult, error) {
	wallet, err := u.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if len(wallet.EmergencyEmails) == 0 {
		return nil, domainerrors.ErrNoEmergencyContacts
	}

	token, err := generateApprovalToken()
	if err != nil {
		return nil, err
	}
	expiresAt := u.now().Add(u.ttl)
	if err := u.walletRepo.SetApproval(ctx, wallet.ID, crypto.HashToken(token), expiresAt); err != nil {
		return nil, fmt.Errorf("store approval: %w", err)
	}
	metrics.ApprovalEvents.WithLabelValues("requested").Inc()

	link := u.approvalLink(wallet.ID, token)
	subject := "Emergency spending approval for " + wallet.Name
	body := approvalEmailBody(wallet, link, expiresAt)

	failed := []string{}
	for _, to := range wallet.EmergencyEmails {
		if err := u.mailer.Send(ctx, to, subject, body); err != nil {
			logger.Warn(ctx, "Approval email not delivered",
				zap.String("wallet_id", wallet.ID.String()),
				zap.String("to", to),
				zap.Error(err),
			)
			failed = append(failed, to)
		}
	}

	delivered := len(wallet.EmergencyEmails) - len(failed)
	return &UnlockRequestResult{
		Success:   true,
		Message:   unlockMessage(delivered, len(wallet.EmergencyEmails)),
		Delivered: delivered,
		Failed:    failed,
		ExpiresAt: expiresAt,
	}, nil
}

// Approve validates an approval code and, once the wallet contract's daily
// spending is reset on chain, resets the local counter and consumes the code.
// Any failure before the chain confirms leaves the approval in place.
func (u *ApprovalUsecase) Approve(ctx context.Context, input *entities.ApproveInput) (*ApprovalResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	wallet, err := u.walletRepo.GetByID(ctx, input.WalletID)
	if err != nil {
		return nil, err
	}

	switch wallet.ApprovalState(u.now()) {
	case entities.ApprovalNone:
		return nil, domainerrors.ErrNoPendingApproval
	case entities.ApprovalExpired:
		metrics.ApprovalEvents.WithLabelValues("expired").Inc()
		return nil, domainerrors.ErrApprovalExpired
	}

	storedHash := *wallet.ApprovalTokenHash
	if !crypto.TokenMatchesHash(input.ApprovalCode, storedHash) {
		metrics.ApprovalEvents.WithLabelValues("rejected").Inc()
		return nil, domainerrors.ErrInvalidApprovalCode
	}

	res, err := u.chain.ResetDailySpent(ctx, common.HexToAddress(wallet.Address))
	if err != nil {
		metrics.ApprovalEvents.WithLabelValues("chain_failed").Inc()
		logger.Error(ctx, "On-chain daily spending reset failed",
			zap.String("wallet_id", wallet.ID.String()),
			zap.String("address", wallet.Address),
			zap.Error(err),
		)
		if !errors.Is(err, domainerrors.ErrChainResetFailed) {
			err = fmt.Errorf("%w: %w", domainerrors.ErrChainResetFailed, err)
		}
		return nil, err
	}

	// The chain has reset; finish locally even if the caller has gone.
	ctx = context.WithoutCancel(ctx)
	if err := u.consumer.ConsumeApproval(ctx, wallet.ID, storedHash); err != nil {
		if !errors.Is(err, domainerrors.ErrNoPendingApproval) {
			logger.Error(ctx, "Chain reset confirmed but local reset failed",
				zap.String("wallet_id", wallet.ID.String()),
				zap.String("tx_hash", res.TxHash),
				zap.Error(err),
			)
		}
		return nil, err
	}
	metrics.ApprovalEvents.WithLabelValues("approved").Inc()

	u.notifier.Notify(ctx, wallet.UserID, entities.NotificationEmergencyApproval, "Emergency approval granted",
		fmt.Sprintf("Your emergency contact approved the request. Daily spending for %s has been reset.", wallet.Name))

	return &ApprovalResult{
		WalletID: wallet.ID,
		TxHash:   res.TxHash,
		Message:  "Daily spending limit has been reset",
	}, nil
}

// ApprovalState reports where the wallet's approval workflow stands.
func (u *ApprovalUsecase) ApprovalState(ctx context.Context, walletID uuid.UUID) (entities.ApprovalState, error) {
	wallet, err := u.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return "", err
	}
	return wallet.ApprovalState(u.now()), nil
}

func (u *ApprovalUsecase) approvalLink(walletID uuid.UUID, token string) string {
	return fmt.Sprintf("%s/api/v1/approve?walletId=%s&code=%s",
		u.appURL, url.QueryEscape(walletID.String()), url.QueryEscape(token))
}

func approvalEmailBody(wallet *entities.Wallet, link string, expiresAt time.Time) string {
	var b strings.Builder
	b.WriteString("You are listed as an emergency contact for the wallet \"" + wallet.Name + "\".\n\n")
	b.WriteString("Its owner has reached the daily spending limit of " + wallet.DailyLimit.String() + " and asked for it to be reset.\n")
	b.WriteString("If you approve, open this link:\n\n")
	b.WriteString(link + "\n\n")
	b.WriteString("The link expires at " + expiresAt.UTC().Format(time.RFC1123) + " and can be used once.\n")
	b.WriteString("If you did not expect this request, ignore this email.\n")
	return b.String()
}

func unlockMessage(delivered, total int) string {
	switch {
	case delivered == total:
		return fmt.Sprintf("Approval request sent to %d emergency contact(s)", total)
	case delivered == 0:
		return "Approval request created but no emergency contact could be reached"
	default:
		return fmt.Sprintf("Approval request sent to %d of %d emergency contacts", delivered, total)
	}
}
