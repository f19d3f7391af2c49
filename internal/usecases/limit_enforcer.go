package usecases

import (
	"blackwallet.backend/internal/domain/entities"
	domainerrors "blackwallet.backend/internal/domain/errors"
	"github.com/shopspring/decimal"
)

// EvaluateWithdrawal decides whether amount may leave wallet given its current
// balance. Insufficient funds are reported before any limit check. A wallet
// with a zero limit is unlimited. WARN is returned once, on the withdrawal
// that first crosses AlertThreshold of the limit.
func EvaluateWithdrawal(wallet *entities.Wallet, amount, balance decimal.Decimal) (entities.LimitDecision, error) {
	if amount.GreaterThan(balance) {
		return entities.DecisionBlock, domainerrors.ErrInsufficientBalance
	}
	if !wallet.HasLimit() {
		return entities.DecisionAllow, nil
	}

	next := wallet.SpendingToday.Add(amount)
	if next.GreaterThan(wallet.DailyLimit) {
		return entities.DecisionBlock, domainerrors.ErrDailyLimitExceeded
	}

	threshold := wallet.DailyLimit.Mul(entities.AlertThreshold)
	if wallet.SpendingToday.LessThan(threshold) && next.GreaterThanOrEqual(threshold) {
		return entities.DecisionWarn, nil
	}
	return entities.DecisionAllow, nil
}
