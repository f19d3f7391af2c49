package entities

import "github.com/shopspring/decimal"

// LimitDecision is the spend-limit verdict for a proposed withdrawal.
type LimitDecision string

const (
	DecisionAllow LimitDecision = "ALLOW"
	DecisionWarn  LimitDecision = "WARN"
	DecisionBlock LimitDecision = "BLOCK"
)

// AlertThreshold is the fraction of the daily limit at which the owner is warned.
var AlertThreshold = decimal.RequireFromString("0.8")

// WithdrawalResult is returned by an accepted withdrawal.
type WithdrawalResult struct {
	Decision      LimitDecision   `json:"decision"`
	Transaction   *Transaction    `json:"transaction"`
	SpendingToday decimal.Decimal `json:"spendingToday"`
}
