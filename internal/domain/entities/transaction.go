package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the kind of a ledger entry.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
	TransactionYield      TransactionType = "YIELD"
)

// CategoryReward is the category recorded on yield entries.
const CategoryReward = "REWARD"

// Transaction is an immutable ledger entry. Amount is always positive; the
// type carries the sign.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	WalletID    uuid.UUID       `json:"walletId"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// BalanceSummary is the fold of a wallet's ledger.
type BalanceSummary struct {
	Balance        decimal.Decimal `json:"balance"`
	TotalIncome    decimal.Decimal `json:"totalIncome"`
	TotalWithdrawn decimal.Decimal `json:"totalWithdrawn"`
}

// Summarize folds entries into a balance: deposits and yield minus withdrawals.
func Summarize(txs []*Transaction) BalanceSummary {
	income := decimal.Zero
	withdrawn := decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case TransactionDeposit, TransactionYield:
			income = income.Add(tx.Amount)
		case TransactionWithdrawal:
			withdrawn = withdrawn.Add(tx.Amount)
		}
	}
	return BalanceSummary{
		Balance:        income.Sub(withdrawn),
		TotalIncome:    income,
		TotalWithdrawn: withdrawn,
	}
}

// History is a wallet's balance plus a (possibly date-filtered) entry list.
// Totals always cover the full ledger.
type History struct {
	WalletID     uuid.UUID      `json:"walletId"`
	Summary      BalanceSummary `json:"summary"`
	Transactions []*Transaction `json:"transactions"`
}
