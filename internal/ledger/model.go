package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits carried by every amount in the
// system. Balances, fees and shares are stored as NUMERIC(30,8) and never hold
// more precision than this.
const MoneyScale = 8

// Account is the authoritative balance record for one user.
type Account struct {
	ID            int             `db:"id" json:"id"`
	UserID        int             `db:"user_id" json:"user_id"`
	Balance       decimal.Decimal `db:"balance" json:"balance"`
	EntitledUntil *time.Time      `db:"entitled_until" json:"entitled_until,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// Entry is one row of the append-only movement log. balance_after is the
// account balance as of this entry, so the log reconciles against the account.
type Entry struct {
	ID           int             `db:"id" json:"id"`
	AccountID    int             `db:"account_id" json:"account_id"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Kind         string          `db:"kind" json:"kind"`
	BalanceAfter decimal.Decimal `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Entry kinds.
const (
	EntryDeposit          = "deposit"
	EntryEarning          = "earning"
	EntryWithdrawalHold   = "withdrawal_hold"
	EntryWithdrawalRefund = "withdrawal_refund"
)

// ValidAmount reports whether d is positive and fits the money scale.
func ValidAmount(d decimal.Decimal) bool {
	return d.Sign() > 0 && d.Equal(d.Round(MoneyScale))
}
