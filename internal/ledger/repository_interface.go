package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	GetOrCreateAccount(ctx context.Context, userID int) (*Account, error)
	GetAccount(ctx context.Context, accountID int) (*Account, error)
	GetBalance(ctx context.Context, accountID int) (decimal.Decimal, error)
	Credit(ctx context.Context, accountID int, amount decimal.Decimal, kind string) (decimal.Decimal, error)
	Debit(ctx context.Context, accountID int, amount decimal.Decimal, kind string) (decimal.Decimal, error)
	GetEntries(ctx context.Context, accountID int, limit, offset int) ([]Entry, error)
}
