package withdrawal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, accountID int, requested, fee, net decimal.Decimal, destination string) (*Withdrawal, error)
	GetByID(ctx context.Context, id int) (*Withdrawal, error)
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*Withdrawal, error)
	ListForAccount(ctx context.Context, accountID int, limit, offset int) ([]Withdrawal, error)
	BeginProcessing(ctx context.Context, id int) (*Withdrawal, error)
	Complete(ctx context.Context, id int, externalRef string) (*Withdrawal, error)
	Fail(ctx context.Context, id int, reason string) (*Withdrawal, error)
	ListStalePending(ctx context.Context, cutoff time.Time) ([]int, error)
}
