package invoice

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, p CreateParams) (*Invoice, error)
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*Invoice, error)
	ListForAccount(ctx context.Context, accountID int, limit, offset int) ([]Invoice, error)
	ConfirmPayment(ctx context.Context, publicID uuid.UUID, observed decimal.Decimal, externalRef string) (*Invoice, error)
	ExpireStale(ctx context.Context) (int64, error)
}
