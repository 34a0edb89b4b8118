package resource

import (
	"context"

	"github.com/soyaya/boardling/internal/privacy"
)

type Repository interface {
	Create(ctx context.Context, ownerAccountID int, chainAddress, label string) (*Resource, error)
	GetByID(ctx context.Context, id int) (*Resource, error)
	ListForOwner(ctx context.Context, ownerAccountID int) ([]Resource, error)
	OwnerAccountID(ctx context.Context, resourceID int) (int, error)
	GetStats(ctx context.Context, resourceID int) (privacy.ResourceStats, error)
}
