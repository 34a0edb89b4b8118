package earnings

import "context"

type Repository interface {
	ListForOwner(ctx context.Context, ownerAccountID int, limit, offset int) ([]Earning, error)
}
