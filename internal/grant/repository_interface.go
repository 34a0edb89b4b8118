package grant

import "context"

type Repository interface {
	HasLiveGrant(ctx context.Context, buyerAccountID, resourceID int) (bool, error)
	ListForBuyer(ctx context.Context, buyerAccountID int) ([]Grant, error)
}
