package earnings

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListForOwner(ctx context.Context, ownerAccountID int, limit, offset int) ([]Earning, error) {
	if limit <= 0 {
		limit = 50
	}

	var items []Earning
	err := r.db.SelectContext(ctx, &items, `
		SELECT id, owner_account_id, buyer_account_id, invoice_id, owner_share, platform_share, created_at
		FROM earnings
		WHERE owner_account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, ownerAccountID, limit, offset)
	if err != nil {
		return nil, err
	}
	return items, nil
}
