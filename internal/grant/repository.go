package grant

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) HasLiveGrant(ctx context.Context, buyerAccountID, resourceID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(
			SELECT 1 FROM data_access_grants
			WHERE buyer_account_id = $1 AND resource_id = $2 AND expires_at > NOW()
		)`,
		buyerAccountID, resourceID,
	)
	return exists, err
}

func (r *repository) ListForBuyer(ctx context.Context, buyerAccountID int) ([]Grant, error) {
	var grants []Grant
	err := r.db.SelectContext(ctx, &grants, `
		SELECT id, buyer_account_id, resource_id, invoice_id, expires_at, created_at
		FROM data_access_grants
		WHERE buyer_account_id = $1
		ORDER BY created_at DESC
	`, buyerAccountID)
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// CreateTx inserts a grant inside the caller's transaction. Invoice
// confirmation is the only caller.
func CreateTx(ctx context.Context, tx *sqlx.Tx, buyerAccountID, resourceID, invoiceID int, expiresAt time.Time) (*Grant, error) {
	g := &Grant{}
	err := tx.QueryRowxContext(ctx,
		`INSERT INTO data_access_grants (buyer_account_id, resource_id, invoice_id, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, buyer_account_id, resource_id, invoice_id, expires_at, created_at`,
		buyerAccountID, resourceID, invoiceID, expiresAt,
	).StructScan(g)
	if err != nil {
		return nil, err
	}
	return g, nil
}
