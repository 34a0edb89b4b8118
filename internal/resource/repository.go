package resource

import (
	"context"
	"database/sql"
	"errors"

	"github.com/soyaya/boardling/internal/privacy"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("resource not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, ownerAccountID int, chainAddress, label string) (*Resource, error) {
	res := &Resource{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO resources (owner_account_id, chain_address, label)
		 VALUES ($1, $2, $3)
		 RETURNING id, owner_account_id, chain_address, label, created_at`,
		ownerAccountID, chainAddress, label,
	).StructScan(res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Resource, error) {
	res := &Resource{}
	err := r.db.GetContext(ctx, res,
		`SELECT id, owner_account_id, chain_address, label, created_at FROM resources WHERE id = $1`, id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *repository) ListForOwner(ctx context.Context, ownerAccountID int) ([]Resource, error) {
	var items []Resource
	err := r.db.SelectContext(ctx, &items, `
		SELECT id, owner_account_id, chain_address, label, created_at
		FROM resources
		WHERE owner_account_id = $1
		ORDER BY created_at DESC, id DESC
	`, ownerAccountID)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// OwnerAccountID satisfies the narrow ownership lookups in the invoice and
// privacy packages.
func (r *repository) OwnerAccountID(ctx context.Context, resourceID int) (int, error) {
	var owner int
	err := r.db.GetContext(ctx, &owner,
		`SELECT owner_account_id FROM resources WHERE id = $1`, resourceID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return owner, nil
}

// GetStats reads the indexer-maintained aggregates for a resource. A wallet
// the indexer has not visited yet reads as all zeros.
func (r *repository) GetStats(ctx context.Context, resourceID int) (privacy.ResourceStats, error) {
	res, err := r.GetByID(ctx, resourceID)
	if err != nil {
		return privacy.ResourceStats{}, err
	}

	stats := privacy.ResourceStats{
		ResourceID:     res.ID,
		OwnerAccountID: res.OwnerAccountID,
		ChainAddress:   res.ChainAddress,
		Label:          res.Label,
	}

	row := struct {
		TxCount       int             `db:"tx_count"`
		TotalIn       decimal.Decimal `db:"total_in"`
		TotalOut      decimal.Decimal `db:"total_out"`
		FirstSeen     sql.NullTime    `db:"first_seen"`
		LastSeen      sql.NullTime    `db:"last_seen"`
		ActivityScore sql.NullFloat64 `db:"activity_score"`
	}{}

	err = r.db.GetContext(ctx, &row, `
		SELECT tx_count, total_in, total_out, first_seen, last_seen, activity_score
		FROM resource_stats
		WHERE resource_id = $1
	`, resourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return stats, nil
	}
	if err != nil {
		return privacy.ResourceStats{}, err
	}

	stats.TxCount = row.TxCount
	stats.TotalIn = row.TotalIn
	stats.TotalOut = row.TotalOut
	if row.FirstSeen.Valid {
		t := row.FirstSeen.Time
		stats.FirstSeen = &t
	}
	if row.LastSeen.Valid {
		t := row.LastSeen.Time
		stats.LastSeen = &t
	}
	stats.ActivityScore = row.ActivityScore.Float64

	return stats, nil
}
