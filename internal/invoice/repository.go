package invoice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/soyaya/boardling/internal/earnings"
	"github.com/soyaya/boardling/internal/grant"
	"github.com/soyaya/boardling/internal/ledger"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("invoice not found")
	ErrAlreadyPaid    = errors.New("invoice already paid")
	ErrNotPayable     = errors.New("invoice is no longer payable")
	ErrAmountMismatch = errors.New("observed amount below requested amount")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

type CreateParams struct {
	OwnerAccountID        int
	CounterpartyAccountID *int
	ResourceID            *int
	Kind                  Kind
	RequestedAmount       decimal.Decimal
	PaymentAddress        string
	AddressType           string
}

func (r *repository) Create(ctx context.Context, p CreateParams) (*Invoice, error) {
	inv := &Invoice{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO invoices
			(public_id, owner_account_id, counterparty_account_id, resource_id, kind,
			 requested_amount, payment_address, address_type, status, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', $9)
		 RETURNING *`,
		uuid.New(), p.OwnerAccountID, p.CounterpartyAccountID, p.ResourceID, p.Kind,
		p.RequestedAmount, p.PaymentAddress, p.AddressType, time.Now().Add(p.Kind.Window()),
	).StructScan(inv)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *repository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*Invoice, error) {
	inv := &Invoice{}
	err := r.db.GetContext(ctx, inv, `SELECT * FROM invoices WHERE public_id = $1`, publicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *repository) ListForAccount(ctx context.Context, accountID int, limit, offset int) ([]Invoice, error) {
	if limit <= 0 {
		limit = 50
	}

	var items []Invoice
	err := r.db.SelectContext(ctx, &items, `
		SELECT * FROM invoices
		WHERE owner_account_id = $1 OR counterparty_account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ConfirmPayment drives the pending -> paid transition and all of its
// bookkeeping in one transaction. The row lock plus the status guard on the
// UPDATE make the first successful confirmation win; replays find the invoice
// already paid and return it untouched with ErrAlreadyPaid.
func (r *repository) ConfirmPayment(ctx context.Context, publicID uuid.UUID, observed decimal.Decimal, externalRef string) (*Invoice, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	inv := &Invoice{}
	err = tx.QueryRowxContext(ctx,
		`SELECT * FROM invoices WHERE public_id = $1 FOR UPDATE`, publicID,
	).StructScan(inv)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	switch inv.Status {
	case StatusPaid:
		return inv, ErrAlreadyPaid
	case StatusExpired, StatusCancelled:
		return nil, ErrNotPayable
	}

	if observed.LessThan(inv.RequestedAmount) {
		return nil, ErrAmountMismatch
	}

	err = tx.QueryRowxContext(ctx,
		`UPDATE invoices
		 SET status = 'paid', paid_amount = $2, paid_reference = $3, paid_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND status = 'pending'
		 RETURNING *`,
		inv.ID, observed, externalRef,
	).StructScan(inv)
	if err != nil {
		return nil, err
	}

	switch inv.Kind {
	case KindSubscription:
		if _, err := ledger.ExtendEntitlementTx(ctx, tx, inv.OwnerAccountID, EntitlementPeriod); err != nil {
			return nil, err
		}
	case KindOneTime:
		if _, err := ledger.CreditTx(ctx, tx, inv.OwnerAccountID, observed, ledger.EntryDeposit); err != nil {
			return nil, err
		}
	case KindDataAccess:
		if inv.CounterpartyAccountID == nil || inv.ResourceID == nil {
			return nil, errors.New("data access invoice missing counterparty or resource")
		}
		if _, err := earnings.ApplyTx(ctx, tx, inv.OwnerAccountID, *inv.CounterpartyAccountID, inv.ID, observed); err != nil {
			return nil, err
		}
		if _, err := grant.CreateTx(ctx, tx, *inv.CounterpartyAccountID, *inv.ResourceID, inv.ID, time.Now().Add(GrantDuration)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return inv, nil
}

// ExpireStale flips every pending invoice past its deadline to expired. The
// status guard keeps it away from invoices a concurrent confirmation just
// paid, so it is safe to run on a timer.
func (r *repository) ExpireStale(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invoices
		 SET status = 'expired', updated_at = NOW()
		 WHERE status = 'pending' AND expires_at < NOW()`,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
