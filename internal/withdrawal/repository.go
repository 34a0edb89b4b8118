package withdrawal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/soyaya/boardling/internal/ledger"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("withdrawal not found")
	ErrInvalidTransition = errors.New("withdrawal is not in the required state")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create reserves the requested amount and records the withdrawal in one
// transaction. A crash between the debit and the insert leaves neither.
func (r *repository) Create(ctx context.Context, accountID int, requested, fee, net decimal.Decimal, destination string) (*Withdrawal, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := ledger.DebitTx(ctx, tx, accountID, requested, ledger.EntryWithdrawalHold); err != nil {
		return nil, err
	}

	w := &Withdrawal{}
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO withdrawals
			(public_id, account_id, requested_amount, fee, net_amount, destination_address, status)
		 VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		 RETURNING *`,
		uuid.New(), accountID, requested, fee, net, destination,
	).StructScan(w)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Withdrawal, error) {
	w := &Withdrawal{}
	err := r.db.GetContext(ctx, w, `SELECT * FROM withdrawals WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *repository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*Withdrawal, error) {
	w := &Withdrawal{}
	err := r.db.GetContext(ctx, w, `SELECT * FROM withdrawals WHERE public_id = $1`, publicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *repository) ListForAccount(ctx context.Context, accountID int, limit, offset int) ([]Withdrawal, error) {
	if limit <= 0 {
		limit = 50
	}

	var items []Withdrawal
	err := r.db.SelectContext(ctx, &items, `
		SELECT * FROM withdrawals
		WHERE account_id = $1
		ORDER BY requested_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// BeginProcessing claims a pending withdrawal. The status guard makes the
// claim exclusive: a second worker gets ErrInvalidTransition, never the row.
func (r *repository) BeginProcessing(ctx context.Context, id int) (*Withdrawal, error) {
	w := &Withdrawal{}
	err := r.db.QueryRowxContext(ctx,
		`UPDATE withdrawals
		 SET status = 'processing'
		 WHERE id = $1 AND status = 'pending'
		 RETURNING *`,
		id,
	).StructScan(w)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.transitionError(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *repository) Complete(ctx context.Context, id int, externalRef string) (*Withdrawal, error) {
	w := &Withdrawal{}
	err := r.db.QueryRowxContext(ctx,
		`UPDATE withdrawals
		 SET status = 'sent', external_reference = $2, processed_at = NOW()
		 WHERE id = $1 AND status = 'processing'
		 RETURNING *`,
		id, externalRef,
	).StructScan(w)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.transitionError(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Fail moves a processing withdrawal to failed and credits the reserved
// amount back in the same transaction, so no reader ever observes a failed
// withdrawal whose refund is still pending. The status guard means the
// refund can only happen once.
func (r *repository) Fail(ctx context.Context, id int, reason string) (*Withdrawal, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	w := &Withdrawal{}
	err = tx.QueryRowxContext(ctx,
		`UPDATE withdrawals
		 SET status = 'failed', failure_reason = $2, processed_at = NOW()
		 WHERE id = $1 AND status = 'processing'
		 RETURNING *`,
		id, reason,
	).StructScan(w)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.transitionError(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	if _, err := ledger.CreditTx(ctx, tx, w.AccountID, w.RequestedAmount, ledger.EntryWithdrawalRefund); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return w, nil
}

// ListStalePending returns ids of pending withdrawals older than cutoff, for
// the dispatcher to re-enqueue after a lost queue push.
func (r *repository) ListStalePending(ctx context.Context, cutoff time.Time) ([]int, error) {
	var ids []int
	err := r.db.SelectContext(ctx, &ids,
		`SELECT id FROM withdrawals WHERE status = 'pending' AND requested_at < $1 ORDER BY id`,
		cutoff,
	)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) transitionError(ctx context.Context, id int) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM withdrawals WHERE id = $1)`, id); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInvalidTransition
}
