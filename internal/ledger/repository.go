package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotFound   = errors.New("account not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrCreateAccount(ctx context.Context, userID int) (*Account, error) {
	a := &Account{}
	err := r.db.GetContext(ctx, a, `SELECT * FROM accounts WHERE user_id = $1`, userID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO accounts (user_id)
		 VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING
		 RETURNING id, user_id, balance, entitled_until, created_at, updated_at`,
		userID,
	).StructScan(a)
	if errors.Is(err, sql.ErrNoRows) {
		// lost the race against a concurrent first caller; their row wins
		err = r.db.GetContext(ctx, a, `SELECT * FROM accounts WHERE user_id = $1`, userID)
	}
	if err != nil {
		return nil, err
	}

	return a, nil
}

func (r *repository) GetAccount(ctx context.Context, accountID int) (*Account, error) {
	a := &Account{}
	err := r.db.GetContext(ctx, a, `SELECT * FROM accounts WHERE id = $1`, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *repository) GetBalance(ctx context.Context, accountID int) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM accounts WHERE id = $1`, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (r *repository) Credit(ctx context.Context, accountID int, amount decimal.Decimal, kind string) (decimal.Decimal, error) {
	return r.mutate(ctx, func(tx *sqlx.Tx) (decimal.Decimal, error) {
		return CreditTx(ctx, tx, accountID, amount, kind)
	})
}

func (r *repository) Debit(ctx context.Context, accountID int, amount decimal.Decimal, kind string) (decimal.Decimal, error) {
	return r.mutate(ctx, func(tx *sqlx.Tx) (decimal.Decimal, error) {
		return DebitTx(ctx, tx, accountID, amount, kind)
	})
}

func (r *repository) mutate(ctx context.Context, fn func(tx *sqlx.Tx) (decimal.Decimal, error)) (decimal.Decimal, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback()

	newBalance, err := fn(tx)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

func (r *repository) GetEntries(ctx context.Context, accountID int, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	var entries []Entry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, account_id, amount, kind, balance_after, created_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// lockAccountTx locks the account row for the rest of the transaction. Every
// concurrent balance mutation against the same account serializes here.
func lockAccountTx(ctx context.Context, tx *sqlx.Tx, accountID int) (*Account, error) {
	a := &Account{}
	err := tx.QueryRowxContext(ctx,
		`SELECT id, user_id, balance, entitled_until, created_at, updated_at
		 FROM accounts
		 WHERE id = $1
		 FOR UPDATE`,
		accountID,
	).StructScan(a)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func applyTx(ctx context.Context, tx *sqlx.Tx, a *Account, newBalance decimal.Decimal, amount decimal.Decimal, kind string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = $1, updated_at = NOW() WHERE id = $2`,
		newBalance, a.ID,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (account_id, amount, kind, balance_after)
		 VALUES ($1, $2, $3, $4)`,
		a.ID, amount, kind, newBalance,
	)
	return err
}

// CreditTx adds amount to the account inside the caller's transaction and
// appends a ledger entry. Callers compose it with their own writes so the
// whole unit commits or aborts together.
func CreditTx(ctx context.Context, tx *sqlx.Tx, accountID int, amount decimal.Decimal, kind string) (decimal.Decimal, error) {
	a, err := lockAccountTx(ctx, tx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	newBalance := a.Balance.Add(amount)
	if err := applyTx(ctx, tx, a, newBalance, amount, kind); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// DebitTx subtracts amount from the account inside the caller's transaction.
// Returns ErrInsufficientFunds without mutating anything if the balance would
// go negative.
func DebitTx(ctx context.Context, tx *sqlx.Tx, accountID int, amount decimal.Decimal, kind string) (decimal.Decimal, error) {
	a, err := lockAccountTx(ctx, tx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	newBalance := a.Balance.Sub(amount)
	if newBalance.Sign() < 0 {
		return decimal.Zero, ErrInsufficientFunds
	}

	if err := applyTx(ctx, tx, a, newBalance, amount.Neg(), kind); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// ExtendEntitlementTx pushes the account's entitlement horizon forward by d,
// extending from the current horizon when it is still in the future.
func ExtendEntitlementTx(ctx context.Context, tx *sqlx.Tx, accountID int, d time.Duration) (time.Time, error) {
	a, err := lockAccountTx(ctx, tx, accountID)
	if err != nil {
		return time.Time{}, err
	}

	base := time.Now()
	if a.EntitledUntil != nil && a.EntitledUntil.After(base) {
		base = *a.EntitledUntil
	}
	until := base.Add(d)

	_, err = tx.ExecContext(ctx,
		`UPDATE accounts SET entitled_until = $1, updated_at = NOW() WHERE id = $2`,
		until, a.ID,
	)
	if err != nil {
		return time.Time{}, err
	}
	return until, nil
}
