package earnings

import (
	"context"

	"github.com/soyaya/boardling/internal/ledger"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// OwnerShareRate is the fraction of a data-access payment credited to the
// data owner. The platform keeps the rest, including any sub-unit remainder
// from rounding, so the two shares always sum to the paid amount exactly.
var OwnerShareRate = decimal.RequireFromString("0.70")

// ComputeSplit divides paid into the owner and platform shares. The owner
// share is rounded down to the money scale; the remainder goes to the
// platform.
func ComputeSplit(paid decimal.Decimal) (ownerShare, platformShare decimal.Decimal) {
	ownerShare = paid.Mul(OwnerShareRate).RoundDown(ledger.MoneyScale)
	platformShare = paid.Sub(ownerShare)
	return ownerShare, platformShare
}

// ApplyTx runs the revenue split for one paid data-access invoice inside the
// caller's transaction: credits the owner share and persists the earning
// record. Invoice confirmation is the only caller and guards against running
// this twice for the same invoice.
func ApplyTx(ctx context.Context, tx *sqlx.Tx, ownerAccountID, buyerAccountID, invoiceID int, paid decimal.Decimal) (*Earning, error) {
	ownerShare, platformShare := ComputeSplit(paid)

	if _, err := ledger.CreditTx(ctx, tx, ownerAccountID, ownerShare, ledger.EntryEarning); err != nil {
		return nil, err
	}

	e := &Earning{}
	err := tx.QueryRowxContext(ctx,
		`INSERT INTO earnings (owner_account_id, buyer_account_id, invoice_id, owner_share, platform_share)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, owner_account_id, buyer_account_id, invoice_id, owner_share, platform_share, created_at`,
		ownerAccountID, buyerAccountID, invoiceID, ownerShare, platformShare,
	).StructScan(e)
	if err != nil {
		return nil, err
	}
	return e, nil
}
