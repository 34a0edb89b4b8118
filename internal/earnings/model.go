package earnings

import (
	"time"

	"github.com/shopspring/decimal"
)

// Earning records the split of one paid data-access invoice between the data
// owner and the platform.
type Earning struct {
	ID             int             `db:"id" json:"id"`
	OwnerAccountID int             `db:"owner_account_id" json:"owner_account_id"`
	BuyerAccountID int             `db:"buyer_account_id" json:"buyer_account_id"`
	InvoiceID      int             `db:"invoice_id" json:"invoice_id"`
	OwnerShare     decimal.Decimal `db:"owner_share" json:"owner_share"`
	PlatformShare  decimal.Decimal `db:"platform_share" json:"platform_share"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
