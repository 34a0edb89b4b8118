package grant

import "time"

// Grant records that a buyer paid for access to a resource's analytics until
// expires_at. Rows are only ever created inside a data-access invoice
// confirmation transaction.
type Grant struct {
	ID             int       `db:"id" json:"id"`
	BuyerAccountID int       `db:"buyer_account_id" json:"buyer_account_id"`
	ResourceID     int       `db:"resource_id" json:"resource_id"`
	InvoiceID      int       `db:"invoice_id" json:"invoice_id"`
	ExpiresAt      time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
