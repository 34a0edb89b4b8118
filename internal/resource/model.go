package resource

import "time"

// Resource is a tracked on-chain wallet registered by a user. Its analytics
// are read through the privacy gate.
type Resource struct {
	ID             int       `db:"id" json:"id"`
	OwnerAccountID int       `db:"owner_account_id" json:"owner_account_id"`
	ChainAddress   string    `db:"chain_address" json:"chain_address"`
	Label          string    `db:"label" json:"label"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
