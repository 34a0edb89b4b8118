package privacy

import (
	"time"

	"github.com/shopspring/decimal"
)

type Mode string
type DataLevel string

const (
	ModePrivate     Mode = "private"
	ModePublic      Mode = "public"
	ModeMonetizable Mode = "monetizable"

	LevelFull       DataLevel = "full"
	LevelAnonymized DataLevel = "anonymized"
	LevelNone       DataLevel = "none"
)

func (m Mode) Valid() bool {
	switch m {
	case ModePrivate, ModePublic, ModeMonetizable:
		return true
	}
	return false
}

// Setting is the current privacy mode of one resource. Resources without a
// row are private.
type Setting struct {
	ResourceID int       `db:"resource_id" json:"resource_id"`
	Mode       Mode      `db:"mode" json:"mode"`
	UpdatedBy  int       `db:"updated_by" json:"updated_by"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// AuditEntry is one row of the append-only mode-change log. The log is
// written in the same transaction as the mode change and never mutated.
type AuditEntry struct {
	ID         int       `db:"id" json:"id"`
	ResourceID int       `db:"resource_id" json:"resource_id"`
	Mode       Mode      `db:"mode" json:"mode"`
	ChangedBy  int       `db:"changed_by" json:"changed_by"`
	ChangedAt  time.Time `db:"changed_at" json:"changed_at"`
}

// Decision is the outcome of an access check for one (resource, requester)
// pair.
type Decision struct {
	Allowed         bool      `json:"allowed"`
	DataLevel       DataLevel `json:"data_level"`
	RequiresPayment bool      `json:"requires_payment"`
}

// ResourceStats is the analytics record handed to readers. The identifying
// fields are stripped by Anonymize for non-owner access.
type ResourceStats struct {
	ResourceID     int             `json:"resource_id,omitempty"`
	OwnerAccountID int             `json:"owner_account_id,omitempty"`
	ChainAddress   string          `json:"chain_address,omitempty"`
	Label          string          `json:"label,omitempty"`
	TxCount        int             `json:"tx_count"`
	TotalIn        decimal.Decimal `json:"total_in"`
	TotalOut       decimal.Decimal `json:"total_out"`
	FirstSeen      *time.Time      `json:"first_seen,omitempty"`
	LastSeen       *time.Time      `json:"last_seen,omitempty"`
	ActivityScore  float64         `json:"activity_score"`
}
