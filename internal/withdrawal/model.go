package withdrawal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// Withdrawal is an outbound payment. The requested amount is debited from the
// account when the row is created; a failed send credits it back, a sent one
// changes nothing further.
type Withdrawal struct {
	ID                 int             `db:"id" json:"id"`
	PublicID           uuid.UUID       `db:"public_id" json:"public_id"`
	AccountID          int             `db:"account_id" json:"account_id"`
	RequestedAmount    decimal.Decimal `db:"requested_amount" json:"requested_amount"`
	Fee                decimal.Decimal `db:"fee" json:"fee"`
	NetAmount          decimal.Decimal `db:"net_amount" json:"net_amount"`
	DestinationAddress string          `db:"destination_address" json:"destination_address"`
	Status             Status          `db:"status" json:"status"`
	ExternalReference  *string         `db:"external_reference" json:"external_reference,omitempty"`
	FailureReason      *string         `db:"failure_reason" json:"failure_reason,omitempty"`
	RequestedAt        time.Time       `db:"requested_at" json:"requested_at"`
	ProcessedAt        *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}
