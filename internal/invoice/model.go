package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Kind string
type Status string

const (
	KindSubscription Kind = "subscription"
	KindOneTime      Kind = "one_time"
	KindDataAccess   Kind = "data_access"

	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Payment windows per invoice kind. Subscription invoices carry the renewal
// horizon; the others get a fixed window to pay.
const (
	SubscriptionWindow = 30 * 24 * time.Hour
	PaymentWindow      = 24 * time.Hour

	// EntitlementPeriod is added to the owner's entitlement horizon when a
	// subscription invoice is paid.
	EntitlementPeriod = 30 * 24 * time.Hour

	// GrantDuration is how long a paid data-access grant stays live.
	GrantDuration = 30 * 24 * time.Hour
)

type Invoice struct {
	ID                    int                 `db:"id" json:"id"`
	PublicID              uuid.UUID           `db:"public_id" json:"public_id"`
	OwnerAccountID        int                 `db:"owner_account_id" json:"owner_account_id"`
	CounterpartyAccountID *int                `db:"counterparty_account_id" json:"counterparty_account_id,omitempty"`
	ResourceID            *int                `db:"resource_id" json:"resource_id,omitempty"`
	Kind                  Kind                `db:"kind" json:"kind"`
	RequestedAmount       decimal.Decimal     `db:"requested_amount" json:"requested_amount"`
	PaymentAddress        string              `db:"payment_address" json:"payment_address"`
	AddressType           string              `db:"address_type" json:"address_type"`
	Status                Status              `db:"status" json:"status"`
	PaidAmount            decimal.NullDecimal `db:"paid_amount" json:"paid_amount,omitempty"`
	PaidReference         *string             `db:"paid_reference" json:"paid_reference,omitempty"`
	PaidAt                *time.Time          `db:"paid_at" json:"paid_at,omitempty"`
	ExpiresAt             time.Time           `db:"expires_at" json:"expires_at"`
	CreatedAt             time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time           `db:"updated_at" json:"updated_at"`
}

// Window returns how long an invoice of kind k stays payable.
func (k Kind) Window() time.Duration {
	if k == KindSubscription {
		return SubscriptionWindow
	}
	return PaymentWindow
}

func (k Kind) Valid() bool {
	switch k {
	case KindSubscription, KindOneTime, KindDataAccess:
		return true
	}
	return false
}
