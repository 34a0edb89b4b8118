package invoice

import (
	"context"
	"errors"

	"github.com/soyaya/boardling/internal/gateway"
	"github.com/soyaya/boardling/internal/ledger"
	"github.com/soyaya/boardling/internal/logger"
	"github.com/soyaya/boardling/internal/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidKind      = errors.New("invalid invoice kind")
	ErrInvalidAmount    = errors.New("invalid invoice amount")
	ErrResourceRequired = errors.New("data access invoice requires a resource")
	ErrSelfPurchase     = errors.New("cannot buy access to an owned resource")
)

// ResourceOwners resolves who owns a tracked resource. Satisfied by the
// resource repository.
type ResourceOwners interface {
	OwnerAccountID(ctx context.Context, resourceID int) (int, error)
}

type Service interface {
	Create(ctx context.Context, requesterAccountID int, kind Kind, amount decimal.Decimal, resourceID *int) (*Invoice, error)
	ConfirmPayment(ctx context.Context, publicID uuid.UUID, observed decimal.Decimal, externalRef string) (*Invoice, error)
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*Invoice, error)
	ListForAccount(ctx context.Context, accountID int, limit, offset int) ([]Invoice, error)
	ExpireStale(ctx context.Context) (int64, error)
}

type service struct {
	repo          Repository
	addresses     gateway.AddressGateway
	resources     ResourceOwners
	paymentMethod string
}

func NewService(repo Repository, addresses gateway.AddressGateway, resources ResourceOwners, paymentMethod string) Service {
	return &service{
		repo:          repo,
		addresses:     addresses,
		resources:     resources,
		paymentMethod: paymentMethod,
	}
}

func (s *service) Create(ctx context.Context, requesterAccountID int, kind Kind, amount decimal.Decimal, resourceID *int) (*Invoice, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if !ledger.ValidAmount(amount) {
		return nil, ErrInvalidAmount
	}

	p := CreateParams{
		OwnerAccountID:  requesterAccountID,
		Kind:            kind,
		RequestedAmount: amount,
	}

	if kind == KindDataAccess {
		if resourceID == nil {
			return nil, ErrResourceRequired
		}
		ownerAccountID, err := s.resources.OwnerAccountID(ctx, *resourceID)
		if err != nil {
			return nil, err
		}
		if ownerAccountID == requesterAccountID {
			return nil, ErrSelfPurchase
		}
		buyer := requesterAccountID
		p.OwnerAccountID = ownerAccountID
		p.CounterpartyAccountID = &buyer
		p.ResourceID = resourceID
	}

	// Allocation first: if the gateway fails, nothing is persisted.
	alloc, err := s.addresses.Allocate(ctx, s.paymentMethod)
	if err != nil {
		return nil, err
	}
	p.PaymentAddress = alloc.Address
	p.AddressType = alloc.AddressType

	inv, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	metrics.RecordInvoiceCreated(string(kind))
	logger.Info("invoice created",
		"invoice", inv.PublicID.String(),
		"kind", string(kind),
		"amount", amount.String(),
	)
	return inv, nil
}

func (s *service) ConfirmPayment(ctx context.Context, publicID uuid.UUID, observed decimal.Decimal, externalRef string) (*Invoice, error) {
	inv, err := s.repo.ConfirmPayment(ctx, publicID, observed, externalRef)
	if err != nil {
		if errors.Is(err, ErrAlreadyPaid) {
			logger.Info("duplicate payment confirmation ignored", "invoice", publicID.String())
			return inv, err
		}
		return nil, err
	}

	metrics.RecordInvoicePaid(string(inv.Kind))
	logger.Info("invoice paid",
		"invoice", inv.PublicID.String(),
		"kind", string(inv.Kind),
		"paid_amount", observed.String(),
		"reference", externalRef,
	)
	return inv, nil
}

func (s *service) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*Invoice, error) {
	return s.repo.GetByPublicID(ctx, publicID)
}

func (s *service) ListForAccount(ctx context.Context, accountID int, limit, offset int) ([]Invoice, error) {
	return s.repo.ListForAccount(ctx, accountID, limit, offset)
}

func (s *service) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireStale(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.RecordInvoicesExpired(n)
		logger.Info("expired stale invoices", "count", n)
	}
	return n, nil
}
