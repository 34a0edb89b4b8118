package withdrawal

import (
	"context"
	"errors"

	"github.com/soyaya/boardling/internal/config"
	"github.com/soyaya/boardling/internal/ledger"
	"github.com/soyaya/boardling/internal/logger"
	"github.com/soyaya/boardling/internal/metrics"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAddress   = errors.New("invalid destination address")
	ErrAmountOutOfRange = errors.New("amount outside the allowed withdrawal range")
	ErrInvalidAmount    = errors.New("invalid withdrawal amount")
	ErrNonPositiveNet   = errors.New("fee leaves nothing to send")
)

// Queue hands accepted withdrawals to the payout dispatcher. Satisfied by
// dispatch.Dispatcher.
type Queue interface {
	Enqueue(ctx context.Context, withdrawalID int) error
}

type Limits struct {
	Min      decimal.Decimal
	Max      decimal.Decimal
	FixedFee decimal.Decimal
	FeeRate  decimal.Decimal
	FeeFloor decimal.Decimal
}

func LimitsFromConfig(cfg *config.Config) Limits {
	return Limits{
		Min:      cfg.WithdrawalMin,
		Max:      cfg.WithdrawalMax,
		FixedFee: cfg.WithdrawalFixedFee,
		FeeRate:  cfg.WithdrawalFeeRate,
		FeeFloor: cfg.WithdrawalFeeFloor,
	}
}

// Fee computes the withdrawal fee for a requested amount: fixed component
// plus a proportional one, rounded up to the money scale, never below the
// floor.
func (l Limits) Fee(requested decimal.Decimal) decimal.Decimal {
	fee := l.FixedFee.Add(requested.Mul(l.FeeRate)).RoundUp(ledger.MoneyScale)
	if fee.LessThan(l.FeeFloor) {
		fee = l.FeeFloor
	}
	return fee
}

type Service interface {
	Request(ctx context.Context, accountID int, amount decimal.Decimal, destination string) (*Withdrawal, error)
	BeginProcessing(ctx context.Context, id int) (*Withdrawal, error)
	Complete(ctx context.Context, id int, externalRef string) (*Withdrawal, error)
	Fail(ctx context.Context, id int, reason string) (*Withdrawal, error)
	ListForAccount(ctx context.Context, accountID int, limit, offset int) ([]Withdrawal, error)
}

type service struct {
	repo   Repository
	queue  Queue
	limits Limits
}

func NewService(repo Repository, queue Queue, limits Limits) Service {
	return &service{
		repo:   repo,
		queue:  queue,
		limits: limits,
	}
}

func (s *service) Request(ctx context.Context, accountID int, amount decimal.Decimal, destination string) (*Withdrawal, error) {
	if !ValidAddress(destination) {
		return nil, ErrInvalidAddress
	}
	if !ledger.ValidAmount(amount) {
		return nil, ErrInvalidAmount
	}
	if amount.LessThan(s.limits.Min) || amount.GreaterThan(s.limits.Max) {
		return nil, ErrAmountOutOfRange
	}

	fee := s.limits.Fee(amount)
	net := amount.Sub(fee)
	if net.Sign() <= 0 {
		return nil, ErrNonPositiveNet
	}

	w, err := s.repo.Create(ctx, accountID, amount, fee, net, destination)
	if err != nil {
		return nil, err
	}

	metrics.RecordWithdrawalRequested()
	logger.Info("withdrawal requested",
		"withdrawal", w.PublicID.String(),
		"amount", amount.String(),
		"fee", fee.String(),
		"net", net.String(),
	)

	// The reservation is already durable; a lost enqueue is recovered by the
	// dispatcher's stale-pending sweep.
	if err := s.queue.Enqueue(ctx, w.ID); err != nil {
		logger.Error("failed to enqueue withdrawal for payout",
			"withdrawal", w.PublicID.String(),
			"error", err,
		)
	}

	return w, nil
}

func (s *service) BeginProcessing(ctx context.Context, id int) (*Withdrawal, error) {
	return s.repo.BeginProcessing(ctx, id)
}

func (s *service) Complete(ctx context.Context, id int, externalRef string) (*Withdrawal, error) {
	w, err := s.repo.Complete(ctx, id, externalRef)
	if err != nil {
		return nil, err
	}

	metrics.RecordWithdrawalResolved("sent")
	logger.Info("withdrawal sent",
		"withdrawal", w.PublicID.String(),
		"reference", externalRef,
	)
	return w, nil
}

func (s *service) Fail(ctx context.Context, id int, reason string) (*Withdrawal, error) {
	w, err := s.repo.Fail(ctx, id, reason)
	if err != nil {
		return nil, err
	}

	metrics.RecordWithdrawalResolved("failed")
	logger.Warn("withdrawal failed, amount refunded",
		"withdrawal", w.PublicID.String(),
		"amount", w.RequestedAmount.String(),
		"reason", reason,
	)
	return w, nil
}

func (s *service) ListForAccount(ctx context.Context, accountID int, limit, offset int) ([]Withdrawal, error) {
	return s.repo.ListForAccount(ctx, accountID, limit, offset)
}
