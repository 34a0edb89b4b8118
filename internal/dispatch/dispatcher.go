package dispatch

import (
	"context"
	"time"

	"github.com/soyaya/boardling/internal/invoice"
	"github.com/soyaya/boardling/internal/logger"
	"github.com/soyaya/boardling/internal/withdrawal"
)

const (
	maxSendTries = 3

	expireInterval = time.Minute
	sweepInterval  = 5 * time.Minute
	// Pending withdrawals older than this are assumed to have lost their
	// queue push and get re-enqueued.
	sweepCutoff = 2 * time.Minute
)

// Dispatcher moves accepted withdrawals through the external send. It is the
// only caller of BeginProcessing, so each withdrawal is claimed exactly once;
// the store's conditional transition backs that up if a second dispatcher is
// ever started. It also runs the invoice expiry sweep.
type Dispatcher struct {
	queue       *Queue
	withdrawals withdrawal.Service
	repo        withdrawal.Repository
	invoices    invoice.Service
	executor    SendExecutor
}

func New(queue *Queue, withdrawals withdrawal.Service, repo withdrawal.Repository, invoices invoice.Service, executor SendExecutor) *Dispatcher {
	return &Dispatcher{
		queue:       queue,
		withdrawals: withdrawals,
		repo:        repo,
		invoices:    invoices,
		executor:    executor,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	logger.Info("payout dispatcher started")

	expireTicker := time.NewTicker(expireInterval)
	defer expireTicker.Stop()
	sweepTicker := time.NewTicker(sweepInterval)
	defer sweepTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("payout dispatcher stopped")
			return
		case <-expireTicker.C:
			if _, err := d.invoices.ExpireStale(ctx); err != nil {
				logger.Error("invoice expiry sweep failed", "error", err)
			}
		case <-sweepTicker.C:
			d.requeueStale(ctx)
		default:
			if job, ok := d.queue.pop(ctx, 2*time.Second); ok {
				d.process(ctx, job)
			}
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, job payoutJob) {
	var w *withdrawal.Withdrawal
	var err error

	if job.Tries == 0 {
		// First attempt: claim the withdrawal. A rejected claim means
		// another worker or a callback already owns it.
		w, err = d.withdrawals.BeginProcessing(ctx, job.WithdrawalID)
		if err != nil {
			logger.Debug("skipping payout job, claim rejected",
				"withdrawal_id", job.WithdrawalID,
				"error", err,
			)
			return
		}
	} else {
		// Retry: the claim from the first attempt still holds.
		w, err = d.repo.GetByID(ctx, job.WithdrawalID)
		if err != nil || w.Status != withdrawal.StatusProcessing {
			return
		}
	}

	job.Tries++
	logger.Info("sending payout",
		"withdrawal", w.PublicID.String(),
		"net_amount", w.NetAmount.String(),
		"attempt", job.Tries,
	)

	ref, err := d.executor.Send(ctx, w)
	if err != nil {
		logger.Error("payout send failed",
			"withdrawal", w.PublicID.String(),
			"attempt", job.Tries,
			"error", err,
		)

		if job.Tries < maxSendTries {
			time.Sleep(5 * time.Second)
			if pushErr := d.queue.push(ctx, job); pushErr != nil {
				logger.Error("failed to requeue payout", "withdrawal", w.PublicID.String(), "error", pushErr)
			}
			return
		}

		if _, failErr := d.withdrawals.Fail(ctx, w.ID, err.Error()); failErr != nil {
			logger.Error("failed to mark withdrawal failed", "withdrawal", w.PublicID.String(), "error", failErr)
		}
		d.queue.saveFailed(job, err)
		return
	}

	if _, err := d.withdrawals.Complete(ctx, w.ID, ref); err != nil {
		logger.Error("failed to mark withdrawal sent",
			"withdrawal", w.PublicID.String(),
			"reference", ref,
			"error", err,
		)
	}
}

func (d *Dispatcher) requeueStale(ctx context.Context) {
	ids, err := d.repo.ListStalePending(ctx, time.Now().Add(-sweepCutoff))
	if err != nil {
		logger.Error("stale withdrawal sweep failed", "error", err)
		return
	}

	for _, id := range ids {
		if err := d.queue.Enqueue(ctx, id); err != nil {
			logger.Error("failed to requeue stale withdrawal", "withdrawal_id", id, "error", err)
		}
	}
	if len(ids) > 0 {
		logger.Info("requeued stale pending withdrawals", "count", len(ids))
	}
}
