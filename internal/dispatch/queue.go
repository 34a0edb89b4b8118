package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/soyaya/boardling/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	payoutQueue       = "payouts"
	payoutFailedQueue = "payouts:failed"
)

type payoutJob struct {
	WithdrawalID int       `json:"withdrawal_id"`
	Tries        int       `json:"tries"`
	Created      time.Time `json:"created"`
}

// Queue is the redis-backed payout queue. It implements withdrawal.Queue so
// the withdrawal service can hand accepted requests to the dispatcher.
type Queue struct {
	redis *redis.Client
}

func NewQueue(redisAddr string) *Queue {
	return &Queue{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
	}
}

func (q *Queue) Enqueue(ctx context.Context, withdrawalID int) error {
	return q.push(ctx, payoutJob{
		WithdrawalID: withdrawalID,
		Created:      time.Now(),
	})
}

func (q *Queue) push(ctx context.Context, job payoutJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := q.redis.LPush(ctx, payoutQueue, string(data)).Err(); err != nil {
		return err
	}
	metrics.SetPayoutQueueLength(q.Length(ctx))
	return nil
}

// pop blocks for up to timeout and returns the next job, or ok=false when
// the queue stayed empty.
func (q *Queue) pop(ctx context.Context, timeout time.Duration) (payoutJob, bool) {
	result, err := q.redis.BRPop(ctx, timeout, payoutQueue).Result()
	if err != nil {
		return payoutJob{}, false
	}
	metrics.SetPayoutQueueLength(q.Length(ctx))

	var job payoutJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return payoutJob{}, false
	}
	return job, true
}

func (q *Queue) saveFailed(job payoutJob, cause error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": cause.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	q.redis.LPush(context.Background(), payoutFailedQueue, string(data))
}

func (q *Queue) Length(ctx context.Context) int64 {
	length, _ := q.redis.LLen(ctx, payoutQueue).Result()
	return length
}

func (q *Queue) Close() error {
	return q.redis.Close()
}
