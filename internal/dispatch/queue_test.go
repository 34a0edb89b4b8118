package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestEnqueue_PushesJob(t *testing.T) {
	db, mock := redismock.NewClientMock()
	q := &Queue{redis: db}
	ctx := context.Background()

	mock.Regexp().ExpectLPush(payoutQueue, `.*"withdrawal_id":9.*`).SetVal(1)
	mock.ExpectLLen(payoutQueue).SetVal(1)

	err := q.Enqueue(ctx, 9)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPop_DecodesJob(t *testing.T) {
	db, mock := redismock.NewClientMock()
	q := &Queue{redis: db}
	ctx := context.Background()

	job := payoutJob{WithdrawalID: 9, Tries: 1, Created: time.Now().UTC()}
	data, err := json.Marshal(job)
	assert.NoError(t, err)

	mock.ExpectBRPop(2*time.Second, payoutQueue).SetVal([]string{payoutQueue, string(data)})
	mock.ExpectLLen(payoutQueue).SetVal(0)

	got, ok := q.pop(ctx, 2*time.Second)
	assert.True(t, ok)
	assert.Equal(t, 9, got.WithdrawalID)
	assert.Equal(t, 1, got.Tries)
}

func TestPop_EmptyQueue(t *testing.T) {
	db, mock := redismock.NewClientMock()
	q := &Queue{redis: db}

	mock.ExpectBRPop(time.Second, payoutQueue).RedisNil()

	_, ok := q.pop(context.Background(), time.Second)
	assert.False(t, ok)
}

func TestSaveFailed_RecordsCause(t *testing.T) {
	db, mock := redismock.NewClientMock()
	q := &Queue{redis: db}

	mock.Regexp().ExpectLPush(payoutFailedQueue, `.*"error":"executor unreachable".*`).SetVal(1)

	q.saveFailed(payoutJob{WithdrawalID: 9, Tries: 3}, errors.New("executor unreachable"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
