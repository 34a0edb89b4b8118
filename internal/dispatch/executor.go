package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/soyaya/boardling/internal/withdrawal"
)

// SendExecutor performs the irreversible external send for a claimed
// withdrawal and returns the network's transaction reference.
type SendExecutor interface {
	Send(ctx context.Context, w *withdrawal.Withdrawal) (string, error)
}

var ErrSendRejected = errors.New("payout send rejected")

type httpExecutor struct {
	baseURL string
	client  *http.Client
}

// NewHTTPExecutor talks to an external payout service that settles sends
// synchronously.
func NewHTTPExecutor(baseURL string) SendExecutor {
	return &httpExecutor{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *httpExecutor) Send(ctx context.Context, w *withdrawal.Withdrawal) (string, error) {
	body, err := json.Marshal(map[string]string{
		"withdrawal_id": w.PublicID.String(),
		"address":       w.DestinationAddress,
		"amount":        w.NetAmount.String(),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/payouts", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: status %d", ErrSendRejected, resp.StatusCode)
	}

	var out struct {
		Reference string `json:"reference"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Reference == "" {
		return "", fmt.Errorf("%w: empty reference", ErrSendRejected)
	}

	return out.Reference, nil
}
