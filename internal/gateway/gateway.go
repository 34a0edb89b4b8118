package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Allocation is the receiving address handed out by the external address
// service for one invoice.
type Allocation struct {
	Address     string            `json:"address"`
	AddressType string            `json:"address_type"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// AddressGateway allocates a fresh receiving address for a payment method.
// Invoice creation calls it exactly once; a failure aborts creation before
// anything is persisted.
type AddressGateway interface {
	Allocate(ctx context.Context, paymentMethod string) (*Allocation, error)
}

var ErrAllocationFailed = errors.New("address allocation failed")

type httpGateway struct {
	baseURL string
	client  *http.Client
}

func NewHTTPGateway(baseURL string) AddressGateway {
	return &httpGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *httpGateway) Allocate(ctx context.Context, paymentMethod string) (*Allocation, error) {
	body, err := json.Marshal(map[string]string{"payment_method": paymentMethod})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/addresses", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllocationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: status %d", ErrAllocationFailed, resp.StatusCode)
	}

	var alloc Allocation
	if err := json.NewDecoder(resp.Body).Decode(&alloc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllocationFailed, err)
	}
	if alloc.Address == "" {
		return nil, fmt.Errorf("%w: empty address", ErrAllocationFailed)
	}

	return &alloc, nil
}
