package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/addresses", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "onchain", body["payment_method"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Allocation{
			Address:     "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
			AddressType: "bech32",
		})
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL)
	alloc, err := gw.Allocate(context.Background(), "onchain")
	require.NoError(t, err)
	assert.Equal(t, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", alloc.Address)
	assert.Equal(t, "bech32", alloc.AddressType)
}

func TestAllocate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL)
	_, err := gw.Allocate(context.Background(), "onchain")
	assert.ErrorIs(t, err, ErrAllocationFailed)
}

func TestAllocate_EmptyAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Allocation{})
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL)
	_, err := gw.Allocate(context.Background(), "onchain")
	assert.ErrorIs(t, err, ErrAllocationFailed)
}

func TestAllocate_Unreachable(t *testing.T) {
	gw := NewHTTPGateway("http://127.0.0.1:1")
	_, err := gw.Allocate(context.Background(), "onchain")
	assert.ErrorIs(t, err, ErrAllocationFailed)
}
