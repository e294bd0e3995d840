package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendTradeUpdate(t *testing.T) {
	t.Parallel()

	var body map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/telegram/send_trade_update", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(server.Close)

	client := NewClient("test-key", WithBaseURL(server.URL))
	require.NoError(t, client.SendTradeUpdate(context.Background(), "BUY 10 AAPL @ 184.50"))
	assert.Equal(t, "BUY 10 AAPL @ 184.50", body["message"])
}

func TestSendTradeUpdateAcceptsOK(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	client := NewClient("test-key", WithBaseURL(server.URL))
	assert.NoError(t, client.SendTradeUpdate(context.Background(), "flat, nothing to do"))
}

func TestSendTradeUpdateAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	client := NewClient("bad-key", WithBaseURL(server.URL))
	err := client.SendTradeUpdate(context.Background(), "BUY 10 AAPL @ 184.50")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "bad key")
}

func TestSendTradeUpdateRejectsEmptyMessage(t *testing.T) {
	t.Parallel()

	client := NewClient("test-key")
	assert.Error(t, client.SendTradeUpdate(context.Background(), ""))
}
