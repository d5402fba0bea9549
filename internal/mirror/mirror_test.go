package mirror_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
	"github.com/MrJamesThe3rd/freightdesk/internal/mirror"
	"github.com/MrJamesThe3rd/freightdesk/internal/payment"
)

func sample() (*invoice.Invoice, []*payment.Payment) {
	inv := &invoice.Invoice{
		Number:    "INV-000042",
		BookingID: uuid.New(),
		Total:     decimal.RequireFromString("1180"),
		Paid:      decimal.RequireFromString("1180"),
		Remaining: decimal.Zero,
		Status:    invoice.StatusPaid,
	}

	payments := []*payment.Payment{{
		ID:            uuid.New(),
		Amount:        decimal.RequireFromString("1180"),
		Method:        payment.MethodBankTransfer,
		TransactionID: new("stmt-7"),
		PaidAt:        time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
	}}

	return inv, payments
}

func TestClient_PublishPayments(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := mirror.New(srv.URL, "secret", zap.NewNop())

	inv, payments := sample()
	c.PublishPayments(context.Background(), inv, payments)
	c.Wait()

	require.NotNil(t, got)
	assert.Equal(t, "INV-000042", got["invoice_number"])
	assert.Equal(t, "0.00", got["remaining"])

	docs, ok := got["payments"].([]any)
	require.True(t, ok)
	require.Len(t, docs, 1)

	first := docs[0].(map[string]any)
	assert.Equal(t, "1180.00", first["amount"])
	assert.Equal(t, "stmt-7", first["transaction_id"])
	assert.Equal(t, "2026-03-10T09:30:00Z", first["paid_at"])
}

func TestClient_PublishPayments_FailureIsLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	core, logs := observer.New(zap.WarnLevel)
	c := mirror.New(srv.URL, "", zap.New(core))

	inv, payments := sample()
	c.PublishPayments(context.Background(), inv, payments)
	c.Wait()

	require.Equal(t, 1, logs.FilterMessage("payment mirror failed").Len())
}

func TestClient_Disabled(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := mirror.New("", "", zap.NewNop())

	inv, payments := sample()
	c.PublishPayments(context.Background(), inv, payments)
	c.Wait()

	assert.Zero(t, calls.Load())
}
