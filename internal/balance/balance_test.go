package balance_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/freightdesk/internal/balance"
)

// ledger mimics the store's single-statement increment.
type ledger struct {
	mu       sync.Mutex
	balances map[uuid.UUID]decimal.Decimal
}

func (l *ledger) AdjustContractorBalance(_ context.Context, id uuid.UUID, delta decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[id] = l.balances[id].Add(delta)

	return nil
}

func TestOnBookingConfirmed(t *testing.T) {
	contractor := uuid.New()
	l := &ledger{balances: map[uuid.UUID]decimal.Decimal{}}

	require.NoError(t, balance.OnBookingConfirmed(context.Background(), l, &contractor, decimal.RequireFromString("1000")))
	require.NoError(t, balance.OnBookingConfirmed(context.Background(), l, nil, decimal.RequireFromString("500")))

	assert.Equal(t, "-1000.00", l.balances[contractor].StringFixed(2))
	assert.Len(t, l.balances, 1)
}

func TestOnBookingCancelled(t *testing.T) {
	contractor := uuid.New()
	l := &ledger{balances: map[uuid.UUID]decimal.Decimal{}}
	price := decimal.RequireFromString("250.50")

	require.NoError(t, balance.OnBookingConfirmed(context.Background(), l, &contractor, price))
	require.NoError(t, balance.OnBookingCancelled(context.Background(), l, &contractor, price))

	assert.True(t, l.balances[contractor].IsZero())
}

func TestOnPaymentRecorded(t *testing.T) {
	contractor := uuid.New()
	customer := uuid.New()
	l := &ledger{balances: map[uuid.UUID]decimal.Decimal{}}

	require.NoError(t, balance.OnPaymentRecorded(context.Background(), l, balance.Entry{
		ContractorID: &contractor,
		Amount:       decimal.RequireFromString("300"),
	}))
	require.NoError(t, balance.OnPaymentRecorded(context.Background(), l, balance.Entry{
		CustomerID: &customer,
		Amount:     decimal.RequireFromString("300"),
	}))

	assert.Equal(t, "300.00", l.balances[contractor].StringFixed(2))
	_, touched := l.balances[customer]
	assert.False(t, touched)
}

func TestContractorBalance_OrderIndependent(t *testing.T) {
	contractor := uuid.New()
	l := &ledger{balances: map[uuid.UUID]decimal.Decimal{}}

	prices := []string{"100", "250.25", "80", "1000"}
	payments := []string{"50", "50", "400.10"}

	var wg sync.WaitGroup

	for _, p := range prices {
		wg.Add(1)

		go func() {
			defer wg.Done()
			assert.NoError(t, balance.OnBookingConfirmed(context.Background(), l, &contractor, decimal.RequireFromString(p)))
		}()
	}

	for _, p := range payments {
		wg.Add(1)

		go func() {
			defer wg.Done()
			assert.NoError(t, balance.OnPaymentRecorded(context.Background(), l, balance.Entry{
				ContractorID: &contractor,
				Amount:       decimal.RequireFromString(p),
			}))
		}()
	}

	wg.Wait()

	// -(100 + 250.25 + 80 + 1000) + (50 + 50 + 400.10)
	assert.Equal(t, "-930.15", l.balances[contractor].StringFixed(2))
}
