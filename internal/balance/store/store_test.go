package store_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/freightdesk/internal/balance"
	"github.com/MrJamesThe3rd/freightdesk/internal/balance/store"
)

func TestAdjuster_AdjustContractorBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE contractors SET balance = balance + $1 WHERE id = $2`)).
		WithArgs(decimal.RequireFromString("-1000"), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.NewAdjuster(db).AdjustContractorBalance(context.Background(), id, decimal.RequireFromString("-1000"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjuster_UnknownContractor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE contractors SET balance`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = store.NewAdjuster(db).AdjustContractorBalance(context.Background(), uuid.New(), decimal.NewFromInt(5))
	assert.ErrorIs(t, err, balance.ErrNotFound)
}

func TestStore_CustomerTotals(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()

	mock.ExpectQuery(`SELECT\s+EXISTS`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"exists", "paid", "invoiced", "unbilled"}).
			AddRow(true, "1280.00", "1180.00", "0"))

	got, err := store.New(db).CustomerTotals(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "1280.00", got.Paid.StringFixed(2))
	assert.Equal(t, "1180.00", got.Invoiced.StringFixed(2))
	assert.True(t, got.Unbilled.IsZero())
}

func TestStore_CustomerTotals_UnknownCustomer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists", "paid", "invoiced", "unbilled"}).
			AddRow(false, "0", "0", "0"))

	_, err = store.New(db).CustomerTotals(context.Background(), uuid.New())
	assert.ErrorIs(t, err, balance.ErrNotFound)
}
