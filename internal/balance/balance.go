package balance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("balance owner not found")

// Adjuster applies a delta to a contractor's stored balance in a single
// atomic statement. Implementations are bound to the caller's transaction so
// the adjustment commits or rolls back with it.
type Adjuster interface {
	AdjustContractorBalance(ctx context.Context, contractorID uuid.UUID, delta decimal.Decimal) error
}

// Entry is the part of a recorded payment the ledger cares about.
type Entry struct {
	CustomerID   *uuid.UUID
	ContractorID *uuid.UUID
	Amount       decimal.Decimal
}

// OnBookingConfirmed records the debt owed to the booking's contractor.
func OnBookingConfirmed(ctx context.Context, adj Adjuster, contractorID *uuid.UUID, price decimal.Decimal) error {
	if contractorID == nil || price.IsZero() {
		return nil
	}

	return adj.AdjustContractorBalance(ctx, *contractorID, price.Neg())
}

// OnBookingCancelled reverses OnBookingConfirmed for a booking that will no
// longer be carried out.
func OnBookingCancelled(ctx context.Context, adj Adjuster, contractorID *uuid.UUID, price decimal.Decimal) error {
	if contractorID == nil || price.IsZero() {
		return nil
	}

	return adj.AdjustContractorBalance(ctx, *contractorID, price)
}

// OnPaymentRecorded credits the contractor named on the payment. Customer
// balances are derived at read time and are never mutated here.
func OnPaymentRecorded(ctx context.Context, adj Adjuster, e Entry) error {
	if e.ContractorID == nil {
		return nil
	}

	return adj.AdjustContractorBalance(ctx, *e.ContractorID, e.Amount)
}

// CustomerBalance is positive when the customer holds credit and negative
// when they owe money.
type CustomerBalance struct {
	CustomerID uuid.UUID
	Paid       decimal.Decimal
	Invoiced   decimal.Decimal
	Unbilled   decimal.Decimal
	Balance    decimal.Decimal
}

// CustomerTotals are the raw sums a customer balance is derived from.
type CustomerTotals struct {
	Paid     decimal.Decimal
	Invoiced decimal.Decimal
	Unbilled decimal.Decimal
}

type ContractorBalance struct {
	ContractorID uuid.UUID
	Balance      decimal.Decimal
}
