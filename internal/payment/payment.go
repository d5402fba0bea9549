package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
)

var (
	ErrNotFound           = errors.New("payment not found")
	ErrNoPayments         = errors.New("at least one payment is required")
	ErrInvalidAmount      = errors.New("payment amount must be positive with at most two decimals")
	ErrInvalidMethod      = errors.New("invalid payment method")
	ErrContractorMismatch = errors.New("payment contractor does not match invoice contractor")
	ErrCustomerMismatch   = errors.New("payment customer does not match invoice customer")
	// ErrDuplicatePayment means a payment with the same method and
	// transaction id was already recorded.
	ErrDuplicatePayment = errors.New("payment already recorded")
)

type Method string

const (
	MethodCash         Method = "cash"
	MethodCreditCard   Method = "credit_card"
	MethodBankTransfer Method = "bank_transfer"
	MethodCheck        Method = "check"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCreditCard, MethodBankTransfer, MethodCheck:
		return true
	}

	return false
}

// Payment is one settlement event. Rows are never updated or deleted.
type Payment struct {
	ID            uuid.UUID
	InvoiceID     uuid.UUID
	BookingID     uuid.UUID
	CustomerID    *uuid.UUID
	ContractorID  *uuid.UUID
	Amount        decimal.Decimal
	Method        Method
	TransactionID *string
	PaidAt        time.Time
	CreatedAt     time.Time
}

type Input struct {
	Amount        decimal.Decimal
	Method        Method
	CustomerID    *uuid.UUID
	ContractorID  *uuid.UUID
	TransactionID *string
	PaidAt        *time.Time
}

func (in Input) validate() error {
	if !in.Amount.IsPositive() || !in.Amount.Equal(in.Amount.Round(2)) {
		return ErrInvalidAmount
	}

	if !in.Method.Valid() {
		return ErrInvalidMethod
	}

	return nil
}

// Outcome describes how the paid amount compares to the invoice total after
// payments were applied.
type Outcome string

const (
	OutcomeSettled   Outcome = "settled"
	OutcomeUnderpaid Outcome = "underpaid"
	OutcomeOverpaid  Outcome = "overpaid"
)

type Result struct {
	Invoice  *invoice.Invoice
	Payments []*Payment
	Outcome  Outcome
	// Due is what the customer still owes; zero unless underpaid.
	Due decimal.Decimal
	// Excess is the customer credit created by overpaying; zero unless overpaid.
	Excess decimal.Decimal
}

func newResult(inv *invoice.Invoice, payments []*Payment) *Result {
	res := &Result{
		Invoice:  inv,
		Payments: payments,
		Outcome:  OutcomeSettled,
		Due:      decimal.Zero,
		Excess:   decimal.Zero,
	}

	switch {
	case inv.Remaining.IsPositive():
		res.Outcome = OutcomeUnderpaid
		res.Due = inv.Remaining
	case inv.Remaining.IsNegative():
		res.Outcome = OutcomeOverpaid
		res.Excess = inv.Remaining.Neg()
	}

	return res
}
