package invoice

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("invoice not found")
	// ErrDuplicateInvoice is returned by the repository when another creator
	// already holds the invoice for the booking. The service resolves it by
	// reading back the winner; callers never see it.
	ErrDuplicateInvoice = errors.New("invoice already exists for booking")
	ErrInvalidType      = errors.New("invalid invoice type")
	ErrInvalidDirection = errors.New("invalid invoice direction")
)

// Status represents where an invoice stands on the money side.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// Type selects how subtotal, tax and total are derived from the booking price.
type Type string

const (
	TypeTaxInvoice        Type = "tax_invoice"
	TypeReceiptOnly       Type = "receipt_only"
	TypeGeneral           Type = "general"
	TypeTaxInvoiceReceipt Type = "tax_invoice_receipt"
)

func (t Type) Valid() bool {
	switch t {
	case TypeTaxInvoice, TypeReceiptOnly, TypeGeneral, TypeTaxInvoiceReceipt:
		return true
	}

	return false
}

func (t Type) Taxed() bool {
	return t == TypeTaxInvoice || t == TypeTaxInvoiceReceipt
}

// Direction tells whether the invoice bills the customer or credits them.
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
)

func (d Direction) Valid() bool {
	return d == DirectionPositive || d == DirectionNegative
}

// Invoice is the financial record of a booking. Remaining is always
// Total - Paid and goes negative when the customer has overpaid.
type Invoice struct {
	ID           uuid.UUID
	Number       string
	BookingID    uuid.UUID
	CustomerID   uuid.UUID
	ContractorID *uuid.UUID
	ServiceName  string
	Notes        *string
	Commission   *decimal.Decimal
	Subtotal     decimal.Decimal
	Tax          *decimal.Decimal
	Total        decimal.Decimal
	Paid         decimal.Decimal
	Remaining    decimal.Decimal
	Status       Status
	Type         Type
	Direction    Direction
	DueDate      time.Time
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Settle recomputes Remaining and moves the status to paid once nothing is
// owed. A paid invoice whose total grew goes back to pending.
func (i *Invoice) Settle() {
	i.Remaining = i.Total.Sub(i.Paid)

	switch {
	case !i.Remaining.IsPositive():
		i.Status = StatusPaid
	case i.Status == StatusPaid:
		i.Status = StatusPending
	}
}

// Source is the booking snapshot an invoice is built from.
type Source struct {
	BookingID    uuid.UUID
	CustomerID   uuid.UUID
	ContractorID *uuid.UUID
	ServiceName  string
	Price        decimal.Decimal
	Commission   *decimal.Decimal
	Notes        *string
}

type Amounts struct {
	Subtotal decimal.Decimal
	Tax      *decimal.Decimal
	Total    decimal.Decimal
}

// ComputeAmounts derives the invoice amounts for a price. Tax is rounded to
// cents when computed.
func ComputeAmounts(t Type, price, rate decimal.Decimal) Amounts {
	if !t.Taxed() {
		return Amounts{Subtotal: price, Total: price}
	}

	tax := price.Mul(rate).Round(2)

	return Amounts{
		Subtotal: price,
		Tax:      &tax,
		Total:    price.Add(tax),
	}
}
