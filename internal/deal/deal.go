package deal

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
)

var (
	ErrNotFound       = errors.New("invoice deal not found")
	ErrDuplicateDeal  = errors.New("booking already has an invoice deal")
	ErrMissingBooking = errors.New("booking, customer or contractor not found")
	ErrNotBillable    = errors.New("booking is not billable")
)

// Deal is the once-only invoice document of a booking. Its amounts are a
// snapshot of the invoice taken when the deal was created.
type Deal struct {
	ID            uuid.UUID
	BookingID     uuid.UUID
	InvoiceID     uuid.UUID
	InvoiceNumber string
	Total         decimal.Decimal
	Paid          decimal.Decimal
	Remaining     decimal.Decimal
	Status        invoice.Status
	PDFURL        *string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

type Result struct {
	Deal *Deal
	// Created is false when the booking already had a deal.
	Created  bool
	Warnings []string
}

func fromInvoice(bookingID uuid.UUID, inv *invoice.Invoice) *Deal {
	return &Deal{
		BookingID:     bookingID,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.Number,
		Total:         inv.Total,
		Paid:          inv.Paid,
		Remaining:     inv.Remaining,
		Status:        inv.Status,
	}
}
