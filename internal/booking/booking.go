package booking

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
)

var (
	ErrNotFound          = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNoOpTransition    = errors.New("booking already has this status")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrInvalidBooking    = errors.New("invalid booking")
)

// Status represents the lifecycle state of a booking.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}

	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Billable reports whether a booking in this status can be invoiced.
func (s Status) Billable() bool {
	return s == StatusConfirmed || s == StatusInProgress || s == StatusCompleted
}

// CheckTransition validates a status change. Only forward edges between
// adjacent states and cancellation of a non-terminal booking are allowed.
func CheckTransition(from, to Status) error {
	if from == to {
		return ErrNoOpTransition
	}

	if !slices.Contains(transitions[from], to) {
		return ErrInvalidTransition
	}

	return nil
}

// Booking is a service order.
type Booking struct {
	ID            uuid.UUID
	Status        Status
	CustomerID    uuid.UUID
	ContractorID  *uuid.UUID
	ServiceName   string
	Price         decimal.Decimal
	Commission    *decimal.Decimal
	Notes         *string
	ScheduledAt   time.Time
	InvoiceDealID *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// InvoiceSource is the snapshot an invoice for this booking is built from.
func (b *Booking) InvoiceSource() invoice.Source {
	return invoice.Source{
		BookingID:    b.ID,
		CustomerID:   b.CustomerID,
		ContractorID: b.ContractorID,
		ServiceName:  b.ServiceName,
		Price:        b.Price,
		Commission:   b.Commission,
		Notes:        b.Notes,
	}
}

// Track is one entry of a booking's status history. Tracks are append-only.
type Track struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	OldStatus *Status
	NewStatus Status
	Note      *string
	Actor     *string
	CreatedAt time.Time
}

// Result is the outcome of a status change. Warnings carry the soft failures
// that did not undo the change itself.
type Result struct {
	Booking  *Booking
	Invoice  *invoice.Invoice
	Warnings []string
}
