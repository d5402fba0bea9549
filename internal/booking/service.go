package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/balance"
	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=booking
type Repository interface {
	// CreateBooking stores the booking together with its first track.
	CreateBooking(ctx context.Context, b *Booking, first *Track) error
	GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListBookings(ctx context.Context, filter ListFilter) ([]*Booking, error)
	ListTracks(ctx context.Context, bookingID uuid.UUID) ([]*Track, error)

	BeginTransition(ctx context.Context) (TransitionTx, error)
}

// TransitionTx holds the booking row lock for the duration of a status change.
type TransitionTx interface {
	LockBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	// AppendTrack runs inside a savepoint: a failed insert leaves the rest of
	// the transaction usable.
	AppendTrack(ctx context.Context, t *Track) error
	AdjustContractorBalance(ctx context.Context, contractorID uuid.UUID, delta decimal.Decimal) error
	Commit() error
	Rollback() error
}

type InvoiceEnsurer interface {
	EnsureInvoice(ctx context.Context, src invoice.Source) (*invoice.Invoice, error)
}

type Service struct {
	repo     Repository
	invoices InvoiceEnsurer
	log      *zap.Logger
}

func NewService(repo Repository, invoices InvoiceEnsurer, log *zap.Logger) *Service {
	return &Service{repo: repo, invoices: invoices, log: log}
}

type CreateParams struct {
	CustomerID   uuid.UUID
	ContractorID *uuid.UUID
	ServiceName  string
	Price        decimal.Decimal
	Commission   *decimal.Decimal
	Notes        *string
	ScheduledAt  time.Time
	Actor        string
}

type ListFilter struct {
	Status       *Status
	CustomerID   *uuid.UUID
	ContractorID *uuid.UUID
	StartDate    *time.Time
	EndDate      *time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Booking, error) {
	if params.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer is required", ErrInvalidBooking)
	}

	if params.Price.IsNegative() || !params.Price.Equal(params.Price.Round(2)) {
		return nil, fmt.Errorf("%w: price must be non-negative with at most two decimals", ErrInvalidBooking)
	}

	if params.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: scheduled time is required", ErrInvalidBooking)
	}

	b := &Booking{
		Status:       StatusPending,
		CustomerID:   params.CustomerID,
		ContractorID: params.ContractorID,
		ServiceName:  params.ServiceName,
		Price:        params.Price,
		Commission:   params.Commission,
		Notes:        params.Notes,
		ScheduledAt:  params.ScheduledAt,
	}

	first := &Track{
		NewStatus: StatusPending,
		Actor:     actorRef(params.Actor),
	}

	if err := s.repo.CreateBooking(ctx, b, first); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Booking, error) {
	return s.repo.ListBookings(ctx, filter)
}

// History returns the booking's tracks, newest first.
func (s *Service) History(ctx context.Context, bookingID uuid.UUID) ([]*Track, error) {
	if _, err := s.repo.GetBooking(ctx, bookingID); err != nil {
		return nil, err
	}

	return s.repo.ListTracks(ctx, bookingID)
}

// Confirm moves a booking to confirmed, records the contractor debt and makes
// sure the booking has an invoice. The invoice step runs after the status
// change is committed; if it fails the booking stays confirmed and the
// failure is reported as a warning.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID, note *string, actor string) (*Result, error) {
	b, warnings, err := s.transition(ctx, id, StatusConfirmed, note, actor)
	if err != nil {
		return nil, err
	}

	res := &Result{Booking: b, Warnings: warnings}

	inv, err := s.invoices.EnsureInvoice(ctx, b.InvoiceSource())
	if err != nil {
		s.log.Warn("invoice not ensured after confirmation",
			zap.String("booking_id", b.ID.String()),
			zap.Error(err),
		)

		res.Warnings = append(res.Warnings, fmt.Sprintf("invoice not created: %v", err))

		return res, nil
	}

	res.Invoice = inv

	return res, nil
}

// SetStatus applies any transition. Confirmation is routed through Confirm so
// it always carries its balance and invoice side effects.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, to Status, note *string, actor string) (*Result, error) {
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}

	if to == StatusConfirmed {
		return s.Confirm(ctx, id, note, actor)
	}

	b, warnings, err := s.transition(ctx, id, to, note, actor)
	if err != nil {
		return nil, err
	}

	return &Result{Booking: b, Warnings: warnings}, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to Status, note *string, actor string) (*Booking, []string, error) {
	ttx, err := s.repo.BeginTransition(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transition: %w", err)
	}
	defer ttx.Rollback()

	b, err := ttx.LockBooking(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	from := b.Status
	if err := CheckTransition(from, to); err != nil {
		return nil, nil, err
	}

	if err := ttx.UpdateStatus(ctx, b.ID, to); err != nil {
		return nil, nil, fmt.Errorf("updating status: %w", err)
	}

	b.Status = to

	switch {
	case to == StatusConfirmed:
		err = balance.OnBookingConfirmed(ctx, ttx, b.ContractorID, b.Price)
	case to == StatusCancelled && from.Billable():
		err = balance.OnBookingCancelled(ctx, ttx, b.ContractorID, b.Price)
	}

	if err != nil {
		return nil, nil, fmt.Errorf("adjusting contractor balance: %w", err)
	}

	var warnings []string

	track := &Track{
		BookingID: b.ID,
		OldStatus: &from,
		NewStatus: to,
		Note:      note,
		Actor:     actorRef(actor),
	}
	if err := ttx.AppendTrack(ctx, track); err != nil {
		s.log.Warn("booking track not recorded",
			zap.String("booking_id", b.ID.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(err),
		)

		warnings = append(warnings, fmt.Sprintf("status history not recorded: %v", err))
	}

	if err := ttx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit transition: %w", err)
	}

	s.log.Info("booking status changed",
		zap.String("booking_id", b.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	return b, warnings, nil
}

func actorRef(actor string) *string {
	if actor == "" {
		return nil
	}

	return &actor
}
