package invoice

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	// CreateInvoice returns ErrDuplicateInvoice when the booking already has one.
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	GetInvoiceByBooking(ctx context.Context, bookingID uuid.UUID) (*Invoice, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error)
	// OldestOpenInvoice returns the customer's unpaid invoice with the
	// earliest due date.
	OldestOpenInvoice(ctx context.Context, customerID uuid.UUID) (*Invoice, error)
	EnrichInvoice(ctx context.Context, id uuid.UUID, params EnrichParams) (*Invoice, error)
	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, error)
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
	NextInvoiceNumber(ctx context.Context) (int64, error)
}

// EnrichParams overwrite the descriptive and derived fields of an existing
// invoice. The repository recomputes Remaining and Status against the paid
// amount it holds, and only fills ContractorID when the invoice has none.
type EnrichParams struct {
	Type         Type
	Direction    Direction
	ServiceName  string
	Notes        *string
	Commission   *decimal.Decimal
	Amounts      Amounts
	ContractorID *uuid.UUID
	DueDate      *time.Time
}

type ListFilter struct {
	Status     *Status
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

type Options struct {
	TaxRate decimal.Decimal
	DueDays int
	Now     func() time.Time
}

type Service struct {
	repo    Repository
	taxRate decimal.Decimal
	dueDays int
	now     func() time.Time
	log     *zap.Logger
}

func NewService(repo Repository, opts Options, log *zap.Logger) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.DueDays <= 0 {
		opts.DueDays = 30
	}

	return &Service{
		repo:    repo,
		taxRate: opts.TaxRate,
		dueDays: opts.DueDays,
		now:     opts.Now,
		log:     log,
	}
}

// CreateParams tune a single invoice creation. Zero values keep the
// defaults: a positive tax invoice for a new invoice, and the current type
// and direction when enriching.
type CreateParams struct {
	Type        Type
	Direction   Direction
	ServiceName *string
	Notes       *string
	Commission  *decimal.Decimal
	DueDate     *time.Time
}

// EnsureInvoice returns the booking's invoice, creating it or refreshing it
// from the booking snapshot.
func (s *Service) EnsureInvoice(ctx context.Context, src Source) (*Invoice, error) {
	return s.Create(ctx, src, CreateParams{})
}

// Create is the one creation path for every invoice type. An existing invoice
// for the booking is enriched instead. Losing a creation race to a concurrent
// caller is resolved by reading back and enriching the winner's row.
func (s *Service) Create(ctx context.Context, src Source, params CreateParams) (*Invoice, error) {
	if params.Type != "" && !params.Type.Valid() {
		return nil, ErrInvalidType
	}

	if params.Direction != "" && !params.Direction.Valid() {
		return nil, ErrInvalidDirection
	}

	src = params.override(src)

	existing, err := s.repo.GetInvoiceByBooking(ctx, src.BookingID)
	if err == nil {
		return s.enrich(ctx, existing, src, params)
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("looking up invoice: %w", err)
	}

	inv := s.build(ctx, src, params)

	err = s.repo.CreateInvoice(ctx, inv)
	if err == nil {
		s.log.Info("invoice created",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("number", inv.Number),
			zap.String("booking_id", src.BookingID.String()),
		)

		return inv, nil
	}

	if !errors.Is(err, ErrDuplicateInvoice) {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}

	s.log.Debug("invoice created concurrently, reading back", zap.String("booking_id", src.BookingID.String()))

	winner, err := s.repo.GetInvoiceByBooking(ctx, src.BookingID)
	if err != nil {
		return nil, fmt.Errorf("reading back invoice: %w", err)
	}

	return s.enrich(ctx, winner, src, params)
}

func (p CreateParams) override(src Source) Source {
	if p.ServiceName != nil {
		src.ServiceName = *p.ServiceName
	}

	if p.Notes != nil {
		src.Notes = p.Notes
	}

	if p.Commission != nil {
		src.Commission = p.Commission
	}

	return src
}

func (s *Service) build(ctx context.Context, src Source, params CreateParams) *Invoice {
	typ := params.Type
	if typ == "" {
		typ = TypeTaxInvoice
	}

	dir := params.Direction
	if dir == "" {
		dir = DirectionPositive
	}

	amounts := ComputeAmounts(typ, src.Price, s.taxRate)

	due := s.dueDate()
	if params.DueDate != nil {
		due = *params.DueDate
	}

	return &Invoice{
		Number:       s.nextNumber(ctx),
		BookingID:    src.BookingID,
		CustomerID:   src.CustomerID,
		ContractorID: src.ContractorID,
		ServiceName:  src.ServiceName,
		Notes:        src.Notes,
		Commission:   src.Commission,
		Subtotal:     amounts.Subtotal,
		Tax:          amounts.Tax,
		Total:        amounts.Total,
		Paid:         decimal.Zero,
		Remaining:    amounts.Total,
		Status:       StatusPending,
		Type:         typ,
		Direction:    dir,
		DueDate:      due,
	}
}

func (s *Service) enrich(ctx context.Context, existing *Invoice, src Source, params CreateParams) (*Invoice, error) {
	typ := existing.Type
	if params.Type != "" {
		typ = params.Type
	}

	dir := existing.Direction
	if params.Direction != "" {
		dir = params.Direction
	}

	inv, err := s.repo.EnrichInvoice(ctx, existing.ID, EnrichParams{
		Type:         typ,
		Direction:    dir,
		ServiceName:  src.ServiceName,
		Notes:        src.Notes,
		Commission:   src.Commission,
		Amounts:      ComputeAmounts(typ, src.Price, s.taxRate),
		ContractorID: src.ContractorID,
		DueDate:      params.DueDate,
	})
	if err != nil {
		return nil, fmt.Errorf("enriching invoice: %w", err)
	}

	return inv, nil
}

func (s *Service) dueDate() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, s.dueDays)
}

const suffixAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// nextNumber falls back to a timestamp number when the sequence is
// unavailable. The random suffix keeps fallbacks issued in the same
// millisecond apart.
func (s *Service) nextNumber(ctx context.Context) string {
	n, err := s.repo.NextInvoiceNumber(ctx)
	if err == nil {
		return fmt.Sprintf("INV-%06d", n)
	}

	s.log.Warn("invoice sequence unavailable, using fallback number", zap.Error(err))

	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = suffixAlphabet[rand.IntN(len(suffixAlphabet))]
	}

	return fmt.Sprintf("INV-%d-%s", s.now().UnixMilli(), suffix)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoiceByBooking(ctx, bookingID)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	return s.repo.GetInvoiceByNumber(ctx, number)
}

func (s *Service) OldestOpen(ctx context.Context, customerID uuid.UUID) (*Invoice, error) {
	return s.repo.OldestOpenInvoice(ctx, customerID)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx, filter)
}

// MarkOverdue moves pending invoices whose due date is before asOf to
// overdue and returns how many changed.
func (s *Service) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	n, err := s.repo.MarkOverdue(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("marking overdue invoices: %w", err)
	}

	if n > 0 {
		s.log.Info("invoices marked overdue", zap.Int64("count", n), zap.Time("as_of", asOf))
	}

	return n, nil
}
