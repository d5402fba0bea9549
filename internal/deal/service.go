package deal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/booking"
	"github.com/MrJamesThe3rd/freightdesk/internal/document"
	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
	"github.com/MrJamesThe3rd/freightdesk/internal/party"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=deal
type Repository interface {
	// CreateDeal inserts the deal and links it to its booking in one
	// transaction. It returns ErrDuplicateDeal when the booking already has one.
	CreateDeal(ctx context.Context, d *Deal) error
	GetDeal(ctx context.Context, id uuid.UUID) (*Deal, error)
	GetDealByBooking(ctx context.Context, bookingID uuid.UUID) (*Deal, error)
	ListDeals(ctx context.Context, filter ListFilter) ([]*Deal, error)
	SetPDFURL(ctx context.Context, id uuid.UUID, url string) error
}

type BookingReader interface {
	Get(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
}

type PartyReader interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*party.Customer, error)
	GetContractor(ctx context.Context, id uuid.UUID) (*party.Contractor, error)
}

type Invoices interface {
	EnsureInvoice(ctx context.Context, src invoice.Source) (*invoice.Invoice, error)
	Get(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error)
}

type ListFilter struct {
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

type Options struct {
	PDFTimeout time.Duration
	Language   string
	TaxRate    decimal.Decimal
}

type Service struct {
	repo     Repository
	bookings BookingReader
	parties  PartyReader
	invoices Invoices
	renderer document.Renderer
	opts     Options
	log      *zap.Logger
}

func NewService(
	repo Repository,
	bookings BookingReader,
	parties PartyReader,
	invoices Invoices,
	renderer document.Renderer,
	opts Options,
	log *zap.Logger,
) *Service {
	if opts.PDFTimeout <= 0 {
		opts.PDFTimeout = 10 * time.Second
	}

	return &Service{
		repo:     repo,
		bookings: bookings,
		parties:  parties,
		invoices: invoices,
		renderer: renderer,
		opts:     opts,
		log:      log,
	}
}

// sources is everything a deal document is built from.
type sources struct {
	booking    *booking.Booking
	customer   *party.Customer
	contractor *party.Contractor
}

// Create returns the booking's deal, creating it on first call. Concurrent
// calls for the same booking converge on a single row. PDF rendering happens
// after the row is committed; a rendering failure leaves the deal without a
// pdf_url and is reported as a warning.
func (s *Service) Create(ctx context.Context, bookingID uuid.UUID) (*Result, error) {
	existing, err := s.repo.GetDealByBooking(ctx, bookingID)
	if err == nil {
		return &Result{Deal: existing}, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("looking up deal: %w", err)
	}

	src, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !src.booking.Status.Billable() {
		return nil, fmt.Errorf("%w: booking is %s", ErrNotBillable, src.booking.Status)
	}

	inv, err := s.invoices.EnsureInvoice(ctx, src.booking.InvoiceSource())
	if err != nil {
		return nil, fmt.Errorf("ensuring invoice: %w", err)
	}

	d := fromInvoice(bookingID, inv)

	if err := s.repo.CreateDeal(ctx, d); err != nil {
		if !errors.Is(err, ErrDuplicateDeal) {
			return nil, fmt.Errorf("creating deal: %w", err)
		}

		winner, err := s.repo.GetDealByBooking(ctx, bookingID)
		if err != nil {
			return nil, fmt.Errorf("reading back deal: %w", err)
		}

		return &Result{Deal: winner}, nil
	}

	s.log.Info("invoice deal created",
		zap.String("deal_id", d.ID.String()),
		zap.String("booking_id", bookingID.String()),
		zap.String("invoice_number", d.InvoiceNumber),
	)

	res := &Result{Deal: d, Created: true}

	if err := s.attachPDF(ctx, d, inv, src); err != nil {
		s.log.Warn("deal pdf not generated",
			zap.String("deal_id", d.ID.String()),
			zap.Error(err),
		)

		res.Warnings = append(res.Warnings, fmt.Sprintf("pdf not generated: %v", err))
	}

	return res, nil
}

// RegeneratePDF renders the deal document again. It never creates a deal.
func (s *Service) RegeneratePDF(ctx context.Context, dealID uuid.UUID) (*Deal, error) {
	d, err := s.repo.GetDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	src, err := s.load(ctx, d.BookingID)
	if err != nil {
		return nil, err
	}

	inv, err := s.invoices.Get(ctx, d.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	if err := s.attachPDF(ctx, d, inv, src); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Deal, error) {
	return s.repo.GetDeal(ctx, id)
}

func (s *Service) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*Deal, error) {
	return s.repo.GetDealByBooking(ctx, bookingID)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Deal, error) {
	return s.repo.ListDeals(ctx, filter)
}

func (s *Service) load(ctx context.Context, bookingID uuid.UUID) (*sources, error) {
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking %s", ErrMissingBooking, bookingID)
		}

		return nil, fmt.Errorf("getting booking: %w", err)
	}

	customer, err := s.parties.GetCustomer(ctx, b.CustomerID)
	if err != nil {
		if errors.Is(err, party.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer %s", ErrMissingBooking, b.CustomerID)
		}

		return nil, fmt.Errorf("getting customer: %w", err)
	}

	src := &sources{booking: b, customer: customer}

	if b.ContractorID != nil {
		contractor, err := s.parties.GetContractor(ctx, *b.ContractorID)
		if err != nil {
			if errors.Is(err, party.ErrNotFound) {
				return nil, fmt.Errorf("%w: contractor %s", ErrMissingBooking, *b.ContractorID)
			}

			return nil, fmt.Errorf("getting contractor: %w", err)
		}

		src.contractor = contractor
	}

	return src, nil
}

// attachPDF renders outside of any transaction, bounded by the PDF timeout,
// and stores the resulting URL on success.
func (s *Service) attachPDF(ctx context.Context, d *Deal, inv *invoice.Invoice, src *sources) error {
	renderCtx, cancel := context.WithTimeout(ctx, s.opts.PDFTimeout)
	defer cancel()

	url, err := s.renderer.Render(renderCtx, s.snapshot(d, inv, src))
	if err != nil {
		if !errors.Is(err, document.ErrRenderFailed) {
			err = fmt.Errorf("%w: %w", document.ErrRenderFailed, err)
		}

		return err
	}

	if err := s.repo.SetPDFURL(ctx, d.ID, url); err != nil {
		return fmt.Errorf("saving pdf url: %w", err)
	}

	d.PDFURL = &url

	return nil
}

func (s *Service) snapshot(d *Deal, inv *invoice.Invoice, src *sources) document.Snapshot {
	snap := document.Snapshot{
		Kind:     document.KindDeal,
		Language: s.opts.Language,
		Number:   d.InvoiceNumber,
		Customer: document.Party{
			Name:    src.customer.Name,
			Email:   src.customer.Email,
			Phone:   src.customer.Phone,
			Address: src.customer.Address,
			TaxID:   src.customer.TaxID,
		},
		Items: []document.LineItem{{
			Description: inv.ServiceName,
			Quantity:    1,
			UnitPrice:   inv.Subtotal,
			Total:       inv.Subtotal,
		}},
		Subtotal:  inv.Subtotal,
		Tax:       inv.Tax,
		Total:     d.Total,
		Paid:      d.Paid,
		Remaining: d.Remaining,
		Status:    string(d.Status),
		IssuedAt:  d.CreatedAt,
		DueDate:   inv.DueDate,
	}

	if inv.Tax != nil {
		snap.TaxRate = s.opts.TaxRate
	}

	if src.contractor != nil {
		snap.Provider = &document.Party{
			Name:  src.contractor.Name,
			Email: src.contractor.Email,
			Phone: src.contractor.Phone,
		}
	}

	return snap
}
