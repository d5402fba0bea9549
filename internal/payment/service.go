package payment

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

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=payment
type Repository interface {
	BeginApply(ctx context.Context) (ApplyTx, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
}

// ApplyTx is a unit of work that either records every payment together with
// the invoice totals and contractor balances, or nothing at all.
type ApplyTx interface {
	// LockInvoice returns invoice.ErrNotFound when the invoice is missing.
	LockInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error)
	// CreatePayments returns ErrDuplicatePayment when a method and
	// transaction id pair was already recorded.
	CreatePayments(ctx context.Context, payments []*Payment) error
	UpdateInvoiceTotals(ctx context.Context, inv *invoice.Invoice) error
	AdjustContractorBalance(ctx context.Context, contractorID uuid.UUID, delta decimal.Decimal) error
	Commit() error
	Rollback() error
}

// Publisher receives recorded payments after commit. It must not block.
type Publisher interface {
	PublishPayments(ctx context.Context, inv *invoice.Invoice, payments []*Payment)
}

type Service struct {
	repo      Repository
	publisher Publisher
	now       func() time.Time
	log       *zap.Logger
}

// NewService builds the reconciler. publisher may be nil.
func NewService(repo Repository, publisher Publisher, log *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
		log:       log,
	}
}

// ApplyPayments records every input against the invoice in one transaction.
// Paying more or less than the total is not an error; the result reports the
// amount still due or the credit created.
func (s *Service) ApplyPayments(ctx context.Context, invoiceID uuid.UUID, inputs []Input) (*Result, error) {
	if len(inputs) == 0 {
		return nil, ErrNoPayments
	}

	for _, in := range inputs {
		if err := in.validate(); err != nil {
			return nil, err
		}
	}

	atx, err := s.repo.BeginApply(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin apply: %w", err)
	}
	defer atx.Rollback()

	inv, err := atx.LockInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("locking invoice: %w", err)
	}

	payments, sum, err := s.build(inv, inputs)
	if err != nil {
		return nil, err
	}

	if err := atx.CreatePayments(ctx, payments); err != nil {
		return nil, fmt.Errorf("creating payments: %w", err)
	}

	inv.Paid = inv.Paid.Add(sum)
	inv.Settle()

	if err := atx.UpdateInvoiceTotals(ctx, inv); err != nil {
		return nil, fmt.Errorf("updating invoice totals: %w", err)
	}

	for _, p := range payments {
		entry := balance.Entry{CustomerID: p.CustomerID, ContractorID: p.ContractorID, Amount: p.Amount}
		if err := balance.OnPaymentRecorded(ctx, atx, entry); err != nil {
			return nil, fmt.Errorf("recording contractor payment: %w", err)
		}
	}

	if err := atx.Commit(); err != nil {
		return nil, fmt.Errorf("commit apply: %w", err)
	}

	res := newResult(inv, payments)

	s.log.Info("payments applied",
		zap.String("invoice_id", inv.ID.String()),
		zap.Int("count", len(payments)),
		zap.String("sum", sum.StringFixed(2)),
		zap.String("remaining", inv.Remaining.StringFixed(2)),
		zap.String("outcome", string(res.Outcome)),
	)

	if s.publisher != nil {
		s.publisher.PublishPayments(context.WithoutCancel(ctx), inv, payments)
	}

	return res, nil
}

func (s *Service) build(inv *invoice.Invoice, inputs []Input) ([]*Payment, decimal.Decimal, error) {
	payments := make([]*Payment, len(inputs))
	sum := decimal.Zero

	for i, in := range inputs {
		if in.ContractorID != nil && (inv.ContractorID == nil || *inv.ContractorID != *in.ContractorID) {
			return nil, decimal.Zero, ErrContractorMismatch
		}

		if in.CustomerID != nil && *in.CustomerID != inv.CustomerID {
			return nil, decimal.Zero, ErrCustomerMismatch
		}

		paidAt := s.now()
		if in.PaidAt != nil {
			paidAt = *in.PaidAt
		}

		payments[i] = &Payment{
			InvoiceID:     inv.ID,
			BookingID:     inv.BookingID,
			CustomerID:    new(inv.CustomerID),
			ContractorID:  in.ContractorID,
			Amount:        in.Amount,
			Method:        in.Method,
			TransactionID: in.TransactionID,
			PaidAt:        paidAt,
		}

		sum = sum.Add(in.Amount)
	}

	return payments, sum, nil
}

func (s *Service) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error) {
	return s.repo.ListByInvoice(ctx, invoiceID)
}
