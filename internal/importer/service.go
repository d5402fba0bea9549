package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/importer/statement"
	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
	"github.com/MrJamesThe3rd/freightdesk/internal/payment"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=importer
type Invoices interface {
	GetByNumber(ctx context.Context, number string) (*invoice.Invoice, error)
	OldestOpen(ctx context.Context, customerID uuid.UUID) (*invoice.Invoice, error)
}

type CustomerMatcher interface {
	Suggest(ctx context.Context, rawDescription string) (*uuid.UUID, error)
}

type PaymentApplier interface {
	ApplyPayments(ctx context.Context, invoiceID uuid.UUID, inputs []payment.Input) (*payment.Result, error)
}

// invoiceNumber matches both sequence numbers and the timestamped fallback.
var invoiceNumber = regexp.MustCompile(`INV-\d+(?:-[A-Z0-9]{5})?`)

type Service struct {
	parser   *statement.Parser
	invoices Invoices
	matcher  CustomerMatcher
	payments PaymentApplier
	log      *zap.Logger
}

func NewService(invoices Invoices, matcher CustomerMatcher, payments PaymentApplier, log *zap.Logger) *Service {
	return &Service{
		parser:   statement.NewParser(),
		invoices: invoices,
		matcher:  matcher,
		payments: payments,
		log:      log,
	}
}

// Import reconciles a bank statement against open invoices. Credit lines are
// matched by the invoice number they mention, or else by a learned
// description mapping to the customer's oldest open invoice. With apply set,
// each matched line is recorded as a bank transfer whose transaction id is
// the line fingerprint, so importing an overlapping statement again reports
// duplicates instead of paying twice.
func (s *Service) Import(ctx context.Context, r io.Reader, apply bool) (*Report, error) {
	st, err := s.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing statement: %w", err)
	}

	report := &Report{
		Profile: st.Profile,
		Charset: st.Charset,
		Lines:   make([]LineResult, 0, len(st.Lines)),
	}

	for _, line := range st.Lines {
		report.Lines = append(report.Lines, s.reconcile(ctx, line, apply))
	}

	s.log.Info("statement imported",
		zap.String("profile", report.Profile),
		zap.Bool("apply", apply),
		zap.Int("lines", len(report.Lines)),
		zap.Int("applied", report.Count(LineApplied)),
		zap.Int("duplicates", report.Count(LineDuplicate)),
		zap.Int("unmatched", report.Count(LineUnmatched)),
		zap.Int("failed", report.Count(LineFailed)),
	)

	return report, nil
}

func (s *Service) reconcile(ctx context.Context, line statement.Line, apply bool) LineResult {
	res := LineResult{Line: line, TransactionID: line.Fingerprint()}

	if !line.Credit {
		res.Status = LineDebit
		return res
	}

	inv, source, err := s.match(ctx, line)
	if err != nil {
		res.Status = LineFailed
		res.Error = err.Error()

		return res
	}

	if inv == nil {
		res.Status = LineUnmatched
		return res
	}

	res.InvoiceNumber = inv.Number
	res.MatchedBy = source

	if !apply {
		res.Status = LineMatched
		return res
	}

	paidAt := line.Date
	result, err := s.payments.ApplyPayments(ctx, inv.ID, []payment.Input{{
		Amount:        line.Amount,
		Method:        payment.MethodBankTransfer,
		TransactionID: &res.TransactionID,
		PaidAt:        &paidAt,
	}})

	switch {
	case errors.Is(err, payment.ErrDuplicatePayment):
		res.Status = LineDuplicate
	case err != nil:
		s.log.Warn("statement line not applied",
			zap.Int("row", line.Row),
			zap.String("invoice_number", inv.Number),
			zap.Error(err),
		)

		res.Status = LineFailed
		res.Error = err.Error()
	default:
		res.Status = LineApplied
		res.Outcome = result.Outcome
	}

	return res
}

// match returns a nil invoice when the line can't be tied to one.
func (s *Service) match(ctx context.Context, line statement.Line) (*invoice.Invoice, MatchSource, error) {
	text := strings.ToUpper(line.Description + " " + line.Reference)

	for _, number := range invoiceNumber.FindAllString(text, -1) {
		inv, err := s.invoices.GetByNumber(ctx, number)
		if err == nil {
			return inv, MatchInvoiceNumber, nil
		}

		if !errors.Is(err, invoice.ErrNotFound) {
			return nil, "", fmt.Errorf("looking up invoice %s: %w", number, err)
		}
	}

	customerID, err := s.matcher.Suggest(ctx, line.Description)
	if err != nil {
		return nil, "", fmt.Errorf("matching description: %w", err)
	}

	if customerID == nil {
		return nil, "", nil
	}

	inv, err := s.invoices.OldestOpen(ctx, *customerID)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			return nil, "", nil
		}

		return nil, "", fmt.Errorf("finding open invoice: %w", err)
	}

	return inv, MatchMapping, nil
}
