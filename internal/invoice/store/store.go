package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/freightdesk/internal/database"
	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
)

const bookingUniqueConstraint = "invoices_booking_id_key"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Scanner is satisfied by both *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Columns lists the invoice columns in the order Scan expects them.
const Columns = `
	id, invoice_number, booking_id, customer_id, contractor_id, service_name, notes, commission,
	subtotal_amount, tax_amount, total_amount, paid_amount, remaining_amount,
	status, invoice_type, direction, due_date, created_at, updated_at
`

// Scan reads an invoice row selected with Columns.
func Scan(s Scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var status, typ, direction string

	if err := s.Scan(
		&inv.ID, &inv.Number, &inv.BookingID, &inv.CustomerID, &inv.ContractorID,
		&inv.ServiceName, &inv.Notes, &inv.Commission,
		&inv.Subtotal, &inv.Tax, &inv.Total, &inv.Paid, &inv.Remaining,
		&status, &typ, &direction, &inv.DueDate, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(status)
	inv.Type = invoice.Type(typ)
	inv.Direction = invoice.Direction(direction)

	return &inv, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (
			invoice_number, booking_id, customer_id, contractor_id, service_name, notes, commission,
			subtotal_amount, tax_amount, total_amount, paid_amount, remaining_amount,
			status, invoice_type, direction, due_date, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		inv.Number,
		inv.BookingID,
		inv.CustomerID,
		inv.ContractorID,
		inv.ServiceName,
		inv.Notes,
		inv.Commission,
		inv.Subtotal,
		inv.Tax,
		inv.Total,
		inv.Paid,
		inv.Remaining,
		inv.Status,
		inv.Type,
		inv.Direction,
		inv.DueDate,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, bookingUniqueConstraint) {
			return invoice.ErrDuplicateInvoice
		}

		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("creating invoice: %w", database.ErrUnknownReference)
		}

		return fmt.Errorf("creating invoice: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return s.getOne(ctx, `SELECT `+Columns+` FROM invoices WHERE id = $1`, id)
}

func (s *Store) GetInvoiceByBooking(ctx context.Context, bookingID uuid.UUID) (*invoice.Invoice, error) {
	return s.getOne(ctx, `SELECT `+Columns+` FROM invoices WHERE booking_id = $1`, bookingID)
}

func (s *Store) GetInvoiceByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	return s.getOne(ctx, `SELECT `+Columns+` FROM invoices WHERE invoice_number = $1`, number)
}

func (s *Store) OldestOpenInvoice(ctx context.Context, customerID uuid.UUID) (*invoice.Invoice, error) {
	query := `
		SELECT ` + Columns + `
		FROM invoices
		WHERE customer_id = $1
			AND status <> 'paid'
			AND remaining_amount > 0
			AND direction = 'positive'
		ORDER BY due_date ASC, created_at ASC
		LIMIT 1
	`

	return s.getOne(ctx, query, customerID)
}

func (s *Store) getOne(ctx context.Context, query string, arg any) (*invoice.Invoice, error) {
	inv, err := Scan(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

// EnrichInvoice derives remaining and status from the row's own paid amount so
// a concurrent payment can't be overwritten with a stale value.
func (s *Store) EnrichInvoice(ctx context.Context, id uuid.UUID, p invoice.EnrichParams) (*invoice.Invoice, error) {
	query := `
		UPDATE invoices
		SET invoice_type     = $2,
			direction        = $3,
			service_name     = $4,
			notes            = $5,
			commission       = $6,
			subtotal_amount  = $7,
			tax_amount       = $8,
			total_amount     = $9,
			remaining_amount = $9 - paid_amount,
			status           = CASE
				WHEN $9 - paid_amount <= 0 THEN 'paid'
				WHEN status = 'paid' THEN 'pending'
				ELSE status
			END,
			contractor_id    = COALESCE(contractor_id, $10),
			due_date         = COALESCE($11, due_date),
			updated_at       = NOW()
		WHERE id = $1
		RETURNING ` + Columns

	inv, err := Scan(s.db.QueryRowContext(ctx, query,
		id,
		p.Type,
		p.Direction,
		p.ServiceName,
		p.Notes,
		p.Commission,
		p.Amounts.Subtotal,
		p.Amounts.Tax,
		p.Amounts.Total,
		p.ContractorID,
		p.DueDate,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("enriching invoice: %w", err)
	}

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + Columns + ` FROM invoices WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.CustomerID != nil {
		query += fmt.Sprintf(" AND customer_id = $%d", argIdx)

		args = append(args, *filter.CustomerID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invoices, nil
}

func (s *Store) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	query := `
		UPDATE invoices
		SET status = 'overdue', updated_at = NOW()
		WHERE status = 'pending' AND remaining_amount > 0 AND due_date < $1
	`

	res, err := s.db.ExecContext(ctx, query, asOf)
	if err != nil {
		return 0, fmt.Errorf("marking overdue: %w", err)
	}

	return res.RowsAffected()
}

func (s *Store) NextInvoiceNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&n); err != nil {
		return 0, fmt.Errorf("reading invoice sequence: %w", err)
	}

	return n, nil
}
