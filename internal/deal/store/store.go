package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/freightdesk/internal/database"
	"github.com/MrJamesThe3rd/freightdesk/internal/deal"
	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
)

const uniqueBooking = "invoice_deals_booking_id_key"

const dealColumns = `
	d.id, d.booking_id, d.invoice_id, d.invoice_number, d.total_amount, d.paid_amount,
	d.remaining_amount, d.status, d.pdf_url, d.created_at, d.updated_at
`

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDeal(s scanner) (*deal.Deal, error) {
	var d deal.Deal

	var status string

	if err := s.Scan(
		&d.ID, &d.BookingID, &d.InvoiceID, &d.InvoiceNumber, &d.Total, &d.Paid,
		&d.Remaining, &status, &d.PDFURL, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}

	d.Status = invoice.Status(status)

	return &d, nil
}

func (s *Store) CreateDeal(ctx context.Context, d *deal.Deal) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO invoice_deals (booking_id, invoice_id, invoice_number, total_amount, paid_amount, remaining_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		d.BookingID,
		d.InvoiceID,
		d.InvoiceNumber,
		d.Total,
		d.Paid,
		d.Remaining,
		d.Status,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, uniqueBooking) {
			return deal.ErrDuplicateDeal
		}

		return fmt.Errorf("inserting deal: %w", err)
	}

	res, err := dbTx.ExecContext(ctx,
		`UPDATE bookings SET invoice_deal_id = $1, updated_at = NOW() WHERE id = $2 AND invoice_deal_id IS NULL`,
		d.ID, d.BookingID,
	)
	if err != nil {
		return fmt.Errorf("linking deal to booking: %w", err)
	}

	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("linking deal to booking: %w", err)
	} else if n == 0 {
		return deal.ErrDuplicateDeal
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetDeal(ctx context.Context, id uuid.UUID) (*deal.Deal, error) {
	return s.getBy(ctx, "d.id", id)
}

func (s *Store) GetDealByBooking(ctx context.Context, bookingID uuid.UUID) (*deal.Deal, error) {
	return s.getBy(ctx, "d.booking_id", bookingID)
}

func (s *Store) getBy(ctx context.Context, column string, value uuid.UUID) (*deal.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM invoice_deals d WHERE ` + column + ` = $1`

	d, err := scanDeal(s.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, deal.ErrNotFound
		}

		return nil, fmt.Errorf("getting deal: %w", err)
	}

	return d, nil
}

func (s *Store) ListDeals(ctx context.Context, filter deal.ListFilter) ([]*deal.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM invoice_deals d JOIN bookings b ON b.id = d.booking_id WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.CustomerID != nil {
		query += fmt.Sprintf(" AND b.customer_id = $%d", argIdx)

		args = append(args, *filter.CustomerID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND d.created_at >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND d.created_at <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY d.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing deals: %w", err)
	}
	defer rows.Close()

	var deals []*deal.Deal

	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning deal: %w", err)
		}

		deals = append(deals, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deal rows: %w", err)
	}

	return deals, nil
}

func (s *Store) SetPDFURL(ctx context.Context, id uuid.UUID, url string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE invoice_deals SET pdf_url = $2, updated_at = NOW() WHERE id = $1`,
		id, url,
	)
	if err != nil {
		return fmt.Errorf("updating pdf url: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating pdf url: %w", err)
	}

	if n == 0 {
		return deal.ErrNotFound
	}

	return nil
}
