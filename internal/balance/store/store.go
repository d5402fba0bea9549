package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/freightdesk/internal/balance"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CustomerTotals(ctx context.Context, customerID uuid.UUID) (*balance.CustomerTotals, error) {
	query := `
		SELECT
			EXISTS (SELECT 1 FROM customers WHERE id = $1),
			COALESCE((
				SELECT SUM(p.amount)
				FROM payments p
				JOIN invoices i ON i.id = p.invoice_id
				WHERE COALESCE(p.customer_id, i.customer_id) = $1
			), 0),
			COALESCE((
				SELECT SUM(CASE WHEN i.direction = 'negative' THEN -i.total_amount ELSE i.total_amount END)
				FROM invoices i
				JOIN bookings b ON b.id = i.booking_id
				WHERE i.customer_id = $1 AND b.status <> 'cancelled'
			), 0),
			COALESCE((
				SELECT SUM(b.price)
				FROM bookings b
				WHERE b.customer_id = $1
					AND b.status IN ('confirmed', 'in_progress', 'completed')
					AND NOT EXISTS (SELECT 1 FROM invoices i WHERE i.booking_id = b.id)
			), 0)
	`

	var (
		exists bool
		totals balance.CustomerTotals
	)

	err := s.db.QueryRowContext(ctx, query, customerID).
		Scan(&exists, &totals.Paid, &totals.Invoiced, &totals.Unbilled)
	if err != nil {
		return nil, fmt.Errorf("summing customer totals: %w", err)
	}

	if !exists {
		return nil, balance.ErrNotFound
	}

	return &totals, nil
}

func (s *Store) ContractorBalance(ctx context.Context, contractorID uuid.UUID) (*balance.ContractorBalance, error) {
	b := balance.ContractorBalance{ContractorID: contractorID}

	err := s.db.QueryRowContext(ctx, `SELECT balance FROM contractors WHERE id = $1`, contractorID).Scan(&b.Balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, balance.ErrNotFound
		}

		return nil, fmt.Errorf("getting contractor balance: %w", err)
	}

	return &b, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Adjuster applies contractor balance deltas on whatever connection or
// transaction it wraps.
type Adjuster struct {
	db execer
}

func NewAdjuster(db execer) *Adjuster {
	return &Adjuster{db: db}
}

func (a *Adjuster) AdjustContractorBalance(ctx context.Context, contractorID uuid.UUID, delta decimal.Decimal) error {
	res, err := a.db.ExecContext(ctx,
		`UPDATE contractors SET balance = balance + $1 WHERE id = $2`,
		delta, contractorID,
	)
	if err != nil {
		return fmt.Errorf("adjusting contractor balance: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjusting contractor balance: %w", err)
	}

	if n == 0 {
		return balance.ErrNotFound
	}

	return nil
}
