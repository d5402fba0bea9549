package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	balancestore "github.com/MrJamesThe3rd/freightdesk/internal/balance/store"
	"github.com/MrJamesThe3rd/freightdesk/internal/database"
	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
	invoicestore "github.com/MrJamesThe3rd/freightdesk/internal/invoice/store"
	"github.com/MrJamesThe3rd/freightdesk/internal/payment"
)

const transactionUniqueIndex = "payments_method_transaction_id_key"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const paymentColumns = `
	id, invoice_id, booking_id, customer_id, contractor_id, amount, method, transaction_id, paid_at, created_at
`

func scanPayment(s invoicestore.Scanner) (*payment.Payment, error) {
	var p payment.Payment

	var method string

	if err := s.Scan(
		&p.ID, &p.InvoiceID, &p.BookingID, &p.CustomerID, &p.ContractorID,
		&p.Amount, &method, &p.TransactionID, &p.PaidAt, &p.CreatedAt,
	); err != nil {
		return nil, err
	}

	p.Method = payment.Method(method)

	return &p, nil
}

func (s *Store) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE invoice_id = $1 ORDER BY paid_at ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []*payment.Payment

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return payments, nil
}

type applyTx struct {
	tx  *sql.Tx
	adj *balancestore.Adjuster
}

func (s *Store) BeginApply(ctx context.Context) (payment.ApplyTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning apply tx: %w", err)
	}

	return &applyTx{tx: dbTx, adj: balancestore.NewAdjuster(dbTx)}, nil
}

func (atx *applyTx) Commit() error   { return atx.tx.Commit() }
func (atx *applyTx) Rollback() error { return atx.tx.Rollback() }

func (atx *applyTx) LockInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + invoicestore.Columns + ` FROM invoices WHERE id = $1 FOR UPDATE`

	inv, err := invoicestore.Scan(atx.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("locking invoice: %w", err)
	}

	return inv, nil
}

func (atx *applyTx) CreatePayments(ctx context.Context, payments []*payment.Payment) error {
	query := `
		INSERT INTO payments (invoice_id, booking_id, customer_id, contractor_id, amount, method, transaction_id, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	for _, p := range payments {
		err := atx.tx.QueryRowContext(ctx, query,
			p.InvoiceID,
			p.BookingID,
			p.CustomerID,
			p.ContractorID,
			p.Amount,
			p.Method,
			p.TransactionID,
			p.PaidAt,
		).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			if database.IsUniqueViolation(err, transactionUniqueIndex) {
				return payment.ErrDuplicatePayment
			}

			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("creating payment: %w", database.ErrUnknownReference)
			}

			return fmt.Errorf("creating payment: %w", err)
		}
	}

	return nil
}

func (atx *applyTx) UpdateInvoiceTotals(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices
		SET paid_amount = $2, remaining_amount = $3, status = $4, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := atx.tx.ExecContext(ctx, query, inv.ID, inv.Paid, inv.Remaining, inv.Status); err != nil {
		return fmt.Errorf("updating invoice totals: %w", err)
	}

	return nil
}

func (atx *applyTx) AdjustContractorBalance(ctx context.Context, contractorID uuid.UUID, delta decimal.Decimal) error {
	return atx.adj.AdjustContractorBalance(ctx, contractorID, delta)
}
