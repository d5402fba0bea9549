package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	balancestore "github.com/MrJamesThe3rd/freightdesk/internal/balance/store"
	"github.com/MrJamesThe3rd/freightdesk/internal/booking"
	"github.com/MrJamesThe3rd/freightdesk/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const bookingColumns = `
	id, status, customer_id, contractor_id, service_name, price, commission, notes,
	scheduled_at, invoice_deal_id, created_at, updated_at
`

func scanBooking(s scanner) (*booking.Booking, error) {
	var b booking.Booking

	var status string

	if err := s.Scan(
		&b.ID, &status, &b.CustomerID, &b.ContractorID, &b.ServiceName, &b.Price, &b.Commission, &b.Notes,
		&b.ScheduledAt, &b.InvoiceDealID, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	b.Status = booking.Status(status)

	return &b, nil
}

func scanTrack(s scanner) (*booking.Track, error) {
	var t booking.Track

	var oldStatus sql.NullString

	var newStatus string

	if err := s.Scan(&t.ID, &t.BookingID, &oldStatus, &newStatus, &t.Note, &t.Actor, &t.CreatedAt); err != nil {
		return nil, err
	}

	if oldStatus.Valid {
		t.OldStatus = new(booking.Status(oldStatus.String))
	}

	t.NewStatus = booking.Status(newStatus)

	return &t, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertTrack stamps the track strictly after the booking's latest track so
// history order never depends on clock resolution. Callers hold the booking
// row lock.
func insertTrack(ctx context.Context, q querier, t *booking.Track) error {
	query := `
		INSERT INTO booking_tracks (booking_id, old_status, new_status, note, actor, created_at)
		SELECT $1, $2, $3, $4, $5,
			GREATEST(clock_timestamp(), MAX(created_at) + INTERVAL '1 microsecond')
		FROM booking_tracks
		WHERE booking_id = $1
		RETURNING id, created_at
	`

	var oldStatus *string
	if t.OldStatus != nil {
		oldStatus = new(string(*t.OldStatus))
	}

	return q.QueryRowContext(ctx, query, t.BookingID, oldStatus, t.NewStatus, t.Note, t.Actor).
		Scan(&t.ID, &t.CreatedAt)
}

func (s *Store) CreateBooking(ctx context.Context, b *booking.Booking, first *booking.Track) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO bookings (status, customer_id, contractor_id, service_name, price, commission, notes, scheduled_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		b.Status,
		b.CustomerID,
		b.ContractorID,
		b.ServiceName,
		b.Price,
		b.Commission,
		b.Notes,
		b.ScheduledAt,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("creating booking: %w", database.ErrUnknownReference)
		}

		return fmt.Errorf("creating booking: %w", err)
	}

	first.BookingID = b.ID
	if err := insertTrack(ctx, dbTx, first); err != nil {
		return fmt.Errorf("creating booking track: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, err := scanBooking(s.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrNotFound
		}

		return nil, fmt.Errorf("getting booking: %w", err)
	}

	return b, nil
}

func (s *Store) ListBookings(ctx context.Context, filter booking.ListFilter) ([]*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE TRUE`

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

	if filter.ContractorID != nil {
		query += fmt.Sprintf(" AND contractor_id = $%d", argIdx)

		args = append(args, *filter.ContractorID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND scheduled_at >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND scheduled_at <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY scheduled_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*booking.Booking

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}

		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating booking rows: %w", err)
	}

	return bookings, nil
}

func (s *Store) ListTracks(ctx context.Context, bookingID uuid.UUID) ([]*booking.Track, error) {
	query := `
		SELECT id, booking_id, old_status, new_status, note, actor, created_at
		FROM booking_tracks
		WHERE booking_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("listing tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*booking.Track

	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning track: %w", err)
		}

		tracks = append(tracks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating track rows: %w", err)
	}

	return tracks, nil
}

type transitionTx struct {
	tx  *sql.Tx
	adj *balancestore.Adjuster
}

func (s *Store) BeginTransition(ctx context.Context) (booking.TransitionTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transition tx: %w", err)
	}

	return &transitionTx{tx: dbTx, adj: balancestore.NewAdjuster(dbTx)}, nil
}

func (ttx *transitionTx) Commit() error   { return ttx.tx.Commit() }
func (ttx *transitionTx) Rollback() error { return ttx.tx.Rollback() }

func (ttx *transitionTx) LockBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	b, err := scanBooking(ttx.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrNotFound
		}

		return nil, fmt.Errorf("locking booking: %w", err)
	}

	return b, nil
}

func (ttx *transitionTx) UpdateStatus(ctx context.Context, id uuid.UUID, status booking.Status) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`

	if _, err := ttx.tx.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	return nil
}

func (ttx *transitionTx) AppendTrack(ctx context.Context, t *booking.Track) error {
	if _, err := ttx.tx.ExecContext(ctx, "SAVEPOINT booking_track"); err != nil {
		return fmt.Errorf("creating savepoint: %w", err)
	}

	if err := insertTrack(ctx, ttx.tx, t); err != nil {
		if _, rbErr := ttx.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT booking_track"); rbErr != nil {
			return errors.Join(fmt.Errorf("appending track: %w", err), rbErr)
		}

		return fmt.Errorf("appending track: %w", err)
	}

	if _, err := ttx.tx.ExecContext(ctx, "RELEASE SAVEPOINT booking_track"); err != nil {
		return fmt.Errorf("releasing savepoint: %w", err)
	}

	return nil
}

func (ttx *transitionTx) AdjustContractorBalance(ctx context.Context, contractorID uuid.UUID, delta decimal.Decimal) error {
	return ttx.adj.AdjustContractorBalance(ctx, contractorID, delta)
}
