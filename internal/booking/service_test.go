package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/booking"
	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
)

type mocks struct {
	repo     *booking.MockRepository
	tx       *booking.MockTransitionTx
	invoices *booking.MockInvoiceEnsurer
}

func setup(t *testing.T) (*booking.Service, mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{
		repo:     booking.NewMockRepository(ctrl),
		tx:       booking.NewMockTransitionTx(ctrl),
		invoices: booking.NewMockInvoiceEnsurer(ctrl),
	}

	return booking.NewService(m.repo, m.invoices, zap.NewNop()), m
}

func newBooking(status booking.Status, contractor *uuid.UUID) *booking.Booking {
	return &booking.Booking{
		ID:           uuid.New(),
		Status:       status,
		CustomerID:   uuid.New(),
		ContractorID: contractor,
		ServiceName:  "Container haul",
		Price:        decimal.RequireFromString("1000"),
		ScheduledAt:  time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestCheckTransition(t *testing.T) {
	all := []booking.Status{
		booking.StatusPending,
		booking.StatusConfirmed,
		booking.StatusInProgress,
		booking.StatusCompleted,
		booking.StatusCancelled,
	}

	allowed := map[[2]booking.Status]bool{}
	for _, edge := range [][2]booking.Status{
		{booking.StatusPending, booking.StatusConfirmed},
		{booking.StatusPending, booking.StatusCancelled},
		{booking.StatusConfirmed, booking.StatusInProgress},
		{booking.StatusConfirmed, booking.StatusCancelled},
		{booking.StatusInProgress, booking.StatusCompleted},
		{booking.StatusInProgress, booking.StatusCancelled},
	} {
		allowed[edge] = true
	}

	for _, from := range all {
		for _, to := range all {
			err := booking.CheckTransition(from, to)

			switch {
			case from == to:
				assert.ErrorIs(t, err, booking.ErrNoOpTransition, "%s -> %s", from, to)
			case allowed[[2]booking.Status{from, to}]:
				assert.NoError(t, err, "%s -> %s", from, to)
			default:
				assert.ErrorIs(t, err, booking.ErrInvalidTransition, "%s -> %s", from, to)
			}
		}
	}
}

func TestService_Confirm(t *testing.T) {
	svc, m := setup(t)

	contractor := uuid.New()
	b := newBooking(booking.StatusPending, &contractor)
	inv := &invoice.Invoice{ID: uuid.New(), BookingID: b.ID, Total: decimal.RequireFromString("1180")}

	gomock.InOrder(
		m.repo.EXPECT().BeginTransition(gomock.Any()).Return(m.tx, nil),
		m.tx.EXPECT().LockBooking(gomock.Any(), b.ID).Return(b, nil),
		m.tx.EXPECT().UpdateStatus(gomock.Any(), b.ID, booking.StatusConfirmed).Return(nil),
		m.tx.EXPECT().AdjustContractorBalance(gomock.Any(), contractor, decimal.RequireFromString("-1000")).Return(nil),
		m.tx.EXPECT().
			AppendTrack(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, tr *booking.Track) error {
				require.NotNil(t, tr.OldStatus)
				assert.Equal(t, booking.StatusPending, *tr.OldStatus)
				assert.Equal(t, booking.StatusConfirmed, tr.NewStatus)
				require.NotNil(t, tr.Actor)
				assert.Equal(t, "admin-1", *tr.Actor)
				return nil
			}),
		m.tx.EXPECT().Commit().Return(nil),
	)
	m.tx.EXPECT().Rollback().Return(nil).AnyTimes()
	m.invoices.EXPECT().
		EnsureInvoice(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, src invoice.Source) (*invoice.Invoice, error) {
			assert.Equal(t, b.ID, src.BookingID)
			assert.Equal(t, "1000", src.Price.String())
			assert.Equal(t, &contractor, src.ContractorID)
			return inv, nil
		})

	res, err := svc.Confirm(context.Background(), b.ID, nil, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, booking.StatusConfirmed, res.Booking.Status)
	assert.Equal(t, inv, res.Invoice)
	assert.Empty(t, res.Warnings)
}

func TestService_Confirm_AlreadyConfirmed(t *testing.T) {
	svc, m := setup(t)
	b := newBooking(booking.StatusConfirmed, nil)

	m.repo.EXPECT().BeginTransition(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().LockBooking(gomock.Any(), b.ID).Return(b, nil)
	m.tx.EXPECT().Rollback().Return(nil)

	_, err := svc.Confirm(context.Background(), b.ID, nil, "")
	assert.ErrorIs(t, err, booking.ErrNoOpTransition)
}

func TestService_Confirm_NotFound(t *testing.T) {
	svc, m := setup(t)
	id := uuid.New()

	m.repo.EXPECT().BeginTransition(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().LockBooking(gomock.Any(), id).Return(nil, booking.ErrNotFound)
	m.tx.EXPECT().Rollback().Return(nil)

	_, err := svc.Confirm(context.Background(), id, nil, "")
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestService_Confirm_TrackFailureIsWarning(t *testing.T) {
	svc, m := setup(t)
	b := newBooking(booking.StatusPending, nil)

	m.repo.EXPECT().BeginTransition(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().LockBooking(gomock.Any(), b.ID).Return(b, nil)
	m.tx.EXPECT().UpdateStatus(gomock.Any(), b.ID, booking.StatusConfirmed).Return(nil)
	m.tx.EXPECT().AppendTrack(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	m.tx.EXPECT().Commit().Return(nil)
	m.tx.EXPECT().Rollback().Return(nil).AnyTimes()
	m.invoices.EXPECT().EnsureInvoice(gomock.Any(), gomock.Any()).Return(&invoice.Invoice{ID: uuid.New()}, nil)

	res, err := svc.Confirm(context.Background(), b.ID, nil, "")
	require.NoError(t, err)

	assert.Equal(t, booking.StatusConfirmed, res.Booking.Status)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "status history not recorded")
}

func TestService_Confirm_InvoiceFailureIsWarning(t *testing.T) {
	svc, m := setup(t)
	b := newBooking(booking.StatusPending, nil)

	m.repo.EXPECT().BeginTransition(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().LockBooking(gomock.Any(), b.ID).Return(b, nil)
	m.tx.EXPECT().UpdateStatus(gomock.Any(), b.ID, booking.StatusConfirmed).Return(nil)
	m.tx.EXPECT().AppendTrack(gomock.Any(), gomock.Any()).Return(nil)
	m.tx.EXPECT().Commit().Return(nil)
	m.tx.EXPECT().Rollback().Return(nil).AnyTimes()
	m.invoices.EXPECT().EnsureInvoice(gomock.Any(), gomock.Any()).Return(nil, errors.New("invoices unavailable"))

	res, err := svc.Confirm(context.Background(), b.ID, nil, "")
	require.NoError(t, err)

	assert.Equal(t, booking.StatusConfirmed, res.Booking.Status)
	assert.Nil(t, res.Invoice)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "invoice not created")
}

func TestService_Confirm_BalanceFailureAborts(t *testing.T) {
	svc, m := setup(t)

	contractor := uuid.New()
	b := newBooking(booking.StatusPending, &contractor)

	m.repo.EXPECT().BeginTransition(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().LockBooking(gomock.Any(), b.ID).Return(b, nil)
	m.tx.EXPECT().UpdateStatus(gomock.Any(), b.ID, booking.StatusConfirmed).Return(nil)
	m.tx.EXPECT().AdjustContractorBalance(gomock.Any(), contractor, gomock.Any()).Return(errors.New("db error"))
	m.tx.EXPECT().Rollback().Return(nil)

	_, err := svc.Confirm(context.Background(), b.ID, nil, "")
	assert.ErrorContains(t, err, "adjusting contractor balance")
}

func TestService_SetStatus(t *testing.T) {
	contractor := uuid.New()

	tests := []struct {
		name       string
		from       booking.Status
		to         booking.Status
		contractor *uuid.UUID
		wantDelta  *string
		wantErr    error
	}{
		{name: "Start", from: booking.StatusConfirmed, to: booking.StatusInProgress, contractor: &contractor},
		{name: "Complete", from: booking.StatusInProgress, to: booking.StatusCompleted, contractor: &contractor},
		{name: "CancelPending", from: booking.StatusPending, to: booking.StatusCancelled, contractor: &contractor},
		{name: "CancelConfirmedCreditsContractor", from: booking.StatusConfirmed, to: booking.StatusCancelled, contractor: &contractor, wantDelta: new("1000")},
		{name: "CancelInProgressCreditsContractor", from: booking.StatusInProgress, to: booking.StatusCancelled, contractor: &contractor, wantDelta: new("1000")},
		{name: "CancelCompleted", from: booking.StatusCompleted, to: booking.StatusCancelled, wantErr: booking.ErrInvalidTransition},
		{name: "SkipAhead", from: booking.StatusPending, to: booking.StatusCompleted, wantErr: booking.ErrInvalidTransition},
		{name: "Backwards", from: booking.StatusInProgress, to: booking.StatusPending, wantErr: booking.ErrInvalidTransition},
		{name: "Same", from: booking.StatusCancelled, to: booking.StatusCancelled, wantErr: booking.ErrNoOpTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := setup(t)
			b := newBooking(tt.from, tt.contractor)

			m.repo.EXPECT().BeginTransition(gomock.Any()).Return(m.tx, nil)
			m.tx.EXPECT().LockBooking(gomock.Any(), b.ID).Return(b, nil)
			m.tx.EXPECT().Rollback().Return(nil).AnyTimes()

			if tt.wantErr == nil {
				m.tx.EXPECT().UpdateStatus(gomock.Any(), b.ID, tt.to).Return(nil)
				m.tx.EXPECT().AppendTrack(gomock.Any(), gomock.Any()).Return(nil)
				m.tx.EXPECT().Commit().Return(nil)
			}

			if tt.wantDelta != nil {
				m.tx.EXPECT().AdjustContractorBalance(gomock.Any(), contractor, decimal.RequireFromString(*tt.wantDelta)).Return(nil)
			}

			note := "driver radioed in"

			res, err := svc.SetStatus(context.Background(), b.ID, tt.to, &note, "driver-7")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, res.Booking.Status)
			assert.Nil(t, res.Invoice)
		})
	}
}

func TestService_SetStatus_ConfirmRoutesThroughConfirm(t *testing.T) {
	svc, m := setup(t)
	b := newBooking(booking.StatusPending, nil)

	m.repo.EXPECT().BeginTransition(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().LockBooking(gomock.Any(), b.ID).Return(b, nil)
	m.tx.EXPECT().UpdateStatus(gomock.Any(), b.ID, booking.StatusConfirmed).Return(nil)
	m.tx.EXPECT().AppendTrack(gomock.Any(), gomock.Any()).Return(nil)
	m.tx.EXPECT().Commit().Return(nil)
	m.tx.EXPECT().Rollback().Return(nil).AnyTimes()
	m.invoices.EXPECT().EnsureInvoice(gomock.Any(), gomock.Any()).Return(&invoice.Invoice{ID: uuid.New()}, nil)

	res, err := svc.SetStatus(context.Background(), b.ID, booking.StatusConfirmed, nil, "")
	require.NoError(t, err)
	assert.NotNil(t, res.Invoice)
}

func TestService_SetStatus_UnknownStatus(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.SetStatus(context.Background(), uuid.New(), "archived", nil, "")
	assert.ErrorIs(t, err, booking.ErrInvalidStatus)
}

func TestService_Create(t *testing.T) {
	customer := uuid.New()
	scheduled := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		params  booking.CreateParams
		wantErr bool
	}{
		{
			name:   "Success",
			params: booking.CreateParams{CustomerID: customer, Price: decimal.RequireFromString("1000"), ScheduledAt: scheduled, Actor: "admin-1"},
		},
		{
			name:    "MissingCustomer",
			params:  booking.CreateParams{Price: decimal.RequireFromString("10"), ScheduledAt: scheduled},
			wantErr: true,
		},
		{
			name:    "NegativePrice",
			params:  booking.CreateParams{CustomerID: customer, Price: decimal.RequireFromString("-1"), ScheduledAt: scheduled},
			wantErr: true,
		},
		{
			name:    "SubCentPrice",
			params:  booking.CreateParams{CustomerID: customer, Price: decimal.RequireFromString("1.005"), ScheduledAt: scheduled},
			wantErr: true,
		},
		{
			name:    "MissingSchedule",
			params:  booking.CreateParams{CustomerID: customer, Price: decimal.RequireFromString("10")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := setup(t)

			if !tt.wantErr {
				m.repo.EXPECT().
					CreateBooking(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b *booking.Booking, first *booking.Track) error {
						assert.Equal(t, booking.StatusPending, b.Status)
						assert.Nil(t, first.OldStatus)
						assert.Equal(t, booking.StatusPending, first.NewStatus)
						b.ID = uuid.New()
						return nil
					})
			}

			got, err := svc.Create(context.Background(), tt.params)
			if tt.wantErr {
				assert.ErrorIs(t, err, booking.ErrInvalidBooking)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_History(t *testing.T) {
	svc, m := setup(t)
	b := newBooking(booking.StatusConfirmed, nil)
	older := time.Now().Add(-time.Minute)

	tracks := []*booking.Track{
		{ID: uuid.New(), BookingID: b.ID, NewStatus: booking.StatusConfirmed, CreatedAt: time.Now()},
		{ID: uuid.New(), BookingID: b.ID, NewStatus: booking.StatusPending, CreatedAt: older},
	}

	m.repo.EXPECT().GetBooking(gomock.Any(), b.ID).Return(b, nil)
	m.repo.EXPECT().ListTracks(gomock.Any(), b.ID).Return(tracks, nil)

	got, err := svc.History(context.Background(), b.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))
}

func TestService_History_NotFound(t *testing.T) {
	svc, m := setup(t)
	id := uuid.New()

	m.repo.EXPECT().GetBooking(gomock.Any(), id).Return(nil, booking.ErrNotFound)

	_, err := svc.History(context.Background(), id)
	assert.ErrorIs(t, err, booking.ErrNotFound)
}
