package invoice_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
)

var fixedNow = time.Date(2026, 3, 10, 15, 4, 5, 0, time.UTC)

func newService(repo invoice.Repository) *invoice.Service {
	return invoice.NewService(repo, invoice.Options{
		TaxRate: decimal.RequireFromString("0.18"),
		DueDays: 30,
		Now:     func() time.Time { return fixedNow },
	}, zap.NewNop())
}

func source(price string) invoice.Source {
	return invoice.Source{
		BookingID:   uuid.New(),
		CustomerID:  uuid.New(),
		ServiceName: "Pallet move",
		Price:       decimal.RequireFromString(price),
	}
}

func TestComputeAmounts(t *testing.T) {
	rate := decimal.RequireFromString("0.18")

	tests := []struct {
		name      string
		typ       invoice.Type
		price     string
		wantSub   string
		wantTax   *string
		wantTotal string
	}{
		{name: "TaxInvoice", typ: invoice.TypeTaxInvoice, price: "1000", wantSub: "1000.00", wantTax: new("180.00"), wantTotal: "1180.00"},
		{name: "TaxInvoiceReceipt", typ: invoice.TypeTaxInvoiceReceipt, price: "99.99", wantSub: "99.99", wantTax: new("18.00"), wantTotal: "117.99"},
		{name: "RoundsTaxToCents", typ: invoice.TypeTaxInvoice, price: "10.05", wantSub: "10.05", wantTax: new("1.81"), wantTotal: "11.86"},
		{name: "General", typ: invoice.TypeGeneral, price: "1000", wantSub: "1000.00", wantTotal: "1000.00"},
		{name: "ReceiptOnly", typ: invoice.TypeReceiptOnly, price: "450.50", wantSub: "450.50", wantTotal: "450.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := invoice.ComputeAmounts(tt.typ, decimal.RequireFromString(tt.price), rate)

			assert.Equal(t, tt.wantSub, got.Subtotal.StringFixed(2))
			assert.Equal(t, tt.wantTotal, got.Total.StringFixed(2))

			if tt.wantTax == nil {
				assert.Nil(t, got.Tax)
				return
			}

			require.NotNil(t, got.Tax)
			assert.Equal(t, *tt.wantTax, got.Tax.StringFixed(2))
		})
	}
}

func TestInvoice_Settle(t *testing.T) {
	inv := &invoice.Invoice{
		Total:  decimal.RequireFromString("1180"),
		Paid:   decimal.RequireFromString("1000"),
		Status: invoice.StatusPending,
	}

	inv.Settle()
	assert.Equal(t, "180.00", inv.Remaining.StringFixed(2))
	assert.Equal(t, invoice.StatusPending, inv.Status)

	inv.Paid = decimal.RequireFromString("1280")
	inv.Settle()
	assert.Equal(t, "-100.00", inv.Remaining.StringFixed(2))
	assert.Equal(t, invoice.StatusPaid, inv.Status)

	inv.Total = decimal.RequireFromString("1500")
	inv.Settle()
	assert.Equal(t, "220.00", inv.Remaining.StringFixed(2))
	assert.Equal(t, invoice.StatusPending, inv.Status)
}

func TestService_EnsureInvoice_Creates(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)
	src := source("1000")

	repo.EXPECT().GetInvoiceByBooking(gomock.Any(), src.BookingID).Return(nil, invoice.ErrNotFound)
	repo.EXPECT().NextInvoiceNumber(gomock.Any()).Return(int64(123), nil)
	repo.EXPECT().
		CreateInvoice(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
			inv.ID = uuid.New()
			return nil
		})

	got, err := newService(repo).EnsureInvoice(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, "INV-000123", got.Number)
	assert.Equal(t, invoice.TypeTaxInvoice, got.Type)
	assert.Equal(t, invoice.DirectionPositive, got.Direction)
	assert.Equal(t, invoice.StatusPending, got.Status)
	assert.Equal(t, "1000.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "180.00", got.Tax.StringFixed(2))
	assert.Equal(t, "1180.00", got.Total.StringFixed(2))
	assert.Equal(t, "1180.00", got.Remaining.StringFixed(2))
	assert.True(t, got.Paid.IsZero())
	assert.Equal(t, time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC), got.DueDate)
}

func TestService_Create_SequenceFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)
	src := source("200")

	repo.EXPECT().GetInvoiceByBooking(gomock.Any(), src.BookingID).Return(nil, invoice.ErrNotFound)
	repo.EXPECT().NextInvoiceNumber(gomock.Any()).Return(int64(0), errors.New("sequence down"))
	repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil)

	got, err := newService(repo).Create(context.Background(), src, invoice.CreateParams{Type: invoice.TypeGeneral})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^INV-\d+-[A-Z2-9]{5}$`), got.Number)
	assert.Contains(t, got.Number, "INV-1773155045000-")
	assert.Nil(t, got.Tax)
	assert.Equal(t, "200.00", got.Total.StringFixed(2))
}

func TestService_Create_EnrichesExisting(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)

	src := source("1000")
	contractor := uuid.New()
	src.ContractorID = &contractor

	existing := &invoice.Invoice{
		ID:        uuid.New(),
		BookingID: src.BookingID,
		Type:      invoice.TypeGeneral,
		Direction: invoice.DirectionPositive,
	}

	repo.EXPECT().GetInvoiceByBooking(gomock.Any(), src.BookingID).Return(existing, nil)
	repo.EXPECT().
		EnrichInvoice(gomock.Any(), existing.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, p invoice.EnrichParams) (*invoice.Invoice, error) {
			assert.Equal(t, invoice.TypeTaxInvoice, p.Type)
			assert.Equal(t, "Express delivery", p.ServiceName)
			assert.Equal(t, "180.00", p.Amounts.Tax.StringFixed(2))
			assert.Equal(t, "1180.00", p.Amounts.Total.StringFixed(2))
			assert.Equal(t, &contractor, p.ContractorID)

			return &invoice.Invoice{ID: existing.ID, Total: p.Amounts.Total}, nil
		})

	got, err := newService(repo).Create(context.Background(), src, invoice.CreateParams{
		Type:        invoice.TypeTaxInvoice,
		ServiceName: new("Express delivery"),
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
}

func TestService_EnsureInvoice_KeepsExistingType(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)
	src := source("300")

	existing := &invoice.Invoice{ID: uuid.New(), Type: invoice.TypeReceiptOnly, Direction: invoice.DirectionNegative}

	repo.EXPECT().GetInvoiceByBooking(gomock.Any(), src.BookingID).Return(existing, nil)
	repo.EXPECT().
		EnrichInvoice(gomock.Any(), existing.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, p invoice.EnrichParams) (*invoice.Invoice, error) {
			assert.Equal(t, invoice.TypeReceiptOnly, p.Type)
			assert.Equal(t, invoice.DirectionNegative, p.Direction)
			assert.Nil(t, p.Amounts.Tax)

			return existing, nil
		})

	_, err := newService(repo).EnsureInvoice(context.Background(), src)
	require.NoError(t, err)
}

func TestService_Create_LostRaceReadsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)
	src := source("1000")
	winner := &invoice.Invoice{ID: uuid.New(), BookingID: src.BookingID, Type: invoice.TypeTaxInvoice, Direction: invoice.DirectionPositive}

	gomock.InOrder(
		repo.EXPECT().GetInvoiceByBooking(gomock.Any(), src.BookingID).Return(nil, invoice.ErrNotFound),
		repo.EXPECT().NextInvoiceNumber(gomock.Any()).Return(int64(7), nil),
		repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(invoice.ErrDuplicateInvoice),
		repo.EXPECT().GetInvoiceByBooking(gomock.Any(), src.BookingID).Return(winner, nil),
		repo.EXPECT().EnrichInvoice(gomock.Any(), winner.ID, gomock.Any()).Return(winner, nil),
	)

	got, err := newService(repo).EnsureInvoice(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, got.ID)
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		params  invoice.CreateParams
		wantErr error
	}{
		{name: "BadType", params: invoice.CreateParams{Type: "proforma"}, wantErr: invoice.ErrInvalidType},
		{name: "BadDirection", params: invoice.CreateParams{Direction: "sideways"}, wantErr: invoice.ErrInvalidDirection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := invoice.NewMockRepository(ctrl)

			_, err := newService(repo).Create(context.Background(), source("10"), tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_Create_LookupError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)
	src := source("10")

	repo.EXPECT().GetInvoiceByBooking(gomock.Any(), src.BookingID).Return(nil, errors.New("db down"))

	_, err := newService(repo).EnsureInvoice(context.Background(), src)
	assert.ErrorContains(t, err, "looking up invoice")
}

func TestService_MarkOverdue(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)

	repo.EXPECT().MarkOverdue(gomock.Any(), fixedNow).Return(int64(3), nil)

	n, err := newService(repo).MarkOverdue(context.Background(), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
