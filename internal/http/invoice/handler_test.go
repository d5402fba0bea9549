package invoice_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httpinvoice "github.com/MrJamesThe3rd/freightdesk/internal/http/invoice"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/middleware"
	"github.com/MrJamesThe3rd/freightdesk/internal/idempotency"
	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
	"github.com/MrJamesThe3rd/freightdesk/internal/payment"
)

type fakeInvoices struct {
	inv    *invoice.Invoice
	filter invoice.ListFilter
}

func (f *fakeInvoices) Get(_ context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	if f.inv == nil || f.inv.ID != id {
		return nil, invoice.ErrNotFound
	}

	return f.inv, nil
}

func (f *fakeInvoices) List(_ context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	f.filter = filter
	return []*invoice.Invoice{f.inv}, nil
}

type fakePayments struct {
	calls int
	apply func(invoiceID uuid.UUID, inputs []payment.Input) (*payment.Result, error)
}

func (f *fakePayments) ApplyPayments(_ context.Context, invoiceID uuid.UUID, inputs []payment.Input) (*payment.Result, error) {
	f.calls++
	return f.apply(invoiceID, inputs)
}

func (f *fakePayments) ListByInvoice(context.Context, uuid.UUID) ([]*payment.Payment, error) {
	return nil, nil
}

func newServer(invoices *fakeInvoices, payments *fakePayments, role middleware.Role) http.Handler {
	h := httpinvoice.NewHandler(invoices, payments)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithClaims(req.Context(), &middleware.Claims{Role: role})))
		})
	})
	idempotent := middleware.Idempotency(idempotency.NewMemory(), time.Hour, zap.NewNop())
	r.Route("/invoices", func(r chi.Router) { h.Routes(r, idempotent) })

	return r
}

func testInvoice() *invoice.Invoice {
	return &invoice.Invoice{
		ID:        uuid.New(),
		Number:    "INV-000001",
		Subtotal:  decimal.NewFromInt(1000),
		Tax:       new(decimal.NewFromInt(180)),
		Total:     decimal.NewFromInt(1180),
		Paid:      decimal.Zero,
		Remaining: decimal.NewFromInt(1180),
		Status:    invoice.StatusPending,
		Type:      invoice.TypeTaxInvoice,
		Direction: invoice.DirectionPositive,
	}
}

func post(srv http.Handler, path, body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if key != "" {
		req.Header.Set(middleware.IdempotencyHeader, key)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	return rec
}

func TestGetInvoice(t *testing.T) {
	inv := testInvoice()
	srv := newServer(&fakeInvoices{inv: inv}, &fakePayments{}, middleware.RoleDriver)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/invoices/"+inv.ID.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1180.00", body["total"])
	assert.Equal(t, "180.00", body["tax"])
	assert.Equal(t, "0.00", body["paid"])
}

func TestListInvoices_Filters(t *testing.T) {
	invoices := &fakeInvoices{inv: testInvoice()}
	srv := newServer(invoices, &fakePayments{}, middleware.RoleAdmin)
	customer := uuid.New()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/invoices/?status=overdue&customer_id="+customer.String()+"&start_date=2026-01-01", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, invoices.filter.Status)
	assert.Equal(t, invoice.StatusOverdue, *invoices.filter.Status)
	assert.Equal(t, customer, *invoices.filter.CustomerID)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *invoices.filter.StartDate)
	assert.Nil(t, invoices.filter.EndDate)
}

func TestListInvoices_MalformedDate(t *testing.T) {
	for _, query := range []string{"start_date=01/02/2026", "end_date=2026-13-40"} {
		t.Run(query, func(t *testing.T) {
			invoices := &fakeInvoices{inv: testInvoice()}
			srv := newServer(invoices, &fakePayments{}, middleware.RoleAdmin)

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/invoices/?"+query, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, invoice.ListFilter{}, invoices.filter)
		})
	}
}

func TestApplyPayments(t *testing.T) {
	inv := testInvoice()

	payments := &fakePayments{
		apply: func(id uuid.UUID, inputs []payment.Input) (*payment.Result, error) {
			assert.Equal(t, inv.ID, id)
			require.Len(t, inputs, 2)
			assert.Equal(t, payment.MethodCash, inputs[0].Method)
			assert.True(t, decimal.RequireFromString("1000.50").Equal(inputs[0].Amount))
			assert.Equal(t, payment.MethodBankTransfer, inputs[1].Method)
			require.NotNil(t, inputs[1].TransactionID)

			paid := *inv
			paid.Paid = decimal.RequireFromString("1200.50")
			paid.Remaining = decimal.RequireFromString("-20.50")
			paid.Status = invoice.StatusPaid

			return &payment.Result{
				Invoice: &paid,
				Payments: []*payment.Payment{
					{ID: uuid.New(), InvoiceID: id, Amount: inputs[0].Amount, Method: inputs[0].Method},
					{ID: uuid.New(), InvoiceID: id, Amount: inputs[1].Amount, Method: inputs[1].Method, TransactionID: inputs[1].TransactionID},
				},
				Outcome: payment.OutcomeOverpaid,
				Excess:  decimal.RequireFromString("20.50"),
			}, nil
		},
	}

	srv := newServer(&fakeInvoices{inv: inv}, payments, middleware.RoleAdmin)

	rec := post(srv, "/invoices/"+inv.ID.String()+"/payments",
		`{"payments":[{"amount":"1000.50","method":"cash"},{"amount":200,"method":"bank_transfer","transaction_id":"tx-1"}]}`, "")

	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "overpaid", body["outcome"])
	assert.Equal(t, "20.50", body["excess"])
	assert.Equal(t, "0.00", body["due"])
	assert.Equal(t, "-20.50", body["invoice"].(map[string]any)["remaining"])
	assert.Len(t, body["payments"], 2)
}

func TestApplyPayments_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid amount", payment.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{"no payments", payment.ErrNoPayments, http.StatusUnprocessableEntity},
		{"contractor mismatch", payment.ErrContractorMismatch, http.StatusUnprocessableEntity},
		{"invoice missing", invoice.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments := &fakePayments{
				apply: func(uuid.UUID, []payment.Input) (*payment.Result, error) { return nil, tt.err },
			}

			rec := post(newServer(&fakeInvoices{}, payments, middleware.RoleAdmin),
				"/invoices/"+uuid.NewString()+"/payments", `{"payments":[]}`, "")

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestApplyPayments_MissingMethod(t *testing.T) {
	payments := &fakePayments{}

	rec := post(newServer(&fakeInvoices{}, payments, middleware.RoleAdmin),
		"/invoices/"+uuid.NewString()+"/payments", `{"payments":[{"amount":"10"}]}`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, payments.calls)
}

func TestApplyPayments_ContractorForbidden(t *testing.T) {
	payments := &fakePayments{}

	rec := post(newServer(&fakeInvoices{}, payments, middleware.RoleContractor),
		"/invoices/"+uuid.NewString()+"/payments", `{"payments":[{"amount":"10","method":"cash"}]}`, "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, payments.calls)
}

func TestApplyPayments_IdempotencyKey(t *testing.T) {
	inv := testInvoice()

	payments := &fakePayments{
		apply: func(uuid.UUID, []payment.Input) (*payment.Result, error) {
			return &payment.Result{Invoice: inv, Outcome: payment.OutcomeUnderpaid, Due: decimal.NewFromInt(1170)}, nil
		},
	}

	srv := newServer(&fakeInvoices{inv: inv}, payments, middleware.RoleAdmin)
	path := "/invoices/" + inv.ID.String() + "/payments"
	body := `{"payments":[{"amount":"10","method":"cash"}]}`

	assert.Equal(t, http.StatusCreated, post(srv, path, body, "retry-1").Code)
	assert.Equal(t, http.StatusConflict, post(srv, path, body, "retry-1").Code)
	assert.Equal(t, 1, payments.calls)
}

func TestGetInvoice_RepeatedIdempotencyKey(t *testing.T) {
	inv := testInvoice()
	srv := newServer(&fakeInvoices{inv: inv}, &fakePayments{}, middleware.RoleAdmin)

	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/invoices/"+inv.ID.String(), nil)
		req.Header.Set(middleware.IdempotencyHeader, "k1")

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
