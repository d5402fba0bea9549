package invoice

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/freightdesk/internal/http/middleware"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/respond"
	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
	"github.com/MrJamesThe3rd/freightdesk/internal/payment"
)

type InvoiceService interface {
	Get(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error)
	List(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error)
}

type PaymentService interface {
	ApplyPayments(ctx context.Context, invoiceID uuid.UUID, inputs []payment.Input) (*payment.Result, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*payment.Payment, error)
}

type Handler struct {
	invoices InvoiceService
	payments PaymentService
}

func NewHandler(invoices InvoiceService, payments PaymentService) *Handler {
	return &Handler{invoices: invoices, payments: payments}
}

// Routes mounts the invoice endpoints. idempotent guards payment application
// only; reads may repeat a key freely.
func (h *Handler) Routes(r chi.Router, idempotent func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/payments", h.listPayments)
	r.With(idempotent, middleware.RequireRole(middleware.RoleAdmin)).Post("/{id}/payments", h.applyPayments)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := invoice.ListFilter{}
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		filter.Status = new(invoice.Status(s))
	}

	if s := q.Get("customer_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respond.BadRequest(w, "invalid customer_id")
			return
		}

		filter.CustomerID = &id
	}

	start, end, ok := respond.DateRange(w, r)
	if !ok {
		return
	}

	filter.StartDate, filter.EndDate = start, end

	invs, err := h.invoices.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(invs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	inv, err := h.invoices.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(inv))
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	ps, err := h.payments.ListByInvoice(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toPaymentList(ps))
}

type paymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Method        payment.Method  `json:"method" validate:"required"`
	CustomerID    *uuid.UUID      `json:"customer_id"`
	ContractorID  *uuid.UUID      `json:"contractor_id"`
	TransactionID *string         `json:"transaction_id"`
	PaidAt        *time.Time      `json:"paid_at"`
}

type applyPaymentsRequest struct {
	Payments []paymentRequest `json:"payments" validate:"dive"`
}

func (h *Handler) applyPayments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	var req applyPaymentsRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	inputs := make([]payment.Input, 0, len(req.Payments))
	for _, p := range req.Payments {
		inputs = append(inputs, payment.Input{
			Amount:        p.Amount,
			Method:        p.Method,
			CustomerID:    p.CustomerID,
			ContractorID:  p.ContractorID,
			TransactionID: p.TransactionID,
			PaidAt:        p.PaidAt,
		})
	}

	res, err := h.payments.ApplyPayments(r.Context(), id, inputs)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, applyResponse{
		Invoice:  ToResponse(res.Invoice),
		Payments: toPaymentList(res.Payments),
		Outcome:  res.Outcome,
		Due:      respond.Money(res.Due),
		Excess:   respond.Money(res.Excess),
	})
}
