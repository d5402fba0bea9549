package booking

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/freightdesk/internal/booking"
	"github.com/MrJamesThe3rd/freightdesk/internal/deal"
	httpdeal "github.com/MrJamesThe3rd/freightdesk/internal/http/deal"
	httpinvoice "github.com/MrJamesThe3rd/freightdesk/internal/http/invoice"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/middleware"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/respond"
	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
)

type BookingService interface {
	Create(ctx context.Context, params booking.CreateParams) (*booking.Booking, error)
	Get(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	List(ctx context.Context, filter booking.ListFilter) ([]*booking.Booking, error)
	History(ctx context.Context, bookingID uuid.UUID) ([]*booking.Track, error)
	Confirm(ctx context.Context, id uuid.UUID, note *string, actor string) (*booking.Result, error)
	SetStatus(ctx context.Context, id uuid.UUID, to booking.Status, note *string, actor string) (*booking.Result, error)
}

type InvoiceCreator interface {
	Create(ctx context.Context, src invoice.Source, params invoice.CreateParams) (*invoice.Invoice, error)
}

type DealCreator interface {
	Create(ctx context.Context, bookingID uuid.UUID) (*deal.Result, error)
}

type Handler struct {
	bookings BookingService
	invoices InvoiceCreator
	deals    DealCreator
}

func NewHandler(bookings BookingService, invoices InvoiceCreator, deals DealCreator) *Handler {
	return &Handler{bookings: bookings, invoices: invoices, deals: deals}
}

func (h *Handler) Routes(r chi.Router) {
	admin := middleware.RequireRole(middleware.RoleAdmin)

	r.With(admin).Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/tracks", h.tracks)
	r.With(admin).Post("/{id}/confirm", h.confirm)
	r.With(middleware.RequireRole(middleware.RoleAdmin, middleware.RoleContractor, middleware.RoleDriver)).
		Patch("/{id}/status", h.setStatus)
	r.With(admin).Post("/{id}/invoice", h.createInvoice)
	r.With(admin).Post("/{id}/deal", h.createDeal)
}

func actor(r *http.Request) string {
	if claims, ok := middleware.ClaimsFrom(r.Context()); ok {
		return claims.Subject
	}

	return ""
}

type createBookingRequest struct {
	CustomerID   uuid.UUID        `json:"customer_id" validate:"required"`
	ContractorID *uuid.UUID       `json:"contractor_id"`
	ServiceName  string           `json:"service_name" validate:"required"`
	Price        decimal.Decimal  `json:"price"`
	Commission   *decimal.Decimal `json:"commission"`
	Notes        *string          `json:"notes"`
	ScheduledAt  time.Time        `json:"scheduled_at" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	b, err := h.bookings.Create(r.Context(), booking.CreateParams{
		CustomerID:   req.CustomerID,
		ContractorID: req.ContractorID,
		ServiceName:  req.ServiceName,
		Price:        req.Price,
		Commission:   req.Commission,
		Notes:        req.Notes,
		ScheduledAt:  req.ScheduledAt,
		Actor:        actor(r),
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(b))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := booking.ListFilter{}
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		filter.Status = new(booking.Status(s))
	}

	for param, dst := range map[string]**uuid.UUID{
		"customer_id":   &filter.CustomerID,
		"contractor_id": &filter.ContractorID,
	} {
		if s := q.Get(param); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				respond.BadRequest(w, "invalid "+param)
				return
			}

			*dst = &id
		}
	}

	start, end, ok := respond.DateRange(w, r)
	if !ok {
		return
	}

	filter.StartDate, filter.EndDate = start, end

	bs, err := h.bookings.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(bs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	b, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(b))
}

func (h *Handler) tracks(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	ts, err := h.bookings.History(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toTrackList(ts))
}

type confirmRequest struct {
	Note *string `json:"note"`
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	var req confirmRequest
	if r.ContentLength != 0 && !respond.Decode(w, r, &req) {
		return
	}

	res, err := h.bookings.Confirm(r.Context(), id, req.Note, actor(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResultResponse(res))
}

type setStatusRequest struct {
	Status booking.Status `json:"status" validate:"required"`
	Note   *string        `json:"note"`
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	var req setStatusRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	res, err := h.bookings.SetStatus(r.Context(), id, req.Status, req.Note, actor(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResultResponse(res))
}

type createInvoiceRequest struct {
	Type        invoice.Type      `json:"type"`
	Direction   invoice.Direction `json:"direction"`
	ServiceName *string           `json:"service_name"`
	Notes       *string           `json:"notes"`
	Commission  *decimal.Decimal  `json:"commission"`
	DueDate     *time.Time        `json:"due_date"`
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	var req createInvoiceRequest
	if r.ContentLength != 0 && !respond.Decode(w, r, &req) {
		return
	}

	b, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.invoices.Create(r.Context(), b.InvoiceSource(), invoice.CreateParams{
		Type:        req.Type,
		Direction:   req.Direction,
		ServiceName: req.ServiceName,
		Notes:       req.Notes,
		Commission:  req.Commission,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, httpinvoice.ToResponse(inv))
}

func (h *Handler) createDeal(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	res, err := h.deals.Create(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}

	respond.JSON(w, status, httpdeal.ToResultResponse(res))
}
