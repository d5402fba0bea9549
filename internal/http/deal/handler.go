package deal

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/freightdesk/internal/deal"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/middleware"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/respond"
)

type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*deal.Deal, error)
	List(ctx context.Context, filter deal.ListFilter) ([]*deal.Deal, error)
	RegeneratePDF(ctx context.Context, dealID uuid.UUID) (*deal.Deal, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.With(middleware.RequireRole(middleware.RoleAdmin)).Post("/{id}/pdf", h.regeneratePDF)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := deal.ListFilter{}
	q := r.URL.Query()

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

	deals, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]*Response, len(deals))
	for i, d := range deals {
		resp[i] = ToResponse(d)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(d))
}

func (h *Handler) regeneratePDF(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	d, err := h.svc.RegeneratePDF(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(d))
}
