package matching

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/freightdesk/internal/http/respond"
	"github.com/MrJamesThe3rd/freightdesk/internal/matching"
)

type Service interface {
	Suggest(ctx context.Context, rawDescription string) (*uuid.UUID, error)
	Learn(ctx context.Context, rawPattern string, customerID uuid.UUID) (*matching.Mapping, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	RawDescription string     `json:"raw_description"`
	CustomerID     *uuid.UUID `json:"customer_id"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	rawDesc := r.URL.Query().Get("raw_description")
	if rawDesc == "" {
		respond.BadRequest(w, "raw_description query parameter is required")
		return
	}

	customerID, err := h.svc.Suggest(r.Context(), rawDesc)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, suggestResponse{
		RawDescription: rawDesc,
		CustomerID:     customerID,
	})
}

type learnRequest struct {
	RawPattern string    `json:"raw_pattern" validate:"required"`
	CustomerID uuid.UUID `json:"customer_id" validate:"required"`
}

type mappingResponse struct {
	ID         uuid.UUID `json:"id"`
	RawPattern string    `json:"raw_pattern"`
	CustomerID uuid.UUID `json:"customer_id"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	m, err := h.svc.Learn(r.Context(), req.RawPattern, req.CustomerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, mappingResponse{
		ID:         m.ID,
		RawPattern: m.RawPattern,
		CustomerID: m.CustomerID,
	})
}
