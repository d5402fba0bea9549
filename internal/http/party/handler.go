package party

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/freightdesk/internal/balance"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/middleware"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/respond"
	"github.com/MrJamesThe3rd/freightdesk/internal/party"
)

type PartyService interface {
	CreateCustomer(ctx context.Context, params party.CustomerParams) (*party.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*party.Customer, error)
	ListCustomers(ctx context.Context) ([]*party.Customer, error)
	CreateContractor(ctx context.Context, params party.ContractorParams) (*party.Contractor, error)
	GetContractor(ctx context.Context, id uuid.UUID) (*party.Contractor, error)
	ListContractors(ctx context.Context) ([]*party.Contractor, error)
}

type BalanceService interface {
	CustomerBalance(ctx context.Context, customerID uuid.UUID) (*balance.CustomerBalance, error)
	ContractorBalance(ctx context.Context, contractorID uuid.UUID) (*balance.ContractorBalance, error)
}

type Handler struct {
	parties  PartyService
	balances BalanceService
}

func NewHandler(parties PartyService, balances BalanceService) *Handler {
	return &Handler{parties: parties, balances: balances}
}

func (h *Handler) CustomerRoutes(r chi.Router) {
	r.Use(middleware.RequireRole(middleware.RoleAdmin))

	r.Post("/", h.createCustomer)
	r.Get("/", h.listCustomers)
	r.Get("/{id}", h.getCustomer)
	r.Get("/{id}/balance", h.customerBalance)
}

// ContractorRoutes lets contractors read their own balance; everything else
// is admin only.
func (h *Handler) ContractorRoutes(r chi.Router) {
	admin := middleware.RequireRole(middleware.RoleAdmin)

	r.With(admin).Post("/", h.createContractor)
	r.With(admin).Get("/", h.listContractors)
	r.With(admin).Get("/{id}", h.getContractor)
	r.With(middleware.RequireRole(middleware.RoleAdmin, middleware.RoleContractor)).
		Get("/{id}/balance", h.contractorBalance)
}

type customerRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	c, err := h.parties.CreateCustomer(r.Context(), party.CustomerParams{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		TaxID:   req.TaxID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toCustomerResponse(c))
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	cs, err := h.parties.ListCustomers(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]customerResponse, len(cs))
	for i, c := range cs {
		resp[i] = toCustomerResponse(c)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	c, err := h.parties.GetCustomer(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toCustomerResponse(c))
}

func (h *Handler) customerBalance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	b, err := h.balances.CustomerBalance(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toCustomerBalance(b))
}

type contractorRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

func (h *Handler) createContractor(w http.ResponseWriter, r *http.Request) {
	var req contractorRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	c, err := h.parties.CreateContractor(r.Context(), party.ContractorParams{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toContractorResponse(c))
}

func (h *Handler) listContractors(w http.ResponseWriter, r *http.Request) {
	cs, err := h.parties.ListContractors(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]contractorResponse, len(cs))
	for i, c := range cs {
		resp[i] = toContractorResponse(c)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getContractor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	c, err := h.parties.GetContractor(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toContractorResponse(c))
}

func (h *Handler) contractorBalance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	claims, ok := middleware.ClaimsFrom(r.Context())
	if ok && claims.Role == middleware.RoleContractor && claims.Subject != id.String() {
		respond.Fail(w, http.StatusForbidden, respond.CodeForbidden, "contractors may only read their own balance")
		return
	}

	b, err := h.balances.ContractorBalance(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, contractorBalanceResponse{
		ContractorID: b.ContractorID,
		Balance:      respond.Money(b.Balance),
	})
}
