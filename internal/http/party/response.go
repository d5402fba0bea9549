package party

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/freightdesk/internal/balance"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/respond"
	"github.com/MrJamesThe3rd/freightdesk/internal/party"
)

type customerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	TaxID     string    `json:"tax_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toCustomerResponse(c *party.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		TaxID:     c.TaxID,
		CreatedAt: c.CreatedAt,
	}
}

type contractorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

func toContractorResponse(c *party.Contractor) contractorResponse {
	return contractorResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Balance:   respond.Money(c.Balance),
		CreatedAt: c.CreatedAt,
	}
}

type customerBalanceResponse struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Paid       string    `json:"paid"`
	Invoiced   string    `json:"invoiced"`
	Unbilled   string    `json:"unbilled"`
	Balance    string    `json:"balance"`
}

func toCustomerBalance(b *balance.CustomerBalance) customerBalanceResponse {
	return customerBalanceResponse{
		CustomerID: b.CustomerID,
		Paid:       respond.Money(b.Paid),
		Invoiced:   respond.Money(b.Invoiced),
		Unbilled:   respond.Money(b.Unbilled),
		Balance:    respond.Money(b.Balance),
	}
}

type contractorBalanceResponse struct {
	ContractorID uuid.UUID `json:"contractor_id"`
	Balance      string    `json:"balance"`
}
