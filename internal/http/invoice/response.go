package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/freightdesk/internal/http/respond"
	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
	"github.com/MrJamesThe3rd/freightdesk/internal/payment"
)

type Response struct {
	ID           uuid.UUID         `json:"id"`
	Number       string            `json:"number"`
	BookingID    uuid.UUID         `json:"booking_id"`
	CustomerID   uuid.UUID         `json:"customer_id"`
	ContractorID *uuid.UUID        `json:"contractor_id,omitempty"`
	ServiceName  string            `json:"service_name"`
	Notes        *string           `json:"notes,omitempty"`
	Commission   *string           `json:"commission,omitempty"`
	Subtotal     string            `json:"subtotal"`
	Tax          *string           `json:"tax,omitempty"`
	Total        string            `json:"total"`
	Paid         string            `json:"paid"`
	Remaining    string            `json:"remaining"`
	Status       invoice.Status    `json:"status"`
	Type         invoice.Type      `json:"type"`
	Direction    invoice.Direction `json:"direction"`
	DueDate      time.Time         `json:"due_date"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    *time.Time        `json:"updated_at,omitempty"`
}

func ToResponse(inv *invoice.Invoice) *Response {
	if inv == nil {
		return nil
	}

	return &Response{
		ID:           inv.ID,
		Number:       inv.Number,
		BookingID:    inv.BookingID,
		CustomerID:   inv.CustomerID,
		ContractorID: inv.ContractorID,
		ServiceName:  inv.ServiceName,
		Notes:        inv.Notes,
		Commission:   respond.MoneyPtr(inv.Commission),
		Subtotal:     respond.Money(inv.Subtotal),
		Tax:          respond.MoneyPtr(inv.Tax),
		Total:        respond.Money(inv.Total),
		Paid:         respond.Money(inv.Paid),
		Remaining:    respond.Money(inv.Remaining),
		Status:       inv.Status,
		Type:         inv.Type,
		Direction:    inv.Direction,
		DueDate:      inv.DueDate,
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
	}
}

func toResponseList(invs []*invoice.Invoice) []*Response {
	resp := make([]*Response, len(invs))
	for i, inv := range invs {
		resp[i] = ToResponse(inv)
	}

	return resp
}

type paymentResponse struct {
	ID            uuid.UUID      `json:"id"`
	InvoiceID     uuid.UUID      `json:"invoice_id"`
	BookingID     uuid.UUID      `json:"booking_id"`
	CustomerID    *uuid.UUID     `json:"customer_id,omitempty"`
	ContractorID  *uuid.UUID     `json:"contractor_id,omitempty"`
	Amount        string         `json:"amount"`
	Method        payment.Method `json:"method"`
	TransactionID *string        `json:"transaction_id,omitempty"`
	PaidAt        time.Time      `json:"paid_at"`
	CreatedAt     time.Time      `json:"created_at"`
}

func toPaymentList(ps []*payment.Payment) []paymentResponse {
	resp := make([]paymentResponse, len(ps))
	for i, p := range ps {
		resp[i] = paymentResponse{
			ID:            p.ID,
			InvoiceID:     p.InvoiceID,
			BookingID:     p.BookingID,
			CustomerID:    p.CustomerID,
			ContractorID:  p.ContractorID,
			Amount:        respond.Money(p.Amount),
			Method:        p.Method,
			TransactionID: p.TransactionID,
			PaidAt:        p.PaidAt,
			CreatedAt:     p.CreatedAt,
		}
	}

	return resp
}

type applyResponse struct {
	Invoice  *Response         `json:"invoice"`
	Payments []paymentResponse `json:"payments"`
	Outcome  payment.Outcome   `json:"outcome"`
	Due      string            `json:"due"`
	Excess   string            `json:"excess"`
}
