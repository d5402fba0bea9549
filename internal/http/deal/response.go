package deal

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/freightdesk/internal/deal"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/respond"
	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
)

type Response struct {
	ID            uuid.UUID      `json:"id"`
	BookingID     uuid.UUID      `json:"booking_id"`
	InvoiceID     uuid.UUID      `json:"invoice_id"`
	InvoiceNumber string         `json:"invoice_number"`
	Total         string         `json:"total"`
	Paid          string         `json:"paid"`
	Remaining     string         `json:"remaining"`
	Status        invoice.Status `json:"status"`
	PDFURL        *string        `json:"pdf_url,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
}

func ToResponse(d *deal.Deal) *Response {
	return &Response{
		ID:            d.ID,
		BookingID:     d.BookingID,
		InvoiceID:     d.InvoiceID,
		InvoiceNumber: d.InvoiceNumber,
		Total:         respond.Money(d.Total),
		Paid:          respond.Money(d.Paid),
		Remaining:     respond.Money(d.Remaining),
		Status:        d.Status,
		PDFURL:        d.PDFURL,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// ResultResponse is returned by deal creation.
type ResultResponse struct {
	Deal     *Response `json:"deal"`
	Created  bool      `json:"created"`
	Warnings []string  `json:"warnings"`
}

func ToResultResponse(res *deal.Result) ResultResponse {
	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return ResultResponse{Deal: ToResponse(res.Deal), Created: res.Created, Warnings: warnings}
}
