package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/freightdesk/internal/booking"
	httpinvoice "github.com/MrJamesThe3rd/freightdesk/internal/http/invoice"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/respond"
)

type bookingResponse struct {
	ID            uuid.UUID      `json:"id"`
	Status        booking.Status `json:"status"`
	CustomerID    uuid.UUID      `json:"customer_id"`
	ContractorID  *uuid.UUID     `json:"contractor_id,omitempty"`
	ServiceName   string         `json:"service_name"`
	Price         string         `json:"price"`
	Commission    *string        `json:"commission,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
	ScheduledAt   time.Time      `json:"scheduled_at"`
	InvoiceDealID *uuid.UUID     `json:"invoice_deal_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
}

func toResponse(b *booking.Booking) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		Status:        b.Status,
		CustomerID:    b.CustomerID,
		ContractorID:  b.ContractorID,
		ServiceName:   b.ServiceName,
		Price:         respond.Money(b.Price),
		Commission:    respond.MoneyPtr(b.Commission),
		Notes:         b.Notes,
		ScheduledAt:   b.ScheduledAt,
		InvoiceDealID: b.InvoiceDealID,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func toResponseList(bs []*booking.Booking) []bookingResponse {
	resp := make([]bookingResponse, len(bs))
	for i, b := range bs {
		resp[i] = toResponse(b)
	}

	return resp
}

type trackResponse struct {
	ID        uuid.UUID       `json:"id"`
	OldStatus *booking.Status `json:"old_status,omitempty"`
	NewStatus booking.Status  `json:"new_status"`
	Note      *string         `json:"note,omitempty"`
	Actor     *string         `json:"actor,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func toTrackList(ts []*booking.Track) []trackResponse {
	resp := make([]trackResponse, len(ts))
	for i, t := range ts {
		resp[i] = trackResponse{
			ID:        t.ID,
			OldStatus: t.OldStatus,
			NewStatus: t.NewStatus,
			Note:      t.Note,
			Actor:     t.Actor,
			CreatedAt: t.CreatedAt,
		}
	}

	return resp
}

type resultResponse struct {
	Booking  bookingResponse       `json:"booking"`
	Invoice  *httpinvoice.Response `json:"invoice,omitempty"`
	Warnings []string              `json:"warnings"`
}

func toResultResponse(res *booking.Result) resultResponse {
	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return resultResponse{
		Booking:  toResponse(res.Booking),
		Invoice:  httpinvoice.ToResponse(res.Invoice),
		Warnings: warnings,
	}
}
