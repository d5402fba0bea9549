package importcsv

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/freightdesk/internal/http/respond"
	"github.com/MrJamesThe3rd/freightdesk/internal/importer"
	"github.com/MrJamesThe3rd/freightdesk/internal/payment"
)

type Service interface {
	Import(ctx context.Context, r io.Reader, apply bool) (*importer.Report, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the two-step import: POST / previews what a statement would
// settle and POST /confirm applies the same file.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.preview)
	r.Post("/confirm", h.confirm)
}

type lineResponse struct {
	Row           int                  `json:"row"`
	Date          time.Time            `json:"date"`
	Description   string               `json:"description"`
	Reference     string               `json:"reference,omitempty"`
	Amount        string               `json:"amount"`
	Credit        bool                 `json:"credit"`
	Status        importer.LineStatus  `json:"status"`
	TransactionID string               `json:"transaction_id"`
	InvoiceNumber string               `json:"invoice_number,omitempty"`
	MatchedBy     importer.MatchSource `json:"matched_by,omitempty"`
	Outcome       payment.Outcome      `json:"outcome,omitempty"`
	Error         string               `json:"error,omitempty"`
}

type reportResponse struct {
	Profile string         `json:"profile"`
	Charset string         `json:"charset"`
	Summary map[string]int `json:"summary"`
	Lines   []lineResponse `json:"lines"`
}

func toReportResponse(rep *importer.Report) reportResponse {
	resp := reportResponse{
		Profile: rep.Profile,
		Charset: rep.Charset,
		Summary: make(map[string]int),
		Lines:   make([]lineResponse, 0, len(rep.Lines)),
	}

	for _, l := range rep.Lines {
		resp.Summary[string(l.Status)]++
		resp.Lines = append(resp.Lines, lineResponse{
			Row:           l.Line.Row,
			Date:          l.Line.Date,
			Description:   l.Line.Description,
			Reference:     l.Line.Reference,
			Amount:        respond.Money(l.Line.Amount),
			Credit:        l.Line.Credit,
			Status:        l.Status,
			TransactionID: l.TransactionID,
			InvoiceNumber: l.InvoiceNumber,
			MatchedBy:     l.MatchedBy,
			Outcome:       l.Outcome,
			Error:         l.Error,
		})
	}

	return resp
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, false)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, true)
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request, apply bool) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	rep, err := h.svc.Import(r.Context(), file, apply)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	status := http.StatusOK
	if apply {
		status = http.StatusCreated
	}

	respond.JSON(w, status, toReportResponse(rep))
}
