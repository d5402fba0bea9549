package export

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/deal"
	"github.com/MrJamesThe3rd/freightdesk/internal/export"
	httpdeal "github.com/MrJamesThe3rd/freightdesk/internal/http/deal"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/respond"
)

type Service interface {
	Export(ctx context.Context, filter deal.ListFilter, outputDir string) ([]export.Item, error)
	GenerateSummary(items []export.Item) string
}

type Handler struct {
	svc Service
	log *zap.Logger
}

func NewHandler(svc Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/download", h.download)
}

type exportRequest struct {
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

func (req exportRequest) filter() deal.ListFilter {
	return deal.ListFilter{
		CustomerID: req.CustomerID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	}
}

type itemResponse struct {
	Deal *httpdeal.Response `json:"deal"`
	File string             `json:"file,omitempty"`
}

type metadataResponse struct {
	Deals   []itemResponse `json:"deals"`
	Summary string         `json:"summary"`
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	tmpDir, err := os.MkdirTemp("", "freightdesk-export-*")
	if err != nil {
		respond.Error(w, r, fmt.Errorf("creating temp dir: %w", err))
		return
	}
	defer os.RemoveAll(tmpDir)

	items, err := h.svc.Export(r.Context(), req.filter(), tmpDir)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := metadataResponse{
		Deals:   make([]itemResponse, 0, len(items)),
		Summary: h.svc.GenerateSummary(items),
	}

	for _, item := range items {
		ir := itemResponse{Deal: httpdeal.ToResponse(item.Deal)}
		if item.FilePath != "" {
			ir.File = filepath.Base(item.FilePath)
		}

		resp.Deals = append(resp.Deals, ir)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	tmpDir, err := os.MkdirTemp("", "freightdesk-export-*")
	if err != nil {
		respond.Error(w, r, fmt.Errorf("creating temp dir: %w", err))
		return
	}
	defer os.RemoveAll(tmpDir)

	items, err := h.svc.Export(r.Context(), req.filter(), tmpDir)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	summary := h.svc.GenerateSummary(items)
	if err := os.WriteFile(filepath.Join(tmpDir, export.SummaryFile), []byte(summary), 0o644); err != nil {
		respond.Error(w, r, fmt.Errorf("writing summary: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"deals_%s.zip\"", time.Now().Format("20060102")))

	if err := export.WriteZip(w, tmpDir); err != nil {
		h.log.Error("failed to create zip", zap.Error(err))
	}
}
