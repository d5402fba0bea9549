// Package app assembles the services shared by the API server and the ctl
// binary.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/balance"
	balancestore "github.com/MrJamesThe3rd/freightdesk/internal/balance/store"
	"github.com/MrJamesThe3rd/freightdesk/internal/booking"
	bookingstore "github.com/MrJamesThe3rd/freightdesk/internal/booking/store"
	"github.com/MrJamesThe3rd/freightdesk/internal/config"
	"github.com/MrJamesThe3rd/freightdesk/internal/deal"
	dealstore "github.com/MrJamesThe3rd/freightdesk/internal/deal/store"
	"github.com/MrJamesThe3rd/freightdesk/internal/document"
	"github.com/MrJamesThe3rd/freightdesk/internal/document/chrome"
	"github.com/MrJamesThe3rd/freightdesk/internal/document/remote"
	"github.com/MrJamesThe3rd/freightdesk/internal/document/storage"
	"github.com/MrJamesThe3rd/freightdesk/internal/export"
	"github.com/MrJamesThe3rd/freightdesk/internal/importer"
	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
	invoicestore "github.com/MrJamesThe3rd/freightdesk/internal/invoice/store"
	"github.com/MrJamesThe3rd/freightdesk/internal/matching"
	matchingstore "github.com/MrJamesThe3rd/freightdesk/internal/matching/store"
	"github.com/MrJamesThe3rd/freightdesk/internal/mirror"
	"github.com/MrJamesThe3rd/freightdesk/internal/party"
	partystore "github.com/MrJamesThe3rd/freightdesk/internal/party/store"
	"github.com/MrJamesThe3rd/freightdesk/internal/payment"
	paymentstore "github.com/MrJamesThe3rd/freightdesk/internal/payment/store"
)

const (
	PDFModeRemote   = "remote"
	PDFModeChrome   = "chrome"
	PDFModeDisabled = "disabled"
)

type App struct {
	Parties  *party.Service
	Balances *balance.Service
	Invoices *invoice.Service
	Bookings *booking.Service
	Payments *payment.Service
	Deals    *deal.Service
	Matching *matching.Service
	Importer *importer.Service
	Export   *export.Service
	Mirror   *mirror.Client

	closers []func()
}

func New(ctx context.Context, cfg *config.Config, db *sql.DB, log *zap.Logger) (*App, error) {
	a := &App{}

	renderer, err := a.renderer(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a.Mirror = mirror.New(cfg.Gateway.URL, cfg.Gateway.Token, log.Named("mirror"))
	a.closers = append(a.closers, a.Mirror.Wait)

	a.Parties = party.NewService(partystore.New(db))
	a.Balances = balance.NewService(balancestore.New(db))
	a.Invoices = invoice.NewService(invoicestore.New(db), invoice.Options{
		TaxRate: cfg.Invoice.TaxRate,
		DueDays: cfg.Invoice.DueDays,
	}, log.Named("invoice"))
	a.Bookings = booking.NewService(bookingstore.New(db), a.Invoices, log.Named("booking"))
	a.Payments = payment.NewService(paymentstore.New(db), a.Mirror, log.Named("payment"))
	a.Deals = deal.NewService(dealstore.New(db), a.Bookings, a.Parties, a.Invoices, renderer, deal.Options{
		PDFTimeout: cfg.PDF.Timeout,
		Language:   cfg.PDF.Language,
		TaxRate:    cfg.Invoice.TaxRate,
	}, log.Named("deal"))
	a.Matching = matching.NewService(matchingstore.New(db))
	a.Importer = importer.NewService(a.Invoices, a.Matching, a.Payments, log.Named("importer"))
	a.Export = export.NewService(a.Deals, cfg.PDF.DownloadToken)

	return a, nil
}

func (a *App) renderer(ctx context.Context, cfg *config.Config, log *zap.Logger) (document.Renderer, error) {
	switch cfg.PDF.Mode {
	case PDFModeRemote:
		if cfg.PDF.RemoteURL == "" {
			return nil, fmt.Errorf("PDF_REMOTE_URL is required for pdf mode %q", cfg.PDF.Mode)
		}

		return remote.New(cfg.PDF.RemoteURL), nil

	case PDFModeChrome:
		store, err := storage.New(ctx, storage.Config{
			Endpoint:      cfg.Storage.Endpoint,
			Region:        cfg.Storage.Region,
			Bucket:        cfg.Storage.Bucket,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			UsePathStyle:  cfg.Storage.UsePathStyle,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring document storage: %w", err)
		}

		r := chrome.New(cfg.PDF.ChromeURL, store, log.Named("chrome"))
		a.closers = append(a.closers, r.Close)

		return r, nil

	case PDFModeDisabled:
		log.Warn("pdf rendering disabled, deals will be created without documents")
		return document.Disabled{}, nil
	}

	return nil, fmt.Errorf("unknown pdf mode %q", cfg.PDF.Mode)
}

// Close waits for in-flight mirror deliveries and releases the renderer.
func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
}
