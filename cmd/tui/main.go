package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/freightdesk/internal/app"
	"github.com/MrJamesThe3rd/freightdesk/internal/config"
	"github.com/MrJamesThe3rd/freightdesk/internal/database"
	"github.com/MrJamesThe3rd/freightdesk/internal/logger"
)

type model struct {
	services *app.App

	currentView View

	importView   view.ImportModel
	reviewView   view.ReviewModel
	bookingsView view.BookingsModel
	invoiceView  view.InvoiceModel
	dealsView    view.DealsModel
	exportView   view.ExportModel
}

type View int

const (
	ViewMenu View = iota
	ViewImport
	ViewReview
	ViewBookings
	ViewInvoice
	ViewDeals
	ViewExport
)

func initialModel(services *app.App) model {
	return model{
		services:    services,
		currentView: ViewMenu,
		importView:  view.NewImportModel(services.Importer),
		exportView:  view.NewExportModel(services.Export),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	case view.ReviewUnmatchedMsg:
		m.currentView = ViewReview
		m.reviewView = view.NewReviewModel(m.services.Parties, m.services.Matching, msg.Lines)

		return m, m.reviewView.Init()
	}

	switch m.currentView {
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewBookings:
		var newModel tea.Model
		newModel, cmd = m.bookingsView.Update(msg)
		m.bookingsView = newModel.(view.BookingsModel)
	case ViewInvoice:
		var newModel tea.Model
		newModel, cmd = m.invoiceView.Update(msg)
		m.invoiceView = newModel.(view.InvoiceModel)
	case ViewDeals:
		var newModel tea.Model
		newModel, cmd = m.dealsView.Update(msg)
		m.dealsView = newModel.(view.DealsModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.services

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.currentView = ViewImport
		m.importView = view.NewImportModel(s.Importer)

		return m, m.importView.Init()
	case "2":
		m.currentView = ViewBookings
		m.bookingsView = view.NewBookingsModel(s.Bookings, s.Invoices, s.Deals)

		return m, m.bookingsView.Init()
	case "3":
		m.currentView = ViewInvoice
		m.invoiceView = view.NewInvoiceModel(s.Invoices, s.Payments)

		return m, m.invoiceView.Init()
	case "4":
		m.currentView = ViewDeals
		m.dealsView = view.NewDealsModel(s.Deals)

		return m, m.dealsView.Init()
	case "5":
		m.currentView = ViewExport
		m.exportView = view.NewExportModel(s.Export)

		return m, m.exportView.Init()
	}

	return m, nil
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Freightdesk\n\n" +
				"1. Import Bank Statement\n" +
				"2. Bookings\n" +
				"3. Invoices & Payments\n" +
				"4. Deals\n" +
				"5. Export Deals\n\n" +
				"q. Quit",
		)
	case ViewImport:
		return m.importView.View()
	case ViewReview:
		return m.reviewView.View()
	case ViewBookings:
		return m.bookingsView.View()
	case ViewInvoice:
		return m.invoiceView.View()
	case ViewDeals:
		return m.dealsView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file unless one is
	// configured explicitly.
	output := cfg.Log.Output
	if output == "stdout" || output == "stderr" {
		output = "freightdesk-tui.log"
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: "json", Output: output})
	defer func() { _ = log.Sync() }()

	zap.ReplaceGlobals(log)

	ctx := context.Background()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	services, err := app.New(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	defer services.Close()

	if _, err := tea.NewProgram(initialModel(services), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}
