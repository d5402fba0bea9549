package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/freightdesk/internal/booking"
	"github.com/MrJamesThe3rd/freightdesk/internal/deal"
	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
)

// Actor recorded on status changes made from the terminal.
const tuiActor = "tui"

type bookingsState int

const (
	bookingsStateBrowse bookingsState = iota
	bookingsStateStatus
)

var bookingStatusFilters = []*booking.Status{
	nil,
	new(booking.StatusPending),
	new(booking.StatusConfirmed),
	new(booking.StatusInProgress),
	new(booking.StatusCompleted),
	new(booking.StatusCancelled),
}

var bookingDateFilters = []Timeframe{TimeframeAll, TimeframeToday, TimeframeThisWeek, TimeframeThisMonth}

type statusFields struct {
	status string
	note   string
}

type BookingsModel struct {
	CommonModel
	bookingService *booking.Service
	invoiceService *invoice.Service
	dealService    *deal.Service

	state    bookingsState
	table    table.Model
	bookings []*booking.Booking
	form     *huh.Form
	fields   *statusFields

	statusFilterIdx int
	dateFilterIdx   int

	loading bool
	err     error
	status  string
}

func NewBookingsModel(bookingSvc *booking.Service, invoiceSvc *invoice.Service, dealSvc *deal.Service) BookingsModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 10},
			{Title: "Scheduled", Width: 12},
			{Title: "Status", Width: 12},
			{Title: "Service", Width: 30},
			{Title: "Price", Width: 10},
			{Title: "Deal", Width: 6},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return BookingsModel{
		bookingService: bookingSvc,
		invoiceService: invoiceSvc,
		dealService:    dealSvc,
		table:          t,
		loading:        true,
	}
}

func (m BookingsModel) Title() string { return "Bookings" }

func (m BookingsModel) ShortHelp() string {
	if m.state == bookingsStateStatus {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | c: confirm | u: update status | i: invoice | g: deal | s/f: filters | r: refresh"
}

func (m BookingsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BookingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBookingsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.bookings = msg.bookings
		m.refreshTable()

		return m, nil

	case bookingActionMsg:
		m.status = msg.text
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = bookingsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == bookingsStateStatus {
		return m.updateStatusForm(msg)
	}

	return m.updateBrowse(msg)
}

func (m BookingsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(bookingStatusFilters)
			return m, m.loadCmd()
		case "f":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % len(bookingDateFilters)
			return m, m.loadCmd()
		case "c":
			if b := m.selected(); b != nil {
				return m, m.confirmCmd(b)
			}
		case "u":
			if b := m.selected(); b != nil {
				return m.openStatusForm(b)
			}
		case "i":
			if b := m.selected(); b != nil {
				return m, m.invoiceCmd(b)
			}
		case "g":
			if b := m.selected(); b != nil {
				return m, m.dealCmd(b)
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BookingsModel) selected() *booking.Booking {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.bookings) {
		return nil
	}

	return m.bookings[idx]
}

func (m BookingsModel) openStatusForm(b *booking.Booking) (tea.Model, tea.Cmd) {
	m.fields = &statusFields{status: string(b.Status)}

	options := []huh.Option[string]{
		huh.NewOption("In progress", string(booking.StatusInProgress)),
		huh.NewOption("Completed", string(booking.StatusCompleted)),
		huh.NewOption("Cancelled", string(booking.StatusCancelled)),
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("status").
				Title("New status").
				Options(options...).
				Value(&m.fields.status),

			huh.NewInput().
				Key("note").
				Title("Note (optional)").
				Value(&m.fields.note),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = bookingsStateStatus
	m.table.Blur()

	return m, m.form.Init()
}

func (m BookingsModel) updateStatusForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = bookingsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	b := m.selected()
	if b == nil {
		return m, nil
	}

	return m, m.setStatusCmd(b, booking.Status(m.fields.status), m.fields.note)
}

func (m BookingsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading bookings...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	statusLabel := "All"
	if f := bookingStatusFilters[m.statusFilterIdx]; f != nil {
		statusLabel = string(*f)
	}

	header := fmt.Sprintf(
		"Filter: [s] Status: %s | [f] Scheduled: %s",
		activeStyle(statusLabel),
		activeStyle(bookingDateFilters[m.dateFilterIdx].String()),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == bookingsStateStatus && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Update Status\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m BookingsModel) filter() booking.ListFilter {
	var f booking.ListFilter

	f.Status = bookingStatusFilters[m.statusFilterIdx]

	if tf := bookingDateFilters[m.dateFilterIdx]; tf != TimeframeAll {
		start, end := tf.Range(time.Now())
		f.StartDate = &start
		f.EndDate = &end
	}

	return f
}

func (m *BookingsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.bookings))

	for _, b := range m.bookings {
		hasDeal := ""
		if b.InvoiceDealID != nil {
			hasDeal = "yes"
		}

		rows = append(rows, table.Row{
			shortID(b.ID.String()),
			FormatDate(b.ScheduledAt),
			string(b.Status),
			b.ServiceName,
			FormatAmount(b.Price),
			hasDeal,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadBookingsMsg struct {
	bookings []*booking.Booking
	err      error
}

func (m BookingsModel) loadCmd() tea.Cmd {
	svc := m.bookingService
	filter := m.filter()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		bookings, err := svc.List(ctx, filter)

		return loadBookingsMsg{bookings: bookings, err: err}
	}
}

type bookingActionMsg struct {
	text string
	err  error
}

func warningsText(prefix string, warnings []string) string {
	if len(warnings) == 0 {
		return prefix
	}

	return prefix + " (" + strings.Join(warnings, "; ") + ")"
}

func (m BookingsModel) confirmCmd(b *booking.Booking) tea.Cmd {
	svc := m.bookingService

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := svc.Confirm(ctx, b.ID, nil, tuiActor)
		if err != nil {
			return bookingActionMsg{err: err}
		}

		text := "Booking confirmed."
		if res.Invoice != nil {
			text = fmt.Sprintf("Booking confirmed, invoice %s.", res.Invoice.Number)
		}

		return bookingActionMsg{text: warningsText(text, res.Warnings)}
	}
}

func (m BookingsModel) setStatusCmd(b *booking.Booking, to booking.Status, note string) tea.Cmd {
	svc := m.bookingService

	var notePtr *string
	if strings.TrimSpace(note) != "" {
		notePtr = &note
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := svc.SetStatus(ctx, b.ID, to, notePtr, tuiActor)
		if err != nil {
			return bookingActionMsg{err: err}
		}

		return bookingActionMsg{text: warningsText("Status set to "+string(to)+".", res.Warnings)}
	}
}

func (m BookingsModel) invoiceCmd(b *booking.Booking) tea.Cmd {
	svc := m.invoiceService

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		inv, err := svc.EnsureInvoice(ctx, b.InvoiceSource())
		if err != nil {
			return bookingActionMsg{err: err}
		}

		return bookingActionMsg{text: fmt.Sprintf("Invoice %s, total %s.", inv.Number, FormatAmount(inv.Total))}
	}
}

// dealTimeout covers document rendering on top of the database work.
const dealTimeout = 30 * time.Second

func (m BookingsModel) dealCmd(b *booking.Booking) tea.Cmd {
	svc := m.dealService

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dealTimeout)
		defer cancel()

		res, err := svc.Create(ctx, b.ID)
		if err != nil {
			return bookingActionMsg{err: err}
		}

		text := "Deal already existed."
		if res.Created {
			text = fmt.Sprintf("Deal created for %s.", res.Deal.InvoiceNumber)
		}

		return bookingActionMsg{text: warningsText(text, res.Warnings)}
	}
}
