package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
	"github.com/MrJamesThe3rd/freightdesk/internal/payment"
)

var invoiceStatusFilters = []*invoice.Status{
	nil,
	new(invoice.StatusPending),
	new(invoice.StatusOverdue),
	new(invoice.StatusPaid),
}

type paymentFields struct {
	amount    string
	method    string
	reference string
}

// InvoiceModel lists invoices and records payments against them.
type InvoiceModel struct {
	CommonModel
	invoiceService *invoice.Service
	paymentService *payment.Service

	table    table.Model
	invoices []*invoice.Invoice
	form     *huh.Form
	fields   *paymentFields
	target   *invoice.Invoice

	statusFilterIdx int

	loading bool
	err     error
	status  string
}

func NewInvoiceModel(invoiceSvc *invoice.Service, paymentSvc *payment.Service) InvoiceModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Number", Width: 18},
			{Title: "Due", Width: 12},
			{Title: "Status", Width: 10},
			{Title: "Total", Width: 10},
			{Title: "Paid", Width: 10},
			{Title: "Remaining", Width: 10},
			{Title: "Service", Width: 28},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return InvoiceModel{
		invoiceService: invoiceSvc,
		paymentService: paymentSvc,
		table:          t,
		loading:        true,
	}
}

func (m InvoiceModel) Title() string { return "Invoices" }

func (m InvoiceModel) ShortHelp() string {
	if m.form != nil {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | p: record payment | o: mark overdue | s: status filter | r: refresh"
}

func (m InvoiceModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InvoiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInvoicesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.invoices = msg.invoices
		m.refreshTable()

		return m, nil

	case invoiceActionMsg:
		m.status = msg.text
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.form = nil
		m.target = nil
		m.table.Focus()

		return m, m.loadCmd()
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(invoiceStatusFilters)
			return m, m.loadCmd()
		case "o":
			return m, m.markOverdueCmd()
		case "p":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.invoices) {
				return m.openPaymentForm(m.invoices[idx])
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvoiceModel) openPaymentForm(inv *invoice.Invoice) (tea.Model, tea.Cmd) {
	m.target = inv
	m.fields = &paymentFields{
		amount: inv.Remaining.StringFixed(2),
		method: string(payment.MethodBankTransfer),
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&m.fields.amount).
				Validate(validateAmount),

			huh.NewSelect[string]().
				Key("method").
				Title("Method").
				Options(
					huh.NewOption("Bank transfer", string(payment.MethodBankTransfer)),
					huh.NewOption("Cash", string(payment.MethodCash)),
					huh.NewOption("Credit card", string(payment.MethodCreditCard)),
					huh.NewOption("Check", string(payment.MethodCheck)),
				).
				Value(&m.fields.method),

			huh.NewInput().
				Key("reference").
				Title("Transaction reference (optional)").
				Value(&m.fields.reference),
		),
	).WithWidth(45).WithShowHelp(false)

	m.table.Blur()

	return m, m.form.Init()
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a number")
	}

	if !d.IsPositive() {
		return fmt.Errorf("must be positive")
	}

	return nil
}

func (m InvoiceModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.form = nil
		m.target = nil
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

	return m, m.applyPaymentCmd(m.target, *m.fields)
}

func (m InvoiceModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	statusLabel := "All"
	if f := invoiceStatusFilters[m.statusFilterIdx]; f != nil {
		statusLabel = string(*f)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render("Filter: [s] Status: "+activeStyle(statusLabel)),
		m.table.View(),
	)

	if m.form != nil && m.target != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Payment for %s\nRemaining: %s\n\n%s",
				m.target.Number, FormatAmount(m.target.Remaining), m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *InvoiceModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.invoices))

	for _, inv := range m.invoices {
		rows = append(rows, table.Row{
			inv.Number,
			FormatDate(inv.DueDate),
			string(inv.Status),
			FormatAmount(inv.Total),
			FormatAmount(inv.Paid),
			FormatAmount(inv.Remaining),
			inv.ServiceName,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadInvoicesMsg struct {
	invoices []*invoice.Invoice
	err      error
}

func (m InvoiceModel) loadCmd() tea.Cmd {
	svc := m.invoiceService
	filter := invoice.ListFilter{Status: invoiceStatusFilters[m.statusFilterIdx]}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		invoices, err := svc.List(ctx, filter)

		return loadInvoicesMsg{invoices: invoices, err: err}
	}
}

type invoiceActionMsg struct {
	text string
	err  error
}

func (m InvoiceModel) applyPaymentCmd(inv *invoice.Invoice, f paymentFields) tea.Cmd {
	svc := m.paymentService

	return func() tea.Msg {
		amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
		if err != nil {
			return invoiceActionMsg{err: err}
		}

		in := payment.Input{Amount: amount, Method: payment.Method(f.method)}
		if ref := strings.TrimSpace(f.reference); ref != "" {
			in.TransactionID = &ref
		}

		ctx, cancel := DbCtx()
		defer cancel()

		res, err := svc.ApplyPayments(ctx, inv.ID, []payment.Input{in})
		if err != nil {
			return invoiceActionMsg{err: err}
		}

		text := fmt.Sprintf("%s: %s", inv.Number, res.Outcome)

		switch {
		case res.Due.IsPositive():
			text += ", still due " + FormatAmount(res.Due)
		case res.Excess.IsPositive():
			text += ", customer credit " + FormatAmount(res.Excess)
		}

		return invoiceActionMsg{text: text}
	}
}

func (m InvoiceModel) markOverdueCmd() tea.Cmd {
	svc := m.invoiceService

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		n, err := svc.MarkOverdue(ctx, time.Now())
		if err != nil {
			return invoiceActionMsg{err: err}
		}

		return invoiceActionMsg{text: fmt.Sprintf("%d invoice(s) marked overdue.", n)}
	}
}
