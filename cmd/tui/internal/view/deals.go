package view

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/freightdesk/internal/deal"
)

type dealsState int

const (
	dealsStateTimeframe dealsState = iota
	dealsStateList
)

// dealItem wraps a deal to implement list.Item.
type dealItem struct {
	deal *deal.Deal
}

func (i dealItem) Title() string {
	status := faintStyle.Render(fmt.Sprintf("[%s]", i.deal.Status))

	return fmt.Sprintf("%s  %s  %s  %s",
		FormatDate(i.deal.CreatedAt), i.deal.InvoiceNumber, FormatAmount(i.deal.Total), status)
}

func (i dealItem) Description() string {
	if i.deal.PDFURL == nil {
		return "No document"
	}

	return *i.deal.PDFURL
}

func (i dealItem) FilterValue() string {
	return i.deal.InvoiceNumber
}

type DealsModel struct {
	CommonModel
	dealService *deal.Service

	state           dealsState
	timeframePicker TimeframePicker
	list            list.Model
	filter          deal.ListFilter

	loading bool
	status  string
}

func NewDealsModel(svc *deal.Service) DealsModel {
	l := list.New([]list.Item{}, dealItemDelegate{}, 0, 0)
	l.Title = "Deals"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return DealsModel{
		dealService:     svc,
		timeframePicker: NewTimeframePicker(TimeframeThisWeek, TimeframeThisMonth, TimeframeLastMonth, TimeframeAll),
		list:            l,
	}
}

func (m DealsModel) Title() string { return "Deals" }

func (m DealsModel) ShortHelp() string {
	if m.state == dealsStateTimeframe {
		return "Esc: back | Enter: select"
	}

	return "Esc: back | p: regenerate document | /: filter"
}

func (m DealsModel) Init() tea.Cmd {
	return nil
}

func (m DealsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.filter.StartDate, m.filter.EndDate = msg.Bounds()
		m.loading = true
		m.state = dealsStateList

		return m, m.loadCmd()

	case loadDealsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		items := make([]list.Item, len(msg.deals))
		for i, d := range msg.deals {
			items[i] = dealItem{deal: d}
		}

		m.list.SetItems(items)

		if len(msg.deals) == 0 {
			m.status = "No deals found."
		}

		return m, nil

	case regenerateResultMsg:
		m.status = "Document regenerated."
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	if m.state == dealsStateTimeframe {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)

		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "p":
			if item, ok := m.list.SelectedItem().(dealItem); ok {
				m.status = "Rendering " + item.deal.InvoiceNumber + "..."
				return m, m.regenerateCmd(item.deal)
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m DealsModel) View() string {
	if m.state == dealsStateTimeframe {
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading deals...")
	}

	statusLine := ""
	if m.status != "" {
		statusLine = faintStyle.Render(m.status) + "\n"
	}

	return lipgloss.NewStyle().Padding(1).Render(statusLine + m.list.View())
}

// Messages

type loadDealsMsg struct {
	deals []*deal.Deal
	err   error
}

func (m DealsModel) loadCmd() tea.Cmd {
	svc := m.dealService
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		deals, err := svc.List(ctx, filter)

		return loadDealsMsg{deals: deals, err: err}
	}
}

type regenerateResultMsg struct {
	err error
}

func (m DealsModel) regenerateCmd(d *deal.Deal) tea.Cmd {
	svc := m.dealService

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dealTimeout)
		defer cancel()

		_, err := svc.RegeneratePDF(ctx, d.ID)

		return regenerateResultMsg{err: err}
	}
}

// dealItemDelegate renders items in the list.
type dealItemDelegate struct{}

func (d dealItemDelegate) Height() int                             { return 2 }
func (d dealItemDelegate) Spacing() int                            { return 0 }
func (d dealItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d dealItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(dealItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintf(w, "    %s\n", faintStyle.Render(i.Description()))
}
