package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/freightdesk/internal/importer/statement"
	"github.com/MrJamesThe3rd/freightdesk/internal/matching"
	"github.com/MrJamesThe3rd/freightdesk/internal/party"
)

const skipLine = "skip"

// mappingFields lives on the heap so the form keeps writing to it after the
// model is copied.
type mappingFields struct {
	pattern  string
	customer string
}

// ReviewModel walks through unmatched statement lines and teaches the
// matcher which customer each description belongs to.
type ReviewModel struct {
	CommonModel
	partyService    *party.Service
	matchingService *matching.Service

	queue   []statement.Line
	current *statement.Line
	total   int

	customers []*party.Customer
	form      *huh.Form

	fields *mappingFields

	learned int
	loading bool
	status  string
}

func NewReviewModel(partySvc *party.Service, matchSvc *matching.Service, lines []statement.Line) ReviewModel {
	return ReviewModel{
		partyService:    partySvc,
		matchingService: matchSvc,
		queue:           lines,
		total:           len(lines),
		loading:         true,
	}
}

func (m ReviewModel) Title() string { return "Map Unmatched Lines" }

func (m ReviewModel) ShortHelp() string { return "Enter: save & next | Esc: back" }

func (m ReviewModel) Init() tea.Cmd {
	return m.loadCustomersCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadCustomersMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading customers: %v", msg.err)
			return m, nil
		}

		m.customers = msg.customers

		return m.next()

	case learnResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving mapping: %v", msg.err)
		} else if msg.learned {
			m.learned++
		}

		return m.next()

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.learnCmd()
}

func (m ReviewModel) next() (tea.Model, tea.Cmd) {
	if len(m.queue) == 0 {
		m.current = nil
		m.form = nil
		m.status = fmt.Sprintf("All done! %d mapping(s) learned.", m.learned)

		return m, nil
	}

	if len(m.customers) == 0 {
		m.status = "No customers to map to."
		return m, nil
	}

	line := m.queue[0]
	m.queue = m.queue[1:]
	m.current = &line

	m.fields = &mappingFields{
		pattern:  strings.TrimSpace(line.Description),
		customer: skipLine,
	}

	options := make([]huh.Option[string], 0, len(m.customers)+1)
	options = append(options, huh.NewOption("Skip this line", skipLine))

	for _, c := range m.customers {
		options = append(options, huh.NewOption(c.Name, c.ID.String()))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("pattern").
				Title("Pattern").
				Description("Future lines containing this text are matched to the customer").
				Value(&m.fields.pattern),

			huh.NewSelect[string]().
				Key("customer").
				Title("Customer").
				Options(options...).
				Height(8).
				Value(&m.fields.customer),
		),
	).WithWidth(60).WithShowHelp(false)

	return m, m.form.Init()
}

func (m ReviewModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.loading {
		return style.Render("Loading customers...")
	}

	if m.current == nil {
		return style.Render(m.status + "\n\n(Esc to back)")
	}

	info := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(fmt.Sprintf("Date: %s  |  Amount: %s\nRaw: %s",
			FormatDate(m.current.Date),
			FormatAmount(m.current.Amount),
			m.current.Description,
		))

	progress := fmt.Sprintf("Line %d/%d", m.total-len(m.queue), m.total)

	content := lipgloss.JoinVertical(lipgloss.Left, progress, "", info, "", m.form.View())
	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return style.Render(content)
}

// Messages

type loadCustomersMsg struct {
	customers []*party.Customer
	err       error
}

func (m ReviewModel) loadCustomersCmd() tea.Cmd {
	svc := m.partyService

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		customers, err := svc.ListCustomers(ctx)

		return loadCustomersMsg{customers: customers, err: err}
	}
}

type learnResultMsg struct {
	learned bool
	err     error
}

func (m ReviewModel) learnCmd() tea.Cmd {
	pattern := m.fields.pattern
	choice := m.fields.customer
	svc := m.matchingService

	return func() tea.Msg {
		if choice == skipLine {
			return learnResultMsg{}
		}

		customerID, err := uuid.Parse(choice)
		if err != nil {
			return learnResultMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := svc.Learn(ctx, pattern, customerID); err != nil {
			return learnResultMsg{err: err}
		}

		return learnResultMsg{learned: true}
	}
}
