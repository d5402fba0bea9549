package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/freightdesk/internal/deal"
	"github.com/MrJamesThe3rd/freightdesk/internal/export"
)

const exportTimeout = 2 * time.Minute

type exportStep int

const (
	exportStepPeriod exportStep = iota
	exportStepOptions
	exportStepRunning
	exportStepDone
)

type exportFields struct {
	dir string
	zip bool
}

type exportDoneMsg struct {
	items   []export.Item
	archive string
	err     error
}

// ExportModel bundles the deal documents of a period for the accountant. The
// documents land in a directory next to summary.txt, optionally zipped.
type ExportModel struct {
	CommonModel
	svc *export.Service

	step    exportStep
	period  TimeframePicker
	filter  deal.ListFilter
	form    *huh.Form
	fields  *exportFields
	spinner spinner.Model

	items   table.Model
	missing int
	archive string
	err     error
}

func NewExportModel(svc *export.Service) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ExportModel{
		svc:     svc,
		period:  NewTimeframePicker(),
		fields:  &exportFields{dir: "./exports"},
		spinner: s,
	}
}

func (m ExportModel) Title() string { return "Export Deals" }

func (m ExportModel) ShortHelp() string {
	switch m.step {
	case exportStepRunning:
		return "Downloading..."
	case exportStepDone:
		return "↑/↓: scroll | Esc: back to menu"
	}

	return "Enter: confirm | Esc: back"
}

func (m ExportModel) Init() tea.Cmd { return nil }

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.filter.StartDate, m.filter.EndDate = msg.Bounds()
		m.form = m.optionsForm()
		m.step = exportStepOptions

		return m, m.form.Init()

	case exportDoneMsg:
		m.step = exportStepDone
		m.err = msg.err
		m.archive = msg.archive
		m.items, m.missing = exportTable(msg.items)

		return m, nil

	case spinner.TickMsg:
		if m.step != exportStepRunning {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	key, isKey := msg.(tea.KeyMsg)

	switch m.step {
	case exportStepPeriod:
		if isKey && key.Type == tea.KeyEsc && m.period.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.period, cmd = m.period.Update(msg)

		return m, cmd

	case exportStepOptions:
		if isKey && key.Type == tea.KeyEsc {
			m.step = exportStepPeriod
			m.period.Reset()

			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		m.step = exportStepRunning

		return m, tea.Batch(m.spinner.Tick, runExport(m.svc, m.filter, *m.fields))

	case exportStepDone:
		if isKey && key.Type == tea.KeyEsc {
			return m, Back
		}

		var cmd tea.Cmd
		m.items, cmd = m.items.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m ExportModel) optionsForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output directory").
				Description("Created when missing").
				Placeholder("./exports").
				Value(&m.fields.dir).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("directory is required")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Also build a zip archive?").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fields.zip),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m ExportModel) View() string {
	pad := lipgloss.NewStyle().Padding(1)

	switch m.step {
	case exportStepPeriod:
		return pad.Render(m.period.View())
	case exportStepOptions:
		return pad.Render(m.form.View())
	case exportStepRunning:
		return pad.Render(m.spinner.View() + " Downloading deal documents...")
	}

	if m.err != nil {
		return pad.Render(errorStyle.Render("Export failed: " + m.err.Error()))
	}

	lines := []string{
		successStyle.Render(fmt.Sprintf("%d deals exported to %s", len(m.items.Rows()), m.fields.dir)),
	}

	if m.missing > 0 {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("%d without a document; regenerate them from the Deals view", m.missing)))
	}

	if m.archive != "" {
		lines = append(lines, faintStyle.Render("Archive: "+m.archive))
	}

	lines = append(lines, "", m.items.View())

	return pad.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func exportTable(items []export.Item) (table.Model, int) {
	missing := 0
	rows := make([]table.Row, 0, len(items))

	for _, it := range items {
		file := filepath.Base(it.FilePath)
		if it.FilePath == "" {
			file = "-"
			missing++
		}

		rows = append(rows, table.Row{
			FormatDate(it.Deal.CreatedAt),
			it.Deal.InvoiceNumber,
			FormatAmount(it.Deal.Total),
			string(it.Deal.Status),
			file,
		})
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Invoice", Width: 20},
			{Title: "Total", Width: 12},
			{Title: "Status", Width: 10},
			{Title: "File", Width: 30},
		}),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows)+1, 15)),
	)

	return t, missing
}

func runExport(svc *export.Service, filter deal.ListFilter, opts exportFields) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		items, err := svc.Export(ctx, filter, opts.dir)
		if err != nil {
			return exportDoneMsg{err: err}
		}

		summary := svc.GenerateSummary(items)
		if err := os.WriteFile(filepath.Join(opts.dir, export.SummaryFile), []byte(summary), 0o644); err != nil {
			return exportDoneMsg{items: items, err: fmt.Errorf("writing summary: %w", err)}
		}

		if !opts.zip {
			return exportDoneMsg{items: items}
		}

		archive := filepath.Clean(opts.dir) + ".zip"

		f, err := os.Create(archive)
		if err != nil {
			return exportDoneMsg{items: items, err: fmt.Errorf("creating archive: %w", err)}
		}
		defer f.Close()

		if err := export.WriteZip(f, opts.dir); err != nil {
			return exportDoneMsg{items: items, err: err}
		}

		return exportDoneMsg{items: items, archive: archive}
	}
}
