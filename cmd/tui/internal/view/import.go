package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/freightdesk/internal/importer"
	"github.com/MrJamesThe3rd/freightdesk/internal/importer/statement"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateRunning
	importStatePreview
	importStateResult
)

// ReviewUnmatchedMsg asks the app to open the mapping review for lines the
// import could not tie to an invoice.
type ReviewUnmatchedMsg struct {
	Lines []statement.Line
}

type ImportModel struct {
	CommonModel
	importService *importer.Service

	state      importState
	filePicker filepicker.Model
	path       string

	table  table.Model
	report *importer.Report

	status string
	err    error
}

func NewImportModel(svc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Row", Width: 5},
			{Title: "Date", Width: 12},
			{Title: "Amount", Width: 10},
			{Title: "Status", Width: 10},
			{Title: "Invoice", Width: 18},
			{Title: "Description", Width: 40},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return ImportModel{
		importService: svc,
		filePicker:    fp,
		table:         t,
	}
}

func (m ImportModel) Title() string { return "Import Bank Statement" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStatePreview:
		return "a: apply matched lines | m: map unmatched | Esc: cancel"
	case importStateResult:
		return "m: map unmatched | Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m.handleEsc()
		case "a":
			if m.state == importStatePreview {
				m.state = importStateRunning
				m.status = "Recording payments..."

				return m, m.importCmd(m.path, true)
			}
		case "m":
			if m.state == importStatePreview || m.state == importStateResult {
				lines := unmatchedLines(m.report)
				if len(lines) == 0 {
					m.status = "Nothing to map."
					return m, nil
				}

				return m, func() tea.Msg { return ReviewUnmatchedMsg{Lines: lines} }
			}
		}

	case importReportMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err

			return m, nil
		}

		m.report = msg.report
		m.setRows()

		if msg.applied {
			m.state = importStateResult
			m.status = fmt.Sprintf("%d applied, %d duplicate, %d unmatched, %d failed",
				m.report.Count(importer.LineApplied),
				m.report.Count(importer.LineDuplicate),
				m.report.Count(importer.LineUnmatched),
				m.report.Count(importer.LineFailed),
			)

			return m, nil
		}

		m.state = importStatePreview
		m.status = fmt.Sprintf("%s statement (%s): %d matched, %d unmatched",
			m.report.Profile,
			m.report.Charset,
			m.report.Count(importer.LineMatched),
			m.report.Count(importer.LineUnmatched),
		)

		return m, nil
	}

	switch m.state {
	case importStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.path = path
			m.state = importStateRunning
			m.status = fmt.Sprintf("Reading %s...", path)

			return m, m.importCmd(path, false)
		}

		return m, cmd

	case importStatePreview, importStateResult:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStatePreview, importStateResult:
		m.state = importStateFilePick
		m.report = nil
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	case importStateRunning:
		return m, nil
	}

	return m, Back
}

func (m *ImportModel) setRows() {
	rows := make([]table.Row, 0, len(m.report.Lines))

	for _, l := range m.report.Lines {
		amount := FormatAmount(l.Line.Amount)
		if !l.Line.Credit {
			amount = "-" + amount
		}

		rows = append(rows, table.Row{
			fmt.Sprint(l.Line.Row),
			FormatDate(l.Line.Date),
			amount,
			string(l.Status),
			l.InvoiceNumber,
			l.Line.Description,
		})
	}

	m.table.SetRows(rows)
}

func (m ImportModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case importStateFilePick:
		return style.Render("Select statement to import:\n\n" + m.filePicker.View())

	case importStateRunning:
		return style.Render(m.status)

	case importStatePreview:
		return style.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.status,
			"",
			m.table.View(),
			"",
			faintStyle.Render("Nothing has been recorded yet."),
		))

	case importStateResult:
		if m.err != nil {
			return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
		}

		return style.Render(lipgloss.JoinVertical(lipgloss.Left,
			successStyle.Render(m.status),
			"",
			m.table.View(),
		))
	}

	return ""
}

func unmatchedLines(r *importer.Report) []statement.Line {
	if r == nil {
		return nil
	}

	var lines []statement.Line

	for _, l := range r.Lines {
		if l.Status == importer.LineUnmatched {
			lines = append(lines, l.Line)
		}
	}

	return lines
}

// Messages

type importReportMsg struct {
	report  *importer.Report
	applied bool
	err     error
}

func (m ImportModel) importCmd(path string, apply bool) tea.Cmd {
	svc := m.importService

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importReportMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		report, err := svc.Import(ctx, f, apply)

		return importReportMsg{report: report, applied: apply, err: err}
	}
}
