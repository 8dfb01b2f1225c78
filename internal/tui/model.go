// Package tui is the terminal front end served over SSH: one input line, an
// Analyze action on Enter, and a scrollable list of cards.
package tui

import (
	"context"
	"fmt"
	"strings"

	"stock-news-analyzer/internal/domain"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const title = "📰 AI-Powered Stock Market News Analyzer"

type Analyzer interface {
	Analyze(ctx context.Context, query string) domain.Report
}

type reportMsg struct {
	report domain.Report
}

type Model struct {
	ctx      context.Context
	analyzer Analyzer
	input    textinput.Model
	spinner  spinner.Model
	results  viewport.Model
	running  bool
	report   *domain.Report
	width    int
	height   int
}

// NewModel builds the TUI. ctx bounds every analysis the session starts.
func NewModel(ctx context.Context, analyzer Analyzer, defaultQuery string) Model {
	in := textinput.New()
	in.Placeholder = "Enter a stock symbol or company name"
	in.Prompt = "› "
	in.CharLimit = 120
	in.SetValue(defaultQuery)
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		analyzer: analyzer,
		input:    in,
		spinner:  sp,
		results:  viewport.New(80, 20),
		width:    80,
		height:   24,
	}
}

// SetSize applies the initial PTY size before the first WindowSizeMsg.
func (m *Model) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width, m.height = width, height
	m.input.Width = width - 4
	m.results.Width = width
	m.results.Height = max(height-6, 3)
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		m.refreshResults()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.running {
				return m, nil
			}
			m.running = true
			m.report = nil
			m.refreshResults()
			return m, tea.Batch(m.spinner.Tick, m.analyze(m.input.Value()))
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.results, cmd = m.results.Update(msg)
			return m, cmd
		}
		if m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case reportMsg:
		m.running = false
		report := msg.report
		m.report = &report
		m.refreshResults()
		m.results.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) analyze(query string) tea.Cmd {
	ctx, analyzer := m.ctx, m.analyzer
	return func() tea.Msg {
		return reportMsg{report: analyzer.Analyze(ctx, query)}
	}
}

func (m *Model) refreshResults() {
	if m.report == nil {
		m.results.SetContent("")
		return
	}
	m.results.SetContent(renderReport(*m.report, m.width))
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.running:
		b.WriteString(fmt.Sprintf("%s Analyzing…\n", m.spinner.View()))
	case m.report != nil:
		b.WriteString(m.results.View())
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("enter: analyze • ↑/↓ pgup/pgdn: scroll • esc: quit"))
	return b.String()
}

func renderReport(r domain.Report, width int) string {
	var b strings.Builder
	for _, n := range r.Notices {
		style, ok := noticeStyles[string(n.Level)]
		if !ok {
			style = lipgloss.NewStyle()
		}
		b.WriteString(style.Render(n.Message))
		b.WriteString("\n")
	}
	for _, c := range r.Cards {
		b.WriteString(renderCard(c, width))
		b.WriteString("\n")
	}
	return b.String()
}

func renderCard(c domain.Card, width int) string {
	summary := c.Summary
	if c.SummaryFailed {
		summary = "(unavailable)"
	}
	action, ok := actionStyles[string(c.Action)]
	if !ok {
		action = lipgloss.NewStyle()
	}

	lines := []string{
		labelStyle.Render(c.Article.Title),
		metaStyle.Render("Source: " + c.Article.Source),
		metaStyle.Render("Published At: " + c.Article.PublishedAt),
		labelStyle.Render("Summary: ") + summary,
		labelStyle.Render("Sentiment: ") + string(c.Sentiment),
		labelStyle.Render("Suggested Action: ") + action.Render(string(c.Action)),
	}
	style := cardStyle
	if width > 8 {
		style = style.Width(width - 4)
	}
	return style.Render(strings.Join(lines, "\n"))
}
