package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/de-tools/riskread/pkg/adapters"
	"github.com/de-tools/riskread/pkg/scoring"
	"github.com/de-tools/riskread/pkg/services/display"
	"github.com/de-tools/riskread/pkg/services/notify"
	"github.com/de-tools/riskread/pkg/services/watch"
)

const noticeTimeout = 4 * time.Second

// Watcher is the runner side the model drives.
type Watcher interface {
	Updates() <-chan watch.Update
	RequestRefetch()
	UseMock()
	UseLive()
}

// Actions are the side effects triggered from the keyboard.
type Actions interface {
	Reanalyze(ctx context.Context, id string) error
	Export(ctx context.Context, view display.View) (string, error)
}

// Model is the root bubbletea model for the live analysis view.
type Model struct {
	ctx     context.Context
	id      string
	watcher Watcher
	actions Actions

	view    display.View
	polling bool
	closed  bool
	lastErr error

	notice     notify.Notice
	noticeSeq  int
	reportPath string
	busy       bool

	width  int
	height int
	scroll int
}

func New(ctx context.Context, id string, watcher Watcher, actions Actions) Model {
	return Model{
		ctx:     ctx,
		id:      id,
		watcher: watcher,
		actions: actions,
	}
}

func (m Model) Init() tea.Cmd {
	return waitForUpdate(m.watcher.Updates())
}

// waitForUpdate reads the next snapshot from the runner.
func waitForUpdate(updates <-chan watch.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return RunnerClosedMsg{}
		}
		return UpdateMsg{Update: u}
	}
}

func clearNoticeCmd(seq int) tea.Cmd {
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return ClearNoticeMsg{Seq: seq}
	})
}

func reanalyzeCmd(ctx context.Context, actions Actions, id string) tea.Cmd {
	return func() tea.Msg {
		return ReanalyzedMsg{Err: actions.Reanalyze(ctx, id)}
	}
}

func exportCmd(ctx context.Context, actions Actions, view display.View) tea.Cmd {
	return func() tea.Msg {
		path, err := actions.Export(ctx, view)
		return ReportWrittenMsg{Path: path, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case UpdateMsg:
		m.view = msg.Update.View
		m.polling = msg.Update.Polling
		m.lastErr = msg.Update.Err
		return m, waitForUpdate(m.watcher.Updates())

	case RunnerClosedMsg:
		m.closed = true
		m.polling = false
		return m, nil

	case NoticeMsg:
		m.notice = msg.Notice
		m.noticeSeq++
		return m, clearNoticeCmd(m.noticeSeq)

	case ClearNoticeMsg:
		if msg.Seq == m.noticeSeq {
			m.notice = notify.Notice{}
		}
		return m, nil

	case ReanalyzedMsg:
		m.busy = false
		return m, nil

	case ReportWrittenMsg:
		m.busy = false
		if msg.Err == nil {
			m.reportPath = msg.Path
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyQuitUpper, KeyCtrlC:
		return m, tea.Quit

	case KeyUp, KeyK:
		if m.scroll > 0 {
			m.scroll--
		}
	case KeyDown, KeyJ:
		m.scroll++

	case KeyMock:
		m.watcher.UseMock()
	case KeyLive:
		m.watcher.UseLive()
	case KeyRefetch:
		if !m.view.Mock {
			m.watcher.RequestRefetch()
		}

	case KeyReanalyze:
		if m.busy || m.view.Mock || !m.view.Loaded() {
			return m, nil
		}
		m.busy = true
		return m, reanalyzeCmd(m.ctx, m.actions, m.id)

	case KeyReport:
		if m.busy || !m.view.Loaded() {
			return m, nil
		}
		m.busy = true
		return m, exportCmd(m.ctx, m.actions, m.view)
	}
	return m, nil
}

func (m Model) badges() []string {
	var out []string
	switch {
	case m.view.Mock:
		out = append(out, MockBadgeStyle.Render("Demo"))
	case m.view.FromCache:
		out = append(out, BadgeStyle.Render("Cached"))
	}
	if m.polling {
		out = append(out, BadgeStyle.Render("Polling"))
	}
	return out
}

func (m Model) header() []string {
	if !m.view.Loaded() {
		return []string{TitleStyle.Render("Analysis " + m.id)}
	}
	a := m.view.Analysis
	title := TitleStyle.Render(a.FileName) + " " + strings.Join(m.badges(), " ")

	status := "Status: " + adapters.Capitalize(string(a.Status))
	if a.RiskLevel != "" {
		status += "  Risk: " + riskStyle(a.RiskLevel).Render(adapters.Capitalize(string(a.RiskLevel)))
	}
	if m.view.Result != nil {
		score := scoring.WeightedScore(*m.view.Result)
		status += "  Score: " + toneStyle(float64(score)).Render(fmt.Sprintf("%d/100", score)) +
			" " + DimStyle.Render(scoring.Label(float64(score)))
	} else if a.OverallScore != nil {
		status += "  Score: " + toneStyle(*a.OverallScore).Render(fmt.Sprintf("%.0f/100", *a.OverallScore))
	}
	return []string{title, status}
}

func (m Model) body() []string {
	if !m.view.Loaded() {
		if m.lastErr != nil {
			return []string{ErrorStyle.Render(watch.MsgLoadFailed)}
		}
		return []string{DimStyle.Render("Loading analysis...")}
	}

	report := adapters.MapAnalysisToReport(*m.view.Analysis, m.view.Result, nil)
	var lines []string
	for _, section := range report.Sections {
		lines = append(lines, SectionStyle.Render(section.Title))

		keys := make([]string, 0, len(section.Summary))
		for k := range section.Summary {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("  %s %v", DimStyle.Render(k+":"), section.Summary[k]))
		}

		for _, d := range section.Details {
			line := fmt.Sprintf("  • %s: %v", d.Name, d.Value)
			if d.Unit != "" {
				line += " " + d.Unit
			}
			lines = append(lines, line)
			if d.Description != "" {
				lines = append(lines, "    "+DimStyle.Render(d.Description))
			}
		}
	}
	if m.view.Result == nil {
		lines = append(lines, "", DimStyle.Render("Analysis results are not yet available."))
	}
	return lines
}

func (m Model) footer() []string {
	var lines []string
	if m.notice.Message != "" {
		lines = append(lines, notify.Render(m.notice))
	} else if m.reportPath != "" {
		lines = append(lines, DimStyle.Render("Report: "+m.reportPath))
	}

	keys := []struct{ key, desc string }{
		{KeyRefetch, "refetch"},
		{KeyReanalyze, "reanalyze"},
		{KeyReport, "pdf"},
		{KeyQuit, "quit"},
	}
	if m.view.Mock {
		keys = append([]struct{ key, desc string }{{KeyLive, "real data"}}, keys...)
	} else {
		keys = append([]struct{ key, desc string }{{KeyMock, "demo"}}, keys...)
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, FooterKeyStyle.Render(k.key)+" "+FooterDescStyle.Render(k.desc))
	}
	lines = append(lines, strings.Join(parts, "  "))
	return lines
}

func (m Model) View() string {
	header := m.header()
	body := m.body()
	footer := m.footer()

	width := m.width
	if width <= 0 {
		width = 80
	}
	divider := DividerStyle.Render(strings.Repeat("─", width))

	// Scroll the body inside whatever room the header and footer leave.
	if m.height > 0 {
		room := m.height - len(header) - len(footer) - 2
		if room < 1 {
			room = 1
		}
		maxScroll := len(body) - room
		if maxScroll < 0 {
			maxScroll = 0
		}
		start := m.scroll
		if start > maxScroll {
			start = maxScroll
		}
		end := start + room
		if end > len(body) {
			end = len(body)
		}
		body = body[start:end]
	}

	var b strings.Builder
	b.WriteString(strings.Join(header, "\n"))
	b.WriteString("\n" + divider + "\n")
	b.WriteString(strings.Join(body, "\n"))
	b.WriteString("\n" + divider + "\n")
	b.WriteString(strings.Join(footer, "\n"))
	return b.String()
}
