package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/janekbaraniewski/usagebridge/internal/core"
	"github.com/janekbaraniewski/usagebridge/internal/host"
)

// CommandRunner executes a registered host command against a UI.
type CommandRunner interface {
	RunCommand(ctx context.Context, name, args string, ui host.UI) error
}

// CatalogView exposes the currently published catalog.
type CatalogView interface {
	Current() core.Catalog
}

// Binding maps a key to a host command.
type Binding struct {
	Key     string
	Command string
	Help    string
}

var DefaultBindings = []Binding{
	{Key: "a", Command: "antigravity-quota", Help: "antigravity quota"},
	{Key: "c", Command: "copilot-quota", Help: "copilot quota"},
	{Key: "r", Command: "refresh-models", Help: "refresh models"},
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// BoardChangedMsg asks the dashboard to redraw after a widget changed
// outside the update loop, e.g. when a quota widget expires.
type BoardChangedMsg struct{}

type commandDoneMsg struct {
	command string
	err     error
}

type Model struct {
	ctx      context.Context
	runner   CommandRunner
	catalog  CatalogView
	board    *Board
	bindings []Binding

	width   int
	height  int
	running string // command in flight, empty when idle
	failed  string // command behind lastErr
	lastErr error
	now     func() time.Time
}

func NewModel(ctx context.Context, runner CommandRunner, catalog CatalogView, board *Board) Model {
	if board == nil {
		board = NewBoard()
	}
	return Model{
		ctx:      ctx,
		runner:   runner,
		catalog:  catalog,
		board:    board,
		bindings: DefaultBindings,
		width:    DefaultWidth,
		now:      time.Now,
	}
}

func (m Model) Init() tea.Cmd { return tickCmd() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m, tickCmd()
	case BoardChangedMsg:
		return m, nil
	case commandDoneMsg:
		if msg.command == m.running {
			m.running = ""
		}
		m.failed, m.lastErr = "", nil
		if msg.err != nil {
			m.failed, m.lastErr = msg.command, msg.err
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "q" || key == "ctrl+c" {
		return m, tea.Quit
	}
	for _, b := range m.bindings {
		if b.Key != key {
			continue
		}
		if m.running != "" {
			return m, nil
		}
		m.running = b.Command
		return m, m.runCommand(b.Command)
	}
	return m, nil
}

func (m Model) runCommand(name string) tea.Cmd {
	runner, board, ctx := m.runner, m.board, m.ctx
	return func() tea.Msg {
		if runner == nil {
			return commandDoneMsg{command: name}
		}
		return commandDoneMsg{command: name, err: runner.RunCommand(ctx, name, "", board)}
	}
}

func (m Model) View() string {
	w := m.width
	if w <= 0 {
		w = DefaultWidth
	}

	var sb strings.Builder
	sb.WriteString(headerBrandStyle.Render("usagebridge") + " " + dimStyle.Render("models & quota"))
	sb.WriteString("\n\n")

	sb.WriteString(sectionHeaderStyle.Render("Catalog"))
	sb.WriteString("\n")
	sb.WriteString(m.renderCatalogLine())
	sb.WriteString("\n")

	if notice := m.board.LastNotice(); notice.Text != "" {
		sb.WriteString("\n")
		for _, line := range strings.Split(notice.Text, "\n") {
			sb.WriteString(noticeStyle(notice.Level).Render(line))
			sb.WriteString("\n")
		}
	}

	for _, key := range m.board.Keys() {
		lines, _ := m.board.Widget(key)
		sb.WriteString("\n")
		for _, line := range lines {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	switch {
	case m.running != "":
		sb.WriteString(dimStyle.Render("running " + m.running + "…"))
		sb.WriteString("\n")
	case m.lastErr != nil:
		sb.WriteString(ErrorLine(m.failed, m.lastErr))
		sb.WriteString("\n")
	}
	sb.WriteString(m.renderHelp())

	lines := strings.Split(sb.String(), "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, w, "…")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCatalogLine() string {
	if m.catalog == nil {
		return dimStyle.Render("  no catalog")
	}
	cat := m.catalog.Current()
	if cat.Len() == 0 {
		return dimStyle.Render("  not loaded yet")
	}
	source := valueStyle.Render(string(cat.Source))
	if cat.Source == core.CatalogSourceFallback {
		source = badgeWarnStyle.Render(string(cat.Source))
	}
	parts := []string{
		"  " + valueStyle.Render(humanize.Comma(int64(cat.Len()))+" models"),
		source,
	}
	if !cat.FetchedAt.IsZero() {
		parts = append(parts, dimStyle.Render("updated "+humanize.RelTime(cat.FetchedAt, m.now(), "ago", "from now")))
	}
	return strings.Join(parts, dimStyle.Render(" · "))
}

func (m Model) renderHelp() string {
	parts := make([]string, 0, len(m.bindings)+1)
	for _, b := range m.bindings {
		parts = append(parts, helpKeyStyle.Render(b.Key)+helpStyle.Render(" "+b.Help))
	}
	parts = append(parts, helpKeyStyle.Render("q")+helpStyle.Render(" quit"))
	return strings.Join(parts, helpStyle.Render("  "))
}
