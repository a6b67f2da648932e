package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fahmaliyi/otpvault/otp"
	"github.com/fahmaliyi/otpvault/vault"
)

const barWidth = 10

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	msgStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("57")).Foreground(lipgloss.Color("0"))
	expiringStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

type (
	tickMsg      time.Time
	clearClipMsg struct{ code string }
)

// watchModel shows every code with the time left in its window.
type watchModel struct {
	vault     *vault.Vault
	names     []string
	cursor    int
	filter    textinput.Model
	filtering bool

	now        func() time.Time
	at         time.Time
	refresh    time.Duration
	clearAfter time.Duration
	copy       func(string) error
	paste      func() (string, error)
	msg        string
}

func newWatchModel(v *vault.Vault, a *App) watchModel {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/"

	return watchModel{
		vault:      v,
		names:      v.Names(),
		filter:     ti,
		now:        a.now,
		at:         a.now(),
		refresh:    a.cfg.Refresh,
		clearAfter: a.cfg.ClipboardClear,
		copy:       a.copy,
		paste:      a.paste,
	}
}

func (a *App) runWatch(v *vault.Vault) error {
	_, err := tea.NewProgram(newWatchModel(v, a)).Run()
	return err
}

func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m watchModel) Init() tea.Cmd {
	return m.tick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.at = m.now()
		return m, m.tick()
	case clearClipMsg:
		if current, err := m.paste(); err == nil && current == msg.code {
			_ = m.copy("")
			m.msg = "Clipboard cleared."
		}
		return m, nil
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateTable(msg)
	}
	return m, nil
}

func (m watchModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filter.SetValue("")
		m.filter.Blur()
		m.filtering = false
		m.applyFilter()
		return m, nil
	case "enter":
		m.filter.Blur()
		m.filtering = false
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m watchModel) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.filtering = true
		return m, m.filter.Focus()
	case "c", "enter":
		return m.copySelected()
	}
	return m, nil
}

func (m *watchModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	var names []string
	for _, name := range m.vault.Names() {
		if strings.Contains(strings.ToLower(name), q) {
			names = append(names, name)
		}
	}
	m.names = names
	if m.cursor >= len(m.names) {
		m.cursor = max(len(m.names)-1, 0)
	}
}

func (m watchModel) copySelected() (tea.Model, tea.Cmd) {
	if len(m.names) == 0 {
		return m, nil
	}
	name := m.names[m.cursor]
	e, _ := m.vault.Get(name)
	code, err := e.TOTP(m.now())
	if err != nil {
		m.msg = errStyle.Render(err.Error())
		return m, nil
	}
	formatted := otp.Format(code, e.Digits())
	if err := m.copy(formatted); err != nil {
		m.msg = errStyle.Render("clipboard: " + err.Error())
		return m, nil
	}
	if m.clearAfter <= 0 {
		m.msg = fmt.Sprintf("Copied %s.", name)
		return m, nil
	}
	m.msg = fmt.Sprintf("Copied %s (clears in %s).", name, m.clearAfter)
	return m, tea.Tick(m.clearAfter, func(time.Time) tea.Msg { return clearClipMsg{code: formatted} })
}

func (m watchModel) row(name string) string {
	e, _ := m.vault.Get(name)
	code, err := e.TOTP(m.at)
	if err != nil {
		return fmt.Sprintf("%-30s  %s", name, errStyle.Render(err.Error()))
	}
	left := e.Remaining(m.at)
	filled := 0
	if left > 0 && e.Step() > 0 {
		filled = min(int(uint64(left/time.Second)*barWidth/e.Step()), barWidth)
	}
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
	secs := fmt.Sprintf("%2ds", int(left.Round(time.Second)/time.Second))
	if left <= 5*time.Second {
		bar, secs = expiringStyle.Render(bar), expiringStyle.Render(secs)
	}
	return fmt.Sprintf("%-30s  %-10s  [%s] %s", name, otp.Format(code, e.Digits()), bar, secs)
}

func (m watchModel) View() string {
	s := titleStyle.Render("TOTP Codes") + "\n\n"
	if m.filtering || m.filter.Value() != "" {
		s += m.filter.View() + "\n\n"
	}
	if len(m.names) == 0 {
		s += "No matching entries\n"
	}
	for i, name := range m.names {
		line := m.row(name)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		s += line + "\n"
	}
	if m.msg != "" {
		s += "\n" + msgStyle.Render(m.msg)
	}
	s += "\nCommands: j/k=move, c/enter=copy, /=filter, q=quit"
	return s
}
