// Package explorer is a terminal tree view over the dataset, filesystem and
// job session trees.
package explorer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/extender/pkg/profilelink"
	"github.com/grovetools/extender/pkg/profiles"
	"github.com/grovetools/extender/pkg/views"
	"github.com/grovetools/extender/tui/theme"
)

// Broker is the part of the extender the explorer drives.
type Broker interface {
	ReloadProfiles(ctx context.Context, profileType string) error
	GetLinkedProfile(ctx context.Context, node profilelink.Node, profileType string) (*profiles.Profile, error)
}

// SessionsChangedMsg carries a new session snapshot for one view. Send it
// from a SessionTree OnChange callback.
type SessionsChangedMsg struct {
	Kind     views.Kind
	Sessions []*views.Session
}

type reloadDoneMsg struct {
	err  error
	took time.Duration
}

type linkedMsg struct {
	profile string
	lines   []string
}

// Model is the explorer bubbletea model.
type Model struct {
	ctx    context.Context
	broker Broker
	trees  map[views.Kind]*views.SessionTree

	kinds    []views.Kind
	active   int
	cursor   map[views.Kind]int
	sessions map[views.Kind][]*views.Session

	reloading bool
	status    string
	lastErr   error
	details   linkedMsg

	spinner spinner.Model
	keys    KeyMap
	help    help.Model
	theme   *theme.Theme
	width   int
}

// New creates an explorer over the enabled trees.
func New(ctx context.Context, broker Broker, trees map[views.Kind]*views.SessionTree) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:      ctx,
		broker:   broker,
		trees:    trees,
		cursor:   make(map[views.Kind]int),
		sessions: make(map[views.Kind][]*views.Session),
		spinner:  sp,
		keys:     defaultKeyMap,
		help:     help.New(),
		theme:    theme.DefaultTheme,
	}
	for _, kind := range views.Kinds() {
		if tree, ok := trees[kind]; ok {
			m.kinds = append(m.kinds, kind)
			m.sessions[kind] = tree.Sessions()
		}
	}
	return m
}

// Init starts with a reload so the trees are populated.
func (m Model) Init() tea.Cmd {
	return m.startReload()
}

func (m *Model) startReload() tea.Cmd {
	m.reloading = true
	m.status = "Reloading profiles"
	return tea.Batch(m.spinner.Tick, m.reloadCmd())
}

func (m Model) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		err := m.broker.ReloadProfiles(m.ctx, "")
		return reloadDoneMsg{err: err, took: time.Since(start)}
	}
}

func (m Model) linkedCmd(session *views.Session) tea.Cmd {
	return func() tea.Msg {
		p := session.Profile()
		msg := linkedMsg{profile: p.Name}
		for _, linkType := range p.LinkTypes() {
			linked, err := m.broker.GetLinkedProfile(m.ctx, session, linkType)
			if err != nil {
				msg.lines = append(msg.lines, fmt.Sprintf("%s %s: %v", theme.IconError, linkType, err))
				continue
			}
			msg.lines = append(msg.lines, fmt.Sprintf("%s %s %s %s", theme.IconLink, linkType, theme.IconArrow, linked.Name))
		}
		if len(msg.lines) == 0 {
			msg.lines = []string{"no linked profiles"}
		}
		return msg
	}
}

// ActiveKind returns the view currently shown.
func (m Model) ActiveKind() (views.Kind, bool) {
	if len(m.kinds) == 0 {
		return 0, false
	}
	return m.kinds[m.active], true
}

// Selected returns the session under the cursor.
func (m Model) Selected() (*views.Session, bool) {
	kind, ok := m.ActiveKind()
	if !ok {
		return nil, false
	}
	list := m.sessions[kind]
	c := m.cursor[kind]
	if c < 0 || c >= len(list) {
		return nil, false
	}
	return list[c], true
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case reloadDoneMsg:
		m.reloading = false
		m.lastErr = msg.err
		if msg.err != nil {
			m.status = "Reload failed"
		} else {
			m.status = fmt.Sprintf("Reloaded in %s", msg.took.Round(time.Millisecond))
		}
		for _, kind := range m.kinds {
			m.setSessions(kind, m.trees[kind].Sessions())
		}
		return m, nil

	case SessionsChangedMsg:
		if _, ok := m.trees[msg.Kind]; ok {
			m.setSessions(msg.Kind, msg.Sessions)
		}
		return m, nil

	case linkedMsg:
		m.details = msg
		return m, nil

	case spinner.TickMsg:
		if !m.reloading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kind, hasView := m.ActiveKind()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.NextView) && hasView:
		m.active = (m.active + 1) % len(m.kinds)
		m.details = linkedMsg{}

	case key.Matches(msg, m.keys.PrevView) && hasView:
		m.active = (m.active - 1 + len(m.kinds)) % len(m.kinds)
		m.details = linkedMsg{}

	case key.Matches(msg, m.keys.Up) && hasView:
		if m.cursor[kind] > 0 {
			m.cursor[kind]--
		}

	case key.Matches(msg, m.keys.Down) && hasView:
		if m.cursor[kind] < len(m.sessions[kind])-1 {
			m.cursor[kind]++
		}

	case key.Matches(msg, m.keys.Reload):
		if !m.reloading {
			return m, m.startReload()
		}

	case key.Matches(msg, m.keys.Links):
		if s, ok := m.Selected(); ok {
			return m, m.linkedCmd(s)
		}
	}
	return m, nil
}

func (m *Model) setSessions(kind views.Kind, sessions []*views.Session) {
	m.sessions[kind] = sessions
	if m.cursor[kind] >= len(sessions) {
		m.cursor[kind] = len(sessions) - 1
	}
	if m.cursor[kind] < 0 {
		m.cursor[kind] = 0
	}
}

func kindIcon(kind views.Kind) string {
	switch kind {
	case views.KindDataset:
		return theme.IconDataset
	case views.KindFilesystem:
		return theme.IconFolder
	default:
		return theme.IconJob
	}
}

// View renders the explorer.
func (m Model) View() string {
	t := m.theme
	var b strings.Builder

	if len(m.kinds) == 0 {
		b.WriteString(t.Warning.Render("All views are disabled in the configuration."))
		b.WriteString("\n\n" + m.help.View(m.keys))
		return b.String()
	}

	var tabs []string
	for i, kind := range m.kinds {
		label := fmt.Sprintf(" %s %s (%d) ", kindIcon(kind), kind, len(m.sessions[kind]))
		if i == m.active {
			tabs = append(tabs, t.Selected.Bold(true).Render(label))
		} else {
			tabs = append(tabs, t.Muted.Render(label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	kind := m.kinds[m.active]
	list := m.sessions[kind]
	if len(list) == 0 {
		b.WriteString(t.Muted.Render("  no sessions"))
		b.WriteString("\n")
	}
	for i, s := range list {
		p := s.Profile()
		marker := "  "
		if i == m.cursor[kind] {
			marker = t.Highlight.Render(theme.IconArrow) + " "
		}
		line := fmt.Sprintf("%s %s", theme.IconProfile, p.Name)
		if p.Default {
			line += " " + t.Warning.Render(theme.IconDefault)
		}
		line += "  " + t.ProfileTypeStyle(p.Type).Render(p.Type)
		if i == m.cursor[kind] {
			line = t.Bold.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}

	if len(m.details.lines) > 0 {
		body := t.Bold.Render(m.details.profile) + "\n" + strings.Join(m.details.lines, "\n")
		b.WriteString("\n" + t.DetailsBox.Render(body) + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.reloading:
		b.WriteString(m.spinner.View() + " " + m.status)
	case m.lastErr != nil:
		b.WriteString(t.Error.Render(m.status+": ") + m.lastErr.Error())
	case m.status != "":
		b.WriteString(t.Success.Render(theme.IconSuccess+" ") + t.Muted.Render(m.status))
	}
	b.WriteString("\n\n" + m.help.View(m.keys))
	return b.String()
}
