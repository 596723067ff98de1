// Package tui is the presentation layer: a terminal HUD over the
// engine. All state lives in the engine; this package only renders
// snapshots and forwards user actions.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/solwen/arise/internal/engine"
	"github.com/solwen/arise/internal/ledger"
	"github.com/solwen/arise/internal/models"
)

type sessionState int

const (
	stateAwakening sessionState = iota
	stateHUD
)

type tab int

const (
	tabStatus tab = iota
	tabQuests
	tabSkills
	tabItems
	tabChat
	tabCount
)

var tabNames = [tabCount]string{"STATUS", "QUESTS", "SKILLS", "ITEMS", "CHAT"}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00E5FF")).
			Bold(true)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00E5FF")).
			Bold(true).
			Underline(true)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#203A43"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#55FF88"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)
)

type model struct {
	state  sessionState
	engine *engine.Engine
	every  time.Duration

	activeTab tab
	cursor    int
	width     int
	height    int
	status    string

	// awakening form
	nameInput textinput.Model
	ageInput  textinput.Model
	goalInput textinput.Model
	focusIdx  int

	// chat
	chatInput textinput.Model
	chatView  viewport.Model
	chatLog   string
	waiting   bool
}

type tickMsg time.Time

type maintenanceDoneMsg struct{ err error }

type chatReplyMsg struct {
	text string
	err  error
}

func newModel(eng *engine.Engine, every time.Duration) model {
	name := textinput.New()
	name.Placeholder = "NAME..."
	name.CharLimit = 32
	name.Focus()

	age := textinput.New()
	age.Placeholder = "AGE..."
	age.CharLimit = 3

	goal := textinput.New()
	goal.Placeholder = "OBJECTIVE..."
	goal.CharLimit = 120

	chat := textinput.New()
	chat.Placeholder = "Message the Architect..."
	chat.CharLimit = 240

	st := stateAwakening
	if eng.Onboarded() {
		st = stateHUD
	}

	return model{
		state:     st,
		engine:    eng,
		every:     every,
		nameInput: name,
		ageInput:  age,
		goalInput: goal,
		chatInput: chat,
		chatView:  viewport.New(60, 12),
	}
}

func (m model) Init() tea.Cmd {
	if m.state == stateHUD {
		return tea.Batch(textinput.Blink, m.maintain(), m.tick())
	}
	return textinput.Blink
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.every, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) maintain() tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		err := eng.RunMaintenance(ctx, time.Now())
		if errors.Is(err, engine.ErrBusy) || errors.Is(err, engine.ErrNotOnboarded) {
			err = nil
		}
		return maintenanceDoneMsg{err: err}
	}
}

func (m model) sendChat(msg string) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		reply, err := eng.Chat(ctx, msg)
		return chatReplyMsg{text: reply, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chatView.Width = msg.Width - 4
		m.chatView.Height = msg.Height - 8
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.maintain(), m.tick())

	case maintenanceDoneMsg:
		if msg.err != nil {
			m.status = "sync error: " + msg.err.Error()
		}
		return m, nil

	case chatReplyMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "chat error: " + msg.err.Error()
			return m, nil
		}
		m.chatLog += "\n" + titleStyle.Render("ARCHITECT") + " " + msg.text + "\n"
		m.chatView.SetContent(m.chatLog)
		m.chatView.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.state == stateAwakening {
			return m.updateAwakening(msg)
		}
		return m.updateHUD(msg)
	}

	return m, nil
}

func (m model) updateAwakening(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		m.focusIdx = (m.focusIdx + 1) % 3
	case tea.KeyShiftTab, tea.KeyUp:
		m.focusIdx = (m.focusIdx + 2) % 3
	case tea.KeyEnter:
		if m.focusIdx < 2 {
			m.focusIdx++
			break
		}
		name := m.nameInput.Value()
		age := 0
		fmt.Sscanf(m.ageInput.Value(), "%d", &age)
		if err := m.engine.Awaken(name, age, m.goalInput.Value()); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.state = stateHUD
		return m, tea.Batch(m.maintain(), m.tick())
	}

	inputs := []*textinput.Model{&m.nameInput, &m.ageInput, &m.goalInput}
	for i, in := range inputs {
		if i == m.focusIdx {
			in.Focus()
		} else {
			in.Blur()
		}
	}
	var cmd tea.Cmd
	*inputs[m.focusIdx], cmd = inputs[m.focusIdx].Update(msg)
	return m, cmd
}

func (m model) updateHUD(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.activeTab == tabChat && m.chatInput.Focused() {
		switch msg.Type {
		case tea.KeyEsc:
			m.chatInput.Blur()
			return m, nil
		case tea.KeyEnter:
			text := strings.TrimSpace(m.chatInput.Value())
			if text == "" || m.waiting {
				return m, nil
			}
			m.chatInput.Reset()
			m.chatLog += "\n" + dimStyle.Render("UNIT") + " " + text + "\n"
			m.chatView.SetContent(m.chatLog)
			m.chatView.GotoBottom()
			m.waiting = true
			return m, m.sendChat(text)
		default:
			var cmd tea.Cmd
			m.chatInput, cmd = m.chatInput.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "tab", "right", "l":
		m.activeTab = (m.activeTab + 1) % tabCount
		m.cursor = 0
	case "shift+tab", "left", "h":
		m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		m.cursor = 0
	case "down", "j":
		m.cursor++
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "i":
		if m.activeTab == tabChat {
			m.chatInput.Focus()
			return m, textinput.Blink
		}
	case "m":
		st := m.engine.Snapshot()
		mode := models.ModeManual
		if st.Ledger.Mode == models.ModeManual {
			mode = models.ModeGuided
		}
		if err := m.engine.SetMode(mode); err != nil {
			m.status = err.Error()
		} else {
			m.status = "mode: " + string(mode)
		}
	case "r":
		m.status = "syncing..."
		return m, m.maintain()
	case "enter", " ":
		return m.activate()
	case "p":
		if m.activeTab == tabQuests {
			if q, ok := m.selectedQuest(); ok {
				if err := m.engine.AdvanceQuest(q.ID); err != nil {
					m.status = err.Error()
				}
			}
		}
	case "x":
		if m.activeTab == tabQuests {
			if q, ok := m.selectedQuest(); ok {
				if err := m.engine.DismissQuest(q.ID); err != nil {
					m.status = err.Error()
				} else {
					m.status = "quest dismissed"
					if m.cursor > 0 {
						m.cursor--
					}
				}
			}
		}
	}
	return m, nil
}

// activate fires the primary action for the selected row of the
// current tab.
func (m model) activate() (tea.Model, tea.Cmd) {
	switch m.activeTab {
	case tabStatus:
		attrs := ledger.Attributes
		if m.cursor < len(attrs) {
			err := m.engine.AllocatePoint(attrs[m.cursor])
			switch {
			case errors.Is(err, ledger.ErrInsufficientPoints):
				m.status = "no unallocated points"
			case err != nil:
				m.status = err.Error()
			default:
				m.status = "point allocated to " + string(attrs[m.cursor])
			}
		}
	case tabQuests:
		if q, ok := m.selectedQuest(); ok {
			ups, err := m.engine.CompleteQuest(q.ID)
			switch {
			case err != nil:
				m.status = err.Error()
			case ups > 0:
				m.status = fmt.Sprintf("LEVEL UP x%d", ups)
			default:
				m.status = "quest completed"
			}
		}
	case tabSkills:
		st := m.engine.Snapshot()
		if m.cursor < len(st.Skills) {
			s := st.Skills[m.cursor]
			if !s.Unlocked {
				if err := m.engine.UnlockSkill(s.ID); err != nil {
					m.status = err.Error()
				} else {
					m.status = s.Name + " unlocked"
				}
			}
		}
	case tabItems:
		st := m.engine.Snapshot()
		if m.cursor < len(st.Items) {
			if err := m.engine.ToggleItem(st.Items[m.cursor].ID); err != nil {
				m.status = err.Error()
			}
		}
	case tabChat:
		m.chatInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m model) selectedQuest() (models.Quest, bool) {
	st := m.engine.Snapshot()
	if m.cursor < len(st.Quests) {
		return st.Quests[m.cursor], true
	}
	return models.Quest{}, false
}

func (m model) View() string {
	if m.state == stateAwakening {
		return m.viewAwakening()
	}
	return m.viewHUD()
}

func (m model) viewAwakening() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("A R I S E") + "\n\n")
	b.WriteString(m.nameInput.View() + "\n")
	b.WriteString(m.ageInput.View() + "\n")
	b.WriteString(m.goalInput.View() + "\n\n")
	b.WriteString(helpStyle.Render("tab: next field • enter: confirm • ctrl+c: quit"))
	if m.status != "" {
		b.WriteString("\n" + urgentStyle.Render(m.status))
	}
	return b.String()
}

func (m model) viewHUD() string {
	st := m.engine.Snapshot()
	var b strings.Builder

	l := st.Ledger
	header := fmt.Sprintf("%s  RANK %s  %s  LV %d  %d/%d EXP  %dG",
		l.PlayerName, ledger.Rank(l.Level), ledger.JobTitle(l.Level),
		l.Level, l.Exp, l.MaxExp, l.Gold)
	b.WriteString(titleStyle.Render(header) + "\n")

	var tabs []string
	for i, name := range tabNames {
		if tab(i) == m.activeTab {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}
	b.WriteString(strings.Join(tabs, "  ") + "\n\n")

	switch m.activeTab {
	case tabStatus:
		b.WriteString(m.viewStatus(&st))
	case tabQuests:
		b.WriteString(m.viewQuests(&st))
	case tabSkills:
		b.WriteString(m.viewSkills(&st))
	case tabItems:
		b.WriteString(m.viewItems(&st))
	case tabChat:
		b.WriteString(m.chatView.View() + "\n" + m.chatInput.View())
	}

	b.WriteString("\n\n" + helpStyle.Render(m.helpLine()))
	if m.status != "" {
		b.WriteString("\n" + dimStyle.Render(m.status))
	}
	return b.String()
}

func (m model) helpLine() string {
	switch m.activeTab {
	case tabStatus:
		return "enter: allocate point • tab: next window • m: toggle mode • r: sync • q: quit"
	case tabQuests:
		return "p: progress • enter: complete • x: dismiss • tab: next window • q: quit"
	case tabSkills:
		return "enter: pass verification test • tab: next window • q: quit"
	case tabItems:
		return "enter: toggle owned • tab: next window • q: quit"
	default:
		return "i or enter: type • esc: stop typing • tab: next window • q: quit"
	}
}

func (m model) viewStatus(st *models.State) string {
	l := st.Ledger
	values := []int{l.Strength, l.Agility, l.Vitality, l.Sense, l.Intelligence, l.Will}
	var b strings.Builder
	for i, attr := range ledger.Attributes {
		line := fmt.Sprintf("%-14s %3d %s", strings.ToUpper(string(attr)), values[i], bar(values[i], 100, 24))
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(fmt.Sprintf("\nunallocated points: %d   fatigue: %d/100   failed missions: %d\n",
		l.UnallocatedPoints, l.Fatigue, l.FailedMissions))
	b.WriteString(dimStyle.Render("mode: " + string(l.Mode)))
	return b.String()
}

func (m model) viewQuests(st *models.State) string {
	if len(st.Quests) == 0 {
		return dimStyle.Render("no active quests. waiting for the next sync")
	}
	var b strings.Builder
	for i, q := range st.Quests {
		mark := " "
		if q.Completed {
			mark = doneStyle.Render("✓")
		}
		deadline := ""
		if q.Deadline != nil {
			left := time.Until(*q.Deadline)
			if left < 0 {
				deadline = urgentStyle.Render(" EXPIRED")
			} else {
				deadline = dimStyle.Render(fmt.Sprintf(" %s left", left.Round(time.Minute)))
			}
		}
		line := fmt.Sprintf("%s [%-9s] %-34s %d/%d%s", mark, q.Kind, q.Title, q.Progress, q.Target, deadline)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
		if i == m.cursor && q.Description != "" {
			b.WriteString(dimStyle.Render("    "+q.Description) + "\n")
		}
	}
	return b.String()
}

func (m model) viewSkills(st *models.State) string {
	if len(st.Skills) == 0 {
		return dimStyle.Render("no skills yet. waiting for the next sync")
	}
	var b strings.Builder
	for i, s := range st.Skills {
		mark := dimStyle.Render("locked")
		if s.Unlocked {
			mark = doneStyle.Render("UNLOCKED")
		}
		line := fmt.Sprintf("%-28s %-10s %s", s.Name, s.Kind, mark)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
		if i == m.cursor {
			b.WriteString(dimStyle.Render(fmt.Sprintf("    test: %s (%.0f %s)", s.TestTask, s.TestTarget, s.TestUnit)) + "\n")
		}
	}
	return b.String()
}

func (m model) viewItems(st *models.State) string {
	var b strings.Builder
	for i, it := range st.Items {
		mark := dimStyle.Render("-")
		if it.Owned {
			mark = doneStyle.Render("owned")
		}
		line := fmt.Sprintf("%-24s %-12s %s", it.Name, it.Category, mark)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func bar(value, max, width int) string {
	if max <= 0 {
		max = 1
	}
	filled := value * width / max
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("·", width-filled) + "]"
}

// Run starts the HUD and blocks until the user quits.
func Run(eng *engine.Engine, every time.Duration) error {
	if every <= 0 {
		every = time.Minute
	}
	p := tea.NewProgram(newModel(eng, every), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
