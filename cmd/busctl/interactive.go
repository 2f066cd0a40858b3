package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/intf-bus/errors"
	"github.com/wippyai/intf-bus/iid"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	originStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	cfg      *Config
	graph    *Graph
	filename string
	origins  []originInfo
	input    textinput.Model
	result   string
	selected int
	state    modelState
}

type originInfo struct {
	name   string
	detail string
}

type modelState int

const (
	stateSelectOrigin modelState = iota
	stateInputIdentity
	stateShowResult
)

func newInteractiveModel(filename string) *interactiveModel {
	return &interactiveModel{
		filename: filename,
		state:    stateSelectOrigin,
	}
}

type loadedMsg struct {
	err     error
	cfg     *Config
	graph   *Graph
	origins []originInfo
}

type queryResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadTopology
}

func (m *interactiveModel) loadTopology() tea.Msg {
	cfg, err := LoadConfig(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	graph, err := BuildGraph(cfg)
	if err != nil {
		return loadedMsg{err: err}
	}

	var origins []originInfo
	for _, name := range graph.OriginNames() {
		if s := graph.Service(name); s != nil {
			host := "detached"
			if s.Host() != nil {
				host = describeBus(cfg, graph, s.Host().Serial())
			}
			origins = append(origins, originInfo{
				name:   name,
				detail: "service on " + host,
			})
			continue
		}
		b := graph.Bus(name)
		origins = append(origins, originInfo{
			name: name,
			detail: fmt.Sprintf("bus level %d, %d interfaces, %d buses, %d siblings",
				b.Level(), b.Interfaces(), b.ConnectedBuses(), b.Siblings()),
		})
	}

	return loadedMsg{cfg: cfg, graph: graph, origins: origins}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.graph != nil {
				m.graph.Close()
			}
			return m, tea.Quit

		case "q":
			if m.state != stateInputIdentity {
				if m.graph != nil {
					m.graph.Close()
				}
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectOrigin && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectOrigin && m.selected < len(m.origins)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectOrigin:
				m.prepareInput()
				m.state = stateInputIdentity

			case stateInputIdentity:
				return m, m.runQuery

			case stateShowResult:
				m.state = stateSelectOrigin
				m.result = ""
				m.err = nil
			}

		case "esc":
			switch m.state {
			case stateInputIdentity:
				m.state = stateSelectOrigin
			case stateShowResult:
				m.state = stateSelectOrigin
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.cfg = msg.cfg
		m.graph = msg.graph
		m.origins = msg.origins

	case queryResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputIdentity {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) prepareInput() {
	ti := textinput.New()
	ti.Placeholder = "identity name"
	ti.Prompt = "query: "
	ti.Width = 40
	ti.Focus()
	m.input = ti
}

func (m *interactiveModel) runQuery() tea.Msg {
	name := strings.TrimSpace(m.input.Value())
	if name == "" {
		return queryResultMsg{err: fmt.Errorf("empty identity name")}
	}

	origin := m.graph.Origin(m.origins[m.selected].name)
	if origin == nil {
		return queryResultMsg{err: fmt.Errorf("origin %q vanished", m.origins[m.selected].name)}
	}

	got, err := origin.QueryInterface(iid.New(name))
	if errors.IsNotResolved(err) {
		return queryResultMsg{result: "not resolved"}
	}
	if err != nil {
		return queryResultMsg{err: err}
	}
	defer got.Unref()

	return queryResultMsg{result: describeResolved(got)}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.origins) == 0 {
		return "Loading topology..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Bus Explorer"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectOrigin:
		b.WriteString("Select an origin to query from:\n\n")
		for i, o := range m.origins {
			line := originStyle.Render(o.name) + "  " + detailStyle.Render(o.detail)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + o.name + "  " + o.detail))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter query • q quit"))

	case stateInputIdentity:
		o := m.origins[m.selected]
		b.WriteString(fmt.Sprintf("Query from %s\n\n", originStyle.Render(o.name)))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter query • esc back"))

	case stateShowResult:
		o := m.origins[m.selected]
		b.WriteString(fmt.Sprintf("Query from %s:\n\n", originStyle.Render(o.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(filename string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	p := tea.NewProgram(newInteractiveModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
