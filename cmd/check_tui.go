package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// CheckProgressMsg represents a progress update from the check run.
type CheckProgressMsg struct {
	Type   string // "status", "resolving", "compatible", "fallback", "incompatible", "dependency", "download", "error", "summary", "done"
	Name   string
	Detail string
}

// CheckModel controls the UI for the check command when --tui is set.
type CheckModel struct {
	spinner      spinner.Model
	progressChan chan CheckProgressMsg
	opts         checkOptions

	// State
	status       string
	compatible   []string
	fallbacks    []string
	incompatible []string
	errors       []string
	summary      string
	done         bool

	// Counters
	totalChecked int
}

func initialCheckModel(opts checkOptions) CheckModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return CheckModel{
		spinner:      s,
		progressChan: make(chan CheckProgressMsg, 100), // Buffer slightly to avoid blocking
		opts:         opts,
		status:       "Initializing...",
		compatible:   []string{},
		fallbacks:    []string{},
		incompatible: []string{},
		errors:       []string{},
	}
}

func (m CheckModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.startCheck(),
		m.waitForActivity(),
	)
}

func (m CheckModel) startCheck() tea.Cmd {
	return func() tea.Msg {
		// Run the check in a separate goroutine feeding the channel; the
		// pipeline itself stays sequential.
		go func() {
			defer close(m.progressChan)
			runCheck(m.opts, m.progressChan)
		}()
		return nil
	}
}

func (m CheckModel) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.progressChan
		if !ok {
			return CheckProgressMsg{Type: "done"}
		}
		return msg
	}
}

func (m CheckModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// If done, allow any key to exit
		if m.done {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case CheckProgressMsg:
		switch msg.Type {
		case "done":
			m.done = true
			m.status = "Finished"
			return m, tea.Quit

		case "status":
			m.status = msg.Detail

		case "resolving":
			m.status = fmt.Sprintf("Checking %s...", msg.Name)
			m.totalChecked++

		case "compatible":
			m.compatible = append(m.compatible, fmt.Sprintf("%s (%s)", msg.Name, msg.Detail))

		case "fallback":
			m.fallbacks = append(m.fallbacks, fmt.Sprintf("%s: %s", msg.Name, msg.Detail))

		case "incompatible":
			m.incompatible = append(m.incompatible, msg.Name)

		case "dependency", "download":
			m.status = fmt.Sprintf("%s: %s", msg.Name, msg.Detail)

		case "error":
			m.errors = append(m.errors, fmt.Sprintf("%s: %s", msg.Name, msg.Detail))

		case "summary":
			m.summary = msg.Detail
		}

		return m, m.waitForActivity()
	}

	return m, nil
}

func (m CheckModel) View() string {
	var symbol string
	if m.done {
		symbol = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("✓")
	} else {
		symbol = m.spinner.View()
	}

	s := fmt.Sprintf("\n %s %s\n\n", symbol, m.status)

	if len(m.compatible) > 0 {
		s += lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("Compatible:") + "\n"
		start := 0
		if len(m.compatible) > 5 && !m.done {
			start = len(m.compatible) - 5
		}
		for i := start; i < len(m.compatible); i++ {
			s += fmt.Sprintf("  • %s\n", m.compatible[i])
		}
		s += "\n"
	}

	if len(m.fallbacks) > 0 {
		s += lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render("Fallback proposals:") + "\n"
		for _, f := range m.fallbacks {
			s += fmt.Sprintf("  • %s\n", f)
		}
		s += "\n"
	}

	if len(m.incompatible) > 0 {
		s += lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("Incompatible:") + "\n"
		for _, name := range m.incompatible {
			s += fmt.Sprintf("  • %s\n", name)
		}
		s += "\n"
	}

	if len(m.errors) > 0 {
		s += lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("Errors:") + "\n"
		for _, e := range m.errors {
			s += fmt.Sprintf("  • %s\n", e)
		}
		s += "\n"
	}

	if m.done {
		s += lipgloss.NewStyle().Bold(true).Render(m.summary) + "\n"
	}

	return s
}
