// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/slsrepo/t2bootstrap/internal/bootstrap"
	"github.com/slsrepo/t2bootstrap/internal/config"
	"github.com/slsrepo/t2bootstrap/internal/preflight"
	"github.com/slsrepo/t2bootstrap/internal/runlog"
	"github.com/slsrepo/t2bootstrap/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	// Colors
	brandPrimary = lipgloss.Color("#F5A623") // Amber - Arch-on-Mac warmth
	brandAccent  = lipgloss.Color("#10B981") // Emerald
	brandError   = lipgloss.Color("#EF4444") // Red
	brandWarn    = lipgloss.Color("#F59E0B") // Amber
	textMuted    = lipgloss.Color("#6B7280") // Gray

	// Styles
	titleStyle = lipgloss.NewStyle().
			Foreground(brandPrimary).
			Bold(true).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(textMuted).
			Italic(true)

	successStyle = lipgloss.NewStyle().
			Foreground(brandAccent).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(brandError).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(brandWarn)

	highlightStyle = lipgloss.NewStyle().
			Foreground(brandPrimary).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(textMuted)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brandPrimary).
			Padding(1, 2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(brandPrimary).
			Bold(true)

	unselectedStyle = lipgloss.NewStyle().
			Foreground(textMuted)
)

// =============================================================================
// ASCII ART
// =============================================================================

const logo = `
    ████████╗██████╗  █████╗ ██████╗  ██████╗██╗  ██╗
    ╚══██╔══╝╚════██╗██╔══██╗██╔══██╗██╔════╝██║  ██║
       ██║    █████╔╝███████║██████╔╝██║     ███████║
       ██║   ██╔═══╝ ██╔══██║██╔══██╗██║     ██╔══██║
       ██║   ███████╗██║  ██║██║  ██║╚██████╗██║  ██║
       ╚═╝   ╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝╚═╝  ╚═╝
`

const tagline = "Arch Linux on your T2 Mac, without the ritual"

// =============================================================================
// MODEL
// =============================================================================

// phase is the TUI state machine position.
type phase int

const (
	phaseWelcome phase = iota
	phasePreflight
	phaseRunning
	phaseFailed
	phaseComplete
)

// stepState mirrors the sequence progress for rendering.
type stepState int

const (
	stepPending stepState = iota
	stepRunning
	stepOK
	stepFailed
)

// outputTailLines is how many lines of tool output stay visible.
const outputTailLines = 10

// model is the bubbletea model for the guided bootstrap.
type model struct {
	cfg  *config.Config
	opts options

	phase  phase
	width  int
	height int

	spinner  spinner.Model
	progress progress.Model

	// Preflight state
	checks       []preflight.Check
	results      []preflight.Result
	currentCheck int

	// Sequence state
	steps       []bootstrap.Step
	stepStates  []stepState
	activeStep  int
	outputTail  []string
	downloading bool
	downloadPct float64
	events      chan tea.Msg
	cancel      context.CancelFunc
	record      *runlog.Record
	runLogPath  string
	seqErr      error
	finished    bool

	// Completion screen
	launchSelected bool
}

func newModel(cfg *config.Config, opts options) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(brandPrimary)

	steps := bootstrap.Sequence(cfg)

	return &model{
		cfg:            cfg,
		opts:           opts,
		phase:          phaseWelcome,
		spinner:        s,
		progress:       progress.New(progress.WithDefaultGradient()),
		checks:         preflight.Checks(cfg, os.Geteuid()),
		steps:          steps,
		stepStates:     make([]stepState, len(steps)),
		launchSelected: true,
	}
}

// Init starts the spinner.
func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

// =============================================================================
// MESSAGES
// =============================================================================

// checkDoneMsg carries one finished preflight check.
type checkDoneMsg struct {
	index  int
	result preflight.Result
}

// Sequence events, sent by the runner goroutine over m.events.
type (
	stepStartedMsg  struct{ index int }
	stepFinishedMsg struct {
		index int
		err   error
	}
	outputLineMsg struct{ line string }
	downloadMsg   struct{ written, total int64 }
	runDoneMsg    struct{ err error }
)

// runCheck executes one preflight check off the UI goroutine.
func (m *model) runCheck(index int) tea.Cmd {
	check := m.checks[index]
	return func() tea.Msg {
		return checkDoneMsg{index: index, result: check.Run(context.Background())}
	}
}

// waitForEvent pumps the next sequence event into the update loop.
func (m *model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// =============================================================================
// SEQUENCE WIRING
// =============================================================================

// tuiObserver forwards runner events to the UI channel.
type tuiObserver struct {
	events chan<- tea.Msg
}

func (o *tuiObserver) StepStarted(index int, _ bootstrap.Step) {
	o.events <- stepStartedMsg{index: index}
}

func (o *tuiObserver) StepFinished(index int, _ bootstrap.Step, err error, _ time.Duration) {
	o.events <- stepFinishedMsg{index: index, err: err}
}

// startSequence launches the runner goroutine and returns the command that
// listens for its events.
func (m *model) startSequence() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.events = make(chan tea.Msg, 1024)
	m.record = runlog.New(version)

	// Output and progress arrive at terminal speed; drop rather than stall
	// the child process when the UI falls behind.
	sink := &bootstrap.Sink{
		OutputFn: func(line string) {
			select {
			case m.events <- outputLineMsg{line: line}:
			default:
			}
		},
		ProgressFn: func(written, total int64) {
			select {
			case m.events <- downloadMsg{written: written, total: total}:
			default:
			}
		},
	}

	obs := bootstrap.MultiObserver(&tuiObserver{events: m.events}, m.record)
	runner := bootstrap.NewRunner(m.steps, sink, obs)

	go func() {
		err := runner.Run(ctx)
		m.record.Finish(err)
		m.events <- runDoneMsg{err: err}
	}()

	return m.waitForEvent()
}

// =============================================================================
// UPDATE
// =============================================================================

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		progressWidth := msg.Width - 24
		if progressWidth < 20 {
			progressWidth = 20
		}
		if progressWidth > 80 {
			progressWidth = 80
		}
		m.progress.Width = progressWidth
		return m, m.spinner.Tick

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case checkDoneMsg:
		m.results = append(m.results, msg.result)
		m.currentCheck++
		if m.currentCheck < len(m.checks) {
			return m, m.runCheck(m.currentCheck)
		}
		return m, nil

	case stepStartedMsg:
		m.activeStep = msg.index
		m.stepStates[msg.index] = stepRunning
		m.downloading = false
		m.downloadPct = 0
		return m, m.waitForEvent()

	case stepFinishedMsg:
		if msg.err != nil {
			m.stepStates[msg.index] = stepFailed
		} else {
			m.stepStates[msg.index] = stepOK
		}
		m.downloading = false
		return m, m.waitForEvent()

	case outputLineMsg:
		m.outputTail = append(m.outputTail, msg.line)
		if len(m.outputTail) > outputTailLines {
			m.outputTail = m.outputTail[len(m.outputTail)-outputTailLines:]
		}
		return m, m.waitForEvent()

	case downloadMsg:
		if msg.total > 0 {
			m.downloading = true
			m.downloadPct = float64(msg.written) / float64(msg.total)
		}
		return m, m.waitForEvent()

	case runDoneMsg:
		m.finished = true
		m.seqErr = msg.err
		m.runLogPath = saveRunLog(m.record)
		if msg.err != nil {
			m.phase = phaseFailed
		} else {
			m.phase = phaseComplete
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes key presses.
func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.cancel != nil {
			m.cancel()
		}
		// Quitting never launches, even from the completion screen.
		m.launchSelected = false
		return m, tea.Quit

	case "enter", " ":
		return m.handleSelect()

	case "up", "k", "down", "j", "tab":
		if m.phase == phaseComplete {
			m.launchSelected = !m.launchSelected
		}
		return m, nil
	}

	return m, nil
}

// handleSelect advances the state machine.
func (m *model) handleSelect() (tea.Model, tea.Cmd) {
	switch m.phase {
	case phaseWelcome:
		m.phase = phasePreflight
		return m, m.runCheck(0)

	case phasePreflight:
		if m.currentCheck < len(m.checks) {
			return m, nil // checks still running
		}
		if m.requiredFailed() && !m.opts.skipPreflight {
			return m, nil // blocked; operator can only quit
		}
		m.phase = phaseRunning
		return m, m.startSequence()

	case phaseRunning:
		return m, nil // nothing to select while the sequence runs

	case phaseFailed:
		return m, tea.Quit

	case phaseComplete:
		// Launch happens after the TUI releases the terminal; see runTUI.
		return m, tea.Quit
	}

	return m, nil
}

func (m *model) requiredFailed() bool {
	return preflight.RequiredFailed(m.checks, m.results)
}

// =============================================================================
// VIEW
// =============================================================================

func (m *model) View() string {
	switch m.phase {
	case phaseWelcome:
		return m.viewWelcome()
	case phasePreflight:
		return m.viewPreflight()
	case phaseRunning:
		return m.viewRunning()
	case phaseFailed:
		return m.viewFailed()
	case phaseComplete:
		return m.viewComplete()
	}
	return ""
}

func (m *model) viewWelcome() string {
	var s strings.Builder

	s.WriteString(lipgloss.NewStyle().Foreground(brandPrimary).Bold(true).Render(logo))
	s.WriteString("\n")
	s.WriteString(subtitleStyle.Render("    " + tagline))
	s.WriteString("\n\n")
	s.WriteString(dimStyle.Render(fmt.Sprintf("    Version %s", version)))
	s.WriteString("\n\n")

	welcome := fmt.Sprintf(`
This bootstrap will:

  * Check this live environment
  * Refresh the package signing keyring
  * Install the terminal UI toolkit
  * Download %s
  * Create a Python environment in %s

It needs a network connection and runs pacman as root.
`, m.cfg.Installer.Output, m.cfg.Venv.Dir)
	s.WriteString(boxStyle.Render(welcome))
	s.WriteString("\n\n")

	s.WriteString(highlightStyle.Render("  Press ENTER to begin"))
	s.WriteString(dimStyle.Render("  |  Press Q to quit"))

	return m.center(s.String())
}

func (m *model) viewPreflight() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("  Environment Check"))
	s.WriteString("\n\n")

	for idx, check := range m.checks {
		var icon, message string
		var style lipgloss.Style

		if idx >= len(m.results) {
			if idx == m.currentCheck {
				icon = m.spinner.View()
			} else {
				icon = "[ ]"
			}
			message = "Checking..."
			style = dimStyle
		} else {
			r := m.results[idx]
			message = r.Message
			switch r.Status {
			case preflight.Pass:
				icon, style = "[OK]", successStyle
			case preflight.Warn:
				icon, style = "[!!]", warningStyle
			default:
				icon, style = "[FAIL]", errorStyle
			}
		}

		s.WriteString(fmt.Sprintf("  %s %s", style.Render(icon), check.Name))
		s.WriteString(dimStyle.Render(" - " + message))
		s.WriteString("\n")

		if idx < len(m.results) && m.results[idx].Fix != "" {
			s.WriteString(dimStyle.Render("      -> " + m.results[idx].Fix))
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")

	if m.currentCheck >= len(m.checks) {
		switch {
		case m.requiredFailed() && !m.opts.skipPreflight:
			s.WriteString(errorStyle.Render("  Required checks failed."))
			s.WriteString("\n\n")
			s.WriteString(dimStyle.Render("  Fix the environment and re-run, or restart with --skip-preflight."))
			s.WriteString("\n")
			s.WriteString(highlightStyle.Render("  Press Q to quit"))
		case m.requiredFailed():
			s.WriteString(warningStyle.Render("  Required checks failed (--skip-preflight is set)."))
			s.WriteString("\n\n")
			s.WriteString(highlightStyle.Render("  Press ENTER to start anyway"))
		default:
			s.WriteString(successStyle.Render("  Environment looks good."))
			s.WriteString("\n\n")
			s.WriteString(highlightStyle.Render("  Press ENTER to start the bootstrap"))
		}
	}

	return m.center(s.String())
}

func (m *model) viewRunning() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("  Bootstrapping"))
	s.WriteString("\n\n")

	for idx, step := range m.steps {
		var icon string
		var style lipgloss.Style

		switch m.stepStates[idx] {
		case stepRunning:
			icon, style = m.spinner.View(), highlightStyle
		case stepOK:
			icon, style = "[OK]", successStyle
		case stepFailed:
			icon, style = "[FAIL]", errorStyle
		default:
			icon, style = "[ ]", dimStyle
		}

		s.WriteString(fmt.Sprintf("  %s %s\n", style.Render(icon), step.Title))
	}

	if m.downloading {
		s.WriteString("\n  " + m.progress.ViewAs(m.downloadPct) + "\n")
	}

	if len(m.outputTail) > 0 {
		s.WriteString("\n")
		maxWidth := m.width - 8
		if maxWidth < 20 {
			maxWidth = 20
		}
		for _, line := range m.outputTail {
			s.WriteString(dimStyle.Render("    " + util.TruncateWidth(line, maxWidth)))
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(dimStyle.Render("  Q aborts the current step and exits"))

	return m.center(s.String())
}

func (m *model) viewFailed() string {
	var s strings.Builder

	s.WriteString(errorStyle.Render("  Bootstrap failed"))
	s.WriteString("\n\n")

	content := fmt.Sprintf(`
%v

Nothing after the failed step was run. The live environment is
unchanged beyond what the failing tool reported above; re-running
t2bootstrap is safe.
`, m.seqErr)
	s.WriteString(boxStyle.BorderForeground(brandError).Render(content))
	s.WriteString("\n\n")

	if m.runLogPath != "" {
		s.WriteString(dimStyle.Render("  Run log: " + m.runLogPath))
		s.WriteString("\n\n")
	}
	s.WriteString(highlightStyle.Render("  Press ENTER or Q to exit"))

	return m.center(s.String())
}

func (m *model) viewComplete() string {
	var s strings.Builder

	successArt := `
    +------------------------------------------+
    |                                          |
    |        *** Bootstrap Complete! ***       |
    |                                          |
    +------------------------------------------+
`
	s.WriteString(successStyle.Render(successArt))
	s.WriteString("\n")

	s.WriteString(dimStyle.Render(fmt.Sprintf(`
  Installer script:     %s
  Virtual environment:  %s
`, m.cfg.Installer.Output, m.cfg.Venv.Dir)))
	s.WriteString("\n")

	s.WriteString("  Choose your next step:\n\n")

	launch := "  Launch the installer now"
	if m.launchSelected {
		s.WriteString(selectedStyle.Render("  > " + launch))
		s.WriteString(highlightStyle.Render("  <- Starts t2archinstall in this terminal"))
	} else {
		s.WriteString(unselectedStyle.Render("    " + launch))
	}
	s.WriteString("\n\n")

	closeText := "  Exit"
	if !m.launchSelected {
		s.WriteString(selectedStyle.Render("  > " + closeText))
		s.WriteString(dimStyle.Render(fmt.Sprintf("  <- Run it later: %s %s", bootstrap.VenvPython(m.cfg), m.cfg.Installer.Output)))
	} else {
		s.WriteString(unselectedStyle.Render("    " + closeText))
	}
	s.WriteString("\n\n")

	s.WriteString(dimStyle.Render("  Up/Down or Tab to select  |  Enter to confirm"))
	if m.runLogPath != "" {
		s.WriteString("\n\n")
		s.WriteString(dimStyle.Render("  Run log: " + m.runLogPath))
	}

	return m.center(s.String())
}

// center pads content toward the vertical center of the terminal.
func (m *model) center(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}

	lines := strings.Split(content, "\n")
	topPadding := (m.height - len(lines)) / 3
	if topPadding < 0 {
		topPadding = 0
	}

	var s strings.Builder
	for i := 0; i < topPadding; i++ {
		s.WriteString("\n")
	}
	s.WriteString(content)
	return s.String()
}

// =============================================================================
// ENTRY
// =============================================================================

// runTUI drives the interactive bootstrap and returns the process exit code.
func runTUI(cfg *config.Config, opts options) int {
	p := tea.NewProgram(newModel(cfg, opts), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "t2bootstrap: %v\n", err)
		return 1
	}

	m := final.(*model)
	if m.seqErr != nil {
		fmt.Fprintf(os.Stderr, "t2bootstrap: %v\n", m.seqErr)
		if m.runLogPath != "" {
			fmt.Fprintf(os.Stderr, "Run log: %s\n", m.runLogPath)
		}
		return 1
	}
	if !m.finished {
		if m.record != nil {
			// Aborted mid-sequence.
			return 1
		}
		// Quit from the welcome or preflight screen; nothing was attempted.
		return 0
	}

	if m.launchSelected || opts.run {
		ctx, cancel := signalContext()
		defer cancel()
		return launchInstaller(ctx, cfg)
	}
	return 0
}
