package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

// chromeLines is how many terminal rows the header and footer take.
const chromeLines = 3

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"})

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
)

// Sources is the part of the source service the preview drives.
type Sources interface {
	Start(ctx context.Context) error
	Switch(ctx context.Context, request domain.SourceRequest) error
}

// Options configures a preview model.
type Options struct {
	// Step renders one frame onto Surface, usually Renderer.AdvanceFrame.
	Step    func() error
	Surface *Surface
	Sources Sources
	Bus     ports.EventBus

	// Backend is shown in the header.
	Backend string
	FPS     int
}

type tickMsg time.Time
type statusMsg string
type switchDoneMsg struct{ err error }

// Model is the bubbletea model of the terminal preview.
type Model struct {
	opts     Options
	interval time.Duration

	status    string
	frameErr  error
	sourceErr error
	frames    int64
	width     int
	height    int
	quitting  bool

	statusCh chan string
	subID    domain.SubscriptionID
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewModel creates a preview model and subscribes it to status events.
func NewModel(opts Options) Model {
	fps := opts.FPS
	if fps <= 0 {
		fps = 30
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		opts:     opts,
		interval: time.Second / time.Duration(fps),
		statusCh: make(chan string, 16),
		ctx:      ctx,
		cancel:   cancel,
	}

	if opts.Bus != nil {
		ch := m.statusCh
		m.subID = opts.Bus.Subscribe(domain.EventStatusChanged, func(e domain.Event) {
			s, ok := e.(domain.StatusChangedEvent)
			if !ok {
				return
			}
			select {
			case ch <- s.Message:
			default: // the view only needs the latest lines
			}
		})
	}
	return m
}

// Close cancels pending source commands and unsubscribes from the bus.
func (m Model) Close() {
	m.cancel()
	if m.opts.Bus != nil && m.subID != "" {
		m.opts.Bus.Unsubscribe(m.subID)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tick(), m.listenStatus(), tea.SetWindowTitle("gospectrum")}
	if m.opts.Sources != nil {
		cmds = append(cmds, m.command(m.opts.Sources.Start))
	}
	return tea.Batch(cmds...)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// listenStatus waits for the next status line.
func (m Model) listenStatus() tea.Cmd {
	ch, done := m.statusCh, m.ctx.Done()
	return func() tea.Msg {
		select {
		case s := <-ch:
			return statusMsg(s)
		case <-done:
			return nil
		}
	}
}

func (m Model) command(run func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return switchDoneMsg{err: run(ctx)}
	}
}

func (m Model) switchTo(kind domain.SourceKind) tea.Cmd {
	if m.opts.Sources == nil {
		return nil
	}
	return m.command(func(ctx context.Context) error {
		return m.opts.Sources.Switch(ctx, domain.SourceRequest{Kind: kind})
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(msg) {
			m.quitting = true
			m.Close()
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
		switch msg.String() {
		case "s":
			return m, m.switchTo(domain.SourceSystem)
		case "m":
			return m, m.switchTo(domain.SourceMicrophone)
		case "d":
			return m, m.switchTo(domain.SourceDemo)
		}
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		if m.opts.Step != nil {
			m.frameErr = m.opts.Step()
			m.frames++
		}
		return m, m.tick()

	case statusMsg:
		m.status = string(msg)
		m.sourceErr = nil
		return m, m.listenStatus()

	case switchDoneMsg:
		if msg.err != nil && m.ctx.Err() == nil {
			m.sourceErr = msg.err
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.opts.Surface != nil {
			m.opts.Surface.Resize(msg.Width, max(msg.Height-chromeLines, 0))
		}
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := headerStyle.Render(fmt.Sprintf("gospectrum  %s  %d fps", m.opts.Backend, time.Second/m.interval))
	status := statusStyle.Render(m.status)
	switch {
	case m.frameErr != nil:
		status = errorStyle.Render(m.frameErr.Error())
	case m.sourceErr != nil:
		status = errorStyle.Render(m.sourceErr.Error())
	}

	body := ""
	if m.opts.Surface != nil {
		body = m.opts.Surface.Render()
	}

	return header + "\n" + status + "\n" + body + "\n" + helpStyle.Render(helpText())
}

// Frames returns how many frames were stepped.
func (m Model) Frames() int64 {
	return m.frames
}

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText() string {
	return "s system  m microphone  d demo  q quit"
}
