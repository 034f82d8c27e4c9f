package tui

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/tessro/lookout/internal/browser"
	"github.com/tessro/lookout/internal/core"
	"github.com/tessro/lookout/internal/dashboard"
	"github.com/tessro/lookout/internal/journal"
	"github.com/tessro/lookout/internal/stream"
	"github.com/tessro/lookout/internal/tui/components"
	"github.com/tessro/lookout/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelDevices Panel = iota
	PanelControl
	PanelGallery
	PanelHistory
	panelCount
)

const (
	historyLimit  = 20
	controlHeight = 9
)

// Journal stores and lists commands issued from this machine.
type Journal interface {
	dashboard.Journal
	Recent(ctx context.Context, deviceUUID string, limit int) ([]journal.Entry, error)
}

// Options configures the dashboard.
type Options struct {
	Backend        core.Backend
	Notifier       core.Notifier
	Journal        Journal
	DevicesTable   string
	CommandsTable  string
	StreamInterval time.Duration
	RequestTimeout time.Duration
	Theme          string
	OpenURL        func(url string) error
}

// App holds the long-lived resources behind the model. The model is copied
// on every update; everything that must outlive one update lives here.
type App struct {
	backend      core.Backend
	notifier     core.Notifier
	journal      Journal
	dispatcher   *dashboard.Dispatcher
	devicesTable string
	timeout      time.Duration
	openURL      func(string) error

	ticker *stream.Ticker
	events chan tea.Msg

	mu     sync.Mutex
	sub    core.Subscription
	closed bool
}

// NewApp creates the dashboard resources.
func NewApp(opts Options) *App {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	openURL := opts.OpenURL
	if openURL == nil {
		openURL = browser.Open
	}

	var dj dashboard.Journal
	if opts.Journal != nil {
		dj = opts.Journal
	}

	return &App{
		backend:      opts.Backend,
		notifier:     opts.Notifier,
		journal:      opts.Journal,
		dispatcher:   dashboard.NewDispatcher(opts.Backend, opts.CommandsTable, dj),
		devicesTable: opts.DevicesTable,
		timeout:      timeout,
		openURL:      openURL,
		ticker:       stream.NewTicker(opts.StreamInterval),
		events:       make(chan tea.Msg, 16),
	}
}

// push hands a background event to the update loop. Events are dropped
// rather than blocking when the loop falls behind.
func (a *App) push(msg tea.Msg) {
	select {
	case a.events <- msg:
	default:
		log.Debug().Msgf("dropped event %T", msg)
	}
}

// listen waits for the next background event.
func (a *App) listen() tea.Cmd {
	return func() tea.Msg {
		return <-a.events
	}
}

func (a *App) setSubscription(sub core.Subscription) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		_ = sub.Close()
		return
	}
	a.sub = sub
}

// Close stops the stream timer and tears down the change channel.
func (a *App) Close() error {
	a.ticker.Stop()

	a.mu.Lock()
	sub := a.sub
	a.sub = nil
	a.closed = true
	a.mu.Unlock()

	if sub != nil {
		return sub.Close()
	}
	return nil
}

// Model is the main TUI model
type Model struct {
	app          *App
	width        int
	height       int
	focusedPanel Panel

	// State
	state   dashboard.State
	history []journal.Entry
	initSeq uint64
	live    bool

	// Components
	devicesView *components.Devices
	controlView *components.Control
	galleryView *components.Gallery
	historyView *components.History
	spinner     spinner.Model
	help        help.Model
	keys        keyMap

	// Overlays
	showHelp bool
	alert    string

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(app *App) Model {
	m := Model{
		app:          app,
		focusedPanel: PanelDevices,
		devicesView:  components.NewDevices(),
		controlView:  components.NewControl(),
		galleryView:  components.NewGallery(),
		historyView:  components.NewHistory(),
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Streaming)),
		help:         help.New(),
		keys:         defaultKeys(),
	}
	m.state, m.initSeq = m.state.BeginRefresh()
	return m
}

// Messages
type devicesMsg struct {
	seq     uint64
	devices []core.Device
	err     error
}

type mediaMsg struct {
	seq      uint64
	deviceID string
	files    []core.MediaFile
	err      error
}

type streamTickMsg struct{ deviceID string }
type changeMsg core.ChangeEvent
type subscribedMsg struct{ err error }

type commandSentMsg struct {
	cmd core.Command
	err error
}

type historyMsg struct {
	entries []journal.Entry
	err     error
}

type openedMsg struct{ err error }

// Commands
func (m Model) fetchDevices(seq uint64) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.timeout)
		defer cancel()

		devices, err := dashboard.FetchDevices(ctx, app.backend, app.devicesTable)
		return devicesMsg{seq: seq, devices: devices, err: err}
	}
}

func (m Model) loadMedia(seq uint64, deviceID string) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.timeout)
		defer cancel()

		files, err := dashboard.LoadMedia(ctx, app.backend, deviceID)
		return mediaMsg{seq: seq, deviceID: deviceID, files: files, err: err}
	}
}

func (m Model) subscribe() tea.Cmd {
	app := m.app
	if app.notifier == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.timeout)
		defer cancel()

		table := app.devicesTable
		if table == "" {
			table = core.TableDevices
		}
		sub, err := app.notifier.Subscribe(ctx, table, core.EventAll, func(ev core.ChangeEvent) {
			app.push(changeMsg(ev))
		})
		if err != nil {
			return subscribedMsg{err: err}
		}
		app.setSubscription(sub)
		return subscribedMsg{}
	}
}

func (m Model) sendCommand(device core.Device, cmd core.Command) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.timeout)
		defer cancel()

		err := app.dispatcher.Write(ctx, device, cmd)
		return commandSentMsg{cmd: cmd, err: err}
	}
}

func (m Model) fetchHistory() tea.Cmd {
	app := m.app
	if app.journal == nil {
		return nil
	}
	deviceUUID := ""
	if m.state.Selected != nil {
		deviceUUID = m.state.Selected.ID
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.timeout)
		defer cancel()

		entries, err := app.journal.Recent(ctx, deviceUUID, historyLimit)
		return historyMsg{entries: entries, err: err}
	}
}

func (m Model) openMedia(url string) tea.Cmd {
	open := m.app.openURL
	return func() tea.Msg {
		return openedMsg{err: open(url)}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchDevices(m.initSeq),
		m.subscribe(),
		m.app.listen(),
		m.fetchHistory(),
		m.spinner.Tick,
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case devicesMsg:
		m.state = m.state.RefreshComplete(msg.seq, msg.devices, msg.err)
		return m, nil

	case mediaMsg:
		m.state = m.state.MediaLoaded(msg.seq, msg.deviceID, msg.files, msg.err)
		return m, nil

	case streamTickMsg:
		var seq uint64
		var ok bool
		m.state, seq, ok = m.state.BeginTick(msg.deviceID)
		if !ok {
			return m, m.app.listen()
		}
		return m, tea.Batch(m.app.listen(), m.loadMedia(seq, msg.deviceID))

	case changeMsg:
		log.Debug().Str("type", string(msg.Type)).Str("table", msg.Table).Msg("registry change")
		var cmd tea.Cmd
		m, cmd = m.refresh()
		return m, tea.Batch(m.app.listen(), cmd)

	case subscribedMsg:
		if msg.err != nil {
			log.Error().Err(msg.err).Msg("subscribe to registry changes")
			return m, nil
		}
		m.live = true
		return m, nil

	case commandSentMsg:
		if msg.err != nil {
			m.alert = "Error: " + msg.err.Error()
		}
		return m, m.fetchHistory()

	case historyMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Msg("load command history")
			return m, nil
		}
		m.history = msg.entries
		return m, nil

	case openedMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Msg("open media")
		}
		return m, nil
	}

	return m, nil
}

func (m Model) refresh() (Model, tea.Cmd) {
	var seq uint64
	m.state, seq = m.state.BeginRefresh()
	return m, m.fetchDevices(seq)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The alert blocks everything until dismissed
	if m.alert != "" {
		if key.Matches(msg, m.keys.Dismiss) {
			m.alert = ""
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		var cmd tea.Cmd
		m, cmd = m.refresh()
		return m, tea.Batch(cmd, m.fetchHistory())

	case key.Matches(msg, m.keys.Command):
		idx := int(msg.String()[0] - '1')
		return m.issueCommand(core.KnownCommands[idx])
	}

	// Panel-specific keys
	switch m.focusedPanel {
	case PanelDevices:
		switch {
		case key.Matches(msg, m.keys.Down):
			m.devicesView.CursorNext(len(m.state.Devices))
		case key.Matches(msg, m.keys.Up):
			m.devicesView.CursorPrev()
		case key.Matches(msg, m.keys.Enter):
			i := m.devicesView.Cursor()
			if i >= 0 && i < len(m.state.Devices) {
				return m.selectDevice(m.state.Devices[i])
			}
		}

	case PanelControl:
		switch {
		case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Down):
			m.controlView.CursorNext()
		case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Up):
			m.controlView.CursorPrev()
		case key.Matches(msg, m.keys.Enter):
			return m.issueCommand(m.controlView.Command())
		}

	case PanelGallery:
		switch {
		case key.Matches(msg, m.keys.Down):
			m.galleryView.CursorNext(len(m.state.Media))
		case key.Matches(msg, m.keys.Up):
			m.galleryView.CursorPrev()
		case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Open):
			i := m.galleryView.Cursor()
			if i >= 0 && i < len(m.state.Media) {
				return m, m.openMedia(m.state.Media[i].PublicURL)
			}
		}
	}

	return m, nil
}

// selectDevice makes d the selected device and starts its first media load.
func (m Model) selectDevice(d core.Device) (tea.Model, tea.Cmd) {
	var seq uint64
	m.state, seq = m.state.Select(d)
	m.galleryView.Reset()
	m.syncStream()
	return m, tea.Batch(m.loadMedia(seq, d.DeviceID), m.fetchHistory())
}

// issueCommand applies the command's local effect before the write goes out.
func (m Model) issueCommand(label core.CommandType) (tea.Model, tea.Cmd) {
	next, cmd := m.state.IssueCommand(label)
	if cmd == nil {
		return m, nil
	}
	device := *next.Selected
	m.state = next
	m.syncStream()
	return m, m.sendCommand(device, *cmd)
}

// syncStream binds the stream timer to the selected device while streaming
// and stops it otherwise.
func (m Model) syncStream() {
	deviceID, ok := m.state.StreamKey()
	if !ok {
		m.app.ticker.Stop()
		return
	}
	app := m.app
	app.ticker.Bind(deviceID, func(id string) {
		app.push(streamTickMsg{deviceID: id})
	})
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.alert != "" {
		return m.renderAlert()
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Left: Devices. Right: Control (top), Gallery, History (bottom)
	leftWidth := m.width * 40 / 100
	rightWidth := m.width - leftWidth - 2
	bodyHeight := m.height - 1
	historyHeight := (bodyHeight - controlHeight) * 35 / 100
	galleryHeight := bodyHeight - controlHeight - historyHeight

	selectedID := ""
	if m.state.Selected != nil {
		selectedID = m.state.Selected.ID
	}

	devicesView := m.devicesView.Render(m.state.Devices, selectedID, leftWidth-2, bodyHeight-2, m.focusedPanel == PanelDevices)
	controlView := m.controlView.Render(m.state.Selected, m.state.Streaming, m.spinner.View(), rightWidth-2, controlHeight-2, m.focusedPanel == PanelControl)
	galleryView := m.galleryView.Render(m.state.Media, rightWidth-2, galleryHeight-2, m.focusedPanel == PanelGallery)
	historyView := m.historyView.Render(m.history, rightWidth-2, historyHeight-2, m.focusedPanel == PanelHistory)

	rightCol := lipgloss.JoinVertical(lipgloss.Left, controlView, galleryView, historyView)
	main := lipgloss.JoinHorizontal(lipgloss.Top, devicesView, rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	live := styles.Dim.Render("○ offline")
	if m.live {
		live = styles.Ok.Render("● live")
	}

	status := live + "  " + m.help.ShortHelpView(m.keys.ShortHelp())

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Lookout - Keyboard Shortcuts"
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render(title),
		styles.Dim.Render(styles.Repeat("═", len(title))),
		"",
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		styles.Dim.Render("Press ? or Esc to close"),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		styles.BorderStyle.Padding(1, 2).Render(body))
}

func (m Model) renderAlert() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.Failed.Render(m.alert),
		"",
		styles.Dim.Render("Press Enter to dismiss"),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		styles.AlertBorder.Render(body))
}

// Run starts the TUI application and tears it down on exit.
func Run(opts Options) error {
	styles.ApplyTheme(opts.Theme)

	app := NewApp(opts)
	defer app.Close()

	p := tea.NewProgram(NewModel(app), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
