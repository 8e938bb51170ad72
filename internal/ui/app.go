package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/hitcard/internal/logtail"
	"github.com/five82/hitcard/internal/prefs"
	"github.com/five82/hitcard/internal/session"
	"github.com/five82/hitcard/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewSession View = iota
	ViewActivity
)

const (
	seekStep                = 5.0
	activityRefreshInterval = 2 * time.Second
	activityLimit           = 300
	defaultContentWidth     = 72
	maxProgressWidth        = 60
	manualInputCharLimit    = 2048
	scanCaptureCharLimit    = 4096
)

// EffectSubmitter runs session effects in the background. Results come back
// on the Events channel.
type EffectSubmitter interface {
	Submit(effs ...session.Effect)
}

// Options configures the UI.
type Options struct {
	Context context.Context
	Machine *session.Machine
	Effects EffectSubmitter
	// Events delivers effect results and external input (link server,
	// transport poller) to the update loop.
	Events <-chan session.Event
	Store  *state.Store
	// Initial events are applied in order once the program starts.
	Initial   []session.Event
	Prefs     prefs.Prefs
	PrefsPath string
	LogPath   string
	LinkAddr  string
	Logger    zerolog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	machine   *session.Machine
	effects   EffectSubmitter
	events    <-chan session.Event
	store     *state.Store
	initial   []session.Event
	prefsPath string
	logPath   string
	linkAddr  string
	logger    zerolog.Logger

	prefs prefs.Prefs
	theme Theme
	keys  keyMap

	currentView View
	showHelp    bool
	logo        string
	width       int
	height      int

	st session.State

	capture  textinput.Model
	manual   textinput.Model
	progress progress.Model
	help     help.Model

	activity        viewport.Model
	activityEntries []logtail.Entry
	activityErr     error
}

type inboxMsg struct{ ev session.Event }

type activityTickMsg struct{}

type activityMsg struct {
	entries []logtail.Entry
	err     error
}

type nopSubmitter struct{}

func (nopSubmitter) Submit(...session.Effect) {}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	machine := opts.Machine
	if machine == nil {
		machine = session.New(session.Options{Logger: opts.Logger})
	}
	effects := opts.Effects
	if effects == nil {
		effects = nopSubmitter{}
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := opts.Prefs
	if userPrefs.Lang == "" {
		userPrefs.Lang = prefs.LangEnglish
	}

	capture := textinput.New()
	capture.Prompt = "▌ "
	capture.CharLimit = scanCaptureCharLimit

	manual := textinput.New()
	manual.CharLimit = manualInputCharLimit

	m := Model{
		ctx:         ctx,
		machine:     machine,
		effects:     effects,
		events:      opts.Events,
		store:       opts.Store,
		initial:     opts.Initial,
		prefsPath:   prefsPath,
		logPath:     opts.LogPath,
		linkAddr:    opts.LinkAddr,
		logger:      opts.Logger.With().Str("component", "ui").Logger(),
		prefs:       userPrefs,
		theme:       GetTheme(userPrefs.Theme),
		keys:        DefaultKeyMap(),
		currentView: ViewSession,
		logo:        createLogo(),
		capture:     capture,
		manual:      manual,
		progress:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:        help.New(),
		activity:    viewport.New(defaultContentWidth, 10),
		st:          machine.State(),
	}
	m.manual.Placeholder = T(m.prefs.Lang, "camera.manualUrlPlaceholder", nil)
	m.resize(defaultContentWidth, 24)
	m.publish()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.events != nil {
		cmds = append(cmds, waitForEvent(m.events))
	}
	if len(m.initial) > 0 {
		seq := make([]tea.Cmd, 0, len(m.initial))
		for _, ev := range m.initial {
			seq = append(seq, emit(ev))
		}
		cmds = append(cmds, tea.Sequence(seq...))
	}
	return tea.Batch(cmds...)
}

func waitForEvent(ch <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return inboxMsg{ev: ev}
	}
}

func emit(ev session.Event) tea.Cmd {
	return func() tea.Msg { return ev }
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case inboxMsg:
		cmd := m.apply(msg.ev)
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case session.Event:
		cmd := m.apply(msg)
		return m, cmd

	case activityTickMsg:
		if m.currentView != ViewActivity {
			return m, nil
		}
		return m, tea.Batch(m.loadActivity(), activityTick())

	case activityMsg:
		m.activityEntries = msg.entries
		m.activityErr = msg.err
		m.refreshActivity()
		return m, nil
	}

	// Cursor blinks and other widget messages.
	var cmd tea.Cmd
	switch {
	case m.capture.Focused():
		m.capture, cmd = m.capture.Update(msg)
	case m.manual.Focused():
		m.manual, cmd = m.manual.Update(msg)
	}
	return m, cmd
}

// apply feeds one event to the machine, hands its effects to the runner and
// brings the widgets in line with the new state.
func (m *Model) apply(ev session.Event) tea.Cmd {
	effs := m.machine.Handle(ev)
	m.st = m.machine.State()
	m.publish()
	if len(effs) > 0 {
		m.effects.Submit(effs...)
	}
	return m.syncInputs()
}

func (m *Model) publish() {
	if m.store != nil {
		m.store.Update(m.st)
	}
}

func (m *Model) syncInputs() tea.Cmd {
	var cmds []tea.Cmd
	scanning := m.st.Page == session.PageScanner && m.st.Scanner.IsScanning
	switch {
	case scanning && !m.capture.Focused():
		m.capture.Reset()
		cmds = append(cmds, m.capture.Focus())
	case !scanning && m.capture.Focused():
		m.capture.Blur()
		m.capture.Reset()
	}

	manual := m.manualActive()
	switch {
	case manual && !m.manual.Focused():
		m.manual.SetValue(m.st.Scanner.ManualURLDraft)
		m.manual.CursorEnd()
		cmds = append(cmds, m.manual.Focus())
	case !manual && m.manual.Focused():
		m.manual.Blur()
	}
	return tea.Batch(cmds...)
}

func (m Model) manualActive() bool {
	return m.st.Page == session.PageScanner && m.st.Scanner.ShowHelp && !m.st.Scanner.IsScanning
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	content := min(width-4, defaultContentWidth)
	if content < 20 {
		content = 20
	}
	m.capture.Width = content - 4
	m.manual.Width = content - 4
	m.progress.Width = min(content-4, maxProgressWidth)
	m.help.Width = width
	m.activity.Width = width
	m.activity.Height = max(height-4, 3)
	m.refreshActivity()
}

// handleKey routes keyboard input by screen. Text inputs get first refusal
// while they are focused.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.currentView == ViewActivity {
		return m.handleActivityKey(msg)
	}

	switch {
	case m.st.Page == session.PagePlayer:
		return m.handlePlayerKey(msg)
	case m.st.Scanner.IsScanning:
		return m.handleCaptureKey(msg)
	case m.manualActive():
		return m.handleManualKey(msg)
	default:
		return m.handleIdleKey(msg)
	}
}

func (m Model) handleCaptureKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		text := m.capture.Value()
		m.capture.Reset()
		if text == "" {
			return m, nil
		}
		cmd := m.apply(session.ScanDecoded{Text: text})
		return m, cmd
	case key.Matches(msg, m.keys.Escape):
		cmd := m.apply(session.StopScanner{})
		return m, cmd
	}
	var cmd tea.Cmd
	m.capture, cmd = m.capture.Update(msg)
	return m, cmd
}

func (m Model) handleManualKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		cmd := m.apply(session.ManualSubmitted{})
		return m, cmd
	case key.Matches(msg, m.keys.Escape):
		cmd := m.apply(session.HelpDismissed{})
		return m, cmd
	}
	before := m.manual.Value()
	var cmd tea.Cmd
	m.manual, cmd = m.manual.Update(msg)
	if after := m.manual.Value(); after != before {
		applied := m.apply(session.ManualDraftChanged{Text: after})
		return m, tea.Batch(cmd, applied)
	}
	return m, cmd
}

func (m Model) handleIdleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.StartScan):
		cmd := m.apply(session.StartScanner{})
		return m, cmd
	case key.Matches(msg, m.keys.Manual):
		cmd := m.apply(session.ManualEntryRequested{})
		return m, cmd
	case key.Matches(msg, m.keys.Escape):
		cmd := m.apply(session.HelpDismissed{})
		return m, cmd
	}
	return m.handleGlobalKey(msg)
}

func (m Model) handlePlayerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.st.Player
	switch {
	case key.Matches(msg, m.keys.PlayPause):
		cmd := m.apply(session.TogglePlayPause{})
		return m, cmd
	case key.Matches(msg, m.keys.SeekBack):
		cmd := m.apply(session.Seek{Seconds: max(0, p.CurrentTime-seekStep)})
		return m, cmd
	case key.Matches(msg, m.keys.SeekForward):
		target := p.CurrentTime + seekStep
		if p.Duration > 0 {
			target = min(target, p.Duration)
		}
		cmd := m.apply(session.Seek{Seconds: target})
		return m, cmd
	case key.Matches(msg, m.keys.Restart):
		cmd := m.apply(session.Seek{Seconds: 0})
		return m, cmd
	case key.Matches(msg, m.keys.NextCard):
		cmd := m.apply(session.GoToScanner{Restart: true})
		return m, cmd
	case key.Matches(msg, m.keys.Close):
		cmd := m.apply(session.GoToScanner{Restart: false})
		return m, cmd
	}
	return m.handleGlobalKey(msg)
}

func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Activity):
		m.currentView = ViewSession
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.activity, cmd = m.activity.Update(msg)
	return m, cmd
}

func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Activity):
		m.currentView = ViewActivity
		return m, tea.Batch(m.loadActivity(), activityTick())
	case key.Matches(msg, m.keys.ToggleYear):
		m.prefs.ShowYear = !m.prefs.ShowYear
		m.savePrefs()
	case key.Matches(msg, m.keys.ToggleTitle):
		m.prefs.ShowTitleArtist = !m.prefs.ShowTitleArtist
		m.savePrefs()
	case key.Matches(msg, m.keys.CycleLang):
		m.prefs.Lang = nextLanguage(m.prefs.Lang)
		m.manual.Placeholder = T(m.prefs.Lang, "camera.manualUrlPlaceholder", nil)
		m.savePrefs()
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
	}
	return m, nil
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn().Err(err).Str("path", m.prefsPath).Msg("save prefs failed")
	}
}

func activityTick() tea.Cmd {
	return tea.Tick(activityRefreshInterval, func(time.Time) tea.Msg { return activityTickMsg{} })
}

func (m Model) loadActivity() tea.Cmd {
	path := m.logPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.ReadEntries(path, activityLimit)
		return activityMsg{entries: entries, err: err}
	}
}

// State returns the session state the model last rendered.
func (m Model) State() session.State { return m.st }

// Prefs returns the current preferences.
func (m Model) Prefs() prefs.Prefs { return m.prefs }

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
