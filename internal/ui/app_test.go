package ui

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/five82/hitcard/internal/catalog"
	"github.com/five82/hitcard/internal/logtail"
	"github.com/five82/hitcard/internal/prefs"
	"github.com/five82/hitcard/internal/session"
	"github.com/five82/hitcard/internal/state"
)

type fakeSubmitter struct {
	mu   sync.Mutex
	effs []session.Effect
}

func (f *fakeSubmitter) Submit(effs ...session.Effect) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.effs = append(f.effs, effs...)
}

func (f *fakeSubmitter) take() []session.Effect {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.effs
	f.effs = nil
	return out
}

type harness struct {
	t     *testing.T
	model Model
	sub   *fakeSubmitter
	store *state.Store
	path  string
}

func newHarness(t *testing.T, p prefs.Prefs) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		sub:   &fakeSubmitter{},
		store: &state.Store{},
		path:  filepath.Join(t.TempDir(), "prefs.toml"),
	}
	h.model = New(Options{
		Machine:   session.New(session.Options{Logger: zerolog.Nop()}),
		Effects:   h.sub,
		Store:     h.store,
		Prefs:     p,
		PrefsPath: h.path,
		Logger:    zerolog.Nop(),
	})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	updated, cmd := h.model.Update(msg)
	h.model = updated.(Model)
	return cmd
}

func (h *harness) press(keys ...tea.KeyMsg) {
	h.t.Helper()
	for _, k := range keys {
		h.send(k)
	}
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	left  = tea.KeyMsg{Type: tea.KeyLeft}
	right = tea.KeyMsg{Type: tea.KeyRight}
)

func TestEnterStartsScanning(t *testing.T) {
	h := newHarness(t, prefs.Default())

	h.press(enter)

	require.True(t, h.model.State().Scanner.IsScanning)
	require.Equal(t, []session.Effect{session.StartCapture{}}, h.sub.take())
	require.True(t, h.model.capture.Focused())
	require.Equal(t, session.PhaseScanning, h.store.Snapshot().Phase)
}

func TestCapturedScanStartsResolve(t *testing.T) {
	h := newHarness(t, prefs.Default())
	h.press(enter)
	h.sub.take()

	h.press(runes("https://cards.test/qr/am/12345"), enter)

	st := h.model.State()
	require.True(t, st.InFlight)
	require.Equal(t, session.MessageCatalogReferenceDetected, st.Scanner.Message.Key)
	require.Equal(t, []session.Effect{session.Resolve{Attempt: 1, ReferenceID: "12345"}}, h.sub.take())
	require.Empty(t, h.model.capture.Value())
	require.Equal(t, session.PhaseResolving, h.store.Snapshot().Phase)
}

func TestCaptureKeepsLettersOutOfShortcuts(t *testing.T) {
	h := newHarness(t, prefs.Default())
	h.press(enter)

	// "q" and "y" would quit or toggle outside of capture.
	h.press(runes("qy"))

	require.Equal(t, "qy", h.model.capture.Value())
	require.False(t, h.model.Prefs().ShowYear)
}

func TestEscapeStopsScanning(t *testing.T) {
	h := newHarness(t, prefs.Default())
	h.press(enter)
	h.sub.take()

	h.press(esc)

	require.False(t, h.model.State().Scanner.IsScanning)
	require.False(t, h.model.capture.Focused())
	require.Equal(t, []session.Effect{session.StopCapture{}}, h.sub.take())
}

func TestManualEntryFlow(t *testing.T) {
	h := newHarness(t, prefs.Default())

	h.press(runes("m"))
	require.True(t, h.model.manualActive())
	require.True(t, h.model.manual.Focused())

	h.press(runes("abc"))
	require.Equal(t, "abc", h.model.State().Scanner.ManualURLDraft)

	h.press(enter)
	require.Equal(t, session.MessageInvalidURLFormat, h.model.State().Scanner.Message.Key)
	require.Empty(t, h.sub.take())

	h.model.manual.SetValue("")
	h.press(runes("https://cards.test/qr/am/777"), enter)
	require.Equal(t, session.MessageLoadingFromURL, h.model.State().Scanner.Message.Key)
	require.Equal(t, []session.Effect{session.Resolve{Attempt: 1, ReferenceID: "777"}}, h.sub.take())

	h.press(esc)
	require.False(t, h.model.manualActive())
	require.False(t, h.model.manual.Focused())
}

func openPlayer(h *harness) {
	h.send(session.GoToPlayer{Audio: catalog.ResolvedAudio{
		URL: "https://a.test/x.m4a", Title: "Song", Artist: "Band", ReleaseYear: 1999,
	}})
	h.send(session.TransportStatus{Playing: true, CurrentTime: 10, Duration: 30, IsLoaded: true})
	h.sub.take()
}

func TestPlayerControls(t *testing.T) {
	h := newHarness(t, prefs.Default())
	openPlayer(h)

	h.press(space)
	require.Equal(t, []session.Effect{session.TransportPause{}}, h.sub.take())

	h.press(right, left)
	require.Equal(t, []session.Effect{
		session.TransportSeek{Seconds: 15},
		session.TransportSeek{Seconds: 5},
	}, h.sub.take())

	h.send(session.TransportStatus{Playing: true, CurrentTime: 28, Duration: 30, IsLoaded: true})
	h.send(session.TransportStatus{Playing: true, CurrentTime: 2, Duration: 30, IsLoaded: true})
	h.press(left)
	require.Equal(t, []session.Effect{session.TransportSeek{Seconds: 0}}, h.sub.take())

	h.send(session.TransportStatus{Playing: true, CurrentTime: 28, Duration: 30, IsLoaded: true})
	h.press(right)
	require.Equal(t, []session.Effect{session.TransportSeek{Seconds: 30}}, h.sub.take())
}

func TestPlayerNextCardRestartsScanner(t *testing.T) {
	h := newHarness(t, prefs.Default())
	openPlayer(h)

	h.press(runes("n"))

	st := h.model.State()
	require.Equal(t, session.PageScanner, st.Page)
	require.True(t, st.Scanner.IsScanning)
	require.Equal(t, []session.Effect{session.TransportUnload{}, session.StartCapture{}}, h.sub.take())
	require.True(t, h.model.capture.Focused())
}

func TestPlayerCloseReturnsIdle(t *testing.T) {
	h := newHarness(t, prefs.Default())
	openPlayer(h)

	h.press(esc)

	st := h.model.State()
	require.Equal(t, session.PageScanner, st.Page)
	require.False(t, st.Scanner.IsScanning)
	require.Equal(t, []session.Effect{session.TransportUnload{}}, h.sub.take())
}

func TestPlayerViewHonorsToggles(t *testing.T) {
	h := newHarness(t, prefs.Default())
	openPlayer(h)

	view := h.model.View()
	require.NotContains(t, view, "1999")
	require.NotContains(t, view, "Song")
	require.Contains(t, view, "0:10 / 0:30")

	h.press(runes("y"))
	view = h.model.View()
	require.Contains(t, view, "1999")
	require.NotContains(t, view, "Band")

	h.press(runes("t"))
	view = h.model.View()
	require.Contains(t, view, "Song")
	require.Contains(t, view, "Band")
}

func TestTogglesPersistPrefs(t *testing.T) {
	h := newHarness(t, prefs.Default())

	h.press(runes("y"), runes("t"), runes("L"), runes("T"))

	saved, err := prefs.Load(h.path)
	require.NoError(t, err)
	require.True(t, saved.ShowYear)
	require.True(t, saved.ShowTitleArtist)
	require.Equal(t, prefs.LangGerman, saved.Lang)
	require.Equal(t, NextTheme(prefs.Default().Theme), saved.Theme)
	require.Equal(t, saved, h.model.Prefs())
}

func TestLanguageSwitchChangesText(t *testing.T) {
	h := newHarness(t, prefs.Default())
	require.Contains(t, h.model.View(), "Press enter to start scanning.")

	h.press(runes("L"))

	require.Contains(t, h.model.View(), "Drücke Enter")
}

func TestMessagesRender(t *testing.T) {
	h := newHarness(t, prefs.Default())
	h.press(enter, runes("not a url"), enter)

	require.Contains(t, h.model.View(), "Scanned: not a url")
}

func TestQuitKeys(t *testing.T) {
	h := newHarness(t, prefs.Default())
	cmd := h.send(runes("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())

	h.press(enter)
	cmd = h.send(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestHelpOverlay(t *testing.T) {
	h := newHarness(t, prefs.Default())
	h.send(tea.WindowSizeMsg{Width: 100, Height: 40})

	h.press(runes("?"))
	require.True(t, h.model.showHelp)
	require.Contains(t, h.model.View(), "Keyboard Shortcuts")

	h.press(runes("x"))
	require.False(t, h.model.showHelp)
}

func TestStoreErrorShownInFooter(t *testing.T) {
	h := newHarness(t, prefs.Default())
	h.store.RecordError(errors.New("transport play: device busy"))

	require.Contains(t, h.model.View(), "transport play: device busy")
}

func TestInitSchedulesInitialEvents(t *testing.T) {
	h := newHarness(t, prefs.Default())
	h.model.initial = []session.Event{session.StartScanner{}}

	require.NotNil(t, h.model.Init())
}

func TestWaitForEvent(t *testing.T) {
	ch := make(chan session.Event, 1)
	ch <- session.StopScanner{}
	require.Equal(t, inboxMsg{ev: session.StopScanner{}}, waitForEvent(ch)())

	close(ch)
	require.Nil(t, waitForEvent(ch)())
}

func TestInboxEventsResubscribe(t *testing.T) {
	ch := make(chan session.Event, 1)
	h := newHarness(t, prefs.Default())
	h.model.events = ch

	cmd := h.send(inboxMsg{ev: session.StartScanner{}})

	require.True(t, h.model.State().Scanner.IsScanning)
	require.NotNil(t, cmd)
}

func TestActivityView(t *testing.T) {
	h := newHarness(t, prefs.Default())
	h.send(tea.WindowSizeMsg{Width: 120, Height: 30})

	h.press(runes("a"))
	require.Equal(t, ViewActivity, h.model.currentView)

	h.send(activityMsg{entries: []logtail.Entry{
		{Level: "info", Component: "session", Message: "code scanned", Time: time.Unix(0, 0)},
	}})
	require.Contains(t, h.model.View(), "code scanned")

	h.press(esc)
	require.Equal(t, ViewSession, h.model.currentView)
}

func TestFormatEntry(t *testing.T) {
	oldLocal := time.Local
	time.Local = time.UTC
	defer func() { time.Local = oldLocal }()

	e := logtail.Entry{
		Time:      time.Date(2025, 12, 13, 10, 11, 12, 0, time.UTC),
		Level:     "warn",
		Component: "runner",
		Message:   " transport failed ",
		Error:     "device busy",
		Fields:    map[string]string{"op": "transport play"},
	}
	got := formatEntry(e)
	require.True(t, strings.HasPrefix(got, "10:11:12 WARN [runner] – transport failed (device busy)"), got)
	require.Contains(t, got, "\n    - op: transport play")

	require.Equal(t, "not json", formatEntry(logtail.Entry{Raw: "not json"}))
}
