package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/hitcard/internal/session"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.showHelp {
		return m.renderHelp()
	}

	var body string
	if m.currentView == ViewActivity {
		body = m.renderActivity()
	} else if m.st.Page == session.PagePlayer {
		body = m.renderPlayer()
	} else {
		body = m.renderScanner()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

// renderHeader renders the title bar with the phase badge.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	phase := m.st.Phase()
	parts := []string{
		styles.Logo.Render("hitcard"),
		styles.PhaseStyle(phase).Render(strings.ToUpper(string(phase))),
	}
	if m.prefs.ShowYear {
		parts = append(parts, styles.MutedText.Render(T(m.prefs.Lang, "scanner.showYear", nil)))
	}
	if m.prefs.ShowTitleArtist {
		parts = append(parts, styles.MutedText.Render(T(m.prefs.Lang, "scanner.showTitleArtist", nil)))
	}
	return styles.Header.Width(max(m.width, 0)).Render(strings.Join(parts, "  "))
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	var lines []string
	if m.store != nil {
		if snap := m.store.Snapshot(); snap.HasError() {
			lines = append(lines, styles.DangerText.Render(snap.LastError.Error()))
		}
	}
	lines = append(lines, m.help.View(m.currentHelp()))
	return styles.Footer.Width(max(m.width, 0)).Render(strings.Join(lines, "\n"))
}

func (m Model) currentHelp() helpKeys {
	switch {
	case m.currentView == ViewActivity:
		return m.keys.activityHelp()
	case m.st.Page == session.PagePlayer:
		return m.keys.playerHelp()
	case m.manualActive():
		return m.keys.manualHelp()
	default:
		return m.keys.scannerHelp(m.st.Scanner.IsScanning)
	}
}

func (m Model) renderScanner() string {
	styles := m.theme.Styles()
	lang := m.prefs.Lang
	sc := m.st.Scanner

	var b strings.Builder
	b.WriteString(styles.Logo.Render(m.logo))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(T(lang, "scanner.tagline", nil)))
	b.WriteString("\n\n")

	switch {
	case sc.IsScanning:
		b.WriteString(styles.Text.Render(T(lang, "scanner.scanning", nil)))
		b.WriteString("\n")
		b.WriteString(styles.Input.Render(m.capture.View()))
	case m.manualActive():
		b.WriteString(m.renderManualPanel())
	default:
		b.WriteString(styles.Text.Render(T(lang, "scanner.idle", nil)))
	}

	if msg := m.renderMessage(); msg != "" {
		b.WriteString("\n\n")
		b.WriteString(msg)
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderToggles())
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render(T(lang, "scanner.info", nil)))
	if m.linkAddr != "" {
		b.WriteString("\n")
		b.WriteString(styles.InfoText.Render(T(lang, "scanner.linkServer", map[string]string{"addr": "http://" + m.linkAddr})))
	}
	return styles.Panel.Render(b.String())
}

func (m Model) renderManualPanel() string {
	styles := m.theme.Styles()
	lang := m.prefs.Lang
	var b strings.Builder
	if m.st.Scanner.CameraPermission == session.PermissionDenied {
		b.WriteString(styles.WarningText.Render(T(lang, "camera.accessRequired", nil)))
		b.WriteString("\n")
	}
	b.WriteString(styles.Text.Render(T(lang, "camera.manualEntryHint", nil)))
	b.WriteString("\n")
	b.WriteString(styles.Input.Render(m.manual.View()))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("enter: " + T(lang, "camera.loadAudio", nil)))
	return b.String()
}

func (m Model) renderMessage() string {
	msg := m.st.Scanner.Message
	text := MessageText(m.prefs.Lang, msg)
	if text == "" {
		return ""
	}
	styles := m.theme.Styles()
	switch toneOf(msg.Key) {
	case toneProgress:
		return styles.InfoText.Render(text)
	case toneError:
		return styles.DangerText.Render(text)
	default:
		return styles.Text.Render(text)
	}
}

func (m Model) renderToggles() string {
	styles := m.theme.Styles()
	lang := m.prefs.Lang
	box := func(on bool) string {
		if on {
			return styles.SuccessText.Render("[x]")
		}
		return styles.MutedText.Render("[ ]")
	}
	return box(m.prefs.ShowYear) + " " + styles.Text.Render(T(lang, "scanner.showYear", nil)) + "   " +
		box(m.prefs.ShowTitleArtist) + " " + styles.Text.Render(T(lang, "scanner.showTitleArtist", nil))
}

func (m Model) renderPlayer() string {
	styles := m.theme.Styles()
	lang := m.prefs.Lang
	p := m.st.Player

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(T(lang, "player.nowPlaying", nil)))
	b.WriteString("\n\n")

	if card := m.renderSongCard(); card != "" {
		b.WriteString(card)
		b.WriteString("\n\n")
	}

	status := T(lang, "player.paused", nil)
	statusStyle := styles.MutedText
	switch {
	case p.IsBuffering || !p.IsLoaded:
		status = T(lang, "player.buffering", nil)
		statusStyle = styles.WarningText
	case p.IsPlaying:
		status = T(lang, "player.playing", nil)
		statusStyle = styles.SuccessText
	}
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(ProgressPercent(p.CurrentTime, p.Duration) / 100))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(FormatTime(p.CurrentTime) + " / " + FormatTime(p.Duration)))
	b.WriteString("\n\n")
	b.WriteString(m.renderToggles())
	return styles.Panel.Render(b.String())
}

func (m Model) renderSongCard() string {
	info := visibleSong(m.st.Audio, m.prefs.ShowYear, m.prefs.ShowTitleArtist)
	styles := m.theme.Styles()
	switch info.Layout {
	case layoutYearOnly:
		return styles.Card.Render(styles.Year.Render(strconv.Itoa(info.Year)))
	case layoutFull:
		var lines []string
		if info.Title != "" {
			lines = append(lines, styles.Card.UnsetPadding().Bold(true).Render(info.Title))
		}
		if info.Artist != "" {
			lines = append(lines, styles.Card.UnsetPadding().Render(info.Artist))
		}
		if info.Year > 0 {
			lines = append(lines, styles.Year.Render(strconv.Itoa(info.Year)))
		}
		return styles.Card.Render(strings.Join(lines, "\n"))
	default:
		return ""
	}
}
