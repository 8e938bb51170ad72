package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/hitcard/internal/logtail"
)

func formatEntries(entries []logtail.Entry) []string {
	if len(entries) == 0 {
		return nil
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, formatEntry(e))
	}
	return lines
}

func formatEntry(e logtail.Entry) string {
	if e.Time.IsZero() && e.Message == "" && e.Level == "" {
		return e.Raw
	}
	ts := ""
	if !e.Time.IsZero() {
		ts = e.Time.In(time.Local).Format("15:04:05")
	}
	level := strings.ToUpper(strings.TrimSpace(e.Level))
	if level == "" {
		level = "INFO"
	}
	parts := []string{ts, level}
	if ts == "" {
		parts = parts[1:]
	}
	if component := strings.TrimSpace(e.Component); component != "" {
		parts = append(parts, fmt.Sprintf("[%s]", component))
	}
	header := strings.Join(parts, " ")
	if msg := strings.TrimSpace(e.Message); msg != "" {
		header += " – " + msg
	}
	if e.Error != "" {
		header += " (" + e.Error + ")"
	}
	keys := e.FieldKeys()
	if len(keys) == 0 {
		return header
	}
	var b strings.Builder
	b.WriteString(header)
	for _, k := range keys {
		b.WriteString("\n    - ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(e.Fields[k])
	}
	return b.String()
}

func (m *Model) refreshActivity() {
	styles := m.theme.Styles()
	switch {
	case m.activityErr != nil:
		m.activity.SetContent(styles.DangerText.Render(m.activityErr.Error()))
		return
	case len(m.activityEntries) == 0:
		m.activity.SetContent(styles.MutedText.Render(T(m.prefs.Lang, "activity.empty", nil)))
		return
	}
	lines := formatEntries(m.activityEntries)
	for i, e := range m.activityEntries {
		switch strings.ToLower(e.Level) {
		case "error", "fatal", "panic":
			lines[i] = styles.DangerText.Render(lines[i])
		case "warn":
			lines[i] = styles.WarningText.Render(lines[i])
		case "debug", "trace":
			lines[i] = styles.FaintText.Render(lines[i])
		}
	}
	m.activity.SetContent(strings.Join(lines, "\n"))
	m.activity.GotoBottom()
}

func (m Model) renderActivity() string {
	styles := m.theme.Styles()
	title := styles.AccentText.Bold(true).Render(T(m.prefs.Lang, "activity.title", nil))
	if m.logPath != "" {
		title += "  " + styles.FaintText.Render(truncateMiddle(m.logPath, max(m.width-20, 16)))
	}
	return title + "\n" + m.activity.View()
}
