// Package prefs handles hitcard user preferences persistence.
// Preferences are stored in ~/.config/hitcard/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences for hitcard.
type Prefs struct {
	Theme           string `toml:"theme"`
	Lang            string `toml:"lang"`
	ShowYear        bool   `toml:"show_year"`
	ShowTitleArtist bool   `toml:"show_title_artist"`
}

// Supported interface languages.
const (
	LangEnglish = "en"
	LangGerman  = "de"
)

const (
	defaultPrefsPath = "~/.config/hitcard/prefs.toml"
	defaultTheme     = "Nightfox"
	defaultLang      = LangEnglish
)

// Default returns the preferences used when nothing is stored. Song details
// start hidden so the card can be guessed.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, Lang: defaultLang}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from path (empty means the default location). A
// missing, unreadable or malformed file yields Default.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default(), nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Default(), nil
	}
	loaded := Default()
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return Default(), nil
	}
	return loaded.normalize(), nil
}

func (p Prefs) normalize() Prefs {
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	switch lang := strings.ToLower(strings.TrimSpace(p.Lang)); lang {
	case LangEnglish, LangGerman:
		p.Lang = lang
	default:
		p.Lang = defaultLang
	}
	return p
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	data, err := toml.Marshal(p.normalize())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
