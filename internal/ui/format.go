package ui

import (
	"fmt"
	"math"

	"github.com/five82/hitcard/internal/catalog"
)

// FormatTime renders seconds as m:ss. Negative or NaN input renders 0:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 || math.IsInf(seconds, 0) {
		return "0:00"
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// ProgressPercent returns the played share in [0, 100]. A non-positive
// duration is 0.
func ProgressPercent(current, duration float64) float64 {
	if duration <= 0 || math.IsNaN(duration) || math.IsNaN(current) {
		return 0
	}
	return math.Min(100, math.Max(0, current/duration*100))
}

type songLayout int

const (
	layoutHidden songLayout = iota
	layoutYearOnly
	layoutFull
)

// songInfo is what the player shows after applying the visibility toggles.
type songInfo struct {
	Title  string
	Artist string
	Year   int
	Layout songLayout
}

func visibleSong(audio *catalog.ResolvedAudio, showYear, showTitleArtist bool) songInfo {
	if audio == nil {
		return songInfo{}
	}
	var info songInfo
	if showTitleArtist {
		info.Title = audio.Title
		info.Artist = audio.Artist
	}
	if showYear {
		info.Year = audio.ReleaseYear
	}
	switch {
	case info.Title == "" && info.Artist == "" && info.Year == 0:
		info.Layout = layoutHidden
	case info.Title == "" && info.Artist == "":
		info.Layout = layoutYearOnly
	default:
		info.Layout = layoutFull
	}
	return info
}
