package catalog

import (
	"strconv"
	"strings"
	"time"
)

// ResolvedAudio is a playable preview plus whatever metadata the catalog knew.
// Empty strings and a zero ReleaseYear mean the field is absent.
type ResolvedAudio struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	ReleaseYear int    `json:"releaseYear,omitempty"`
}

// HasSongInfo reports whether any display metadata is present.
func (a ResolvedAudio) HasSongInfo() bool {
	return a.Title != "" || a.Artist != "" || a.ReleaseYear > 0
}

// LookupResponse mirrors the catalog lookup payload.
type LookupResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []LookupResult `json:"results"`
}

// LookupResult is one catalog entry. Only the fields hitcard reads are mapped.
type LookupResult struct {
	WrapperType string `json:"wrapperType"`
	Kind        string `json:"kind"`
	TrackID     int64  `json:"trackId"`
	TrackName   string `json:"trackName"`
	ArtistName  string `json:"artistName"`
	PreviewURL  string `json:"previewUrl"`
	ReleaseDate string `json:"releaseDate"`
}

// ReleaseYear parses the release date, returning 0 when it is missing or bogus.
func (r LookupResult) ReleaseYear() int {
	return parseYear(r.ReleaseDate)
}

var releaseDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02",
	"2006-01",
	"2006",
}

func parseYear(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	for _, layout := range releaseDateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return validYear(ts.Year())
		}
	}
	if len(value) >= 4 {
		if year, err := strconv.Atoi(value[:4]); err == nil {
			return validYear(year)
		}
	}
	return 0
}

func validYear(year int) int {
	if year <= 0 || year > 9999 {
		return 0
	}
	return year
}
