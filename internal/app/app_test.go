package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/hitcard/internal/config"
	"github.com/five82/hitcard/internal/session"
)

func testConfig(t *testing.T, previewURL string) config.Config {
	t.Helper()
	lookup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "4242" {
			_, _ = w.Write([]byte(`{"resultCount":0,"results":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"resultCount":1,"results":[{"trackName":"Song","artistName":"Band","previewUrl":"` + previewURL + `","releaseDate":"1987-05-01T07:00:00Z"}]}`))
	}))
	t.Cleanup(lookup.Close)

	cfg := config.Default()
	cfg.Catalog.LookupURL = lookup.URL
	cfg.Scanner.ValidateTimeout = 2 * time.Second
	return cfg
}

func audioServer(t *testing.T, contentType string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte("not really audio but typed as such"))
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/preview.m4a"
}

func TestResolve_CardToPlayer(t *testing.T) {
	preview := audioServer(t, "audio/mp4")
	cfg := testConfig(t, preview)

	st, err := Resolve(context.Background(), cfg, "https://cards.test/qr/am/4242", zerolog.Nop())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if st.Page != session.PagePlayer {
		t.Fatalf("Page = %q, want player", st.Page)
	}
	if st.Audio == nil {
		t.Fatal("Audio = nil, want resolved audio")
	}
	if st.Audio.URL != preview || st.Audio.Title != "Song" || st.Audio.ReleaseYear != 1987 {
		t.Fatalf("Audio = %+v, want %s / Song / 1987", *st.Audio, preview)
	}
}

func TestResolve_EscapedCardID(t *testing.T) {
	cfg := testConfig(t, audioServer(t, "audio/mp4"))

	// %34 is "4"; the lookup must see the decoded id.
	st, err := Resolve(context.Background(), cfg, "https://cards.test/qr/am/%34242", zerolog.Nop())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if st.Page != session.PagePlayer {
		t.Fatalf("Page = %q, want player (message %q)", st.Page, st.Scanner.Message.Key)
	}
}

func TestResolve_UnplayablePreview(t *testing.T) {
	cfg := testConfig(t, audioServer(t, "text/html"))

	st, err := Resolve(context.Background(), cfg, "https://cards.test/qr/am/4242", zerolog.Nop())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if st.Page != session.PageScanner {
		t.Fatalf("Page = %q, want scanner", st.Page)
	}
	if st.Scanner.Message.Key != session.MessageInvalidAudio {
		t.Fatalf("Message.Key = %q, want %q", st.Scanner.Message.Key, session.MessageInvalidAudio)
	}
}

func TestResolve_UnknownCard(t *testing.T) {
	cfg := testConfig(t, "https://unused.test/x.m4a")

	st, err := Resolve(context.Background(), cfg, "https://cards.test/qr/am/1", zerolog.Nop())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if st.Scanner.Message.Key != session.MessageErrorLoading {
		t.Fatalf("Message.Key = %q, want %q", st.Scanner.Message.Key, session.MessageErrorLoading)
	}
}

func TestResolve_NotAURL(t *testing.T) {
	st, err := Resolve(context.Background(), config.Default(), "hello", zerolog.Nop())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if st.Scanner.Message.Key != session.MessageScannedInvalidURL {
		t.Fatalf("Message.Key = %q, want %q", st.Scanner.Message.Key, session.MessageScannedInvalidURL)
	}
	if got := st.Scanner.Message.Params[session.ParamData]; got != "hello" {
		t.Fatalf("Params[data] = %q, want hello", got)
	}
}

func TestNewRunner_RejectsBadLookupURL(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.LookupURL = "https:///lookup"

	if _, err := NewRunner(cfg, nil, nil, zerolog.Nop()); err == nil {
		t.Fatal("NewRunner accepted a lookup URL without host")
	}
}

func TestRun_RejectsUnknownBackend(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	t.Setenv(config.EnvPlayerBackend, "cassette")
	t.Setenv("HOME", dir)

	err := Run(context.Background(), Options{ConfigPath: dir + "/missing.toml", PrefsPath: dir + "/prefs.toml"})
	if err == nil || !strings.Contains(err.Error(), "init player") {
		t.Fatalf("Run error = %v, want init player failure", err)
	}
}
