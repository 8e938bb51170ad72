package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(Options{LookupURL: server.URL + "/lookup"})
	require.NoError(t, err)
	return c
}

func TestParseLookupURLDefaultsAndNormalizes(t *testing.T) {
	u, err := parseLookupURL("")
	require.NoError(t, err)
	require.Equal(t, DefaultLookupURL, u.String())

	u, err = parseLookupURL("catalog.test/lookup#frag")
	require.NoError(t, err)
	require.Equal(t, "https", u.Scheme)
	require.Equal(t, "catalog.test", u.Host)
	require.Empty(t, u.Fragment)

	_, err = parseLookupURL("https://")
	require.Error(t, err)
}

func TestResolveSuccessExtractsMetadata(t *testing.T) {
	var gotID, gotUserAgent string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/lookup", r.URL.Path)
		gotID = r.URL.Query().Get("id")
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(LookupResponse{
			ResultCount: 1,
			Results: []LookupResult{{
				TrackName:   "Take On Me",
				ArtistName:  "a-ha",
				PreviewURL:  "https://audio.test/preview.m4a",
				ReleaseDate: "1985-04-01T07:00:00Z",
			}},
		})
	})

	got, err := c.Resolve(context.Background(), "12345")
	require.NoError(t, err)
	require.Equal(t, "12345", gotID)
	require.True(t, strings.HasPrefix(gotUserAgent, "hitcard/"))
	require.Equal(t, ResolvedAudio{
		URL:         "https://audio.test/preview.m4a",
		Title:       "Take On Me",
		Artist:      "a-ha",
		ReleaseYear: 1985,
	}, got)
}

func TestResolveZeroResultsIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"resultCount":0,"results":[]}`))
	})

	_, err := c.Resolve(context.Background(), "404")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolveMissingPreviewIsNoPreview(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"resultCount":1,"results":[{"trackName":"Silent","previewUrl":"  "}]}`))
	})

	_, err := c.Resolve(context.Background(), "1")
	require.ErrorIs(t, err, ErrNoPreviewAvailable)
}

func TestResolveInvalidYearFailsOpen(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"previewUrl":"https://audio.test/p.m4a","releaseDate":"unknown"}]}`))
	})

	got, err := c.Resolve(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, "https://audio.test/p.m4a", got.URL)
	require.Zero(t, got.ReleaseYear)
	require.False(t, got.HasSongInfo())
}

func TestResolveEmptyReference(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request expected for an empty reference")
	})

	_, err := c.Resolve(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidReference)
}

func TestResolveHTTPErrorAndDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("id") {
		case "bad-json":
			_, _ = w.Write([]byte("{not-json"))
		default:
			http.Error(w, "nope", http.StatusInternalServerError)
		}
	})

	_, err := c.Resolve(context.Background(), "bad-json")
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")

	_, err = c.Resolve(context.Background(), "boom")
	require.Error(t, err)
	require.Contains(t, err.Error(), "returned status 500")
	require.False(t, errors.Is(err, ErrNotFound))
}

func TestResolveEncodesIDOnce(t *testing.T) {
	var gotID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotID = r.URL.Query().Get("id")
		_, _ = w.Write([]byte(`{"resultCount":1,"results":[{"previewUrl":"https://audio.test/p.m4a"}]}`))
	})

	_, err := c.Resolve(context.Background(), "a b")
	require.NoError(t, err)
	require.Equal(t, "a b", gotID)
}

func TestResolvePassesCountry(t *testing.T) {
	var gotCountry string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCountry = r.URL.Query().Get("country")
		_, _ = w.Write([]byte(`{"results":[{"previewUrl":"https://audio.test/p.m4a"}]}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{LookupURL: server.URL, Country: " de "})
	require.NoError(t, err)
	_, err = c.Resolve(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, "de", gotCountry)
}

func TestResolveCollapsesConcurrentLookups(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"results":[{"previewUrl":"https://audio.test/p.m4a"}]}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Resolve(ctx, "same")
			require.NoError(t, err)
		}()
	}
	require.Eventually(t, func() bool { return hits.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	require.Equal(t, int32(1), hits.Load())
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1985-04-01T07:00:00Z", 1985},
		{"2019-03-01", 2019},
		{"1999", 1999},
		{"2001-13-45", 2001},
		{"0000-01-01", 0},
		{"", 0},
		{"soon", 0},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, parseYear(tc.in), tc.in)
	}
}
