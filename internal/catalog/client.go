package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotFound means the lookup returned zero results.
	ErrNotFound = errors.New("song not found in catalog")
	// ErrNoPreviewAvailable means a result exists but carries no preview URL.
	ErrNoPreviewAvailable = errors.New("no preview available for this song")
	// ErrInvalidReference means the short-form URL carried no identifier.
	ErrInvalidReference = errors.New("invalid catalog reference")
)

// Resolver turns an opaque reference identifier into playable audio.
type Resolver interface {
	Resolve(ctx context.Context, referenceID string) (ResolvedAudio, error)
}

// Ensure Client implements Resolver at compile time.
var _ Resolver = (*Client)(nil)

// Client talks to the catalog lookup endpoint.
type Client struct {
	lookupURL *url.URL
	country   string
	http      *http.Client
	userAgent string
	logger    zerolog.Logger
	group     singleflight.Group
}

const (
	DefaultLookupURL      = "https://itunes.apple.com/lookup"
	defaultUserAgent      = "hitcard/0.1"
	defaultRequestTimeout = 10 * time.Second
)

// Options configure a Client. Zero values use defaults.
type Options struct {
	LookupURL string
	Country   string
	Timeout   time.Duration
	Logger    zerolog.Logger
}

// NewClient builds a Client for the configured lookup endpoint.
func NewClient(opts Options) (*Client, error) {
	lookup, err := parseLookupURL(opts.LookupURL)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		lookupURL: lookup,
		country:   strings.TrimSpace(opts.Country),
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
		logger:    opts.Logger.With().Str("component", "catalog").Logger(),
	}, nil
}

// Resolve performs a single lookup. It never retries; callers decide what to
// do with a failure. Concurrent calls for the same id share one request.
func (c *Client) Resolve(ctx context.Context, referenceID string) (ResolvedAudio, error) {
	if c == nil {
		return ResolvedAudio{}, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(referenceID) == "" {
		return ResolvedAudio{}, ErrInvalidReference
	}
	v, err, shared := c.group.Do(referenceID, func() (any, error) {
		return c.lookup(ctx, referenceID)
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("reference_id", referenceID).Msg("catalog lookup failed")
		return ResolvedAudio{}, err
	}
	audio := v.(ResolvedAudio)
	c.logger.Debug().
		Str("reference_id", referenceID).
		Str("preview_url", audio.URL).
		Bool("shared", shared).
		Msg("catalog lookup resolved")
	return audio, nil
}

func (c *Client) lookup(ctx context.Context, referenceID string) (ResolvedAudio, error) {
	values := url.Values{}
	values.Set("id", referenceID)
	if c.country != "" {
		values.Set("country", c.country)
	}
	var payload LookupResponse
	if err := c.doURL(ctx, values, &payload); err != nil {
		return ResolvedAudio{}, err
	}
	if len(payload.Results) == 0 {
		return ResolvedAudio{}, fmt.Errorf("lookup %s: %w", referenceID, ErrNotFound)
	}
	first := payload.Results[0]
	preview := strings.TrimSpace(first.PreviewURL)
	if preview == "" {
		return ResolvedAudio{}, fmt.Errorf("lookup %s: %w", referenceID, ErrNoPreviewAvailable)
	}
	return ResolvedAudio{
		URL:         preview,
		Title:       strings.TrimSpace(first.TrackName),
		Artist:      strings.TrimSpace(first.ArtistName),
		ReleaseYear: first.ReleaseYear(),
	}, nil
}

func (c *Client) doURL(ctx context.Context, values url.Values, dest any) error {
	reqURL := *c.lookupURL
	query := reqURL.Query()
	for key, vals := range values {
		query[key] = vals
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseLookupURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultLookupURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse lookup url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse lookup url %q: missing host", raw)
	}
	u.Fragment = ""
	return u, nil
}
