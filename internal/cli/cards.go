package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/five82/hitcard/internal/catalog"
	"github.com/five82/hitcard/internal/config"
	"github.com/five82/hitcard/internal/logging"
	"github.com/five82/hitcard/internal/scan"
)

const cardLookupConcurrency = 4

type cardEntry struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Year   int    `json:"year,omitempty"`
	Error  string `json:"error,omitempty"`
}

type cardsResult struct {
	Cards []cardEntry    `json:"cards"`
	Years map[int]int    `json:"years"`
	Range *releaseWindow `json:"range,omitempty"`
}

type releaseWindow struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

func newCardsCmd(configPath *string) *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "cards <catalog-id>...",
		Short: "Build card links and metadata for catalog ids",
		Long: `Looks up each catalog id and prints the short-form link to encode in the
card's QR code together with the song details for the printed back side. The
years map counts songs per release year so a deck can be checked for spread.
Exits non-zero when any id fails to resolve.`,
		Example: `  hitcard cards --base https://cards.example 1440857781 1452859401`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := cardBase(baseURL)
			if err != nil {
				return err
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.Console(cmd.ErrOrStderr(), "warn")
			if err != nil {
				return err
			}
			client, err := catalog.NewClient(catalog.Options{
				LookupURL: cfg.Catalog.LookupURL,
				Country:   cfg.Catalog.Country,
				Timeout:   cfg.Catalog.Timeout,
				Logger:    logger,
			})
			if err != nil {
				return fmt.Errorf("init catalog client: %w", err)
			}

			prefix := scan.DefaultPrefixes[0]
			if len(cfg.Scanner.Prefixes) > 0 {
				prefix = cfg.Scanner.Prefixes[0]
			}

			cards := make([]cardEntry, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(cardLookupConcurrency)
			for i, id := range args {
				id = strings.TrimSpace(id)
				cards[i] = cardEntry{ID: id, URL: base + prefix + url.PathEscape(id)}
				g.Go(func() error {
					audio, err := client.Resolve(ctx, id)
					if err != nil {
						cards[i].Error = err.Error()
						return nil
					}
					cards[i].Title = audio.Title
					cards[i].Artist = audio.Artist
					cards[i].Year = audio.ReleaseYear
					return nil
				})
			}
			_ = g.Wait()

			res := summarizeCards(cards)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			failed := 0
			for _, c := range cards {
				if c.Error != "" {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d cards did not resolve", failed, len(cards))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base", "", "origin the card links point at, e.g. https://cards.example")
	_ = cmd.MarkFlagRequired("base")
	return cmd
}

func cardBase(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("--base must be an http(s) origin, got %q", raw)
	}
	return strings.TrimRight(u.Scheme+"://"+u.Host+u.EscapedPath(), "/"), nil
}

func summarizeCards(cards []cardEntry) cardsResult {
	res := cardsResult{Cards: cards, Years: map[int]int{}}
	for _, c := range cards {
		if c.Year <= 0 {
			continue
		}
		res.Years[c.Year]++
		if res.Range == nil {
			res.Range = &releaseWindow{First: c.Year, Last: c.Year}
			continue
		}
		res.Range.First = min(res.Range.First, c.Year)
		res.Range.Last = max(res.Range.Last, c.Year)
	}
	return res
}
