package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/five82/hitcard/internal/audio"
	"github.com/five82/hitcard/internal/catalog"
	"github.com/five82/hitcard/internal/config"
	"github.com/five82/hitcard/internal/linkserver"
	"github.com/five82/hitcard/internal/logging"
	"github.com/five82/hitcard/internal/prefs"
	"github.com/five82/hitcard/internal/probe"
	"github.com/five82/hitcard/internal/runner"
	"github.com/five82/hitcard/internal/scan"
	"github.com/five82/hitcard/internal/session"
	"github.com/five82/hitcard/internal/state"
	"github.com/five82/hitcard/internal/ui"
)

const inboxSize = 64

// Options configure the hitcard application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/hitcard/prefs.toml
	// Link is a card URL to open on start, as if it had arrived through the
	// link server. Empty starts the scanner.
	Link string
	// Listen overrides the configured link server address when non-nil.
	// An empty value disables the server.
	Listen *string
}

// Run boots the hitcard TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Listen != nil {
		cfg.Server.Listen = *opts.Listen
	}

	logs, err := logging.New(cfg.Log.Dir, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logs.Close() }()
	logger := logs.Logger
	logger.Info().Str("log", logs.Path).Str("backend", cfg.Player.Backend).Msg("hitcard starting")

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	transport, err := audio.New(audio.Options{
		Backend: cfg.Player.Backend,
		MPVPath: cfg.Player.MPVPath,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("init player: %w", err)
	}
	defer func() {
		if err := transport.Close(); err != nil {
			logger.Warn().Err(err).Msg("close player")
		}
	}()

	store := &state.Store{}
	run, err := NewRunner(cfg, transport, store.RecordError, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	box := newInbox(ctx, inboxSize, logger)
	dispatcher := run.Dispatch(ctx, box.send)

	var linkAddr string
	var srv *linkserver.Server
	if cfg.Server.Listen != "" {
		router := linkserver.NewRouter(linkserver.Options{
			Dispatch: func(ev session.Event) { box.offer(ev) },
			Store:    store,
			Prefixes: cfg.Scanner.Prefixes,
			Logger:   logger,
		})
		srv = linkserver.NewServer(cfg.Server.Listen, router, logger)
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("start link server: %w", err)
		}
		linkAddr = srv.Addr().String()
	}

	StartPoller(ctx, transport, box.offer, audio.DefaultStatusInterval)

	initial := []session.Event{session.StartScanner{}}
	if opts.Link != "" {
		initial = []session.Event{session.LinkOpened{Text: opts.Link}}
	}

	err = ui.Run(ui.Options{
		Context:   ctx,
		Machine:   NewMachine(cfg, logger),
		Effects:   dispatcher,
		Events:    box.ch,
		Store:     store,
		Initial:   initial,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		LogPath:   logs.Path,
		LinkAddr:  linkAddr,
		Logger:    logger,
	})

	cancel()
	dispatcher.Wait()
	if srv != nil {
		if werr := srv.Wait(); werr != nil {
			logger.Warn().Err(werr).Msg("link server stopped")
		}
	}
	logger.Info().Msg("hitcard stopped")
	return err
}

// NewMachine builds a session machine configured from cfg.
func NewMachine(cfg config.Config, logger zerolog.Logger) *session.Machine {
	return session.New(session.Options{
		Classifier:     scan.Classifier{Prefixes: cfg.Scanner.Prefixes},
		SkipValidation: cfg.Scanner.SkipValidation,
		DedupeWindow:   cfg.Scanner.DedupeWindow,
		MessageTTL:     cfg.Scanner.MessageTTL,
		Logger:         logger,
	})
}

// NewRunner wires the catalog client and audio validator from cfg to
// transport. onError receives transport failures; it may be nil.
func NewRunner(cfg config.Config, transport audio.Transport, onError func(error), logger zerolog.Logger) (*runner.Runner, error) {
	client, err := catalog.NewClient(catalog.Options{
		LookupURL: cfg.Catalog.LookupURL,
		Country:   cfg.Catalog.Country,
		Timeout:   cfg.Catalog.Timeout,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init catalog client: %w", err)
	}
	validator := probe.NewValidator(probe.Options{
		Timeout: cfg.Scanner.ValidateTimeout,
		Logger:  logger,
	})
	return runner.New(runner.Options{
		Resolver:  client,
		Validator: validator,
		Transport: transport,
		OnError:   onError,
		Logger:    logger,
	}), nil
}

// Resolve runs the scan pipeline for text without a UI or audio device and
// returns the final session state. The player page means the card resolved
// to playable audio.
func Resolve(ctx context.Context, cfg config.Config, text string, logger zerolog.Logger) (session.State, error) {
	run, err := NewRunner(cfg, &audio.Nop{}, nil, logger)
	if err != nil {
		return session.State{}, err
	}
	m := NewMachine(cfg, logger)
	st := run.Drive(ctx, m, session.LinkOpened{Text: text})
	return st, ctx.Err()
}
