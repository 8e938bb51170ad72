// Package cli defines the hitcard command tree.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/five82/hitcard/internal/app"
)

// NewRootCmd returns the hitcard command. Without a subcommand it runs the
// TUI, optionally opening a card link first.
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		prefsPath  string
		listen     string
	)

	cmd := &cobra.Command{
		Use:   "hitcard [card-url]",
		Short: "Scan music cards and play their song previews",
		Long: `hitcard turns a QR music card into a short song preview.

Scan a card with a keyboard-wedge scanner, paste its link, or open it through
the local link server. hitcard resolves the card against the music catalog,
checks that the preview plays and opens the player with the song details
hidden until you choose to reveal them.`,
		Example: `  # Start scanning
  hitcard

  # Open one card straight away
  hitcard https://cards.example/qr/am/00001

  # Run without the link server
  hitcard --listen ""`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.Options{ConfigPath: configPath, PrefsPath: prefsPath}
			if len(args) == 1 {
				opts.Link = args[0]
			}
			if cmd.Flags().Changed("listen") {
				opts.Listen = &listen
			}
			return app.Run(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/hitcard/config.toml)")
	cmd.Flags().StringVar(&prefsPath, "prefs", "", "preferences file path (default ~/.config/hitcard/prefs.toml)")
	cmd.Flags().StringVar(&listen, "listen", "", "link server address; empty disables it (default from config)")

	cmd.AddCommand(newResolveCmd(&configPath), newClassifyCmd(&configPath), newCardsCmd(&configPath))

	return cmd
}
