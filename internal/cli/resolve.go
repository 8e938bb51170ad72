package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/hitcard/internal/app"
	"github.com/five82/hitcard/internal/catalog"
	"github.com/five82/hitcard/internal/config"
	"github.com/five82/hitcard/internal/logging"
	"github.com/five82/hitcard/internal/session"
)

type resolveResult struct {
	Input    string                 `json:"input"`
	Playable bool                   `json:"playable"`
	Audio    *catalog.ResolvedAudio `json:"audio,omitempty"`
	Message  session.Message        `json:"message,omitzero"`
}

func newResolveCmd(configPath *string) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "resolve <card-url>",
		Short: "Resolve a card without playing it",
		Long: `Runs a scanned or pasted card through classification, catalog lookup
and audio validation, then prints the result as JSON. Exits non-zero when the
card does not end on playable audio.`,
		Example: `  hitcard resolve https://cards.example/qr/am/00001`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			level := cfg.Log.Level
			if verbose {
				level = "debug"
			} else if level == "info" {
				level = "warn"
			}
			logger, err := logging.Console(cmd.ErrOrStderr(), level)
			if err != nil {
				return err
			}

			st, err := app.Resolve(cmd.Context(), cfg, args[0], logger)
			if err != nil {
				return err
			}
			res := resolveResult{
				Input:    args[0],
				Playable: st.Page == session.PagePlayer,
				Audio:    st.Audio,
				Message:  st.Scanner.Message,
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			if !res.Playable {
				return fmt.Errorf("card did not resolve: %s", res.Message.Key)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log each pipeline step to stderr")
	return cmd
}
